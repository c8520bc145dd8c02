package tokenpkg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-petr/pet-wallet/pkg/configpkg"
	"github.com/go-petr/pet-wallet/pkg/randompkg"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	key := randompkg.String(32)

	testCases := []struct {
		tokenType string
		want      Maker
		wantErr   bool
	}{
		{tokenType: TypePaseto, want: &PasetoMaker{}},
		{tokenType: "", want: &PasetoMaker{}},
		{tokenType: TypeJWT, want: &JWTMaker{}},
		{tokenType: "macaroon", wantErr: true},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run("type="+tc.tokenType, func(t *testing.T) {
			t.Parallel()

			maker, err := New(tc.tokenType, key)
			if tc.wantErr {
				require.Error(t, err)
				require.Nil(t, maker)

				return
			}

			require.NoError(t, err)
			require.IsType(t, tc.want, maker)
		})
	}
}

func TestNewRejectsShortKey(t *testing.T) {
	t.Parallel()

	for _, tokenType := range []string{TypePaseto, TypeJWT} {
		maker, err := New(tokenType, randompkg.String(16))
		require.Error(t, err, tokenType)
		require.Nil(t, maker, tokenType)
	}
}

// Both makers must issue operator tokens that only they can read back.
func TestMakerRoundTrip(t *testing.T) {
	t.Parallel()

	for _, tokenType := range []string{TypePaseto, TypeJWT} {
		tokenType := tokenType

		t.Run(tokenType, func(t *testing.T) {
			t.Parallel()

			maker, err := New(tokenType, randompkg.String(32))
			require.NoError(t, err)

			teller := randompkg.Owner()

			token, issued, err := maker.CreateToken(teller, 15*time.Minute)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			got, err := maker.VerifyToken(token)
			require.NoError(t, err)
			require.Equal(t, issued.ID, got.ID)
			require.Equal(t, teller, got.Username)
			require.WithinDuration(t, issued.IssuedAt, got.IssuedAt, time.Second)
			require.WithinDuration(t, time.Now().Add(15*time.Minute), got.ExpiredAt, time.Minute)

			expired, _, err := maker.CreateToken(teller, -time.Second)
			require.NoError(t, err)

			_, err = maker.VerifyToken(expired)
			require.ErrorIs(t, err, ErrExpiredToken)

			other, err := New(tokenType, randompkg.String(32))
			require.NoError(t, err)

			_, err = other.VerifyToken(token)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	env := []byte("TOKEN_TYPE=jwt\nTOKEN_SYMMETRIC_KEY=" + randompkg.String(32) + "\nACCESS_TOKEN_DURATION=5m\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), env, 0o600))

	config, err := configpkg.Load(dir)
	require.NoError(t, err)
	require.Equal(t, TypeJWT, config.TokenType)

	maker, err := New(config.TokenType, config.TokenSymmetricKey)
	require.NoError(t, err)
	require.IsType(t, &JWTMaker{}, maker)

	token, _, err := maker.CreateToken("teller", config.AccessTokenDuration)
	require.NoError(t, err)

	payload, err := maker.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, "teller", payload.Username)
	require.WithinDuration(t, time.Now().Add(5*time.Minute), payload.ExpiredAt, time.Minute)
}
