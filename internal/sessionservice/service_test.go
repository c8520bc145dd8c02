package sessionservice

import (
	"context"
	"testing"
	"time"

	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/pkg/configpkg"
	"github.com/go-petr/pet-wallet/pkg/errorspkg"
	"github.com/go-petr/pet-wallet/pkg/randompkg"
	"github.com/go-petr/pet-wallet/pkg/tokenpkg"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func testConfig(tokenType string) configpkg.Config {
	return configpkg.Config{
		TokenType:            tokenType,
		TokenSymmetricKey:    randompkg.String(32),
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 24 * time.Hour,
	}
}

func testMaker(t *testing.T, config configpkg.Config) tokenpkg.Maker {
	t.Helper()

	maker, err := tokenpkg.New(config.TokenType, config.TokenSymmetricKey)
	require.NoError(t, err)

	return maker
}

var tokenTypes = []string{tokenpkg.TypePaseto, tokenpkg.TypeJWT}

func TestNewRequiresMaker(t *testing.T) {
	t.Parallel()

	_, err := New(nil, testConfig(tokenpkg.TypePaseto), nil)
	require.Error(t, err)
}

func TestCreate(t *testing.T) {
	t.Parallel()

	for _, tokenType := range tokenTypes {
		tokenType := tokenType

		t.Run(tokenType, func(t *testing.T) {
			t.Parallel()

			config := testConfig(tokenType)
			maker := testMaker(t, config)
			teller := randompkg.Owner()

			t.Run("StoresRefreshSessionOfOperator", func(t *testing.T) {
				ctrl := gomock.NewController(t)
				repo := NewMockRepo(ctrl)

				var stored domain.CreateSessionParams
				repo.EXPECT().
					Create(gomock.Any(), gomock.AssignableToTypeOf(domain.CreateSessionParams{})).
					Times(1).
					DoAndReturn(func(_ context.Context, arg domain.CreateSessionParams) (domain.Session, error) {
						stored = arg
						return domain.Session{
							ID:           arg.ID,
							Username:     arg.Username,
							RefreshToken: arg.RefreshToken,
							UserAgent:    arg.UserAgent,
							ClientIP:     arg.ClientIP,
							ExpiresAt:    arg.ExpiresAt,
						}, nil
					})

				service, err := New(repo, config, maker)
				require.NoError(t, err)

				arg := domain.CreateSessionParams{Username: teller, UserAgent: "curl/8.0", ClientIP: "10.0.0.7"}

				accessToken, accessExpiresAt, session, err := service.Create(context.Background(), arg)
				require.NoError(t, err)

				access, err := maker.VerifyToken(accessToken)
				require.NoError(t, err)
				require.Equal(t, teller, access.Username)
				require.WithinDuration(t, access.ExpiredAt, accessExpiresAt, time.Second)
				require.WithinDuration(t, time.Now().Add(config.AccessTokenDuration), accessExpiresAt, time.Minute)

				refresh, err := maker.VerifyToken(stored.RefreshToken)
				require.NoError(t, err)
				require.Equal(t, teller, refresh.Username)
				require.Equal(t, refresh.ID, stored.ID)
				require.WithinDuration(t, refresh.ExpiredAt, stored.ExpiresAt, time.Second)
				require.NotEqual(t, access.ID, refresh.ID)

				require.Equal(t, "curl/8.0", session.UserAgent)
				require.Equal(t, "10.0.0.7", session.ClientIP)
				require.Equal(t, stored.ID, session.ID)
			})

			t.Run("RepoFailure", func(t *testing.T) {
				ctrl := gomock.NewController(t)
				repo := NewMockRepo(ctrl)
				repo.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Session{}, errorspkg.ErrInternal)

				service, err := New(repo, config, maker)
				require.NoError(t, err)

				accessToken, _, _, err := service.Create(context.Background(), domain.CreateSessionParams{Username: teller})
				require.ErrorIs(t, err, errorspkg.ErrInternal)
				require.Empty(t, accessToken)
			})
		})
	}
}

func TestRenewAccessToken(t *testing.T) {
	t.Parallel()

	for _, tokenType := range tokenTypes {
		tokenType := tokenType

		t.Run(tokenType, func(t *testing.T) {
			t.Parallel()

			config := testConfig(tokenType)
			maker := testMaker(t, config)

			teller := randompkg.Owner()
			auditor := randompkg.Owner() + "x"

			tellerToken, tellerPayload, err := maker.CreateToken(teller, config.RefreshTokenDuration)
			require.NoError(t, err)

			olderTellerToken, _, err := maker.CreateToken(teller, config.RefreshTokenDuration)
			require.NoError(t, err)

			expiredToken, _, err := maker.CreateToken(teller, -time.Minute)
			require.NoError(t, err)

			foreignMaker := testMaker(t, testConfig(tokenType))
			foreignToken, _, err := foreignMaker.CreateToken(teller, config.RefreshTokenDuration)
			require.NoError(t, err)

			// tellerSession is the stored session matching tellerToken.
			tellerSession := domain.Session{
				ID:           tellerPayload.ID,
				Username:     teller,
				RefreshToken: tellerToken,
				ExpiresAt:    tellerPayload.ExpiredAt,
			}

			testCases := []struct {
				name    string
				token   string
				session func() domain.Session
				repoErr error
				wantErr error
			}{
				{
					name:    "OK",
					token:   tellerToken,
					session: func() domain.Session { return tellerSession },
				},
				{
					name:  "SessionOwnedByAnotherOperator",
					token: tellerToken,
					session: func() domain.Session {
						s := tellerSession
						s.Username = auditor
						return s
					},
					wantErr: domain.ErrInvalidOperator,
				},
				{
					name:  "BlockedBeforeOwnerCheck",
					token: tellerToken,
					session: func() domain.Session {
						s := tellerSession
						s.Username = auditor
						s.IsBlocked = true
						return s
					},
					wantErr: domain.ErrBlockedSession,
				},
				{
					name:  "SupersededRefreshToken",
					token: tellerToken,
					session: func() domain.Session {
						s := tellerSession
						s.RefreshToken = olderTellerToken
						return s
					},
					wantErr: domain.ErrMismatchedRefreshToken,
				},
				{
					name:  "SessionExpired",
					token: tellerToken,
					session: func() domain.Session {
						s := tellerSession
						s.ExpiresAt = time.Now().Add(-time.Second)
						return s
					},
					wantErr: domain.ErrExpiredSession,
				},
				{
					name:    "SessionMissing",
					token:   tellerToken,
					session: func() domain.Session { return domain.Session{} },
					repoErr: domain.ErrSessionNotFound,
					wantErr: domain.ErrSessionNotFound,
				},
				{
					name:    "ExpiredToken",
					token:   expiredToken,
					wantErr: tokenpkg.ErrExpiredToken,
				},
				{
					name:    "TokenFromAnotherKey",
					token:   foreignToken,
					wantErr: tokenpkg.ErrInvalidToken,
				},
			}

			for i := range testCases {
				tc := testCases[i]

				t.Run(tc.name, func(t *testing.T) {
					t.Parallel()

					ctrl := gomock.NewController(t)
					repo := NewMockRepo(ctrl)

					if tc.session == nil {
						repo.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
					} else {
						repo.EXPECT().
							Get(gomock.Any(), tellerPayload.ID).
							Times(1).
							Return(tc.session(), tc.repoErr)
					}

					service, err := New(repo, config, maker)
					require.NoError(t, err)

					accessToken, expiresAt, err := service.RenewAccessToken(context.Background(), tc.token)
					if tc.wantErr != nil {
						require.ErrorIs(t, err, tc.wantErr)
						require.Empty(t, accessToken)
						require.True(t, expiresAt.IsZero())

						return
					}

					require.NoError(t, err)

					access, err := maker.VerifyToken(accessToken)
					require.NoError(t, err)
					require.Equal(t, teller, access.Username)
					require.WithinDuration(t, access.ExpiredAt, expiresAt, time.Second)
					require.NotEqual(t, tellerPayload.ID, access.ID)
				})
			}
		})
	}
}

func TestRevoke(t *testing.T) {
	t.Parallel()

	config := testConfig(tokenpkg.TypePaseto)
	maker := testMaker(t, config)

	teller := randompkg.Owner()

	refreshToken, refreshPayload, err := maker.CreateToken(teller, config.RefreshTokenDuration)
	require.NoError(t, err)

	expiredToken, _, err := maker.CreateToken(teller, -time.Minute)
	require.NoError(t, err)

	testCases := []struct {
		name       string
		token      string
		buildStubs func(repo *MockRepo)
		wantErr    error
	}{
		{
			name:  "BlocksOwnSession",
			token: refreshToken,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Block(gomock.Any(), refreshPayload.ID, teller).
					Times(1).
					Return(domain.Session{ID: refreshPayload.ID, Username: teller, IsBlocked: true}, nil)
			},
		},
		{
			// The repo only blocks sessions of the operator named in the token.
			name:  "SessionOfAnotherOperator",
			token: refreshToken,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Block(gomock.Any(), refreshPayload.ID, teller).
					Times(1).
					Return(domain.Session{}, domain.ErrSessionNotFound)
			},
			wantErr: domain.ErrSessionNotFound,
		},
		{
			name:  "ExpiredToken",
			token: expiredToken,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Block(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: tokenpkg.ErrExpiredToken,
		},
		{
			name:  "GarbageToken",
			token: "not-a-token",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Block(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: tokenpkg.ErrInvalidToken,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			service, err := New(repo, config, maker)
			require.NoError(t, err)

			err = service.Revoke(context.Background(), tc.token)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
		})
	}
}
