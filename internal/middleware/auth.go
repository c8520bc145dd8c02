package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-wallet/pkg/tokenpkg"
	"github.com/go-petr/pet-wallet/pkg/web"
	"github.com/rs/zerolog"
)

// Authorization header constants.
const (
	AuthHeaderKey  = "authorization"
	AuthTypeBearer = "bearer"
	AuthPayloadKey = "authorization_payload"
)

var (
	// ErrAuthHeaderNotFound indicates a request without authorization header.
	ErrAuthHeaderNotFound = errors.New("authorization header is not provided")
	// ErrBadAuthHeaderFormat indicates an authorization header that is not "<type> <token>".
	ErrBadAuthHeaderFormat = errors.New("invalid authorization header format")
	// ErrUnsupportedAuthType indicates an authorization type other than bearer.
	ErrUnsupportedAuthType = errors.New("unsupported authorization type")
)

// AddAuthorization sets the authorization header of r to a fresh token of the given operator.
func AddAuthorization(
	r *http.Request,
	tokenMaker tokenpkg.Maker,
	authType string,
	username string,
	duration time.Duration,
) error {
	token, _, err := tokenMaker.CreateToken(username, duration)
	if err != nil {
		return err
	}

	r.Header.Set(AuthHeaderKey, fmt.Sprintf("%s %s", authType, token))

	return nil
}

// AuthMiddleware rejects requests without a valid bearer token
// and stores the token payload in the gin context under AuthPayloadKey.
func AuthMiddleware(tokenMaker tokenpkg.Maker) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		l := zerolog.Ctx(gctx.Request.Context())

		abort := func(err error) {
			l.Info().Err(err).Send()
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(err))
		}

		authHeader := gctx.GetHeader(AuthHeaderKey)
		if len(authHeader) == 0 {
			abort(ErrAuthHeaderNotFound)
			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) < 2 {
			abort(ErrBadAuthHeaderFormat)
			return
		}

		if strings.ToLower(fields[0]) != AuthTypeBearer {
			abort(ErrUnsupportedAuthType)
			return
		}

		payload, err := tokenMaker.VerifyToken(fields[1])
		if err != nil {
			abort(err)
			return
		}

		gctx.Set(AuthPayloadKey, payload)
		gctx.Next()
	}
}
