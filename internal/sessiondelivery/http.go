// Package sessiondelivery serves refresh token endpoints of operator sessions.
package sessiondelivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/pkg/errorspkg"
	"github.com/go-petr/pet-wallet/pkg/tokenpkg"
	"github.com/go-petr/pet-wallet/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Service provides service layer interface needed by session delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package sessiondelivery
type Service interface {
	RenewAccessToken(ctx context.Context, refreshToken string) (string, time.Time, error)
	Revoke(ctx context.Context, refreshToken string) error
}

// Handler facilitates session delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns session handler.
func NewHandler(ss Service) *Handler {
	return &Handler{
		service: ss,
	}
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// unauthorized lists the errors that reject the presented refresh token.
var unauthorized = []error{
	tokenpkg.ErrInvalidToken,
	tokenpkg.ErrExpiredToken,
	domain.ErrSessionNotFound,
	domain.ErrBlockedSession,
	domain.ErrInvalidOperator,
	domain.ErrMismatchedRefreshToken,
	domain.ErrExpiredSession,
}

// bindRefreshToken reads the refresh token from the body or writes a 400 response.
func bindRefreshToken(gctx *gin.Context) (string, bool) {
	var req refreshTokenRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})
			return "", false
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return "", false
	}

	return req.RefreshToken, true
}

// writeServiceError maps refresh token failures to 401 and hides everything else behind 500.
func writeServiceError(gctx *gin.Context, err error) {
	for _, target := range unauthorized {
		if errors.Is(err, target) {
			gctx.JSON(http.StatusUnauthorized, web.Error(err))
			return
		}
	}

	gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
}

// RenewAccessToken handles http request to renew access token.
func (h *Handler) RenewAccessToken(gctx *gin.Context) {
	refreshToken, ok := bindRefreshToken(gctx)
	if !ok {
		return
	}

	accessToken, accessTokenExpiresAt, err := h.service.RenewAccessToken(gctx.Request.Context(), refreshToken)
	if err != nil {
		writeServiceError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{
		AccessToken:          accessToken,
		AccessTokenExpiresAt: &accessTokenExpiresAt,
	})
}

// Revoke handles http request to block the session of a refresh token.
func (h *Handler) Revoke(gctx *gin.Context) {
	refreshToken, ok := bindRefreshToken(gctx)
	if !ok {
		return
	}

	if err := h.service.Revoke(gctx.Request.Context(), refreshToken); err != nil {
		writeServiceError(gctx, err)
		return
	}

	gctx.Status(http.StatusNoContent)
}
