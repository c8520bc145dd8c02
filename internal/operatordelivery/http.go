// Package operatordelivery manages delivery layer of operators.
package operatordelivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/pkg/errorspkg"
	"github.com/go-petr/pet-wallet/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Service provides service layer interface needed by operator delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package operatordelivery
type Service interface {
	Create(ctx context.Context, username, password, fullname, email string) (domain.OperatorWithoutPassword, error)
	CheckPassword(ctx context.Context, username, password string) (domain.OperatorWithoutPassword, error)
}

// SessionMaker facilitates session creation.
type SessionMaker interface {
	Create(ctx context.Context, arg domain.CreateSessionParams) (string, time.Time, domain.Session, error)
}

// Handler facilitates operator delivery layer logic.
type Handler struct {
	service      Service
	sessionMaker SessionMaker
}

// NewHandler returns operator handler.
func NewHandler(ops Service, sm SessionMaker) *Handler {
	return &Handler{
		service:      ops,
		sessionMaker: sm,
	}
}

type data struct {
	Operator domain.OperatorWithoutPassword `json:"operator"`
}

func bindError(gctx *gin.Context, err error) {
	zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})
		return
	}

	gctx.JSON(http.StatusBadRequest, web.Error(err))
}

// startSession issues tokens for the operator and writes them with the operator data.
func (h *Handler) startSession(gctx *gin.Context, operator domain.OperatorWithoutPassword) {
	ctx := gctx.Request.Context()

	arg := domain.CreateSessionParams{
		Username:  operator.Username,
		UserAgent: gctx.Request.UserAgent(),
		ClientIP:  gctx.ClientIP(),
	}

	accessToken, accessTokenExpiresAt, session, err := h.sessionMaker.Create(ctx, arg)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  &accessTokenExpiresAt,
		RefreshToken:          session.RefreshToken,
		RefreshTokenExpiresAt: &session.ExpiresAt,
		Data:                  data{Operator: operator},
	})
}

type createRequest struct {
	Username string `json:"username" binding:"required,alphanum"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"fullname" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

// Create handles http request to register an operator.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindError(gctx, err)
		return
	}

	operator, err := h.service.Create(ctx, req.Username, req.Password, req.FullName, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUsernameAlreadyExists), errors.Is(err, domain.ErrEmailAlreadyExists):
			gctx.JSON(http.StatusConflict, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	h.startSession(gctx, operator)
}

type loginRequest struct {
	Username string `json:"username" binding:"required,alphanum"`
	Password string `json:"password" binding:"required,min=6"`
}

// Login handles http login request and returns operator and session data.
func (h *Handler) Login(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req loginRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindError(gctx, err)
		return
	}

	operator, err := h.service.CheckPassword(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOperatorNotFound):
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case errors.Is(err, domain.ErrWrongPassword):
			gctx.JSON(http.StatusUnauthorized, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	h.startSession(gctx, operator)
}
