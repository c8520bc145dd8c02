// Package transferdelivery manages delivery layer of transfers.
package transferdelivery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/pkg/errorspkg"
	"github.com/go-petr/pet-wallet/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service provides service layer interface needed by transfer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transferdelivery
type Service interface {
	Transfer(ctx context.Context, arg domain.CreateTransferParams) (domain.TransferReceipt, error)
}

// Handler facilitates transfer delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transfer handler.
func NewHandler(ts Service) *Handler {
	return &Handler{
		service: ts,
	}
}

type request struct {
	CustomerFrom int64       `json:"customer_from" binding:"required,min=1"`
	CustomerTo   *int64      `json:"customer_to" binding:"omitempty,min=1"`
	AccountFrom  string      `json:"account_from" binding:"required,uuid"`
	AccountTo    string      `json:"account_to" binding:"required,uuid"`
	Amount       json.Number `json:"amount" binding:"required"`
}

type data struct {
	Transfer domain.TransferReceipt `json:"transfer"`
}

// Create handles http request to move money between two accounts.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req request
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Errors([]string{web.GetErrorMsg(ve)}))

			return
		}

		gctx.JSON(http.StatusBadRequest, web.Errors([]string{err.Error()}))

		return
	}

	arg := domain.CreateTransferParams{
		CustomerFrom: req.CustomerFrom,
		CustomerTo:   req.CustomerTo,
		AccountFrom:  uuid.MustParse(req.AccountFrom),
		AccountTo:    uuid.MustParse(req.AccountTo),
		Amount:       req.Amount.String(),
	}

	receipt, err := h.service.Transfer(ctx, arg)
	if err != nil {
		var validationErr *domain.ValidationError

		switch {
		case errors.As(err, &validationErr):
			gctx.JSON(http.StatusBadRequest, web.Errors(validationErr.Messages()))
			return
		case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrNegativeAmount):
			gctx.JSON(http.StatusBadRequest, web.Errors([]string{err.Error()}))
			return
		case errors.Is(err, domain.ErrAccountNotFound):
			gctx.JSON(http.StatusInternalServerError, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: data{Transfer: receipt}})
}
