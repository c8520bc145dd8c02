// Package ledgerdelivery manages delivery layer of the ledger.
package ledgerdelivery

import (
	"context"
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

// Service provides service layer interface needed by ledger delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package ledgerdelivery
type Service interface {
	List(ctx context.Context, filter domain.LedgerFilter, pageSize, pageID int32) ([]domain.LedgerEntry, error)
}

// Handler facilitates ledger delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns ledger handler.
func NewHandler(ls Service) *Handler {
	return &Handler{service: ls}
}

type listRequest struct {
	PageID      int32  `form:"page_id" binding:"required,min=1"`
	PageSize    int32  `form:"page_size" binding:"required,min=5,max=100"`
	Action      string `form:"action" binding:"omitempty,ledgeraction"`
	Currency    string `form:"currency" binding:"omitempty,currency"`
	AccountFrom string `form:"account_from" binding:"omitempty,uuid"`
	AccountTo   string `form:"account_to" binding:"omitempty,uuid"`
	Ordering    string `form:"ordering"`
}

func nullUUID(s string) uuid.NullUUID {
	if s == "" {
		return uuid.NullUUID{}
	}

	return uuid.NullUUID{UUID: uuid.MustParse(s), Valid: true}
}

type data struct {
	Entries []domain.LedgerEntry `json:"entries"`
}

// List handles http request to list ledger entries.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Errors([]string{web.GetErrorMsg(ve)}))
			return
		}

		gctx.JSON(http.StatusBadRequest, web.Errors([]string{err.Error()}))

		return
	}

	orderBy, err := domain.ParseLedgerOrdering(req.Ordering)
	if err != nil {
		l.Info().Err(err).Str("ordering", req.Ordering).Send()
		gctx.JSON(http.StatusBadRequest, web.Errors([]string{err.Error()}))

		return
	}

	filter := domain.LedgerFilter{
		Action:      domain.Action(req.Action),
		Currency:    req.Currency,
		AccountFrom: nullUUID(req.AccountFrom),
		AccountTo:   nullUUID(req.AccountTo),
		OrderBy:     orderBy,
	}

	entries, err := h.service.List(ctx, filter, req.PageSize, req.PageID)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: data{Entries: entries}})
}
