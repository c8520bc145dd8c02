// Package customerdelivery manages delivery layer of customers.
package customerdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/pkg/errorspkg"
	"github.com/go-petr/pet-wallet/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Service provides service layer interface needed by customer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package customerdelivery
type Service interface {
	Create(ctx context.Context, firstName, lastName string) (domain.CustomerWithAccounts, error)
	Get(ctx context.Context, id int64) (domain.CustomerWithAccounts, error)
	List(ctx context.Context, pageSize, pageID int32) ([]domain.CustomerWithAccounts, error)
}

// Handler facilitates customer delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns customer handler.
func NewHandler(cs Service) *Handler {
	return &Handler{service: cs}
}

type data struct {
	Customer domain.CustomerWithAccounts `json:"customer"`
}

type dataCustomers struct {
	Customers []domain.CustomerWithAccounts `json:"customers"`
}

func bindError(gctx *gin.Context, err error) {
	zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		gctx.JSON(http.StatusBadRequest, web.Errors([]string{web.GetErrorMsg(ve)}))
		return
	}

	gctx.JSON(http.StatusBadRequest, web.Errors([]string{err.Error()}))
}

type createRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

// Create handles http request to provision a customer with its initial accounts.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindError(gctx, err)
		return
	}

	customer, err := h.service.Create(ctx, req.FirstName, req.LastName)
	if err != nil {
		var storageErr *domain.StorageError
		if errors.As(err, &storageErr) {
			gctx.JSON(http.StatusInternalServerError, web.DBErrors(storageErr.Message))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusCreated, web.Response{Data: data{Customer: customer}})
}

type getRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// Get handles http request to get a customer with its accounts.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		bindError(gctx, err)
		return
	}

	customer, err := h.service.Get(ctx, req.ID)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: data{Customer: customer}})
}

type listRequest struct {
	PageID   int32 `form:"page_id" binding:"required,min=1"`
	PageSize int32 `form:"page_size" binding:"required,min=5,max=100"`
}

// List handles http request to list customers.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		bindError(gctx, err)
		return
	}

	customers, err := h.service.List(ctx, req.PageSize, req.PageID)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: dataCustomers{Customers: customers}})
}
