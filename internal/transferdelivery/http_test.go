package transferdelivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/internal/middleware"
	"github.com/go-petr/pet-wallet/pkg/errorspkg"
	"github.com/go-petr/pet-wallet/pkg/randompkg"
	"github.com/go-petr/pet-wallet/pkg/tokenpkg"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func randomParty(balance string) domain.Party {
	id := randompkg.IntBetween(1, 1_000)

	return domain.Party{
		ID:        id,
		FirstName: randompkg.Name(),
		LastName:  randompkg.Name(),
		Account: domain.Account{
			UUID:       uuid.New(),
			CustomerID: id,
			Currency:   "USD",
			Balance:    decimal.RequireFromString(balance),
		},
	}
}

type errorsResponse struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors"`
}

func TestCreate(t *testing.T) {
	from := randomParty("89.90")
	to := randomParty("10.00")
	customerTo := to.ID

	receipt := domain.TransferReceipt{From: from, To: to}

	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	gin.SetMode(gin.ReleaseMode)

	validBody := gin.H{
		"customer_from": from.ID,
		"customer_to":   to.ID,
		"account_from":  from.Account.UUID,
		"account_to":    to.Account.UUID,
		"amount":        "10.00",
	}

	testCases := []struct {
		name          string
		requestBody   gin.H
		setupAuth     func(t *testing.T, r *http.Request)
		buildStubs    func(service *MockService)
		checkResponse func(t *testing.T, recorder *httptest.ResponseRecorder)
	}{
		{
			name:        "OK",
			requestBody: validBody,
			buildStubs: func(service *MockService) {
				arg := domain.CreateTransferParams{
					CustomerFrom: from.ID,
					CustomerTo:   &customerTo,
					AccountFrom:  from.Account.UUID,
					AccountTo:    to.Account.UUID,
					Amount:       "10.00",
				}
				service.EXPECT().
					Transfer(gomock.Any(), gomock.Eq(arg)).
					Times(1).
					Return(receipt, nil)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)

				want, err := json.Marshal(gin.H{"data": gin.H{"transfer": gin.H{
					"from": gin.H{
						"id":         from.ID,
						"first_name": from.FirstName,
						"last_name":  from.LastName,
						"account":    gin.H{"uuid": from.Account.UUID, "currency": "USD", "balance": "89.90"},
					},
					"to": gin.H{
						"id":         to.ID,
						"first_name": to.FirstName,
						"last_name":  to.LastName,
						"account":    gin.H{"uuid": to.Account.UUID, "currency": "USD", "balance": "10.00"},
					},
				}}})
				require.NoError(t, err)
				require.JSONEq(t, string(want), recorder.Body.String())
			},
		},
		{
			name: "SelfTransferNumericAmount",
			requestBody: gin.H{
				"customer_from": from.ID,
				"account_from":  from.Account.UUID,
				"account_to":    to.Account.UUID,
				"amount":        10.5,
			},
			buildStubs: func(service *MockService) {
				arg := domain.CreateTransferParams{
					CustomerFrom: from.ID,
					AccountFrom:  from.Account.UUID,
					AccountTo:    to.Account.UUID,
					Amount:       "10.5",
				}
				service.EXPECT().
					Transfer(gomock.Any(), gomock.Eq(arg)).
					Times(1).
					Return(receipt, nil)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
			},
		},
		{
			name:        "NoAuthorization",
			requestBody: validBody,
			setupAuth:   func(t *testing.T, r *http.Request) {},
			buildStubs: func(service *MockService) {
				service.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, recorder.Code)
			},
		},
		{
			name: "MissingCustomerFrom",
			requestBody: gin.H{
				"account_from": from.Account.UUID,
				"account_to":   to.Account.UUID,
				"amount":       "10.00",
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)

				var got errorsResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
				require.Equal(t, []string{"CustomerFrom field is required"}, got.Errors)
			},
		},
		{
			name: "InvalidAccountUUID",
			requestBody: gin.H{
				"customer_from": from.ID,
				"account_from":  "not-a-uuid",
				"account_to":    to.Account.UUID,
				"amount":        "10.00",
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)

				var got errorsResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
				require.Equal(t, []string{"AccountFrom must be a valid UUID"}, got.Errors)
			},
		},
		{
			name: "AmountNotANumber",
			requestBody: gin.H{
				"customer_from": from.ID,
				"account_from":  from.Account.UUID,
				"account_to":    to.Account.UUID,
				"amount":        "ten",
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name:        "ValidationError",
			requestBody: validBody,
			buildStubs: func(service *MockService) {
				err := &domain.ValidationError{Violations: []domain.Violation{
					{Rule: domain.RuleAccountNotOwned, Message: "first"},
					{Rule: domain.RuleNotEnoughAmountWithFee, Message: "second"},
				}}
				service.EXPECT().
					Transfer(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.TransferReceipt{}, err)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
				require.JSONEq(t, `{"errors":["first","second"]}`, recorder.Body.String())
			},
		},
		{
			name:        "ErrInvalidAmount",
			requestBody: validBody,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Transfer(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.TransferReceipt{}, domain.ErrInvalidAmount)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
				require.JSONEq(t, `{"errors":["invalid amount"]}`, recorder.Body.String())
			},
		},
		{
			name:        "ErrAccountNotFound",
			requestBody: validBody,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Transfer(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.TransferReceipt{}, domain.ErrAccountNotFound)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusInternalServerError, recorder.Code)
				require.JSONEq(t, `{"error":"account not found"}`, recorder.Body.String())
			},
		},
		{
			name:        "ErrInternal",
			requestBody: validBody,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Transfer(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.TransferReceipt{}, errorspkg.ErrInternal)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusInternalServerError, recorder.Code)

				var got errorsResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
				require.Equal(t, errorspkg.ErrInternal.Error(), got.Error)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			server := gin.New()
			url := "/transfers"
			server.POST(url, middleware.AuthMiddleware(tokenMaker), NewHandler(service).Create)

			body, err := json.Marshal(tc.requestBody)
			require.NoError(t, err)

			request, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
			require.NoError(t, err)

			if tc.setupAuth != nil {
				tc.setupAuth(t, request)
			} else {
				err = middleware.AddAuthorization(request, tokenMaker, middleware.AuthTypeBearer, randompkg.Owner(), time.Minute)
				require.NoError(t, err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, request)

			tc.checkResponse(t, recorder)
		})
	}
}
