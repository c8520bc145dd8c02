//go:build integration

package httpserver_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/internal/integrationtest"
	"github.com/go-petr/pet-wallet/internal/integrationtest/helpers"
	"github.com/go-petr/pet-wallet/pkg/tokenpkg"
	"github.com/stretchr/testify/require"
)

type partyBody struct {
	ID        int64       `json:"id"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Account   accountBody `json:"account"`
}

type transferResponse struct {
	Errors []string `json:"errors"`
	Error  string   `json:"error"`
	Data   struct {
		Transfer struct {
			From partyBody `json:"from"`
			To   partyBody `json:"to"`
		} `json:"transfer"`
	} `json:"data"`
}

type ledgerResponse struct {
	Data struct {
		Entries []struct {
			ID                int64  `json:"id"`
			CustomerFrom      int64  `json:"customer_from"`
			CustomerTo        int64  `json:"customer_to"`
			AccountFromUUID   string `json:"account_from_uuid"`
			AccountToUUID     string `json:"account_to_uuid"`
			AccountFromAmount string `json:"account_from_amount"`
			AccountToAmount   string `json:"account_to_amount"`
			Amount            string `json:"amount"`
			Fee               string `json:"fee"`
			Action            string `json:"action"`
		} `json:"entries"`
	} `json:"data"`
}

func usdAccount(t *testing.T, w domain.CustomerWithAccounts) domain.Account {
	t.Helper()

	for _, a := range w.Accounts {
		if a.Currency == "USD" {
			return a
		}
	}

	t.Fatalf("customer %d has no USD account", w.ID)

	return domain.Account{}
}

func TestTransferAPI(t *testing.T) {
	server := integrationtest.SetupServer(t)

	tokenMaker, err := tokenpkg.New(server.Config.TokenType, server.Config.TokenSymmetricKey)
	require.NoError(t, err)

	auth := withAuth(t, tokenMaker)

	alice := helpers.SeedWallet(t, server.DB)
	bob := helpers.SeedWallet(t, server.DB)

	aliceUSD := usdAccount(t, alice)
	aliceEUR := alice.Accounts[1]
	bobUSD := usdAccount(t, bob)

	// TRANSFER_FEE_PERCENT in configs/app.env is 1.
	recorder := postJSON(t, server, "/transfers", map[string]any{
		"customer_from": alice.ID,
		"customer_to":   bob.ID,
		"account_from":  aliceUSD.UUID,
		"account_to":    bobUSD.UUID,
		"amount":        "10.00",
	}, auth)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var res transferResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&res))
	require.Equal(t, alice.ID, res.Data.Transfer.From.ID)
	require.Equal(t, alice.FirstName, res.Data.Transfer.From.FirstName)
	require.Equal(t, "89.90", res.Data.Transfer.From.Account.Balance)
	require.Equal(t, bob.ID, res.Data.Transfer.To.ID)
	require.Equal(t, "110.00", res.Data.Transfer.To.Account.Balance)

	recorder = get(t, server, "/ledger?page_id=1&page_size=5&action=TRANSFER&account_from="+aliceUSD.UUID.String(), auth)
	require.Equal(t, http.StatusOK, recorder.Code)

	var ledger ledgerResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&ledger))
	require.Len(t, ledger.Data.Entries, 1)

	entry := ledger.Data.Entries[0]
	require.Equal(t, alice.ID, entry.CustomerFrom)
	require.Equal(t, bob.ID, entry.CustomerTo)
	require.Equal(t, bobUSD.UUID.String(), entry.AccountToUUID)
	require.Equal(t, "10.00", entry.Amount)
	require.Equal(t, "0.10", entry.Fee)
	require.Equal(t, "89.90", entry.AccountFromAmount)
	require.Equal(t, "110.00", entry.AccountToAmount)

	// Self transfers carry no fee.
	recorder = postJSON(t, server, "/transfers", map[string]any{
		"customer_from": alice.ID,
		"account_from":  aliceUSD.UUID,
		"account_to":    aliceEUR.UUID,
		"amount":        5,
	}, auth)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	res = transferResponse{}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&res))
	require.Equal(t, "84.90", res.Data.Transfer.From.Account.Balance)
	require.Equal(t, "5.00", res.Data.Transfer.To.Account.Balance)

	recorder = get(t, server, fmt.Sprintf("/customers/%d", alice.ID), auth)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), `"balance":"84.90"`)
}

func TestTransferAPIRejections(t *testing.T) {
	server := integrationtest.SetupServer(t)

	tokenMaker, err := tokenpkg.New(server.Config.TokenType, server.Config.TokenSymmetricKey)
	require.NoError(t, err)

	auth := withAuth(t, tokenMaker)

	alice := helpers.SeedWallet(t, server.DB)
	bob := helpers.SeedWallet(t, server.DB)

	aliceUSD := usdAccount(t, alice)
	bobUSD := usdAccount(t, bob)

	testCases := []struct {
		name           string
		body           map[string]any
		wantStatusCode int
		wantErrors     []string
	}{
		{
			name: "WholeBalanceWithFee",
			body: map[string]any{
				"customer_from": alice.ID,
				"customer_to":   bob.ID,
				"account_from":  aliceUSD.UUID,
				"account_to":    bobUSD.UUID,
				"amount":        "99.01",
			},
			wantStatusCode: http.StatusBadRequest,
			wantErrors:     []string{"not enough amount to transfer with fee - 99.01 + 0.99 vs 100.00"},
		},
		{
			name: "WholeBalanceSelf",
			body: map[string]any{
				"customer_from": alice.ID,
				"account_from":  aliceUSD.UUID,
				"account_to":    alice.Accounts[2].UUID,
				"amount":        "100",
			},
			wantStatusCode: http.StatusBadRequest,
			wantErrors:     []string{"not enough amount to transfer - 100.00 vs 100.00"},
		},
		{
			name: "SameCustomersAndNotOwned",
			body: map[string]any{
				"customer_from": alice.ID,
				"customer_to":   alice.ID,
				"account_from":  aliceUSD.UUID,
				"account_to":    bobUSD.UUID,
				"amount":        "1",
			},
			wantStatusCode: http.StatusBadRequest,
			wantErrors: []string{
				fmt.Sprintf("customers can't be with same id = %d", alice.ID),
				fmt.Sprintf("account '%s' doesn't belong to customer with id = %d", bobUSD.UUID, alice.ID),
			},
		},
		{
			name: "NegativeAmount",
			body: map[string]any{
				"customer_from": alice.ID,
				"account_from":  aliceUSD.UUID,
				"account_to":    alice.Accounts[1].UUID,
				"amount":        "-1",
			},
			wantStatusCode: http.StatusBadRequest,
			wantErrors:     []string{domain.ErrNegativeAmount.Error()},
		},
		{
			name: "TooManyDecimals",
			body: map[string]any{
				"customer_from": alice.ID,
				"account_from":  aliceUSD.UUID,
				"account_to":    alice.Accounts[1].UUID,
				"amount":        "1.001",
			},
			wantStatusCode: http.StatusBadRequest,
			wantErrors:     []string{domain.ErrInvalidAmount.Error()},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			recorder := postJSON(t, server, "/transfers", tc.body, auth)
			require.Equal(t, tc.wantStatusCode, recorder.Code, recorder.Body.String())

			var res transferResponse
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&res))
			require.Equal(t, tc.wantErrors, res.Errors)
		})
	}

	// Nothing above moved money.
	recorder := get(t, server, fmt.Sprintf("/customers/%d", alice.ID), auth)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), `"balance":"100.00"`)

	recorder = get(t, server, "/ledger?page_id=1&page_size=5&action=TRANSFER&account_from="+aliceUSD.UUID.String(), auth)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"data":{"entries":[]}}`, recorder.Body.String())
}
