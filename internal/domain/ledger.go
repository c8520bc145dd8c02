package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Action tags the event a ledger entry records.
type Action string

// Ledger actions.
const (
	ActionInitial  Action = "INITIAL"
	ActionTransfer Action = "TRANSFER"
	ActionCharge   Action = "CHARGE"
)

// IsValid reports whether a is a known ledger action.
func (a Action) IsValid() bool {
	switch a {
	case ActionInitial, ActionTransfer, ActionCharge:
		return true
	}

	return false
}

// LedgerEntry is an append-only record of a balance-affecting event.
//
// The account snapshot fields hold the state of both accounts right after the event.
type LedgerEntry struct {
	ID                  int64           `json:"id"`
	CustomerFromID      int64           `json:"customer_from"`
	CustomerToID        int64           `json:"customer_to"`
	AccountFromID       int64           `json:"-"`
	AccountToID         int64           `json:"-"`
	AccountFromUUID     uuid.UUID       `json:"account_from_uuid"`
	AccountFromCurrency string          `json:"account_from_currency"`
	AccountFromBalance  decimal.Decimal `json:"account_from_amount"`
	AccountToUUID       uuid.UUID       `json:"account_to_uuid"`
	AccountToCurrency   string          `json:"account_to_currency"`
	AccountToBalance    decimal.Decimal `json:"account_to_amount"`
	Amount              decimal.Decimal `json:"amount"`
	Fee                 decimal.Decimal `json:"fee"`
	Action              Action          `json:"action"`
	CreatedAt           time.Time       `json:"created_at"`
}

// MarshalJSON renders the money fields with two fractional digits.
func (e LedgerEntry) MarshalJSON() ([]byte, error) {
	type entry LedgerEntry

	return json.Marshal(struct {
		entry
		AccountFromBalance string `json:"account_from_amount"`
		AccountToBalance   string `json:"account_to_amount"`
		Amount             string `json:"amount"`
		Fee                string `json:"fee"`
	}{
		entry:              entry(e),
		AccountFromBalance: e.AccountFromBalance.StringFixed(2),
		AccountToBalance:   e.AccountToBalance.StringFixed(2),
		Amount:             e.Amount.StringFixed(2),
		Fee:                e.Fee.StringFixed(2),
	})
}

// CreateLedgerEntryParams is the input data to append a ledger entry.
type CreateLedgerEntryParams struct {
	From   Account
	To     Account
	Amount decimal.Decimal
	Fee    decimal.Decimal
	Action Action
}

// LedgerFilter narrows and orders ledger listings. Zero values match everything
// and list the newest entries first.
type LedgerFilter struct {
	Action      Action
	Currency    string
	AccountFrom uuid.NullUUID
	AccountTo   uuid.NullUUID
	OrderBy     []LedgerOrder
}

// Ledger fields a listing can be ordered by.
const (
	LedgerOrderAction    = "action"
	LedgerOrderCreatedAt = "created_at"
)

// ErrInvalidLedgerOrdering indicates an ordering term other than [-]action or [-]created_at.
var ErrInvalidLedgerOrdering = errors.New("ordering accepts action and created_at, optionally prefixed with -")

// LedgerOrder is one sort key of a ledger listing.
type LedgerOrder struct {
	Field string
	Desc  bool
}

// ParseLedgerOrdering parses a comma separated list such as "action,-created_at".
// A leading "-" sorts that field descending. An empty string yields no ordering.
func ParseLedgerOrdering(s string) ([]LedgerOrder, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var (
		orders = []LedgerOrder{}
		seen   = map[string]bool{}
	)

	for _, term := range strings.Split(s, ",") {
		term = strings.TrimSpace(term)

		o := LedgerOrder{Field: strings.TrimPrefix(term, "-")}
		o.Desc = o.Field != term

		if (o.Field != LedgerOrderAction && o.Field != LedgerOrderCreatedAt) || seen[o.Field] {
			return nil, ErrInvalidLedgerOrdering
		}

		seen[o.Field] = true
		orders = append(orders, o)
	}

	return orders, nil
}

// ListLedgerEntriesParams is the input data to list ledger entries.
type ListLedgerEntriesParams struct {
	LedgerFilter
	Limit  int32
	Offset int32
}
