package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountAlreadyExists indicates a duplicate account uuid.
	ErrAccountAlreadyExists = errors.New("account already exists")
	// ErrInsufficientBalance indicates that a write would make the balance negative.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Account holds customer balance for a specific currency.
//
// ID is internal to storage; clients address accounts by UUID.
type Account struct {
	ID         int64           `json:"-"`
	UUID       uuid.UUID       `json:"uuid"`
	CustomerID int64           `json:"-"`
	Currency   string          `json:"currency"`
	Balance    decimal.Decimal `json:"balance"`
	CreatedAt  time.Time       `json:"-"`
}

// MarshalJSON renders the balance with two fractional digits.
func (a Account) MarshalJSON() ([]byte, error) {
	type account Account

	return json.Marshal(struct {
		account
		Balance string `json:"balance"`
	}{
		account: account(a),
		Balance: a.Balance.StringFixed(2),
	})
}

// OwnedAccount is an account together with its owner.
type OwnedAccount struct {
	Account  Account
	Customer Customer
}

// CreateAccountParams is the input data to create an account.
type CreateAccountParams struct {
	UUID       uuid.UUID
	CustomerID int64
	Currency   string
	Balance    decimal.Decimal
}

// AccountSeed describes an account opened at provisioning time.
type AccountSeed struct {
	UUID     uuid.UUID
	Currency string
	Balance  decimal.Decimal
}
