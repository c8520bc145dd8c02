package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount indicates an amount that is not a decimal with at most 8 integer and 2 fractional digits.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNegativeAmount indicates zero or negative amount.
	ErrNegativeAmount = errors.New("amount must be positive")
)

// TransferKind distinguishes transfers inside one customer's wallet from transfers between customers.
type TransferKind int

// Transfer kinds.
const (
	SelfTransfer TransferKind = iota
	InterCustomerTransfer
)

func (k TransferKind) String() string {
	switch k {
	case SelfTransfer:
		return "self"
	case InterCustomerTransfer:
		return "inter-customer"
	}

	return "unknown"
}

// CreateTransferParams is the raw transfer request as received from a client.
//
// A nil CustomerTo makes the transfer a self-transfer.
type CreateTransferParams struct {
	CustomerFrom int64     `json:"customer_from"`
	CustomerTo   *int64    `json:"customer_to,omitempty"`
	AccountFrom  uuid.UUID `json:"account_from"`
	AccountTo    uuid.UUID `json:"account_to"`
	Amount       string    `json:"amount"`
}

// TransferRequest is a parsed transfer request.
//
// CustomerTo is meaningful only for InterCustomerTransfer.
type TransferRequest struct {
	Kind         TransferKind
	CustomerFrom int64
	CustomerTo   int64
	AccountFrom  uuid.UUID
	AccountTo    uuid.UUID
	Amount       decimal.Decimal
}

// TransferCheck decides on locked account snapshots whether a transfer may proceed.
// It returns the fee to charge or an error that aborts the transfer.
type TransferCheck func(from, to Account) (decimal.Decimal, error)

// TransferTxParams is the input data for the transfer transaction.
type TransferTxParams struct {
	AccountFrom uuid.UUID
	AccountTo   uuid.UUID
	Amount      decimal.Decimal
}

// TransferTxResult is the result of the transfer transaction.
type TransferTxResult struct {
	From  OwnedAccount
	To    OwnedAccount
	Entry LedgerEntry
}

// Party is one side of a completed transfer.
type Party struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Account   Account `json:"account"`
}

// NewParty builds the public view of an owned account.
func NewParty(oa OwnedAccount) Party {
	return Party{
		ID:        oa.Customer.ID,
		FirstName: oa.Customer.FirstName,
		LastName:  oa.Customer.LastName,
		Account:   oa.Account,
	}
}

// TransferReceipt is returned to the client after a successful transfer.
type TransferReceipt struct {
	From Party `json:"from"`
	To   Party `json:"to"`
}

// Rule identifies a transfer validation rule.
type Rule string

// Transfer validation rules.
const (
	RuleAccountNotOwned        Rule = "account_not_owned"
	RuleSameCustomers          Rule = "same_customers"
	RuleNotEnoughAmount        Rule = "not_enough_amount"
	RuleNotEnoughAmountWithFee Rule = "not_enough_amount_with_fee"
)

// Violation describes a broken transfer rule.
type Violation struct {
	Rule    Rule              `json:"rule"`
	Message string            `json:"message"`
	Values  map[string]string `json:"values"`
}

// ValidationError is returned when a transfer breaks one or more rules.
type ValidationError struct {
	Violations []Violation
}

// Messages returns the violation messages in order.
func (e *ValidationError) Messages() []string {
	messages := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		messages[i] = v.Message
	}

	return messages
}

func (e *ValidationError) Error() string {
	return "invalid transfer: " + strings.Join(e.Messages(), "; ")
}
