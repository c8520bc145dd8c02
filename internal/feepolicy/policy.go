// Package feepolicy computes transfer fees.
package feepolicy

import (
	"errors"

	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrInvalidPercent indicates a fee percent that is not a number in [0, 100].
var ErrInvalidPercent = errors.New("fee percent must be a number between 0 and 100")

var hundred = decimal.NewFromInt(100)

// Policy charges a fixed percent of every inter-customer transfer.
type Policy struct {
	percent decimal.Decimal
}

// New returns the policy charging percent of the transferred amount.
func New(percent decimal.Decimal) (Policy, error) {
	if percent.IsNegative() || percent.GreaterThan(hundred) {
		return Policy{}, ErrInvalidPercent
	}

	return Policy{percent: percent}, nil
}

// Parse is like New but takes the percent as a string, e.g. "1" or "0.5".
func Parse(percent string) (Policy, error) {
	p, err := decimal.NewFromString(percent)
	if err != nil {
		return Policy{}, ErrInvalidPercent
	}

	return New(p)
}

// Percent returns the configured fee percent.
func (p Policy) Percent() decimal.Decimal {
	return p.percent
}

// Calculate returns the fee for moving amount, rounded half away from zero to cents.
func (p Policy) Calculate(amount decimal.Decimal, kind domain.TransferKind) decimal.Decimal {
	if kind == domain.SelfTransfer {
		return decimal.Zero
	}

	return amount.Mul(p.percent).Div(hundred).Round(2)
}
