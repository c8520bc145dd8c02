package transferservice

import (
	"fmt"
	"strconv"

	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/internal/feepolicy"
	"github.com/shopspring/decimal"
)

// Validate checks the transfer request against the locked snapshots of both accounts.
//
// Every rule of the request kind is checked, so the result lists all violations in rule order.
// An empty result means the transfer is admissible.
func Validate(policy feepolicy.Policy, from, to domain.Account, req domain.TransferRequest) []domain.Violation {
	var violations []domain.Violation

	add := func(v *domain.Violation) {
		if v != nil {
			violations = append(violations, *v)
		}
	}

	if req.Kind == domain.SelfTransfer {
		add(checkOwner(from, req.CustomerFrom))
		add(checkBalance(from, req))
		add(checkOwner(to, req.CustomerFrom))

		return violations
	}

	add(checkOwner(from, req.CustomerFrom))
	add(checkCustomers(req))
	add(checkOwner(to, req.CustomerTo))
	add(checkBalanceWithFee(from, req, policy.Calculate(req.Amount, req.Kind)))

	return violations
}

func checkOwner(a domain.Account, customerID int64) *domain.Violation {
	if a.CustomerID == customerID {
		return nil
	}

	return &domain.Violation{
		Rule:    domain.RuleAccountNotOwned,
		Message: fmt.Sprintf("account '%s' doesn't belong to customer with id = %d", a.UUID, customerID),
		Values: map[string]string{
			"account":  a.UUID.String(),
			"customer": strconv.FormatInt(customerID, 10),
		},
	}
}

func checkCustomers(req domain.TransferRequest) *domain.Violation {
	if req.CustomerTo != req.CustomerFrom {
		return nil
	}

	return &domain.Violation{
		Rule:    domain.RuleSameCustomers,
		Message: fmt.Sprintf("customers can't be with same id = %d", req.CustomerTo),
		Values: map[string]string{
			"customer": strconv.FormatInt(req.CustomerTo, 10),
		},
	}
}

// checkBalance requires a strictly positive remainder, so the whole balance can't be moved.
func checkBalance(from domain.Account, req domain.TransferRequest) *domain.Violation {
	if from.Balance.Sub(req.Amount).IsPositive() {
		return nil
	}

	return &domain.Violation{
		Rule:    domain.RuleNotEnoughAmount,
		Message: fmt.Sprintf("not enough amount to transfer - %s vs %s", money(req.Amount), money(from.Balance)),
		Values: map[string]string{
			"amount":  money(req.Amount),
			"balance": money(from.Balance),
		},
	}
}

func checkBalanceWithFee(from domain.Account, req domain.TransferRequest, fee decimal.Decimal) *domain.Violation {
	if from.Balance.Sub(req.Amount).Sub(fee).IsPositive() {
		return nil
	}

	return &domain.Violation{
		Rule:    domain.RuleNotEnoughAmountWithFee,
		Message: fmt.Sprintf("not enough amount to transfer with fee - %s + %s vs %s", money(req.Amount), money(fee), money(from.Balance)),
		Values: map[string]string{
			"amount":  money(req.Amount),
			"fee":     money(fee),
			"balance": money(from.Balance),
		},
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
