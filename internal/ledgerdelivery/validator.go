package ledgerdelivery

import (
	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-playground/validator/v10"
)

// ValidAction validates whether the field holds a known ledger action.
var ValidAction validator.Func = func(fl validator.FieldLevel) bool {
	if a, ok := fl.Field().Interface().(string); ok {
		return domain.Action(a).IsValid()
	}

	return false
}
