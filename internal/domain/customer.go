// Package domain provides definitions of all entities.
package domain

import (
	"errors"
	"time"
)

// ErrCustomerNotFound indicates that the customer is not found.
var ErrCustomerNotFound = errors.New("customer not found")

// Customer is the owner of wallet accounts.
type Customer struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCustomerParams is the input data to provision a customer.
type CreateCustomerParams struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// CustomerWithAccounts is the customer together with all of its accounts.
type CustomerWithAccounts struct {
	Customer
	Accounts []Account `json:"accounts"`
}

// StorageError reports a failed storage write.
//
// Message names the step that failed and is safe to show to API clients.
type StorageError struct {
	Message string
	Err     error
}

func (e *StorageError) Error() string {
	return e.Message + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
