package domain

import (
	"errors"
	"time"
)

var (
	// ErrUsernameAlreadyExists indicates that the operator with the given username already exists.
	ErrUsernameAlreadyExists = errors.New("username already exists")
	// ErrEmailAlreadyExists indicates that the operator with the given email already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrOperatorNotFound indicates that the operator is not found.
	ErrOperatorNotFound = errors.New("operator not found")
	// ErrWrongPassword indicates the wrong password for the given operator.
	ErrWrongPassword = errors.New("wrong password")
)

// Operator is an authenticated API client acting on customers' wallets.
type Operator struct {
	Username          string    `json:"username"`
	HashedPassword    string    `json:"hashed_password"`
	FullName          string    `json:"full_name"`
	Email             string    `json:"email"`
	PasswordChangedAt time.Time `json:"password_changed_at,omitempty"`
	CreatedAt         time.Time `json:"created_at,omitempty"`
}

// CreateOperatorParams is the input data to create an operator.
type CreateOperatorParams struct {
	Username       string `json:"username"`
	HashedPassword string `json:"hashed_password"`
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
}

// OperatorWithoutPassword is Operator data excluding password data.
type OperatorWithoutPassword struct {
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// WithoutPassword returns the operator data that is safe to send to clients.
func (o Operator) WithoutPassword() OperatorWithoutPassword {
	return OperatorWithoutPassword{
		Username:  o.Username,
		FullName:  o.FullName,
		Email:     o.Email,
		CreatedAt: o.CreatedAt,
	}
}
