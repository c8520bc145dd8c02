// Package web defines common components for a web application.
package web

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Response holds the common response type for all APIs.
type Response struct {
	AccessToken           string     `json:"access_token,omitempty"`
	AccessTokenExpiresAt  *time.Time `json:"access_token_expires_at,omitempty"`
	RefreshToken          string     `json:"refresh_token,omitempty"`
	RefreshTokenExpiresAt *time.Time `json:"refresh_token_expires_at,omitempty"`
	Data                  any        `json:"data,omitempty"`
	Error                 string     `json:"error,omitempty"`
	Errors                any        `json:"errors,omitempty"`
}

// Error wraps a given err into json friendly struct.
func Error(err error) Response {
	return Response{Error: err.Error()}
}

// Errors wraps a list of client-correctable messages into json friendly struct.
func Errors(messages []string) Response {
	return Response{Errors: messages}
}

// DatabaseError is the element of the errors list reported for storage failures.
type DatabaseError struct {
	Database string `json:"database"`
}

// DBErrors wraps a storage failure message into json friendly struct.
func DBErrors(message string) Response {
	return Response{Errors: []DatabaseError{{Database: message}}}
}

// GetErrorMsg renders the first failed field of ve as a human readable message.
func GetErrorMsg(ve validator.ValidationErrors) string {
	if len(ve) == 0 {
		return ""
	}

	fe := ve[0]

	switch fe.Tag() {
	case "required":
		return fe.Field() + " field is required"
	case "min":
		return fe.Field() + " must be at least " + fe.Param()
	case "max":
		return fe.Field() + " must be at most " + fe.Param()
	case "email":
		return fe.Field() + " must be a valid email"
	case "alphanum":
		return fe.Field() + " must contain only letters and digits"
	case "uuid":
		return fe.Field() + " must be a valid UUID"
	case "currency":
		return fe.Field() + " is not a supported currency"
	case "ledgeraction":
		return fe.Field() + " is not a ledger action"
	}

	return fe.Field() + " is invalid"
}
