package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrBlockedSession indicates that the session is blocked.
	ErrBlockedSession = errors.New("blocked session")
	// ErrMismatchedRefreshToken indicates mismatch between the given token and the session token.
	ErrMismatchedRefreshToken = errors.New("mismatched session token")
	// ErrInvalidOperator indicates that the session belongs to another operator.
	ErrInvalidOperator = errors.New("incorrect session operator")
	// ErrExpiredSession indicates that the session has expired.
	ErrExpiredSession = errors.New("expired session")
	// ErrSessionNotFound indicates that the session is not found.
	ErrSessionNotFound = errors.New("session not found")
)

// Session holds refresh token data of an operator.
type Session struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	RefreshToken string    `json:"refresh_token"`
	UserAgent    string    `json:"user_agent"`
	ClientIP     string    `json:"client_ip"`
	IsBlocked    bool      `json:"is_blocked"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateSessionParams holds data needed for Session creation.
type CreateSessionParams struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	RefreshToken string    `json:"refresh_token"`
	UserAgent    string    `json:"user_agent"`
	ClientIP     string    `json:"client_ip"`
	IsBlocked    bool      `json:"is_blocked"`
	ExpiresAt    time.Time `json:"expires_at"`
}
