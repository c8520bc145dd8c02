// Package sessionrepo stores operator refresh sessions in PostgreSQL.
package sessionrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/pkg/dbpkg"
	"github.com/go-petr/pet-wallet/pkg/errorspkg"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates session repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns session RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// columns is the select list matching scanSession.
const columns = `id, username, refresh_token, user_agent, client_ip, is_blocked, expires_at, created_at`

const (
	createQuery = `
INSERT INTO sessions (id, username, refresh_token, user_agent, client_ip, is_blocked, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + columns

	getQuery = `SELECT ` + columns + ` FROM sessions WHERE id = $1`

	blockQuery = `
UPDATE sessions
SET is_blocked = true
WHERE id = $1 AND username = $2
RETURNING ` + columns
)

// Create stores a new session of an existing operator.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateSessionParams) (domain.Session, error) {
	s, err := scanSession(r.db.QueryRowContext(ctx, createQuery,
		arg.ID,
		arg.Username,
		arg.RefreshToken,
		arg.UserAgent,
		arg.ClientIP,
		arg.IsBlocked,
		arg.ExpiresAt,
	))
	if err == nil {
		return s, nil
	}

	l := zerolog.Ctx(ctx)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Constraint == "sessions_username_fkey" {
		l.Info().Err(err).Str("username", arg.Username).Send()
		return domain.Session{}, domain.ErrOperatorNotFound
	}

	l.Error().Err(err).Send()

	return domain.Session{}, errorspkg.ErrInternal
}

// Get returns session with the given id.
func (r *RepoPGS) Get(ctx context.Context, id uuid.UUID) (domain.Session, error) {
	s, err := scanSession(r.db.QueryRowContext(ctx, getQuery, id))

	return s, mapNotFound(ctx, id, err)
}

// Block marks the session of the given operator as blocked and returns it.
// A session owned by another operator is reported as not found.
func (r *RepoPGS) Block(ctx context.Context, id uuid.UUID, username string) (domain.Session, error) {
	s, err := scanSession(r.db.QueryRowContext(ctx, blockQuery, id, username))

	return s, mapNotFound(ctx, id, err)
}

func mapNotFound(ctx context.Context, id uuid.UUID, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		zerolog.Ctx(ctx).Info().Err(err).Stringer("session", id).Send()
		return domain.ErrSessionNotFound
	}

	zerolog.Ctx(ctx).Error().Err(err).Stringer("session", id).Send()

	return errorspkg.ErrInternal
}

func scanSession(row *sql.Row) (domain.Session, error) {
	var s domain.Session

	err := row.Scan(
		&s.ID,
		&s.Username,
		&s.RefreshToken,
		&s.UserAgent,
		&s.ClientIP,
		&s.IsBlocked,
		&s.ExpiresAt,
		&s.CreatedAt,
	)
	if err != nil {
		return domain.Session{}, err
	}

	return s, nil
}
