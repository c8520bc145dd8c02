// Package operatorrepo manages repository layer of operators.
package operatorrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/pkg/dbpkg"
	"github.com/go-petr/pet-wallet/pkg/errorspkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates operator repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns operator RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO operators (
    username,
    hashed_password,
    full_name,
    email
) VALUES (
    $1, $2, $3, $4
) RETURNING username, hashed_password, full_name, email, password_changed_at, created_at
`

// Create creates the operator and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateOperatorParams) (domain.Operator, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.Username,
		arg.HashedPassword,
		arg.FullName,
		arg.Email,
	)

	o, err := scanOperator(row)
	if err != nil {
		l.Error().Err(err).Send()

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			switch pqErr.Constraint {
			case "operators_pkey":
				return o, domain.ErrUsernameAlreadyExists
			case "operators_email_key":
				return o, domain.ErrEmailAlreadyExists
			}
		}

		return o, errorspkg.ErrInternal
	}

	return o, nil
}

const getQuery = `
SELECT
	username,
	hashed_password,
	full_name,
	email,
	password_changed_at,
	created_at
FROM operators
WHERE username = $1
`

// Get returns the operator with the given username.
func (r *RepoPGS) Get(ctx context.Context, username string) (domain.Operator, error) {
	l := zerolog.Ctx(ctx)

	o, err := scanOperator(r.db.QueryRowContext(ctx, getQuery, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			l.Info().Err(err).Str("username", username).Send()
			return o, domain.ErrOperatorNotFound
		}

		l.Error().Err(err).Send()

		return o, errorspkg.ErrInternal
	}

	return o, nil
}

func scanOperator(row *sql.Row) (domain.Operator, error) {
	var o domain.Operator

	err := row.Scan(
		&o.Username,
		&o.HashedPassword,
		&o.FullName,
		&o.Email,
		&o.PasswordChangedAt,
		&o.CreatedAt,
	)

	return o, err
}
