// Package accountrepo manages repository layer of accounts.
package accountrepo

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
	"github.com/shopspring/decimal"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO
    accounts (uuid, customer_id, currency, balance)
VALUES
    ($1, $2, $3, $4)
RETURNING id, uuid, customer_id, currency, balance, created_at
`

// Create creates the account and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, arg.UUID, arg.CustomerID, arg.Currency, arg.Balance)

	a, err := scanAccount(row)
	if err != nil {
		l.Error().Err(err).Send()

		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Constraint {
			case "accounts_customer_id_fkey":
				return a, domain.ErrCustomerNotFound
			case "accounts_uuid_key":
				return a, domain.ErrAccountAlreadyExists
			case "accounts_balance_check":
				return a, domain.ErrInsufficientBalance
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const getQuery = `
SELECT
	id, uuid, customer_id, currency, balance, created_at
FROM accounts
WHERE uuid = $1
`

// Get returns the account with the given uuid.
func (r *RepoPGS) Get(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		l.Error().Err(err).Send()

		if errors.Is(err, sql.ErrNoRows) {
			return a, domain.ErrAccountNotFound
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const getForUpdateQuery = `
SELECT
	a.id, a.uuid, a.customer_id, a.currency, a.balance, a.created_at,
	c.id, c.first_name, c.last_name, c.created_at
FROM accounts a
JOIN customers c ON c.id = a.customer_id
WHERE a.uuid = $1
FOR UPDATE OF a
`

// GetForUpdate returns the account with the given uuid together with its owner
// and keeps the account row locked until the enclosing transaction ends.
//
// The repo must be bound to a transaction for the lock to outlive the call.
func (r *RepoPGS) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.OwnedAccount, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getForUpdateQuery, id)

	var oa domain.OwnedAccount

	err := row.Scan(
		&oa.Account.ID,
		&oa.Account.UUID,
		&oa.Account.CustomerID,
		&oa.Account.Currency,
		&oa.Account.Balance,
		&oa.Account.CreatedAt,
		&oa.Customer.ID,
		&oa.Customer.FirstName,
		&oa.Customer.LastName,
		&oa.Customer.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			l.Info().Err(err).Stringer("account", id).Send()
			return oa, domain.ErrAccountNotFound
		}

		// Lock timeouts and deadlocks pass through untouched so the caller can tell them apart.
		l.Error().Err(err).Send()

		return oa, err
	}

	return oa, nil
}

const addBalanceQuery = `
UPDATE accounts
SET balance = balance + $1
WHERE id = $2
RETURNING id, uuid, customer_id, currency, balance, created_at
`

// AddBalance changes the account's balance by delta and returns the changed account.
func (r *RepoPGS) AddBalance(ctx context.Context, id int64, delta decimal.Decimal) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, addBalanceQuery, delta, id))
	if err != nil {
		l.Error().Err(err).Send()

		if errors.Is(err, sql.ErrNoRows) {
			return a, domain.ErrAccountNotFound
		}

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "accounts_balance_check" {
			return a, domain.ErrInsufficientBalance
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const listByCustomersQuery = `
SELECT
	id, uuid, customer_id, currency, balance, created_at
FROM accounts
WHERE customer_id = ANY($1)
ORDER BY customer_id, id
`

// ListByCustomers returns the accounts of the given customers ordered by customer and creation.
func (r *RepoPGS) ListByCustomers(ctx context.Context, customerIDs []int64) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listByCustomersQuery, pq.Array(customerIDs))
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, a)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

// ListByCustomer returns the accounts of the given customer.
func (r *RepoPGS) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Account, error) {
	return r.ListByCustomers(ctx, []int64{customerID})
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (domain.Account, error) {
	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.UUID,
		&a.CustomerID,
		&a.Currency,
		&a.Balance,
		&a.CreatedAt,
	)

	return a, err
}
