// Package customerrepo manages repository layer of customers.
package customerrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-petr/pet-wallet/internal/accountrepo"
	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/internal/ledgerrepo"
	"github.com/go-petr/pet-wallet/pkg/dbpkg"
	"github.com/go-petr/pet-wallet/pkg/errorspkg"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates customer repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns customer RepoPGS.
//
// Given a *sql.DB, writes spanning several tables run in their own transaction.
// Given a *sql.Tx, they join it.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO
    customers (first_name, last_name)
VALUES
    ($1, $2)
RETURNING id, first_name, last_name, created_at
`

// CreateWithAccounts atomically creates the customer, its accounts
// and one INITIAL ledger entry per account.
//
// Any failure rolls back every write and is returned as *domain.StorageError.
func (r *RepoPGS) CreateWithAccounts(
	ctx context.Context,
	arg domain.CreateCustomerParams,
	seeds []domain.AccountSeed,
) (domain.CustomerWithAccounts, error) {
	l := zerolog.Ctx(ctx)

	var result domain.CustomerWithAccounts

	err := dbpkg.InTx(ctx, r.db, func(tx dbpkg.SQLInterface) error {
		row := tx.QueryRowContext(ctx, createQuery, arg.FirstName, arg.LastName)

		c, err := scanCustomer(row)
		if err != nil {
			return &domain.StorageError{Message: "cannot create customer", Err: err}
		}

		accountRepo := accountrepo.NewRepoPGS(tx)
		ledgerRepo := ledgerrepo.NewRepoPGS(tx)

		accounts := make([]domain.Account, 0, len(seeds))

		for _, seed := range seeds {
			a, err := accountRepo.Create(ctx, domain.CreateAccountParams{
				UUID:       seed.UUID,
				CustomerID: c.ID,
				Currency:   seed.Currency,
				Balance:    seed.Balance,
			})
			if err != nil {
				return &domain.StorageError{Message: fmt.Sprintf("cannot create %s account", seed.Currency), Err: err}
			}

			_, err = ledgerRepo.Create(ctx, domain.CreateLedgerEntryParams{
				From:   a,
				To:     a,
				Amount: a.Balance,
				Action: domain.ActionInitial,
			})
			if err != nil {
				return &domain.StorageError{Message: fmt.Sprintf("cannot record initial %s balance", seed.Currency), Err: err}
			}

			accounts = append(accounts, a)
		}

		result = domain.CustomerWithAccounts{Customer: c, Accounts: accounts}

		return nil
	})
	if err != nil {
		l.Error().Err(err).Send()

		var storageErr *domain.StorageError
		if errors.As(err, &storageErr) {
			return domain.CustomerWithAccounts{}, err
		}

		return domain.CustomerWithAccounts{}, &domain.StorageError{Message: "cannot commit customer", Err: err}
	}

	return result, nil
}

const getQuery = `
SELECT
	id, first_name, last_name, created_at
FROM customers
WHERE id = $1
`

// Get returns the customer with the given id together with its accounts.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.CustomerWithAccounts, error) {
	l := zerolog.Ctx(ctx)

	c, err := scanCustomer(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			l.Info().Err(err).Int64("customer", id).Send()
			return domain.CustomerWithAccounts{}, domain.ErrCustomerNotFound
		}

		l.Error().Err(err).Send()

		return domain.CustomerWithAccounts{}, errorspkg.ErrInternal
	}

	accounts, err := accountrepo.NewRepoPGS(r.db).ListByCustomer(ctx, c.ID)
	if err != nil {
		return domain.CustomerWithAccounts{}, err
	}

	return domain.CustomerWithAccounts{Customer: c, Accounts: accounts}, nil
}

const listQuery = `
SELECT
	id, first_name, last_name, created_at
FROM customers
ORDER BY id
LIMIT $1 OFFSET $2
`

// List returns the specified page of customers with their accounts.
func (r *RepoPGS) List(ctx context.Context, limit, offset int32) ([]domain.CustomerWithAccounts, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.CustomerWithAccounts{}
	ids := []int64{}

	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, domain.CustomerWithAccounts{Customer: c, Accounts: []domain.Account{}})
		ids = append(ids, c.ID)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if len(ids) == 0 {
		return items, nil
	}

	accounts, err := accountrepo.NewRepoPGS(r.db).ListByCustomers(ctx, ids)
	if err != nil {
		return nil, err
	}

	byCustomer := make(map[int64]int, len(items))
	for i := range items {
		byCustomer[items[i].ID] = i
	}

	for _, a := range accounts {
		i := byCustomer[a.CustomerID]
		items[i].Accounts = append(items[i].Accounts, a)
	}

	return items, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row scanner) (domain.Customer, error) {
	var c domain.Customer

	err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.CreatedAt,
	)

	return c, err
}
