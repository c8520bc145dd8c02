// Package ledgerrepo manages repository layer of ledger entries.
//
// The ledger is append-only: entries are created and listed, never changed.
package ledgerrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/pkg/dbpkg"
	"github.com/go-petr/pet-wallet/pkg/errorspkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates ledger repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns ledger RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const columns = `
	id, customer_from_id, customer_to_id, account_from_id, account_to_id,
	account_from_uuid, account_from_currency, account_from_balance,
	account_to_uuid, account_to_currency, account_to_balance,
	amount, fee, action, created_at`

const createQuery = `
INSERT INTO ledger_entries (
	customer_from_id, customer_to_id, account_from_id, account_to_id,
	account_from_uuid, account_from_currency, account_from_balance,
	account_to_uuid, account_to_currency, account_to_balance,
	amount, fee, action
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
)
RETURNING` + columns

// Create appends the entry recording the given accounts' state and returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateLedgerEntryParams) (domain.LedgerEntry, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.From.CustomerID,
		arg.To.CustomerID,
		arg.From.ID,
		arg.To.ID,
		arg.From.UUID,
		arg.From.Currency,
		arg.From.Balance,
		arg.To.UUID,
		arg.To.Currency,
		arg.To.Balance,
		arg.Amount,
		arg.Fee,
		arg.Action,
	)

	e, err := scanEntry(row)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)

		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Constraint {
			case "ledger_entries_account_from_id_fkey", "ledger_entries_account_to_id_fkey":
				return e, domain.ErrAccountNotFound
			case "ledger_entries_customer_from_id_fkey", "ledger_entries_customer_to_id_fkey":
				return e, domain.ErrCustomerNotFound
			}
		}

		return e, errorspkg.ErrInternal
	}

	return e, nil
}

const listQuery = `
SELECT` + columns + `
FROM ledger_entries
WHERE
	($1::varchar IS NULL OR action = $1)
	AND ($2::uuid IS NULL OR account_from_uuid = $2)
	AND ($3::uuid IS NULL OR account_to_uuid = $3)
	AND ($4::varchar IS NULL OR account_from_currency = $4)
%s
LIMIT $5 OFFSET $6
`

// orderClause renders the ORDER BY clause of a listing.
// Entries without explicit created_at ordering fall back to newest first,
// and id breaks the remaining ties in the created_at direction.
// Only known column names are emitted.
func orderClause(orders []domain.LedgerOrder) string {
	var (
		terms      []string
		idDir      = "DESC"
		hasCreated bool
	)

	for _, o := range orders {
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}

		switch o.Field {
		case domain.LedgerOrderAction:
			terms = append(terms, "action "+dir)
		case domain.LedgerOrderCreatedAt:
			terms = append(terms, "created_at "+dir)
			idDir = dir
			hasCreated = true
		}
	}

	if !hasCreated {
		terms = append(terms, "created_at DESC")
	}

	terms = append(terms, "id "+idDir)

	return "ORDER BY " + strings.Join(terms, ", ")
}

// List returns the entries matching the filter in the requested order.
func (r *RepoPGS) List(ctx context.Context, arg domain.ListLedgerEntriesParams) ([]domain.LedgerEntry, error) {
	l := zerolog.Ctx(ctx)

	action := sql.NullString{String: string(arg.Action), Valid: arg.Action != ""}
	currency := sql.NullString{String: arg.Currency, Valid: arg.Currency != ""}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(listQuery, orderClause(arg.OrderBy)),
		action,
		arg.AccountFrom,
		arg.AccountTo,
		currency,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.LedgerEntry{}

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, e)
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

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (domain.LedgerEntry, error) {
	var e domain.LedgerEntry

	err := row.Scan(
		&e.ID,
		&e.CustomerFromID,
		&e.CustomerToID,
		&e.AccountFromID,
		&e.AccountToID,
		&e.AccountFromUUID,
		&e.AccountFromCurrency,
		&e.AccountFromBalance,
		&e.AccountToUUID,
		&e.AccountToCurrency,
		&e.AccountToBalance,
		&e.Amount,
		&e.Fee,
		&e.Action,
		&e.CreatedAt,
	)

	return e, err
}
