// Package transferrepo manages repository layer of transfers.
package transferrepo

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/go-petr/pet-wallet/internal/accountrepo"
	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/internal/ledgerrepo"
	"github.com/go-petr/pet-wallet/pkg/dbpkg"
	"github.com/go-petr/pet-wallet/pkg/errorspkg"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RepoPGS facilitates transfer repository layer logic.
type RepoPGS struct {
	db          dbpkg.SQLInterface
	lockTimeout time.Duration
}

// NewRepoPGS returns transfer RepoPGS.
//
// lockTimeout bounds the wait for account row locks, zero keeps the database default.
func NewRepoPGS(db dbpkg.SQLInterface, lockTimeout time.Duration) *RepoPGS {
	return &RepoPGS{
		db:          db,
		lockTimeout: lockTimeout,
	}
}

// Transfer moves money between two accounts within a single db transaction.
//
// Both account rows are locked in ascending uuid order before check runs on their snapshots.
// If check fails its error is returned unchanged and nothing is written.
// Otherwise from is debited by amount plus the fee, to is credited by amount
// and exactly one TRANSFER ledger entry is appended.
func (r *RepoPGS) Transfer(ctx context.Context, arg domain.TransferTxParams, check domain.TransferCheck) (domain.TransferTxResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.TransferTxResult

	err := dbpkg.InTx(ctx, r.db, func(tx dbpkg.SQLInterface) error {
		if err := dbpkg.SetLockTimeout(ctx, tx, r.lockTimeout); err != nil {
			return err
		}

		accountRepo := accountrepo.NewRepoPGS(tx)

		from, to, err := lockAccounts(ctx, accountRepo, arg.AccountFrom, arg.AccountTo)
		if err != nil {
			return err
		}

		fee, err := check(from.Account, to.Account)
		if err != nil {
			return err
		}

		from.Account, to.Account, err = applyDeltas(ctx, accountRepo, from.Account, to.Account, arg.Amount, fee)
		if err != nil {
			return err
		}

		entry, err := ledgerrepo.NewRepoPGS(tx).Create(ctx, domain.CreateLedgerEntryParams{
			From:   from.Account,
			To:     to.Account,
			Amount: arg.Amount,
			Fee:    fee,
			Action: domain.ActionTransfer,
		})
		if err != nil {
			return err
		}

		result = domain.TransferTxResult{From: from, To: to, Entry: entry}

		return nil
	})
	if err != nil {
		var validationErr *domain.ValidationError
		switch {
		case errors.As(err, &validationErr):
			return domain.TransferTxResult{}, validationErr
		case errors.Is(err, domain.ErrAccountNotFound):
			return domain.TransferTxResult{}, domain.ErrAccountNotFound
		}

		var pqErr *pq.Error
		if dbpkg.IsRetryable(err) && errors.As(err, &pqErr) {
			l.Warn().Err(err).Str("code", string(pqErr.Code)).Msg("transfer aborted by lock conflict")
		} else {
			l.Error().Err(err).Send()
		}

		return domain.TransferTxResult{}, errorspkg.ErrInternal
	}

	return result, nil
}

// lockAccounts locks both accounts in ascending uuid order to rule out lock-order deadlocks.
// A transfer within one account locks it once.
func lockAccounts(ctx context.Context, r *accountrepo.RepoPGS, fromID, toID uuid.UUID) (from, to domain.OwnedAccount, err error) {
	if fromID == toID {
		from, err = r.GetForUpdate(ctx, fromID)
		return from, from, err
	}

	first, second := fromID, toID
	if bytes.Compare(first[:], second[:]) > 0 {
		first, second = second, first
	}

	firstAccount, err := r.GetForUpdate(ctx, first)
	if err != nil {
		return from, to, err
	}

	secondAccount, err := r.GetForUpdate(ctx, second)
	if err != nil {
		return from, to, err
	}

	if first == fromID {
		return firstAccount, secondAccount, nil
	}

	return secondAccount, firstAccount, nil
}

// applyDeltas debits from by amount+fee and credits to by amount in ascending uuid order.
func applyDeltas(ctx context.Context, r *accountrepo.RepoPGS, from, to domain.Account, amount, fee decimal.Decimal) (domain.Account, domain.Account, error) {
	debit := amount.Add(fee).Neg()

	if from.ID == to.ID {
		a, err := r.AddBalance(ctx, from.ID, debit.Add(amount))
		return a, a, err
	}

	type update struct {
		id    int64
		delta decimal.Decimal
		dst   *domain.Account
	}

	updates := []update{
		{id: from.ID, delta: debit, dst: &from},
		{id: to.ID, delta: amount, dst: &to},
	}

	if bytes.Compare(from.UUID[:], to.UUID[:]) > 0 {
		updates[0], updates[1] = updates[1], updates[0]
	}

	for _, u := range updates {
		a, err := r.AddBalance(ctx, u.id, u.delta)
		if err != nil {
			return from, to, err
		}

		*u.dst = a
	}

	return from, to, nil
}
