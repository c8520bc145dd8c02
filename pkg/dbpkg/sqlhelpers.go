// Package dbpkg provides helpers to make db initialization and transactions easier.
package dbpkg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// SQLInterface provides neccessary db methods to perform queries.
//
// Both *sql.DB and *sql.Tx satisfy it, so repositories can run inside or outside a transaction.
type SQLInterface interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Setup sets up connection with database.
func Setup(driver, source string) (*sql.DB, error) {
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

// ExecTx executes fn within a database transaction.
//
// The transaction is committed when fn returns nil and rolled back otherwise.
// The error returned by fn is passed through so callers can match it.
func ExecTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx err: %w, rb err: %v", err, rbErr)
		}

		return err
	}

	return tx.Commit()
}

// InTx runs fn inside a transaction on db.
//
// When db is a *sql.DB a new transaction is started and committed or rolled back around fn.
// Otherwise db is expected to already be a transaction and fn joins it.
func InTx(ctx context.Context, db SQLInterface, fn func(SQLInterface) error) error {
	conn, ok := db.(*sql.DB)
	if !ok {
		return fn(db)
	}

	return ExecTx(ctx, conn, func(tx *sql.Tx) error {
		return fn(tx)
	})
}

// SetLockTimeout bounds how long statements of the current transaction wait for row locks.
// A zero timeout keeps the server default.
//
// Postgres takes whole milliseconds and reads 0 as no limit,
// so the timeout is rounded up and never drops below 1ms.
func SetLockTimeout(ctx context.Context, tx SQLInterface, timeout time.Duration) error {
	if timeout <= 0 {
		return nil
	}

	_, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", LockTimeoutMillis(timeout)))

	return err
}

// LockTimeoutMillis returns timeout in milliseconds rounded up.
func LockTimeoutMillis(timeout time.Duration) int64 {
	return int64((timeout + time.Millisecond - 1) / time.Millisecond)
}

// Postgres error codes of failures that leave no state behind and may be retried as a fresh transaction.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

// IsRetryable reports whether err is a lock timeout, deadlock or serialization failure.
func IsRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	switch pqErr.Code {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	}

	return false
}
