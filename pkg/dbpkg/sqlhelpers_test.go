package dbpkg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
)

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "LockNotAvailable", err: &pq.Error{Code: "55P03"}, want: true},
		{name: "DeadlockDetected", err: &pq.Error{Code: "40P01"}, want: true},
		{name: "SerializationFailure", err: &pq.Error{Code: "40001"}, want: true},
		{name: "Wrapped", err: fmt.Errorf("tx err: %w", &pq.Error{Code: "55P03"}), want: true},
		{name: "CheckViolation", err: &pq.Error{Code: "23514"}, want: false},
		{name: "NotPQ", err: errors.New("boom"), want: false},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := IsRetryable(tc.err); got != tc.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

type fakeTx struct {
	SQLInterface
	execs []string
}

func (f *fakeTx) ExecContext(_ context.Context, query string, _ ...interface{}) (sql.Result, error) {
	f.execs = append(f.execs, query)
	return nil, nil
}

func TestInTxJoinsTransaction(t *testing.T) {
	t.Parallel()

	tx := &fakeTx{}
	wantErr := errors.New("boom")

	var got SQLInterface

	err := InTx(context.Background(), tx, func(db SQLInterface) error {
		got = db
		return wantErr
	})

	if !errors.Is(err, wantErr) {
		t.Errorf("InTx() returned error %v, want %v", err, wantErr)
	}

	if got != tx {
		t.Errorf("InTx() passed %v to fn, want the given transaction", got)
	}
}

func TestSetLockTimeout(t *testing.T) {
	t.Parallel()

	tx := &fakeTx{}

	if err := SetLockTimeout(context.Background(), tx, 0); err != nil {
		t.Fatalf("SetLockTimeout(ctx, tx, 0) returned error: %v", err)
	}

	if len(tx.execs) != 0 {
		t.Fatalf("SetLockTimeout(ctx, tx, 0) executed %v, want nothing", tx.execs)
	}

	if err := SetLockTimeout(context.Background(), tx, 1500*time.Millisecond); err != nil {
		t.Fatalf("SetLockTimeout(ctx, tx, 1.5s) returned error: %v", err)
	}

	want := []string{"SET LOCAL lock_timeout = 1500"}
	if len(tx.execs) != 1 || tx.execs[0] != want[0] {
		t.Errorf("SetLockTimeout(ctx, tx, 1.5s) executed %v, want %v", tx.execs, want)
	}
}

// A sub-millisecond timeout must not turn into lock_timeout = 0, which disables the limit.
func TestSetLockTimeoutSubMillisecond(t *testing.T) {
	t.Parallel()

	tx := &fakeTx{}

	if err := SetLockTimeout(context.Background(), tx, 500*time.Microsecond); err != nil {
		t.Fatalf("SetLockTimeout(ctx, tx, 500us) returned error: %v", err)
	}

	want := "SET LOCAL lock_timeout = 1"
	if len(tx.execs) != 1 || tx.execs[0] != want {
		t.Errorf("SetLockTimeout(ctx, tx, 500us) executed %v, want [%v]", tx.execs, want)
	}
}

func TestLockTimeoutMillis(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		timeout time.Duration
		want    int64
	}{
		{timeout: time.Nanosecond, want: 1},
		{timeout: 999 * time.Microsecond, want: 1},
		{timeout: time.Millisecond, want: 1},
		{timeout: time.Millisecond + time.Nanosecond, want: 2},
		{timeout: 3 * time.Second, want: 3000},
	}

	for _, tc := range testCases {
		if got := LockTimeoutMillis(tc.timeout); got != tc.want {
			t.Errorf("LockTimeoutMillis(%v) = %d, want %d", tc.timeout, got, tc.want)
		}
	}
}
