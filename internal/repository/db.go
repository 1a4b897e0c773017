package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
)

const (
	pqLockNotAvailable pq.ErrorCode = "55P03"
	pqQueryCanceled    pq.ErrorCode = "57014"
)

type scanner interface {
	Scan(dest ...any) error
}

type DB struct {
	pool        *sql.DB
	lockTimeout time.Duration
}

func NewDB(pool *sql.DB, lockTimeout time.Duration) *DB {
	return &DB{pool: pool, lockTimeout: lockTimeout}
}

func (d *DB) Conn() *sql.DB {
	return d.pool
}

func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	tx, err := d.pool.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("BeginTx: %w", err)
	}
	return tx, nil
}

// BeginLocked opens a transaction whose row-lock waits are bounded by the
// configured lock timeout or the caller's deadline, whichever is sooner.
func (d *DB) BeginLocked(ctx context.Context) (*sql.Tx, error) {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	if err := SetLockTimeout(ctx, tx, d.lockTimeout); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("BeginLocked: %w", err)
	}
	return tx, nil
}

func SetLockTimeout(ctx context.Context, tx *sql.Tx, max time.Duration) error {
	d := max
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < d {
			d = left
		}
	}
	if d <= 0 {
		return domain.ErrConcurrencyTimeout
	}
	ms := d.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	// SET does not take bind parameters; ms is an integer we computed.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", ms)); err != nil {
		return fmt.Errorf("SetLockTimeout: %w", mapLockError(err))
	}
	return nil
}

// mapLockError turns Postgres lock waits that gave up into ErrConcurrencyTimeout.
func mapLockError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && (pqErr.Code == pqLockNotAvailable || pqErr.Code == pqQueryCanceled) {
		return domain.ErrConcurrencyTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrConcurrencyTimeout
	}
	return err
}
