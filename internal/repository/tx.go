package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fruitstore/internal/metrics"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"
)

// PostgreSQL error codes the repositories react to.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"

	orderNumberConstraint = "orders_order_number_key"
)

// ErrOrderNumberTaken is returned when a generated order number collides with an existing one.
var ErrOrderNumberTaken = errors.New("order number already taken")

// IsRetryable reports whether a transaction that failed with err may succeed when re-run.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrOrderNumberTaken) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}

// isUniqueViolation reports whether err violates the named unique constraint.
// An empty constraint matches any unique violation.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// TxOptions configures retry behaviour of the transactor.
type TxOptions struct {
	MaxRetries     int
	InitialBackoff time.Duration
}

// pgTransactor implements Transactor on a pgx pool.
type pgTransactor struct {
	pool    *pgxpool.Pool
	opts    TxOptions
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewTransactor creates a read-committed transactor that retries conflicts with exponential backoff.
func NewTransactor(pool *pgxpool.Pool, opts TxOptions, m *metrics.Metrics, logger zerolog.Logger) Transactor {
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 20 * time.Millisecond
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	return &pgTransactor{
		pool:    pool,
		opts:    opts,
		metrics: m,
		logger:  logger.With().Str("component", "transactor").Logger(),
	}
}

// WithTx runs fn in a transaction, re-running it on serialization failures, deadlocks
// and order number collisions until the retry budget is spent.
func (t *pgTransactor) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewExponentialBackOff(
				backoff.WithInitialInterval(t.opts.InitialBackoff),
				backoff.WithMaxInterval(time.Second),
				backoff.WithMaxElapsedTime(0),
			),
			uint64(t.opts.MaxRetries),
		),
		ctx,
	)

	attempt := 0
	operation := func() error {
		attempt++
		err := t.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if IsRetryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	notify := func(err error, wait time.Duration) {
		t.metrics.TxRetry()
		t.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("backoff", wait).
			Msg("retrying transaction")
	}

	return backoff.RetryNotify(operation, policy, notify)
}

func (t *pgTransactor) runOnce(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := t.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		t.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			t.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			err = multierr.Append(err, fmt.Errorf("failed to rollback transaction: %w", rbErr))
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		t.logger.Error().Err(err).Msg("failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// querier returns tx when set and the pool otherwise.
func querier(pool *pgxpool.Pool, tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return pool
}
