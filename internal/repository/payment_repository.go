package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fruitstore/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const paymentColumns = `id, order_id, amount_paid, payment_status, payment_method, proof_url, notes, payment_date, created_at, updated_at`

// paymentRepository implements the PaymentRepository interface using PostgreSQL.
type paymentRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPaymentRepository creates a new PostgreSQL-backed payment repository.
func NewPaymentRepository(pool *pgxpool.Pool, logger zerolog.Logger) PaymentRepository {
	return &paymentRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "payment").Logger(),
	}
}

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(
		&p.ID,
		&p.OrderID,
		&p.AmountPaid,
		&p.Status,
		&p.Method,
		&p.ProofURL,
		&p.Notes,
		&p.PaymentDate,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a payment.
func (r *paymentRepository) Create(ctx context.Context, tx pgx.Tx, payment *model.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := querier(r.pool, tx).Exec(ctx, query,
		payment.ID,
		payment.OrderID,
		payment.AmountPaid,
		payment.Status,
		payment.Method,
		payment.ProofURL,
		payment.Notes,
		payment.PaymentDate,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("payment_id", payment.ID.String()).
			Str("order_id", payment.OrderID.String()).
			Msg("failed to create payment")
		return fmt.Errorf("failed to create payment: %w", err)
	}

	r.logger.Debug().
		Str("payment_id", payment.ID.String()).
		Str("status", string(payment.Status)).
		Msg("payment created successfully")

	return nil
}

// GetByID retrieves a payment by its ID.
func (r *paymentRepository) GetByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Payment, error) {
	return r.getOne(ctx, querier(r.pool, tx), `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
}

// LockByID retrieves a payment FOR UPDATE.
func (r *paymentRepository) LockByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Payment, error) {
	return r.getOne(ctx, tx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, id)
}

// LockLatestByOrder locks the order's most recent payment.
func (r *paymentRepository) LockLatestByOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE order_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
		FOR UPDATE
	`
	return r.getOne(ctx, tx, query, orderID)
}

func (r *paymentRepository) getOne(ctx context.Context, q Querier, query string, id uuid.UUID) (*model.Payment, error) {
	p, err := scanPayment(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("id", id.String()).Msg("payment not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("id", id.String()).Msg("failed to query payment")
		return nil, fmt.Errorf("failed to query payment: %w", err)
	}
	return p, nil
}

// UpdateStatus sets a payment's status.
func (r *paymentRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.PaymentStatus) error {
	query := `UPDATE payments SET payment_status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := tx.Exec(ctx, query, id, status)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("payment_id", id.String()).
			Str("status", string(status)).
			Msg("failed to update payment status")
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPaymentNotFound
	}

	return nil
}

// UpdateProof sets a payment's proof reference.
func (r *paymentRepository) UpdateProof(ctx context.Context, tx pgx.Tx, id uuid.UUID, proofURL string) error {
	query := `UPDATE payments SET proof_url = $2, updated_at = NOW() WHERE id = $1`

	tag, err := tx.Exec(ctx, query, id, proofURL)
	if err != nil {
		r.logger.Error().Err(err).Str("payment_id", id.String()).Msg("failed to update payment proof")
		return fmt.Errorf("failed to update payment proof: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPaymentNotFound
	}

	return nil
}

// FailByOrder marks the order's non-failed payments as FAILED.
func (r *paymentRepository) FailByOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (int64, error) {
	query := `
		UPDATE payments
		SET payment_status = $2, updated_at = NOW()
		WHERE order_id = $1 AND payment_status <> $2
	`

	tag, err := tx.Exec(ctx, query, orderID, model.PaymentStatusFailed)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to fail order payments")
		return 0, fmt.Errorf("failed to fail order payments: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ListByOrder returns an order's payments, newest first.
func (r *paymentRepository) ListByOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE order_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.list(ctx, querier(r.pool, tx), query, orderID)
}

// List returns payments matching the filter.
func (r *paymentRepository) List(ctx context.Context, filter model.PaymentFilter) ([]model.Payment, error) {
	var (
		conds []string
		args  []any
	)
	if filter.OrderID != nil {
		args = append(args, *filter.OrderID)
		conds = append(conds, fmt.Sprintf("order_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("payment_status = $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}
	args = append(args, limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM payments
		%s
		ORDER BY payment_date DESC, id
		LIMIT $%d OFFSET $%d
	`, paymentColumns, where, len(args)-1, len(args))

	return r.list(ctx, r.pool, query, args...)
}

func (r *paymentRepository) list(ctx context.Context, q Querier, query string, args ...any) ([]model.Payment, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query payments")
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	payments := []model.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan payment row")
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating payment rows")
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}

	return payments, nil
}

// Summary aggregates completed and pending payments. Today is [dayStart, dayStart+1 day).
func (r *paymentRepository) Summary(ctx context.Context, dayStart time.Time) (*model.PaymentSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(amount_paid) FILTER (WHERE payment_status = 'COMPLETED'), 0),
			COUNT(*) FILTER (WHERE payment_status = 'COMPLETED'),
			COALESCE(SUM(amount_paid) FILTER (
				WHERE payment_status = 'COMPLETED' AND payment_date >= $1 AND payment_date < $2), 0),
			COUNT(*) FILTER (WHERE payment_status = 'COMPLETED' AND payment_date >= $1 AND payment_date < $2),
			COUNT(*) FILTER (WHERE payment_status = 'PENDING')
		FROM payments
	`

	var s model.PaymentSummary
	err := r.pool.QueryRow(ctx, query, dayStart, dayStart.AddDate(0, 0, 1)).Scan(
		&s.CompletedTotal,
		&s.CompletedCount,
		&s.TodayTotal,
		&s.TodayCount,
		&s.PendingCount,
	)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query payment summary")
		return nil, fmt.Errorf("failed to query payment summary: %w", err)
	}

	return &s, nil
}
