package repository

import (
	"context"
	"fmt"

	"fruitstore/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// reportRepository implements the ReportRepository interface using PostgreSQL.
// Cancelled orders are excluded from every sales figure.
type reportRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewReportRepository creates a new PostgreSQL-backed report repository.
func NewReportRepository(pool *pgxpool.Pool, logger zerolog.Logger) ReportRepository {
	return &reportRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "report").Logger(),
	}
}

// SalesSummary aggregates order count, revenue and items sold in the range.
func (r *reportRepository) SalesSummary(ctx context.Context, rng model.DateRange) (*model.SalesSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(o.total_amount), 0),
			COALESCE(ROUND(AVG(o.total_amount), 2), 0),
			COALESCE((
				SELECT SUM(oi.quantity)
				FROM order_items oi
				JOIN orders o2 ON o2.id = oi.order_id
				WHERE o2.status <> 'CANCELLED' AND o2.created_at >= $1 AND o2.created_at < $2
			), 0)
		FROM orders o
		WHERE o.status <> 'CANCELLED' AND o.created_at >= $1 AND o.created_at < $2
	`

	s := model.SalesSummary{Range: rng}
	err := r.pool.QueryRow(ctx, query, rng.From, rng.To).Scan(
		&s.OrderCount,
		&s.Revenue,
		&s.AverageOrderValue,
		&s.ItemsSold,
	)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query sales summary")
		return nil, fmt.Errorf("failed to query sales summary: %w", err)
	}

	return &s, nil
}

// TopFruits ranks fruits by quantity sold in the range.
func (r *reportRepository) TopFruits(ctx context.Context, rng model.DateRange, limit int) ([]model.TopFruit, error) {
	if limit < 1 {
		limit = 5
	}

	query := `
		SELECT f.id, f.name, SUM(oi.quantity), SUM(oi.subtotal)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN fruits f ON f.id = oi.fruit_id
		WHERE o.status <> 'CANCELLED' AND o.created_at >= $1 AND o.created_at < $2
		GROUP BY f.id, f.name
		ORDER BY SUM(oi.quantity) DESC, f.name
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, rng.From, rng.To, limit)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query top fruits")
		return nil, fmt.Errorf("failed to query top fruits: %w", err)
	}
	defer rows.Close()

	top := []model.TopFruit{}
	for rows.Next() {
		var t model.TopFruit
		if err := rows.Scan(&t.FruitID, &t.Name, &t.QuantitySold, &t.Revenue); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan top fruit row")
			return nil, fmt.Errorf("failed to scan top fruit: %w", err)
		}
		top = append(top, t)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating top fruit rows")
		return nil, fmt.Errorf("error iterating top fruits: %w", err)
	}

	return top, nil
}

// PaymentBreakdown groups payments in the range by method and status.
func (r *reportRepository) PaymentBreakdown(ctx context.Context, rng model.DateRange) ([]model.PaymentBreakdown, error) {
	query := `
		SELECT payment_method, payment_status, COUNT(*), COALESCE(SUM(amount_paid), 0)
		FROM payments
		WHERE payment_date >= $1 AND payment_date < $2
		GROUP BY payment_method, payment_status
		ORDER BY payment_method, payment_status
	`

	rows, err := r.pool.Query(ctx, query, rng.From, rng.To)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query payment breakdown")
		return nil, fmt.Errorf("failed to query payment breakdown: %w", err)
	}
	defer rows.Close()

	breakdown := []model.PaymentBreakdown{}
	for rows.Next() {
		var b model.PaymentBreakdown
		if err := rows.Scan(&b.Method, &b.Status, &b.Count, &b.Total); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan payment breakdown row")
			return nil, fmt.Errorf("failed to scan payment breakdown: %w", err)
		}
		breakdown = append(breakdown, b)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating payment breakdown rows")
		return nil, fmt.Errorf("error iterating payment breakdown: %w", err)
	}

	return breakdown, nil
}
