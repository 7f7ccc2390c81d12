package repository

import (
	"context"
	"fmt"

	"fruitstore/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// stockHistoryRepository implements the StockHistoryRepository interface using PostgreSQL.
type stockHistoryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewStockHistoryRepository creates a new PostgreSQL-backed stock ledger.
func NewStockHistoryRepository(pool *pgxpool.Pool, logger zerolog.Logger) StockHistoryRepository {
	return &stockHistoryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "stock_history").Logger(),
	}
}

// Append inserts ledger entries in one batch.
func (r *stockHistoryRepository) Append(ctx context.Context, tx pgx.Tx, entries []model.StockHistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := `
		INSERT INTO stock_history (id, fruit_id, quantity, movement_type, description, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(query, e.ID, e.FruitID, e.Quantity, e.MovementType, e.Description, e.UserID, e.CreatedAt)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(entries); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("fruit_id", entries[i].FruitID.String()).
				Int("quantity", entries[i].Quantity).
				Msg("failed to append stock history")
			return fmt.Errorf("failed to append stock history: %w", err)
		}
	}

	return nil
}

// ListByFruit returns a fruit's ledger entries, newest first.
func (r *stockHistoryRepository) ListByFruit(ctx context.Context, fruitID uuid.UUID, limit, offset int) ([]model.StockHistoryEntry, error) {
	query := `
		SELECT id, fruit_id, quantity, movement_type, description, user_id, created_at
		FROM stock_history
		WHERE fruit_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, fruitID, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Str("fruit_id", fruitID.String()).Msg("failed to query stock history")
		return nil, fmt.Errorf("failed to query stock history: %w", err)
	}
	defer rows.Close()

	entries := []model.StockHistoryEntry{}
	for rows.Next() {
		var e model.StockHistoryEntry
		if err := rows.Scan(&e.ID, &e.FruitID, &e.Quantity, &e.MovementType, &e.Description, &e.UserID, &e.CreatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan stock history row")
			return nil, fmt.Errorf("failed to scan stock history: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating stock history rows")
		return nil, fmt.Errorf("error iterating stock history: %w", err)
	}

	return entries, nil
}

// Balance reads the fruit's stock together with the sum of its movements.
func (r *stockHistoryRepository) Balance(ctx context.Context, fruitID uuid.UUID) (*model.LedgerBalance, error) {
	query := `
		SELECT f.initial_stock, f.stock, COALESCE(SUM(h.quantity), 0)
		FROM fruits f
		LEFT JOIN stock_history h ON h.fruit_id = f.id
		WHERE f.id = $1
		GROUP BY f.id
	`

	b := model.LedgerBalance{FruitID: fruitID}
	err := r.pool.QueryRow(ctx, query, fruitID).Scan(&b.InitialStock, &b.Stock, &b.NetMovement)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("fruit_id", fruitID.String()).Msg("failed to compute ledger balance")
		return nil, fmt.Errorf("failed to compute ledger balance: %w", err)
	}

	return &b, nil
}
