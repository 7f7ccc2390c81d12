package repository

import (
	"context"
	"fmt"
	"strings"

	"fruitstore/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const fruitColumns = `id, name, description, price, stock, initial_stock, image_url, created_at, updated_at`

// fruitSortColumns maps API sort keys to SQL columns.
var fruitSortColumns = map[model.FruitSort]string{
	model.FruitSortName:      "name",
	model.FruitSortPrice:     "price",
	model.FruitSortStock:     "stock",
	model.FruitSortCreatedAt: "created_at",
}

// fruitRepository implements the FruitRepository interface using PostgreSQL.
type fruitRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewFruitRepository creates a new PostgreSQL-backed fruit repository.
func NewFruitRepository(pool *pgxpool.Pool, logger zerolog.Logger) FruitRepository {
	return &fruitRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "fruit").Logger(),
	}
}

func scanFruit(row pgx.Row) (*model.Fruit, error) {
	var f model.Fruit
	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.Description,
		&f.Price,
		&f.Stock,
		&f.InitialStock,
		&f.ImageURL,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Create inserts a new fruit.
func (r *fruitRepository) Create(ctx context.Context, fruit *model.Fruit) error {
	query := `
		INSERT INTO fruits (id, name, description, price, stock, initial_stock, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		fruit.ID,
		fruit.Name,
		fruit.Description,
		fruit.Price,
		fruit.Stock,
		fruit.InitialStock,
		fruit.ImageURL,
		fruit.CreatedAt,
		fruit.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("fruit_id", fruit.ID.String()).Msg("failed to create fruit")
		return fmt.Errorf("failed to create fruit: %w", err)
	}

	r.logger.Debug().Str("fruit_id", fruit.ID.String()).Msg("fruit created successfully")
	return nil
}

// Update persists the editable fruit fields.
func (r *fruitRepository) Update(ctx context.Context, fruit *model.Fruit) error {
	query := `
		UPDATE fruits
		SET name = $2, description = $3, price = $4, image_url = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		fruit.ID,
		fruit.Name,
		fruit.Description,
		fruit.Price,
		fruit.ImageURL,
		fruit.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("fruit_id", fruit.ID.String()).Msg("failed to update fruit")
		return fmt.Errorf("failed to update fruit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrFruitNotFound
	}

	return nil
}

// Delete removes a fruit. Ledger rows cascade.
func (r *fruitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM fruits WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("fruit_id", id.String()).Msg("failed to delete fruit")
		return fmt.Errorf("failed to delete fruit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrFruitNotFound
	}

	r.logger.Debug().Str("fruit_id", id.String()).Msg("fruit deleted")
	return nil
}

// GetByID retrieves a single fruit by its ID.
func (r *fruitRepository) GetByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Fruit, error) {
	query := `SELECT ` + fruitColumns + ` FROM fruits WHERE id = $1`

	f, err := scanFruit(querier(r.pool, tx).QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("fruit_id", id.String()).Msg("fruit not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("fruit_id", id.String()).Msg("failed to query fruit")
		return nil, fmt.Errorf("failed to query fruit: %w", err)
	}

	return f, nil
}

// LockByIDs selects the fruits FOR UPDATE. Rows are locked in id order so that
// concurrent orders over overlapping fruits cannot deadlock each other.
func (r *fruitRepository) LockByIDs(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) (map[uuid.UUID]*model.Fruit, error) {
	fruits := make(map[uuid.UUID]*model.Fruit, len(ids))
	if len(ids) == 0 {
		return fruits, nil
	}

	query := `
		SELECT ` + fruitColumns + `
		FROM fruits
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to lock fruits")
		return nil, fmt.Errorf("failed to lock fruits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		f, err := scanFruit(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan fruit row")
			return nil, fmt.Errorf("failed to scan fruit: %w", err)
		}
		fruits[f.ID] = f
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating fruit rows")
		return nil, fmt.Errorf("error iterating fruits: %w", err)
	}

	return fruits, nil
}

// AdjustStock adds delta to the fruit's stock. The stock CHECK constraint rejects
// a negative result, so callers must validate against the locked row first.
func (r *fruitRepository) AdjustStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta int) (int, error) {
	query := `
		UPDATE fruits
		SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING stock
	`

	var stock int
	err := tx.QueryRow(ctx, query, id, delta).Scan(&stock)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, model.ErrFruitNotFound
		}
		r.logger.Error().
			Err(err).
			Str("fruit_id", id.String()).
			Int("delta", delta).
			Msg("failed to adjust stock")
		return 0, fmt.Errorf("failed to adjust stock: %w", err)
	}

	return stock, nil
}

// Search returns one page of fruits matching the filter.
func (r *fruitRepository) Search(ctx context.Context, filter model.FruitFilter) ([]model.Fruit, int, error) {
	var (
		conds []string
		args  []any
	)
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if filter.InStock != nil {
		if *filter.InStock {
			conds = append(conds, "stock > 0")
		} else {
			conds = append(conds, "stock = 0")
		}
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM fruits `+where, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count fruits")
		return nil, 0, fmt.Errorf("failed to count fruits: %w", err)
	}

	column, ok := fruitSortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(`
		SELECT %s
		FROM fruits
		%s
		ORDER BY %s %s, id
		LIMIT $%d OFFSET $%d
	`, fruitColumns, where, column, direction, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to search fruits")
		return nil, 0, fmt.Errorf("failed to search fruits: %w", err)
	}
	defer rows.Close()

	fruits := []model.Fruit{}
	for rows.Next() {
		f, err := scanFruit(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan fruit row")
			return nil, 0, fmt.Errorf("failed to scan fruit: %w", err)
		}
		fruits = append(fruits, *f)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating fruit rows")
		return nil, 0, fmt.Errorf("error iterating fruits: %w", err)
	}

	return fruits, total, nil
}

// HasOrderItems reports whether any order item references the fruit.
func (r *fruitRepository) HasOrderItems(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM order_items WHERE fruit_id = $1)`, id).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Str("fruit_id", id.String()).Msg("failed to check fruit usage")
		return false, fmt.Errorf("failed to check fruit usage: %w", err)
	}
	return exists, nil
}

// Stats summarises inventory levels.
func (r *fruitRepository) Stats(ctx context.Context) (*model.FruitStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE stock > 0),
			COUNT(*) FILTER (WHERE stock > 0 AND stock <= $1),
			COUNT(*) FILTER (WHERE stock = 0),
			COALESCE(SUM(stock), 0),
			COALESCE(ROUND(AVG(price), 2), 0)
		FROM fruits
	`

	var s model.FruitStats
	err := r.pool.QueryRow(ctx, query, model.LowStockThreshold).Scan(
		&s.Total,
		&s.InStock,
		&s.LowStock,
		&s.OutOfStock,
		&s.TotalStock,
		&s.AveragePrice,
	)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query fruit stats")
		return nil, fmt.Errorf("failed to query fruit stats: %w", err)
	}

	return &s, nil
}
