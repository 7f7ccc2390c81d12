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

const customerColumns = `id, name, email, phone, address, created_at, updated_at`

// customerRepository implements the CustomerRepository interface using PostgreSQL.
type customerRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCustomerRepository creates a new PostgreSQL-backed customer repository.
func NewCustomerRepository(pool *pgxpool.Pool, logger zerolog.Logger) CustomerRepository {
	return &customerRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "customer").Logger(),
	}
}

func scanCustomer(row pgx.Row) (*model.Customer, error) {
	var c model.Customer
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a customer. A duplicate email is reported as ErrDuplicateCustomerEmail.
func (r *customerRepository) Create(ctx context.Context, c *model.Customer) error {
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query, c.ID, c.Name, c.Email, c.Phone, c.Address, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return model.ErrDuplicateCustomerEmail
		}
		r.logger.Error().Err(err).Str("customer_id", c.ID.String()).Msg("failed to create customer")
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// Update persists the editable customer fields.
func (r *customerRepository) Update(ctx context.Context, c *model.Customer) error {
	query := `
		UPDATE customers
		SET name = $2, email = $3, phone = $4, address = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, c.ID, c.Name, c.Email, c.Phone, c.Address, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return model.ErrDuplicateCustomerEmail
		}
		r.logger.Error().Err(err).Str("customer_id", c.ID.String()).Msg("failed to update customer")
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCustomerNotFound
	}

	return nil
}

// Delete removes a customer.
func (r *customerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("customer_id", id.String()).Msg("failed to delete customer")
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCustomerNotFound
	}
	return nil
}

// GetByID retrieves a customer by ID.
func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("customer_id", id.String()).Msg("failed to query customer")
		return nil, fmt.Errorf("failed to query customer: %w", err)
	}
	return c, nil
}

// GetByEmail retrieves a customer by email, ignoring case.
func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE LOWER(email) = LOWER($1)`, email))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query customer by email")
		return nil, fmt.Errorf("failed to query customer by email: %w", err)
	}
	return c, nil
}

// Search matches name, email or phone.
func (r *customerRepository) Search(ctx context.Context, filter model.CustomerFilter) ([]model.Customer, int, error) {
	var args []any
	where := ""
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		where = "WHERE name ILIKE $1 OR email ILIKE $1 OR phone ILIKE $1"
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers `+where, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count customers")
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}
	args = append(args, limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM customers
		%s
		ORDER BY name, id
		LIMIT $%d OFFSET $%d
	`, customerColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to search customers")
		return nil, 0, fmt.Errorf("failed to search customers: %w", err)
	}
	defer rows.Close()

	customers := []model.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan customer row")
			return nil, 0, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, *c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating customer rows")
		return nil, 0, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, total, nil
}

// HasOrders reports whether any order references the customer.
func (r *customerRepository) HasOrders(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE customer_id = $1)`, id).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Str("customer_id", id.String()).Msg("failed to check customer orders")
		return false, fmt.Errorf("failed to check customer orders: %w", err)
	}
	return exists, nil
}

// Stats aggregates the customer's non-cancelled orders.
func (r *customerRepository) Stats(ctx context.Context, id uuid.UUID) (*model.CustomerStats, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE customer_id = $1 AND status <> 'CANCELLED'
	`

	var s model.CustomerStats
	if err := r.pool.QueryRow(ctx, query, id).Scan(&s.OrderCount, &s.TotalSpent); err != nil {
		r.logger.Error().Err(err).Str("customer_id", id.String()).Msg("failed to query customer stats")
		return nil, fmt.Errorf("failed to query customer stats: %w", err)
	}
	return &s, nil
}
