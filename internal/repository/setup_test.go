package repository

import (
	"context"
	"testing"
	"time"

	"fruitstore/internal/database"
	"fruitstore/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer with the migrated schema and returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.NewMigrator(pool, zerolog.Nop()).Up(ctx))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

func seedFruit(t *testing.T, pool *pgxpool.Pool, name, price string, stock int) *model.Fruit {
	t.Helper()

	now := time.Now().UTC()
	f := &model.Fruit{
		ID:           uuid.New(),
		Name:         name,
		Price:        decimal.RequireFromString(price),
		Stock:        stock,
		InitialStock: stock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, NewFruitRepository(pool, zerolog.Nop()).Create(context.Background(), f))
	return f
}

func seedCustomer(t *testing.T, pool *pgxpool.Pool, name, email string) *model.Customer {
	t.Helper()

	now := time.Now().UTC()
	c := &model.Customer{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, NewCustomerRepository(pool, zerolog.Nop()).Create(context.Background(), c))
	return c
}

// seedOrder writes an order with one line per fruit, quantity 1, outside of the stock workflow.
func seedOrder(t *testing.T, pool *pgxpool.Pool, customerID uuid.UUID, status model.OrderStatus, fruits ...*model.Fruit) *model.Order {
	t.Helper()

	ctx := context.Background()
	now := time.Now().UTC()

	order := &model.Order{
		ID:            uuid.New(),
		OrderNumber:   "ORD-TEST-" + uuid.NewString()[:8],
		CustomerID:    customerID,
		PaymentMethod: model.PaymentMethodCash,
		TotalAmount:   decimal.Zero,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	items := make([]model.OrderItem, 0, len(fruits))
	for _, f := range fruits {
		order.TotalAmount = order.TotalAmount.Add(f.Price)
		items = append(items, model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			FruitID:   f.ID,
			Quantity:  1,
			Price:     f.Price,
			Subtotal:  f.Price,
			CreatedAt: now,
		})
	}

	repo := NewOrderRepository(pool, zerolog.Nop())
	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.CreateOrder(ctx, tx, order))
	require.NoError(t, repo.CreateOrderItems(ctx, tx, items))
	require.NoError(t, tx.Commit(ctx))

	return order
}
