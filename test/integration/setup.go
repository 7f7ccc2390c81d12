package integration

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"fruitstore/internal/blob"
	"fruitstore/internal/database"
	"fruitstore/internal/handler"
	"fruitstore/internal/metrics"
	"fruitstore/internal/model"
	"fruitstore/internal/repository"
	"fruitstore/internal/router"
	"fruitstore/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestAPIKey is the key the test server accepts.
const TestAPIKey = "test-api-key"

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container with the migrated schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	// Enough connections for the concurrency tests to actually contend.
	poolConfig.MaxConns = 20

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	if err := database.NewMigrator(pool, zerolog.Nop()).Up(ctx); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// Stack is the fully wired application over a test database.
type Stack struct {
	Handler  http.Handler
	Orders   service.OrderService
	Payments service.PaymentService
	Fruits   service.FruitService
	Registry *prometheus.Registry
}

// NewStack wires repositories, services, handlers and the router the same way the API binary does,
// with uploads going to a temporary directory.
func NewStack(t *testing.T, testDB *TestDB) *Stack {
	t.Helper()

	logger := zerolog.Nop()
	pool := testDB.Pool
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	uploadDir := t.TempDir()
	const maxUpload = 1 << 20

	fruitRepo := repository.NewFruitRepository(pool, logger)
	stockRepo := repository.NewStockHistoryRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	paymentRepo := repository.NewPaymentRepository(pool, logger)
	customerRepo := repository.NewCustomerRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	reportRepo := repository.NewReportRepository(pool, logger)

	txr := repository.NewTransactor(pool, repository.TxOptions{
		MaxRetries:     5,
		InitialBackoff: 5 * time.Millisecond,
	}, m, logger)

	store := blob.NewFallbackStore(nil, blob.NewFileStore(uploadDir, "/uploads", logger), false, logger)

	orders := service.NewOrderService(txr, service.OrderRepos{
		Orders:    orderRepo,
		Fruits:    fruitRepo,
		Stock:     stockRepo,
		Payments:  paymentRepo,
		Customers: customerRepo,
		Users:     userRepo,
	}, m, logger)
	payments := service.NewPaymentService(txr, orderRepo, paymentRepo, store, maxUpload, m, logger)
	fruits := service.NewFruitService(fruitRepo, stockRepo, store, maxUpload, logger)

	h := router.New(router.Handlers{
		Fruits:    handler.NewFruitHandler(fruits, maxUpload, logger),
		Orders:    handler.NewOrderHandler(orders, logger),
		Payments:  handler.NewPaymentHandler(payments, maxUpload, logger),
		Customers: handler.NewCustomerHandler(service.NewCustomerService(customerRepo, orderRepo, logger), logger),
		Users:     handler.NewUserHandler(service.NewUserService(userRepo, 4, logger), logger),
		Reports:   handler.NewReportHandler(service.NewReportService(reportRepo, logger), logger),
	}, router.Options{
		APIKey:    TestAPIKey,
		Gatherer:  reg,
		Metrics:   m,
		UploadDir: uploadDir,
	}, logger)

	return &Stack{
		Handler:  h,
		Orders:   orders,
		Payments: payments,
		Fruits:   fruits,
		Registry: reg,
	}
}

// SeedFruit inserts a fruit with the given price and stock.
func SeedFruit(t *testing.T, pool *pgxpool.Pool, name, price string, stock int) *model.Fruit {
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
	if err := repository.NewFruitRepository(pool, zerolog.Nop()).Create(context.Background(), f); err != nil {
		t.Fatalf("failed to seed fruit %s: %v", name, err)
	}
	return f
}

// SeedCustomer inserts a customer.
func SeedCustomer(t *testing.T, pool *pgxpool.Pool, name string) *model.Customer {
	t.Helper()

	now := time.Now().UTC()
	c := &model.Customer{
		ID:        uuid.New(),
		Name:      name,
		Email:     fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repository.NewCustomerRepository(pool, zerolog.Nop()).Create(context.Background(), c); err != nil {
		t.Fatalf("failed to seed customer %s: %v", name, err)
	}
	return c
}

// FruitStock reads a fruit's current stock straight from the table.
func FruitStock(t *testing.T, pool *pgxpool.Pool, id uuid.UUID) int {
	t.Helper()

	var stock int
	if err := pool.QueryRow(context.Background(), "SELECT stock FROM fruits WHERE id = $1", id).Scan(&stock); err != nil {
		t.Fatalf("failed to read stock: %v", err)
	}
	return stock
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"payments", "order_items", "stock_history", "orders", "fruits", "customers", "users"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
