package repository

import (
	"context"
	"time"

	"fruitstore/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Transactor runs a function inside a database transaction.
type Transactor interface {
	// WithTx begins a transaction, runs fn and commits. The transaction is rolled
	// back when fn returns an error. Serialization failures and deadlocks re-run fn
	// from the start, so fn must not have side effects outside the transaction.
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// Read methods that accept a pgx.Tx run on the pool when tx is nil.

// FruitRepository defines the interface for fruit data access operations.
type FruitRepository interface {
	// Create inserts a new fruit.
	Create(ctx context.Context, fruit *model.Fruit) error

	// Update persists name, description, price and image. Stock is never written here.
	Update(ctx context.Context, fruit *model.Fruit) error

	// Delete removes a fruit and its ledger rows.
	Delete(ctx context.Context, id uuid.UUID) error

	// GetByID retrieves a fruit, or nil when it does not exist.
	GetByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Fruit, error)

	// LockByIDs retrieves and row-locks the given fruits in id order. Missing ids are absent from the map.
	LockByIDs(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) (map[uuid.UUID]*model.Fruit, error)

	// AdjustStock adds delta to a fruit's stock and returns the new level.
	AdjustStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta int) (int, error)

	// Search returns one page of fruits and the total match count.
	Search(ctx context.Context, filter model.FruitFilter) ([]model.Fruit, int, error)

	// HasOrderItems reports whether any order item references the fruit.
	HasOrderItems(ctx context.Context, id uuid.UUID) (bool, error)

	// Stats summarises inventory levels.
	Stats(ctx context.Context) (*model.FruitStats, error)
}

// StockHistoryRepository defines the interface for the append-only stock ledger.
type StockHistoryRepository interface {
	// Append writes ledger entries within the transaction that changed the stock.
	Append(ctx context.Context, tx pgx.Tx, entries []model.StockHistoryEntry) error

	// ListByFruit returns a fruit's entries, newest first.
	ListByFruit(ctx context.Context, fruitID uuid.UUID, limit, offset int) ([]model.StockHistoryEntry, error)

	// Balance compares a fruit's stock with its recorded movements. Returns nil when the fruit does not exist.
	Balance(ctx context.Context, fruitID uuid.UUID) (*model.LedgerBalance, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// CreateOrder inserts a new order within the provided transaction.
	// A duplicate order number is reported as ErrOrderNumberTaken.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order, or nil when it does not exist.
	GetByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// LockByID retrieves and row-locks an order, or returns nil when it does not exist.
	LockByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// GetItems retrieves an order's items with fruit names.
	GetItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.OrderItem, error)

	// Update persists status and payment method.
	Update(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// List returns orders matching the filter, newest first.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
}

// PaymentRepository defines the interface for payment data access operations.
type PaymentRepository interface {
	// Create inserts a payment.
	Create(ctx context.Context, tx pgx.Tx, payment *model.Payment) error

	// GetByID retrieves a payment, or nil when it does not exist.
	GetByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Payment, error)

	// LockByID retrieves and row-locks a payment, or returns nil when it does not exist.
	LockByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Payment, error)

	// LockLatestByOrder row-locks the most recent payment of an order, or returns nil when there is none.
	LockLatestByOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.Payment, error)

	// UpdateStatus sets a payment's status.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.PaymentStatus) error

	// UpdateProof sets a payment's proof-of-payment reference.
	UpdateProof(ctx context.Context, tx pgx.Tx, id uuid.UUID, proofURL string) error

	// FailByOrder marks every payment of an order that is not yet FAILED as FAILED.
	FailByOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (int64, error)

	// ListByOrder returns an order's payments, newest first.
	ListByOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.Payment, error)

	// List returns payments matching the filter, newest payment date first.
	List(ctx context.Context, filter model.PaymentFilter) ([]model.Payment, error)

	// Summary aggregates payments; "today" starts at dayStart.
	Summary(ctx context.Context, dayStart time.Time) (*model.PaymentSummary, error)
}

// CustomerRepository defines the interface for customer data access operations.
type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	Update(ctx context.Context, customer *model.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error

	// GetByID retrieves a customer, or nil when it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)

	// GetByEmail retrieves a customer by case-insensitive email, or nil when none matches.
	GetByEmail(ctx context.Context, email string) (*model.Customer, error)

	// Search matches name, email or phone and returns the page plus the total count.
	Search(ctx context.Context, filter model.CustomerFilter) ([]model.Customer, int, error)

	// HasOrders reports whether any order references the customer.
	HasOrders(ctx context.Context, id uuid.UUID) (bool, error)

	// Stats aggregates the customer's non-cancelled orders.
	Stats(ctx context.Context, id uuid.UUID) (*model.CustomerStats, error)
}

// UserRepository defines the interface for back-office user data access operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uuid.UUID) error

	// GetByID retrieves a user, or nil when it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// GetByEmail retrieves a user by case-insensitive email, or nil when none matches.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	List(ctx context.Context, limit, offset int) ([]model.User, error)
}

// ReportRepository defines the aggregate queries behind the reports.
type ReportRepository interface {
	SalesSummary(ctx context.Context, r model.DateRange) (*model.SalesSummary, error)
	TopFruits(ctx context.Context, r model.DateRange, limit int) ([]model.TopFruit, error)
	PaymentBreakdown(ctx context.Context, r model.DateRange) ([]model.PaymentBreakdown, error)
}
