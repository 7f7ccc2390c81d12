package service

import (
	"context"
	"io"

	"fruitstore/internal/model"

	"github.com/google/uuid"
)

// Upload is an image received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// OrderService defines operations for order management.
type OrderService interface {
	// CreateOrder reserves stock and persists the order, its items and a pending payment atomically.
	CreateOrder(ctx context.Context, req *model.CreateOrderRequest) (*model.Order, error)

	// GetByID retrieves an order with its items, payments and customer.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error)

	// List returns orders matching the filter.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)

	// UpdateOrder changes status and payment method. Moving to CANCELLED runs the full cancellation.
	UpdateOrder(ctx context.Context, id uuid.UUID, req *model.UpdateOrderRequest) (*model.Order, error)

	// CancelOrder restores the order's stock, fails its payments and marks it cancelled.
	CancelOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)
}

// PaymentService defines operations for payment reconciliation.
type PaymentService interface {
	CreatePayment(ctx context.Context, req *model.CreatePaymentRequest) (*model.Payment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	List(ctx context.Context, filter model.PaymentFilter) ([]model.Payment, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Payment, error)

	// ApprovePayment completes a pending payment and its order in one transaction.
	ApprovePayment(ctx context.Context, id uuid.UUID) (*model.Payment, error)

	// RejectPayment fails a pending payment. The order is left untouched.
	RejectPayment(ctx context.Context, id uuid.UUID) (*model.Payment, error)

	// AttachProof records a proof-of-payment URL against the order's latest pending payment.
	AttachProof(ctx context.Context, orderID uuid.UUID, proofURL string) (*model.Payment, error)

	// UploadProof stores a proof image and attaches its URL.
	UploadProof(ctx context.Context, orderID uuid.UUID, upload Upload) (*model.Payment, error)

	Summary(ctx context.Context) (*model.PaymentSummary, error)
}

// FruitService defines operations for inventory management.
type FruitService interface {
	Create(ctx context.Context, req *model.CreateFruitRequest) (*model.Fruit, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateFruitRequest) (*model.Fruit, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.FruitDetail, error)
	Search(ctx context.Context, filter model.FruitFilter) (*model.FruitPage, error)
	StockHistory(ctx context.Context, id uuid.UUID, limit, offset int) (*model.StockHistoryPage, error)
	Stats(ctx context.Context) (*model.FruitStats, error)
	UploadImage(ctx context.Context, id uuid.UUID, upload Upload) (*model.Fruit, error)
}

// CustomerService defines operations for customer management.
type CustomerService interface {
	Create(ctx context.Context, req *model.CreateCustomerRequest) (*model.Customer, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateCustomerRequest) (*model.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.CustomerDetail, error)
	Search(ctx context.Context, filter model.CustomerFilter) ([]model.Customer, int, error)
}

// UserService defines operations for back-office user management.
type UserService interface {
	Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	List(ctx context.Context, limit, offset int) ([]model.User, error)
}

// ReportService defines the sales and payment reports.
type ReportService interface {
	Sales(ctx context.Context, r model.DateRange) (*model.SalesSummary, error)
	TopFruits(ctx context.Context, r model.DateRange, limit int) ([]model.TopFruit, error)
	PaymentBreakdown(ctx context.Context, r model.DateRange) ([]model.PaymentBreakdown, error)
}
