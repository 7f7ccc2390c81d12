package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is a buyer that orders are placed for.
type Customer struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Address   *string   `json:"address,omitempty" db:"address"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CreateCustomerRequest represents the request payload for registering a customer.
type CreateCustomerRequest struct {
	Name    string  `json:"name" validate:"required,min=2,max=100"`
	Email   string  `json:"email" validate:"required,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,min=6,max=20"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

// UpdateCustomerRequest carries the editable customer fields.
type UpdateCustomerRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,min=6,max=20"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

// CustomerStats aggregates a customer's order history.
type CustomerStats struct {
	OrderCount int             `json:"orderCount"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
}

// CustomerDetail is a customer with order statistics and recent orders.
type CustomerDetail struct {
	Customer
	Stats        CustomerStats `json:"stats"`
	RecentOrders []Order       `json:"recentOrders"`
}

// CustomerFilter describes a paginated customer search.
type CustomerFilter struct {
	Query  string
	Limit  int
	Offset int
}
