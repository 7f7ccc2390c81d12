package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// orderTransitions lists the allowed next states for each order status.
// COMPLETED -> CANCELLED is kept so a fulfilled order can still be reversed.
var orderTransitions = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusProcessing: {OrderStatusCompleted: true, OrderStatusCancelled: true},
	OrderStatusCompleted:  {OrderStatusCancelled: true},
	OrderStatusCancelled:  {},
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether an order may move from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return orderTransitions[s][next]
}

// PaymentMethod is how a customer pays for an order.
type PaymentMethod string

const (
	PaymentMethodCash          PaymentMethod = "CASH"
	PaymentMethodTransfer      PaymentMethod = "TRANSFER"
	PaymentMethodCreditCard    PaymentMethod = "CREDIT_CARD"
	PaymentMethodDigitalWallet PaymentMethod = "DIGITAL_WALLET"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodCreditCard, PaymentMethodDigitalWallet:
		return true
	}
	return false
}

// Order represents a customer order.
type Order struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	OrderNumber   string          `json:"orderNumber" db:"order_number"`
	CustomerID    uuid.UUID       `json:"customerId" db:"customer_id"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" db:"payment_method"`
	TotalAmount   decimal.Decimal `json:"totalAmount" db:"total_amount"`
	Status        OrderStatus     `json:"status" db:"status"`
	UserID        *uuid.UUID      `json:"userId,omitempty" db:"user_id"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem represents a line item in an order. Items are immutable once written.
type OrderItem struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	OrderID   uuid.UUID       `json:"orderId" db:"order_id"`
	FruitID   uuid.UUID       `json:"fruitId" db:"fruit_id"`
	FruitName string          `json:"fruitName,omitempty" db:"-"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Subtotal  decimal.Decimal `json:"subtotal" db:"subtotal"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}

// CreateOrderRequest represents the request payload for creating an order.
type CreateOrderRequest struct {
	CustomerID    uuid.UUID          `json:"customerId" validate:"required"`
	PaymentMethod PaymentMethod      `json:"paymentMethod" validate:"required,oneof=CASH TRANSFER CREDIT_CARD DIGITAL_WALLET"`
	UserID        *uuid.UUID         `json:"userId,omitempty"`
	Items         []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// OrderItemRequest represents a single line in an order request. Price is the
// price the client displayed; when present it must match the catalogue price.
type OrderItemRequest struct {
	FruitID  uuid.UUID        `json:"fruitId" validate:"required"`
	Quantity int              `json:"quantity"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

// UpdateOrderRequest carries the mutable order fields.
type UpdateOrderRequest struct {
	Status        *OrderStatus   `json:"status,omitempty" validate:"omitempty,oneof=PROCESSING COMPLETED CANCELLED"`
	PaymentMethod *PaymentMethod `json:"paymentMethod,omitempty" validate:"omitempty,oneof=CASH TRANSFER CREDIT_CARD DIGITAL_WALLET"`
}

// OrderDetail is an order with everything an admin needs to review it.
type OrderDetail struct {
	Order
	Items    []OrderItem `json:"items"`
	Payments []Payment   `json:"payments"`
	Customer *Customer   `json:"customer,omitempty"`
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	CustomerID *uuid.UUID
	UserID     *uuid.UUID
	Status     *OrderStatus
	Limit      int
	Offset     int
}
