package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the lifecycle state of a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// paymentTransitions: PENDING -> {COMPLETED, FAILED}; both targets are terminal.
var paymentTransitions = map[PaymentStatus]map[PaymentStatus]bool{
	PaymentStatusPending:   {PaymentStatusCompleted: true, PaymentStatusFailed: true},
	PaymentStatusCompleted: {},
	PaymentStatusFailed:    {},
}

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	_, ok := paymentTransitions[s]
	return ok
}

// IsTerminal reports whether no further transition is possible from s.
func (s PaymentStatus) IsTerminal() bool {
	return s.Valid() && len(paymentTransitions[s]) == 0
}

// CanTransitionTo reports whether a payment may move from s to next.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return paymentTransitions[s][next]
}

// Payment records one payment attempt for an order.
type Payment struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrderID     uuid.UUID       `json:"orderId" db:"order_id"`
	AmountPaid  decimal.Decimal `json:"amountPaid" db:"amount_paid"`
	Status      PaymentStatus   `json:"paymentStatus" db:"payment_status"`
	Method      PaymentMethod   `json:"paymentMethod" db:"payment_method"`
	ProofURL    *string         `json:"proofUrl,omitempty" db:"proof_url"`
	Notes       *string         `json:"notes,omitempty" db:"notes"`
	PaymentDate time.Time       `json:"paymentDate" db:"payment_date"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// CreatePaymentRequest represents the request payload for recording a payment.
type CreatePaymentRequest struct {
	OrderID    uuid.UUID       `json:"orderId" validate:"required"`
	AmountPaid decimal.Decimal `json:"amountPaid"`
	Status     PaymentStatus   `json:"paymentStatus,omitempty" validate:"omitempty,oneof=PENDING COMPLETED FAILED"`
	Method     *PaymentMethod  `json:"paymentMethod,omitempty" validate:"omitempty,oneof=CASH TRANSFER CREDIT_CARD DIGITAL_WALLET"`
	ProofURL   *string         `json:"proofUrl,omitempty" validate:"omitempty,url"`
	Notes      *string         `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// AttachProofRequest carries an already uploaded proof-of-payment reference.
type AttachProofRequest struct {
	ProofURL string `json:"proofUrl" validate:"required,url"`
}

// PaymentFilter narrows payment listings.
type PaymentFilter struct {
	OrderID *uuid.UUID
	Status  *PaymentStatus
	Limit   int
	Offset  int
}

// PaymentSummary aggregates payment activity for the dashboard.
type PaymentSummary struct {
	CompletedTotal decimal.Decimal `json:"completedTotal"`
	CompletedCount int             `json:"completedCount"`
	TodayTotal     decimal.Decimal `json:"todayTotal"`
	TodayCount     int             `json:"todayCount"`
	PendingCount   int             `json:"pendingCount"`
}
