package model

import (
	"fmt"
	"sort"
	"strings"
)

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON              = "INVALID_JSON"
	ErrCodeValidation               = "VALIDATION_ERROR"
	ErrCodeInvalidQuantity          = "INVALID_QUANTITY"
	ErrCodeInvalidPrice             = "INVALID_PRICE"
	ErrCodeInvalidFile              = "INVALID_FILE"
	ErrCodeFruitNotFound            = "FRUIT_NOT_FOUND"
	ErrCodeOrderNotFound            = "ORDER_NOT_FOUND"
	ErrCodePaymentNotFound          = "PAYMENT_NOT_FOUND"
	ErrCodeCustomerNotFound         = "CUSTOMER_NOT_FOUND"
	ErrCodeUserNotFound             = "USER_NOT_FOUND"
	ErrCodeInsufficientStock        = "INSUFFICIENT_STOCK"
	ErrCodePriceMismatch            = "PRICE_MISMATCH"
	ErrCodeOrderAlreadyCancelled    = "ORDER_ALREADY_CANCELLED"
	ErrCodeOrderCancelled           = "ORDER_CANCELLED"
	ErrCodeInvalidOrderTransition   = "INVALID_ORDER_TRANSITION"
	ErrCodeInvalidPaymentTransition = "INVALID_PAYMENT_TRANSITION"
	ErrCodeDuplicateCustomerEmail   = "DUPLICATE_CUSTOMER_EMAIL"
	ErrCodeDuplicateUserEmail       = "DUPLICATE_USER_EMAIL"
	ErrCodeFruitInUse               = "FRUIT_IN_USE"
	ErrCodeCustomerHasOrders        = "CUSTOMER_HAS_ORDERS"
	ErrCodeUnauthorised             = "UNAUTHORIZED"
	ErrCodeInternalError            = "INTERNAL_ERROR"
)

// DomainError is a business or validation failure that is safe to report to the caller.
// Two domain errors are considered equal by errors.Is when their codes match.
type DomainError struct {
	Code    string
	Message string
	Details map[string]string
}

func (e *DomainError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}

	fields := make([]string, 0, len(e.Details))
	for field := range e.Details {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+" "+e.Details[field])
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error carrying per-field messages.
func NewValidationError(message string, details map[string]string) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: message,
		Details: details,
	}
}

// NewInsufficientStockError reports that a fruit cannot cover the requested quantity.
func NewInsufficientStockError(fruitName string) *DomainError {
	if fruitName == "" {
		fruitName = "fruit"
	}
	return NewDomainError(ErrCodeInsufficientStock, fmt.Sprintf("Insufficient stock for %s", fruitName))
}

// NewPriceMismatchError reports a client price that differs from the catalogue price.
func NewPriceMismatchError(fruitName string) *DomainError {
	return NewDomainError(ErrCodePriceMismatch, fmt.Sprintf("Price for %s has changed, please refresh and try again", fruitName))
}

// NewPaymentTransitionError reports a payment status change the state machine does not allow.
func NewPaymentTransitionError(from, to PaymentStatus) *DomainError {
	return NewDomainError(ErrCodeInvalidPaymentTransition,
		fmt.Sprintf("Invalid payment status transition from %s to %s", from, to))
}

// NewOrderTransitionError reports an order status change the state machine does not allow.
func NewOrderTransitionError(from, to OrderStatus) *DomainError {
	return NewDomainError(ErrCodeInvalidOrderTransition,
		fmt.Sprintf("Invalid order status transition from %s to %s", from, to))
}

// Common domain errors
var (
	ErrInvalidJSON            = NewDomainError(ErrCodeInvalidJSON, "Invalid request body")
	ErrValidation             = NewDomainError(ErrCodeValidation, "Validation failed")
	ErrInvalidQuantity        = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidPrice           = NewDomainError(ErrCodeInvalidPrice, "Price must be greater than zero")
	ErrInvalidFile            = NewDomainError(ErrCodeInvalidFile, "File must be a JPEG, PNG or WebP image within the size limit")
	ErrFruitNotFound          = NewDomainError(ErrCodeFruitNotFound, "Fruit not found")
	ErrOrderNotFound          = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrPaymentNotFound        = NewDomainError(ErrCodePaymentNotFound, "Payment not found")
	ErrCustomerNotFound       = NewDomainError(ErrCodeCustomerNotFound, "Customer not found")
	ErrUserNotFound           = NewDomainError(ErrCodeUserNotFound, "User not found")
	ErrInsufficientStock      = NewDomainError(ErrCodeInsufficientStock, "Insufficient stock")
	ErrPriceMismatch          = NewDomainError(ErrCodePriceMismatch, "Price mismatch")
	ErrOrderAlreadyCancelled  = NewDomainError(ErrCodeOrderAlreadyCancelled, "Order is already cancelled")
	ErrOrderCancelled         = NewDomainError(ErrCodeOrderCancelled, "Order has been cancelled")
	ErrInvalidOrderTransition = NewDomainError(ErrCodeInvalidOrderTransition, "Invalid order status transition")
	ErrInvalidPaymentStatus   = NewDomainError(ErrCodeInvalidPaymentTransition, "Invalid payment status transition")
	ErrDuplicateCustomerEmail = NewDomainError(ErrCodeDuplicateCustomerEmail, "Customer with this email already exists")
	ErrDuplicateUserEmail     = NewDomainError(ErrCodeDuplicateUserEmail, "User with this email already exists")
	ErrFruitInUse             = NewDomainError(ErrCodeFruitInUse, "Cannot delete fruit that has been ordered")
	ErrCustomerHasOrders      = NewDomainError(ErrCodeCustomerHasOrders, "Cannot delete customer with existing orders")
)
