package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateRange is a half-open [From, To) reporting window.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// SalesSummary aggregates non-cancelled orders in a window.
type SalesSummary struct {
	Range             DateRange       `json:"range"`
	OrderCount        int             `json:"orderCount"`
	Revenue           decimal.Decimal `json:"revenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	ItemsSold         int64           `json:"itemsSold"`
}

// TopFruit is a fruit ranked by quantity sold.
type TopFruit struct {
	FruitID      uuid.UUID       `json:"fruitId"`
	Name         string          `json:"name"`
	QuantitySold int64           `json:"quantitySold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// PaymentBreakdown is the payment volume for one method and status.
type PaymentBreakdown struct {
	Method PaymentMethod   `json:"paymentMethod"`
	Status PaymentStatus   `json:"paymentStatus"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
}
