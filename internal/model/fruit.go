package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LowStockThreshold is the highest positive stock level reported as low stock.
const LowStockThreshold = 10

// Fruit represents a sellable fruit in the inventory.
type Fruit struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Description  *string         `json:"description,omitempty" db:"description"`
	Price        decimal.Decimal `json:"price" db:"price"`
	Stock        int             `json:"stock" db:"stock"`
	InitialStock int             `json:"initialStock" db:"initial_stock"`
	ImageURL     *string         `json:"imageUrl,omitempty" db:"image_url"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt" db:"updated_at"`
}

// CreateFruitRequest represents the request payload for adding a fruit.
type CreateFruitRequest struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=1000"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0,lte=2147483647"`
	ImageURL    *string         `json:"imageUrl,omitempty" validate:"omitempty,url"`
}

// UpdateFruitRequest carries the editable fruit fields. Stock only changes
// through orders and cancellations.
type UpdateFruitRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=1000"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	ImageURL    *string          `json:"imageUrl,omitempty" validate:"omitempty,url"`
}

// FruitSort is a column fruits can be sorted by.
type FruitSort string

const (
	FruitSortName      FruitSort = "name"
	FruitSortPrice     FruitSort = "price"
	FruitSortStock     FruitSort = "stock"
	FruitSortCreatedAt FruitSort = "createdAt"
)

// FruitFilter describes a paginated fruit search.
type FruitFilter struct {
	Query    string
	SortBy   FruitSort
	SortDesc bool
	Page     int
	Limit    int
	InStock  *bool
}

// FruitPage is one page of a fruit search.
type FruitPage struct {
	Items      []Fruit `json:"items"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"totalPages"`
}

// FruitDetail is a fruit with its most recent stock movements.
type FruitDetail struct {
	Fruit
	RecentHistory []StockHistoryEntry `json:"recentHistory"`
}

// FruitStats summarises inventory levels.
type FruitStats struct {
	Total        int             `json:"total"`
	InStock      int             `json:"inStock"`
	LowStock     int             `json:"lowStock"`
	OutOfStock   int             `json:"outOfStock"`
	TotalStock   int64           `json:"totalStock"`
	AveragePrice decimal.Decimal `json:"averagePrice"`
}
