package model

import (
	"time"

	"github.com/google/uuid"
)

// MovementType is the direction of a stock movement.
type MovementType string

const (
	MovementIn  MovementType = "in"
	MovementOut MovementType = "out"
)

// StockHistoryEntry is one append-only row of the stock ledger.
// Quantity is signed: negative for MovementOut, positive for MovementIn.
type StockHistoryEntry struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	FruitID      uuid.UUID    `json:"fruitId" db:"fruit_id"`
	Quantity     int          `json:"quantity" db:"quantity"`
	MovementType MovementType `json:"movementType" db:"movement_type"`
	Description  string       `json:"description" db:"description"`
	UserID       *uuid.UUID   `json:"userId,omitempty" db:"user_id"`
	CreatedAt    time.Time    `json:"createdAt" db:"created_at"`
}

// LedgerBalance compares a fruit's stock with the movements recorded for it.
type LedgerBalance struct {
	FruitID      uuid.UUID `json:"fruitId"`
	InitialStock int       `json:"initialStock"`
	NetMovement  int       `json:"netMovement"`
	Stock        int       `json:"stock"`
}

// Balanced reports whether initial stock plus recorded movements equals current stock.
func (b LedgerBalance) Balanced() bool {
	return b.InitialStock+b.NetMovement == b.Stock
}

// StockHistoryPage is a page of ledger entries plus the balance check.
type StockHistoryPage struct {
	Entries  []StockHistoryEntry `json:"entries"`
	Balance  LedgerBalance       `json:"balance"`
	Balanced bool                `json:"balanced"`
}
