package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle state of a sale.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusCancelled TransactionStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed out of s.
func (s TransactionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo enforces the forward-only state machine:
// pending -> completed and pending -> cancelled are the only legal moves.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	return s == StatusPending && (next == StatusCompleted || next == StatusCancelled)
}

// TransactionItem is one sold line within a transaction. Name and price are
// snapshots taken at record time; ItemID is a weak reference that may point
// at an item deleted since.
type TransactionItem struct {
	ItemID   int             `json:"item_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Subtotal returns price multiplied by quantity sold.
func (ti TransactionItem) Subtotal() decimal.Decimal {
	return ti.Price.Mul(decimal.NewFromInt(int64(ti.Quantity)))
}

// Transaction is an immutable record of a sale. Line items never change
// after creation; only the status moves, and only forward.
type Transaction struct {
	ID        int               `json:"id"`
	Items     []TransactionItem `json:"items"`
	Total     decimal.Decimal   `json:"total"`
	Status    TransactionStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	HandledBy int               `json:"handled_by"`
}

// TransactionTotal sums the line subtotals. The result is fixed into the
// transaction at record time and never recomputed afterwards.
func TransactionTotal(items []TransactionItem) decimal.Decimal {
	total := decimal.Zero
	for _, ti := range items {
		total = total.Add(ti.Subtotal())
	}
	return total
}
