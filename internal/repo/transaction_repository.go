package repo

import (
	"time"

	"github.com/EzekielMisgae/alis-app/internal/models"
)

// LineItemInput identifies an item and a quantity to sell. Name and price
// are not supplied by callers; the ledger snapshots them from the current
// item record at recording time.
type LineItemInput struct {
	ItemID   int `json:"item_id"`
	Quantity int `json:"quantity"`
}

// TransactionFilter narrows and paginates transaction listings.
type TransactionFilter struct {
	Status models.TransactionStatus
	Since  *time.Time
	Until  *time.Time
	Offset *int
	Limit  *int
}

// TransactionRepository is the sales ledger. Records are append-only: line
// items are immutable after Record and there is no delete operation.
//
// Record and Transition apply stock decrements atomically with the status
// write. If any referenced item would go negative, or has been deleted,
// the whole operation fails and nothing is committed.
type TransactionRepository interface {
	Record(items []LineItemInput, handledBy int, initial models.TransactionStatus) (models.Transaction, error)
	Transition(id int, next models.TransactionStatus) (models.Transaction, error)
	GetByID(id int) (models.Transaction, error)
	Filter(tf TransactionFilter) ([]models.Transaction, int, error)
}
