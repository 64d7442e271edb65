package repo

import "github.com/EzekielMisgae/alis-app/internal/models"

// ItemFilter narrows and paginates item listings. Query matches as a
// case-insensitive substring against name or description; Category matches
// exactly.
type ItemFilter struct {
	Query    string
	Category string
	Offset   *int
	Limit    *int
}

// ItemRepository defines the interface for inventory item data operations.
// Listings are point-in-time snapshots ordered by creation time descending;
// callers re-invoke to observe later writes.
type ItemRepository interface {
	Create(item models.Item) (models.Item, error)
	GetAll() ([]models.Item, error)
	GetByID(id int) (models.Item, error)
	Update(item models.Item) (models.Item, error)
	Delete(id int) error
	Filter(f ItemFilter) ([]models.Item, int, error)
	// AdjustQuantity applies delta to the stock level, refusing any change
	// that would leave the quantity negative.
	AdjustQuantity(id, delta int) (models.Item, error)
	SetImageURL(id int, url string) (models.Item, error)
	// Categories returns the distinct category values currently present,
	// sorted. Categories are a derived projection, not stored entities.
	Categories() ([]string, error)
}
