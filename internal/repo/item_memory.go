package repo

import (
	"sort"
	"strings"
	"time"

	"github.com/EzekielMisgae/alis-app/internal/models"
)

// InMemoryItemRepository is an in-memory implementation of ItemRepository,
// used by the handler test suites.
type InMemoryItemRepository struct {
	items  []models.Item
	nextID int
}

func NewInMemoryItemRepository() *InMemoryItemRepository {
	return &InMemoryItemRepository{
		items:  []models.Item{},
		nextID: 1,
	}
}

func (r *InMemoryItemRepository) Create(it models.Item) (models.Item, error) {
	it.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	it.CreatedAt = now
	it.UpdatedAt = now
	r.items = append(r.items, it)
	return it, nil
}

// GetAll returns items ordered by creation time descending.
func (r *InMemoryItemRepository) GetAll() ([]models.Item, error) {
	out := make([]models.Item, len(r.items))
	copy(out, r.items)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *InMemoryItemRepository) GetByID(id int) (models.Item, error) {
	for _, it := range r.items {
		if it.ID == id {
			return it, nil
		}
	}
	return models.Item{}, ErrItemNotFound
}

func (r *InMemoryItemRepository) Update(it models.Item) (models.Item, error) {
	for i, existing := range r.items {
		if existing.ID == it.ID {
			it.CreatedAt = existing.CreatedAt
			it.UpdatedAt = time.Now().UTC()
			r.items[i] = it
			return it, nil
		}
	}
	return models.Item{}, ErrItemNotFound
}

func (r *InMemoryItemRepository) Delete(id int) error {
	for i, it := range r.items {
		if it.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

func (r *InMemoryItemRepository) Filter(f ItemFilter) ([]models.Item, int, error) {
	all, _ := r.GetAll()

	var filtered []models.Item
	q := strings.ToLower(f.Query)
	for _, it := range all {
		if q != "" &&
			!strings.Contains(strings.ToLower(it.Name), q) &&
			!strings.Contains(strings.ToLower(it.Description), q) {
			continue
		}
		if f.Category != "" && it.Category != f.Category {
			continue
		}
		filtered = append(filtered, it)
	}

	total := len(filtered)
	start := 0
	if f.Offset != nil {
		start = clamp(*f.Offset, 0, total)
	}
	end := total
	if f.Limit != nil && *f.Limit > 0 {
		end = clamp(start+*f.Limit, start, total)
	}
	return filtered[start:end], total, nil
}

func (r *InMemoryItemRepository) AdjustQuantity(id int, delta int) (models.Item, error) {
	for i, it := range r.items {
		if it.ID == id {
			if it.Quantity+delta < 0 {
				return models.Item{}, ErrInsufficientStock
			}
			r.items[i].Quantity += delta
			r.items[i].UpdatedAt = time.Now().UTC()
			return r.items[i], nil
		}
	}
	return models.Item{}, ErrItemNotFound
}

func (r *InMemoryItemRepository) SetImageURL(id int, url string) (models.Item, error) {
	for i, it := range r.items {
		if it.ID == id {
			r.items[i].ImageURL = url
			r.items[i].UpdatedAt = time.Now().UTC()
			return r.items[i], nil
		}
	}
	return models.Item{}, ErrItemNotFound
}

func (r *InMemoryItemRepository) Categories() ([]string, error) {
	seen := map[string]bool{}
	var categories []string
	for _, it := range r.items {
		if !seen[it.Category] {
			seen[it.Category] = true
			categories = append(categories, it.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

// Clear removes all items. Test helper.
func (r *InMemoryItemRepository) Clear() {
	r.items = []models.Item{}
	r.nextID = 1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
