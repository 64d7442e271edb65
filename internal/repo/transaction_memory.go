package repo

import (
	"sort"
	"time"

	"github.com/EzekielMisgae/alis-app/internal/models"
)

// InMemoryTransactionRepository is an in-memory implementation of
// TransactionRepository. It holds a reference to the item repository so
// snapshots and stock decrements work against the same data set.
type InMemoryTransactionRepository struct {
	transactions []models.Transaction
	nextID       int
	itemRepo     *InMemoryItemRepository
}

func NewInMemoryTransactionRepository() *InMemoryTransactionRepository {
	return &InMemoryTransactionRepository{
		transactions: []models.Transaction{},
		nextID:       1,
	}
}

func (r *InMemoryTransactionRepository) SetItemRepository(itemRepo *InMemoryItemRepository) {
	r.itemRepo = itemRepo
}

func (r *InMemoryTransactionRepository) Record(items []LineItemInput, handledBy int, initial models.TransactionStatus) (models.Transaction, error) {
	lines := make([]models.TransactionItem, len(items))
	for i, in := range items {
		it, err := r.itemRepo.GetByID(in.ItemID)
		if err != nil {
			return models.Transaction{}, err
		}
		lines[i] = models.TransactionItem{
			ItemID:   in.ItemID,
			Name:     it.Name,
			Price:    it.Price,
			Quantity: in.Quantity,
		}
	}

	if initial == models.StatusCompleted {
		if err := r.decrementStock(lines); err != nil {
			return models.Transaction{}, err
		}
	}

	now := time.Now().UTC()
	t := models.Transaction{
		ID:        r.nextID,
		Items:     lines,
		Total:     models.TransactionTotal(lines),
		Status:    initial,
		CreatedAt: now,
		UpdatedAt: now,
		HandledBy: handledBy,
	}
	r.nextID++
	r.transactions = append(r.transactions, t)
	return t, nil
}

func (r *InMemoryTransactionRepository) Transition(id int, next models.TransactionStatus) (models.Transaction, error) {
	for i, t := range r.transactions {
		if t.ID != id {
			continue
		}
		if !t.Status.CanTransitionTo(next) {
			return models.Transaction{}, ErrInvalidTransition
		}
		if next == models.StatusCompleted {
			if err := r.decrementStock(t.Items); err != nil {
				return models.Transaction{}, err
			}
		}
		r.transactions[i].Status = next
		r.transactions[i].UpdatedAt = time.Now().UTC()
		return r.transactions[i], nil
	}
	return models.Transaction{}, ErrTransactionNotFound
}

// decrementStock verifies every line first so a failure leaves no item
// changed, then applies all decrements. Lines referencing the same item
// are verified against their combined quantity.
func (r *InMemoryTransactionRepository) decrementStock(lines []models.TransactionItem) error {
	requested := make(map[int]int, len(lines))
	for _, li := range lines {
		requested[li.ItemID] += li.Quantity
	}
	for itemID, qty := range requested {
		it, err := r.itemRepo.GetByID(itemID)
		if err != nil {
			return err
		}
		if it.Quantity < qty {
			return ErrInsufficientStock
		}
	}
	for _, li := range lines {
		if _, err := r.itemRepo.AdjustQuantity(li.ItemID, -li.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (r *InMemoryTransactionRepository) GetByID(id int) (models.Transaction, error) {
	for _, t := range r.transactions {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Transaction{}, ErrTransactionNotFound
}

func (r *InMemoryTransactionRepository) Filter(tf TransactionFilter) ([]models.Transaction, int, error) {
	sorted := make([]models.Transaction, len(r.transactions))
	copy(sorted, r.transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].ID > sorted[j].ID
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	var filtered []models.Transaction
	for _, t := range sorted {
		if tf.Status != "" && t.Status != tf.Status {
			continue
		}
		if tf.Since != nil && t.CreatedAt.Before(*tf.Since) {
			continue
		}
		if tf.Until != nil && t.CreatedAt.After(*tf.Until) {
			continue
		}
		filtered = append(filtered, t)
	}

	total := len(filtered)
	start := 0
	if tf.Offset != nil {
		start = clamp(*tf.Offset, 0, total)
	}
	end := total
	if tf.Limit != nil && *tf.Limit > 0 {
		end = clamp(start+*tf.Limit, start, total)
	}
	return filtered[start:end], total, nil
}

// Clear removes all transactions. Test helper.
func (r *InMemoryTransactionRepository) Clear() {
	r.transactions = []models.Transaction{}
	r.nextID = 1
}
