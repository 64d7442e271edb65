package repo

import (
	"github.com/EzekielMisgae/alis-app/internal/models"
	"github.com/shopspring/decimal"
)

type InMemoryStatsRepository struct {
	itemRepo        ItemRepository
	transactionRepo TransactionRepository
}

func NewInMemoryStatsRepository() *InMemoryStatsRepository {
	return &InMemoryStatsRepository{}
}

func (r *InMemoryStatsRepository) SetRepositories(itemRepo ItemRepository, transactionRepo TransactionRepository) {
	r.itemRepo = itemRepo
	r.transactionRepo = transactionRepo
}

// GetDashboardStats implements StatsRepository by iterating over the
// current item and transaction sets.
func (r *InMemoryStatsRepository) GetDashboardStats(lowStockThreshold int) (DashboardStats, error) {
	s := DashboardStats{Revenue: decimal.Zero}

	items, err := r.itemRepo.GetAll()
	if err != nil {
		return s, err
	}
	s.TotalItems = len(items)
	for _, it := range items {
		if it.Quantity < lowStockThreshold {
			s.LowStockItems++
		}
	}

	completed, _, err := r.transactionRepo.Filter(TransactionFilter{Status: models.StatusCompleted})
	if err != nil {
		return s, err
	}
	s.TotalTransactions = len(completed)

	unitsByName := make(map[string]int)
	for _, t := range completed {
		s.Revenue = s.Revenue.Add(t.Total)
		for _, li := range t.Items {
			unitsByName[li.Name] += li.Quantity
		}
	}
	for name, units := range unitsByName {
		if units > s.MostSoldItem.UnitsSold {
			s.MostSoldItem.Name = name
			s.MostSoldItem.UnitsSold = units
		}
	}

	return s, nil
}
