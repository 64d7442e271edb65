package repo

import "github.com/shopspring/decimal"

type MostSoldItem struct {
	Name      string `json:"name"`
	UnitsSold int    `json:"units_sold"`
}

// DashboardStats is derived on demand from current repository state. It is
// never persisted or incrementally maintained.
type DashboardStats struct {
	TotalItems        int             `json:"total_items"`
	LowStockItems     int             `json:"low_stock_items"`
	TotalTransactions int             `json:"total_transactions"`
	Revenue           decimal.Decimal `json:"revenue"`
	MostSoldItem      MostSoldItem    `json:"most_sold_item"`
}

// StatsRepository computes dashboard statistics. The individual reads are
// not transactionally linked; under concurrent writes the result may be a
// slightly inconsistent snapshot, which is accepted.
type StatsRepository interface {
	GetDashboardStats(lowStockThreshold int) (DashboardStats, error)
}
