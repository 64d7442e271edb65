package repo

import (
	"context"
	"database/sql"
	"time"
)

type PostgresStatsRepository struct {
	db *sql.DB
}

func NewPostgresStatsRepository(db *sql.DB) *PostgresStatsRepository {
	return &PostgresStatsRepository{db: db}
}

// GetDashboardStats runs one scan per statistic. The scans are deliberately
// independent; a failed one leaves its zero value in place.
func (r *PostgresStatsRepository) GetDashboardStats(lowStockThreshold int) (DashboardStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	s := DashboardStats{}

	_ = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&s.TotalItems)
	_ = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items WHERE quantity < $1`, lowStockThreshold).Scan(&s.LowStockItems)
	_ = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE status = 'completed'`).Scan(&s.TotalTransactions)
	_ = r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(total), 0) FROM transactions WHERE status = 'completed'`).Scan(&s.Revenue)

	_ = r.db.QueryRowContext(ctx, `
		SELECT ti.name, SUM(ti.quantity) AS units
		FROM transaction_items ti
		JOIN transactions t ON ti.transaction_id = t.id
		WHERE t.status = 'completed'
		GROUP BY ti.name
		ORDER BY units DESC
		LIMIT 1
	`).Scan(&s.MostSoldItem.Name, &s.MostSoldItem.UnitsSold)

	return s, nil
}
