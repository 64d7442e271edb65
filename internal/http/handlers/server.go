package handlers

import (
	"github.com/EzekielMisgae/alis-app/internal/blob"
	repo "github.com/EzekielMisgae/alis-app/internal/repo"
)

var (
	itemRepo        repo.ItemRepository
	transactionRepo repo.TransactionRepository
	statsRepo       repo.StatsRepository
	userRepo        repo.UserRepository

	blobStore blob.Store

	lowStockThreshold = 10
)

func SetItemRepo(r repo.ItemRepository) {
	itemRepo = r
}

func SetTransactionRepo(r repo.TransactionRepository) {
	transactionRepo = r
}

func SetStatsRepo(r repo.StatsRepository) {
	statsRepo = r
}

func SetUserRepo(r repo.UserRepository) {
	userRepo = r
}

func SetBlobStore(s blob.Store) {
	blobStore = s
}

// SetLowStockThreshold installs the quantity below which an item counts as
// low stock.
func SetLowStockThreshold(threshold int) {
	lowStockThreshold = threshold
}
