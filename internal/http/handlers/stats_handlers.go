package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

// GetDashboardStatsHandler godoc
// @Summary Dashboard statistics
// @Description Returns item count, low-stock count, completed transaction count, revenue, and the most sold item
// @Tags stats
// @Produce json
// @Success 200 {object} repo.DashboardStats
// @Failure 500 {string} string "Internal error"
// @Router /stats/dashboard [get]
func GetDashboardStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := statsRepo.GetDashboardStats(lowStockThreshold)
	if err != nil {
		log.Printf("could not compute dashboard stats: %v", err)
		http.Error(w, "could not compute dashboard stats", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
