package handlers

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/EzekielMisgae/alis-app/internal/http/alerts"
	models "github.com/EzekielMisgae/alis-app/internal/models"
	repo "github.com/EzekielMisgae/alis-app/internal/repo"
)

func transactionResponse(t models.Transaction) TransactionResponse {
	items := make([]LineItemResponse, len(t.Items))
	for i, li := range t.Items {
		items[i] = LineItemResponse{
			ItemID:   li.ItemID,
			Name:     li.Name,
			Price:    li.Price,
			Quantity: li.Quantity,
		}
	}
	return TransactionResponse{
		Id:        t.ID,
		Items:     items,
		Total:     t.Total,
		Status:    t.Status,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
		UpdatedAt: t.UpdatedAt.Format(time.RFC3339),
		HandledBy: t.HandledBy,
	}
}

// checkLowStock reports any item a committed sale drove below the
// threshold. Best effort, after the commit.
func checkLowStock(t models.Transaction) {
	if t.Status != models.StatusCompleted {
		return
	}
	for _, li := range t.Items {
		item, err := itemRepo.GetByID(li.ItemID)
		if err != nil {
			continue
		}
		if item.Quantity < lowStockThreshold {
			log.Printf("ALERT: item %d (%s) is below threshold! Qty=%d, Threshold=%d",
				item.ID, item.Name, item.Quantity, lowStockThreshold)
			alerts.LogLowStock(item.ID, item.Name, item.Quantity, lowStockThreshold)
		}
	}
}

// RecordTransactionHandler godoc
// @Summary Record a sale
// @Description Snapshots item names and prices, fixes the total, and when recorded as completed decrements stock atomically
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param transaction body TransactionRequest true "Line items and initial status"
// @Success 201 {object} TransactionResponse
// @Failure 400 {array} ItemValidationError
// @Failure 404 {string} string "Item not found"
// @Failure 409 {string} string "Insufficient stock"
// @Failure 500 {string} string "Internal error"
// @Router /transactions [post]
func RecordTransactionHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}

	var req TransactionRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	if req.Status == "" {
		req.Status = models.StatusPending
	}
	if req.Status != models.StatusPending && req.Status != models.StatusCompleted {
		http.Error(w, "initial status must be pending or completed", http.StatusBadRequest)
		return
	}

	validationErrors := validateLineItems(req.Items)
	if len(validationErrors) > 0 {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(validationErrors)
		return
	}

	t, err := transactionRepo.Record(req.Items, userID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrItemNotFound):
			http.Error(w, "item not found", http.StatusNotFound)
		case errors.Is(err, repo.ErrInsufficientStock):
			http.Error(w, "insufficient stock", http.StatusConflict)
		default:
			http.Error(w, "could not record transaction", http.StatusInternalServerError)
		}
		return
	}

	checkLowStock(t)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(transactionResponse(t))
}

// TransitionTransactionHandler godoc
// @Summary Move a transaction through its status lifecycle
// @Description Forward-only: pending to completed (decrements stock) or pending to cancelled
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Param status body TransactionStatusRequest true "Target status"
// @Success 200 {object} TransactionResponse
// @Failure 400 {string} string "Invalid input"
// @Failure 404 {string} string "Not found"
// @Failure 409 {string} string "Invalid transition or insufficient stock"
// @Failure 500 {string} string "Internal error"
// @Router /transactions/{id}/status [post]
func TransitionTransactionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid transaction ID", http.StatusBadRequest)
		return
	}

	var req TransactionStatusRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	if !req.Status.Valid() {
		http.Error(w, "unknown status", http.StatusBadRequest)
		return
	}

	t, err := transactionRepo.Transition(id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrTransactionNotFound):
			http.Error(w, "transaction not found", http.StatusNotFound)
		case errors.Is(err, repo.ErrItemNotFound):
			http.Error(w, "line item references a deleted item", http.StatusConflict)
		case errors.Is(err, repo.ErrInvalidTransition):
			http.Error(w, "invalid status transition", http.StatusConflict)
		case errors.Is(err, repo.ErrInsufficientStock):
			http.Error(w, "insufficient stock", http.StatusConflict)
		default:
			http.Error(w, "could not update transaction", http.StatusInternalServerError)
		}
		return
	}

	checkLowStock(t)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(transactionResponse(t))
}

// parseTransactionFilter reads the shared status/date/pagination query
// parameters.
func parseTransactionFilter(w http.ResponseWriter, r *http.Request) (repo.TransactionFilter, bool) {
	q := r.URL.Query()
	var tf repo.TransactionFilter

	if status := q.Get("status"); status != "" {
		tf.Status = models.TransactionStatus(status)
		if !tf.Status.Valid() {
			http.Error(w, "unknown status", http.StatusBadRequest)
			return tf, false
		}
	}

	since, err := parseTimeParam(q.Get("since"))
	if err != nil {
		http.Error(w, "invalid since date format", http.StatusBadRequest)
		return tf, false
	}
	until, err := parseTimeParam(q.Get("until"))
	if err != nil {
		http.Error(w, "invalid until date format", http.StatusBadRequest)
		return tf, false
	}
	tf.Since, tf.Until = since, until

	tf.Limit = parseIntPtr(q.Get("limit"))
	if tf.Limit != nil && *tf.Limit <= 0 {
		http.Error(w, "limit must be greater than zero", http.StatusBadRequest)
		return tf, false
	}
	tf.Offset = parseIntPtr(q.Get("offset"))
	if tf.Offset != nil && *tf.Offset < 0 {
		http.Error(w, "offset must be zero or positive", http.StatusBadRequest)
		return tf, false
	}

	return tf, true
}

// GetTransactionsHandler godoc
// @Summary List transactions, newest first
// @Tags transactions
// @Produce json
// @Param status query string false "Filter by status (pending, completed, cancelled)"
// @Param since query string false "Filter from timestamp (RFC3339)"
// @Param until query string false "Filter until timestamp (RFC3339)"
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination"
// @Success 200 {object} TransactionsSearchResult
// @Failure 400 {string} string "Invalid input"
// @Failure 500 {string} string "Internal error"
// @Router /transactions [get]
func GetTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	tf, ok := parseTransactionFilter(w, r)
	if !ok {
		return
	}

	transactions, total, err := transactionRepo.Filter(tf)
	if err != nil {
		log.Printf("could not retrieve transactions: %v", err)
		http.Error(w, "could not retrieve transactions", http.StatusInternalServerError)
		return
	}

	response := TransactionsSearchResult{
		Data: make([]TransactionResponse, len(transactions)),
		Meta: Meta{TotalCount: total},
	}
	for i, t := range transactions {
		response.Data[i] = transactionResponse(t)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// GetTransactionByIDHandler godoc
// @Summary Get transaction by ID
// @Tags transactions
// @Produce json
// @Param id path int true "Transaction ID"
// @Success 200 {object} TransactionResponse
// @Failure 400 {string} string "Invalid ID"
// @Failure 404 {string} string "Not found"
// @Failure 500 {string} string "Internal error"
// @Router /transactions/{id} [get]
func GetTransactionByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid transaction ID", http.StatusBadRequest)
		return
	}

	t, err := transactionRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repo.ErrTransactionNotFound) {
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not fetch transaction", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(transactionResponse(t))
}

// ExportTransactionsHandler godoc
// @Summary Export transactions
// @Tags transactions
// @Produce text/csv, application/json
// @Param format query string true "Export format (csv or json)"
// @Param status query string false "Filter by status"
// @Param since query string false "Filter from timestamp (RFC3339)"
// @Param until query string false "Filter until timestamp (RFC3339)"
// @Success 200 {file} file
// @Failure 400 {string} string "Invalid input"
// @Failure 500 {string} string "Internal error"
// @Router /transactions/export [get]
func ExportTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format != "csv" && format != "json" {
		http.Error(w, "format must be 'csv' or 'json'", http.StatusBadRequest)
		return
	}

	tf, ok := parseTransactionFilter(w, r)
	if !ok {
		return
	}

	transactions, _, err := transactionRepo.Filter(tf)
	if err != nil {
		http.Error(w, "could not retrieve transactions", http.StatusInternalServerError)
		return
	}

	switch format {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="transactions.json"`)
		json.NewEncoder(w).Encode(transactions)

	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)

		csvWriter := csv.NewWriter(w)
		_ = csvWriter.Write([]string{"id", "status", "total", "items", "created_at", "handled_by"})
		for _, t := range transactions {
			_ = csvWriter.Write([]string{
				strconv.Itoa(t.ID),
				string(t.Status),
				t.Total.StringFixed(2),
				strconv.Itoa(len(t.Items)),
				t.CreatedAt.Format(time.RFC3339),
				strconv.Itoa(t.HandledBy),
			})
		}
		csvWriter.Flush()
	}
}
