package handlers_test_suite

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	api "github.com/EzekielMisgae/alis-app/internal/http"
	handler "github.com/EzekielMisgae/alis-app/internal/http/handlers"
	"github.com/EzekielMisgae/alis-app/internal/models"
	"github.com/EzekielMisgae/alis-app/internal/repo"
)

func TestRecordTransactionHandler_Pending(t *testing.T) {
	t.Cleanup(clearAll)
	r := api.NewRouter()

	item := createdItem(t, r, "Notebook", "A5 ruled", "3.50", 20, "stationery")

	w := recordTransaction(r, handler.TransactionRequest{
		Items: []repo.LineItemInput{{ItemID: item.Id, Quantity: 4}},
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 Created, got %d: %s", w.Code, w.Body.String())
	}

	var resp handler.TransactionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}
	if resp.Status != models.StatusPending {
		t.Errorf("expected default status pending, got %v", resp.Status)
	}
	if !resp.Total.Equal(decimal.RequireFromString("14.00")) {
		t.Errorf("expected total 14.00, got %v", resp.Total)
	}
	if len(resp.Items) != 1 || resp.Items[0].Name != "Notebook" {
		t.Errorf("expected snapshotted line item, got %+v", resp.Items)
	}

	// Pending sales do not touch stock.
	if got := currentQuantity(t, r, item.Id); got != 20 {
		t.Errorf("expected quantity still 20, got %d", got)
	}
}

func TestRecordTransactionHandler_CompletedDecrementsStock(t *testing.T) {
	t.Cleanup(clearAll)
	r := api.NewRouter()

	item := createdItem(t, r, "Notebook", "A5 ruled", "3.50", 20, "stationery")

	w := recordTransaction(r, handler.TransactionRequest{
		Items:  []repo.LineItemInput{{ItemID: item.Id, Quantity: 4}},
		Status: models.StatusCompleted,
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 Created, got %d: %s", w.Code, w.Body.String())
	}
	if got := currentQuantity(t, r, item.Id); got != 16 {
		t.Errorf("expected quantity 16 after sale, got %d", got)
	}
}

func TestRecordTransactionHandler_MultiLineTotal(t *testing.T) {
	t.Cleanup(clearAll)
	r := api.NewRouter()

	tea := createdItem(t, r, "Green Tea", "Loose leaf", "8.00", 20, "beverages")
	cup := createdItem(t, r, "Espresso Cup", "Small cup", "6.25", 10, "kitchen")

	w := recordTransaction(r, handler.TransactionRequest{
		Items: []repo.LineItemInput{
			{ItemID: tea.Id, Quantity: 2},
			{ItemID: cup.Id, Quantity: 3},
		},
		Status: models.StatusCompleted,
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 Created, got %d: %s", w.Code, w.Body.String())
	}

	var resp handler.TransactionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}
	// 2*8.00 + 3*6.25
	if !resp.Total.Equal(decimal.RequireFromString("34.75")) {
		t.Errorf("expected total 34.75, got %v", resp.Total)
	}
}

func TestRecordTransactionHandler_InsufficientStock(t *testing.T) {
	t.Cleanup(clearAll)
	r := api.NewRouter()

	item := createdItem(t, r, "Notebook", "A5 ruled", "3.50", 2, "stationery")

	w := recordTransaction(r, handler.TransactionRequest{
		Items:  []repo.LineItemInput{{ItemID: item.Id, Quantity: 5}},
		Status: models.StatusCompleted,
	})

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 Conflict, got %d", w.Code)
	}
	if got := currentQuantity(t, r, item.Id); got != 2 {
		t.Errorf("expected quantity untouched at 2, got %d", got)
	}

	// Nothing may be persisted for a rejected sale.
	req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var list handler.TransactionsSearchResult
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}
	if list.Meta.TotalCount != 0 {
		t.Errorf("expected no transactions recorded, got %d", list.Meta.TotalCount)
	}
}

func TestRecordTransactionHandler_DuplicateLinesExceedStock(t *testing.T) {
	t.Cleanup(clearAll)
	r := api.NewRouter()

	item := createdItem(t, r, "Notebook", "A5 ruled", "3.50", 5, "stationery")

	// Each line fits on its own; together they exceed stock.
	w := recordTransaction(r, handler.TransactionRequest{
		Items: []repo.LineItemInput{
			{ItemID: item.Id, Quantity: 3},
			{ItemID: item.Id, Quantity: 3},
		},
		Status: models.StatusCompleted,
	})

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 Conflict, got %d: %s", w.Code, w.Body.String())
	}
	if got := currentQuantity(t, r, item.Id); got != 5 {
		t.Errorf("expected quantity untouched at 5, got %d", got)
	}
}

func TestRecordTransactionHandler_UnknownItem(t *testing.T) {
	t.Cleanup(clearAll)
	r := api.NewRouter()

	w := recordTransaction(r, handler.TransactionRequest{
		Items: []repo.LineItemInput{{ItemID: 999, Quantity: 1}},
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 Not Found, got %d", w.Code)
	}
}

func TestRecordTransactionHandler_Invalid(t *testing.T) {
	t.Cleanup(clearAll)
	r := api.NewRouter()

	item := createdItem(t, r, "Notebook", "A5 ruled", "3.50", 20, "stationery")

	tests := []struct {
		name    string
		payload handler.TransactionRequest
	}{
		{"no line items", handler.TransactionRequest{}},
		{"zero quantity", handler.TransactionRequest{
			Items: []repo.LineItemInput{{ItemID: item.Id, Quantity: 0}},
		}},
		{"negative quantity", handler.TransactionRequest{
			Items: []repo.LineItemInput{{ItemID: item.Id, Quantity: -2}},
		}},
		{"cancelled as initial status", handler.TransactionRequest{
			Items:  []repo.LineItemInput{{ItemID: item.Id, Quantity: 1}},
			Status: models.StatusCancelled,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := recordTransaction(r, tt.payload)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400 Bad Request, got %d", w.Code)
			}
		})
	}
}

func TestRecordTransactionHandler_SnapshotSurvivesPriceChange(t *testing.T) {
	t.Cleanup(clearAll)
	r := api.NewRouter()

	item := createdItem(t, r, "Notebook", "A5 ruled", "3.50", 20, "stationery")

	w := recordTransaction(r, handler.TransactionRequest{
		Items:  []repo.LineItemInput{{ItemID: item.Id, Quantity: 2}},
		Status: models.StatusCompleted,
	})
	var recorded handler.TransactionResponse
	if err := json.NewDecoder(w.Body).Decode(&recorded); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}

	// Reprice the item after the sale.
	newPrice := decimal.RequireFromString("99.00")
	body, _ := json.Marshal(handler.ItemUpdateRequest{Price: &newPrice})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/items/%d", item.Id), bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("reprice failed with status %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/transactions/%d", recorded.Id), nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var fetched handler.TransactionResponse
	if err := json.NewDecoder(rec.Body).Decode(&fetched); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}
	if !fetched.Total.Equal(decimal.RequireFromString("7.00")) {
		t.Errorf("expected historical total 7.00, got %v", fetched.Total)
	}
	if !fetched.Items[0].Price.Equal(decimal.RequireFromString("3.50")) {
		t.Errorf("expected snapshotted price 3.50, got %v", fetched.Items[0].Price)
	}
}

func TestTransitionTransactionHandler_Complete(t *testing.T) {
	t.Cleanup(clearAll)
	r := api.NewRouter()

	item := createdItem(t, r, "Notebook", "A5 ruled", "3.50", 20, "stationery")

	w := recordTransaction(r, handler.TransactionRequest{
		Items: []repo.LineItemInput{{ItemID: item.Id, Quantity: 4}},
	})
	var recorded handler.TransactionResponse
	if err := json.NewDecoder(w.Body).Decode(&recorded); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}

	w = transitionTransaction(r, recorded.Id, models.StatusCompleted)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}

	var resp handler.TransactionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}
	if resp.Status != models.StatusCompleted {
		t.Errorf("expected status completed, got %v", resp.Status)
	}
	if got := currentQuantity(t, r, item.Id); got != 16 {
		t.Errorf("expected quantity 16 after completion, got %d", got)
	}
}

func TestTransitionTransactionHandler_CancelKeepsStock(t *testing.T) {
	t.Cleanup(clearAll)
	r := api.NewRouter()

	item := createdItem(t, r, "Notebook", "A5 ruled", "3.50", 20, "stationery")

	w := recordTransaction(r, handler.TransactionRequest{
		Items: []repo.LineItemInput{{ItemID: item.Id, Quantity: 4}},
	})
	var recorded handler.TransactionResponse
	if err := json.NewDecoder(w.Body).Decode(&recorded); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}

	w = transitionTransaction(r, recorded.Id, models.StatusCancelled)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	if got := currentQuantity(t, r, item.Id); got != 20 {
		t.Errorf("expected quantity untouched at 20, got %d", got)
	}
}

func TestTransitionTransactionHandler_TerminalStates(t *testing.T) {
	t.Cleanup(clearAll)
	r := api.NewRouter()

	item := createdItem(t, r, "Notebook", "A5 ruled", "3.50", 20, "stationery")

	tests := []struct {
		name    string
		initial models.TransactionStatus
		next    models.TransactionStatus
	}{
		{"completed to pending", models.StatusCompleted, models.StatusPending},
		{"completed to cancelled", models.StatusCompleted, models.StatusCancelled},
		{"cancelled to completed", models.StatusPending, models.StatusCompleted},
	}

	// The third case first cancels the pending transaction, then tries to
	// complete it.
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := recordTransaction(r, handler.TransactionRequest{
				Items:  []repo.LineItemInput{{ItemID: item.Id, Quantity: 1}},
				Status: tt.initial,
			})
			var recorded handler.TransactionResponse
			if err := json.NewDecoder(w.Body).Decode(&recorded); err != nil {
				t.Fatalf("error decoding response: %v", err)
			}

			if tt.initial == models.StatusPending {
				if w := transitionTransaction(r, recorded.Id, models.StatusCancelled); w.Code != http.StatusOK {
					t.Fatalf("cancel setup failed with status %d", w.Code)
				}
			}

			w = transitionTransaction(r, recorded.Id, tt.next)
			if w.Code != http.StatusConflict {
				t.Errorf("expected 409 Conflict, got %d", w.Code)
			}
		})
	}
}

func TestTransitionTransactionHandler_InsufficientStockAtCompletion(t *testing.T) {
	t.Cleanup(clearAll)
	r := api.NewRouter()

	item := createdItem(t, r, "Notebook", "A5 ruled", "3.50", 5, "stationery")

	w := recordTransaction(r, handler.TransactionRequest{
		Items: []repo.LineItemInput{{ItemID: item.Id, Quantity: 5}},
	})
	var recorded handler.TransactionResponse
	if err := json.NewDecoder(w.Body).Decode(&recorded); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}

	// Stock drains while the sale is pending.
	if w := adjustItem(r, item.Id, handler.QuantityAdjustmentRequest{Delta: -3}); w.Code != http.StatusOK {
		t.Fatalf("adjustment setup failed with status %d", w.Code)
	}

	w = transitionTransaction(r, recorded.Id, models.StatusCompleted)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 Conflict, got %d", w.Code)
	}

	// The failed completion leaves the transaction pending.
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/transactions/%d", recorded.Id), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var fetched handler.TransactionResponse
	if err := json.NewDecoder(rec.Body).Decode(&fetched); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}
	if fetched.Status != models.StatusPending {
		t.Errorf("expected status still pending, got %v", fetched.Status)
	}
}

func TestTransitionTransactionHandler_DeletedLineItem(t *testing.T) {
	t.Cleanup(clearAll)
	r := api.NewRouter()

	item := createdItem(t, r, "Notebook", "A5 ruled", "3.50", 20, "stationery")

	w := recordTransaction(r, handler.TransactionRequest{
		Items: []repo.LineItemInput{{ItemID: item.Id, Quantity: 2}},
	})
	var recorded handler.TransactionResponse
	if err := json.NewDecoder(w.Body).Decode(&recorded); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}

	// The item disappears from the catalogue while the sale is pending.
	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/items/%d", item.Id), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete setup failed with status %d", rec.Code)
	}

	w = transitionTransaction(r, recorded.Id, models.StatusCompleted)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 Conflict, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/transactions/%d", recorded.Id), nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var fetched handler.TransactionResponse
	if err := json.NewDecoder(rec.Body).Decode(&fetched); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}
	if fetched.Status != models.StatusPending {
		t.Errorf("expected status still pending, got %v", fetched.Status)
	}
}

func TestTransitionTransactionHandler_NotFound(t *testing.T) {
	t.Cleanup(clearAll)
	r := api.NewRouter()

	w := transitionTransaction(r, 4242, models.StatusCompleted)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 Not Found, got %d", w.Code)
	}
}

func TestGetTransactionsHandler_StatusFilter(t *testing.T) {
	t.Cleanup(clearAll)
	r := api.NewRouter()

	item := createdItem(t, r, "Notebook", "A5 ruled", "3.50", 50, "stationery")

	for i := 0; i < 3; i++ {
		recordTransaction(r, handler.TransactionRequest{
			Items:  []repo.LineItemInput{{ItemID: item.Id, Quantity: 1}},
			Status: models.StatusCompleted,
		})
	}
	recordTransaction(r, handler.TransactionRequest{
		Items: []repo.LineItemInput{{ItemID: item.Id, Quantity: 1}},
	})

	req := httptest.NewRequest(http.MethodGet, "/transactions?status=completed", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}

	var resp handler.TransactionsSearchResult
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}
	if resp.Meta.TotalCount != 3 {
		t.Errorf("expected 3 completed transactions, got %d", resp.Meta.TotalCount)
	}
	for _, tr := range resp.Data {
		if tr.Status != models.StatusCompleted {
			t.Errorf("expected only completed transactions, got %v", tr.Status)
		}
	}
}

func TestGetTransactionsHandler_UnknownStatus(t *testing.T) {
	t.Cleanup(clearAll)
	r := api.NewRouter()

	req := httptest.NewRequest(http.MethodGet, "/transactions?status=refunded", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 Bad Request, got %d", w.Code)
	}
}

func TestExportTransactionsHandler_CSV(t *testing.T) {
	t.Cleanup(clearAll)
	r := api.NewRouter()

	item := createdItem(t, r, "Notebook", "A5 ruled", "3.50", 50, "stationery")
	recordTransaction(r, handler.TransactionRequest{
		Items:  []repo.LineItemInput{{ItemID: item.Id, Quantity: 2}},
		Status: models.StatusCompleted,
	})

	req := httptest.NewRequest(http.MethodGet, "/transactions/export?format=csv", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("expected text/csv, got %q", ct)
	}

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "id,status,total") {
		t.Errorf("unexpected CSV header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "7.00") {
		t.Errorf("expected row with total 7.00, got %q", lines[1])
	}
}

func TestExportTransactionsHandler_BadFormat(t *testing.T) {
	t.Cleanup(clearAll)
	r := api.NewRouter()

	req := httptest.NewRequest(http.MethodGet, "/transactions/export?format=xml", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 Bad Request, got %d", w.Code)
	}
}

func currentQuantity(t *testing.T, r http.Handler, itemID int) int {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/items/%d", itemID), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("item lookup failed with status %d", w.Code)
	}

	var resp handler.ItemResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("error decoding item: %v", err)
	}
	return resp.Quantity
}
