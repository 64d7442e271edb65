package handlers_test_suite

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"golang.org/x/crypto/bcrypt"

	"github.com/EzekielMisgae/alis-app/internal/auth"
	api "github.com/EzekielMisgae/alis-app/internal/http"
	handler "github.com/EzekielMisgae/alis-app/internal/http/handlers"
	rl "github.com/EzekielMisgae/alis-app/internal/http/rate_limiter"
	"github.com/EzekielMisgae/alis-app/internal/models"
	"github.com/EzekielMisgae/alis-app/internal/repo"
)

var (
	token           string
	itemRepo        *repo.InMemoryItemRepository
	transactionRepo *repo.InMemoryTransactionRepository
	userRepo        *repo.InMemoryUserRepository
)

func init() {
	auth.SetSecret([]byte("secret-for-tests"))
	setupTestRepos("secret")
	r := api.NewRouter()

	var err error
	token, err = generateToken(r, "admin", "secret")
	if err != nil {
		panic(fmt.Sprintf("error generating token: %v", err))
	}
}

func setupTestRepos(password string) {
	itemRepo = repo.NewInMemoryItemRepository()
	handler.SetItemRepo(itemRepo)

	transactionRepo = repo.NewInMemoryTransactionRepository()
	transactionRepo.SetItemRepository(itemRepo)
	handler.SetTransactionRepo(transactionRepo)

	statsRepo := repo.NewInMemoryStatsRepository()
	statsRepo.SetRepositories(itemRepo, transactionRepo)
	handler.SetStatsRepo(statsRepo)

	userRepo = repo.NewInMemoryUserRepository()
	handler.SetUserRepo(userRepo)

	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	userRepo.CreateUser(models.User{
		Username:     "admin",
		PasswordHash: string(hash),
		Role:         "admin",
	})

	handler.SetLowStockThreshold(10)
}

func clearAll() {
	itemRepo.Clear()
	transactionRepo.Clear()
	rl.CleanupAllVisitors()
}

func generateToken(r http.Handler, username, password string) (string, error) {
	payload := handler.CredentialsRequest{Username: username, Password: password}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp handler.LoginResult
	err := json.NewDecoder(w.Body).Decode(&resp)
	if err != nil {
		return "", fmt.Errorf("token decoding failed: %v", err)
	}
	return resp.Token, nil
}

func createItem(r http.Handler, item handler.ItemRequest) *httptest.ResponseRecorder {
	body, _ := json.Marshal(item)
	req := httptest.NewRequest(http.MethodPost, "/items", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func adjustItem(r http.Handler, itemID int, adj handler.QuantityAdjustmentRequest) *httptest.ResponseRecorder {
	body, _ := json.Marshal(adj)
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/items/%d/adjust", itemID), bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func recordTransaction(r http.Handler, tr handler.TransactionRequest) *httptest.ResponseRecorder {
	body, _ := json.Marshal(tr)
	req := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func transitionTransaction(r http.Handler, transactionID int, status models.TransactionStatus) *httptest.ResponseRecorder {
	body, _ := json.Marshal(handler.TransactionStatusRequest{Status: status})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/transactions/%d/status", transactionID), bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func multipartCSV(csvContent string, filename string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, _ := writer.CreateFormFile("file", filename)
	part.Write([]byte(csvContent))

	writer.Close()
	return &buf, writer.FormDataContentType()
}
