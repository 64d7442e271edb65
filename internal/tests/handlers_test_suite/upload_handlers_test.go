package handlers_test_suite

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/EzekielMisgae/alis-app/internal/blob"
	api "github.com/EzekielMisgae/alis-app/internal/http"
	handler "github.com/EzekielMisgae/alis-app/internal/http/handlers"
)

func setupBlobStore(t *testing.T) {
	t.Helper()

	store, err := blob.NewLocalStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("error creating blob store: %v", err)
	}
	handler.SetBlobStore(store)
}

func uploadImage(r http.Handler, itemID int, filename string, content []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile("file", filename)
	part.Write(content)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/items/%d/image", itemID), &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUploadItemImageHandler(t *testing.T) {
	t.Cleanup(clearAll)
	setupBlobStore(t)
	r := api.NewRouter()

	item := createdItem(t, r, "Vase", "Ceramic vase", "22.00", 4, "home")

	w := uploadImage(r, item.Id, "vase.png", []byte("fake png bytes"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}

	var resp handler.UploadResult
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}
	if !strings.Contains(resp.ImageURL, "/media/") || !strings.HasSuffix(resp.ImageURL, "vase.png") {
		t.Errorf("unexpected image URL %q", resp.ImageURL)
	}

	// The item now carries the URL.
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/items/%d", item.Id), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var fetched handler.ItemResponse
	if err := json.NewDecoder(rec.Body).Decode(&fetched); err != nil {
		t.Fatalf("error decoding item: %v", err)
	}
	if fetched.ImageURL != resp.ImageURL {
		t.Errorf("expected item image URL %q, got %q", resp.ImageURL, fetched.ImageURL)
	}
}

func TestUploadItemImageHandler_UnknownItem(t *testing.T) {
	t.Cleanup(clearAll)
	setupBlobStore(t)
	r := api.NewRouter()

	w := uploadImage(r, 999, "vase.png", []byte("fake png bytes"))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 Not Found, got %d", w.Code)
	}
}

func TestUploadItemImageHandler_MissingFile(t *testing.T) {
	t.Cleanup(clearAll)
	setupBlobStore(t)
	r := api.NewRouter()

	item := createdItem(t, r, "Vase", "Ceramic vase", "22.00", 4, "home")

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/items/%d/image", item.Id), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 Bad Request, got %d", w.Code)
	}
}
