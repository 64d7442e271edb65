package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	repo "github.com/EzekielMisgae/alis-app/internal/repo"
)

const maxImageSize = 5 << 20 // 5 MiB

// UploadItemImageHandler godoc
// @Summary Attach an image to an item
// @Tags items
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Item ID"
// @Param file formData file true "Image file"
// @Success 200 {object} UploadResult
// @Failure 400 {string} string "Invalid file"
// @Failure 404 {string} string "Item not found"
// @Failure 500 {string} string "Internal error"
// @Router /items/{id}/image [post]
// @Security BearerAuth
func UploadItemImageHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid item ID", http.StatusBadRequest)
		return
	}

	if _, err := itemRepo.GetByID(id); err != nil {
		if errors.Is(err, repo.ErrItemNotFound) {
			http.Error(w, "item not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not fetch item", http.StatusInternalServerError)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	url, err := blobStore.Put(r.Context(), header.Filename, file)
	if err != nil {
		http.Error(w, "could not store image", http.StatusInternalServerError)
		return
	}

	if _, err := itemRepo.SetImageURL(id, url); err != nil {
		if errors.Is(err, repo.ErrItemNotFound) {
			http.Error(w, "item not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not save image URL", http.StatusInternalServerError)
		return
	}

	if err := writeJSON(w, http.StatusOK, UploadResult{ImageURL: url}); err != nil {
		http.Error(w, "", http.StatusInternalServerError)
	}
}
