package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	models "github.com/EzekielMisgae/alis-app/internal/models"
)

type csvRow struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
	Category    string
}

func parseCSV(file multipart.File) ([]csvRow, error) {
	reader := csv.NewReader(file)
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV header")
	}

	index := map[string]int{}
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"name", "description", "price", "quantity", "category"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing CSV column %q", required)
		}
	}

	var rows []csvRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV read error: %v", err)
		}

		row := csvRow{
			Name:        record[index["name"]],
			Description: record[index["description"]],
			Price:       parseDecimal(record[index["price"]]),
			Quantity:    parseInt(record[index["quantity"]]),
			Category:    record[index["category"]],
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func validateRow(r csvRow) error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("missing name")
	}
	if strings.TrimSpace(r.Description) == "" {
		return errors.New("missing description")
	}
	if strings.TrimSpace(r.Category) == "" {
		return errors.New("missing category")
	}
	if r.Price.IsNegative() {
		return errors.New("invalid price")
	}
	if r.Quantity < 0 {
		return errors.New("invalid quantity")
	}
	return nil
}

func parseDecimal(s string) decimal.Decimal {
	v, _ := decimal.NewFromString(strings.TrimSpace(s))
	return v
}

func parseInt(s string) int {
	v, _ := strconv.Atoi(strings.TrimSpace(s))
	return v
}

// ImportItemsHandler godoc
// @Summary Import items via CSV
// @Description Expects columns name, description, price, quantity, category. Rows are validated independently; bad rows are reported and skipped.
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Success 200 {object} ImportItemsResult
// @Failure 400 {string} string "Invalid file"
// @Failure 500 {string} string "Internal error"
// @Router /items/import [post]
// @Security BearerAuth
func ImportItemsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	records, err := parseCSV(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var imported int
	var errorsList []ItemValidationError

	for i, rec := range records {
		rowNum := i + 2 // header is row 1

		if err := validateRow(rec); err != nil {
			errorsList = append(errorsList, ItemValidationError{Description: fmt.Sprintf("row %d: %v", rowNum, err)})
			continue
		}

		item := models.Item{
			Name:        rec.Name,
			Description: rec.Description,
			Price:       rec.Price,
			Quantity:    rec.Quantity,
			Category:    rec.Category,
			CreatedBy:   userID,
		}
		if _, err := itemRepo.Create(item); err != nil {
			errorsList = append(errorsList, ItemValidationError{Description: fmt.Sprintf("row %d: %v", rowNum, err)})
			continue
		}
		imported++
	}

	err = writeJSON(w, http.StatusOK, ImportItemsResult{
		ImportedItemsCount: imported,
		Errors:             errorsList,
	})

	if err != nil {
		http.Error(w, "", http.StatusInternalServerError)
	}
}
