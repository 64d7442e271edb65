package handlers

import (
	"strings"

	repo "github.com/EzekielMisgae/alis-app/internal/repo"
)

type ItemValidationError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

// validateItem checks the field invariants before any write is attempted.
func validateItem(req ItemRequest) []ItemValidationError {
	errs := []ItemValidationError{}
	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, ItemValidationError{Field: "Name", Description: "Name is required"})
	}
	if strings.TrimSpace(req.Description) == "" {
		errs = append(errs, ItemValidationError{Field: "Description", Description: "Description is required"})
	}
	if strings.TrimSpace(req.Category) == "" {
		errs = append(errs, ItemValidationError{Field: "Category", Description: "Category is required"})
	}
	if req.Price.IsNegative() {
		errs = append(errs, ItemValidationError{Field: "Price", Description: "Price cannot be negative"})
	}
	if req.Quantity < 0 {
		errs = append(errs, ItemValidationError{Field: "Quantity", Description: "Quantity cannot be negative"})
	}
	return errs
}

// validateLineItems checks a transaction request before touching the store.
func validateLineItems(items []repo.LineItemInput) []ItemValidationError {
	errs := []ItemValidationError{}
	if len(items) == 0 {
		errs = append(errs, ItemValidationError{Field: "Items", Description: "At least one line item is required"})
	}
	for _, li := range items {
		if li.ItemID <= 0 {
			errs = append(errs, ItemValidationError{Field: "ItemID", Description: "Item reference is required"})
		}
		if li.Quantity <= 0 {
			errs = append(errs, ItemValidationError{Field: "Quantity", Description: "Line item quantity must be greater than zero"})
		}
	}
	return errs
}
