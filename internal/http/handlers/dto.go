package handlers

import (
	"github.com/shopspring/decimal"

	"github.com/EzekielMisgae/alis-app/internal/models"
	repo "github.com/EzekielMisgae/alis-app/internal/repo"
)

type ItemRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url,omitempty"`
}

// ItemUpdateRequest carries a partial update; nil fields keep their current
// value.
type ItemUpdateRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Quantity    *int             `json:"quantity,omitempty"`
	Category    *string          `json:"category,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
}

type ItemResponse struct {
	Id          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url,omitempty"`
	LowStock    bool            `json:"low_stock,omitempty"`
	CreatedAt   string          `json:"created_at,omitempty"`
	UpdatedAt   string          `json:"updated_at,omitempty"`
	CreatedBy   int             `json:"created_by,omitempty"`
}

type Meta struct {
	TotalCount int `json:"total_count"`
}

type ItemsSearchResult struct {
	Data []ItemResponse `json:"data"`
	Meta Meta           `json:"meta,omitempty"`
}

type QuantityAdjustmentRequest struct {
	Delta int `json:"delta"` // can be positive or negative
}

type TransactionRequest struct {
	Items  []repo.LineItemInput     `json:"items"`
	Status models.TransactionStatus `json:"status,omitempty"` // pending (default) or completed
}

type TransactionStatusRequest struct {
	Status models.TransactionStatus `json:"status"`
}

type LineItemResponse struct {
	ItemID   int             `json:"item_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type TransactionResponse struct {
	Id        int                      `json:"id"`
	Items     []LineItemResponse       `json:"items"`
	Total     decimal.Decimal          `json:"total"`
	Status    models.TransactionStatus `json:"status"`
	CreatedAt string                   `json:"created_at"`
	UpdatedAt string                   `json:"updated_at"`
	HandledBy int                      `json:"handled_by"`
}

type TransactionsSearchResult struct {
	Data []TransactionResponse `json:"data"`
	Meta Meta                  `json:"meta,omitempty"`
}

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type RegisterResult struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type UploadResult struct {
	ImageURL string `json:"image_url"`
}

type ImportItemsResult struct {
	ImportedItemsCount int                   `json:"imported"`
	Errors             []ItemValidationError `json:"errors"`
}
