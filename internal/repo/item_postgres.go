package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	models "github.com/EzekielMisgae/alis-app/internal/models"
)

type PostgresItemRepository struct {
	db *sql.DB
}

func NewPostgresItemRepository(db *sql.DB) *PostgresItemRepository {
	return &PostgresItemRepository{db: db}
}

const itemColumns = `id, name, description, price, quantity, category, COALESCE(image_url, ''), created_at, updated_at, created_by`

func scanItem(row interface{ Scan(...any) error }) (models.Item, error) {
	var it models.Item
	err := row.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Quantity,
		&it.Category, &it.ImageURL, &it.CreatedAt, &it.UpdatedAt, &it.CreatedBy)
	return it, err
}

// Create persists a new item. Timestamps are assigned by the store, never
// taken from the caller's clock.
func (r *PostgresItemRepository) Create(it models.Item) (models.Item, error) {
	query := `INSERT INTO items (name, description, price, quantity, category, image_url, created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), now(), now(), $7)
		RETURNING id, created_at, updated_at`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := r.db.QueryRowContext(ctx, query, it.Name, it.Description, it.Price,
		it.Quantity, it.Category, it.ImageURL, it.CreatedBy).
		Scan(&it.ID, &it.CreatedAt, &it.UpdatedAt)
	return it, err
}

func (r *PostgresItemRepository) GetAll() ([]models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY created_at DESC`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PostgresItemRepository) GetByID(id int) (models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	it, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Item{}, ErrItemNotFound
	}
	return it, err
}

func (r *PostgresItemRepository) Update(it models.Item) (models.Item, error) {
	query := `UPDATE items SET name = $1, description = $2, price = $3, quantity = $4,
		category = $5, image_url = NULLIF($6, ''), updated_at = now()
		WHERE id = $7
		RETURNING created_at, updated_at`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := r.db.QueryRowContext(ctx, query, it.Name, it.Description, it.Price,
		it.Quantity, it.Category, it.ImageURL, it.ID).
		Scan(&it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Item{}, ErrItemNotFound
	}
	return it, err
}

// Delete removes an item permanently. Historical transactions keep their
// name/price snapshots, so no referencing-transaction check is made.
func (r *PostgresItemRepository) Delete(id int) error {
	query := `DELETE FROM items WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PostgresItemRepository) Filter(f ItemFilter) ([]models.Item, int, error) {
	conditions, args, argIdx := itemFilterConditions(f)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var totalCount int
	countQuery := "SELECT COUNT(*) FROM items WHERE 1=1" + conditions
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + itemColumns + ` FROM items WHERE 1=1` + conditions + ` ORDER BY created_at DESC`
	if f.Limit != nil && *f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, *f.Limit)
		argIdx++
	}
	if f.Offset != nil && *f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, *f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, it)
	}
	return items, totalCount, rows.Err()
}

func itemFilterConditions(f ItemFilter) (string, []any, int) {
	query := ""
	argIdx := 1
	args := []any{}

	if f.Query != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+f.Query+"%")
		argIdx++
	}
	if f.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argIdx)
		args = append(args, f.Category)
		argIdx++
	}

	return query, args, argIdx
}

// AdjustQuantity applies delta atomically; the conditional update guarantees
// the stock level never goes negative.
func (r *PostgresItemRepository) AdjustQuantity(id int, delta int) (models.Item, error) {
	query := `
		UPDATE items
		SET quantity = quantity + $1, updated_at = now()
		WHERE id = $2 AND quantity + $1 >= 0
		RETURNING ` + itemColumns
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	it, err := scanItem(r.db.QueryRowContext(ctx, query, delta, id))
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := r.GetByID(id); errors.Is(err, ErrItemNotFound) {
			return models.Item{}, ErrItemNotFound
		}
		return models.Item{}, ErrInsufficientStock
	}
	return it, err
}

func (r *PostgresItemRepository) SetImageURL(id int, url string) (models.Item, error) {
	query := `UPDATE items SET image_url = $1, updated_at = now() WHERE id = $2 RETURNING ` + itemColumns
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	it, err := scanItem(r.db.QueryRowContext(ctx, query, url, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Item{}, ErrItemNotFound
	}
	return it, err
}

func (r *PostgresItemRepository) Categories() ([]string, error) {
	query := `SELECT DISTINCT category FROM items ORDER BY category`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
