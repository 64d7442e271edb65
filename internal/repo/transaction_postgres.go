package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/EzekielMisgae/alis-app/internal/models"
	"github.com/shopspring/decimal"
)

type PostgresTransactionRepository struct {
	db *sql.DB
}

func NewPostgresTransactionRepository(db *sql.DB) *PostgresTransactionRepository {
	return &PostgresTransactionRepository{db: db}
}

const defaultLimit = 100

// Record snapshots the current name and price of every referenced item,
// fixes the total, and persists the transaction with its line items in one
// database transaction. A completed initial status additionally decrements
// stock inside the same database transaction, so either everything commits
// or nothing does.
func (r *PostgresTransactionRepository) Record(items []LineItemInput, handledBy int, initial models.TransactionStatus) (models.Transaction, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	lines := make([]models.TransactionItem, len(items))
	for i, in := range items {
		var name string
		var price decimal.Decimal
		err := tx.QueryRowContext(ctx,
			`SELECT name, price FROM items WHERE id = $1 FOR UPDATE`, in.ItemID).
			Scan(&name, &price)
		if errors.Is(err, sql.ErrNoRows) {
			return models.Transaction{}, ErrItemNotFound
		}
		if err != nil {
			return models.Transaction{}, err
		}
		lines[i] = models.TransactionItem{
			ItemID:   in.ItemID,
			Name:     name,
			Price:    price,
			Quantity: in.Quantity,
		}
	}

	t := models.Transaction{
		Items:     lines,
		Total:     models.TransactionTotal(lines),
		Status:    initial,
		HandledBy: handledBy,
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO transactions (total, status, created_at, updated_at, handled_by)
		 VALUES ($1, $2, now(), now(), $3)
		 RETURNING id, created_at, updated_at`,
		t.Total, t.Status, t.HandledBy).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to insert transaction: %w", err)
	}

	for _, li := range lines {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO transaction_items (transaction_id, item_id, name, price, quantity)
			 VALUES ($1, $2, $3, $4, $5)`,
			t.ID, li.ItemID, li.Name, li.Price, li.Quantity)
		if err != nil {
			return models.Transaction{}, fmt.Errorf("failed to insert line item: %w", err)
		}
	}

	if initial == models.StatusCompleted {
		if err := applyStockDecrements(ctx, tx, lines); err != nil {
			return models.Transaction{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Transaction{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return t, nil
}

// Transition moves a transaction forward through the state machine.
// pending -> completed decrements stock atomically with the status write;
// pending -> cancelled touches no stock. Everything else is rejected.
func (r *PostgresTransactionRepository) Transition(id int, next models.TransactionStatus) (models.Transaction, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var t models.Transaction
	err = tx.QueryRowContext(ctx,
		`SELECT id, total, status, created_at, handled_by FROM transactions WHERE id = $1 FOR UPDATE`, id).
		Scan(&t.ID, &t.Total, &t.Status, &t.CreatedAt, &t.HandledBy)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, ErrTransactionNotFound
	}
	if err != nil {
		return models.Transaction{}, err
	}

	if !t.Status.CanTransitionTo(next) {
		return models.Transaction{}, ErrInvalidTransition
	}

	t.Items, err = loadLineItems(ctx, tx, id)
	if err != nil {
		return models.Transaction{}, err
	}

	if next == models.StatusCompleted {
		if err := applyStockDecrements(ctx, tx, t.Items); err != nil {
			return models.Transaction{}, err
		}
	}

	err = tx.QueryRowContext(ctx,
		`UPDATE transactions SET status = $1, updated_at = now() WHERE id = $2 RETURNING updated_at`,
		next, id).Scan(&t.UpdatedAt)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to update status: %w", err)
	}
	t.Status = next

	if err := tx.Commit(); err != nil {
		return models.Transaction{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return t, nil
}

// applyStockDecrements deducts each sold quantity via a conditional update
// that refuses to drive the item negative. A deleted item or a shortfall
// aborts the caller's database transaction untouched.
func applyStockDecrements(ctx context.Context, tx *sql.Tx, lines []models.TransactionItem) error {
	for _, li := range lines {
		res, err := tx.ExecContext(ctx,
			`UPDATE items SET quantity = quantity - $1, updated_at = now()
			 WHERE id = $2 AND quantity >= $1`,
			li.Quantity, li.ItemID)
		if err != nil {
			return fmt.Errorf("failed to adjust stock for item %d: %w", li.ItemID, err)
		}
		affected, _ := res.RowsAffected()
		if affected == 0 {
			var exists bool
			if err := tx.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM items WHERE id = $1)`, li.ItemID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return ErrItemNotFound
			}
			return ErrInsufficientStock
		}
	}
	return nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadLineItems(ctx context.Context, q queryer, transactionID int) ([]models.TransactionItem, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT item_id, name, price, quantity FROM transaction_items WHERE transaction_id = $1 ORDER BY id`,
		transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []models.TransactionItem
	for rows.Next() {
		var li models.TransactionItem
		if err := rows.Scan(&li.ItemID, &li.Name, &li.Price, &li.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, li)
	}
	return lines, rows.Err()
}

func (r *PostgresTransactionRepository) GetByID(id int) (models.Transaction, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var t models.Transaction
	err := r.db.QueryRowContext(ctx,
		`SELECT id, total, status, created_at, updated_at, handled_by FROM transactions WHERE id = $1`, id).
		Scan(&t.ID, &t.Total, &t.Status, &t.CreatedAt, &t.UpdatedAt, &t.HandledBy)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, ErrTransactionNotFound
	}
	if err != nil {
		return models.Transaction{}, err
	}

	t.Items, err = loadLineItems(ctx, r.db, id)
	return t, err
}

func (r *PostgresTransactionRepository) Filter(tf TransactionFilter) ([]models.Transaction, int, error) {
	conditions, args, argIdx := transactionFilterConditions(tf)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var total int
	countQuery := "SELECT COUNT(*) FROM transactions WHERE 1=1" + conditions
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to get total count: %w", err)
	}

	query := `SELECT id, total, status, created_at, updated_at, handled_by FROM transactions WHERE 1=1` +
		conditions + ` ORDER BY created_at DESC`

	limit := defaultLimit
	if tf.Limit != nil && *tf.Limit > 0 {
		limit = min(*tf.Limit, defaultLimit)
	}
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, limit)
	argIdx++

	if tf.Offset != nil && *tf.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, *tf.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.Total, &t.Status, &t.CreatedAt, &t.UpdatedAt, &t.HandledBy); err != nil {
			return nil, 0, err
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range transactions {
		transactions[i].Items, err = loadLineItems(ctx, r.db, transactions[i].ID)
		if err != nil {
			return nil, 0, err
		}
	}
	return transactions, total, nil
}

func transactionFilterConditions(tf TransactionFilter) (string, []any, int) {
	query := ""
	argIdx := 1
	args := []any{}

	if tf.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, tf.Status)
		argIdx++
	}
	if tf.Since != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *tf.Since)
		argIdx++
	}
	if tf.Until != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, *tf.Until)
		argIdx++
	}

	return query, args, argIdx
}
