package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cafe_voice_backend/platform/apperr"
)

// Order represents the orders database model
type Order struct {
	ID            uuid.UUID `db:"id"`
	OrderNumber   string    `db:"order_number"`
	CallID        string    `db:"call_id"`
	CustomerName  string    `db:"customer_name"`
	CustomerPhone string    `db:"customer_phone"`
	TotalCents    int64     `db:"total_cents"`
	CreatedAt     time.Time `db:"created_at"`
}

// OrderItem represents one line of an order
type OrderItem struct {
	ID              uuid.UUID `db:"id"`
	OrderID         uuid.UUID `db:"order_id"`
	Name            string    `db:"name"`
	UnitPriceCents  int64     `db:"unit_price_cents"`
	PreparationArea string    `db:"preparation_area"`
	Customizations  []string  `db:"customizations"`
	Position        int       `db:"position"`
}

const orderNotFoundMsg = "order not found"

// Repository provides database operations for orders
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new orders repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// nextOrderNumber atomically generates the next human-speakable number for
// the year. The upsert takes a row lock on the year's counter, so concurrent
// finalizations serialize on it instead of colliding on order_number.
func nextOrderNumber(ctx context.Context, tx pgx.Tx) (string, error) {
	year := time.Now().Year()
	var nextNum int
	query := `
		INSERT INTO order_counters (year, last_number)
		VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_number = order_counters.last_number + 1
		RETURNING last_number`

	if err := tx.QueryRow(ctx, query, year).Scan(&nextNum); err != nil {
		return "", fmt.Errorf("failed to generate order number: %w", err)
	}
	return formatOrderNumber(year, nextNum), nil
}

func formatOrderNumber(year, n int) string {
	return fmt.Sprintf("PED-%d-%04d", year, n)
}

// CreateWithItems inserts an order and its line items in a single transaction
func (r *Repository) CreateWithItems(ctx context.Context, order *Order, items []OrderItem) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	number, err := nextOrderNumber(ctx, tx)
	if err != nil {
		return err
	}
	order.OrderNumber = number

	orderQuery := `
		INSERT INTO orders (
			id, order_number, call_id, customer_name, customer_phone, total_cents, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if _, err := tx.Exec(ctx, orderQuery,
		order.ID, order.OrderNumber, order.CallID, order.CustomerName,
		order.CustomerPhone, order.TotalCents, order.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (
			id, order_id, name, unit_price_cents, preparation_area, customizations, position
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, item := range items {
		if _, err := tx.Exec(ctx, itemQuery,
			item.ID, item.OrderID, item.Name, item.UnitPriceCents,
			item.PreparationArea, item.Customizations, item.Position,
		); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetByID retrieves an order and its items by order ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, []OrderItem, error) {
	var order Order
	query := `SELECT id, order_number, call_id, customer_name, customer_phone, total_cents, created_at
		FROM orders WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&order.ID, &order.OrderNumber, &order.CallID, &order.CustomerName,
		&order.CustomerPhone, &order.TotalCents, &order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperr.NotFound(orderNotFoundMsg)
		}
		return nil, nil, fmt.Errorf("failed to get order: %w", err)
	}

	itemQuery := `SELECT id, order_id, name, unit_price_cents, preparation_area, customizations, position
		FROM order_items WHERE order_id = $1 ORDER BY position`

	rows, err := r.pool.Query(ctx, itemQuery, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.Name, &item.UnitPriceCents,
			&item.PreparationArea, &item.Customizations, &item.Position,
		); err != nil {
			return nil, nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read order items: %w", err)
	}

	return &order, items, nil
}
