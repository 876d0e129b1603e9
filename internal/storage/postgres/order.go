package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/shop-wallet/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (id, customer_id, product_name, product_price, purchase_date)
	VALUES ($1, $2, $3, $4, $5)`

	listOrdersSQL = `SELECT id, customer_id, product_name, product_price, purchase_date
	FROM orders ORDER BY seq`

	listOrdersByCustomerSQL = `SELECT id, customer_id, product_name, product_price, purchase_date
	FROM orders WHERE customer_id = $1 ORDER BY seq`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order with a fresh UUID.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	if o.PurchaseDate.IsZero() {
		o.PurchaseDate = time.Now().UTC()
	}
	// timestamptz keeps microseconds.
	o.PurchaseDate = o.PurchaseDate.Truncate(time.Microsecond)

	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, createOrderSQL,
		id, o.CustomerID, o.ProductName, o.ProductPrice, o.PurchaseDate,
	)
	if err != nil {
		return fmt.Errorf("creating order for customer %q: %w", o.CustomerID, err)
	}

	o.ID = id
	return nil
}

// List returns all orders in insertion order.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return collectOrders(rows)
}

// ListByCustomer returns the orders referencing customerID.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByCustomerSQL, customerID)
	if err != nil {
		return nil, fmt.Errorf("listing orders of customer %q: %w", customerID, err)
	}
	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]order.Order, error) {
	defer rows.Close()

	var out []order.Order
	for rows.Next() {
		var o order.Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.ProductName, &o.ProductPrice, &o.PurchaseDate); err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		o.PurchaseDate = o.PurchaseDate.UTC()
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating orders: %w", err)
	}
	return out, nil
}
