package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/shop-wallet/internal/domain/customer"
)

const customerColumns = `id, name, email, password_hash, phone, rate_discount, wallet, version`

const (
	insertCustomerSQL = `INSERT INTO customers (id, name, email, password_hash, phone, rate_discount, wallet, version)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	listCustomersSQL = `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at, id`

	getCustomerSQL = `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	getCustomersSQL = `SELECT ` + customerColumns + ` FROM customers WHERE id = ANY($1) ORDER BY created_at, id`

	updateCustomerSQL = `UPDATE customers SET
		name          = COALESCE($2, name),
		email         = COALESCE($3, email),
		phone         = COALESCE($4, phone),
		password_hash = COALESCE($5, password_hash),
		version       = version + 1
	WHERE id = $1
	RETURNING ` + customerColumns

	saveCustomerSQL = `UPDATE customers SET
		name = $3, email = $4, password_hash = $5, phone = $6,
		rate_discount = $7, wallet = $8, version = version + 1
	WHERE id = $1 AND version = $2`

	customerExistsSQL = `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`

	deleteCustomerSQL = `DELETE FROM customers WHERE id = $1`
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// Create inserts c with a fresh UUID and version 1.
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, insertCustomerSQL,
		id, c.Name, c.Email, c.PasswordHash, c.Phone, nullDecimal(c.RateDiscount), c.Wallet, int64(1),
	)
	if err != nil {
		return fmt.Errorf("creating customer: %w", err)
	}
	c.ID = id
	c.Version = 1
	return nil
}

// List returns all customers in creation order.
func (r *CustomerRepository) List(ctx context.Context) ([]customer.Customer, error) {
	rows, err := r.pool.Query(ctx, listCustomersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	return collectCustomers(rows)
}

// GetByID returns customer.ErrNotFound when no row matches.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*customer.Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx, getCustomerSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("getting customer %q: %w", id, err)
	}
	return &c, nil
}

// GetByIDs returns the customers that exist among ids.
func (r *CustomerRepository) GetByIDs(ctx context.Context, ids []string) ([]customer.Customer, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, getCustomersSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting customers: %w", err)
	}
	return collectCustomers(rows)
}

// Update sets the non-nil fields of patch and bumps the version.
func (r *CustomerRepository) Update(ctx context.Context, id string, patch customer.Patch) (*customer.Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx, updateCustomerSQL,
		id, patch.Name, patch.Email, patch.Phone, patch.PasswordHash,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("updating customer %q: %w", id, err)
	}
	return &c, nil
}

// Save writes every field of c if the stored version still equals c.Version.
func (r *CustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	tag, err := r.pool.Exec(ctx, saveCustomerSQL,
		c.ID, c.Version, c.Name, c.Email, c.PasswordHash, c.Phone, nullDecimal(c.RateDiscount), c.Wallet,
	)
	if err != nil {
		return fmt.Errorf("saving customer %q: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, customerExistsSQL, c.ID).Scan(&exists); err != nil {
			return fmt.Errorf("checking customer %q: %w", c.ID, err)
		}
		if !exists {
			return customer.ErrNotFound
		}
		return customer.ErrConflict
	}
	c.Version++
	return nil
}

// Delete removes the customer. Deleting an absent id is not an error.
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, deleteCustomerSQL, id); err != nil {
		return fmt.Errorf("deleting customer %q: %w", id, err)
	}
	return nil
}

func scanCustomer(row pgx.Row) (customer.Customer, error) {
	var (
		c    customer.Customer
		rate decimal.NullDecimal
	)
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.Phone, &rate, &c.Wallet, &c.Version)
	if err != nil {
		return customer.Customer{}, err
	}
	if rate.Valid {
		c.RateDiscount = &rate.Decimal
	}
	return c, nil
}

func collectCustomers(rows pgx.Rows) ([]customer.Customer, error) {
	defer rows.Close()

	var out []customer.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating customers: %w", err)
	}
	return out, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
