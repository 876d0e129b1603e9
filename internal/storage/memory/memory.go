// Package memory provides process-local customer and order repositories.
// State is lost on restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xenking/shop-wallet/internal/domain/customer"
	"github.com/xenking/shop-wallet/internal/domain/order"
)

var (
	_ customer.Repository = (*CustomerRepository)(nil)
	_ order.Repository    = (*OrderRepository)(nil)
)

// CustomerRepository keeps customers in a map guarded by a mutex.
type CustomerRepository struct {
	mu    sync.RWMutex
	byID  map[string]customer.Customer
	order []string
}

// NewCustomerRepository returns an empty CustomerRepository.
func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{byID: make(map[string]customer.Customer)}
}

// Create assigns a UUID and version 1 and stores a copy of c.
func (r *CustomerRepository) Create(_ context.Context, c *customer.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c.ID = uuid.NewString()
	c.Version = 1
	r.byID[c.ID] = clone(*c)
	r.order = append(r.order, c.ID)
	return nil
}

// List returns copies of all customers in insertion order.
func (r *CustomerRepository) List(context.Context) ([]customer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]customer.Customer, 0, len(r.byID))
	for _, id := range r.order {
		if c, ok := r.byID[id]; ok {
			out = append(out, clone(c))
		}
	}
	return out, nil
}

// GetByID returns a copy of the customer or customer.ErrNotFound.
func (r *CustomerRepository) GetByID(_ context.Context, id string) (*customer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, customer.ErrNotFound
	}
	c = clone(c)
	return &c, nil
}

// GetByIDs returns the customers that exist among ids. Unknown ids are skipped.
func (r *CustomerRepository) GetByIDs(_ context.Context, ids []string) ([]customer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []customer.Customer
	for _, id := range ids {
		if c, ok := r.byID[id]; ok {
			out = append(out, clone(c))
		}
	}
	return out, nil
}

// Update applies patch and bumps the version.
func (r *CustomerRepository) Update(_ context.Context, id string, patch customer.Patch) (*customer.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, customer.ErrNotFound
	}
	patch.Apply(&c)
	c.Version++
	r.byID[id] = c

	c = clone(c)
	return &c, nil
}

// Save overwrites the stored customer if its version still equals c.Version.
func (r *CustomerRepository) Save(_ context.Context, c *customer.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[c.ID]
	if !ok {
		return customer.ErrNotFound
	}
	if stored.Version != c.Version {
		return customer.ErrConflict
	}
	c.Version++
	r.byID[c.ID] = clone(*c)
	return nil
}

// Delete removes the customer. Deleting an unknown id is not an error.
func (r *CustomerRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return nil
	}
	delete(r.byID, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// clone detaches the rate pointer so callers cannot mutate stored state.
func clone(c customer.Customer) customer.Customer {
	if c.RateDiscount != nil {
		rate := *c.RateDiscount
		c.RateDiscount = &rate
	}
	return c
}

// OrderRepository keeps orders in an append-only slice.
type OrderRepository struct {
	mu     sync.RWMutex
	orders []order.Order
}

// NewOrderRepository returns an empty OrderRepository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

// Create stores o with a fresh UUID.
func (r *OrderRepository) Create(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o.ID = uuid.NewString()
	if o.PurchaseDate.IsZero() {
		o.PurchaseDate = time.Now().UTC()
	}
	r.orders = append(r.orders, *o)
	return nil
}

// List returns all orders in insertion order.
func (r *OrderRepository) List(context.Context) ([]order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]order.Order, len(r.orders))
	copy(out, r.orders)
	return out, nil
}

// ListByCustomer returns the orders placed by customerID.
func (r *OrderRepository) ListByCustomer(_ context.Context, customerID string) ([]order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []order.Order
	for _, o := range r.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}
