package order

import (
	"context"
	"fmt"

	"github.com/xenking/shop-wallet/internal/domain/customer"
)

// CustomerLookup batch-loads customers by id.
type CustomerLookup interface {
	GetByIDs(ctx context.Context, ids []string) ([]customer.Customer, error)
}

// Service serves order history queries.
type Service struct {
	orders    Repository
	customers CustomerLookup
}

// NewService creates an order Service.
func NewService(orders Repository, customers CustomerLookup) *Service {
	return &Service{
		orders:    orders,
		customers: customers,
	}
}

// List returns every order joined with the name and email of its customer.
// The join happens on read: orders of deleted customers are returned with a
// nil Customer.
func (s *Service) List(ctx context.Context) ([]View, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return s.join(ctx, orders)
}

// ListByCustomer returns the orders placed by the given customer.
func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]Order, error) {
	orders, err := s.orders.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list orders of customer %q: %w", customerID, err)
	}
	return orders, nil
}

func (s *Service) join(ctx context.Context, orders []Order) ([]View, error) {
	seen := make(map[string]struct{}, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		if _, ok := seen[o.CustomerID]; ok {
			continue
		}
		seen[o.CustomerID] = struct{}{}
		ids = append(ids, o.CustomerID)
	}

	contacts := make(map[string]customer.Contact, len(ids))
	if len(ids) > 0 {
		customers, err := s.customers.GetByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("get order customers: %w", err)
		}
		for i := range customers {
			contacts[customers[i].ID] = customers[i].Contact()
		}
	}

	views := make([]View, len(orders))
	for i, o := range orders {
		views[i] = View{Order: o}
		if c, ok := contacts[o.CustomerID]; ok {
			views[i].Customer = &c
		}
	}
	return views, nil
}
