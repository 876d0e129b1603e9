package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/shop-wallet/internal/domain/customer"
)

// Order records a single successful purchase.
type Order struct {
	ID         string
	CustomerID string
	// ProductName is the free-text name supplied by the buyer.
	ProductName string
	// ProductPrice is the price actually charged, after discount.
	ProductPrice decimal.Decimal
	PurchaseDate time.Time
}

// View is an order together with the contact fields of its customer.
// Customer is nil when the referenced customer no longer exists.
type View struct {
	Order
	Customer *customer.Contact
}

// Repository defines persistence operations for orders. Orders are never
// updated or deleted.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	List(ctx context.Context) ([]Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Order, error)
}
