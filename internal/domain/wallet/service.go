package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/shop-wallet/internal/domain/customer"
	"github.com/xenking/shop-wallet/internal/domain/order"
)

var (
	// ErrInvalidRange is returned when a rate discount lies outside [0, 100].
	ErrInvalidRange = errors.New("rate discount must be between 0 and 100")
	// ErrInsufficientFunds is returned when the wallet cannot cover the final price.
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
)

// Locker serializes read-modify-write sequences on a single customer.
// The returned function releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// PurchaseRequest holds the input for a purchase.
type PurchaseRequest struct {
	CustomerID  string
	ProductName string
	// ListedPrice is the price before the customer's discount.
	ListedPrice decimal.Decimal
}

// Service applies wallet mutations: top-ups, discount updates and purchases.
//
// Every operation is a read-modify-write of one customer record. The record
// is held under the Locker for the whole sequence and written back with
// Repository.Save, so a writer that bypasses the lock gets
// customer.ErrConflict instead of silently overwriting a newer balance.
type Service struct {
	customers customer.Repository
	orders    order.Repository
	locker    Locker
	now       func() time.Time

	topups    metric.Int64Counter
	purchases metric.Int64Counter
	rejected  metric.Int64Counter
}

// NewService creates a wallet Service.
func NewService(
	customers customer.Repository,
	orders order.Repository,
	locker Locker,
	mp metric.MeterProvider,
) (*Service, error) {
	meter := mp.Meter("github.com/xenking/shop-wallet/internal/domain/wallet")

	s := &Service{
		customers: customers,
		orders:    orders,
		locker:    locker,
		now:       time.Now,
	}

	var err error
	if s.topups, err = meter.Int64Counter("wallet.topups",
		metric.WithDescription("Number of applied wallet top-ups"),
	); err != nil {
		return nil, errors.Wrap(err, "topups counter")
	}
	if s.purchases, err = meter.Int64Counter("wallet.purchases",
		metric.WithDescription("Number of completed purchases"),
	); err != nil {
		return nil, errors.Wrap(err, "purchases counter")
	}
	if s.rejected, err = meter.Int64Counter("wallet.purchases.rejected",
		metric.WithDescription("Number of purchases rejected by the wallet"),
	); err != nil {
		return nil, errors.Wrap(err, "rejected counter")
	}

	return s, nil
}

// TopUp adds amount to the customer's wallet. Any amount is accepted,
// including a negative one, which debits the wallet without a floor check.
func (s *Service) TopUp(ctx context.Context, customerID string, amount decimal.Decimal) (*customer.Customer, error) {
	var result *customer.Customer
	err := s.mutate(ctx, customerID, func(c *customer.Customer) error {
		c.Wallet = c.Wallet.Add(amount)
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.topups.Add(ctx, 1)
	return result, nil
}

// SetDiscount stores a new rate discount for the customer. The customer must
// exist before the range is checked, matching the order of checks clients
// observe: 404 takes precedence over 400.
func (s *Service) SetDiscount(ctx context.Context, customerID string, rate decimal.Decimal) (*customer.Customer, error) {
	var result *customer.Customer
	err := s.mutate(ctx, customerID, func(c *customer.Customer) error {
		if !ValidRate(rate) {
			return ErrInvalidRange
		}
		c.RateDiscount = &rate
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Purchase charges the discounted price to the customer's wallet and records
// an order carrying the charged price.
//
// The debit and the order insert are separate writes. If the insert fails
// the wallet stays debited and the error is returned to the caller.
func (s *Service) Purchase(ctx context.Context, req PurchaseRequest) (*order.Order, error) {
	var final decimal.Decimal
	err := s.mutate(ctx, req.CustomerID, func(c *customer.Customer) error {
		final = FinalPrice(req.ListedPrice, c.RateDiscount)
		if c.Wallet.LessThan(final) {
			return ErrInsufficientFunds
		}
		c.Wallet = c.Wallet.Sub(final)
		return nil
	})
	if err != nil {
		s.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", rejectReason(err))))
		return nil, err
	}

	o := &order.Order{
		CustomerID:   req.CustomerID,
		ProductName:  req.ProductName,
		ProductPrice: final,
		PurchaseDate: s.now().UTC(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.purchases.Add(ctx, 1)
	return o, nil
}

// mutate loads the customer under its lock, applies fn and saves the result.
// Nothing is written when fn returns an error.
func (s *Service) mutate(ctx context.Context, customerID string, fn func(c *customer.Customer) error) error {
	unlock, err := s.locker.Lock(ctx, customerID)
	if err != nil {
		return fmt.Errorf("lock customer %q: %w", customerID, err)
	}
	defer unlock()

	c, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return customer.ErrNotFound
		}
		return fmt.Errorf("get customer %q: %w", customerID, err)
	}

	if err := fn(c); err != nil {
		return err
	}

	if err := s.customers.Save(ctx, c); err != nil {
		if errors.Is(err, customer.ErrConflict) || errors.Is(err, customer.ErrNotFound) {
			return err
		}
		return fmt.Errorf("save customer %q: %w", customerID, err)
	}
	return nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, customer.ErrNotFound):
		return "not_found"
	case errors.Is(err, customer.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
