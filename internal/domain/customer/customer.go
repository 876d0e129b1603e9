package customer

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a requested customer does not exist.
	ErrNotFound = errors.New("customer not found")
	// ErrConflict is returned by Repository.Save when the stored version no
	// longer matches the version the caller read.
	ErrConflict = errors.New("customer was modified concurrently")
	// ErrPasswordRequired is returned when a customer is created without a password.
	ErrPasswordRequired = errors.New("password is required")
)

// Customer is a shop customer holding a spendable wallet balance.
type Customer struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	// RateDiscount is a percentage in [0, 100]. Nil means no discount was ever set.
	RateDiscount *decimal.Decimal
	Wallet       decimal.Decimal
	// Version is incremented by the store on every write.
	Version int64
}

// Contact is the subset of customer fields shown next to an order.
type Contact struct {
	ID    string
	Name  string
	Email string
}

// Contact returns the display fields of c.
func (c *Customer) Contact() Contact {
	return Contact{ID: c.ID, Name: c.Name, Email: c.Email}
}

// Patch lists the fields of a partial update. Nil fields are left unchanged.
type Patch struct {
	Name         *string
	Email        *string
	Phone        *string
	PasswordHash *string
}

// Apply copies the set fields of p into c.
func (p Patch) Apply(c *Customer) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.PasswordHash != nil {
		c.PasswordHash = *p.PasswordHash
	}
}

// Repository defines persistence operations for customers.
//
// Save is a full write guarded by Version: implementations must reject the
// write with ErrConflict when the stored version differs from c.Version, and
// bump c.Version on success.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	List(ctx context.Context) ([]Customer, error)
	GetByID(ctx context.Context, id string) (*Customer, error)
	GetByIDs(ctx context.Context, ids []string) ([]Customer, error)
	Update(ctx context.Context, id string, patch Patch) (*Customer, error)
	Save(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, id string) error
}
