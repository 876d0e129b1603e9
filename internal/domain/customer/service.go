package customer

import (
	"context"
	"fmt"
)

// Hasher produces one-way password hashes.
type Hasher interface {
	Hash(password string) (string, error)
}

// CreateRequest holds the input for registering a customer.
type CreateRequest struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// UpdateRequest holds the input for a partial customer update. Nil fields are
// left unchanged; an empty Password is treated as "keep the current one".
type UpdateRequest struct {
	Name     *string
	Email    *string
	Password *string
	Phone    *string
}

// Service encapsulates customer registration and profile updates.
type Service struct {
	repo   Repository
	hasher Hasher
}

// NewService creates a customer Service.
func NewService(repo Repository, hasher Hasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

// Create hashes the password and persists a new customer with an empty wallet.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Customer, error) {
	if req.Password == "" {
		return nil, ErrPasswordRequired
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	c := &Customer{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return c, nil
}

// List returns every customer.
func (s *Service) List(ctx context.Context) ([]Customer, error) {
	customers, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

// Get returns the customer with the given id, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*Customer, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies a partial update. A provided password is re-hashed.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Customer, error) {
	patch := Patch{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		patch.PasswordHash = &hash
	}
	return s.repo.Update(ctx, id, patch)
}

// Delete removes the customer. Deleting an absent customer is not an error,
// and orders referencing the customer are kept.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete customer %q: %w", id, err)
	}
	return nil
}
