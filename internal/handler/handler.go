// Package handler exposes the customer, wallet and order operations over
// HTTP/JSON.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/xenking/shop-wallet/internal/domain/customer"
	"github.com/xenking/shop-wallet/internal/domain/order"
	"github.com/xenking/shop-wallet/internal/domain/wallet"
)

// CustomerService manages customer profiles.
type CustomerService interface {
	Create(ctx context.Context, req customer.CreateRequest) (*customer.Customer, error)
	List(ctx context.Context) ([]customer.Customer, error)
	Get(ctx context.Context, id string) (*customer.Customer, error)
	Update(ctx context.Context, id string, req customer.UpdateRequest) (*customer.Customer, error)
	Delete(ctx context.Context, id string) error
}

// WalletService applies balance and discount mutations.
type WalletService interface {
	TopUp(ctx context.Context, customerID string, amount decimal.Decimal) (*customer.Customer, error)
	SetDiscount(ctx context.Context, customerID string, rate decimal.Decimal) (*customer.Customer, error)
	Purchase(ctx context.Context, req wallet.PurchaseRequest) (*order.Order, error)
}

// OrderService reads recorded purchases.
type OrderService interface {
	List(ctx context.Context) ([]order.View, error)
	ListByCustomer(ctx context.Context, customerID string) ([]order.Order, error)
}

// Handler serves the public API, delegating business logic to the domain
// services.
type Handler struct {
	customers CustomerService
	wallet    WalletService
	orders    OrderService
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(customers CustomerService, wallet WalletService, orders OrderService) *Handler {
	return &Handler{
		customers: customers,
		wallet:    wallet,
		orders:    orders,
	}
}

// Register mounts the API routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.Index)

	r.Route("/customers", func(r chi.Router) {
		r.Post("/", h.CreateCustomer)
		r.Get("/", h.ListCustomers)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetCustomer)
			r.Put("/", h.UpdateCustomer)
			r.Delete("/", h.DeleteCustomer)

			r.Post("/topup", h.TopUp)
			r.Post("/discount", h.SetDiscount)
			r.Post("/purchase", h.Purchase)
			r.Get("/orders", h.ListCustomerOrders)
		})
	})

	r.Get("/orders", h.ListOrders)
}

// Index answers the root path with a plain-text banner.
func (h *Handler) Index(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "This is my API running")
}
