package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/shop-wallet/internal/domain/customer"
)

// CreateCustomer registers a customer and answers 201 with its representation.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	b, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	in, err := decodeCustomerInput(b)
	if err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.customers.Create(r.Context(), customer.CreateRequest{
		Name:     deref(in.Name),
		Email:    deref(in.Email),
		Password: deref(in.Password),
		Phone:    deref(in.Phone),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	var e jx.Encoder
	encodeCustomer(&e, c)
	writeJSON(w, http.StatusCreated, &e)
}

// ListCustomers answers 200 with every customer in creation order.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var e jx.Encoder
	e.ArrStart()
	for i := range customers {
		encodeCustomer(&e, &customers[i])
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, &e)
}

// GetCustomer answers 200 with a null body when the customer does not exist.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.customers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			writeNull(w)
			return
		}
		writeError(w, r, err)
		return
	}

	var e jx.Encoder
	encodeCustomer(&e, c)
	writeJSON(w, http.StatusOK, &e)
}

// UpdateCustomer applies the provided fields. Like GetCustomer, an unknown id
// yields 200 with a null body.
func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	b, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	in, err := decodeCustomerInput(b)
	if err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.customers.Update(r.Context(), chi.URLParam(r, "id"), customer.UpdateRequest{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Phone:    in.Phone,
	})
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			writeNull(w)
			return
		}
		writeError(w, r, err)
		return
	}

	var e jx.Encoder
	encodeCustomer(&e, c)
	writeJSON(w, http.StatusOK, &e)
}

// DeleteCustomer answers 204 whether or not the customer existed.
func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.customers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
