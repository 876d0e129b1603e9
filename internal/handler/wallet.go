package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"

	"github.com/xenking/shop-wallet/internal/domain/wallet"
)

// TopUp adds wallet_topup to the customer's balance.
func (h *Handler) TopUp(w http.ResponseWriter, r *http.Request) {
	b, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := decodeAmountField(b, "wallet_topup")
	if err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.wallet.TopUp(r.Context(), chi.URLParam(r, "id"), amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var e jx.Encoder
	encodeCustomer(&e, c)
	writeJSON(w, http.StatusOK, &e)
}

// SetDiscount stores rate_discount on the customer.
func (h *Handler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	b, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rate, err := decodeAmountField(b, "rate_discount")
	if err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.wallet.SetDiscount(r.Context(), chi.URLParam(r, "id"), rate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var e jx.Encoder
	encodeCustomer(&e, c)
	writeJSON(w, http.StatusOK, &e)
}

// Purchase charges the discounted product_price and answers with the order.
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	b, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	in, err := decodePurchaseInput(b)
	if err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.wallet.Purchase(r.Context(), wallet.PurchaseRequest{
		CustomerID:  chi.URLParam(r, "id"),
		ProductName: in.ProductName,
		ListedPrice: in.Price,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	var e jx.Encoder
	encodeOrder(&e, o)
	writeJSON(w, http.StatusOK, &e)
}
