package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/shop-wallet/internal/domain/customer"
	"github.com/xenking/shop-wallet/internal/domain/wallet"
)

// badRequestError marks a request that could not be parsed or is missing a
// required field.
type badRequestError struct {
	msg string
	err error
}

func (e *badRequestError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *badRequestError) Unwrap() error { return e.err }

func badRequest(msg string, err error) error {
	return &badRequestError{msg: msg, err: err}
}

// writeError maps domain errors to plain-text responses. Anything unknown is
// logged and answered with a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var bad *badRequestError
	switch {
	case errors.Is(err, customer.ErrNotFound):
		writeText(w, http.StatusNotFound, "Customer not found")
	case errors.Is(err, wallet.ErrInvalidRange):
		writeText(w, http.StatusBadRequest, "Invalid rate_discount value. Must be between 0 and 100")
	case errors.Is(err, wallet.ErrInsufficientFunds):
		writeText(w, http.StatusBadRequest, "Insufficient wallet balance")
	case errors.Is(err, customer.ErrPasswordRequired):
		writeText(w, http.StatusBadRequest, "Password is required")
	case errors.Is(err, customer.ErrConflict):
		writeText(w, http.StatusConflict, "Customer was modified concurrently, retry the request")
	case errors.As(err, &bad):
		writeText(w, http.StatusBadRequest, bad.Error())
	default:
		zctx.From(r.Context()).Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeText(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}
