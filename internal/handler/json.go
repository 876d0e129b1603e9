package handler

import (
	"bytes"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/shop-wallet/internal/domain/customer"
	"github.com/xenking/shop-wallet/internal/domain/order"
)

const (
	maxBodySize = 1 << 20
	// dateLayout renders millisecond UTC timestamps, e.g. 2025-06-15T12:00:00.000Z.
	dateLayout = "2006-01-02T15:04:05.000Z07:00"
)

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func writeNull(w http.ResponseWriter) {
	var e jx.Encoder
	e.Null()
	writeJSON(w, http.StatusOK, &e)
}

// readBody returns the request body, or "{}" when it is empty.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return nil, badRequest("Unable to read request body", err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return []byte("{}"), nil
	}
	return b, nil
}

func encodeCustomer(e *jx.Encoder, c *customer.Customer) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(c.ID)
	e.FieldStart("name")
	e.Str(c.Name)
	e.FieldStart("email")
	e.Str(c.Email)
	e.FieldStart("phone")
	e.Str(c.Phone)
	e.FieldStart("rate_discount")
	if c.RateDiscount != nil {
		e.Float64(c.RateDiscount.InexactFloat64())
	} else {
		e.Null()
	}
	e.FieldStart("wallet")
	e.Float64(c.Wallet.InexactFloat64())
	e.ObjEnd()
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	encodeOrderFields(e, o)
	e.ObjEnd()
}

func encodeOrderFields(e *jx.Encoder, o *order.Order) {
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("customer_id")
	e.Str(o.CustomerID)
	e.FieldStart("product_name")
	e.Str(o.ProductName)
	e.FieldStart("product_price")
	e.Float64(o.ProductPrice.InexactFloat64())
	e.FieldStart("purchase_date")
	e.Str(o.PurchaseDate.UTC().Format(dateLayout))
}

func encodeOrderView(e *jx.Encoder, v *order.View) {
	e.ObjStart()
	encodeOrderFields(e, &v.Order)
	e.FieldStart("customer")
	if c := v.Customer; c != nil {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(c.ID)
		e.FieldStart("name")
		e.Str(c.Name)
		e.FieldStart("email")
		e.Str(c.Email)
		e.ObjEnd()
	} else {
		e.Null()
	}
	e.ObjEnd()
}

// decodeOptString reads a string field. A JSON null leaves the field unset.
func decodeOptString(d *jx.Decoder) (*string, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	s, err := d.Str()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// decodeDecimal reads a JSON number, or a string holding one, into an exact
// decimal. A JSON null leaves the field unset.
func decodeDecimal(d *jx.Decoder) (*decimal.Decimal, error) {
	var raw string
	switch d.Next() {
	case jx.Null:
		return nil, d.Null()
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return nil, err
		}
		raw = n.String()
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return nil, err
		}
		raw = s
	default:
		return nil, errors.Errorf("expected number, got %s", d.Next())
	}

	v, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %q", raw)
	}
	return &v, nil
}

type customerInput struct {
	Name     *string
	Email    *string
	Password *string
	Phone    *string
}

func decodeCustomerInput(b []byte) (customerInput, error) {
	var in customerInput
	err := jx.DecodeBytes(b).ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "name":
			in.Name, err = decodeOptString(d)
		case "email":
			in.Email, err = decodeOptString(d)
		case "password":
			in.Password, err = decodeOptString(d)
		case "phone":
			in.Phone, err = decodeOptString(d)
		default:
			return d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}
		return nil
	})
	if err != nil {
		return customerInput{}, badRequest("Invalid customer payload", err)
	}
	return in, nil
}

// decodeAmountField reads a body holding a single required numeric field.
func decodeAmountField(b []byte, field string) (decimal.Decimal, error) {
	var amount *decimal.Decimal
	err := jx.DecodeBytes(b).ObjBytes(func(d *jx.Decoder, key []byte) error {
		if string(key) != field {
			return d.Skip()
		}
		v, err := decodeDecimal(d)
		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}
		amount = v
		return nil
	})
	if err != nil {
		return decimal.Decimal{}, badRequest("Invalid payload", err)
	}
	if amount == nil {
		return decimal.Decimal{}, badRequest(field+" is required", nil)
	}
	return *amount, nil
}

type purchaseInput struct {
	ProductName string
	Price       decimal.Decimal
}

func decodePurchaseInput(b []byte) (purchaseInput, error) {
	var (
		in    purchaseInput
		price *decimal.Decimal
	)
	err := jx.DecodeBytes(b).ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "product_name":
			name, err := decodeOptString(d)
			if err != nil {
				return errors.Wrap(err, `field "product_name"`)
			}
			if name != nil {
				in.ProductName = *name
			}
		case "product_price":
			v, err := decodeDecimal(d)
			if err != nil {
				return errors.Wrap(err, `field "product_price"`)
			}
			price = v
		default:
			return d.Skip()
		}
		return nil
	})
	if err != nil {
		return purchaseInput{}, badRequest("Invalid purchase payload", err)
	}
	if price == nil {
		return purchaseInput{}, badRequest("product_price is required", nil)
	}
	in.Price = *price
	return in, nil
}
