package mongo

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/shop-wallet/internal/domain/customer"
)

func TestDecimal128RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "integer", in: "-15", want: "-15"},
		{name: "fraction", in: "8.74125", want: "8.74125"},
		{name: "trailing zeros", in: "80.0000000000000000", want: "80"},
		{name: "large exponent", in: "1e40", want: "10000000000000000000000000000000000000000"},
		{name: "exactly 34 digits", in: "1234567890.123456789012345678901234", want: "1234567890.123456789012345678901234"},
		{name: "too many digits", in: "12345678901234567890.123456789012345678", want: "12345678901234567890.12345678901235"},
		{name: "tiny top-up on large wallet", in: "100000000000000000000.0000000000000001", want: "100000000000000000000"},
		{name: "carry", in: "9.9999999999999999999999999999999999", want: "10"},
		{name: "negative rounding", in: "-12345678901234567890.123456789012345678", want: "-12345678901234567890.12345678901235"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := toDecimal128(decimal.RequireFromString(tt.in))
			require.NoError(t, err)

			got, err := fromDecimal128(v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestFitCustomer(t *testing.T) {
	rate := decimal.RequireFromString("12.5")
	c := &customer.Customer{
		Wallet:       decimal.RequireFromString("12345678901234567890.123456789012345678"),
		RateDiscount: &rate,
	}

	fitCustomer(c)

	assert.Equal(t, "12345678901234567890.12345678901235", c.Wallet.String())
	require.NotNil(t, c.RateDiscount)
	assert.Equal(t, "12.5", c.RateDiscount.String())
}
