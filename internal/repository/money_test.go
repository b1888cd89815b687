package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimal128RoundTrip(t *testing.T) {
	for _, amount := range []string{"0", "1.00", "10.5", "12345678.99"} {
		d := decimal.RequireFromString(amount)

		dec, err := toDecimal128(d)
		require.NoError(t, err)

		assert.Truef(t, decimalFromBSON(dec).Equal(d), "round trip of %s", amount)
	}
}

func TestDecimalFromBSONLegacyTypes(t *testing.T) {
	assert.True(t, decimalFromBSON(int32(7)).Equal(decimal.NewFromInt(7)))
	assert.True(t, decimalFromBSON(int64(20)).Equal(decimal.NewFromInt(20)))
	assert.True(t, decimalFromBSON("3.25").Equal(decimal.RequireFromString("3.25")))
	assert.True(t, decimalFromBSON(nil).IsZero())
	assert.True(t, decimalFromBSON("garbage").IsZero())
}
