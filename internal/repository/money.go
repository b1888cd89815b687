package repository

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// toDecimal128 stores money as a BSON decimal so no binary float rounding reaches the database.
func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	dec, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("invalid money amount %s: %w", d.String(), err)
	}
	return dec, nil
}

// decimalFromBSON reads amounts written as Decimal128, strings or legacy integers.
func decimalFromBSON(v interface{}) decimal.Decimal {
	switch val := v.(type) {
	case primitive.Decimal128:
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			return decimal.Zero
		}
		return d
	case string:
		d, err := decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero
		}
		return d
	case int32:
		return decimal.NewFromInt32(val)
	case int64:
		return decimal.NewFromInt(val)
	case float64:
		return decimal.NewFromFloat(val)
	default:
		return decimal.Zero
	}
}
