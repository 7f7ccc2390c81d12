package model

import (
	"math"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places prices and amounts are stored with.
const MoneyScale = 2

// Column limits: prices are NUMERIC(12,2), totals and payments NUMERIC(14,2),
// stock and quantities INTEGER.
const MaxStock = math.MaxInt32

var (
	MaxPrice  = decimal.RequireFromString("9999999999.99")
	MaxAmount = decimal.RequireFromString("999999999999.99")
)

// CheckMoney reports why d cannot be stored as a positive money value of at most max,
// or "" when it can. Trailing zeros beyond two places are accepted.
func CheckMoney(d, max decimal.Decimal) string {
	switch {
	case !d.IsPositive():
		return "must be greater than zero"
	case !d.Equal(d.Truncate(MoneyScale)):
		return "must have at most 2 decimal places"
	case d.GreaterThan(max):
		return "must not exceed " + max.StringFixed(MoneyScale)
	}
	return ""
}
