package model

import (
	"math"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the precision every stored or exposed amount is rounded to.
const MoneyPlaces = 2

// MaxLineQuantity bounds a single cart line. It matches the Postgres INTEGER column.
const MaxLineQuantity = math.MaxInt32

// DefaultBalance is credited to every newly registered user.
var DefaultBalance = decimal.RequireFromString("100.00")

// MaxBalance is the largest amount a NUMERIC(14,2) balance column holds.
var MaxBalance = decimal.RequireFromString("999999999999.99")

// Round rounds an amount to MoneyPlaces, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// LineTotal is price × quantity, unrounded.
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}
