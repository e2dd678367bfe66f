package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRound(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"19.99", "19.99"},
		{"69.98", "69.98"},
		{"10.005", "10.01"},
		{"10.004", "10"},
		{"0.1", "0.1"},
		{"-1.005", "-1.01"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Round(decimal.RequireFromString(tt.in))
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestLineTotal(t *testing.T) {
	got := LineTotal(decimal.RequireFromString("19.99"), 3)
	assert.Equal(t, "59.97", got.StringFixed(2))
}

func TestUser_CloneDoesNotAliasCart(t *testing.T) {
	u := &User{ID: "u1", Cart: []CartLineItem{{ProductID: "p1", Quantity: 1}}}
	c := u.Clone()
	c.Cart[0].Quantity = 5
	c.Cart = append(c.Cart, CartLineItem{ProductID: "p2", Quantity: 1})

	assert.Equal(t, 1, u.Cart[0].Quantity)
	assert.Len(t, u.Cart, 1)
}

func TestUser_LineIndex(t *testing.T) {
	u := &User{Cart: []CartLineItem{{ProductID: "a"}, {ProductID: "b"}}}
	assert.Equal(t, 1, u.LineIndex("b"))
	assert.Equal(t, -1, u.LineIndex("c"))
}
