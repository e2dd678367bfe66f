package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Products are seeded at startup and never change afterwards.
type Product struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// CartLineItem is one product-quantity pair within a user's cart.
// A line with quantity 0 is removed rather than stored.
type CartLineItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// User is a registered shopper with a spendable balance and a cart.
// This is a pure domain model; storage packages map it to their own records.
type User struct {
	ID       string          `json:"id"`
	Username string          `json:"username"`
	Balance  decimal.Decimal `json:"balance"`
	Cart     []CartLineItem  `json:"cart"`
}

// Clone returns a deep copy so callers can mutate the cart without aliasing the original.
func (u *User) Clone() *User {
	c := *u
	c.Cart = append([]CartLineItem(nil), u.Cart...)
	return &c
}

// LineIndex returns the position of productID in the cart, or -1.
func (u *User) LineIndex(productID string) int {
	for i, line := range u.Cart {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

// OrderLine is a snapshot of a purchased cart line at checkout time.
type OrderLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Order is created by a successful checkout and is immutable afterwards.
type Order struct {
	ID       string          `json:"orderId"`
	UserID   string          `json:"userId"`
	Products []OrderLine     `json:"products"`
	Total    decimal.Decimal `json:"total"`
	PlacedAt time.Time       `json:"placedAt"`
}
