package handler

import (
	"github.com/shopspring/decimal"

	"shopapi/internal/model"
	"shopapi/internal/service"
)

// Request bodies. Pointer fields distinguish "absent" from zero.

type registerRequest struct {
	Username string `json:"username"`
}

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

type updateCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

type updateBalanceRequest struct {
	Balance *decimal.Decimal `json:"balance"`
}

// Response bodies. Money is rendered as JSON numbers.

type registerResponse struct {
	Message string  `json:"message"`
	UserID  string  `json:"userId"`
	Balance float64 `json:"balance"`
}

type profileResponse struct {
	Username string  `json:"username"`
	Balance  float64 `json:"balance"`
}

type productResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type cartLineResponse struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type cartMutationResponse struct {
	Message string             `json:"message"`
	Cart    []cartLineResponse `json:"cart"`
}

type balanceResponse struct {
	Message string  `json:"message"`
	Balance float64 `json:"balance"`
}

type cartViewLineResponse struct {
	ProductID  string  `json:"productId"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"totalPrice"`
}

type cartViewResponse struct {
	Cart        []cartViewLineResponse `json:"cart"`
	TotalAmount float64                `json:"totalAmount"`
}

type orderLineResponse struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type orderResponse struct {
	OrderID  string              `json:"orderId"`
	UserID   string              `json:"userId"`
	Products []orderLineResponse `json:"products"`
	Total    float64             `json:"total"`
}

type checkoutResponse struct {
	Message          string        `json:"message"`
	Order            orderResponse `json:"order"`
	RemainingBalance float64       `json:"remainingBalance"`
}

func money(d decimal.Decimal) float64 {
	return model.Round(d).InexactFloat64()
}

func toProducts(products []model.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, productResponse{ID: p.ID, Name: p.Name, Price: money(p.Price)})
	}
	return out
}

func toCartLines(cart []model.CartLineItem) []cartLineResponse {
	out := make([]cartLineResponse, 0, len(cart))
	for _, l := range cart {
		out = append(out, cartLineResponse{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return out
}

func toCartView(v *service.CartView) cartViewResponse {
	lines := make([]cartViewLineResponse, 0, len(v.Lines))
	for _, l := range v.Lines {
		lines = append(lines, cartViewLineResponse{
			ProductID:  l.ProductID,
			Name:       l.Name,
			Price:      money(l.Price),
			Quantity:   l.Quantity,
			TotalPrice: money(l.TotalPrice),
		})
	}
	return cartViewResponse{Cart: lines, TotalAmount: money(v.TotalAmount)}
}

func toOrder(o model.Order) orderResponse {
	lines := make([]orderLineResponse, 0, len(o.Products))
	for _, l := range o.Products {
		lines = append(lines, orderLineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			Price:     money(l.Price),
		})
	}
	return orderResponse{OrderID: o.ID, UserID: o.UserID, Products: lines, Total: money(o.Total)}
}
