// Package events publishes order events to a message broker.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopapi/internal/model"
)

// TypeOrderPlaced is the event type and routing key of a completed checkout.
const TypeOrderPlaced = "orders.placed"

// Event is the envelope every published message uses.
type Event[T any] struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Version int       `json:"version"`
	Time    time.Time `json:"time"`

	OrderID string `json:"order_id"`

	Payload T `json:"payload"`
}

type OrderPlacedPayload struct {
	UserID string             `json:"user_id"`
	Total  decimal.Decimal    `json:"total"`
	Items  []OrderItemPayload `json:"items"`
}

type OrderItemPayload struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
}

func NewOrderPlacedEvent(o model.Order) Event[OrderPlacedPayload] {
	items := make([]OrderItemPayload, 0, len(o.Products))
	for _, l := range o.Products {
		items = append(items, OrderItemPayload{ProductID: l.ProductID, Name: l.Name, Qty: l.Quantity, Price: l.Price})
	}

	at := o.PlacedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return Event[OrderPlacedPayload]{
		ID:      uuid.NewString(),
		Type:    TypeOrderPlaced,
		Version: 1,
		Time:    at,
		OrderID: o.ID,
		Payload: OrderPlacedPayload{UserID: o.UserID, Total: o.Total, Items: items},
	}
}
