package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"shopapi/internal/model"
)

// Receipt is the archived JSON form of an order.
type Receipt struct {
	OrderID  string          `json:"orderId"`
	UserID   string          `json:"userId"`
	PlacedAt time.Time       `json:"placedAt"`
	Products []ReceiptLine   `json:"products"`
	Total    decimal.Decimal `json:"total"`
}

type ReceiptLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// ReceiptKey is the object key of an order's receipt.
func ReceiptKey(userID, orderID string) string {
	return fmt.Sprintf("orders/%s/%s.json", userID, orderID)
}

// Receipts archives one JSON object per placed order.
type Receipts struct {
	store Storage
}

func NewReceipts(store Storage) *Receipts {
	return &Receipts{store: store}
}

// OrderPlaced writes the order's receipt.
func (r *Receipts) OrderPlaced(ctx context.Context, o model.Order) error {
	rc := Receipt{
		OrderID:  o.ID,
		UserID:   o.UserID,
		PlacedAt: o.PlacedAt,
		Products: make([]ReceiptLine, 0, len(o.Products)),
		Total:    o.Total,
	}
	for _, l := range o.Products {
		rc.Products = append(rc.Products, ReceiptLine{ProductID: l.ProductID, Name: l.Name, Quantity: l.Quantity, Price: l.Price})
	}

	b, err := json.Marshal(rc)
	if err != nil {
		return err
	}
	key := ReceiptKey(o.UserID, o.ID)
	_, err = r.store.Put(ctx, Object{
		Key:         key,
		Body:        bytes.NewReader(b),
		Size:        int64(len(b)),
		ContentType: "application/json",
		Metadata:    map[string]string{"order-id": o.ID},
	})
	if err != nil {
		return fmt.Errorf("put receipt %s: %w", key, err)
	}
	return nil
}
