package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem pairs a catalogue product with the quantity held in a cart.
type LineItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal returns price x quantity for the line.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CheckoutDetails holds the delivery form submitted at checkout.
type CheckoutDetails struct {
	Name    string
	Address string
	Notes   string
}

// Order is the summary produced when a checkout is confirmed.
// Orders are never persisted; they live only long enough to be rendered.
type Order struct {
	ID           string          `json:"id"`
	CustomerName string          `json:"customerName"`
	Address      string          `json:"address,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	LineItems    []LineItem      `json:"lineItems"`
	Total        decimal.Decimal `json:"total"`
	CreatedAt    time.Time       `json:"createdAt"`
}
