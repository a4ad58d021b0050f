package service

import (
	"context"

	"shopping-mart/internal/model"
)

// ProductService defines read operations over the catalogue.
type ProductService interface {
	// Search returns the products whose name or description contains query.
	Search(ctx context.Context, query string) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

// CartService manages the cart owned by each visitor session.
// Operations on the same session are serialised.
type CartService interface {
	// Get returns the session's current cart. It never fails; an unreadable cart is empty.
	Get(ctx context.Context, sessionID string) model.Cart

	// Add increments the quantity of a catalogue product by one.
	Add(ctx context.Context, sessionID, productID string) (model.Cart, error)

	// SetQuantity sets a product's quantity from raw form input, clamped to at least one.
	SetQuantity(ctx context.Context, sessionID, productID, quantity string) (model.Cart, error)

	// Remove deletes a product from the cart.
	Remove(ctx context.Context, sessionID, productID string) (model.Cart, error)

	// Clear empties the cart.
	Clear(ctx context.Context, sessionID string) (model.Cart, error)

	// Take empties the cart and returns what it held. A cart with nothing
	// the catalogue can resolve is left untouched.
	Take(ctx context.Context, sessionID string) (model.Cart, error)
}

// CheckoutService turns a cart into an order.
type CheckoutService interface {
	// PlaceOrder validates the delivery details, empties the cart and
	// returns the resulting order. The order is not persisted.
	PlaceOrder(ctx context.Context, sessionID string, details model.CheckoutDetails) (*model.Order, error)
}
