// Package cart loads, mutates and persists a visitor's cart.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"shopping-mart/internal/metrics"
	"shopping-mart/internal/model"
	"shopping-mart/internal/storage"

	"github.com/rs/zerolog"
)

// Key is the storage key the serialised cart lives under.
const Key = "shopping_mart_cart_v1"

// MaxQuantity caps the quantity of a single product.
const MaxQuantity = 9999

// Store persists a single cart to a storage medium.
// Every mutating method saves the whole cart before returning.
type Store struct {
	storage storage.Storage
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewStore creates a cart store on top of s.
func NewStore(s storage.Storage, m *metrics.Metrics, logger zerolog.Logger) *Store {
	return &Store{
		storage: s,
		metrics: m,
		logger:  logger.With().Str("component", "cart-store").Logger(),
	}
}

// Load reads the cart from storage. Absent, unreadable or malformed data
// yields an empty cart; the failure is logged but never returned.
func (s *Store) Load(ctx context.Context) model.Cart {
	raw, err := s.storage.GetItem(ctx, Key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().Err(err).Msg("failed to load cart")
			s.metrics.CartLoadFailed()
		}
		return model.Cart{}
	}

	var decoded map[string]int
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		s.logger.Error().Err(err).Msg("failed to load cart: malformed data")
		s.metrics.CartLoadFailed()
		return model.Cart{}
	}

	c := make(model.Cart, len(decoded))
	for id, qty := range decoded {
		if id == "" || qty < 1 {
			s.logger.Warn().Str("product_id", id).Int("quantity", qty).Msg("dropping invalid cart entry")
			continue
		}
		c[id] = min(qty, MaxQuantity)
	}
	return c
}

// Save overwrites the stored cart with c.
func (s *Store) Save(ctx context.Context, c model.Cart) error {
	if c == nil {
		c = model.Cart{}
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := s.storage.SetItem(ctx, Key, string(data)); err != nil {
		s.metrics.StorageWriteFailed()
		return fmt.Errorf("failed to save cart: %w", err)
	}

	return nil
}

// Add increments the quantity of productID by one.
func (s *Store) Add(ctx context.Context, c model.Cart, productID string) (model.Cart, error) {
	c = ensure(c)
	c[productID] = min(c[productID]+1, MaxQuantity)
	return s.commit(ctx, c, "add", productID)
}

// SetQuantity sets the quantity of productID from raw user input.
// Non-numeric input and values below one are stored as one; larger values
// are capped at MaxQuantity.
func (s *Store) SetQuantity(ctx context.Context, c model.Cart, productID, raw string) (model.Cart, error) {
	c = ensure(c)
	c[productID] = ParseQuantity(raw)
	return s.commit(ctx, c, "set_quantity", productID)
}

// Remove deletes productID from the cart. Removing an absent ID is a no-op
// apart from the save.
func (s *Store) Remove(ctx context.Context, c model.Cart, productID string) (model.Cart, error) {
	c = ensure(c)
	delete(c, productID)
	return s.commit(ctx, c, "remove", productID)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context, c model.Cart) (model.Cart, error) {
	c = ensure(c)
	for id := range c {
		delete(c, id)
	}
	return s.commit(ctx, c, "clear", "")
}

func (s *Store) commit(ctx context.Context, c model.Cart, op, productID string) (model.Cart, error) {
	s.metrics.CartMutated(op)
	if err := s.Save(ctx, c); err != nil {
		s.logger.Error().
			Err(err).
			Str("op", op).
			Str("product_id", productID).
			Msg("cart mutation not persisted")
		return c, err
	}

	s.logger.Debug().
		Str("op", op).
		Str("product_id", productID).
		Int("count", Count(c)).
		Msg("cart updated")
	return c, nil
}

// Count returns the sum of all quantities in c.
func Count(c model.Cart) int {
	total := 0
	for _, qty := range c {
		total += qty
	}
	return total
}

// ParseQuantity converts quantity input to an integer between one and
// MaxQuantity. Input that is not an integer, or is below one, yields one.
func ParseQuantity(raw string) int {
	qty, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || qty < 1 {
		return 1
	}
	return min(qty, MaxQuantity)
}

func ensure(c model.Cart) model.Cart {
	if c == nil {
		return model.Cart{}
	}
	return c
}
