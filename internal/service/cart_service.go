package service

import (
	"context"

	"shopping-mart/internal/cart"
	"shopping-mart/internal/catalog"
	"shopping-mart/internal/metrics"
	"shopping-mart/internal/model"
	"shopping-mart/internal/storage"

	"github.com/rs/zerolog"
)

// cartService implements CartService on top of a shared storage medium,
// giving every session its own namespace within it.
type cartService struct {
	storage storage.Storage
	catalog *catalog.Catalog
	metrics *metrics.Metrics
	locks   *sessionLocks
	logger  zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	s storage.Storage,
	c *catalog.Catalog,
	m *metrics.Metrics,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		storage: s,
		catalog: c,
		metrics: m,
		locks:   newSessionLocks(),
		logger:  logger.With().Str("service", "cart").Logger(),
	}
}

func (s *cartService) store(sessionID string) *cart.Store {
	logger := s.logger.With().Str("session_id", sessionID).Logger()
	return cart.NewStore(storage.Namespaced(s.storage, sessionID), s.metrics, logger)
}

// Get returns the session's current cart.
func (s *cartService) Get(ctx context.Context, sessionID string) model.Cart {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	return s.store(sessionID).Load(ctx)
}

// Add increments the quantity of productID by one.
// IDs that are not in the catalogue are rejected.
func (s *cartService) Add(ctx context.Context, sessionID, productID string) (model.Cart, error) {
	if !s.catalog.Contains(productID) {
		s.logger.Warn().Str("product_id", productID).Msg("add to cart rejected: unknown product")
		return nil, model.ErrProductNotFound
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	store := s.store(sessionID)
	return store.Add(ctx, store.Load(ctx), productID)
}

// SetQuantity sets the quantity of productID from raw input.
func (s *cartService) SetQuantity(ctx context.Context, sessionID, productID, quantity string) (model.Cart, error) {
	if !s.catalog.Contains(productID) {
		s.logger.Warn().Str("product_id", productID).Msg("set quantity rejected: unknown product")
		return nil, model.ErrProductNotFound
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	store := s.store(sessionID)
	return store.SetQuantity(ctx, store.Load(ctx), productID, quantity)
}

// Remove deletes productID from the cart.
func (s *cartService) Remove(ctx context.Context, sessionID, productID string) (model.Cart, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	store := s.store(sessionID)
	return store.Remove(ctx, store.Load(ctx), productID)
}

// Clear empties the cart.
func (s *cartService) Clear(ctx context.Context, sessionID string) (model.Cart, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	store := s.store(sessionID)
	return store.Clear(ctx, store.Load(ctx))
}

// Take empties the cart and returns its prior contents. A cart holding no
// catalogue product is returned as-is without a write.
func (s *cartService) Take(ctx context.Context, sessionID string) (model.Cart, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	store := s.store(sessionID)
	current := store.Load(ctx)
	if len(s.catalog.LineItems(current)) == 0 {
		return current, nil
	}

	taken := current.Clone()
	if _, err := store.Clear(ctx, current); err != nil {
		return nil, err
	}

	return taken, nil
}
