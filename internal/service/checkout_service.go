package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shopping-mart/internal/catalog"
	"shopping-mart/internal/metrics"
	"shopping-mart/internal/model"

	"github.com/rs/zerolog"
)

// checkoutService implements CheckoutService.
type checkoutService struct {
	carts   CartService
	catalog *catalog.Catalog
	metrics *metrics.Metrics
	now     func() time.Time
	logger  zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	carts CartService,
	c *catalog.Catalog,
	m *metrics.Metrics,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		carts:   carts,
		catalog: c,
		metrics: m,
		now:     time.Now,
		logger:  logger.With().Str("service", "checkout").Logger(),
	}
}

// PlaceOrder confirms the session's cart as an order.
func (s *checkoutService) PlaceOrder(ctx context.Context, sessionID string, details model.CheckoutDetails) (*model.Order, error) {
	name := strings.TrimSpace(details.Name)
	if name == "" {
		s.logger.Debug().Str("session_id", sessionID).Msg("checkout rejected: name is required")
		return nil, model.ErrNameRequired
	}

	// Take empties and persists the cart under the session lock
	taken, err := s.carts.Take(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to take cart for checkout")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	lines := s.catalog.LineItems(taken)
	if len(lines) == 0 {
		s.logger.Debug().Str("session_id", sessionID).Msg("checkout rejected: cart is empty")
		return nil, model.ErrEmptyCart
	}

	now := s.now()
	order := &model.Order{
		ID:           fmt.Sprintf("ORD%d", now.UnixMilli()),
		CustomerName: name,
		Address:      strings.TrimSpace(details.Address),
		Notes:        strings.TrimSpace(details.Notes),
		LineItems:    lines,
		Total:        catalog.Total(lines),
		CreatedAt:    now,
	}

	s.metrics.OrderPlaced(order.Total.InexactFloat64())

	s.logger.Info().
		Str("order_id", order.ID).
		Str("session_id", sessionID).
		Int("item_count", len(lines)).
		Str("total", order.Total.StringFixed(2)).
		Msg("order placed")

	return order, nil
}
