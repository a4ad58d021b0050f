package service

import (
	"context"

	"shopping-mart/internal/catalog"
	"shopping-mart/internal/model"

	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	catalog *catalog.Catalog
	logger  zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(c *catalog.Catalog, logger zerolog.Logger) ProductService {
	return &productService{
		catalog: c,
		logger:  logger.With().Str("service", "product").Logger(),
	}
}

// Search returns the products matching query.
func (s *productService) Search(ctx context.Context, query string) ([]model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	products := s.catalog.Search(query)

	s.logger.Debug().
		Str("query", query).
		Int("count", len(products)).
		Msg("searched products")

	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	product, ok := s.catalog.Get(id)
	if !ok {
		s.logger.Debug().Str("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return &product, nil
}
