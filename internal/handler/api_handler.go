package handler

import (
	"errors"
	"net/http"
	"strings"

	"shopping-mart/internal/catalog"
	"shopping-mart/internal/middleware"
	"shopping-mart/internal/model"
	"shopping-mart/internal/service"

	"github.com/rs/zerolog"
)

// APIHandler exposes the catalogue and the visitor's cart as JSON.
type APIHandler struct {
	products service.ProductService
	carts    service.CartService
	catalog  *catalog.Catalog
	logger   zerolog.Logger
}

// CartResponse is the JSON shape of GET /api/cart.
type CartResponse struct {
	Items []model.LineItem `json:"items"`
	Count int              `json:"count"`
	Total string           `json:"total"`
}

// NewAPIHandler creates a new JSON API handler.
func NewAPIHandler(
	products service.ProductService,
	carts service.CartService,
	c *catalog.Catalog,
	logger zerolog.Logger,
) *APIHandler {
	return &APIHandler{
		products: products,
		carts:    carts,
		catalog:  c,
		logger:   logger.With().Str("handler", "api").Logger(),
	}
}

// ListProducts handles GET /api/products?q=.
func (h *APIHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	products, err := h.products.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error", h.logger)
		return
	}
	if products == nil {
		products = []model.Product{}
	}

	writeJSON(w, http.StatusOK, products)
}

// GetProduct handles GET /api/products/{productId}.
func (h *APIHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	productID := strings.TrimPrefix(r.URL.Path, "/api/products/")
	if productID == "" || strings.Contains(productID, "/") {
		writeError(w, http.StatusBadRequest, "invalid product ID", h.logger)
		return
	}

	product, err := h.products.GetByID(r.Context(), productID)
	if err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "product not found", h.logger)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// GetCart handles GET /api/cart.
func (h *APIHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	c := h.carts.Get(r.Context(), middleware.SessionID(r.Context()))
	lines := h.catalog.LineItems(c)
	if lines == nil {
		lines = []model.LineItem{}
	}

	writeJSON(w, http.StatusOK, CartResponse{
		Items: lines,
		Count: catalog.Quantity(lines),
		Total: catalog.Total(lines).StringFixed(2),
	})
}
