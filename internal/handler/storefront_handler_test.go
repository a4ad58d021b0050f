package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"shopping-mart/internal/catalog"
	"shopping-mart/internal/middleware"
	"shopping-mart/internal/model"
	"shopping-mart/internal/service"
	"shopping-mart/internal/storage"
	"shopping-mart/internal/view"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSession = "7d1c1a52-9f57-4b2c-9d0e-4b7f2c1e9a10"

// MockCheckoutService is a mock implementation of service.CheckoutService.
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) PlaceOrder(ctx context.Context, sessionID string, details model.CheckoutDetails) (*model.Order, error) {
	args := m.Called(ctx, sessionID, details)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

// readOnlyStorage serves reads from an inner medium and fails every write.
type readOnlyStorage struct {
	storage.Storage
}

func (readOnlyStorage) SetItem(context.Context, string, string) error {
	return errors.New("disk full")
}

type storefrontFixture struct {
	handler *StorefrontHandler
	carts   service.CartService
}

func newStorefrontFixture(t *testing.T, s storage.Storage) storefrontFixture {
	t.Helper()

	c := catalog.Default()
	logger := zerolog.Nop()

	views, err := view.NewRouter(c, nil, logger)
	require.NoError(t, err)

	carts := service.NewCartService(s, c, nil, logger)
	checkout := service.NewCheckoutService(carts, c, nil, logger)

	return storefrontFixture{
		handler: NewStorefrontHandler(carts, checkout, views, logger),
		carts:   carts,
	}
}

func newFormRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req.WithContext(middleware.WithSessionID(req.Context(), testSession))
}

func newGetRequest(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return req.WithContext(middleware.WithSessionID(req.Context(), testSession))
}

func TestStorefrontHandler_View(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		contains []string
	}{
		{
			name:     "Root renders home",
			target:   "/",
			contains: []string{`class="card"`, "Fresh Apples (1kg)"},
		},
		{
			name:     "Unknown token renders home",
			target:   "/does-not-exist",
			contains: []string{"Fresh Apples (1kg)"},
		},
		{
			name:     "Products with query",
			target:   "/products?q=milk",
			contains: []string{`<span id="result-count">1</span>`, "Milk 1L"},
		},
		{
			name:     "Empty cart",
			target:   "/cart",
			contains: []string{"Your cart is empty"},
		},
		{
			name:     "Checkout",
			target:   "/checkout",
			contains: []string{"Delivery Details", `id="checkout-total">$0.00`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newStorefrontFixture(t, storage.NewMemory())

			w := httptest.NewRecorder()
			f.handler.View(w, newGetRequest(tt.target))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
			for _, s := range tt.contains {
				assert.Contains(t, w.Body.String(), s)
			}
		})
	}
}

func TestStorefrontHandler_View_MethodNotAllowed(t *testing.T) {
	f := newStorefrontFixture(t, storage.NewMemory())

	w := httptest.NewRecorder()
	f.handler.View(w, httptest.NewRequest(http.MethodDelete, "/cart", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestStorefrontHandler_ProductGrid(t *testing.T) {
	f := newStorefrontFixture(t, storage.NewMemory())

	w := httptest.NewRecorder()
	f.handler.ProductGrid(w, newGetRequest("/fragments/products?q=MILK"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Result-Count"))
	assert.Contains(t, w.Body.String(), "Milk 1L")
	assert.NotContains(t, w.Body.String(), "<html")
}

func TestStorefrontHandler_AddToCart(t *testing.T) {
	tests := []struct {
		name             string
		form             url.Values
		expectedLocation string
	}{
		{
			name:             "Back to home",
			form:             url.Values{"product_id": {"p1"}, "return": {"home"}},
			expectedLocation: "/home",
		},
		{
			name:             "Back to filtered products",
			form:             url.Values{"product_id": {"p1"}, "return": {"products"}, "q": {"fresh fruit"}},
			expectedLocation: "/products?q=fresh+fruit",
		},
		{
			name:             "Missing return goes home",
			form:             url.Values{"product_id": {"p1"}},
			expectedLocation: "/home",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newStorefrontFixture(t, storage.NewMemory())

			w := httptest.NewRecorder()
			f.handler.AddToCart(w, newFormRequest("/cart/add", tt.form))

			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, tt.expectedLocation, w.Header().Get("Location"))
			assert.Equal(t, model.Cart{"p1": 1}, f.carts.Get(context.Background(), testSession))
		})
	}
}

func TestStorefrontHandler_AddToCart_UnknownProduct(t *testing.T) {
	f := newStorefrontFixture(t, storage.NewMemory())

	w := httptest.NewRecorder()
	f.handler.AddToCart(w, newFormRequest("/cart/add", url.Values{"product_id": {"p99"}, "return": {"products"}}))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), noticeProductNotFound)
	assert.Contains(t, w.Body.String(), `id="result-count"`)
	assert.Empty(t, f.carts.Get(context.Background(), testSession))
}

func TestStorefrontHandler_AddToCart_StorageFailure(t *testing.T) {
	f := newStorefrontFixture(t, readOnlyStorage{Storage: storage.NewMemory()})

	w := httptest.NewRecorder()
	f.handler.AddToCart(w, newFormRequest("/cart/add", url.Values{"product_id": {"p1"}, "return": {"home"}}))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), noticeCartNotSaved)
	assert.Contains(t, w.Body.String(), `<span id="cart-count">0</span>`)
}

func TestStorefrontHandler_AddToCart_MethodNotAllowed(t *testing.T) {
	f := newStorefrontFixture(t, storage.NewMemory())

	w := httptest.NewRecorder()
	f.handler.AddToCart(w, newGetRequest("/cart/add"))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestStorefrontHandler_CartActions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		path     string
		form     url.Values
		call     func(h *StorefrontHandler) http.HandlerFunc
		expected model.Cart
	}{
		{
			name:     "Set quantity",
			path:     "/cart/quantity",
			form:     url.Values{"product_id": {"p1"}, "quantity": {"5"}},
			call:     func(h *StorefrontHandler) http.HandlerFunc { return h.SetQuantity },
			expected: model.Cart{"p1": 5, "p3": 1},
		},
		{
			name:     "Set quantity below one clamps",
			path:     "/cart/quantity",
			form:     url.Values{"product_id": {"p1"}, "quantity": {"-3"}},
			call:     func(h *StorefrontHandler) http.HandlerFunc { return h.SetQuantity },
			expected: model.Cart{"p1": 1, "p3": 1},
		},
		{
			name:     "Set quantity non-numeric clamps",
			path:     "/cart/quantity",
			form:     url.Values{"product_id": {"p1"}, "quantity": {"lots"}},
			call:     func(h *StorefrontHandler) http.HandlerFunc { return h.SetQuantity },
			expected: model.Cart{"p1": 1, "p3": 1},
		},
		{
			name:     "Remove",
			path:     "/cart/remove",
			form:     url.Values{"product_id": {"p1"}},
			call:     func(h *StorefrontHandler) http.HandlerFunc { return h.RemoveFromCart },
			expected: model.Cart{"p3": 1},
		},
		{
			name:     "Remove absent is a no-op",
			path:     "/cart/remove",
			form:     url.Values{"product_id": {"p7"}},
			call:     func(h *StorefrontHandler) http.HandlerFunc { return h.RemoveFromCart },
			expected: model.Cart{"p1": 2, "p3": 1},
		},
		{
			name:     "Clear",
			path:     "/cart/clear",
			form:     url.Values{},
			call:     func(h *StorefrontHandler) http.HandlerFunc { return h.ClearCart },
			expected: model.Cart{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newStorefrontFixture(t, storage.NewMemory())
			for _, id := range []string{"p1", "p1", "p3"} {
				_, err := f.carts.Add(ctx, testSession, id)
				require.NoError(t, err)
			}

			w := httptest.NewRecorder()
			tt.call(f.handler)(w, newFormRequest(tt.path, tt.form))

			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, "/cart", w.Header().Get("Location"))
			assert.Equal(t, tt.expected, f.carts.Get(ctx, testSession))
		})
	}
}

func TestStorefrontHandler_ConfirmOrder(t *testing.T) {
	ctx := context.Background()
	f := newStorefrontFixture(t, storage.NewMemory())

	for i := 0; i < 2; i++ {
		_, err := f.carts.Add(ctx, testSession, "p1")
		require.NoError(t, err)
	}

	w := httptest.NewRecorder()
	f.handler.ConfirmOrder(w, newFormRequest("/checkout", url.Values{
		"name":    {"Jane Doe"},
		"address": {"1 Main St"},
	}))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `<span id="order-name">Jane Doe</span>`)
	assert.Contains(t, body, `<span id="order-total">$7.00</span>`)
	assert.Contains(t, body, `<strong id="order-id">ORD`)
	assert.Contains(t, body, `<span id="cart-count">0</span>`)
	assert.Empty(t, f.carts.Get(ctx, testSession))
}

func TestStorefrontHandler_ConfirmOrder_Rejected(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		seed         []string
		form         url.Values
		expectedCart model.Cart
		notice       string
	}{
		{
			name:         "Blank name",
			seed:         []string{"p1"},
			form:         url.Values{"name": {"   "}, "address": {"1 Main St"}, "notes": {"ring twice"}},
			expectedCart: model.Cart{"p1": 1},
			notice:       model.ErrNameRequired.Message,
		},
		{
			name:         "Empty cart",
			form:         url.Values{"name": {"Jane Doe"}, "address": {"1 Main St"}, "notes": {"ring twice"}},
			expectedCart: model.Cart{},
			notice:       model.ErrEmptyCart.Message,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newStorefrontFixture(t, storage.NewMemory())
			for _, id := range tt.seed {
				_, err := f.carts.Add(ctx, testSession, id)
				require.NoError(t, err)
			}

			w := httptest.NewRecorder()
			f.handler.ConfirmOrder(w, newFormRequest("/checkout", tt.form))

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			body := w.Body.String()
			assert.Contains(t, body, tt.notice)
			assert.Contains(t, body, `value="1 Main St"`)
			assert.Contains(t, body, ">ring twice</textarea>")
			assert.Equal(t, tt.expectedCart, f.carts.Get(ctx, testSession))
		})
	}
}

func TestStorefrontHandler_ConfirmOrder_Failure(t *testing.T) {
	c := catalog.Default()
	logger := zerolog.Nop()
	views, err := view.NewRouter(c, nil, logger)
	require.NoError(t, err)

	checkout := new(MockCheckoutService)
	checkout.On("PlaceOrder", mock.Anything, testSession, model.CheckoutDetails{Name: "Jane Doe"}).
		Return(nil, errors.New("failed to place order: disk full"))

	carts := service.NewCartService(storage.NewMemory(), c, nil, logger)
	h := NewStorefrontHandler(carts, checkout, views, logger)

	w := httptest.NewRecorder()
	h.ConfirmOrder(w, newFormRequest("/checkout", url.Values{"name": {"Jane Doe"}}))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), noticeOrderFailed)
	checkout.AssertExpectations(t)
}
