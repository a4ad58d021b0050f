package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"shopping-mart/internal/middleware"
	"shopping-mart/internal/model"
	"shopping-mart/internal/service"
	"shopping-mart/internal/view"

	"github.com/rs/zerolog"
)

// Messages shown to the visitor when an action could not be completed.
const (
	noticeProductNotFound = "That product is not in our catalogue."
	noticeCartNotSaved    = "Your cart could not be saved. Please try again."
	noticeOrderFailed     = "Your order could not be placed. Please try again."
)

// StorefrontHandler serves the HTML storefront: the four views and the
// form actions that mutate the cart.
type StorefrontHandler struct {
	carts    service.CartService
	checkout service.CheckoutService
	views    *view.Router
	logger   zerolog.Logger
}

// NewStorefrontHandler creates a new storefront handler.
func NewStorefrontHandler(
	carts service.CartService,
	checkout service.CheckoutService,
	views *view.Router,
	logger zerolog.Logger,
) *StorefrontHandler {
	return &StorefrontHandler{
		carts:    carts,
		checkout: checkout,
		views:    views,
		logger:   logger.With().Str("handler", "storefront").Logger(),
	}
}

// View handles GET /{token}. Unrecognised tokens render the home view.
func (h *StorefrontHandler) View(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token := view.ParseToken(r.URL.Path)
	sessionID := middleware.SessionID(r.Context())

	h.render(w, http.StatusOK, token, view.State{
		Query: r.URL.Query().Get("q"),
		Cart:  h.carts.Get(r.Context(), sessionID),
	})
}

// ProductGrid handles GET /fragments/products, returning only the result grid
// so the products view can be filtered on every keystroke.
func (h *StorefrontHandler) ProductGrid(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var buf bytes.Buffer
	count, err := h.views.RenderProductGrid(&buf, r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to render product grid")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("X-Result-Count", strconv.Itoa(count))
	writeHTML(w, http.StatusOK, &buf)
}

// AddToCart handles POST /cart/add and returns the visitor to the view they came from.
func (h *StorefrontHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	if !h.parsePost(w, r) {
		return
	}

	back := view.ParseToken(r.PostForm.Get("return"))
	query := r.PostForm.Get("q")

	_, err := h.carts.Add(r.Context(), middleware.SessionID(r.Context()), r.PostForm.Get("product_id"))
	if err != nil {
		h.mutationFailed(w, r, err, back, query)
		return
	}

	redirect(w, r, back, query)
}

// SetQuantity handles POST /cart/quantity.
func (h *StorefrontHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	if !h.parsePost(w, r) {
		return
	}

	_, err := h.carts.SetQuantity(
		r.Context(),
		middleware.SessionID(r.Context()),
		r.PostForm.Get("product_id"),
		r.PostForm.Get("quantity"),
	)
	if err != nil {
		h.mutationFailed(w, r, err, view.Cart, "")
		return
	}

	redirect(w, r, view.Cart, "")
}

// RemoveFromCart handles POST /cart/remove.
func (h *StorefrontHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	if !h.parsePost(w, r) {
		return
	}

	_, err := h.carts.Remove(r.Context(), middleware.SessionID(r.Context()), r.PostForm.Get("product_id"))
	if err != nil {
		h.mutationFailed(w, r, err, view.Cart, "")
		return
	}

	redirect(w, r, view.Cart, "")
}

// ClearCart handles POST /cart/clear.
func (h *StorefrontHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if !h.parsePost(w, r) {
		return
	}

	if _, err := h.carts.Clear(r.Context(), middleware.SessionID(r.Context())); err != nil {
		h.mutationFailed(w, r, err, view.Cart, "")
		return
	}

	redirect(w, r, view.Cart, "")
}

// ConfirmOrder handles POST /checkout. A rejected submission re-renders the
// checkout view with the message and the values typed so far; the cart is untouched.
func (h *StorefrontHandler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	if !h.parsePost(w, r) {
		return
	}

	ctx := r.Context()
	sessionID := middleware.SessionID(ctx)
	details := model.CheckoutDetails{
		Name:    r.PostForm.Get("name"),
		Address: r.PostForm.Get("address"),
		Notes:   r.PostForm.Get("notes"),
	}

	order, err := h.checkout.PlaceOrder(ctx, sessionID, details)
	if err != nil {
		status := http.StatusServiceUnavailable
		notice := noticeOrderFailed

		var domainErr *model.DomainError
		if errors.As(err, &domainErr) {
			status = http.StatusUnprocessableEntity
			notice = domainErr.Message
		} else {
			h.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to place order")
		}

		h.render(w, status, view.Checkout, view.State{
			Cart:    h.carts.Get(ctx, sessionID),
			Notice:  notice,
			Details: details,
		})
		return
	}

	var buf bytes.Buffer
	if err := h.views.RenderConfirmation(&buf, order, view.State{Cart: model.Cart{}}); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, &buf)
}

// parsePost rejects non-POST requests and parses the form body.
func (h *StorefrontHandler) parsePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}

	if err := r.ParseForm(); err != nil {
		h.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("invalid form body")
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return false
	}

	return true
}

// mutationFailed renders the target view with a notice instead of redirecting.
// The cart shown is whatever storage currently holds.
func (h *StorefrontHandler) mutationFailed(w http.ResponseWriter, r *http.Request, err error, token view.Token, query string) {
	status := http.StatusServiceUnavailable
	notice := noticeCartNotSaved

	if errors.Is(err, model.ErrProductNotFound) {
		status = http.StatusNotFound
		notice = noticeProductNotFound
	} else {
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("cart mutation failed")
	}

	h.render(w, status, token, view.State{
		Query:  query,
		Cart:   h.carts.Get(r.Context(), middleware.SessionID(r.Context())),
		Notice: notice,
	})
}

func (h *StorefrontHandler) render(w http.ResponseWriter, status int, token view.Token, st view.State) {
	var buf bytes.Buffer
	if err := h.views.Render(&buf, token, st); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, status, &buf)
}

// redirect sends the visitor to token with a 303 so a reload never repeats the action.
func redirect(w http.ResponseWriter, r *http.Request, token view.Token, query string) {
	location := token.Path()
	if token == view.Products && query != "" {
		location += "?q=" + url.QueryEscape(query)
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
