// Package view renders the storefront's pages. Each render replaces the
// whole page; nothing is carried over from a previous render.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"shopping-mart/internal/catalog"
	"shopping-mart/internal/metrics"
	"shopping-mart/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

const confirmation = "confirmation"

// State is everything a render reads besides the catalogue.
type State struct {
	// Query is the current text of the search field.
	Query string

	// Cart is the visitor's cart at render time.
	Cart model.Cart

	// Notice is a blocking message shown above the content, e.g. a checkout validation error.
	Notice string

	// Details refills the checkout form after a rejected submission.
	Details model.CheckoutDetails
}

// page is the template data for every view.
type page struct {
	Title     string
	View      Token
	Query     string
	CartCount int
	Year      int
	Notice    string
	Products  []model.Product
	Lines     []model.LineItem
	Total     decimal.Decimal
	Details   model.CheckoutDetails
	Order     *model.Order
}

// Router dispatches a navigation token to its render function.
type Router struct {
	catalog *catalog.Catalog
	pages   map[string]*template.Template
	metrics *metrics.Metrics
	now     func() time.Time
	logger  zerolog.Logger
}

// NewRouter parses the page templates and creates a router over c.
func NewRouter(c *catalog.Catalog, m *metrics.Metrics, logger zerolog.Logger) (*Router, error) {
	funcs := template.FuncMap{
		"money": func(d decimal.Decimal) string {
			return "$" + d.StringFixed(2)
		},
	}

	pages := make(map[string]*template.Template)
	for _, name := range []string{string(Home), string(Products), string(Cart), string(Checkout), confirmation} {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/grid.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s templates: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Router{
		catalog: c,
		pages:   pages,
		metrics: m,
		now:     time.Now,
		logger:  logger.With().Str("component", "view-router").Logger(),
	}, nil
}

// Render writes the full page for token. Unknown tokens never reach here;
// ParseToken has already folded them into Home.
func (r *Router) Render(w io.Writer, token Token, st State) error {
	switch token {
	case Products:
		return r.renderProducts(w, st)
	case Cart:
		return r.renderCart(w, st)
	case Checkout:
		return r.renderCheckout(w, st)
	default:
		return r.renderHome(w, st)
	}
}

// RenderConfirmation writes the order confirmation page.
func (r *Router) RenderConfirmation(w io.Writer, order *model.Order, st State) error {
	p := r.base("Order Placed", Checkout, st)
	p.Order = order
	return r.execute(w, confirmation, p)
}

// RenderProductGrid writes only the product grid for query. Live search
// swaps it into an already rendered products page.
func (r *Router) RenderProductGrid(w io.Writer, query string) (int, error) {
	products := r.catalog.Search(query)
	p := page{View: Products, Query: query, Products: products}

	if err := r.pages[string(Products)].ExecuteTemplate(w, "grid", p); err != nil {
		return 0, fmt.Errorf("failed to render product grid: %w", err)
	}
	return len(products), nil
}

func (r *Router) renderHome(w io.Writer, st State) error {
	p := r.base("Home", Home, st)
	p.Products = r.catalog.All()
	return r.execute(w, string(Home), p)
}

func (r *Router) renderProducts(w io.Writer, st State) error {
	p := r.base("Products", Products, st)
	p.Products = r.catalog.Search(st.Query)
	return r.execute(w, string(Products), p)
}

func (r *Router) renderCart(w io.Writer, st State) error {
	p := r.base("Cart", Cart, st)
	p.Lines = r.catalog.LineItems(st.Cart)
	p.Total = catalog.Total(p.Lines)
	return r.execute(w, string(Cart), p)
}

func (r *Router) renderCheckout(w io.Writer, st State) error {
	p := r.base("Checkout", Checkout, st)
	p.Lines = r.catalog.LineItems(st.Cart)
	p.Total = catalog.Total(p.Lines)
	p.Details = st.Details
	return r.execute(w, string(Checkout), p)
}

func (r *Router) base(title string, token Token, st State) page {
	return page{
		Title:     title,
		View:      token,
		Query:     st.Query,
		CartCount: catalog.Quantity(r.catalog.LineItems(st.Cart)),
		Year:      r.now().Year(),
		Notice:    st.Notice,
	}
}

func (r *Router) execute(w io.Writer, name string, p page) error {
	if err := r.pages[name].ExecuteTemplate(w, "layout", p); err != nil {
		r.logger.Error().Err(err).Str("view", name).Msg("failed to render view")
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	r.metrics.ViewRendered(name)
	return nil
}
