// Package catalog holds the fixed, compiled-in product catalogue.
package catalog

import (
	"strings"

	"shopping-mart/internal/model"

	"github.com/shopspring/decimal"
)

// Catalog is an immutable list of products known at startup.
type Catalog struct {
	products []model.Product
	byID     map[string]int
}

// New creates a catalogue from the given products. Later duplicates of an ID are ignored.
func New(products []model.Product) *Catalog {
	c := &Catalog{
		products: make([]model.Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	for _, p := range products {
		if _, exists := c.byID[p.ID]; exists {
			continue
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c
}

// Default returns the storefront's built-in catalogue.
func Default() *Catalog {
	return New(defaultProducts)
}

var defaultProducts = []model.Product{
	product("p1", "Fresh Apples (1kg)", "3.50", "Crisp and juicy apples."),
	product("p2", "Bananas (1 bunch)", "2.00", "Sweet yellow bananas."),
	product("p3", "Whole Wheat Bread", "1.80", "Freshly baked bread."),
	product("p4", "Milk 1L", "1.20", "Pasteurized milk."),
	product("p5", "Eggs (6pcs)", "2.30", "Farm fresh eggs."),
	product("p6", "Orange Juice 500ml", "2.75", "Natural orange juice."),
	product("p7", "Tomatoes (1kg)", "2.10", "Red and ripe tomatoes."),
	product("p8", "Cheddar Cheese (200g)", "4.25", "Aged cheddar."),
}

func product(id, name, price, desc string) model.Product {
	return model.Product{
		ID:          id,
		Name:        name,
		Price:       decimal.RequireFromString(price),
		Description: desc,
	}
}

// All returns every product in catalogue order.
func (c *Catalog) All() []model.Product {
	out := make([]model.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Get looks up a product by ID.
func (c *Catalog) Get(id string) (model.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Product{}, false
	}
	return c.products[i], true
}

// Contains reports whether id is a valid product identifier.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Search filters the catalogue by a case-insensitive substring match against
// name or description. A blank query matches every product.
func (c *Catalog) Search(query string) []model.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.All()
	}

	out := []model.Product{}
	for _, p := range c.products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}
	return out
}

// LineItems resolves a cart into line items in catalogue order.
// Cart entries that do not name a catalogue product are skipped.
func (c *Catalog) LineItems(cart model.Cart) []model.LineItem {
	lines := make([]model.LineItem, 0, len(cart))
	for _, p := range c.products {
		if qty, ok := cart[p.ID]; ok && qty > 0 {
			lines = append(lines, model.LineItem{Product: p, Quantity: qty})
		}
	}
	return lines
}

// Quantity sums the quantities of the given lines. It is what the cart
// badge shows, so entries the catalogue cannot resolve never count.
func Quantity(lines []model.LineItem) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// Total sums the subtotals of the given lines.
func Total(lines []model.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
