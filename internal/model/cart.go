package model

// Cart maps a product ID to the requested quantity.
// A product that is not in the cart has no key; stored quantities are always at least 1.
type Cart map[string]int

// Clone returns an independent copy of the cart.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for id, qty := range c {
		out[id] = qty
	}
	return out
}
