package view

import "strings"

// Token names the view that is currently active.
type Token string

// Views the router can render.
const (
	Home     Token = "home"
	Products Token = "products"
	Cart     Token = "cart"
	Checkout Token = "checkout"
)

// ParseToken maps a navigation token to a view. "search" is an alias of
// products; anything unrecognised, including the empty token, is home.
func ParseToken(raw string) Token {
	switch strings.Trim(strings.TrimSpace(raw), "/#") {
	case "home":
		return Home
	case "products", "search":
		return Products
	case "cart":
		return Cart
	case "checkout":
		return Checkout
	default:
		return Home
	}
}

// Path returns the URL path that navigates to t.
func (t Token) Path() string {
	return "/" + string(t)
}
