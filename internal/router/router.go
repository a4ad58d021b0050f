package router

import (
	"net/http"

	"shopping-mart/internal/handler"
	"shopping-mart/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
// metricsHandler serves /metrics; pass nil to disable the endpoint.
func New(
	storefrontHandler *handler.StorefrontHandler,
	apiHandler *handler.APIHandler,
	metricsHandler http.Handler,
	session middleware.SessionOptions,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	if metricsHandler != nil {
		mux.Handle("/metrics", metricsHandler)
	}

	// JSON API (CORS applies only here)
	mux.Handle("/api/products", middleware.CORS(http.HandlerFunc(apiHandler.ListProducts)))
	mux.Handle("/api/products/", middleware.CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/products/" {
			apiHandler.ListProducts(w, r)
			return
		}
		apiHandler.GetProduct(w, r)
	})))
	mux.Handle("/api/cart", middleware.CORS(http.HandlerFunc(apiHandler.GetCart)))

	// Live search fragment
	mux.HandleFunc("/fragments/products", storefrontHandler.ProductGrid)

	// Cart actions
	mux.HandleFunc("/cart/add", storefrontHandler.AddToCart)
	mux.HandleFunc("/cart/quantity", storefrontHandler.SetQuantity)
	mux.HandleFunc("/cart/remove", storefrontHandler.RemoveFromCart)
	mux.HandleFunc("/cart/clear", storefrontHandler.ClearCart)

	// The checkout view and its form share a path
	mux.HandleFunc("/checkout", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			storefrontHandler.ConfirmOrder(w, r)
			return
		}
		storefrontHandler.View(w, r)
	})

	// Every other path is a view token; unknown tokens render home
	mux.HandleFunc("/", storefrontHandler.View)

	// Apply middleware in order: Recovery -> Session -> Logging
	var h http.Handler = mux
	h = middleware.Logging(logger)(h)
	h = middleware.Session(session, logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
