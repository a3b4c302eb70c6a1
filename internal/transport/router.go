// Package transport exposes the ordering backend as a JSON API.
package transport

import (
	"net/http"

	"cafebar-be/internal/auth"
	"cafebar-be/internal/cart"
	"cafebar-be/internal/catalog"
	"cafebar-be/internal/issue"
	"cafebar-be/internal/logger"
	"cafebar-be/internal/metrics"
	"cafebar-be/internal/middleware"
	"cafebar-be/internal/order"
	"cafebar-be/internal/user"
)

// OrderReader is the read side of the order store.
type OrderReader interface {
	FindOrder(orderID string) (order.Order, bool)
	RecentOrders() []order.Order
	FavoriteOrders() []order.FavoriteOrder
}

// Deps are the services the router dispatches to. Metrics and Limiter are
// optional.
type Deps struct {
	Orders     order.Service
	OrderStore OrderReader
	Catalog    *catalog.Catalog
	Cart       cart.Service
	Users      user.Service
	Issues     issue.Service
	Sessions   *auth.Sessions
	Metrics    *metrics.Metrics
	Limiter    *middleware.RateLimiter
	CORSOrigin string
}

type handler struct {
	Deps
}

// NewRouter builds the mux and wraps it in
// RequestID -> CORS -> Auth -> Logging -> RateLimit -> Metrics.
func NewRouter(d Deps) http.Handler {
	h := &handler{Deps: d}

	mux := http.NewServeMux()
	h.routes(mux)

	var next http.Handler = mux
	if d.Metrics != nil {
		next = d.Metrics.Middleware(next)
	}
	if d.Limiter != nil {
		next = d.Limiter.Middleware(next)
	}
	next = logger.LoggingMiddleware(next)
	next = middleware.Auth(d.Sessions)(next)
	if d.CORSOrigin != "" {
		next = middleware.CORS(d.CORSOrigin)(next)
	}
	return logger.RequestIDMiddleware(next)
}

func (h *handler) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.health)
	if h.Metrics != nil {
		mux.Handle("GET /metrics", h.Metrics.Handler())
	}

	mux.HandleFunc("POST /api/session", h.createSession)

	mux.HandleFunc("GET /api/statuses", h.listStatuses)
	mux.HandleFunc("GET /api/orders", h.listOrders)
	mux.HandleFunc("GET /api/orders/recent", h.recentOrders)
	mux.HandleFunc("POST /api/orders", h.placeOrder)
	mux.HandleFunc("GET /api/orders/{id}", h.getOrder)
	mux.HandleFunc("DELETE /api/orders/{id}", h.deleteOrder)
	mux.HandleFunc("PATCH /api/orders/{id}/status", h.updateStatus)
	mux.HandleFunc("GET /api/orders/{id}/repeat", h.prefillRepeat)
	mux.HandleFunc("POST /api/orders/{id}/repeat", h.repeatOrder)
	mux.HandleFunc("POST /api/orders/{id}/favorite", h.saveFavorite)
	mux.HandleFunc("POST /api/orders/{id}/rating", h.rateOrder)

	mux.HandleFunc("GET /api/favorites", h.listFavorites)
	mux.HandleFunc("POST /api/favorites/{id}/order", h.repeatFavorite)
	mux.HandleFunc("DELETE /api/favorites/{id}", h.removeFavorite)

	mux.HandleFunc("GET /api/catalog/products", h.listProducts)
	mux.HandleFunc("GET /api/catalog/products/{id}", h.getProduct)
	mux.HandleFunc("GET /api/catalog/brands", h.listBrands)
	mux.HandleFunc("GET /api/catalog/brands/{id}", h.getBrand)

	session := middleware.RequireSession
	mux.Handle("GET /api/cart", session(http.HandlerFunc(h.getCart)))
	mux.Handle("DELETE /api/cart", session(http.HandlerFunc(h.clearCart)))
	mux.Handle("POST /api/cart/items", session(http.HandlerFunc(h.addToCart)))
	mux.Handle("PATCH /api/cart/items/{productId}", session(http.HandlerFunc(h.updateCartItem)))
	mux.Handle("DELETE /api/cart/items/{productId}", session(http.HandlerFunc(h.removeCartItem)))
	mux.Handle("POST /api/cart/checkout", session(http.HandlerFunc(h.checkout)))

	mux.HandleFunc("GET /api/profile", h.getProfile)
	mux.HandleFunc("PUT /api/profile", h.updateProfile)

	mux.HandleFunc("GET /api/issues/types", h.issueTypes)
	mux.HandleFunc("GET /api/issues", h.listIssues)
	mux.HandleFunc("POST /api/issues", h.submitIssue)
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
