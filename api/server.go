/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend
  5. actorFromHeader: X-User-ID header into the request context so
     audit entries carry the acting user

ROUTE GROUPS:
  /api/inventory/*   Stock queries, transfers, adjustments, audit log
  /api/admin/*       Catalog and location seeding (dev only)
  /api/reset         Database reset (dev only)

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.
  The X-User-ID header is trusted as-is for audit attribution.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/warp/inventory-engine/inventory"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
		AllowCredentials: true,
	}))
	r.Use(actorFromHeader)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Inventory routes
		r.Route("/inventory", func(r chi.Router) {
			r.Get("/by-sku", h.GetStockBySKU)
			r.Post("/transfer", h.Transfer)
			r.Post("/adjust", h.Adjust)
			r.Get("/changes", h.ListChanges)
		})

		// Admin routes (seeding, dev only)
		r.Route("/admin", func(r chi.Router) {
			r.Post("/products", h.SaveProduct)
			r.Post("/locations", h.SaveLocation)
			r.Post("/warehouses", h.SaveWarehouse)
		})

		r.Post("/reset", h.ResetDatabase)
	})

	return r
}

// actorFromHeader stamps the acting user onto the request context for
// audit attribution.
func actorFromHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := r.Header.Get("X-User-ID"); user != "" {
			r = r.WithContext(inventory.WithActor(r.Context(), inventory.UserID(user)))
		}
		next.ServeHTTP(w, r)
	})
}
