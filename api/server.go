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
  4. CORS:       Cross-origin requests, for a node running on a different
                 host/port than the one it syncs with

ROUTE GROUPS:
  POST   /nodes          Register a node
  GET    /sync/guide     Last-event timestamp
  GET    /sync/report    Full host state for overwrite-from-host
  PATCH  /sync           Apply a node's batch
  GET    /metrics        Prometheus scrape endpoint (container.Metrics)

SECURITY NOTE:
  Authentication is the X-Node-Id header (see handlers.go's authenticate);
  there is no separate auth middleware layer, since every route but
  registration needs the same single check.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/host/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new router with all routes configured. registry may be
// nil, in which case /metrics is not mounted (tests that don't care about
// metrics construct a router this way).
func NewRouter(h *Handler, registry *prometheus.Registry) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Node-Id"},
		AllowCredentials: false,
	}))

	r.Post("/nodes", h.RegisterNode)
	r.Get("/sync/guide", h.Guide)
	r.Get("/sync/report", h.Report)
	r.Patch("/sync", h.ApplyChanges)

	if registry != nil {
		r.Get("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).ServeHTTP)
	}

	return r
}
