/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

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
  4. CORS:       Cross-origin requests for the dashboard frontend

ROUTE GROUPS:
  /api/units/*      Per-unit ledger, slices, summaries, reports
  /api/ledger/*     Ledger entry CRUD
  /api/bookings/*   Booking CRUD and slices
  /metrics          Prometheus scrape endpoint
  /healthz          Liveness probe

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

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

	"github.com/owners2/property-engine/observability"
)

// RouterOptions carries the deployment-specific router knobs.
type RouterOptions struct {
	CORSOrigins []string
	Metrics     *observability.Metrics
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Per-unit read side
		r.Route("/units/{unitId}", func(r chi.Router) {
			r.Get("/ledger", h.ListUnitLedger)
			r.Get("/closing-balance", h.GetClosingBalance)
			r.Get("/bookings", h.ListUnitBookings)
			r.Route("/months/{month}", func(r chi.Router) {
				r.Get("/slices", h.ListUnitMonthSlices)
				r.Get("/summary", h.GetMonthSummary)
				r.Post("/report", h.GenerateReport)
			})
		})

		// Ledger entry routes
		r.Route("/ledger", func(r chi.Router) {
			r.Post("/", h.CreateLedgerEntry)
			r.Get("/{id}", h.GetLedgerEntry)
			r.Put("/{id}", h.UpdateLedgerEntry)
			r.Delete("/{id}", h.DeleteLedgerEntry)
		})

		// Booking routes
		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", h.CreateBooking)
			r.Get("/{id}", h.GetBooking)
			r.Put("/{id}", h.UpdateBooking)
			r.Delete("/{id}", h.DeleteBooking)
			r.Get("/{id}/slices", h.ListBookingSlices)
		})
	})

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
