/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the admin frontend

ROUTE GROUPS:
  /api/submissions/*    Flight report lifecycle (create, finalize,
                        approve, cancel)
  /api/aircraft/*       Aircraft counters, components, flight history
  /api/deposits/*       Deposit review
  /api/fuel/*           Fuel purchase review
  /api/pilots/*         Account balance and statement

SECURITY NOTE:
  No authentication middleware. The server is expected to sit behind
  the club's reverse proxy which handles auth.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Flight report lifecycle
		r.Route("/submissions", func(r chi.Router) {
			r.Post("/", h.CreateSubmission)
			r.Get("/pending", h.PendingSubmissions)
			r.Get("/{id}", h.GetSubmission)
			r.Post("/{id}/finalize", h.FinalizeSubmission)
			r.Post("/{id}/approve", h.ApproveSubmission)
			r.Post("/{id}/cancel", h.CancelSubmission)
		})

		// Aircraft
		r.Route("/aircraft", func(r chi.Router) {
			r.Get("/", h.ListAircraft)
			r.Get("/{matricula}", h.GetAircraft)
			r.Get("/{matricula}/flights", h.AircraftFlights)
			r.Put("/{matricula}/counters", h.UpdateCounters)
		})

		// Finance review
		r.Route("/deposits", func(r chi.Router) {
			r.Post("/", h.CreateDeposit)
			r.Post("/{id}/approve", h.ApproveDeposit)
			r.Post("/{id}/reject", h.RejectDeposit)
		})
		r.Route("/fuel", func(r chi.Router) {
			r.Post("/", h.CreateFuelLog)
			r.Post("/{id}/approve", h.ApproveFuelLog)
			r.Post("/{id}/reject", h.RejectFuelLog)
		})

		// Pilot account
		r.Route("/pilots", func(r chi.Router) {
			r.Get("/{id}/balance", h.PilotBalance)
			r.Get("/{id}/statement", h.PilotStatement)
		})
	})

	return r
}
