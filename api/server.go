/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/shifts/*        Shift scheduling
  /api/owners/*        Per-owner reads and goal configuration
  /api/payments/*      Payment and installment-plan recording
  /api/installments/*  Installment receipt

SECURITY NOTE:
  No authentication middleware. Deployments front this with their own
  auth proxy.

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

// NewRouter creates a router with all routes configured. allowedOrigins
// feeds the CORS middleware.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Shift routes
		r.Route("/shifts", func(r chi.Router) {
			r.Post("/", h.CreateShift)
			r.Get("/{id}", h.GetShift)
			r.Put("/{id}", h.UpdateShift)
			r.Delete("/{id}", h.DeleteShift)
			r.Put("/{id}/payment", h.UpdateShiftPayment)
		})

		// Owner routes
		r.Route("/owners/{id}", func(r chi.Router) {
			r.Get("/shifts", h.ListShifts)
			r.Get("/agenda", h.GetAgenda)
			r.Get("/goal", h.GetGoal)
			r.Put("/goal", h.SaveGoal)
		})

		// Billing routes
		r.Route("/payments", func(r chi.Router) {
			r.Post("/", h.CreatePayment)
			r.Get("/", h.ListPayments)
			r.Get("/{id}/installments", h.ListInstallments)
		})
		r.Post("/installments/{id}/receive", h.ReceiveInstallment)
	})

	return r
}
