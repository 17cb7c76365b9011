/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the dashboard frontend

ROUTE GROUPS:
  /api/jobs/*             Composite job operations
  /api/estimates/*        Composite estimate operations
  /api/parts/*            Part maintenance
  /api/technicians/*      Technician management
  /api/reviews/*          Review records and the unlink cascade
  /api/payment-methods/*  Lookup
  /api/review-types/*     Lookup
  /api/summary/*          Financial summaries

SECURITY NOTE:
  No authentication middleware. Auth/session handling belongs to the
  excluded UI collaborator.

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
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", h.ListJobs)
			r.Post("/", h.CreateJob)
			r.Get("/unreviewed", h.UnreviewedJobs)
			r.Get("/{id}", h.GetJob)
			r.Put("/{id}", h.EditJob)
			r.Delete("/{id}", h.DeleteJob)
			r.Get("/{id}/parts", h.ListParts)
		})

		r.Route("/estimates", func(r chi.Router) {
			r.Get("/", h.ListEstimates)
			r.Post("/", h.CreateEstimate)
			r.Put("/{id}", h.EditEstimate)
			r.Delete("/{id}", h.DeleteEstimate)
		})

		r.Route("/parts", func(r chi.Router) {
			r.Post("/", h.AddPart)
			r.Put("/{id}", h.EditPart)
			r.Delete("/{id}", h.DeletePart)
		})

		r.Route("/technicians", func(r chi.Router) {
			r.Get("/", h.ListTechnicians)
			r.Post("/", h.CreateTechnician)
			r.Put("/{id}", h.EditTechnician)
			r.Delete("/{id}", h.DeleteTechnician)
			r.Get("/{id}/summary", h.TechnicianSummary)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", h.ListReviews)
			r.Post("/", h.CreateReview)
			r.Put("/{id}/link", h.LinkReview)
			r.Delete("/{id}", h.DeleteReview)
		})

		r.Route("/payment-methods", func(r chi.Router) {
			r.Get("/", h.ListPaymentMethods)
			r.Post("/", h.CreatePaymentMethod)
			r.Put("/{id}", h.RenamePaymentMethod)
			r.Delete("/{id}", h.DeletePaymentMethod)
		})

		r.Route("/review-types", func(r chi.Router) {
			r.Get("/", h.ListReviewTypes)
			r.Post("/", h.CreateReviewType)
			r.Put("/{id}", h.RenameReviewType)
			r.Delete("/{id}", h.DeleteReviewType)
		})

		r.Get("/summary/monthly", h.MonthlySummary)
	})

	return r
}
