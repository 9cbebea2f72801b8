/*
server.go - HTTP router and middleware configuration

ROUTER: chi. Middleware: request logging, panic recovery, request IDs,
CORS for local front-end development. No authentication: the system runs
single-operator behind the operator's own machine or network.
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires all routes.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/roster", func(r chi.Router) {
			r.Get("/", h.ListRoster)
			r.Get("/summary", h.RosterSummary)
		})

		r.Route("/assignments", func(r chi.Router) {
			r.Get("/", h.ListAssignments)
			r.Delete("/", h.ResetAssignments)
			r.Post("/run", h.RunAssignment)
			r.Post("/manual", h.ManualAssignment)
		})

		r.Route("/executions", func(r chi.Router) {
			r.Get("/", h.ListExecutions)
			r.Post("/", h.UploadExecutions)
			r.Get("/template", h.ExecutionTemplate)
		})

		r.Route("/reconciliation", func(r chi.Router) {
			r.Get("/mismatches", h.Mismatches)
		})
	})

	return r
}
