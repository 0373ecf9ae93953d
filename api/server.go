/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:      Request logging
  2. Recoverer:   Panic recovery (500 instead of crash)
  3. RequestID:   Unique ID per request for tracing
  4. CORS:        Cross-origin requests for the web frontend
  5. RequireAuth: Bearer-token session check (under /api only)

ROUTE GROUPS:
  /auth/*           Registration and sessions (public)
  /api/worklogs/*   Worklog CRUD and derived views (authenticated)

SEE ALSO:
  - handlers.go: Handler implementations
  - auth.go:     Session endpoints and middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
// allowedOrigins feeds the CORS policy for the browser frontend.
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

	// Auth routes (public)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(h.RequireAuth).Post("/logout", h.Logout)
	})

	// Worklog routes (authenticated)
	r.Route("/api", func(r chi.Router) {
		r.Use(h.RequireAuth)

		r.Route("/worklogs", func(r chi.Router) {
			r.Get("/", h.ListWorklogs)
			r.Post("/", h.CreateWorklog)
			r.Get("/summary", h.GetSummary)
			r.Get("/heatmap", h.GetHeatmap)
			r.Get("/export", h.ExportWorklogs)
			r.Put("/{id}", h.UpdateWorklog)
			r.Delete("/{id}", h.DeleteWorklog)
		})
	})

	return r
}
