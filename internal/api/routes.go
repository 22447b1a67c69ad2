package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures the router with the standard middleware stack.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check and unsubscribe are top-level; the unsubscribe link
	// ships inside emails and must stay short and stable.
	r.Get("/health", h.HandleHealth)
	r.Get("/unsubscribe", h.HandleUnsubscribe)

	r.Route("/api", func(r chi.Router) {
		r.Post("/subscribe", h.HandleSubscribe)
		r.Get("/stats", h.HandleStats)
		r.Get("/history/{subscriberID}", h.HandleHistory)
	})

	return r
}
