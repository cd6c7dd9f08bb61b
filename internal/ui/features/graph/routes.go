package graph

import (
	"github.com/ai-bank/kgadmin/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
)

// SetupRoutes registers the graph feature routes.
func SetupRoutes(router chi.Router, sess *session.Session, sessionStore sessions.Store) error {
	handlers := NewHandlers(sess, sessionStore)

	router.Route("/api/graph", func(r chi.Router) {
		r.Get("/", handlers.Graph)
		r.Get("/types", handlers.Types)
		r.Get("/nodes/{id}", handlers.Node)
		r.Post("/refresh", handlers.Refresh)
		r.Post("/nodes/{id}/expand", handlers.Expand)
		r.Get("/search", handlers.Search)
		r.Get("/find", handlers.Find)
		r.Get("/path", handlers.Path)
		r.Post("/filter", handlers.SetFilter)
		r.Delete("/filter", handlers.ClearFilter)
	})

	return nil
}
