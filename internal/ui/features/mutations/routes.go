package mutations

import (
	"github.com/ai-bank/kgadmin/internal/session"
	"github.com/go-chi/chi/v5"
)

// SetupRoutes registers the write routes.
func SetupRoutes(router chi.Router, sess *session.Session) error {
	handlers := NewHandlers(sess)

	router.Route("/api/nodes", func(r chi.Router) {
		r.Post("/", handlers.CreateNode)
		r.Put("/{id}", handlers.UpdateNode)
		r.Delete("/{id}", handlers.DeleteNode)
	})
	router.Route("/api/relations", func(r chi.Router) {
		r.Post("/", handlers.CreateRelation)
		r.Put("/{id}", handlers.UpdateRelation)
		r.Delete("/{id}", handlers.DeleteRelation)
	})

	return nil
}
