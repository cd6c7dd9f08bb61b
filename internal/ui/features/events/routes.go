package events

import (
	"github.com/ai-bank/kgadmin/internal/session"
	"github.com/go-chi/chi/v5"
)

// SetupRoutes registers the SSE route.
func SetupRoutes(router chi.Router, sess *session.Session) error {
	router.Get("/api/events", NewHandlers(sess).Events)
	return nil
}
