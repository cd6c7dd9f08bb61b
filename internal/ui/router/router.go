// Package router sets up HTTP routes for the workbench server.
package router

import (
	"net/http"

	"github.com/ai-bank/kgadmin/internal/session"
	eventsFeature "github.com/ai-bank/kgadmin/internal/ui/features/events"
	graphFeature "github.com/ai-bank/kgadmin/internal/ui/features/graph"
	mutationsFeature "github.com/ai-bank/kgadmin/internal/ui/features/mutations"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
)

// SetupRoutes configures all routes for the workbench server. A nil metrics
// handler leaves /metrics unregistered.
func SetupRoutes(
	router chi.Router,
	sess *session.Session,
	sessionStore sessions.Store,
	metrics http.Handler,
) error {
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if metrics != nil {
		router.Handle("/metrics", metrics)
	}

	if err := graphFeature.SetupRoutes(router, sess, sessionStore); err != nil {
		return err
	}

	if err := mutationsFeature.SetupRoutes(router, sess); err != nil {
		return err
	}

	if err := eventsFeature.SetupRoutes(router, sess); err != nil {
		return err
	}

	return nil
}
