// Package ui provides the local workbench server: a JSON and SSE API over
// one resident graph session.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ai-bank/kgadmin/internal/metrics"
	"github.com/ai-bank/kgadmin/internal/session"
	"github.com/ai-bank/kgadmin/internal/ui/router"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"
)

// Server is the workbench server.
type Server struct {
	session      *session.Session
	metrics      *metrics.Collector
	sessionStore *sessions.CookieStore
	port         int
	demo         bool
	watchFile    string
	logger       *slog.Logger
}

// Config holds configuration for the workbench server.
type Config struct {
	Session       *session.Session
	Metrics       *metrics.Collector
	Port          int
	SessionSecret string
	// Demo starts from the sample graph instead of the backend's graph.
	Demo bool
	// WatchFile is a graph file imported after priming and on every change.
	WatchFile string
	Logger    *slog.Logger
}

// NewServer creates a new workbench server instance.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Server{
		session:      cfg.Session,
		metrics:      cfg.Metrics,
		sessionStore: sessionStore,
		port:         cfg.Port,
		demo:         cfg.Demo,
		watchFile:    cfg.WatchFile,
		logger:       logger,
	}
}

// Handler builds the routed HTTP handler.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	var metricsHandler http.Handler
	if s.metrics != nil {
		metricsHandler = s.metrics.Handler()
	}
	if err := router.SetupRoutes(r, s.session, s.sessionStore, metricsHandler); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Prime fills the resident graph before the first request: the sample graph
// in demo mode, the backend's full graph otherwise. A failed load leaves the
// graph empty and is reported as a notification.
func (s *Server) Prime(ctx context.Context) {
	if s.demo {
		s.session.LoadSample()
		return
	}
	s.session.FetchGraphData(ctx)
}

// Serve starts the workbench server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting workbench server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// The watch file is imported after priming so a backend load cannot
	// replace it.
	eg.Go(func() error {
		s.Prime(egctx)
		return s.Watch(egctx)
	})

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down workbench server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
