// Package features provides shared test utilities for workbench feature tests.
package features

import (
	"context"
	"net/http"
	"testing"

	"github.com/ai-bank/kgadmin/internal/graph"
	"github.com/ai-bank/kgadmin/internal/kgclient"
	"github.com/ai-bank/kgadmin/internal/session"
	"github.com/ai-bank/kgadmin/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"
)

// TestFixture holds all dependencies needed for workbench handler tests.
type TestFixture struct {
	Backend      *testutil.Backend
	Client       *kgclient.Client
	Session      *session.Session
	SessionStore *sessions.CookieStore
}

// SetupTestFixture creates a session backed by a fake backend that serves g
// for every graph read. The resident graph starts empty.
func SetupTestFixture(t *testing.T, g graph.Graph) *TestFixture {
	t.Helper()

	logger := testutil.NewTestLogger(t)
	backend := testutil.NewBackend(t, g)

	client, err := kgclient.New(kgclient.Options{BaseURL: backend.URL, Logger: logger})
	require.NoError(t, err)

	return &TestFixture{
		Backend:      backend,
		Client:       client,
		Session:      session.New(session.Options{Fetcher: client, Logger: logger}),
		SessionStore: NewTestSessionStore(),
	}
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}
