package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ai-bank/kgadmin/internal/graph"
)

// Request is one call received by a Backend.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

// Backend is an httptest knowledge-graph server answering every request
// with a fixed envelope. Handlers can be overridden per path.
type Backend struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Request
	routes   map[string]any
}

// NewBackend starts a fake backend that serves g for every graph read and
// acknowledges every write.
func NewBackend(t *testing.T, g graph.Graph) *Backend {
	t.Helper()

	b := &Backend{routes: map[string]any{}}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rec := Request{Method: req.Method, Path: req.URL.Path, Query: req.URL.RawQuery}
		if raw, err := io.ReadAll(req.Body); err == nil && len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.Body)
		}

		b.mu.Lock()
		b.requests = append(b.requests, rec)
		body, ok := b.routes[req.Method+" "+req.URL.Path]
		b.mu.Unlock()

		if !ok {
			body = map[string]any{"code": 200, "msg": "ok", "data": g.Normalize()}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(b.Close)
	return b
}

// Handle replaces the response for "METHOD /path".
func (b *Backend) Handle(route string, body any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[route] = body
}

// Requests returns a copy of every request seen so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// Routes returns "METHOD /path" for every request seen so far.
func (b *Backend) Routes() []string {
	reqs := b.Requests()
	out := make([]string, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.Method+" "+r.Path)
	}
	return out
}
