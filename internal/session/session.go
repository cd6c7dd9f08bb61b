// Package session owns the resident knowledge graph of one user session.
//
// A Session fetches fragments through a Fetcher, merges read results into the
// resident graph, refreshes it wholesale after every successful write, and
// reports each outcome as a notification. Failures never modify the resident
// graph; every operation returns a fallback value (false, an empty slice, or
// an empty graph) instead of an error.
//
// Operations are not serialized. Overlapping operations race and the last
// one to swap in its result wins; the mutex only keeps readers consistent.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/ai-bank/kgadmin/internal/graph"
	"github.com/ai-bank/kgadmin/internal/kgclient"
	"github.com/ai-bank/kgadmin/internal/notifier"
)

// Fetcher is the backend used by a Session. *kgclient.Client satisfies it.
type Fetcher interface {
	GraphData(ctx context.Context, q *kgclient.PageQuery) (kgclient.Result[graph.Graph], error)
	NodeRelations(ctx context.Context, nodeID string) (kgclient.Result[graph.Graph], error)
	SearchNodes(ctx context.Context, p kgclient.SearchParams) (kgclient.Result[graph.Graph], error)
	FindPath(ctx context.Context, p kgclient.PathParams) (kgclient.Result[graph.Graph], error)

	CreateNode(ctx context.Context, in kgclient.NodeInput) (kgclient.Result[json.RawMessage], error)
	UpdateNode(ctx context.Context, nodeID string, in kgclient.NodeInput) (kgclient.Result[json.RawMessage], error)
	DeleteNode(ctx context.Context, nodeID string) (kgclient.Result[json.RawMessage], error)
	CreateRelation(ctx context.Context, in kgclient.RelationInput) (kgclient.Result[json.RawMessage], error)
	UpdateRelation(ctx context.Context, relationID string, in kgclient.RelationInput) (kgclient.Result[json.RawMessage], error)
	DeleteRelation(ctx context.Context, relationID string) (kgclient.Result[json.RawMessage], error)
}

// Outcome classifies a finished operation.
type Outcome string

// Operation outcomes.
const (
	OutcomeSuccess Outcome = "success"
	OutcomeEmpty   Outcome = "empty"
	OutcomeFailure Outcome = "failure"
)

// Observer receives operation timings and resident graph sizes.
type Observer interface {
	ObserveOperation(op string, outcome Outcome, d time.Duration)
	ObserveGraph(stats graph.Stats)
}

type nopObserver struct{}

func (nopObserver) ObserveOperation(string, Outcome, time.Duration) {}
func (nopObserver) ObserveGraph(graph.Stats)                        {}

// Observers fans callbacks out to every non-nil observer in order.
func Observers(observers ...Observer) Observer {
	var list multiObserver
	for _, o := range observers {
		if o != nil {
			list = append(list, o)
		}
	}
	switch len(list) {
	case 0:
		return nopObserver{}
	case 1:
		return list[0]
	}
	return list
}

type multiObserver []Observer

func (m multiObserver) ObserveOperation(op string, outcome Outcome, d time.Duration) {
	for _, o := range m {
		o.ObserveOperation(op, outcome, d)
	}
}

func (m multiObserver) ObserveGraph(stats graph.Stats) {
	for _, o := range m {
		o.ObserveGraph(stats)
	}
}

// Options configures a Session.
type Options struct {
	Fetcher  Fetcher
	Notifier *notifier.Notifier
	Logger   *slog.Logger
	Observer Observer
	// Page limits full graph fetches. Nil fetches everything.
	Page *kgclient.PageQuery
}

// Session holds the resident graph and the loading flag.
type Session struct {
	fetcher  Fetcher
	notifier *notifier.Notifier
	logger   *slog.Logger
	observer Observer
	page     *kgclient.PageQuery

	mu      sync.RWMutex
	graph   graph.Graph
	loading bool
}

// New creates a Session with an empty resident graph.
func New(opts Options) *Session {
	s := &Session{
		fetcher:  opts.Fetcher,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		observer: opts.Observer,
		page:     opts.Page,
		graph:    graph.Empty(),
	}
	if s.notifier == nil {
		s.notifier = notifier.New()
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	return s
}

// Notifier returns the notifier events are broadcast on.
func (s *Session) Notifier() *notifier.Notifier {
	return s.notifier
}

// Graph returns a snapshot of the resident graph.
func (s *Session) Graph() graph.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.Clone()
}

// Loading reports whether an operation is in flight.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// NodeTypes returns the node type vocabulary of the resident graph.
func (s *Session) NodeTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return graph.NodeTypes(s.graph.Nodes)
}

// RelationTypes returns the relation label vocabulary of the resident graph.
func (s *Session) RelationTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return graph.RelationTypes(s.graph.Edges)
}

// Filtered returns the resident graph restricted to the given types.
func (s *Session) Filtered(nodeTypes, relationTypes []string) graph.Graph {
	return graph.Filter(s.Graph(), nodeTypes, relationTypes)
}

// FindLocal searches the resident graph without contacting the backend.
func (s *Session) FindLocal(keyword string, opts graph.SearchOptions) []graph.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return graph.SearchNodes(s.graph.Nodes, keyword, opts)
}

// Node looks up a resident node by identity.
func (s *Session) Node(id string) (graph.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return graph.NodeByID(s.graph.Nodes, id)
}

// begin sets the loading flag and returns the function that clears it and
// records the outcome.
func (s *Session) begin(op string) func(Outcome) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	start := time.Now()
	return func(outcome Outcome) {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()

		d := time.Since(start)
		s.observer.ObserveOperation(op, outcome, d)
		s.logger.Debug("operation finished", "op", op, "outcome", outcome, "duration", d)
	}
}

// replace swaps in a new resident graph.
func (s *Session) replace(g graph.Graph) {
	g = g.Normalize()
	s.mu.Lock()
	s.graph = g
	s.mu.Unlock()

	s.observer.ObserveGraph(g.Stats())
	s.notifier.GraphChanged()
}

// merge folds a fragment into the current snapshot and swaps the result in.
// It returns how many nodes and edges were added.
func (s *Session) merge(fragment graph.Graph) graph.Stats {
	s.mu.RLock()
	base := s.graph
	s.mu.RUnlock()

	merged := graph.Merge(base, fragment)
	s.replace(merged)
	return graph.Stats{
		Nodes: len(merged.Nodes) - len(base.Nodes),
		Edges: len(merged.Edges) - len(base.Edges),
	}
}

func (s *Session) notify(ctx context.Context, level notifier.Level, op, msg string) {
	s.notifier.Notify(ctx, level, op, msg)
}

func (s *Session) fail(ctx context.Context, op, msg string, err error) {
	s.logger.Warn(msg, "op", op, "error", err)
	s.notifier.Notify(ctx, notifier.LevelError, op, msg+": "+err.Error())
}
