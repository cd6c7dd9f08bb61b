package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ai-bank/kgadmin/internal/graph"
	"github.com/ai-bank/kgadmin/internal/kgclient"
	"github.com/ai-bank/kgadmin/internal/notifier"
)

// Operation names used in notifications and metrics.
const (
	OpLoad           = "load"
	OpRefresh        = "refresh"
	OpExpand         = "expand"
	OpSearch         = "search"
	OpPath           = "path"
	OpCreateNode     = "create_node"
	OpUpdateNode     = "update_node"
	OpDeleteNode     = "delete_node"
	OpCreateRelation = "create_relation"
	OpUpdateRelation = "update_relation"
	OpDeleteRelation = "delete_relation"
	OpImport         = "import"
	OpSample         = "sample"
	OpReset          = "reset"
)

// FetchGraphData replaces the resident graph with the full backend graph.
func (s *Session) FetchGraphData(ctx context.Context) bool {
	done := s.begin(OpLoad)
	if !s.load(ctx, OpLoad) {
		done(OutcomeFailure)
		return false
	}
	done(OutcomeSuccess)
	return true
}

// load fetches and swaps in the full graph without touching the loading flag.
func (s *Session) load(ctx context.Context, op string) bool {
	res, err := s.fetcher.GraphData(ctx, s.page)
	if err != nil {
		s.fail(ctx, op, "failed to load graph data", err)
		return false
	}
	s.replace(res.Data)
	st := res.Data.Stats()
	s.notify(ctx, notifier.LevelInfo, op, fmt.Sprintf("loaded %d nodes and %d relationships", st.Nodes, st.Edges))
	return true
}

// FetchNodeRelations merges the neighbourhood of nodeID into the resident graph.
func (s *Session) FetchNodeRelations(ctx context.Context, nodeID string) bool {
	done := s.begin(OpExpand)

	res, err := s.fetcher.NodeRelations(ctx, nodeID)
	if err != nil {
		s.fail(ctx, OpExpand, "failed to load node relations", err)
		done(OutcomeFailure)
		return false
	}

	added := s.merge(res.Data)
	s.notify(ctx, notifier.LevelInfo, OpExpand,
		fmt.Sprintf("expanded node %s: %d new nodes, %d new relationships", nodeID, added.Nodes, added.Edges))
	done(OutcomeSuccess)
	return true
}

// SearchNodes runs a backend search, merges the hits into the resident graph
// and returns the matching nodes. It returns an empty slice on failure.
func (s *Session) SearchNodes(ctx context.Context, p kgclient.SearchParams) []graph.Node {
	done := s.begin(OpSearch)

	res, err := s.fetcher.SearchNodes(ctx, p)
	if err != nil {
		s.fail(ctx, OpSearch, "node search failed", err)
		done(OutcomeFailure)
		return []graph.Node{}
	}

	s.merge(res.Data)
	found := res.Data.Normalize().Nodes
	if len(found) == 0 {
		s.notify(ctx, notifier.LevelWarning, OpSearch, "no matching nodes found")
		done(OutcomeEmpty)
		return found
	}
	s.notify(ctx, notifier.LevelSuccess, OpSearch, fmt.Sprintf("found %d matching nodes", len(found)))
	done(OutcomeSuccess)
	return found
}

// FindPath runs a backend path discovery, merges the result into the resident
// graph and returns the path fragment. It returns an empty graph on failure.
func (s *Session) FindPath(ctx context.Context, p kgclient.PathParams) graph.Graph {
	done := s.begin(OpPath)

	res, err := s.fetcher.FindPath(ctx, p)
	if err != nil {
		s.fail(ctx, OpPath, "path analysis failed", err)
		done(OutcomeFailure)
		return graph.Empty()
	}

	s.merge(res.Data)
	fragment := res.Data.Normalize()
	if len(fragment.Edges) == 0 {
		s.notify(ctx, notifier.LevelWarning, OpPath, "no connecting path found")
		done(OutcomeEmpty)
		return fragment
	}
	s.notify(ctx, notifier.LevelSuccess, OpPath, fmt.Sprintf("found %d connecting relationships", len(fragment.Edges)))
	done(OutcomeSuccess)
	return fragment
}

// CreateNode creates a node and refreshes the resident graph.
func (s *Session) CreateNode(ctx context.Context, in kgclient.NodeInput) bool {
	return s.write(ctx, OpCreateNode, "node created", "failed to create node",
		func(ctx context.Context) (kgclient.Result[json.RawMessage], error) {
			return s.fetcher.CreateNode(ctx, in)
		})
}

// UpdateNode updates a node and refreshes the resident graph.
func (s *Session) UpdateNode(ctx context.Context, nodeID string, in kgclient.NodeInput) bool {
	return s.write(ctx, OpUpdateNode, "node updated", "failed to update node",
		func(ctx context.Context) (kgclient.Result[json.RawMessage], error) {
			return s.fetcher.UpdateNode(ctx, nodeID, in)
		})
}

// DeleteNode deletes a node and refreshes the resident graph.
func (s *Session) DeleteNode(ctx context.Context, nodeID string) bool {
	return s.write(ctx, OpDeleteNode, "node deleted", "failed to delete node",
		func(ctx context.Context) (kgclient.Result[json.RawMessage], error) {
			return s.fetcher.DeleteNode(ctx, nodeID)
		})
}

// CreateRelation creates a relationship and refreshes the resident graph.
func (s *Session) CreateRelation(ctx context.Context, in kgclient.RelationInput) bool {
	return s.write(ctx, OpCreateRelation, "relationship created", "failed to create relationship",
		func(ctx context.Context) (kgclient.Result[json.RawMessage], error) {
			return s.fetcher.CreateRelation(ctx, in)
		})
}

// UpdateRelation updates a relationship and refreshes the resident graph.
func (s *Session) UpdateRelation(ctx context.Context, relationID string, in kgclient.RelationInput) bool {
	return s.write(ctx, OpUpdateRelation, "relationship updated", "failed to update relationship",
		func(ctx context.Context) (kgclient.Result[json.RawMessage], error) {
			return s.fetcher.UpdateRelation(ctx, relationID, in)
		})
}

// DeleteRelation deletes a relationship and refreshes the resident graph.
func (s *Session) DeleteRelation(ctx context.Context, relationID string) bool {
	return s.write(ctx, OpDeleteRelation, "relationship deleted", "failed to delete relationship",
		func(ctx context.Context) (kgclient.Result[json.RawMessage], error) {
			return s.fetcher.DeleteRelation(ctx, relationID)
		})
}

// write runs a mutation. The resident graph is never patched locally: a
// successful write triggers a full refetch. A failed refetch emits its own
// error but does not turn the write into a failure.
func (s *Session) write(ctx context.Context, op, success, failure string,
	call func(context.Context) (kgclient.Result[json.RawMessage], error)) bool {
	done := s.begin(op)

	if _, err := call(ctx); err != nil {
		s.fail(ctx, op, failure, err)
		done(OutcomeFailure)
		return false
	}

	s.load(ctx, OpRefresh)
	s.notify(ctx, notifier.LevelSuccess, op, success)
	done(OutcomeSuccess)
	return true
}

// Import merges a locally supplied fragment into the resident graph.
func (s *Session) Import(fragment graph.Graph) bool {
	ctx := context.Background()
	done := s.begin(OpImport)

	if err := fragment.Validate(); err != nil {
		s.fail(ctx, OpImport, "import rejected", err)
		done(OutcomeFailure)
		return false
	}

	added := s.merge(fragment)
	s.notify(ctx, notifier.LevelInfo, OpImport,
		fmt.Sprintf("imported %d new nodes and %d new relationships", added.Nodes, added.Edges))
	done(OutcomeSuccess)
	return true
}

// LoadSample replaces the resident graph with the built-in sample dataset.
func (s *Session) LoadSample() {
	ctx := context.Background()
	done := s.begin(OpSample)
	g := graph.SampleGraph()
	s.replace(g)
	st := g.Stats()
	s.notify(ctx, notifier.LevelInfo, OpSample, fmt.Sprintf("loaded sample graph with %d nodes and %d relationships", st.Nodes, st.Edges))
	done(OutcomeSuccess)
}

// Reset empties the resident graph.
func (s *Session) Reset() {
	ctx := context.Background()
	done := s.begin(OpReset)
	s.replace(graph.Empty())
	s.notify(ctx, notifier.LevelInfo, OpReset, "graph cleared")
	done(OutcomeSuccess)
}
