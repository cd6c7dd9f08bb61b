package kgclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ai-bank/kgadmin/internal/graph"
)

// Backend routes.
const (
	pathRebuild       = "/knowledge/graph/create"
	pathClear         = "/knowledge/graph/clear"
	pathVerify        = "/knowledge/graph/verify"
	pathGraphData     = "/knowledge/graph/data"
	pathNodeRelations = "/knowledge/graph/node/relations/"
	pathSearch        = "/knowledge/graph/search"
	pathPath          = "/knowledge/graph/path"
	pathNode          = "/knowledge/graph/node"
	pathStepNode      = "/knowledge/graph/stepNode"
	pathRelation      = "/knowledge/graph/relation"
	pathProblemIDs    = "/knowledge/graph/problemIds"
	pathProblemSteps  = "/knowledge/graph/"
)

// GraphData fetches the full graph, optionally paged.
func (c *Client) GraphData(ctx context.Context, q *PageQuery) (Result[graph.Graph], error) {
	if q != nil {
		if err := Validate(q); err != nil {
			return Result[graph.Graph]{}, err
		}
	}
	return c.fetchGraph(ctx, "graph_data", pathGraphData, q.values())
}

// NodeRelations fetches the neighbourhood of one node.
func (c *Client) NodeRelations(ctx context.Context, nodeID string) (Result[graph.Graph], error) {
	if err := requireID("node", nodeID); err != nil {
		return Result[graph.Graph]{}, err
	}
	return c.fetchGraph(ctx, "node_relations", pathNodeRelations+url.PathEscape(nodeID), nil)
}

// SearchNodes runs a keyword search on the backend.
func (c *Client) SearchNodes(ctx context.Context, p SearchParams) (Result[graph.Graph], error) {
	if err := Validate(p); err != nil {
		return Result[graph.Graph]{}, err
	}
	return c.fetchGraph(ctx, "search_nodes", pathSearch, p.values())
}

// FindPath discovers paths between two nodes.
func (c *Client) FindPath(ctx context.Context, p PathParams) (Result[graph.Graph], error) {
	if err := Validate(p); err != nil {
		return Result[graph.Graph]{}, err
	}
	return c.fetchGraph(ctx, "find_path", pathPath, p.values())
}

// fetchGraph decodes a graph payload and validates its property bags. A
// successful response without a payload is reported as an APIError.
func (c *Client) fetchGraph(ctx context.Context, op, path string, query url.Values) (Result[graph.Graph], error) {
	r, err := c.do(ctx, op, http.MethodGet, path, query, nil)
	if err != nil {
		return Result[graph.Graph]{}, err
	}
	if r.empty() {
		return Result[graph.Graph]{}, fmt.Errorf("%s: %w", op, &APIError{Status: r.Status, Code: r.Code, Msg: "response carried no graph"})
	}
	res, err := decode[graph.Graph](r)
	if err != nil {
		return Result[graph.Graph]{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := res.Data.Validate(); err != nil {
		return Result[graph.Graph]{}, fmt.Errorf("%s: %w", op, err)
	}
	res.Data = res.Data.Normalize()
	return res, nil
}

// CreateNode creates a node. Problem nodes are posted to the node resource
// as a ProblemEnvelope; every other type is posted as is to the step node
// resource.
func (c *Client) CreateNode(ctx context.Context, in NodeInput) (Result[json.RawMessage], error) {
	if err := in.validate(); err != nil {
		return Result[json.RawMessage]{}, err
	}
	if !in.IsProblem() {
		return call[json.RawMessage](ctx, c, "create_node", http.MethodPost, pathStepNode, nil, in)
	}
	env, err := NewProblemCreate(in.Properties)
	if err != nil {
		return Result[json.RawMessage]{}, err
	}
	return call[json.RawMessage](ctx, c, "create_problem_node", http.MethodPost, pathNode, nil, env)
}

// UpdateNode updates a node, using the ProblemEnvelope for Problem nodes.
func (c *Client) UpdateNode(ctx context.Context, nodeID string, in NodeInput) (Result[json.RawMessage], error) {
	if err := requireID("node", nodeID); err != nil {
		return Result[json.RawMessage]{}, err
	}
	if err := in.validate(); err != nil {
		return Result[json.RawMessage]{}, err
	}
	path := pathNode + "/" + url.PathEscape(nodeID)
	if !in.IsProblem() {
		return call[json.RawMessage](ctx, c, "update_node", http.MethodPut, path, nil, in)
	}
	env, err := NewProblemUpdate(in.Properties)
	if err != nil {
		return Result[json.RawMessage]{}, err
	}
	return call[json.RawMessage](ctx, c, "update_problem_node", http.MethodPut, path, nil, env)
}

// DeleteNode deletes a node.
func (c *Client) DeleteNode(ctx context.Context, nodeID string) (Result[json.RawMessage], error) {
	if err := requireID("node", nodeID); err != nil {
		return Result[json.RawMessage]{}, err
	}
	return call[json.RawMessage](ctx, c, "delete_node", http.MethodDelete, pathNode+"/"+url.PathEscape(nodeID), nil, nil)
}

// CreateRelation creates a relationship.
func (c *Client) CreateRelation(ctx context.Context, in RelationInput) (Result[json.RawMessage], error) {
	if err := in.validate(); err != nil {
		return Result[json.RawMessage]{}, err
	}
	return call[json.RawMessage](ctx, c, "create_relation", http.MethodPost, pathRelation, nil, in)
}

// UpdateRelation updates a relationship.
func (c *Client) UpdateRelation(ctx context.Context, relationID string, in RelationInput) (Result[json.RawMessage], error) {
	if err := requireID("relation", relationID); err != nil {
		return Result[json.RawMessage]{}, err
	}
	if err := in.validate(); err != nil {
		return Result[json.RawMessage]{}, err
	}
	return call[json.RawMessage](ctx, c, "update_relation", http.MethodPut, pathRelation+"/"+url.PathEscape(relationID), nil, in)
}

// DeleteRelation deletes a relationship.
func (c *Client) DeleteRelation(ctx context.Context, relationID string) (Result[json.RawMessage], error) {
	if err := requireID("relation", relationID); err != nil {
		return Result[json.RawMessage]{}, err
	}
	return call[json.RawMessage](ctx, c, "delete_relation", http.MethodDelete, pathRelation+"/"+url.PathEscape(relationID), nil, nil)
}

// RebuildGraph asks the backend to rebuild the knowledge graph.
func (c *Client) RebuildGraph(ctx context.Context) (Result[json.RawMessage], error) {
	return call[json.RawMessage](ctx, c, "rebuild_graph", http.MethodPost, pathRebuild, nil, nil)
}

// ClearGraph removes every node and relationship on the backend.
func (c *Client) ClearGraph(ctx context.Context) (Result[json.RawMessage], error) {
	return call[json.RawMessage](ctx, c, "clear_graph", http.MethodDelete, pathClear, nil, nil)
}

// VerifyGraph asks the backend to check the graph structure.
func (c *Client) VerifyGraph(ctx context.Context) (Result[json.RawMessage], error) {
	return call[json.RawMessage](ctx, c, "verify_graph", http.MethodGet, pathVerify, nil, nil)
}

// ListProblemIDs returns the identities of every Problem node.
func (c *Client) ListProblemIDs(ctx context.Context) (Result[[]string], error) {
	raw, err := call[[]any](ctx, c, "list_problem_ids", http.MethodGet, pathProblemIDs, nil, nil)
	if err != nil {
		return Result[[]string]{}, err
	}
	ids := make([]string, 0, len(raw.Data))
	for _, v := range raw.Data {
		ids = append(ids, graph.Stringify(v))
	}
	return Result[[]string]{Code: raw.Code, Msg: raw.Msg, Data: ids}, nil
}

// CreateStepNode creates a flow step node.
func (c *Client) CreateStepNode(ctx context.Context, in StepInput) (Result[json.RawMessage], error) {
	if err := Validate(in); err != nil {
		return Result[json.RawMessage]{}, err
	}
	return call[json.RawMessage](ctx, c, "create_step_node", http.MethodPost, pathStepNode, nil, in)
}

// StepsByProblem lists the step records of one problem.
func (c *Client) StepsByProblem(ctx context.Context, problemID string) (Result[[]graph.Properties], error) {
	if err := requireID("problem", problemID); err != nil {
		return Result[[]graph.Properties]{}, err
	}
	res, err := call[[]graph.Properties](ctx, c, "steps_by_problem", http.MethodGet, pathProblemSteps+url.PathEscape(problemID), nil, nil)
	if err != nil {
		return Result[[]graph.Properties]{}, err
	}
	if res.Data == nil {
		res.Data = []graph.Properties{}
	}
	return res, nil
}
