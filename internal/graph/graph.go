// Package graph provides the in-memory knowledge graph model and the pure
// functions that merge, filter and search graph fragments returned by the
// knowledge-graph backend.
//
// Nothing in this package retains a reference to its inputs: every function
// returns a new value (or the input itself for documented pass-throughs) and
// never mutates what it was given.
package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidProperty is returned when a property value is outside the
// permitted shapes (string, number, boolean, nested map, null).
var ErrInvalidProperty = errors.New("invalid property value")

// Properties is an open key-value bag attached to nodes and relationships.
type Properties map[string]any

// Style holds optional display colours for a node.
type Style struct {
	Fill   string `json:"fill" yaml:"fill"`
	Stroke string `json:"stroke" yaml:"stroke"`
}

// Node is a vertex of the knowledge graph.
type Node struct {
	ID         string     `json:"id" yaml:"id"`
	Name       string     `json:"name" yaml:"name"`
	Label      string     `json:"label,omitempty" yaml:"label,omitempty"`
	NodeType   string     `json:"nodeType" yaml:"nodeType"`
	Properties Properties `json:"properties,omitempty" yaml:"properties,omitempty"`
	Style      *Style     `json:"style,omitempty" yaml:"style,omitempty"`
}

// DisplayName returns the node name, falling back to its label.
func (n Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.Label
}

// Relationship is a directed, labelled edge between two node identities.
// Source and Target are not checked against the graph; dangling edges are
// allowed.
type Relationship struct {
	ID            string     `json:"id,omitempty" yaml:"id,omitempty"`
	Source        string     `json:"source" yaml:"source"`
	Target        string     `json:"target" yaml:"target"`
	RelationLabel string     `json:"relationLabel" yaml:"relationLabel"`
	Properties    Properties `json:"properties,omitempty" yaml:"properties,omitempty"`
	// Taken marks an edge traversed at runtime in flow-path views.
	Taken bool `json:"taken,omitempty" yaml:"taken,omitempty"`
}

// Key returns the deduplication identity of the relationship: its ID when
// present, otherwise the source-target-label triple.
func (r Relationship) Key() string {
	if r.ID != "" {
		return r.ID
	}
	return r.Source + "-" + r.Target + "-" + r.RelationLabel
}

// Graph is an ordered set of nodes plus an ordered set of relationships.
type Graph struct {
	Nodes []Node         `json:"nodes" yaml:"nodes"`
	Edges []Relationship `json:"edges" yaml:"edges"`

	// Totals reported by some backend endpoints; informational only.
	TotalNodes int `json:"totalNodes,omitempty" yaml:"totalNodes,omitempty"`
	TotalEdges int `json:"totalEdges,omitempty" yaml:"totalEdges,omitempty"`
}

// Empty returns a graph with non-nil, zero-length node and edge slices.
func Empty() Graph {
	return Graph{
		Nodes: []Node{},
		Edges: []Relationship{},
	}
}

// Stats summarises the cardinality of a graph.
type Stats struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}

// Stats returns the node and edge counts.
func (g Graph) Stats() Stats {
	return Stats{Nodes: len(g.Nodes), Edges: len(g.Edges)}
}

// IsEmpty reports whether the graph has neither nodes nor edges.
func (g Graph) IsEmpty() bool {
	return len(g.Nodes) == 0 && len(g.Edges) == 0
}

// Clone returns a copy whose slices can be appended to without affecting g.
// Property maps are shared.
func (g Graph) Clone() Graph {
	out := Graph{
		Nodes:      make([]Node, len(g.Nodes)),
		Edges:      make([]Relationship, len(g.Edges)),
		TotalNodes: g.TotalNodes,
		TotalEdges: g.TotalEdges,
	}
	copy(out.Nodes, g.Nodes)
	copy(out.Edges, g.Edges)
	return out
}

// Normalize replaces nil slices with empty ones so the graph encodes as
// {"nodes":[],"edges":[]}.
func (g Graph) Normalize() Graph {
	if g.Nodes == nil {
		g.Nodes = []Node{}
	}
	if g.Edges == nil {
		g.Edges = []Relationship{}
	}
	return g
}

// Validate checks every node and relationship property bag.
func (g Graph) Validate() error {
	for _, n := range g.Nodes {
		if err := n.Properties.Validate(); err != nil {
			return fmt.Errorf("node %q: %w", n.ID, err)
		}
	}
	for _, e := range g.Edges {
		if err := e.Properties.Validate(); err != nil {
			return fmt.Errorf("relationship %q: %w", e.Key(), err)
		}
	}
	return nil
}

// Validate checks that every value has a permitted shape.
func (p Properties) Validate() error {
	for k, v := range p {
		if err := validateValue(v); err != nil {
			return fmt.Errorf("property %q: %w", k, err)
		}
	}
	return nil
}

func validateValue(v any) error {
	switch x := v.(type) {
	case nil, string, bool, json.Number,
		float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return nil
	case map[string]any:
		return Properties(x).Validate()
	case Properties:
		return x.Validate()
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidProperty, v)
	}
}

// Keys returns the property keys in sorted order.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
