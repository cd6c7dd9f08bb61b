package graph

import "slices"

// Merge combines incoming into original. The result holds every node and
// relationship of original in order, followed by the incoming entries whose
// identity is not yet present, in incoming order. The first occurrence of an
// identity wins; later duplicates are dropped, never merged field by field.
//
// Merge is idempotent and does not modify either argument. It is not
// commutative when two fragments carry conflicting data for one identity.
func Merge(original, incoming Graph) Graph {
	nodeIDs := make(map[string]struct{}, len(original.Nodes)+len(incoming.Nodes))
	nodes := make([]Node, 0, len(original.Nodes)+len(incoming.Nodes))
	for _, n := range original.Nodes {
		nodeIDs[n.ID] = struct{}{}
		nodes = append(nodes, n)
	}
	for _, n := range incoming.Nodes {
		if _, seen := nodeIDs[n.ID]; seen {
			continue
		}
		nodeIDs[n.ID] = struct{}{}
		nodes = append(nodes, n)
	}

	edgeKeys := make(map[string]struct{}, len(original.Edges)+len(incoming.Edges))
	edges := make([]Relationship, 0, len(original.Edges)+len(incoming.Edges))
	for _, e := range original.Edges {
		edgeKeys[e.Key()] = struct{}{}
		edges = append(edges, e)
	}
	for _, e := range incoming.Edges {
		key := e.Key()
		if _, seen := edgeKeys[key]; seen {
			continue
		}
		edgeKeys[key] = struct{}{}
		edges = append(edges, e)
	}

	return Graph{Nodes: nodes, Edges: edges}
}

// NodeTypes returns the distinct non-empty node types in first-occurrence order.
func NodeTypes(nodes []Node) []string {
	seen := make(map[string]struct{})
	types := make([]string, 0)
	for _, n := range nodes {
		if n.NodeType == "" {
			continue
		}
		if _, ok := seen[n.NodeType]; ok {
			continue
		}
		seen[n.NodeType] = struct{}{}
		types = append(types, n.NodeType)
	}
	return types
}

// RelationTypes returns the distinct non-empty relation labels in
// first-occurrence order.
func RelationTypes(edges []Relationship) []string {
	seen := make(map[string]struct{})
	types := make([]string, 0)
	for _, e := range edges {
		if e.RelationLabel == "" {
			continue
		}
		if _, ok := seen[e.RelationLabel]; ok {
			continue
		}
		seen[e.RelationLabel] = struct{}{}
		types = append(types, e.RelationLabel)
	}
	return types
}

// NodeByID returns the first node with the given identity.
func NodeByID(nodes []Node, id string) (Node, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Filter restricts g to the given node and relation types. An empty type
// list means no restriction on that dimension; when both are empty g is
// returned as is. Nodes without a type and relationships without a label
// never match a non-empty filter.
//
// A relationship survives only if its label passes the relation filter AND
// both of its endpoints survive the node filter.
func Filter(g Graph, nodeTypes, relationTypes []string) Graph {
	if len(nodeTypes) == 0 && len(relationTypes) == 0 {
		return g
	}

	nodes := g.Nodes
	if len(nodeTypes) > 0 {
		nodes = make([]Node, 0, len(g.Nodes))
		for _, n := range g.Nodes {
			if n.NodeType != "" && slices.Contains(nodeTypes, n.NodeType) {
				nodes = append(nodes, n)
			}
		}
	}

	kept := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		kept[n.ID] = struct{}{}
	}

	edges := make([]Relationship, 0, len(g.Edges))
	for _, e := range g.Edges {
		if len(relationTypes) > 0 && (e.RelationLabel == "" || !slices.Contains(relationTypes, e.RelationLabel)) {
			continue
		}
		_, srcOK := kept[e.Source]
		_, dstOK := kept[e.Target]
		if srcOK && dstOK {
			edges = append(edges, e)
		}
	}

	return Graph{Nodes: nodes, Edges: edges}
}
