// Package common provides shared types and utilities for UI features.
package common

import (
	"github.com/ai-bank/kgadmin/internal/graph"
	"github.com/ai-bank/kgadmin/internal/notifier"
)

// Filter is the node and relation type selection of one browser.
type Filter struct {
	NodeTypes     []string `json:"nodeTypes"`
	RelationTypes []string `json:"relationTypes"`
}

// IsEmpty reports whether the filter restricts nothing.
func (f Filter) IsEmpty() bool {
	return len(f.NodeTypes) == 0 && len(f.RelationTypes) == 0
}

// GraphResponse is the body of graph reads.
type GraphResponse struct {
	Nodes   []graph.Node         `json:"nodes"`
	Edges   []graph.Relationship `json:"edges"`
	Stats   graph.Stats          `json:"stats"`
	Filter  Filter               `json:"filter"`
	Loading bool                 `json:"loading"`
}

// OperationResponse is the body of session operations.
type OperationResponse struct {
	OK            bool                    `json:"ok"`
	Stats         graph.Stats             `json:"stats"`
	Notifications []notifier.Notification `json:"notifications"`
}

// ErrorResponse is the body of rejected requests.
type ErrorResponse struct {
	Error string `json:"error"`
}
