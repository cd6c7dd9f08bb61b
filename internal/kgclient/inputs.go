package kgclient

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/ai-bank/kgadmin/internal/graph"
)

// DefaultMaxDepth is the path search depth used when PathParams.MaxDepth is 0.
const DefaultMaxDepth = 3

// PageQuery selects one page of the full graph. Zero fields are omitted.
type PageQuery struct {
	PageNum  int `json:"pageNum" validate:"gte=0"`
	PageSize int `json:"pageSize" validate:"gte=0"`
}

func (q *PageQuery) values() url.Values {
	v := url.Values{}
	if q == nil {
		return v
	}
	if q.PageNum > 0 {
		v.Set("pageNum", strconv.Itoa(q.PageNum))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	return v
}

// SearchParams is a backend keyword search.
type SearchParams struct {
	Keyword       string            `json:"keyword" validate:"required"`
	SearchType    graph.SearchScope `json:"searchType" validate:"omitempty,oneof=name property all"`
	PropertyField string            `json:"propertyField"`
	SearchMode    graph.SearchMode  `json:"searchMode" validate:"omitempty,oneof=fuzzy exact"`
}

// KeywordSearch returns the parameters used for a bare keyword search.
func KeywordSearch(keyword string) SearchParams {
	return SearchParams{Keyword: keyword, SearchType: graph.ScopeAll, SearchMode: graph.ModeFuzzy}
}

func (p SearchParams) values() url.Values {
	v := url.Values{}
	v.Set("keyword", p.Keyword)
	if p.SearchType != "" {
		v.Set("searchType", string(p.SearchType))
	}
	if p.PropertyField != "" {
		v.Set("propertyField", p.PropertyField)
	}
	if p.SearchMode != "" {
		v.Set("searchMode", string(p.SearchMode))
	}
	return v
}

// PathParams is a bounded path discovery between two nodes.
type PathParams struct {
	SourceID string `json:"sourceId" validate:"required"`
	TargetID string `json:"targetId" validate:"required"`
	MaxDepth int    `json:"maxDepth" validate:"gte=0,lte=10"`
}

func (p PathParams) values() url.Values {
	depth := p.MaxDepth
	if depth == 0 {
		depth = DefaultMaxDepth
	}
	v := url.Values{}
	v.Set("sourceId", p.SourceID)
	v.Set("targetId", p.TargetID)
	v.Set("maxDepth", strconv.Itoa(depth))
	return v
}

// NodeInput is the payload of a node create or update.
type NodeInput struct {
	ID         string           `json:"id,omitempty" yaml:"id"`
	Name       string           `json:"name" yaml:"name" validate:"required"`
	NodeType   string           `json:"nodeType" yaml:"nodeType" validate:"required"`
	Properties graph.Properties `json:"properties" yaml:"properties"`
}

// IsProblem reports whether the node is routed through the problem envelope.
func (n NodeInput) IsProblem() bool {
	return n.NodeType == ProblemNodeType
}

func (n NodeInput) validate() error {
	if err := Validate(n); err != nil {
		return err
	}
	if err := n.Properties.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

// RelationInput is the payload of a relationship create or update.
type RelationInput struct {
	Source        string           `json:"source" yaml:"source" validate:"required"`
	Target        string           `json:"target" yaml:"target" validate:"required"`
	RelationLabel string           `json:"relationLabel" yaml:"relationLabel" validate:"required"`
	Properties    graph.Properties `json:"properties,omitempty" yaml:"properties"`
}

func (r RelationInput) validate() error {
	if err := Validate(r); err != nil {
		return err
	}
	if err := r.Properties.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

func requireID(kind, id string) error {
	if id == "" {
		return fmt.Errorf("%w: %s id is required", ErrInvalidInput, kind)
	}
	return nil
}
