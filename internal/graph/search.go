package graph

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SearchScope selects which node fields a keyword is matched against.
type SearchScope string

// Search scopes.
const (
	ScopeName     SearchScope = "name"
	ScopeProperty SearchScope = "property"
	ScopeAll      SearchScope = "all"
)

// SearchMode selects substring or whole-value matching.
type SearchMode string

// Search modes.
const (
	ModeFuzzy SearchMode = "fuzzy"
	ModeExact SearchMode = "exact"
)

// AllProperties is the property field value that scans every property.
const AllProperties = "all"

// SearchOptions configures SearchNodes. Zero values select ScopeAll,
// every property and ModeFuzzy.
type SearchOptions struct {
	Scope         SearchScope
	PropertyField string
	Mode          SearchMode
}

func (o SearchOptions) withDefaults() SearchOptions {
	if o.Scope == "" {
		o.Scope = ScopeAll
	}
	if o.PropertyField == "" {
		o.PropertyField = AllProperties
	}
	if o.Mode == "" {
		o.Mode = ModeFuzzy
	}
	return o
}

// ParseSearchScope validates a scope string. An empty string yields ScopeAll.
func ParseSearchScope(s string) (SearchScope, error) {
	switch SearchScope(strings.ToLower(s)) {
	case "", ScopeAll:
		return ScopeAll, nil
	case ScopeName:
		return ScopeName, nil
	case ScopeProperty:
		return ScopeProperty, nil
	}
	return "", fmt.Errorf("unknown search scope %q (want name, property or all)", s)
}

// ParseSearchMode validates a mode string. An empty string yields ModeFuzzy.
func ParseSearchMode(s string) (SearchMode, error) {
	switch SearchMode(strings.ToLower(s)) {
	case "", ModeFuzzy:
		return ModeFuzzy, nil
	case ModeExact:
		return ModeExact, nil
	}
	return "", fmt.Errorf("unknown search mode %q (want fuzzy or exact)", s)
}

// SearchNodes returns the nodes matching keyword, in input order. Matching
// is case-insensitive. An empty keyword matches nothing.
func SearchNodes(nodes []Node, keyword string, opts SearchOptions) []Node {
	if keyword == "" {
		return []Node{}
	}
	opts = opts.withDefaults()

	// cases.Caser is stateful; one per call.
	lower := cases.Lower(language.Und)
	needle := lower.String(keyword)
	match := func(value string) bool {
		value = lower.String(value)
		if opts.Mode == ModeExact {
			return value == needle
		}
		return strings.Contains(value, needle)
	}

	results := make([]Node, 0)
	for _, n := range nodes {
		if matchNode(n, opts, match) {
			results = append(results, n)
		}
	}
	return results
}

func matchNode(n Node, opts SearchOptions, match func(string) bool) bool {
	if opts.Scope == ScopeName || opts.Scope == ScopeAll {
		if match(n.DisplayName()) {
			return true
		}
	}

	if (opts.Scope == ScopeProperty || opts.Scope == ScopeAll) && n.Properties != nil {
		if opts.PropertyField == AllProperties {
			for _, k := range n.Properties.Keys() {
				if match(Stringify(n.Properties[k])) {
					return true
				}
			}
		} else if v := n.Properties[opts.PropertyField]; !blank(v) {
			if match(Stringify(v)) {
				return true
			}
		}
	}

	return false
}

// blank reports whether a named property is absent, false, zero or empty.
// Such values never match a named-property search.
func blank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case float64:
		return x == 0 || math.IsNaN(x)
	case float32:
		return x == 0 || math.IsNaN(float64(x))
	case int:
		return x == 0
	case int64:
		return x == 0
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 0
	}
	return false
}

// Stringify renders a property value for display and keyword matching.
// Numbers use their shortest decimal form and nested maps their JSON form.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case json.Number:
		return x.String()
	case map[string]any, Properties:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}
