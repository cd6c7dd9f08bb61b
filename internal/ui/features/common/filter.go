package common

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gorilla/sessions"
)

// SessionName is the cookie holding per-browser workbench state.
const SessionName = "kgadmin"

const (
	keyNodeTypes     = "node_types"
	keyRelationTypes = "relation_types"
)

// LoadFilter returns the filter saved in the browser session.
func LoadFilter(store sessions.Store, r *http.Request) Filter {
	sess, err := store.Get(r, SessionName)
	if err != nil {
		return Filter{}
	}
	nodeTypes, _ := sess.Values[keyNodeTypes].([]string)
	relationTypes, _ := sess.Values[keyRelationTypes].([]string)
	return Filter{NodeTypes: nodeTypes, RelationTypes: relationTypes}
}

// SaveFilter stores f in the browser session. Type lists are kept as
// []string, so type names may contain any character.
func SaveFilter(store sessions.Store, w http.ResponseWriter, r *http.Request, f Filter) error {
	sess, err := store.Get(r, SessionName)
	if err != nil && sess == nil {
		return err
	}
	setList(sess, keyNodeTypes, f.NodeTypes)
	setList(sess, keyRelationTypes, f.RelationTypes)
	return sess.Save(r, w)
}

func setList(sess *sessions.Session, key string, values []string) {
	if len(values) == 0 {
		delete(sess.Values, key)
		return
	}
	sess.Values[key] = slices.Clone(values)
}

// QueryList returns the non-blank values of a repeated query parameter.
// Values are taken whole: ?nodeType=a&nodeType=b selects a and b.
func QueryList(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
