package graph

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

const timestampTag = "!!timestamp"

// UnmarshalYAML decodes a property bag. Unquoted dates such as 2018-03-15
// stay strings as written instead of becoming time.Time values.
func (p *Properties) UnmarshalYAML(n *yaml.Node) error {
	v, err := plainValue(n)
	if err != nil {
		return err
	}
	switch m := v.(type) {
	case nil:
		*p = nil
	case map[string]any:
		*p = m
	default:
		return fmt.Errorf("line %d: properties must be a mapping", n.Line)
	}
	return nil
}

// ParseScalar reads s as a YAML value: 35 is a number, true a boolean and
// '35' a string. Timestamps and anything that does not parse stay s.
func ParseScalar(s string) any {
	var n yaml.Node
	if err := yaml.Unmarshal([]byte(s), &n); err != nil {
		return s
	}
	v, err := plainValue(&n)
	if err != nil || v == nil {
		return s
	}
	return v
}

func plainValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return plainValue(n.Content[0])
	case yaml.AliasNode:
		return plainValue(n.Alias)
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := plainValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[n.Content[i].Value] = v
		}
		return m, nil
	case yaml.SequenceNode:
		s := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := plainValue(c)
			if err != nil {
				return nil, err
			}
			s = append(s, v)
		}
		return s, nil
	case yaml.ScalarNode:
		if n.ShortTag() == timestampTag {
			return n.Value, nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, nil
	}
}
