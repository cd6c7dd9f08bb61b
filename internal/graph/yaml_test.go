package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseScalar(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{in: "35", want: 35},
		{in: "58906.25", want: 58906.25},
		{in: "true", want: true},
		{in: "'35'", want: "35"},
		{in: "2018-03-15", want: "2018-03-15"},
		{in: "2023-05-18T14:32:17Z", want: "2023-05-18T14:32:17Z"},
		{in: "张三", want: "张三"},
		{in: "", want: ""},
		{in: "~", want: "~"},
		{in: "[unclosed", want: "[unclosed"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseScalar(tt.in))
		})
	}
}

func TestProperties_UnmarshalYAML(t *testing.T) {
	var n struct {
		Properties Properties `yaml:"properties"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(`properties:
  since: 2020-01-15
  anchor: &d 2019-04-10
  copy: *d
  nested:
    at: 2023-05-18 14:32:17
  tags: [a, b]
`), &n))

	assert.Equal(t, Properties{
		"since":  "2020-01-15",
		"anchor": "2019-04-10",
		"copy":   "2019-04-10",
		"nested": map[string]any{"at": "2023-05-18 14:32:17"},
		"tags":   []any{"a", "b"},
	}, n.Properties)
	assert.ErrorIs(t, n.Properties.Validate(), ErrInvalidProperty)
}

func TestProperties_UnmarshalYAMLRejectsScalar(t *testing.T) {
	var n struct {
		Properties Properties `yaml:"properties"`
	}
	err := yaml.Unmarshal([]byte("properties: 5\n"), &n)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "properties must be a mapping")
}
