package graph

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ReadFile decodes a graph fragment from a YAML or JSON file.
func ReadFile(path string) (Graph, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied input file
	if err != nil {
		return Graph{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var g Graph
	if err := yaml.Unmarshal(data, &g); err != nil {
		return Graph{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return g.Normalize(), nil
}
