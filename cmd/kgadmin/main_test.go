// Package main provides tests for the kgadmin CLI.
package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ai-bank/kgadmin/internal/cli"
	"github.com/ai-bank/kgadmin/internal/cli/config"
	"github.com/ai-bank/kgadmin/internal/graph"
	"github.com/ai-bank/kgadmin/internal/testutil"
)

// run executes the root command against a fake backend serving the sample
// graph and returns everything written to stdout and stderr.
func run(t *testing.T, args ...string) (string, *testutil.Backend, error) {
	t.Helper()

	backend := testutil.NewBackend(t, graph.SampleGraph())
	t.Setenv("KGADMIN_BASE_URL", backend.URL)
	t.Chdir(t.TempDir())
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), backend, err
}

func TestVersionCommand(t *testing.T) {
	output, _, err := run(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}

	if !strings.Contains(output, "kgadmin v"+cli.Version) {
		t.Errorf("version output should contain 'kgadmin v%s', got: %s", cli.Version, output)
	}
}

func TestHelpCommand(t *testing.T) {
	output, _, err := run(t, "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	expectedCommands := []string{"graph", "node", "relation", "problem", "step", "shell", "ui", "history", "doctor", "init", "completion"}
	for _, expected := range expectedCommands {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestGraphShowCommand(t *testing.T) {
	output, backend, err := run(t, "graph", "show", "--node-type", "Bank", "-o", "markdown")
	if err != nil {
		t.Fatalf("graph show error = %v", err)
	}

	if routes := backend.Routes(); len(routes) != 1 || routes[0] != "GET /knowledge/graph/data" {
		t.Errorf("expected a single graph load, got %v", routes)
	}
	for _, expected := range []string{"# Knowledge graph", "中国银行北京分行", "招商银行北京分行"} {
		if !strings.Contains(output, expected) {
			t.Errorf("graph show output should contain '%s', got: %s", expected, output)
		}
	}
	if strings.Contains(output, "张三") {
		t.Errorf("filtered output should not contain people, got: %s", output)
	}
}

func TestGraphShowJSON(t *testing.T) {
	t.Setenv("KGADMIN_OUTPUT", "json")

	backend := testutil.NewBackend(t, graph.SampleGraph())
	t.Setenv("KGADMIN_BASE_URL", backend.URL)
	t.Chdir(t.TempDir())
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := cli.NewRootCmd()
	stdout := new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"graph", "show"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("graph show error = %v", err)
	}

	var got struct {
		Stats graph.Stats `json:"stats"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout.String())
	}
	if got.Stats != (graph.Stats{Nodes: 9, Edges: 8}) {
		t.Errorf("stats = %+v, want 9 nodes and 8 edges", got.Stats)
	}
}

func TestBackendFailure(t *testing.T) {
	backend := testutil.NewBackend(t, graph.Empty())
	backend.Handle("GET /knowledge/graph/data", map[string]any{"code": 500, "msg": "backend down"})
	t.Setenv("KGADMIN_BASE_URL", backend.URL)
	t.Chdir(t.TempDir())
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"graph", "show"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error when the backend fails")
	}
	if !strings.Contains(buf.String(), "backend down") {
		t.Errorf("output should report the backend message, got: %s", buf.String())
	}
}

func TestInvalidConfig(t *testing.T) {
	_, _, err := run(t, "graph", "show", "-o", "yaml")
	if err == nil {
		t.Fatal("expected an error for an unknown output format")
	}
}

func TestJournalAndHistory(t *testing.T) {
	journalPath := filepath.Join(t.TempDir(), "state", "journal.db")

	if _, _, err := run(t, "graph", "show", "--journal", journalPath); err != nil {
		t.Fatalf("graph show error = %v", err)
	}

	output, _, err := run(t, "history", "--journal", journalPath, "-o", "markdown")
	if err != nil {
		t.Fatalf("history error = %v", err)
	}
	if !strings.Contains(output, "# Operation history (1)") {
		t.Errorf("history should list the journaled load, got: %s", output)
	}
	if !strings.Contains(output, "| load | success |") {
		t.Errorf("history should show a successful load, got: %s", output)
	}
}
