package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ai-bank/kgadmin/internal/cli/config"
	"github.com/ai-bank/kgadmin/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInitCommand(t *testing.T) {
	tests := []struct {
		name      string
		setupDir  func(t *testing.T, dir string) // setup before running
		args      []string
		wantErr   bool
		wantFiles []string
		noFiles   []string
	}{
		{
			name:      "init empty directory",
			args:      []string{},
			wantFiles: []string{"kgadmin.yaml"},
			noFiles:   []string{"graphs", ".gitignore"},
		},
		{
			name: "init example",
			args: []string{"--example"},
			wantFiles: []string{
				"kgadmin.yaml",
				".gitignore",
				"graphs/sample.yaml",
				"problems/problem.yaml",
				"steps/step.yaml",
			},
		},
		{
			name: "init existing config without force",
			setupDir: func(_ *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "kgadmin.yaml"), []byte("existing"), 0600)
			},
			args:    []string{},
			wantErr: true,
		},
		{
			name: "init existing config with force",
			setupDir: func(_ *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "kgadmin.yaml"), []byte("existing"), 0600)
			},
			args:      []string{"--force"},
			wantFiles: []string{"kgadmin.yaml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			t.Chdir(tmpDir)

			if tt.setupDir != nil {
				tt.setupDir(t, tmpDir)
			}

			cmd := NewInitCommand()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			for _, f := range tt.wantFiles {
				_, err := os.Stat(filepath.Join(tmpDir, f))
				assert.False(t, os.IsNotExist(err), "expected file/dir %q to exist", f)
			}
			for _, f := range tt.noFiles {
				_, err := os.Stat(filepath.Join(tmpDir, f))
				assert.True(t, os.IsNotExist(err), "expected file/dir %q not to exist", f)
			}
		})
	}
}

func TestInitCommandMetadata(t *testing.T) {
	cmd := NewInitCommand()

	assert.Equal(t, "init [directory]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("force"), "--force flag should exist")
	assert.NotNil(t, cmd.Flags().Lookup("example"), "--example flag should exist")
}

func TestInit_TargetDirectory(t *testing.T) {
	target := filepath.Join(t.TempDir(), "ops")

	_, _, err := execute(t, NewInitCommand(), target)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(target, "kgadmin.yaml"))
	assert.NoError(t, err)
}

func TestInit_ConfigLoads(t *testing.T) {
	for _, template := range []string{"minimal", "example"} {
		t.Run(template, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, copyTemplate(template, dir, false))

			config.ResetConfig()
			t.Cleanup(config.ResetConfig)
			cfg, err := config.LoadConfig(filepath.Join(dir, "kgadmin.yaml"), nil)
			require.NoError(t, err)
			assert.Equal(t, config.DefaultBaseURL, cfg.BaseURL)
			assert.Equal(t, config.DefaultUIPort, cfg.GetUIConfig().Port)
		})
	}
}

func TestInit_ExampleFilesAreUsable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, copyTemplate("example", dir, false))

	g, err := graph.ReadFile(filepath.Join(dir, "graphs", "sample.yaml"))
	require.NoError(t, err)
	require.NoError(t, g.Validate())
	assert.Equal(t, graph.Stats{Nodes: 3, Edges: 2}, g.Stats())

	opts := &nodeOptions{File: filepath.Join(dir, "problems", "problem.yaml")}
	in, err := opts.input()
	require.NoError(t, err)
	assert.Equal(t, "Problem", in.NodeType)
	assert.Equal(t, "数据一致性", in.Properties["problem_type"])
}

func TestGroupTemplateFiles(t *testing.T) {
	groups := groupTemplateFiles([]string{"kgadmin.yaml", ".gitignore", "graphs/sample.yaml", "steps/step.yaml"})

	assert.Equal(t, map[string][]string{
		"config": {"kgadmin.yaml", ".gitignore"},
		"graphs": {"graphs/sample.yaml"},
		"steps":  {"steps/step.yaml"},
	}, groups)
}
