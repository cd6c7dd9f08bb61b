package commands

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionCommand(t *testing.T) {
	info := BuildInfo{Version: "0.1.0", BuildDate: "2026-10-01", GitCommit: "3f9c2ab"}

	tests := []struct {
		name    string
		args    []string
		wantOut []string
		exact   string
	}{
		{
			name: "full",
			wantOut: []string{
				"kgadmin v0.1.0",
				"Knowledge graph",
				"commit: 3f9c2ab",
				"built:  2026-10-01",
				runtime.Version(),
			},
		},
		{
			name:  "short",
			args:  []string{"--short"},
			exact: "0.1.0\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, NewVersionCommand(info), tt.args...)
			require.NoError(t, err)

			if tt.exact != "" {
				assert.Equal(t, tt.exact, stdout)
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, stdout, want)
			}
		})
	}
}

func TestVersionCommandMetadata(t *testing.T) {
	cmd := NewVersionCommand(BuildInfo{Version: "test"})

	assert.Equal(t, "version", cmd.Use)
	assert.NotEmpty(t, cmd.Long, "Long should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("short"))

	_, _, err := execute(t, cmd, "extra")
	assert.Error(t, err)
}
