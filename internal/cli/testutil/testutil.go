// Package testutil captures renderer output for command tests.
package testutil

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/ai-bank/kgadmin/internal/cli/output"
)

// Capture is a renderer whose streams are in-memory buffers. Text mode is
// rendered as if attached to a terminal so styles are applied.
type Capture struct {
	*output.Renderer
	Stdout *bytes.Buffer
	Stderr *bytes.Buffer
}

// NewCapture creates a Capture rendering in mode.
func NewCapture(mode output.Mode) *Capture {
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	return &Capture{
		Renderer: output.NewRendererWithTTY(stdout, stderr, mode == output.ModeText, mode),
		Stdout:   stdout,
		Stderr:   stderr,
	}
}

// Output returns everything written to stdout.
func (c *Capture) Output() string {
	return c.Stdout.String()
}

// Reset empties both streams.
func (c *Capture) Reset() {
	c.Stdout.Reset()
	c.Stderr.Reset()
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI fails if s contains terminal escape sequences.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("unexpected ANSI escape codes in %q", s)
	}
}

// MarkdownRow formats cells the way markdown tables are rendered.
func MarkdownRow(cells ...string) string {
	return "| " + strings.Join(cells, " | ") + " |"
}

// AssertMarkdown checks that md has no empty headings and that every table
// row has as many cells as the header row above it.
func AssertMarkdown(t *testing.T, md string) {
	t.Helper()

	columns := 0
	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("line %d: empty heading", i+1)
		}
		if !strings.HasPrefix(trimmed, "|") {
			columns = 0
			continue
		}
		cells := strings.Count(trimmed, "|") - 1
		if columns == 0 {
			columns = cells
			continue
		}
		if cells != columns {
			t.Errorf("line %d: %d cells, header has %d: %q", i+1, cells, columns, line)
		}
	}
}
