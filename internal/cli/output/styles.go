package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles holds the lipgloss styles used across commands.
type Styles struct {
	Header   lipgloss.Style
	Header2  lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style
	NodeID   lipgloss.Style
	NodeType lipgloss.Style
	Relation lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
}

// NewStyles builds styles for w. Without colour every style renders plain
// text.
func NewStyles(w io.Writer, color bool) *Styles {
	lr := lipgloss.NewRenderer(w)
	if color {
		lr.SetColorProfile(termenv.ANSI256)
	} else {
		lr.SetColorProfile(termenv.Ascii)
	}

	return &Styles{
		Header:        lr.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2:       lr.NewStyle().Bold(true),
		Muted:         lr.NewStyle().Foreground(lipgloss.Color("8")),
		Bold:          lr.NewStyle().Bold(true),
		Success:       lr.NewStyle().Foreground(lipgloss.Color("10")),
		Warning:       lr.NewStyle().Foreground(lipgloss.Color("11")),
		Error:         lr.NewStyle().Foreground(lipgloss.Color("9")),
		Info:          lr.NewStyle().Foreground(lipgloss.Color("14")),
		NodeID:        lr.NewStyle().Foreground(lipgloss.Color("13")),
		NodeType:      lr.NewStyle().Foreground(lipgloss.Color("6")),
		Relation:      lr.NewStyle().Italic(true),
		StatusSuccess: lr.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		StatusFailed:  lr.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	}
}
