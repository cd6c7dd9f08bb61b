// Package output renders command results as styled text, markdown or JSON.
//
// Auto mode resolves to text when stdout is a terminal and to markdown
// otherwise, so piped output stays free of ANSI escapes.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Mode selects how a Renderer formats its output.
type Mode string

// Output modes.
const (
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
)

// ParseMode validates a mode name. An empty name is auto.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeText, ModeMarkdown, ModeJSON:
		return m, nil
	default:
		return "", fmt.Errorf("unknown output mode %q (want auto, text, markdown or json)", s)
	}
}

// Renderer writes formatted output to a pair of streams.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	isTTY  bool
	styles *Styles
}

// NewRenderer creates a renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	return NewRendererWithTTY(out, errOut, isTerminal(out), mode)
}

// NewRendererWithTTY creates a renderer with an explicit terminal flag.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	r := &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  isTTY,
	}
	r.styles = NewStyles(out, r.EffectiveMode() == ModeText && isTTY)
	return r
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Mode returns the configured mode, which may be auto.
func (r *Renderer) Mode() Mode {
	return r.mode
}

// EffectiveMode resolves auto to text or markdown.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// IsTTY reports whether the primary stream is a terminal.
func (r *Renderer) IsTTY() bool {
	return r.isTTY
}

// Styles returns the lipgloss styles bound to this renderer.
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Writer returns the primary output stream.
func (r *Renderer) Writer() io.Writer {
	return r.out
}

// ErrWriter returns the diagnostic stream.
func (r *Renderer) ErrWriter() io.Writer {
	return r.errOut
}

// messages keep JSON output on stdout parseable.
func (r *Renderer) messages() io.Writer {
	if r.EffectiveMode() == ModeJSON {
		return r.errOut
	}
	return r.out
}

// Println writes a line to the primary stream.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to the primary stream.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Header writes a section header.
func (r *Renderer) Header(level int, s string) {
	switch r.EffectiveMode() {
	case ModeText:
		style := r.styles.Header
		if level > 1 {
			style = r.styles.Header2
		}
		_, _ = fmt.Fprintln(r.out, style.Render(s))
	case ModeMarkdown:
		_, _ = fmt.Fprintln(r.out, FormatHeader(level, s))
		_, _ = fmt.Fprintln(r.out)
	}
}

// Success writes a success message.
func (r *Renderer) Success(msg string) {
	_, _ = fmt.Fprintln(r.messages(), r.styles.Success.Render("✓ "+msg))
}

// Info writes an informational message.
func (r *Renderer) Info(msg string) {
	_, _ = fmt.Fprintln(r.messages(), r.styles.Info.Render("• "+msg))
}

// Warning writes a warning message.
func (r *Renderer) Warning(msg string) {
	_, _ = fmt.Fprintln(r.messages(), r.styles.Warning.Render("! "+msg))
}

// Error writes an error message to the diagnostic stream.
func (r *Renderer) Error(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Error.Render("✗ "+msg))
}

// Muted writes de-emphasised text.
func (r *Renderer) Muted(msg string) {
	_, _ = fmt.Fprintln(r.messages(), r.styles.Muted.Render(msg))
}

// StatusLine writes "text  status  (detail)" with a coloured status.
func (r *Renderer) StatusLine(text, status, detail string) {
	style := r.styles.StatusSuccess
	if status != "ok" && status != "success" {
		style = r.styles.StatusFailed
	}
	line := fmt.Sprintf("  %s  %s", text, style.Render(status))
	if detail != "" {
		line += " " + r.styles.Muted.Render("("+detail+")")
	}
	_, _ = fmt.Fprintln(r.messages(), line)
}

// JSON writes v as indented JSON to the primary stream.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}
