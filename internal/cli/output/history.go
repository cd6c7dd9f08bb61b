package output

import (
	"fmt"
	"time"

	"github.com/ai-bank/kgadmin/internal/journal"
	"github.com/jedib0t/go-pretty/v6/table"
)

// historyTimeLayout is used for journal timestamps in tables.
const historyTimeLayout = "2006-01-02 15:04:05"

// History renders journal entries, newest first as given.
func (r *Renderer) History(entries []journal.Entry) error {
	if entries == nil {
		entries = []journal.Entry{}
	}
	mode := r.EffectiveMode()
	if mode == ModeJSON {
		return r.JSON(entries)
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Time", "Operation", "Outcome", "Duration", "Nodes", "Relationships", "Environment"})
	for _, e := range entries {
		outcome := e.Outcome
		if mode == ModeText {
			outcome = r.outcomeStyle(e.Outcome)
		}
		t.AppendRow(table.Row{
			e.StartedAt.Local().Format(historyTimeLayout),
			e.Op,
			outcome,
			e.Duration.Round(time.Millisecond).String(),
			e.Nodes,
			e.Edges,
			e.Environment,
		})
	}

	title := fmt.Sprintf("Operation history (%d)", len(entries))
	if mode == ModeMarkdown {
		r.Println(FormatHeader(1, title))
		r.Println("")
		if len(entries) > 0 {
			t.RenderMarkdown()
		}
		return nil
	}
	r.Header(1, title)
	if len(entries) == 0 {
		r.Muted("No operations recorded")
		return nil
	}
	t.Render()
	return nil
}

func (r *Renderer) outcomeStyle(outcome string) string {
	switch outcome {
	case "success":
		return r.styles.Success.Render(outcome)
	case "failure":
		return r.styles.Error.Render(outcome)
	default:
		return r.styles.Warning.Render(outcome)
	}
}
