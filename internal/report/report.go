// Package report prints captured entries as terminal tables.
package report

import (
	"fmt"
	"io"

	"github.com/agbruneau/hookorder/pkg/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// MaxMessageWidth bounds the message column.
const MaxMessageWidth = 100

var levelColors = map[models.Level]text.Colors{
	models.LevelLog:   {text.FgWhite},
	models.LevelInfo:  {text.FgCyan},
	models.LevelDebug: {text.FgHiBlack},
	models.LevelWarn:  {text.FgYellow},
	models.LevelError: {text.FgRed, text.Bold},
}

// Options controls rendering.
type Options struct {
	Color bool // colorize levels; disable when output is not a terminal
}

// Entries writes one row per entry followed by a per-hook summary.
func Entries(w io.Writer, entries []models.LogEntry, opts Options) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "📋 No entries captured")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "TIME", "SOURCE", "LEVEL", "HOOK", "MESSAGE"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 6, WidthMax: MaxMessageWidth},
	})
	for _, e := range entries {
		source := string(e.Source)
		if source == "" {
			source = "-"
		}
		t.AppendRow(table.Row{
			e.ID,
			e.Time().Format("15:04:05.000"),
			source,
			level(e.Level, opts),
			string(e.HookType),
			e.Formatted,
		})
	}
	t.Render()

	Summary(w, entries)
}

// Summary writes the number of entries per hook type, in canonical order,
// skipping hooks with no entry.
func Summary(w io.Writer, entries []models.LogEntry) {
	counts := make(map[models.HookType]int)
	for _, e := range entries {
		counts[e.HookType]++
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"HOOK", "ENTRIES"})
	for _, h := range models.HookTypes() {
		if counts[h] > 0 {
			t.AppendRow(table.Row{string(h), counts[h]})
		}
	}
	t.AppendFooter(table.Row{"TOTAL", len(entries)})
	t.Render()
}

func level(l models.Level, opts Options) string {
	if !opts.Color {
		return string(l)
	}
	if c, ok := levelColors[l]; ok {
		return c.Sprint(string(l))
	}
	return string(l)
}
