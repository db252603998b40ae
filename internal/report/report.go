// Package report renders sweep summaries for humans: ASCII tables on a
// terminal, Markdown for docs and PR comments.
package report

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"optsweep/internal/sweep"
)

// Mode controls the output format.
type Mode int

const (
	ASCII    Mode = iota // fixed-width terminal tables
	Markdown             // GitHub-flavoured Markdown tables
)

// Summary renders one sweep's job table with a totals footer.
func Summary(sum *sweep.Summary, mode Mode) string {
	w := table.NewWriter()
	if mode == ASCII {
		w.SetStyle(table.StyleLight)
	}

	w.AppendHeader(table.Row{"Instance", "Selector", "Family", "Exit", "Duration", "Status"})
	for _, j := range sum.Jobs {
		status := "ok"
		if j.Failed() {
			status = "FAILED"
		}
		w.AppendRow(table.Row{
			j.Name, j.Selector, j.Family, j.ExitCode,
			(time.Duration(j.DurationMS) * time.Millisecond).String(),
			status,
		})
	}
	w.AppendFooter(table.Row{
		"run " + sum.RunID, "", "",
		fmt.Sprintf("%d jobs", len(sum.Jobs)), "",
		fmt.Sprintf("%d failed", sum.Failed()),
	})
	w.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	if mode == Markdown {
		return w.RenderMarkdown()
	}
	return w.Render()
}

// Runs renders the history listing, most recent first.
func Runs(runs []Row, mode Mode) string {
	w := table.NewWriter()
	if mode == ASCII {
		w.SetStyle(table.StyleLight)
	}
	w.AppendHeader(table.Row{"Run", "Started", "Jobs", "Failed", "Dir"})
	for _, r := range runs {
		w.AppendRow(table.Row{r.RunID, r.StartedAt, r.Jobs, r.Failed, r.Dir})
	}
	if mode == Markdown {
		return w.RenderMarkdown()
	}
	return w.Render()
}

// Row is one line of the history listing.
type Row struct {
	RunID     string
	StartedAt string
	Jobs      int
	Failed    int
	Dir       string
}
