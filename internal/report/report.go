// Path: internal/report/report.go

// Package report renders run summaries, stored history and overlap reports
// for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/guptarohit/asciigraph"
	"github.com/jedib0t/go-pretty/v6/table"

	"commit-tracker/internal/domain"
	"commit-tracker/internal/service"
)

const (
	chartHeight    = 10
	minChartPoints = 2
	sampleLimit    = 3
	sampleMsgLimit = 80
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func comma(n int) string {
	return humanize.Comma(int64(n))
}

func percent(r domain.DailyRecord) string {
	if !r.Valid() {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", r.Ratio())
}

func countRow(rec domain.DailyRecord, labels []string) table.Row {
	row := table.Row{rec.Date}
	for _, label := range labels {
		row = append(row, comma(rec.Counts[label]))
	}
	return append(row, comma(rec.Combined), comma(rec.TotalCommits), comma(rec.DistinctRepos), percent(rec))
}

func countHeader(labels []string) table.Row {
	header := table.Row{"Date"}
	for _, label := range labels {
		header = append(header, label)
	}
	return append(header, "Combined", "Total commits", "Repos", "Share")
}

// Summary prints the outcome of a collection run.
func Summary(w io.Writer, s *service.RunSummary, labels []string, policy domain.CombinePolicy) {
	if len(s.Skipped) > 0 {
		fmt.Fprintf(w, "Skipped %d date(s) already stored: %s\n", len(s.Skipped), strings.Join(s.Skipped, ", "))
	}
	if len(s.Days) == 0 {
		fmt.Fprintln(w, "No dates processed.")
		return
	}

	t := newTable(w)
	t.SetTitle("Run summary (combined = %s)", policy)
	t.AppendHeader(append(countHeader(labels), "Status"))

	var combined, total int
	repos := make(map[string]struct{})
	for _, day := range s.Days {
		status := string(day.Outcome)
		if len(day.Record.Degraded) > 0 {
			status += " (degraded: " + strings.Join(day.Record.Degraded, ",") + ")"
		}
		t.AppendRow(append(countRow(day.Record, labels), status))
		if day.Outcome == service.OutcomeStored {
			combined += day.Record.Combined
			total += day.Record.TotalCommits
			for _, r := range day.Record.Repos {
				repos[r] = struct{}{}
			}
		}
	}

	footer := table.Row{"TOTAL"}
	for range labels {
		footer = append(footer, "")
	}
	share := "-"
	if total > 0 {
		share = fmt.Sprintf("%.2f%%", float64(combined)/float64(total)*100)
	}
	t.AppendFooter(append(footer, comma(combined), comma(total), comma(len(repos)), share, ""))
	t.Render()

	if policy == domain.PolicySum {
		fmt.Fprintln(w, "Note: combined counts are summed across patterns and may double count (upper bound).")
	}
	printSamples(w, s)
}

func printSamples(w io.Writer, s *service.RunSummary) {
	for _, day := range s.Days {
		if len(day.Record.Samples) == 0 {
			continue
		}
		fmt.Fprintln(w, "\nSample commits:")
		for i, sample := range day.Record.Samples {
			if i == sampleLimit {
				break
			}
			msg := firstLine(sample.Message, sampleMsgLimit)
			fmt.Fprintf(w, "  [%s] %s\n           %s\n", sample.SHA, sample.Repo, msg)
		}
		return
	}
}

// firstLine returns the first line of msg, cut to at most limit characters.
func firstLine(msg string, limit int) string {
	line := []rune(strings.SplitN(msg, "\n", 2)[0])
	if len(line) > limit {
		line = line[:limit]
	}
	return string(line)
}

// History prints every stored record and a chart of the daily share.
func History(w io.Writer, h domain.History, labels []string) {
	records := h.Records()
	if len(records) == 0 {
		fmt.Fprintln(w, "No history stored yet.")
		return
	}

	t := newTable(w)
	t.SetTitle("Stored history (%d days)", len(records))
	t.AppendHeader(countHeader(labels))
	for _, rec := range records {
		t.AppendRow(countRow(rec, labels))
	}
	t.Render()

	if chart := Chart(records); chart != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, chart)
	}
}

// Chart plots the daily share of matching commits. Days without a
// denominator are left out. It returns "" when there is too little data.
func Chart(records []domain.DailyRecord) string {
	var data []float64
	for _, rec := range records {
		if rec.Valid() {
			data = append(data, rec.Ratio())
		}
	}
	if len(data) < minChartPoints {
		return ""
	}

	caption := fmt.Sprintf("share of commits (%%), %s to %s", records[0].Date, records[len(records)-1].Date)
	return asciigraph.Plot(data,
		asciigraph.Height(chartHeight),
		asciigraph.Precision(2),
		asciigraph.Caption(caption),
	)
}

// Overlap prints an overlap report and its policy conclusion.
func Overlap(w io.Writer, r *domain.OverlapReport) {
	t := newTable(w)
	t.SetTitle("Overlap verification - %s", r.Date)
	t.AppendHeader(table.Row{"Pattern", "total_count", "SHA fetched"})
	t.AppendRow(table.Row{r.LabelA, comma(r.TotalA), comma(r.FetchedA)})
	t.AppendRow(table.Row{r.LabelB, comma(r.TotalB), comma(r.FetchedB)})
	t.AppendSeparator()
	t.AppendRow(table.Row{"Intersection", "", comma(r.Intersection)})
	t.AppendRow(table.Row{"Union", "", comma(r.Union)})
	t.AppendRow(table.Row{fmt.Sprintf("%% %s in %s", r.LabelB, r.LabelA), "", fmt.Sprintf("%.1f%%", r.PctBInA*100)})
	t.AppendRow(table.Row{fmt.Sprintf("%% %s in %s", r.LabelA, r.LabelB), "", fmt.Sprintf("%.1f%%", r.PctAInB*100)})
	t.Render()

	if r.Capped {
		color.New(color.FgYellow).Fprintf(w, "Note: at least one query exceeds %d results; overlap is estimated from a sample.\n", domain.ResultWindow)
	} else {
		fmt.Fprintln(w, "Complete data: every matching SHA was downloaded.")
	}
	if r.Partial {
		color.New(color.FgYellow).Fprintln(w, "Note: paging stopped early on an error; sets are incomplete.")
	}

	if r.FetchedB == 0 {
		return
	}
	if r.Recommendation == domain.PolicyMax {
		color.New(color.FgGreen).Fprintf(w, "Conclusion: high overlap -> use max(%s, %s)\n", r.LabelA, r.LabelB)
	} else {
		color.New(color.FgCyan).Fprintln(w, "Conclusion: low overlap -> summing adds information (upper bound, may double count)")
	}
}
