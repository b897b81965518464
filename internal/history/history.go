// Package history builds the display rows for the cycle history list.
package history

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/SoarinFerret/CycleWarden/internal/countdown"
	"github.com/SoarinFerret/CycleWarden/internal/cycle"
)

// Row is one line of the history list.
type Row struct {
	ID        string       `json:"id" yaml:"id"`
	Task      string       `json:"task" yaml:"task"`
	Duration  string       `json:"duration" yaml:"duration"`
	Started   string       `json:"started" yaml:"started"`
	StartDate time.Time    `json:"startDate" yaml:"startDate"`
	Status    cycle.Status `json:"status" yaml:"status"`
}

// Rows returns the history newest first, with start times relative to now.
func Rows(state cycle.State, now time.Time) []Row {
	rows := make([]Row, 0, len(state.Cycles))
	for _, c := range state.Cycles {
		rows = append(rows, Row{
			ID:        c.ID,
			Task:      c.Task,
			Duration:  formatMinutes(c.MinutesAmount),
			Started:   humanize.RelTime(c.StartDate, now, "ago", "from now"),
			StartDate: c.StartDate,
			Status:    c.Status(),
		})
	}
	// cycles are stored in creation order
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].StartDate.After(rows[j].StartDate)
	})
	return rows
}

func formatMinutes(m int) string {
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}

// DaySummary aggregates the cycles started on one calendar day.
type DaySummary struct {
	Date        string `json:"date" yaml:"date"`
	Completed   int    `json:"completed" yaml:"completed"`
	Interrupted int    `json:"interrupted" yaml:"interrupted"`
	InProgress  int    `json:"inProgress" yaml:"inProgress"`
	// whole seconds of elapsed cycle time
	FocusedSeconds int64 `json:"focusedSeconds" yaml:"focusedSeconds"`
}

// Focused is FocusedSeconds as a duration.
func (s DaySummary) Focused() time.Duration {
	return time.Duration(s.FocusedSeconds) * time.Second
}

// Summary counts cycles started on day (in day's location). Focused time is
// the elapsed time of each cycle, measured up to now for a running one.
func Summary(state cycle.State, day, now time.Time) DaySummary {
	y, m, d := day.Date()
	loc := day.Location()
	from := time.Date(y, m, d, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 0, 1)

	s := DaySummary{Date: from.Format(time.DateOnly)}
	for _, c := range state.Cycles {
		start := c.StartDate.In(loc)
		if start.Before(from) || !start.Before(to) {
			continue
		}
		end := now
		switch c.Status() {
		case cycle.StatusCompleted:
			s.Completed++
			end = c.EndDate()
		case cycle.StatusInterrupted:
			s.Interrupted++
			end = c.EndDate()
		default:
			s.InProgress++
		}
		s.FocusedSeconds += countdown.Derive(c, end).Elapsed
	}
	return s
}

// Format selects a renderer.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Write renders rows to w in the given format.
func Write(w io.Writer, rows []Row, format Format) error {
	if format == FormatTable || format == "" {
		return writeTable(w, rows)
	}
	return encode(w, rows, format)
}

// WriteSummary renders s as one line, or as a JSON/YAML document.
func WriteSummary(w io.Writer, s DaySummary, format Format) error {
	if format == FormatTable || format == "" {
		_, err := fmt.Fprintf(w, "%s: %d completed, %d interrupted, %d in progress, %s focused\n",
			s.Date, s.Completed, s.Interrupted, s.InProgress, s.Focused())
		return err
	}
	return encode(w, s, format)
}

func encode(w io.Writer, v any, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeTable(w io.Writer, rows []Row) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No cycles yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tDURATION\tSTARTED\tSTATUS")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Task, r.Duration, r.Started, r.Status)
	}
	return tw.Flush()
}
