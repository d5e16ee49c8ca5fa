package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/gpumon/internal/api"
	"github.com/rileyhilliard/gpumon/internal/dashboard"
	"github.com/rileyhilliard/gpumon/internal/format"
	"github.com/rileyhilliard/gpumon/internal/stats"
	"github.com/rileyhilliard/gpumon/internal/table"
)

// newTable returns a bordered lipgloss table in the dashboard's style.
func newTable(headers ...string) *ltable.Table {
	return ltable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(dashboard.ColorBorder)).
		Headers(headers...)
}

// renderMetricsTable draws one page of GPU rows with every column.
func renderMetricsTable(rows []api.GPUMetrics, sorted table.Sort) string {
	headers := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		headers[i] = c.Title()
		if sorted.Direction != table.SortNone && sorted.Column == c {
			headers[i] += " " + sorted.Direction.Indicator()
		}
	}

	t := newTable(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return dashboard.TableHeaderStyle
			}
			if row < 0 || row >= len(rows) {
				return dashboard.TableCellStyle
			}
			switch table.Columns[col] {
			case table.ColumnUtilization:
				return dashboard.TableCellStyle.Foreground(dashboard.UtilizationStyle(rows[row].Utilization).GetForeground())
			case table.ColumnTemperature:
				return dashboard.TableCellStyle.Foreground(dashboard.TemperatureStyle(rows[row].Temperature).GetForeground())
			}
			return dashboard.TableCellStyle
		})

	for _, m := range rows {
		cells := make([]string, len(table.Columns))
		for i, c := range table.Columns {
			cells[i] = c.Display(m)
		}
		t.Row(cells...)
	}
	return t.Render()
}

// summaryLine condenses stats.Summary into one line of text.
func summaryLine(s stats.Summary) string {
	parts := []string{
		fmt.Sprintf("%s GPUs on %s nodes", humanize.Comma(int64(s.TotalGPUs)), humanize.Comma(int64(s.NodeCount))),
		"avg utilization " + format.Percentage(s.AverageUtilization, 1),
		fmt.Sprintf("%d active (%s)", s.ActiveGPUs, format.Percentage(s.ActivePercent(), 0)),
		fmt.Sprintf("%d high temp", s.HighTempGPUs),
	}
	return strings.Join(parts, " · ")
}

// pageLine describes the page position, mirroring the dashboard footer.
func pageLine(p table.Page, filter string) string {
	line := fmt.Sprintf("Page %d of %d · %s GPUs", p.Index+1, p.Count, humanize.Comma(int64(p.Filtered)))
	if p.Filtered != p.Total {
		line += fmt.Sprintf(" (filtered from %s)", humanize.Comma(int64(p.Total)))
	}
	if filter != "" {
		line += fmt.Sprintf(" · filter %q", filter)
	}
	return line
}

// latestTimestamp returns the newest sample time among rows.
func latestTimestamp(rows []api.GPUMetrics) time.Time {
	var latest time.Time
	for _, m := range rows {
		if m.Timestamp.After(latest) {
			latest = m.Timestamp
		}
	}
	return latest
}

// updatedLine renders "updated 5 seconds ago", or "" with no timestamp.
func updatedLine(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	return "updated " + humanize.RelTime(t, now, "ago", "from now")
}

func writeLines(w io.Writer, lines ...string) {
	for _, l := range lines {
		if l == "" {
			continue
		}
		fmt.Fprintln(w, l)
	}
}
