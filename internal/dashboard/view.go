package dashboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/rileyhilliard/gpumon/internal/api"
	"github.com/rileyhilliard/gpumon/internal/format"
	"github.com/rileyhilliard/gpumon/internal/query"
	"github.com/rileyhilliard/gpumon/internal/table"
)

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderStats())
	b.WriteString("\n\n")

	if m.viewMode == ViewNodes {
		b.WriteString(m.renderNodes())
	} else {
		b.WriteString(m.renderTable())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderHeader renders the title, health indicator, refresh state and age.
func (m Model) renderHeader() string {
	title := TitleStyle.Render("gpumon")

	var indicator string
	switch health := m.Health(); health {
	case HealthConnected:
		indicator = lipgloss.NewStyle().Foreground(ColorHealthy).Render(StatusConnected + " " + health.String())
	case HealthDisconnected:
		indicator = lipgloss.NewStyle().Foreground(ColorCritical).Render(StatusDisconnected + " " + health.String())
	default:
		indicator = LabelStyle.Render(StatusChecking + " " + health.String())
	}

	refresh := "auto-refresh off"
	if m.autoRefresh {
		refresh = "auto-refresh on"
	}

	metrics := m.snapshots[query.KeyMetrics]
	updated := "never"
	if metrics.HasValue() {
		updated = format.RelativeTime(metrics.UpdatedAt, m.now())
	}

	parts := []string{refresh, "updated " + updated}
	if metrics.Fetching {
		parts = append(parts, m.spinner.View()+" refreshing")
	}
	info := LabelStyle.Render(" | " + strings.Join(parts, " | "))

	return HeaderStyle.Render(title + "  " + indicator + info)
}

// renderStats renders the four summary cards.
func (m Model) renderStats() string {
	s := m.Summary()

	alerts := lipgloss.NewStyle().Foreground(ColorHealthy)
	if s.HasAlerts() {
		alerts = alerts.Foreground(ColorCritical)
	}

	cards := []string{
		renderCard("Total GPUs",
			CardValueStyle.Render(strconv.Itoa(s.TotalGPUs))+
				MutedStyle.Render(fmt.Sprintf(" %d active · %d nodes", s.ActiveGPUs, s.NodeCount))),
		renderCard("Avg Utilization",
			UtilizationStyle(s.AverageUtilization).Bold(true).Render(format.Percentage(s.AverageUtilization, 1))),
		renderCard("High Temp Alerts",
			alerts.Bold(true).Render(strconv.Itoa(s.HighTempGPUs))),
		renderCard("Active Ratio",
			CardValueStyle.Render(format.Percentage(s.ActivePercent(), 1))),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func renderCard(title, value string) string {
	return CardStyle.Render(CardTitleStyle.Render(title) + "\n" + value)
}

// renderTable renders the metrics body: a spinner while loading, the error
// panel on failure, or the current page.
func (m Model) renderTable() string {
	snap := m.snapshots[query.KeyMetrics]
	switch snap.Status {
	case query.StatusLoading:
		return m.spinner.View() + LabelStyle.Render(" Loading GPU metrics...")
	case query.StatusError:
		return renderErrorPanel("Failed to load GPU metrics", snap.Err)
	}

	page := m.table.Page()
	if page.Filtered == 0 {
		return MutedStyle.Render("No data")
	}

	sort := m.table.Sort()
	headers := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		title := col.Title()
		if sort.Direction != table.SortNone && sort.Column == col {
			title += " " + sort.Direction.Indicator()
		}
		headers[i] = title
	}

	wide := m.LayoutMode() == LayoutWide
	rows := make([][]string, len(page.Rows))
	for i, r := range page.Rows {
		row := make([]string, len(table.Columns))
		for j, col := range table.Columns {
			row[j] = col.Display(r)
		}
		row[table.ColumnUtilization] = m.renderUtilizationCell(r, wide)
		rows[i] = row
	}

	selected := m.selectedCol
	t := ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorBorder)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				if col == selected {
					return TableHeaderSelectedStyle
				}
				return TableHeaderStyle
			}
			if row < 0 || row >= len(page.Rows) {
				return TableCellStyle
			}
			switch table.Column(col) {
			case table.ColumnTemperature:
				return TemperatureStyle(page.Rows[row].Temperature).Padding(0, 1)
			case table.ColumnMemoryUtil:
				return UtilizationStyle(page.Rows[row].MemoryUtilization).Padding(0, 1)
			}
			return TableCellStyle
		})

	return t.Render() + "\n" + m.renderPagination(page)
}

// renderUtilizationCell renders a bar, the percentage, and in wide layouts
// the GPU's recent history.
func (m Model) renderUtilizationCell(r api.GPUMetrics, wide bool) string {
	cell := ProgressBar(8, r.Utilization) + " " +
		UtilizationStyle(r.Utilization).Render(format.Percentage(r.Utilization, 1))
	if wide {
		if spark := RenderSparkline(m.history.Utilization(r.Key(), sparklineWidth), sparklineWidth); spark != "" {
			cell += " " + spark
		}
	}
	return cell
}

func (m Model) renderPagination(page table.Page) string {
	text := fmt.Sprintf("Page %d of %d · %d GPUs", page.Index+1, page.Count, page.Filtered)
	if page.Filtered != page.Total {
		text += fmt.Sprintf(" (filtered from %d)", page.Total)
	}
	if f := m.table.Filter(); f != "" {
		text += fmt.Sprintf(" · filter %q", f)
	}
	return MutedStyle.Render(text)
}

// renderNodes renders the GPU node inventory.
func (m Model) renderNodes() string {
	snap := m.snapshots[query.KeyNodes]
	switch snap.Status {
	case query.StatusLoading:
		return m.spinner.View() + LabelStyle.Render(" Loading GPU nodes...")
	case query.StatusError:
		return renderErrorPanel("Failed to load GPU nodes", snap.Err)
	}

	nodes, _ := query.GPUNodes(snap)
	if len(nodes) == 0 {
		return MutedStyle.Render("No data")
	}

	rows := make([][]string, len(nodes))
	for i, n := range nodes {
		rows[i] = []string{n.NodeName, strconv.Itoa(n.GPUCount), strings.Join(n.GPUModels, ", ")}
	}
	t := ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorBorder)).
		Headers("Node", "GPUs", "Models").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
	return t.Render() + "\n" + MutedStyle.Render(fmt.Sprintf("%d nodes", len(nodes)))
}

// renderErrorPanel renders a failed query. Stale rows are never shown next to it.
func renderErrorPanel(title string, err error) string {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	body := lipgloss.NewStyle().Bold(true).Render("✗ "+title) + "\n\n" +
		msg + "\n\n" +
		MutedStyle.Render("Press r to retry")
	return ErrorPanelStyle.Render(body)
}

// renderFooter renders the filter prompt while editing, else the key hints.
func (m Model) renderFooter() string {
	if m.filtering {
		return FilterPromptStyle.Render("/ ") + m.filterInput.View() +
			MutedStyle.Render("  enter apply · esc cancel")
	}
	return FooterStyle.Render(m.help.View(m.keys))
}
