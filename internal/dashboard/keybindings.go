package dashboard

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/gpumon/internal/query"
	"github.com/rileyhilliard/gpumon/internal/table"
)

// ViewMode is the dashboard's current body.
type ViewMode int

const (
	ViewTable ViewMode = iota
	ViewNodes
)

// String returns a human-readable label for the view.
func (v ViewMode) String() string {
	if v == ViewNodes {
		return "nodes"
	}
	return "gpus"
}

// KeyMap holds the dashboard's key bindings. It implements help.KeyMap.
type KeyMap struct {
	Quit        key.Binding
	Refresh     key.Binding
	AutoRefresh key.Binding
	ColumnPrev  key.Binding
	ColumnNext  key.Binding
	Sort        key.Binding
	Filter      key.Binding
	NextPage    key.Binding
	PrevPage    key.Binding
	ToggleView  key.Binding
	Help        key.Binding
	Close       key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		AutoRefresh: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "auto-refresh"),
		),
		ColumnPrev: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev column"),
		),
		ColumnNext: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next column"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("n", "pgdown"),
			key.WithHelp("n", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("p", "pgup"),
			key.WithHelp("p", "prev page"),
		),
		ToggleView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "gpus/nodes"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
	}
}

// ShortHelp is shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Refresh, k.AutoRefresh, k.Sort, k.Filter, k.ToggleView, k.Help}
}

// FullHelp is shown in the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Quit, k.Refresh, k.AutoRefresh, k.ToggleView},
		{k.ColumnPrev, k.ColumnNext, k.Sort, k.Filter},
		{k.NextPage, k.PrevPage, k.Help, k.Close},
	}
}

// HandleKeyMsg processes keyboard input outside of filter editing.
// Returns true if the key was handled.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	// Help toggle takes priority
	if key.Matches(msg, m.keys.Help) {
		m.showHelp = !m.showHelp
		return true, nil
	}
	if m.showHelp && key.Matches(msg, m.keys.Close) {
		m.showHelp = false
		return true, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return true, tea.Quit

	case key.Matches(msg, m.keys.Refresh):
		if m.viewMode == ViewNodes {
			return true, m.refetchCmd(query.KeyNodes)
		}
		return true, m.refetchCmd(query.KeyMetrics)

	case key.Matches(msg, m.keys.AutoRefresh):
		m.SetAutoRefresh(!m.autoRefresh)
		return true, nil

	case key.Matches(msg, m.keys.ToggleView):
		if m.viewMode == ViewTable {
			m.viewMode = ViewNodes
			return true, m.fetchCmd(query.KeyNodes)
		}
		m.viewMode = ViewTable
		return true, nil
	}

	if m.viewMode != ViewTable {
		return false, nil
	}

	switch {
	case key.Matches(msg, m.keys.ColumnPrev):
		if m.selectedCol > 0 {
			m.selectedCol--
		}
		return true, nil

	case key.Matches(msg, m.keys.ColumnNext):
		if m.selectedCol < len(table.Columns)-1 {
			m.selectedCol++
		}
		return true, nil

	case key.Matches(msg, m.keys.Sort):
		m.table.ToggleSort(m.SelectedColumn())
		return true, nil

	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.filterInput.SetValue(m.table.Filter())
		m.filterInput.CursorEnd()
		return true, m.filterInput.Focus()

	case key.Matches(msg, m.keys.NextPage):
		m.table.NextPage()
		return true, nil

	case key.Matches(msg, m.keys.PrevPage):
		m.table.PrevPage()
		return true, nil
	}

	return false, nil
}

// handleFilterKey edits the filter. Enter applies, Esc restores the previous
// filter; everything else goes to the text input.
func (m *Model) handleFilterKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return tea.Quit
	case tea.KeyEnter:
		m.table.SetFilter(m.filterInput.Value())
		m.filtering = false
		m.filterInput.Blur()
		return nil
	case tea.KeyEsc:
		m.filterInput.SetValue(m.table.Filter())
		m.filtering = false
		m.filterInput.Blur()
		return nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return cmd
}
