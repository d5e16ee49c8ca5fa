package dashboard

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/gpumon/internal/api"
	"github.com/rileyhilliard/gpumon/internal/query"
	"github.com/rileyhilliard/gpumon/internal/stats"
	"github.com/rileyhilliard/gpumon/internal/table"
)

// LayoutMode is the responsive layout chosen from the terminal width.
type LayoutMode int

const (
	LayoutCompact LayoutMode = iota
	LayoutStandard
	LayoutWide
)

// Width breakpoints for layout modes
const (
	BreakpointStandard = 120
	BreakpointWide     = 160
)

// HealthState is the header's connection indicator.
type HealthState int

const (
	HealthChecking HealthState = iota
	HealthConnected
	HealthDisconnected
)

// String returns the indicator label.
func (h HealthState) String() string {
	switch h {
	case HealthConnected:
		return "connected"
	case HealthDisconnected:
		return "connection error"
	default:
		return "checking"
	}
}

// clockInterval re-renders relative timestamps.
const clockInterval = time.Second

// sparklineWidth is the number of history samples drawn per GPU.
const sparklineWidth = 12

// Options configures a Model.
type Options struct {
	Client          *query.Client
	MetricsInterval time.Duration
	HealthInterval  time.Duration
	AutoRefresh     bool
	PageSize        int
	// Now replaces time.Now, for tests.
	Now func() time.Time
}

// Model is the Bubble Tea model for the GPU dashboard.
type Model struct {
	client        *query.Client
	metricsPoller *query.Poller
	healthPoller  *query.Poller
	subs          map[query.Key]*query.Subscription
	snapshots     map[query.Key]query.Snapshot

	table      *table.Table
	generation uint64
	dataStamp  time.Time
	history    *History

	selectedCol int
	viewMode    ViewMode
	autoRefresh bool
	filtering   bool
	filterInput textinput.Model
	spinner     spinner.Model
	help        help.Model
	keys        KeyMap
	showHelp    bool

	width    int
	height   int
	now      func() time.Time
	quitting bool
}

// queryUpdateMsg carries a cache snapshot from a subscription.
type queryUpdateMsg struct {
	snap query.Snapshot
}

// fetchDoneMsg reports that a fetch started by the model finished. The result
// itself is read back from the cache.
type fetchDoneMsg struct {
	key query.Key
	err error
}

// clockTickMsg re-renders relative times.
type clockTickMsg time.Time

// NewModel creates the dashboard model and subscribes it to the metrics,
// health and nodes queries. Call Start to begin polling and Stop when done.
func NewModel(opts Options) Model {
	if opts.MetricsInterval <= 0 {
		opts.MetricsInterval = query.MetricsPollInterval
	}
	if opts.HealthInterval <= 0 {
		opts.HealthInterval = query.HealthPollInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{Frames: SpinnerFrames, FPS: time.Second / 10}
	sp.Style = TitleStyle

	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "node, model, value..."
	ti.CharLimit = 64

	metricsPoller := query.NewPoller(opts.Client, query.KeyMetrics, opts.MetricsInterval)
	metricsPoller.SetEnabled(opts.AutoRefresh)

	m := Model{
		client:        opts.Client,
		metricsPoller: metricsPoller,
		healthPoller:  query.NewPoller(opts.Client, query.KeyHealth, opts.HealthInterval),
		subs:          make(map[query.Key]*query.Subscription),
		snapshots:     make(map[query.Key]query.Snapshot),
		table:         table.New(opts.PageSize),
		history:       NewHistory(DefaultHistorySize),
		selectedCol:   int(table.ColumnUtilization),
		autoRefresh:   opts.AutoRefresh,
		filterInput:   ti,
		spinner:       sp,
		help:          help.New(),
		keys:          DefaultKeyMap(),
		now:           opts.Now,
	}

	for _, key := range []query.Key{query.KeyMetrics, query.KeyHealth, query.KeyNodes} {
		m.subs[key] = opts.Client.Subscribe(key)
		m.snapshots[key] = opts.Client.State(key)
	}
	return m
}

// Start begins polling. Health polling always runs; metrics polling follows
// the auto-refresh toggle.
func (m Model) Start(ctx context.Context) {
	m.metricsPoller.Start(ctx)
	m.healthPoller.Start(ctx)
}

// Stop halts the pollers and releases the subscriptions.
func (m Model) Stop() {
	m.metricsPoller.Stop()
	m.healthPoller.Stop()
	for _, sub := range m.subs {
		sub.Close()
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		m.clockTickCmd(),
		m.fetchCmd(query.KeyMetrics),
		m.fetchCmd(query.KeyHealth),
	}
	for _, sub := range m.subs {
		cmds = append(cmds, waitForUpdate(sub))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.filtering {
			return m, m.handleFilterKey(msg)
		}
		_, cmd := m.HandleKeyMsg(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case clockTickMsg:
		return m, m.clockTickCmd()

	case queryUpdateMsg:
		m.applySnapshot(msg.snap)
		return m, waitForUpdate(m.subs[msg.snap.Key])

	case fetchDoneMsg:
		m.applySnapshot(m.client.State(msg.key))
		return m, nil
	}

	if m.filtering {
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderDashboard()
}

// applySnapshot records a cache snapshot. A metrics result with a new
// UpdatedAt replaces the table's dataset wholesale.
func (m *Model) applySnapshot(snap query.Snapshot) {
	m.snapshots[snap.Key] = snap
	if snap.Key != query.KeyMetrics {
		return
	}

	if snap.Status != query.StatusSuccess || snap.UpdatedAt.Equal(m.dataStamp) {
		return
	}
	// An unsuccessful envelope is a successful fetch with no rows.
	rows, _ := query.GPUMetrics(snap)
	m.dataStamp = snap.UpdatedAt
	m.generation++
	m.table.SetData(rows, m.generation)
	m.history.Record(rows)
}

// SetAutoRefresh enables or disables metrics polling. A request already in
// flight is not aborted.
func (m *Model) SetAutoRefresh(enabled bool) {
	m.autoRefresh = enabled
	m.metricsPoller.SetEnabled(enabled)
}

// AutoRefresh reports whether metrics polling is enabled.
func (m Model) AutoRefresh() bool {
	return m.autoRefresh
}

// SelectedColumn returns the column the sort key acts on.
func (m Model) SelectedColumn() table.Column {
	return table.Columns[m.selectedCol]
}

// Table exposes the table state.
func (m Model) Table() *table.Table {
	return m.table
}

// ViewMode returns the active body.
func (m Model) ViewMode() ViewMode {
	return m.viewMode
}

// Snapshot returns the last cache snapshot the model saw for key.
func (m Model) Snapshot(key query.Key) query.Snapshot {
	return m.snapshots[key]
}

// Rows returns the metrics dataset, or nil while the metrics query is
// loading or failed.
func (m Model) Rows() []api.GPUMetrics {
	if m.snapshots[query.KeyMetrics].Status != query.StatusSuccess {
		return nil
	}
	return m.table.Data()
}

// Summary computes the stats cards from the current dataset.
func (m Model) Summary() stats.Summary {
	return stats.Compute(m.Rows())
}

// Health derives the connection indicator from the health query.
func (m Model) Health() HealthState {
	snap := m.snapshots[query.KeyHealth]
	switch snap.Status {
	case query.StatusError:
		return HealthDisconnected
	case query.StatusSuccess:
		env, ok := query.HealthPayload(snap)
		if ok && env.Success {
			return HealthConnected
		}
		return HealthDisconnected
	default:
		return HealthChecking
	}
}

// LayoutMode returns the layout for the current terminal width.
func (m Model) LayoutMode() LayoutMode {
	switch {
	case m.width >= BreakpointWide:
		return LayoutWide
	case m.width >= BreakpointStandard:
		return LayoutStandard
	default:
		return LayoutCompact
	}
}

func (m Model) fetchCmd(key query.Key) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		_, err := client.Fetch(context.Background(), key)
		return fetchDoneMsg{key: key, err: err}
	}
}

func (m Model) refetchCmd(key query.Key) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		_, err := client.Refetch(context.Background(), key)
		return fetchDoneMsg{key: key, err: err}
	}
}

func (m Model) clockTickCmd() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg {
		return clockTickMsg(t)
	})
}

// waitForUpdate blocks on the subscription's next snapshot. A closed
// subscription ends the chain.
func waitForUpdate(sub *query.Subscription) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-sub.Updates()
		if !ok {
			return nil
		}
		return queryUpdateMsg{snap: snap}
	}
}
