package dashboard

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/gpumon/internal/api"
	"github.com/rileyhilliard/gpumon/internal/logger"
	"github.com/rileyhilliard/gpumon/internal/query"
	"github.com/rileyhilliard/gpumon/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend serves canned results to the query client.
type fakeBackend struct {
	mu      sync.Mutex
	metrics []api.GPUMetrics
	nodes   []api.GPUNode
	healthy bool
	err     error
}

func (f *fakeBackend) set(fn func(*fakeBackend)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeBackend) Health(ctx context.Context) (*api.Envelope[api.Health], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &api.Envelope[api.Health]{Success: f.healthy, Data: &api.Health{Status: "healthy"}}, nil
}

func (f *fakeBackend) GPUMetrics(ctx context.Context) (*api.Envelope[[]api.GPUMetrics], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	rows := append([]api.GPUMetrics(nil), f.metrics...)
	return &api.Envelope[[]api.GPUMetrics]{Success: true, Data: &rows}, nil
}

func (f *fakeBackend) GPUNodes(ctx context.Context) (*api.Envelope[[]api.GPUNode], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	nodes := append([]api.GPUNode(nil), f.nodes...)
	return &api.Envelope[[]api.GPUNode]{Success: true, Data: &nodes}, nil
}

func (f *fakeBackend) GPUUtilization(ctx context.Context) (*api.Envelope[[]api.GPUUtilization], error) {
	return &api.Envelope[[]api.GPUUtilization]{Success: true}, nil
}

// steppingClock advances by one second every time it is read.
type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func gpuRows(n int) []api.GPUMetrics {
	rows := make([]api.GPUMetrics, n)
	for i := range rows {
		rows[i] = api.GPUMetrics{
			NodeName:    fmt.Sprintf("node-%02d", i),
			GPUIndex:    0,
			GPUName:     "NVIDIA A100",
			Utilization: float64(i * 3 % 100),
			MemoryUsed:  10,
			MemoryTotal: 80,
			Temperature: 55,
			PowerDraw:   200,
			PowerLimit:  400,
		}
	}
	return rows
}

func newTestModel(t *testing.T, backend *fakeBackend) (Model, *query.Client) {
	t.Helper()
	clock := &steppingClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	client := query.NewClient(query.WithLogger(logger.Noop()), query.WithClock(clock.Now))
	t.Cleanup(client.Close)

	opts := query.DefaultOptions()
	opts.Retry = 0
	opts.RetryDelay = time.Millisecond
	query.RegisterAPI(client, backend, opts)

	m := NewModel(Options{
		Client:      client,
		AutoRefresh: true,
		PageSize:    10,
		Now:         clock.Now,
	})
	t.Cleanup(m.Stop)
	return m, client
}

// fetch runs a fetch synchronously and delivers the result like the runtime would.
func fetch(t *testing.T, m Model, client *query.Client, key query.Key, refetch bool) Model {
	t.Helper()
	var err error
	if refetch {
		_, err = client.Refetch(context.Background(), key)
	} else {
		_, err = client.Fetch(context.Background(), key)
	}
	updated, _ := m.Update(fetchDoneMsg{key: key, err: err})
	return updated.(Model)
}

func press(m Model, k tea.KeyMsg) (Model, tea.Cmd) {
	updated, cmd := m.Update(k)
	return updated.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModel(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{})

	assert.True(t, m.AutoRefresh())
	assert.Equal(t, ViewTable, m.ViewMode())
	assert.Equal(t, table.ColumnUtilization, m.SelectedColumn())
	assert.Equal(t, query.StatusLoading, m.Snapshot(query.KeyMetrics).Status)
	assert.NotNil(t, m.Init())
}

func TestView_LoadingShowsSpinner(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{})

	view := m.View()
	assert.Contains(t, view, "Loading GPU metrics")
	assert.Contains(t, view, "checking")
}

func TestView_TimeoutShowsErrorPanel(t *testing.T) {
	backend := &fakeBackend{err: &api.Error{Kind: api.KindTimeout, Message: "Request timeout"}}
	m, client := newTestModel(t, backend)

	m = fetch(t, m, client, query.KeyMetrics, false)

	view := m.View()
	assert.Contains(t, view, "Failed to load GPU metrics")
	assert.Contains(t, view, "Request timeout")
	assert.NotContains(t, view, "Loading GPU metrics")
}

func TestView_RendersRowsAndStats(t *testing.T) {
	backend := &fakeBackend{metrics: []api.GPUMetrics{
		{NodeName: "alpha", GPUName: "A100", Utilization: 95, Temperature: 85, MemoryTotal: 80},
		{NodeName: "beta", GPUIndex: 1, GPUName: "A100", Utilization: 2, Temperature: 40, MemoryTotal: 80},
	}}
	m, client := newTestModel(t, backend)
	m = fetch(t, m, client, query.KeyMetrics, false)

	view := m.View()
	assert.Contains(t, view, "alpha")
	assert.Contains(t, view, "beta")
	assert.Contains(t, view, "95.0%")
	assert.Contains(t, view, "48.5%")
	assert.Contains(t, view, "Page 1 of 1")

	s := m.Summary()
	assert.Equal(t, 2, s.TotalGPUs)
	assert.Equal(t, 1, s.ActiveGPUs)
	assert.Equal(t, 1, s.HighTempGPUs)
}

func TestView_ErrorHidesStaleRows(t *testing.T) {
	backend := &fakeBackend{metrics: gpuRows(3)}
	m, client := newTestModel(t, backend)
	m = fetch(t, m, client, query.KeyMetrics, false)
	require.Contains(t, m.View(), "node-01")

	backend.set(func(b *fakeBackend) {
		b.err = &api.Error{Kind: api.KindServer, StatusCode: 500, Message: "Server error"}
	})
	m = fetch(t, m, client, query.KeyMetrics, true)

	view := m.View()
	assert.Contains(t, view, "Server error")
	assert.NotContains(t, view, "node-01")
	assert.Equal(t, 0, m.Summary().TotalGPUs)
}

func TestView_NoData(t *testing.T) {
	m, client := newTestModel(t, &fakeBackend{})
	m = fetch(t, m, client, query.KeyMetrics, false)
	assert.Contains(t, m.View(), "No data")
}

func TestHealthIndicator(t *testing.T) {
	tests := []struct {
		name    string
		healthy bool
		want    HealthState
	}{
		{"healthy", true, HealthConnected},
		{"unsuccessful envelope", false, HealthDisconnected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, client := newTestModel(t, &fakeBackend{healthy: tt.healthy})
			m = fetch(t, m, client, query.KeyHealth, false)
			assert.Equal(t, tt.want, m.Health())
			assert.Contains(t, m.View(), tt.want.String())
		})
	}
}

func TestAutoRefreshToggle(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{})

	m, _ = press(m, runes("a"))
	assert.False(t, m.AutoRefresh())
	assert.False(t, m.metricsPoller.Enabled())
	assert.True(t, m.healthPoller.Enabled(), "health polling is always on")
	assert.Contains(t, m.View(), "auto-refresh off")

	m, _ = press(m, runes("a"))
	assert.True(t, m.AutoRefresh())
	assert.True(t, m.metricsPoller.Enabled())
}

func TestSortKeys(t *testing.T) {
	backend := &fakeBackend{metrics: []api.GPUMetrics{
		{NodeName: "a", Utilization: 50},
		{NodeName: "b", Utilization: 10},
		{NodeName: "c", Utilization: 90},
	}}
	m, client := newTestModel(t, backend)
	m = fetch(t, m, client, query.KeyMetrics, false)

	order := func() []string {
		var names []string
		for _, r := range m.Table().Rows() {
			names = append(names, r.NodeName)
		}
		return names
	}

	m, _ = press(m, runes("s"))
	assert.Equal(t, []string{"b", "a", "c"}, order())
	m, _ = press(m, runes("s"))
	assert.Equal(t, []string{"c", "a", "b"}, order())
	m, _ = press(m, runes("s"))
	assert.Equal(t, []string{"a", "b", "c"}, order())

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, table.ColumnNode, m.SelectedColumn())
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, table.ColumnNode, m.SelectedColumn(), "selection clamps at the first column")

	m, _ = press(m, runes("l"))
	assert.Equal(t, table.ColumnGPU, m.SelectedColumn())
}

func TestFilterEditing(t *testing.T) {
	backend := &fakeBackend{metrics: gpuRows(12)}
	m, client := newTestModel(t, backend)
	m = fetch(t, m, client, query.KeyMetrics, false)

	m, _ = press(m, runes("/"))
	require.True(t, m.filtering)
	m, _ = press(m, runes("node-1"))
	assert.Equal(t, "", m.Table().Filter(), "filter applies on enter")

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.filtering)
	assert.Equal(t, "node-1", m.Table().Filter())
	assert.Len(t, m.Table().Rows(), 2) // node-10 and node-11

	m, _ = press(m, runes("/"))
	m, _ = press(m, runes("zzz"))
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "node-1", m.Table().Filter(), "esc keeps the previous filter")
}

func TestPagination_ResetsOnNewData(t *testing.T) {
	backend := &fakeBackend{metrics: gpuRows(25)}
	m, client := newTestModel(t, backend)
	m = fetch(t, m, client, query.KeyMetrics, false)

	m, _ = press(m, runes("n"))
	m, _ = press(m, runes("n"))
	assert.Equal(t, 2, m.Table().PageIndex())
	assert.Contains(t, m.View(), "Page 3 of 3")

	m, _ = press(m, runes("p"))
	assert.Equal(t, 1, m.Table().PageIndex())

	m = fetch(t, m, client, query.KeyMetrics, true)
	assert.Equal(t, 0, m.Table().PageIndex())
	assert.Equal(t, uint64(2), m.generation)
}

func TestQueryUpdateMsg_RecordsHistory(t *testing.T) {
	backend := &fakeBackend{metrics: gpuRows(2)}
	m, client := newTestModel(t, backend)

	_, err := client.Fetch(context.Background(), query.KeyMetrics)
	require.NoError(t, err)

	updated, cmd := m.Update(queryUpdateMsg{snap: client.State(query.KeyMetrics)})
	m = updated.(Model)
	assert.NotNil(t, cmd, "the model keeps listening")
	assert.Equal(t, 2, m.history.Len())
	assert.Equal(t, 1, m.history.Count(gpuRows(2)[1].Key()))
}

func TestToggleNodesView(t *testing.T) {
	backend := &fakeBackend{nodes: []api.GPUNode{{NodeName: "gpu-node-1", GPUCount: 8, GPUModels: []string{"H100"}}}}
	m, _ := newTestModel(t, backend)

	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, ViewNodes, m.ViewMode())
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Loading GPU nodes")

	msg := cmd()
	updated, _ := m.Update(msg)
	m = updated.(Model)
	view := m.View()
	assert.Contains(t, view, "gpu-node-1")
	assert.Contains(t, view, "H100")

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, ViewTable, m.ViewMode())
}

func TestQuitAndHelp(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{})

	m, _ = press(m, runes("?"))
	assert.Contains(t, m.View(), "Keyboard Shortcuts")
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.NotContains(t, m.View(), "Keyboard Shortcuts")

	m, cmd := press(m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestRefreshKey_Refetches(t *testing.T) {
	backend := &fakeBackend{metrics: gpuRows(1)}
	m, client := newTestModel(t, backend)
	m = fetch(t, m, client, query.KeyMetrics, false)
	before := m.Snapshot(query.KeyMetrics).UpdatedAt

	m, cmd := press(m, runes("r"))
	require.NotNil(t, cmd)
	updated, _ := m.Update(cmd())
	m = updated.(Model)
	assert.True(t, m.Snapshot(query.KeyMetrics).UpdatedAt.After(before))
}

func TestLayoutMode(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{})

	for _, tt := range []struct {
		width int
		want  LayoutMode
	}{
		{80, LayoutCompact},
		{130, LayoutStandard},
		{200, LayoutWide},
	} {
		updated, _ := m.Update(tea.WindowSizeMsg{Width: tt.width, Height: 40})
		assert.Equal(t, tt.want, updated.(Model).LayoutMode())
	}
}
