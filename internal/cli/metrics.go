package cli

import (
	"context"
	"io"
	"time"

	"github.com/rileyhilliard/gpumon/internal/api"
	"github.com/rileyhilliard/gpumon/internal/query"
	"github.com/rileyhilliard/gpumon/internal/stats"
	"github.com/rileyhilliard/gpumon/internal/table"
)

// metricsOptions holds the flags of 'gpumon metrics'.
type metricsOptions struct {
	OutputFlags
	Sort     string
	Filter   string
	Page     int
	PageSize int
	HighUtil bool
}

// metricsResult is the --json payload of 'gpumon metrics'.
type metricsResult struct {
	GPUs    []api.GPUMetrics `json:"gpus"`
	Summary stats.Summary    `json:"summary"`
	Page    pageInfo         `json:"page"`
}

type pageInfo struct {
	Index    int    `json:"index"`
	Count    int    `json:"count"`
	Size     int    `json:"size"`
	Total    int    `json:"total"`
	Filtered int    `json:"filtered"`
	Sort     string `json:"sort,omitempty"`
	Filter   string `json:"filter,omitempty"`
}

// metricsView is the table derivation shared by 'gpumon metrics' and the
// non-interactive dashboard fallback.
type metricsView struct {
	rows    []api.GPUMetrics
	summary stats.Summary
	sort    table.Sort
	filter  string
	page    table.Page
	size    int
}

// buildMetricsView runs rows through the same sort, filter and pagination the
// dashboard table uses. page is 1-based.
func buildMetricsView(rows []api.GPUMetrics, opts metricsOptions, sortSpec table.Sort, pageSize int) metricsView {
	t := table.New(pageSize)
	t.SetData(rows, 1)
	t.SetSort(sortSpec)
	t.SetFilter(opts.Filter)
	if opts.HighUtil {
		t.SetCriteria(table.Criteria{HighUtilOnly: true})
	}
	t.SetPage(opts.Page - 1)

	return metricsView{
		rows:    rows,
		summary: stats.Compute(rows),
		sort:    sortSpec,
		filter:  opts.Filter,
		page:    t.Page(),
		size:    t.PageSize(),
	}
}

func (v metricsView) result() metricsResult {
	gpus := v.page.Rows
	if gpus == nil {
		gpus = []api.GPUMetrics{}
	}
	info := pageInfo{
		Index:    v.page.Index + 1,
		Count:    v.page.Count,
		Size:     v.size,
		Total:    v.page.Total,
		Filtered: v.page.Filtered,
		Filter:   v.filter,
	}
	if v.sort.Direction != table.SortNone {
		info.Sort = v.sort.Column.String() + ":" + v.sort.Direction.String()
	}
	return metricsResult{GPUs: gpus, Summary: v.summary, Page: info}
}

// writeMetrics prints v as JSON or as a table with a summary header.
func writeMetrics(w io.Writer, v metricsView, asJSON bool, now time.Time) error {
	if asJSON {
		return WriteJSONSuccess(w, v.result())
	}

	if len(v.rows) == 0 {
		writeLines(w, "No data")
		return nil
	}

	writeLines(w,
		summaryLine(v.summary),
		updatedLine(latestTimestamp(v.rows), now),
	)
	if len(v.page.Rows) == 0 {
		writeLines(w, "No GPUs match the filter")
	} else {
		writeLines(w, renderMetricsTable(v.page.Rows, v.sort))
	}
	writeLines(w, pageLine(v.page, v.filter))
	return nil
}

func metricsCommand(ctx context.Context, w io.Writer, opts metricsOptions) error {
	machineMode = opts.JSON

	sortSpec, err := ParseSortFlag(opts.Sort)
	if err != nil {
		return err
	}
	if err := ValidatePage(opts.Page); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	rows, err := fetchPayload[[]api.GPUMetrics](ctx, a, query.KeyMetrics, "GPU metrics")
	if err != nil {
		return err
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = cfg.PageSize
	}
	return writeMetrics(w, buildMetricsView(rows, opts, sortSpec, pageSize), opts.JSON, time.Now())
}
