package table

import "github.com/rileyhilliard/gpumon/internal/api"

// DefaultPageSize is the number of rows per page.
const DefaultPageSize = 10

// Page is one derived page of rows.
type Page struct {
	Rows []api.GPUMetrics
	// Index is zero-based.
	Index int
	// Count is the number of pages, never less than 1.
	Count int
	// Total is the size of the dataset before filtering.
	Total int
	// Filtered is the number of rows that passed the filters.
	Filtered int
}

// Table is the sort, filter and pagination state over one dataset.
// It is not safe for concurrent use; the dashboard owns it on its update loop.
type Table struct {
	data       []api.GPUMetrics
	generation uint64
	hasData    bool

	sort     Sort
	filter   string
	criteria Criteria

	pageSize int
	page     int
}

// New creates an empty table. A non-positive pageSize uses DefaultPageSize.
func New(pageSize int) *Table {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Table{pageSize: pageSize}
}

// SetData replaces the dataset. A generation different from the current one
// is a new dataset and resets the page to the first.
func (t *Table) SetData(rows []api.GPUMetrics, generation uint64) {
	if !t.hasData || generation != t.generation {
		t.page = 0
	}
	t.data = rows
	t.generation = generation
	t.hasData = true
	t.clamp()
}

// Data returns the dataset in source order.
func (t *Table) Data() []api.GPUMetrics {
	return t.data
}

// Generation returns the identity of the current dataset.
func (t *Table) Generation() uint64 {
	return t.generation
}

// Sort returns the active sort.
func (t *Table) Sort() Sort {
	return t.sort
}

// SetSort sets the sort directly.
func (t *Table) SetSort(s Sort) {
	t.sort = s
}

// ToggleSort advances the sort on col through None, Asc, Desc. Selecting a
// different column starts at Asc.
func (t *Table) ToggleSort(col Column) {
	if t.sort.Column != col || t.sort.Direction == SortNone {
		t.sort = Sort{Column: col, Direction: SortAsc}
		return
	}
	t.sort.Direction = t.sort.Direction.Next()
}

// Filter returns the global filter text.
func (t *Table) Filter() string {
	return t.filter
}

// SetFilter sets the global filter. A changed filter resets the page.
func (t *Table) SetFilter(q string) {
	if q == t.filter {
		return
	}
	t.filter = q
	t.page = 0
}

// Criteria returns the structured filter.
func (t *Table) Criteria() Criteria {
	return t.criteria
}

// SetCriteria sets the structured filter. A changed filter resets the page.
func (t *Table) SetCriteria(c Criteria) {
	if c == t.criteria {
		return
	}
	t.criteria = c
	t.page = 0
}

// PageSize returns the rows per page.
func (t *Table) PageSize() int {
	return t.pageSize
}

// PageIndex returns the zero-based current page.
func (t *Table) PageIndex() int {
	return t.page
}

// PageCount returns the number of pages for the filtered rows, at least 1.
func (t *Table) PageCount() int {
	return pageCount(len(t.filtered()), t.pageSize)
}

// NextPage advances one page if possible.
func (t *Table) NextPage() bool {
	if t.page+1 >= t.PageCount() {
		return false
	}
	t.page++
	return true
}

// PrevPage goes back one page if possible.
func (t *Table) PrevPage() bool {
	if t.page == 0 {
		return false
	}
	t.page--
	return true
}

// SetPage jumps to a zero-based page, clamped to the valid range.
func (t *Table) SetPage(i int) {
	t.page = i
	t.clamp()
}

// Rows returns every filtered row in sorted order.
func (t *Table) Rows() []api.GPUMetrics {
	rows := t.filtered()
	t.sort.apply(rows)
	return rows
}

// Page derives the current page.
func (t *Table) Page() Page {
	rows := t.Rows()
	count := pageCount(len(rows), t.pageSize)
	index := t.page
	if index >= count {
		index = count - 1
	}
	if index < 0 {
		index = 0
	}

	start := index * t.pageSize
	end := start + t.pageSize
	if end > len(rows) {
		end = len(rows)
	}
	if start > end {
		start = end
	}

	return Page{
		Rows:     rows[start:end],
		Index:    index,
		Count:    count,
		Total:    len(t.data),
		Filtered: len(rows),
	}
}

// filtered returns a fresh slice of the rows passing both filters.
func (t *Table) filtered() []api.GPUMetrics {
	out := make([]api.GPUMetrics, 0, len(t.data))
	for _, m := range t.data {
		if !t.criteria.Match(m) {
			continue
		}
		if !MatchGlobal(m, t.filter) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (t *Table) clamp() {
	if last := t.PageCount() - 1; t.page > last {
		t.page = last
	}
	if t.page < 0 {
		t.page = 0
	}
}

func pageCount(n, size int) int {
	if n == 0 {
		return 1
	}
	return (n + size - 1) / size
}
