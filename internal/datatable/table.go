// Package datatable turns an arbitrary row set into a filtered, sorted and
// paginated view. A Table owns its view state; it knows nothing about where
// rows come from.
package datatable

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"slices"
	"strconv"
)

var (
	ErrPageSize      = errors.New("page size not allowed")
	ErrRowNotFound   = errors.New("row not found")
	ErrUnknownAction = errors.New("unknown action")
)

type Row map[string]any

// CellRenderer turns a cell value into markup. The returned HTML is trusted.
type CellRenderer func(value any, row Row) template.HTML

type Column struct {
	Key    string
	Label  string
	Render CellRenderer
}

type Action struct {
	ID     string
	Label  string
	Icon   string
	Handle func(ctx context.Context, row Row) error
}

type Options struct {
	PageSizeOptions []int
	DefaultPageSize int
	RowKey          string
	EmptyText       string
}

var defaultPageSizes = []int{5, 10, 20}

// withDefaults drops non-positive and repeated page sizes before filling in
// anything left unset.
func (o Options) withDefaults() Options {
	sizes := make([]int, 0, len(o.PageSizeOptions))
	for _, n := range o.PageSizeOptions {
		if n > 0 && !slices.Contains(sizes, n) {
			sizes = append(sizes, n)
		}
	}
	if len(sizes) == 0 {
		sizes = slices.Clone(defaultPageSizes)
	}
	o.PageSizeOptions = sizes
	if o.DefaultPageSize <= 0 || !slices.Contains(o.PageSizeOptions, o.DefaultPageSize) {
		if slices.Contains(o.PageSizeOptions, 10) {
			o.DefaultPageSize = 10
		} else {
			o.DefaultPageSize = o.PageSizeOptions[0]
		}
	}
	if o.RowKey == "" {
		o.RowKey = "id"
	}
	if o.EmptyText == "" {
		o.EmptyText = "No records found."
	}
	return o
}

type Config struct {
	Columns    []Column
	Actions    []Action
	OnRowClick func(ctx context.Context, row Row) error
	Options    Options
}

type Table struct {
	columns    []Column
	actions    []Action
	onRowClick func(ctx context.Context, row Row) error
	opts       Options

	rows    []Row
	derived []entry
	state   State
}

// entry remembers where a derived row sits in the source rows, which is how
// rows without a key column are addressed.
type entry struct {
	index int
	row   Row
}

func New(cfg Config) *Table {
	opts := cfg.Options.withDefaults()
	t := &Table{
		columns:    cfg.Columns,
		actions:    cfg.Actions,
		onRowClick: cfg.OnRowClick,
		opts:       opts,
		state:      State{Page: 1, PageSize: opts.DefaultPageSize, SortDir: Asc},
	}
	t.derive()
	return t
}

// SetRows replaces the data and re-derives the view before returning, so a
// shrinking row set never leaves the page out of range.
func (t *Table) SetRows(rows []Row) {
	t.rows = rows
	t.derive()
}

func (t *Table) State() State { return t.state }

// Apply adopts a state read from a request. Unknown page sizes fall back to
// the default, unknown sort keys are dropped and the page is clamped.
func (t *Table) Apply(s State) {
	if !slices.Contains(t.opts.PageSizeOptions, s.PageSize) {
		s.PageSize = t.opts.DefaultPageSize
	}
	if s.SortKey != "" && !t.hasColumn(s.SortKey) {
		s.SortKey = ""
	}
	if s.SortDir != Desc {
		s.SortDir = Asc
	}
	t.state = s
	t.derive()
}

// ToggleSort flips the direction of the active key, or sorts ascending by a
// new key.
func (t *Table) ToggleSort(key string) {
	t.state = t.state.toggled(key)
	t.derive()
}

func (t *Table) SetPageSize(n int) error {
	if !slices.Contains(t.opts.PageSizeOptions, n) {
		return fmt.Errorf("%w: %d", ErrPageSize, n)
	}
	t.state.PageSize = n
	t.state.Page = 1
	t.derive()
	return nil
}

func (t *Table) SetFilter(text string) {
	t.state.Filter = text
	t.state.Page = 1
	t.derive()
}

func (t *Table) NextPage() { t.GoToPage(t.state.Page + 1) }
func (t *Table) PrevPage() { t.GoToPage(t.state.Page - 1) }

func (t *Table) GoToPage(n int) {
	t.state.Page = n
	t.clamp()
}

func (t *Table) Total() int { return len(t.derived) }

func (t *Table) TotalPages() int {
	return totalPages(len(t.derived), t.state.PageSize)
}

func totalPages(n, size int) int {
	if n == 0 || size <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// Page returns the rows visible on the current page.
func (t *Table) Page() []Row {
	visible := t.visible()
	out := make([]Row, len(visible))
	for i, e := range visible {
		out[i] = e.row
	}
	return out
}

func (t *Table) visible() []entry {
	start := (t.state.Page - 1) * t.state.PageSize
	if start >= len(t.derived) {
		return nil
	}
	end := min(start+t.state.PageSize, len(t.derived))
	return t.derived[start:end]
}

func (t *Table) derive() {
	filtered := make([]entry, 0, len(t.rows))
	for i, r := range t.rows {
		if matches(r, t.state.Filter) {
			filtered = append(filtered, entry{index: i, row: r})
		}
	}
	if key := t.state.SortKey; key != "" {
		desc := t.state.SortDir == Desc
		slices.SortStableFunc(filtered, func(a, b entry) int {
			c := Compare(a.row[key], b.row[key])
			if desc {
				return -c
			}
			return c
		})
	}
	t.derived = filtered
	t.clamp()
}

func (t *Table) clamp() {
	last := t.TotalPages()
	switch {
	case t.state.Page < 1:
		t.state.Page = 1
	case t.state.Page > last:
		t.state.Page = last
	}
}

func (t *Table) hasColumn(key string) bool {
	for _, c := range t.columns {
		if c.Key == key {
			return true
		}
	}
	return false
}

func (t *Table) rowKey(r Row, index int) string {
	if v, ok := r[t.opts.RowKey]; ok && v != nil {
		return Text(v)
	}
	return "#" + strconv.Itoa(index)
}

// Find looks a row up by its key across the whole data set.
func (t *Table) Find(key string) (Row, bool) {
	for i, r := range t.rows {
		if t.rowKey(r, i) == key {
			return r, true
		}
	}
	return nil, false
}

// Interaction is one click on the table: on an action button when ActionID
// is set, on the row otherwise.
type Interaction struct {
	RowKey   string
	ActionID string
}

// Dispatch runs exactly one handler: the named action, or the row click
// handler when no action is named.
func (t *Table) Dispatch(ctx context.Context, in Interaction) error {
	row, ok := t.Find(in.RowKey)
	if !ok {
		return fmt.Errorf("%w: %s", ErrRowNotFound, in.RowKey)
	}
	if in.ActionID != "" {
		for _, a := range t.actions {
			if a.ID == in.ActionID {
				if a.Handle == nil {
					return nil
				}
				return a.Handle(ctx, row)
			}
		}
		return fmt.Errorf("%w: %s", ErrUnknownAction, in.ActionID)
	}
	if t.onRowClick == nil {
		return nil
	}
	return t.onRowClick(ctx, row)
}
