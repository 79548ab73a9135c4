package datatable

import (
	"html/template"
	"strconv"
)

type HeaderCell struct {
	Key       string
	Label     string
	Active    bool
	Dir       Direction
	Indicator string
	Link      string
}

type Cell struct {
	Key  string
	HTML template.HTML
}

type ViewRow struct {
	Key   string
	Cells []Cell
}

type ActionButton struct {
	ID    string
	Label string
	Icon  string
}

// EmptyRow is the placeholder rendered when no row survives the filter.
type EmptyRow struct {
	ColSpan int
	Text    string
}

type PageSizeLink struct {
	Size     int
	Selected bool
	Link     string
}

type View struct {
	Headers    []HeaderCell
	Rows       []ViewRow
	Actions    []ActionButton
	Empty      *EmptyRow
	Clickable  bool
	State      State
	Page       int
	TotalPages int
	Total      int
	PageSize   int
	PageSizes  []PageSizeLink
	HasPrev    bool
	HasNext    bool
	PrevLink   string
	NextLink   string
}

func defaultRender(value any, _ Row) template.HTML {
	return template.HTML(template.HTMLEscapeString(Text(value)))
}

func (t *Table) View() View {
	v := View{
		Clickable:  t.onRowClick != nil,
		State:      t.state,
		Page:       t.state.Page,
		TotalPages: t.TotalPages(),
		Total:      t.Total(),
		PageSize:   t.state.PageSize,
		HasPrev:    t.state.Page > 1,
		HasNext:    t.state.Page < t.TotalPages(),
		PrevLink:   t.PrevLink(),
		NextLink:   t.NextLink(),
	}

	for _, c := range t.columns {
		h := HeaderCell{Key: c.Key, Label: c.Label, Link: t.SortLink(c.Key)}
		if t.state.SortKey == c.Key {
			h.Active = true
			h.Dir = t.state.SortDir
			h.Indicator = "▲"
			if h.Dir == Desc {
				h.Indicator = "▼"
			}
		}
		v.Headers = append(v.Headers, h)
	}
	for _, a := range t.actions {
		v.Actions = append(v.Actions, ActionButton{ID: a.ID, Label: a.Label, Icon: a.Icon})
	}
	for _, size := range t.opts.PageSizeOptions {
		v.PageSizes = append(v.PageSizes, PageSizeLink{
			Size:     size,
			Selected: size == t.state.PageSize,
			Link:     t.SizeLink(size),
		})
	}

	for _, e := range t.visible() {
		row := ViewRow{Key: t.rowKey(e.row, e.index)}
		for _, c := range t.columns {
			render := c.Render
			if render == nil {
				render = defaultRender
			}
			row.Cells = append(row.Cells, Cell{Key: c.Key, HTML: render(e.row[c.Key], e.row)})
		}
		v.Rows = append(v.Rows, row)
	}

	if len(v.Rows) == 0 {
		span := len(t.columns)
		if len(t.actions) > 0 {
			span++
		}
		v.Empty = &EmptyRow{ColSpan: span, Text: t.opts.EmptyText}
	}
	return v
}

func (t *Table) SortLink(key string) string {
	return t.state.toggled(key).Query()
}

func (t *Table) PageLink(n int) string {
	s := t.state
	s.Page = max(1, min(n, t.TotalPages()))
	return s.Query()
}

func (t *Table) NextLink() string { return t.PageLink(t.state.Page + 1) }
func (t *Table) PrevLink() string { return t.PageLink(t.state.Page - 1) }

func (t *Table) SizeLink(size int) string {
	s := t.state
	s.PageSize = size
	s.Page = 1
	return s.Query()
}

// PageNumbers lists the pages for a numbered pager.
func (v View) PageNumbers() []int {
	out := make([]int, v.TotalPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func (v View) Summary() string {
	if v.Total == 0 {
		return "0 records"
	}
	first := (v.Page-1)*v.PageSize + 1
	last := min(v.Page*v.PageSize, v.Total)
	return strconv.Itoa(first) + "–" + strconv.Itoa(last) + " of " + strconv.Itoa(v.Total)
}
