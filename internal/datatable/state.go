package datatable

import (
	"net/url"
	"strconv"
	"strings"
)

// Query parameters carrying the view state between requests.
const (
	ParamPage   = "page"
	ParamSize   = "size"
	ParamSort   = "sort"
	ParamDir    = "dir"
	ParamFilter = "q"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

func (d Direction) flip() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

type State struct {
	Page     int
	PageSize int
	SortKey  string
	SortDir  Direction
	Filter   string
}

// ParseState reads a state from query values. The result is not validated;
// Table.Apply corrects anything out of range.
func ParseState(v url.Values) State {
	s := State{
		Page:    atoi(v.Get(ParamPage)),
		SortKey: strings.TrimSpace(v.Get(ParamSort)),
		SortDir: Asc,
		Filter:  v.Get(ParamFilter),
	}
	s.PageSize = atoi(v.Get(ParamSize))
	if Direction(strings.ToLower(v.Get(ParamDir))) == Desc {
		s.SortDir = Desc
	}
	return s
}

func (s State) Values() url.Values {
	v := url.Values{}
	v.Set(ParamPage, strconv.Itoa(s.Page))
	v.Set(ParamSize, strconv.Itoa(s.PageSize))
	if s.SortKey != "" {
		v.Set(ParamSort, s.SortKey)
		v.Set(ParamDir, string(s.SortDir))
	}
	if s.Filter != "" {
		v.Set(ParamFilter, s.Filter)
	}
	return v
}

func (s State) toggled(key string) State {
	if s.SortKey == key {
		s.SortDir = s.SortDir.flip()
	} else {
		s.SortKey = key
		s.SortDir = Asc
	}
	return s
}

// Query renders the state as a relative link to the current page.
func (s State) Query() string {
	return "?" + s.Values().Encode()
}

func atoi(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
