package query

import (
	"strings"

	"tagshelf/pkg/types"
)

// Search holds the current query text, its folder-partitioned results and
// the focused address. It must be refreshed after any catalog change that
// can alter index membership.
type Search struct {
	index  Lookuper
	layout Layout

	text    string
	results [][]types.Address
	members map[types.Address]bool
	count   int

	focus    types.Address
	hasFocus bool
}

// NewSearch creates a search with an empty query, which matches everything
func NewSearch(ix Lookuper, layout Layout) *Search {
	s := &Search{index: ix, layout: layout}
	s.Refresh()
	return s
}

// SetQuery replaces the query text and re-evaluates
func (s *Search) SetQuery(text string) {
	s.text = text
	s.Refresh()
}

// AddTerm appends term to the query unless the query already has it
func (s *Search) AddTerm(term string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}
	tokens := strings.Fields(s.text)
	for _, t := range tokens {
		if t == term {
			return
		}
	}
	s.SetQuery(strings.Join(append(tokens, term), " "))
}

// RemoveTerm drops every occurrence of term from the query
func (s *Search) RemoveTerm(term string) {
	term = strings.TrimSpace(term)
	tokens := strings.Fields(s.text)
	kept := tokens[:0]
	for _, t := range tokens {
		if t != term {
			kept = append(kept, t)
		}
	}
	s.SetQuery(strings.Join(kept, " "))
}

// Refresh re-evaluates the current query. When the focused address is no
// longer in the results it moves to the first result, or is unset when
// there are none. It reports whether the focus changed.
func (s *Search) Refresh() bool {
	s.results = Evaluate(Parse(s.text), s.index, s.layout)
	s.members = make(map[types.Address]bool)
	for _, folder := range s.results {
		for _, addr := range folder {
			s.members[addr] = true
		}
	}
	s.count = len(s.members)

	if s.hasFocus && s.members[s.focus] {
		return false
	}
	prev, had := s.focus, s.hasFocus
	s.focus, s.hasFocus = s.First()
	return had != s.hasFocus || prev != s.focus
}

// First returns the first address of the first non-empty folder
func (s *Search) First() (types.Address, bool) {
	for _, folder := range s.results {
		if len(folder) > 0 {
			return folder[0], true
		}
	}
	return types.Address{}, false
}

// Last returns the last address of the last non-empty folder
func (s *Search) Last() (types.Address, bool) {
	for f := len(s.results) - 1; f >= 0; f-- {
		if n := len(s.results[f]); n > 0 {
			return s.results[f][n-1], true
		}
	}
	return types.Address{}, false
}

// Text returns the query text as entered
func (s *Search) Text() string {
	return s.text
}

// Query returns the parsed query
func (s *Search) Query() Query {
	return Parse(s.text)
}

// Results returns one address slice per folder. The slices must not be
// modified.
func (s *Search) Results() [][]types.Address {
	return s.results
}

// Folder returns the results of one folder, nil if out of range
func (s *Search) Folder(f int) []types.Address {
	if f < 0 || f >= len(s.results) {
		return nil
	}
	return s.results[f]
}

// Count returns the total number of results
func (s *Search) Count() int {
	return s.count
}

// Contains reports whether addr is in the current results
func (s *Search) Contains(addr types.Address) bool {
	return s.members[addr]
}

// Position returns the index of addr within its folder's results
func (s *Search) Position(addr types.Address) (int, bool) {
	for i, a := range s.Folder(addr.Folder) {
		if a == addr {
			return i, true
		}
	}
	return 0, false
}

// Focus returns the focused address, if any
func (s *Search) Focus() (types.Address, bool) {
	return s.focus, s.hasFocus
}

// SetFocus moves the focus to addr when it is a current result
func (s *Search) SetFocus(addr types.Address) bool {
	if !s.members[addr] {
		return false
	}
	s.focus, s.hasFocus = addr, true
	return true
}
