// Package session ties the catalog, the search and the selection together
// and keeps them consistent across edits and folder changes.
package session

import (
	"tagshelf/internal/catalog"
	"tagshelf/internal/errors"
	"tagshelf/internal/log"
	"tagshelf/internal/query"
	"tagshelf/internal/selection"
	"tagshelf/pkg/types"
)

// Session is the single-goroutine owner of one catalog and the views over it
type Session struct {
	catalog   *catalog.Catalog
	search    *query.Search
	selection *selection.Selection
	logger    log.Logging
}

// New creates a session over c with an empty query
func New(c *catalog.Catalog) *Session {
	search := query.NewSearch(c.Index(), c)
	s := &Session{
		catalog:   c,
		search:    search,
		selection: selection.New(search, c),
		logger:    log.Default(),
	}
	s.collapseToFocus()
	return s
}

// Catalog returns the underlying catalog
func (s *Session) Catalog() *catalog.Catalog { return s.catalog }

// Search returns the current search
func (s *Session) Search() *query.Search { return s.search }

// Selection returns the current selection
func (s *Session) Selection() *selection.Selection { return s.selection }

// Open opens paths and re-evaluates the query. When a single file was
// opened and survives the query it becomes the focus.
func (s *Session) Open(paths []string) (types.Address, bool) {
	focused := s.focusedPath()
	addr, ok := s.catalog.OpenFolders(paths)
	s.restructured(focused)
	if ok && s.search.SetFocus(addr) {
		s.selection.SetSingle(addr)
	}
	return addr, ok
}

// Close closes the folder at path
func (s *Session) Close(path string) bool {
	focused := s.focusedPath()
	if !s.catalog.CloseFolder(path) {
		return false
	}
	s.restructured(focused)
	return true
}

// Reload re-reads the folder at path
func (s *Session) Reload(path string) bool {
	focused := s.focusedPath()
	if !s.catalog.ReloadFolder(path) {
		return false
	}
	s.restructured(focused)
	return true
}

// SetQuery replaces the query text
func (s *Session) SetQuery(text string) {
	s.search.SetQuery(text)
	s.afterSearch(true)
}

// AddTerm adds a term to the query
func (s *Session) AddTerm(term string) {
	s.search.AddTerm(term)
	s.afterSearch(true)
}

// RemoveTerm removes a term from the query
func (s *Session) RemoveTerm(term string) {
	s.search.RemoveTerm(term)
	s.afterSearch(true)
}

// Focus moves the focus to addr and makes it the only selected member
func (s *Session) Focus(addr types.Address) bool {
	if !s.search.SetFocus(addr) {
		return false
	}
	s.selection.SetSingle(addr)
	return true
}

// Next moves the focus to the following result
func (s *Session) Next() (types.Address, bool) {
	return s.step(s.selection.Next)
}

// Prev moves the focus to the preceding result
func (s *Session) Prev() (types.Address, bool) {
	return s.step(s.selection.Prev)
}

func (s *Session) step(move func(types.Address) (types.Address, bool)) (types.Address, bool) {
	focus, ok := s.search.Focus()
	if !ok {
		return types.Address{}, false
	}
	addr, ok := move(focus)
	if !ok {
		return types.Address{}, false
	}
	s.Focus(addr)
	return addr, true
}

// Extend selects the range between the anchor and addr and focuses addr
func (s *Session) Extend(addr types.Address) bool {
	anchor, ok := s.selection.Anchor()
	if !ok {
		return s.Focus(addr)
	}
	if !s.search.SetFocus(addr) {
		return false
	}
	return s.selection.SetRange(anchor, addr)
}

// Toggle adds addr to the selection unless it is already a member
func (s *Session) Toggle(addr types.Address) bool {
	if !s.search.Contains(addr) || s.selection.Contains(addr) {
		return false
	}
	s.selection.Add(addr)
	return true
}

// AddValue adds value to field on every selected image
func (s *Session) AddValue(field types.Field, value string) (int, error) {
	return s.edit(func(addr types.Address) (bool, error) {
		return s.catalog.AddValue(addr, field, value)
	})
}

// RemoveValue removes value from field on every selected image
func (s *Session) RemoveValue(field types.Field, value string) (int, error) {
	return s.edit(func(addr types.Address) (bool, error) {
		return s.catalog.RemoveValue(addr, field, value)
	})
}

// SetNotes replaces the notes of the focused image
func (s *Session) SetNotes(notes string) error {
	focus, ok := s.search.Focus()
	if !ok {
		return errors.New("no focused image")
	}
	return s.catalog.SetNotes(focus, notes)
}

// edit applies fn once per distinct member, then re-evaluates the query
// since tag edits can move images in or out of the results. It reports how
// many images changed.
func (s *Session) edit(fn func(types.Address) (bool, error)) (int, error) {
	seen := make(map[types.Address]bool)
	changed := 0
	var firstErr error
	for _, addr := range s.selection.Members() {
		if seen[addr] {
			continue
		}
		seen[addr] = true
		ok, err := fn(addr)
		if err != nil {
			log.LogWithError(err).Warn("Skipping selected image")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			changed++
		}
	}
	if changed > 0 {
		s.search.Refresh()
		s.afterSearch(false)
	}
	return changed, firstErr
}

// afterSearch updates the selection after a re-evaluation. A new query, or
// a focus that moved, collapses the selection to the focus. Otherwise only
// the aggregated values are recomputed.
func (s *Session) afterSearch(collapse bool) {
	focus, ok := s.search.Focus()
	if collapse || !ok || !s.selection.Contains(focus) {
		s.collapseToFocus()
		return
	}
	s.selection.Aggregate()
}

// restructured re-evaluates after folders were opened, closed or reloaded.
// Every old address is stale, so the focus is re-resolved by path.
func (s *Session) restructured(focusedPath string) {
	s.search.Refresh()
	addr, ok := s.catalog.Resolve(focusedPath)
	if !ok || !s.search.SetFocus(addr) {
		if first, ok := s.search.First(); ok {
			s.search.SetFocus(first)
		}
	}
	s.collapseToFocus()
	s.logger.With(
		log.F("generation", s.catalog.Generation()),
		log.F("results", s.search.Count()),
	).Debug("Search re-evaluated")
}

func (s *Session) collapseToFocus() {
	if focus, ok := s.search.Focus(); ok {
		s.selection.SetSingle(focus)
		return
	}
	s.selection.Clear()
}

func (s *Session) focusedPath() string {
	focus, ok := s.search.Focus()
	if !ok {
		return ""
	}
	img, err := s.catalog.Image(focus)
	if err != nil {
		return ""
	}
	return img.Path
}
