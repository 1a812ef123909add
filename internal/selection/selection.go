// Package selection tracks the addresses picked for display and bulk
// editing, and moves through query results folder by folder.
package selection

import (
	"sort"

	"tagshelf/internal/catalog"
	"tagshelf/internal/log"
	"tagshelf/pkg/types"
)

// Results exposes folder-partitioned query results. *query.Search
// satisfies it.
type Results interface {
	Results() [][]types.Address
}

// Images resolves addresses to images. *catalog.Catalog satisfies it.
type Images interface {
	Image(addr types.Address) (*catalog.Image, error)
}

// Selection is the current member list, its anchor and the aggregated
// field values of its members.
type Selection struct {
	results Results
	images  Images

	anchor    types.Address
	hasAnchor bool
	members   []types.Address
	tags      map[types.Field][]types.TagCount
}

// New creates an empty selection over results
func New(results Results, images Images) *Selection {
	return &Selection{
		results: results,
		images:  images,
		tags:    make(map[types.Field][]types.TagCount),
	}
}

func (s *Selection) position(addr types.Address) (int, bool) {
	results := s.results.Results()
	if addr.Folder < 0 || addr.Folder >= len(results) {
		return 0, false
	}
	for i, a := range results[addr.Folder] {
		if a == addr {
			return i, true
		}
	}
	return 0, false
}

// Next returns the result after addr. Past the end of a folder it wraps to
// the first result of the next non-empty folder, cycling back to the start.
func (s *Selection) Next(addr types.Address) (types.Address, bool) {
	pos, ok := s.position(addr)
	if !ok {
		return types.Address{}, false
	}
	results := s.results.Results()
	if folder := results[addr.Folder]; pos+1 < len(folder) {
		return folder[pos+1], true
	}
	n := len(results)
	for step := 1; step <= n; step++ {
		if folder := results[(addr.Folder+step)%n]; len(folder) > 0 {
			return folder[0], true
		}
	}
	return types.Address{}, false
}

// Prev returns the result before addr, wrapping to the last result of the
// previous non-empty folder.
func (s *Selection) Prev(addr types.Address) (types.Address, bool) {
	pos, ok := s.position(addr)
	if !ok {
		return types.Address{}, false
	}
	results := s.results.Results()
	if pos > 0 {
		return results[addr.Folder][pos-1], true
	}
	n := len(results)
	for step := 1; step <= n; step++ {
		if folder := results[(addr.Folder-step+n)%n]; len(folder) > 0 {
			return folder[len(folder)-1], true
		}
	}
	return types.Address{}, false
}

// SetSingle makes addr the only member and the anchor
func (s *Selection) SetSingle(addr types.Address) {
	s.anchor, s.hasAnchor = addr, true
	s.members = []types.Address{addr}
	s.Aggregate()
}

// Add appends addr to the members. Duplicates are not filtered.
func (s *Selection) Add(addr types.Address) {
	if !s.hasAnchor {
		s.anchor, s.hasAnchor = addr, true
	}
	s.members = append(s.members, addr)
	s.Aggregate()
}

// SetRange selects every result from the earlier of a and b up to the later
// one, in navigation order. Nothing changes unless both are results. An
// existing anchor is kept; otherwise a becomes the anchor.
func (s *Selection) SetRange(a, b types.Address) bool {
	if _, ok := s.position(a); !ok {
		return false
	}
	if _, ok := s.position(b); !ok {
		return false
	}
	start, end := a, b
	if end.Less(start) {
		start, end = end, start
	}

	members := []types.Address{start}
	limit := 0
	for _, folder := range s.results.Results() {
		limit += len(folder)
	}
	for cur := start; cur != end && len(members) <= limit; {
		next, ok := s.Next(cur)
		if !ok {
			break
		}
		members = append(members, next)
		cur = next
	}

	s.members = members
	if !s.hasAnchor {
		s.anchor, s.hasAnchor = a, true
	}
	s.Aggregate()
	return true
}

// Clear empties the selection
func (s *Selection) Clear() {
	s.members = nil
	s.hasAnchor = false
	s.anchor = types.Address{}
	s.tags = make(map[types.Field][]types.TagCount)
}

// Aggregate recounts artist, link and tag values over the members. Each
// bucket is sorted by count, then value, both descending.
func (s *Selection) Aggregate() {
	counts := make(map[types.Field]map[string]int, len(types.ListFields))
	for _, f := range types.ListFields {
		counts[f] = make(map[string]int)
	}

	for _, addr := range s.members {
		img, err := s.images.Image(addr)
		if err != nil {
			log.LogWithError(err).Debug("Selection member no longer resolves")
			continue
		}
		for _, f := range types.ListFields {
			for _, v := range img.Values(f) {
				counts[f][v]++
			}
		}
	}

	s.tags = make(map[types.Field][]types.TagCount, len(counts))
	for f, values := range counts {
		bucket := make([]types.TagCount, 0, len(values))
		for v, n := range values {
			bucket = append(bucket, types.TagCount{Value: v, Count: n})
		}
		sort.Slice(bucket, func(i, j int) bool {
			if bucket[i].Count != bucket[j].Count {
				return bucket[i].Count > bucket[j].Count
			}
			return bucket[i].Value > bucket[j].Value
		})
		s.tags[f] = bucket
	}
}

// Members returns a copy of the member list in selection order
func (s *Selection) Members() []types.Address {
	out := make([]types.Address, len(s.members))
	copy(out, s.members)
	return out
}

// Len returns the number of members
func (s *Selection) Len() int {
	return len(s.members)
}

// Contains reports whether addr is a member
func (s *Selection) Contains(addr types.Address) bool {
	for _, m := range s.members {
		if m == addr {
			return true
		}
	}
	return false
}

// Anchor returns the address ranges extend from
func (s *Selection) Anchor() (types.Address, bool) {
	return s.anchor, s.hasAnchor
}

// Tags returns the aggregated bucket of one list field
func (s *Selection) Tags(f types.Field) []types.TagCount {
	return s.tags[f]
}
