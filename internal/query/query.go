// Package query evaluates tag queries against the tag index.
//
// A query is a whitespace separated list of terms. Every plain term must be
// carried by an image for it to match; a term prefixed with "-" removes
// every image carrying it. Results are partitioned by folder and ordered by
// image position.
package query

import (
	"sort"
	"strings"

	"tagshelf/pkg/types"
)

// ExcludePrefix marks an exclusion term
const ExcludePrefix = "-"

// Lookuper returns the addresses carrying a term. *index.Index satisfies it.
type Lookuper interface {
	Lookup(term string) []types.Address
}

// Layout describes the current folder shape of the catalog.
// *catalog.Catalog satisfies it.
type Layout interface {
	FolderCount() int
	ImageCount(folder int) int
}

// Query is a parsed query string
type Query struct {
	Include []string
	Exclude []string
}

// Parse splits text into inclusion and exclusion terms. A lone "-" is
// dropped.
func Parse(text string) Query {
	var q Query
	for _, token := range strings.Fields(text) {
		if strings.HasPrefix(token, ExcludePrefix) {
			if term := strings.TrimPrefix(token, ExcludePrefix); term != "" {
				q.Exclude = append(q.Exclude, term)
			}
			continue
		}
		q.Include = append(q.Include, token)
	}
	return q
}

// Empty reports whether the query has no terms at all
func (q Query) Empty() bool {
	return len(q.Include) == 0 && len(q.Exclude) == 0
}

func (q Query) String() string {
	tokens := make([]string, 0, len(q.Include)+len(q.Exclude))
	tokens = append(tokens, q.Include...)
	for _, term := range q.Exclude {
		tokens = append(tokens, ExcludePrefix+term)
	}
	return strings.Join(tokens, " ")
}

// Evaluate runs q against ix. The result has one slice per folder of layout,
// possibly empty, each sorted by image position. With no inclusion terms
// every image starts in the result. Otherwise an image must appear in the
// bucket of every inclusion term. Exclusion terms then remove their buckets
// from whatever is left. Unknown terms have empty buckets.
func Evaluate(q Query, ix Lookuper, layout Layout) [][]types.Address {
	folders := layout.FolderCount()
	results := make([][]types.Address, folders)

	valid := func(a types.Address) bool {
		return a.Folder >= 0 && a.Folder < folders && a.Image >= 0 && a.Image < layout.ImageCount(a.Folder)
	}

	if len(q.Include) == 0 {
		for f := range results {
			n := layout.ImageCount(f)
			results[f] = make([]types.Address, n)
			for i := 0; i < n; i++ {
				results[f][i] = types.Addr(f, i)
			}
		}
	} else {
		counts := make(map[types.Address]int)
		for _, term := range q.Include {
			for _, addr := range lookup(ix, term) {
				counts[addr]++
			}
		}
		matched := make([]types.Address, 0, len(counts))
		for addr, n := range counts {
			if n == len(q.Include) && valid(addr) {
				matched = append(matched, addr)
			}
		}
		// map iteration lost the order
		sort.Slice(matched, func(i, j int) bool { return matched[i].Less(matched[j]) })
		for f := range results {
			results[f] = []types.Address{}
		}
		for _, addr := range matched {
			results[addr.Folder] = append(results[addr.Folder], addr)
		}
	}

	if len(q.Exclude) == 0 {
		return results
	}
	excluded := make(map[types.Address]bool)
	for _, term := range q.Exclude {
		for _, addr := range lookup(ix, term) {
			excluded[addr] = true
		}
	}
	for f, folder := range results {
		kept := folder[:0]
		for _, addr := range folder {
			if !excluded[addr] {
				kept = append(kept, addr)
			}
		}
		results[f] = kept
	}
	return results
}

// lookup resolves a term to one bucket: the exact term when it exists,
// otherwise its lower-cased form, which is how tags are stored.
func lookup(ix Lookuper, term string) []types.Address {
	if bucket := ix.Lookup(term); len(bucket) > 0 {
		return bucket
	}
	if lower := strings.ToLower(term); lower != term {
		return ix.Lookup(lower)
	}
	return nil
}

// Count returns the total number of addresses in results
func Count(results [][]types.Address) int {
	n := 0
	for _, folder := range results {
		n += len(folder)
	}
	return n
}
