// Package index implements the inverted tag index: tag term -> addresses of
// the images whose artists or tags contain it.
//
// For every image and every term in its artists and tags the image's address
// appears exactly once in that term's bucket, and every address in a bucket
// refers to an image that currently carries the term. Rebuild restores this
// from scratch after structural changes; Add and Remove keep it for single
// field edits.
package index

import (
	"fmt"
	"sort"

	"tagshelf/pkg/types"
)

// Source enumerates every searchable term of every catalogued image
type Source interface {
	EachTerm(fn func(term string, addr types.Address))
}

// Index is the inverted tag index. The zero value is not usable; call New.
type Index struct {
	buckets map[string][]types.Address
}

// New creates an empty index
func New() *Index {
	return &Index{buckets: make(map[string][]types.Address)}
}

// Rebuild clears the index and repopulates it from src
func (ix *Index) Rebuild(src Source) {
	ix.buckets = make(map[string][]types.Address, len(ix.buckets))
	src.EachTerm(func(term string, addr types.Address) {
		ix.Add(term, addr)
	})
}

// Add inserts addr into term's bucket unless already present
func (ix *Index) Add(term string, addr types.Address) {
	bucket := ix.buckets[term]
	for _, a := range bucket {
		if a == addr {
			return
		}
	}
	ix.buckets[term] = append(bucket, addr)
}

// Remove drops addr from term's bucket, deleting the bucket once empty
func (ix *Index) Remove(term string, addr types.Address) {
	bucket, ok := ix.buckets[term]
	if !ok {
		return
	}
	for i, a := range bucket {
		if a != addr {
			continue
		}
		bucket = append(bucket[:i], bucket[i+1:]...)
		break
	}
	if len(bucket) == 0 {
		delete(ix.buckets, term)
		return
	}
	ix.buckets[term] = bucket
}

// Lookup returns a copy of term's bucket in insertion order, nil if unknown
func (ix *Index) Lookup(term string) []types.Address {
	bucket, ok := ix.buckets[term]
	if !ok {
		return nil
	}
	out := make([]types.Address, len(bucket))
	copy(out, bucket)
	return out
}

// Has reports whether addr is in term's bucket
func (ix *Index) Has(term string, addr types.Address) bool {
	for _, a := range ix.buckets[term] {
		if a == addr {
			return true
		}
	}
	return false
}

// Len returns the number of terms with a non-empty bucket
func (ix *Index) Len() int {
	return len(ix.buckets)
}

// Terms returns all indexed terms sorted
func (ix *Index) Terms() []string {
	terms := make([]string, 0, len(ix.buckets))
	for term := range ix.buckets {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// Check verifies the index against src in both directions and reports the
// first discrepancy found.
func (ix *Index) Check(src Source) error {
	type pair struct {
		term string
		addr types.Address
	}
	want := make(map[pair]bool)
	src.EachTerm(func(term string, addr types.Address) {
		want[pair{term, addr}] = true
	})

	have := 0
	for term, bucket := range ix.buckets {
		if len(bucket) == 0 {
			return fmt.Errorf("term %q has an empty bucket", term)
		}
		seen := make(map[types.Address]bool, len(bucket))
		for _, addr := range bucket {
			if seen[addr] {
				return fmt.Errorf("term %q lists %s twice", term, addr)
			}
			seen[addr] = true
			if !want[pair{term, addr}] {
				return fmt.Errorf("term %q lists %s which does not carry it", term, addr)
			}
			have++
		}
	}
	if have != len(want) {
		for p := range want {
			if !ix.Has(p.term, p.addr) {
				return fmt.Errorf("term %q is missing %s", p.term, p.addr)
			}
		}
	}
	return nil
}
