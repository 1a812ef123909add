package catalog

import (
	"path/filepath"
	"sort"
	"strings"

	"tagshelf/pkg/types"
)

// Image is one catalogued file and its editable metadata. Artists, Links
// and Tags are kept trimmed, de-duplicated and sorted; tags are lower-cased.
type Image struct {
	Path    string
	Artists []string
	Links   []string
	Tags    []string
	Notes   string
	Size    string // dimensions as reported by the sidecar, read-only
}

func newImage(path string, artists, links, tags []string, notes, size string) *Image {
	return &Image{
		Path:    filepath.Clean(path),
		Artists: normalizeSet(artists, normalizeValue),
		Links:   normalizeSet(links, normalizeValue),
		Tags:    normalizeSet(tags, normalizeTag),
		Notes:   notes,
		Size:    size,
	}
}

// Name returns the base name of the file
func (img *Image) Name() string {
	return filepath.Base(img.Path)
}

// Values returns the list backing a set-valued field
func (img *Image) Values(f types.Field) []string {
	switch f {
	case types.Artists:
		return img.Artists
	case types.Links:
		return img.Links
	case types.Tags:
		return img.Tags
	}
	return nil
}

// Has reports whether the field contains value after normalization
func (img *Image) Has(f types.Field, value string) bool {
	value = normalizerFor(f)(value)
	for _, v := range img.Values(f) {
		if v == value {
			return true
		}
	}
	return false
}

// Terms returns the image's searchable terms, artists then tags
func (img *Image) Terms() []string {
	terms := make([]string, 0, len(img.Artists)+len(img.Tags))
	terms = append(terms, img.Artists...)
	return append(terms, img.Tags...)
}

func (img *Image) hasTerm(term string) bool {
	for _, t := range img.Terms() {
		if t == term {
			return true
		}
	}
	return false
}

// add inserts the normalized value and reports whether the set changed
func (img *Image) add(f types.Field, value string) (string, bool) {
	value = normalizerFor(f)(value)
	if value == "" || img.Has(f, value) {
		return value, false
	}
	current := img.Values(f)
	values := make([]string, 0, len(current)+1)
	values = append(append(values, current...), value)
	sort.Strings(values)
	img.set(f, values)
	return value, true
}

// remove deletes the normalized value and reports whether the set changed
func (img *Image) remove(f types.Field, value string) (string, bool) {
	value = normalizerFor(f)(value)
	values := img.Values(f)
	for i, v := range values {
		if v == value {
			img.set(f, append(values[:i:i], values[i+1:]...))
			return value, true
		}
	}
	return value, false
}

func (img *Image) set(f types.Field, values []string) {
	switch f {
	case types.Artists:
		img.Artists = values
	case types.Links:
		img.Links = values
	case types.Tags:
		img.Tags = values
	}
}

// normalizeValue trims surrounding whitespace; artists and links keep case
func normalizeValue(v string) string {
	return strings.TrimSpace(v)
}

// normalizeTag trims and lower-cases. The index rebuild and the incremental
// edits both go through it so the two paths agree on every term.
func normalizeTag(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func normalizerFor(f types.Field) func(string) string {
	if f == types.Tags {
		return normalizeTag
	}
	return normalizeValue
}

func normalizeSet(values []string, norm func(string) string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = norm(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
