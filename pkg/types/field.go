package types

import (
	"fmt"
	"strings"
)

// Field names one editable metadata field of an image
type Field int

const (
	Artists Field = iota
	Links
	Tags
	Notes
)

// ListFields are the set-valued fields, in aggregation bucket order
var ListFields = []Field{Artists, Links, Tags}

func (f Field) String() string {
	switch f {
	case Artists:
		return "artists"
	case Links:
		return "links"
	case Tags:
		return "tags"
	case Notes:
		return "notes"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// Searchable reports whether values of the field are tag index terms.
// Links identify a source rather than categorise an image.
func (f Field) Searchable() bool {
	return f == Artists || f == Tags
}

// ParseField maps a user-supplied name ("tag", "artists", ...) to a Field
func ParseField(name string) (Field, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), "s") {
	case "artist":
		return Artists, nil
	case "link":
		return Links, nil
	case "tag":
		return Tags, nil
	case "note":
		return Notes, nil
	}
	return 0, fmt.Errorf("unknown field %q", name)
}

// TagCount is one aggregated value and the number of selected images carrying it
type TagCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

func (t TagCount) String() string {
	return fmt.Sprintf("(%d): %s", t.Count, t.Value)
}
