package query

import (
	"testing"

	"tagshelf/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndex map[string][]types.Address

func (ix fakeIndex) Lookup(term string) []types.Address {
	return ix[term]
}

// fakeLayout lists the image count of each folder
type fakeLayout []int

func (l fakeLayout) FolderCount() int { return len(l) }

func (l fakeLayout) ImageCount(f int) int {
	if f < 0 || f >= len(l) {
		return 0
	}
	return l[f]
}

var (
	a = types.Addr(0, 0)
	b = types.Addr(0, 2)
	c = types.Addr(1, 1)
	d = types.Addr(1, 0)
)

func TestParse(t *testing.T) {
	tests := []struct {
		text string
		want Query
	}{
		{"", Query{}},
		{"   ", Query{}},
		{"cat", Query{Include: []string{"cat"}}},
		{" cat  -draft\tdog ", Query{Include: []string{"cat", "dog"}, Exclude: []string{"draft"}}},
		{"- -x", Query{Exclude: []string{"x"}}},
		{"--x", Query{Exclude: []string{"-x"}}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Parse(tt.text), tt.text)
	}
	assert.Equal(t, "cat dog -draft", Parse("cat -draft dog").String())
	assert.True(t, Parse(" - ").Empty())
}

func TestEvaluateEmptyQueryMatchesEverything(t *testing.T) {
	got := Evaluate(Parse(""), fakeIndex{}, fakeLayout{2, 0, 1})

	assert.Equal(t, [][]types.Address{
		{types.Addr(0, 0), types.Addr(0, 1)},
		{},
		{types.Addr(2, 0)},
	}, got)
	assert.Equal(t, 3, Count(got))
}

func TestEvaluateIncludeIsIntersection(t *testing.T) {
	ix := fakeIndex{
		"cat": {c, b, a},
		"dog": {d, b, c},
	}

	got := Evaluate(Parse("cat dog"), ix, fakeLayout{3, 2})

	assert.Equal(t, [][]types.Address{{b}, {c}}, got)
}

func TestEvaluateCatWithoutDraft(t *testing.T) {
	ix := fakeIndex{
		"cat":   {c, a, b},
		"draft": {b},
	}

	got := Evaluate(Parse("cat -draft"), ix, fakeLayout{3, 2})

	assert.Equal(t, [][]types.Address{{a}, {c}}, got)
}

func TestEvaluateExcludeOnly(t *testing.T) {
	ix := fakeIndex{"draft": {types.Addr(0, 1)}}

	got := Evaluate(Parse("-draft"), ix, fakeLayout{3})

	assert.Equal(t, [][]types.Address{{types.Addr(0, 0), types.Addr(0, 2)}}, got)
}

func TestEvaluateExclusionIsIdempotent(t *testing.T) {
	ix := fakeIndex{
		"cat":   {a, b, c},
		"draft": {b},
	}
	layout := fakeLayout{3, 2}

	once := Evaluate(Parse("cat -draft"), ix, layout)
	twice := Evaluate(Parse("cat -draft -draft"), ix, layout)

	assert.Equal(t, once, twice)
}

func TestEvaluateUnknownTerms(t *testing.T) {
	ix := fakeIndex{"cat": {a, c}}
	layout := fakeLayout{3, 2}

	assert.Equal(t, 0, Count(Evaluate(Parse("cat unicorn"), ix, layout)))
	assert.Equal(t, [][]types.Address{{a}, {c}}, Evaluate(Parse("cat -unicorn"), ix, layout))
}

func TestEvaluateRepeatedIncludeTerm(t *testing.T) {
	ix := fakeIndex{"cat": {a, c}}

	got := Evaluate(Parse("cat cat"), ix, fakeLayout{3, 2})

	assert.Equal(t, [][]types.Address{{a}, {c}}, got)
}

func TestEvaluateIgnoresAddressesOutsideLayout(t *testing.T) {
	ix := fakeIndex{"cat": {a, types.Addr(0, 9), types.Addr(4, 0)}}

	got := Evaluate(Parse("cat"), ix, fakeLayout{1})

	assert.Equal(t, [][]types.Address{{a}}, got)
}

func TestEvaluateFallsBackToLowerCase(t *testing.T) {
	ix := fakeIndex{
		"cat":   {a},
		"Alice": {c},
	}
	layout := fakeLayout{3, 2}

	assert.Equal(t, [][]types.Address{{a}, {}}, Evaluate(Parse("Cat"), ix, layout))
	assert.Equal(t, [][]types.Address{{}, {c}}, Evaluate(Parse("Alice"), ix, layout))
	assert.Equal(t, 0, Count(Evaluate(Parse("alice"), ix, layout)))
}

func TestSearchFocusReplacement(t *testing.T) {
	ix := fakeIndex{
		"cat":   {a, b, c},
		"draft": {a, b},
	}
	s := NewSearch(ix, fakeLayout{3, 2})

	focus, ok := s.Focus()
	require.True(t, ok)
	assert.Equal(t, a, focus)
	assert.Equal(t, 5, s.Count())

	require.True(t, s.SetFocus(b))
	s.SetQuery("cat")
	focus, _ = s.Focus()
	assert.Equal(t, b, focus, "focus kept while still a result")

	s.SetQuery("cat -draft")
	focus, ok = s.Focus()
	require.True(t, ok)
	assert.Equal(t, c, focus)
	assert.Equal(t, 1, s.Count())
	assert.False(t, s.SetFocus(a))

	s.SetQuery("unicorn")
	_, ok = s.Focus()
	assert.False(t, ok)
	assert.Equal(t, 0, s.Count())
}

func TestSearchRefreshReportsFocusChange(t *testing.T) {
	ix := fakeIndex{"cat": {a, c}}
	s := NewSearch(ix, fakeLayout{3, 2})
	s.SetQuery("cat")

	assert.False(t, s.Refresh())

	ix["cat"] = []types.Address{c}
	assert.True(t, s.Refresh())
	focus, _ := s.Focus()
	assert.Equal(t, c, focus)
}

func TestSearchAddRemoveTerm(t *testing.T) {
	ix := fakeIndex{"cat": {a, c}, "draft": {a}}
	s := NewSearch(ix, fakeLayout{3, 2})

	s.AddTerm("cat")
	s.AddTerm("  -draft ")
	s.AddTerm("cat")
	assert.Equal(t, "cat -draft", s.Text())
	assert.Equal(t, [][]types.Address{{}, {c}}, s.Results())
	assert.True(t, s.Contains(c))
	assert.False(t, s.Contains(a))

	s.SetQuery("  cat   -draft  cat ")
	s.RemoveTerm("cat")
	assert.Equal(t, "-draft", s.Text())
	assert.Equal(t, 4, s.Count())

	s.AddTerm("")
	assert.Equal(t, "-draft", s.Text())
}

func TestSearchFirstLastPosition(t *testing.T) {
	s := NewSearch(fakeIndex{}, fakeLayout{0, 2, 0})

	first, ok := s.First()
	require.True(t, ok)
	assert.Equal(t, types.Addr(1, 0), first)
	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, types.Addr(1, 1), last)

	pos, ok := s.Position(types.Addr(1, 1))
	require.True(t, ok)
	assert.Equal(t, 1, pos)
	_, ok = s.Position(types.Addr(2, 0))
	assert.False(t, ok)
	assert.Nil(t, s.Folder(7))
}
