package catalog

import (
	"testing"

	"tagshelf/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateLabel(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		width int
		want  string
	}{
		{"short path kept", "/pics/cats", 20, "/pics/cats"},
		{"exact width kept", "/aaaaaaaaa/bbbbbbbbb", 20, "/aaaaaaaaa/bbbbbbbbb"},
		{"cut at separator", "/home/someone/pictures/cats", 20, ".../pictures/cats"},
		{"no separator in tail", "/home/averyveryverylongfoldername", 20, "...erylongfoldername"},
		{"separator at end ignored", "/home/someone/abcdefghijklmnop/", 20, "...abcdefghijklmnop/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncateLabel(tt.path, tt.width))
		})
	}
}

func TestImageSetNormalization(t *testing.T) {
	img := newImage("/pics/./a.jpg", []string{" Bob ", "Bob", ""}, nil, []string{"Dog", "cat", " CAT"}, "", "")

	assert.Equal(t, "/pics/a.jpg", img.Path)
	assert.Equal(t, []string{"Bob"}, img.Artists)
	assert.Equal(t, []string{}, img.Links)
	assert.Equal(t, []string{"cat", "dog"}, img.Tags)
	assert.Equal(t, []string{"Bob", "cat", "dog"}, img.Terms())
	assert.True(t, img.Has(types.Tags, " DOG"))
	assert.False(t, img.Has(types.Artists, "bob"))

	_, changed := img.add(types.Tags, "  ")
	assert.False(t, changed)
	term, changed := img.add(types.Tags, "Bird")
	assert.True(t, changed)
	assert.Equal(t, "bird", term)
	assert.Equal(t, []string{"bird", "cat", "dog"}, img.Tags)

	_, changed = img.remove(types.Tags, "fish")
	assert.False(t, changed)
	_, changed = img.remove(types.Tags, "CAT")
	assert.True(t, changed)
	assert.Equal(t, []string{"bird", "dog"}, img.Tags)
}

func TestImageAddKeepsEarlierSlices(t *testing.T) {
	// duplicates leave spare capacity behind the normalized tags
	img := newImage("/pics/a.jpg", nil, nil, []string{"dog", "dog", "cat"}, "", "")
	before := img.Values(types.Tags)
	require.Equal(t, []string{"cat", "dog"}, before)

	_, changed := img.add(types.Tags, "ant")
	require.True(t, changed)

	assert.Equal(t, []string{"cat", "dog"}, before)
	assert.Equal(t, []string{"ant", "cat", "dog"}, img.Tags)
}
