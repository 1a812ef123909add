package catalog

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Folder is one opened directory and the images read from it, in the order
// the sidecar returned them.
type Folder struct {
	Path      string
	Label     string
	Collapsed bool // display state only, owned by the caller
	Images    []*Image
}

func newFolder(path string, width int) *Folder {
	return &Folder{
		Path:  path,
		Label: truncateLabel(path, width),
	}
}

// Len returns the number of images in the folder
func (f *Folder) Len() int {
	return len(f.Images)
}

const ellipsis = "..."

// truncateLabel shortens path to at most width runes, keeping its tail.
// When the kept tail contains a separator, it is cut there so the label
// starts on a component boundary.
func truncateLabel(path string, width int) string {
	if utf8.RuneCountInString(path) <= width {
		return path
	}
	keep := width - len(ellipsis)
	if keep < 1 {
		keep = 1
	}

	runes := []rune(path)
	tail := string(runes[len(runes)-keep:])

	sep := string(filepath.Separator)
	if i := strings.Index(tail, sep); i >= 0 && i < len(tail)-1 {
		tail = tail[i:]
	}
	return ellipsis + tail
}
