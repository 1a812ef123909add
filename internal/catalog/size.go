package catalog

import (
	"fmt"
	"os"
	"sync"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
)

var registerMakerNotes sync.Once

// probeSize reads pixel dimensions from a file's EXIF block. It is the
// fallback for records the sidecar returned without ImageSize and yields ""
// when the file carries no usable EXIF dimensions.
func probeSize(path string) string {
	registerMakerNotes.Do(func() {
		exif.RegisterParsers(mknote.All...)
	})

	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return ""
	}

	width, err := x.Get(exif.PixelXDimension)
	if err != nil {
		return ""
	}
	height, err := x.Get(exif.PixelYDimension)
	if err != nil {
		return ""
	}
	w, err := width.Int(0)
	if err != nil {
		return ""
	}
	h, err := height.Int(0)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%dx%d", w, h)
}
