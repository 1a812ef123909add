package types

import "fmt"

// Address identifies one catalogued image by folder position and image
// position within that folder. It is a value key, not a pointer: any folder
// open, close or reload invalidates every address handed out before it, and
// holders must re-resolve by path.
type Address struct {
	Folder int `json:"folder"`
	Image  int `json:"image"`
}

// Addr is shorthand for Address{Folder: folder, Image: image}
func Addr(folder, image int) Address {
	return Address{Folder: folder, Image: image}
}

// Less orders addresses by folder, then image
func (a Address) Less(b Address) bool {
	if a.Folder != b.Folder {
		return a.Folder < b.Folder
	}
	return a.Image < b.Image
}

// Compare returns -1, 0 or +1 following Less; usable with slices.SortFunc
func (a Address) Compare(b Address) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}

func (a Address) String() string {
	return fmt.Sprintf("%d:%d", a.Folder, a.Image)
}
