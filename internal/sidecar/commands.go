package sidecar

import (
	"regexp"
	"strings"

	"tagshelf/pkg/types"
)

// exiftool tag names backing each catalog field
const (
	AttrSource = "SourceFile"
	AttrArtist = "Artist"
	AttrLink   = "PageName"
	AttrTags   = "ImageDescription"
	AttrNotes  = "UserComment"
	AttrSize   = "ImageSize"
)

// Attribute returns the exiftool tag a field is stored in
func Attribute(f types.Field) string {
	switch f {
	case types.Artists:
		return AttrArtist
	case types.Links:
		return AttrLink
	case types.Tags:
		return AttrTags
	default:
		return AttrNotes
	}
}

// ReadFolderArgs builds the bulk read of every image with one of exts
// directly inside dir, or anywhere below it when recursive is set.
func ReadFolderArgs(dir string, exts []string, recursive bool) []string {
	args := []string{
		"-FileOrder8", "FileName", // sort by file name, 8-bit characters
		"-fast2",
		"-FileName",
		"-" + AttrArtist,
		"-" + AttrLink,
		"-" + AttrTags,
		"-" + AttrSize,
		"-" + AttrNotes,
		"-json",
	}
	if recursive {
		args = append(args, "-r")
	}
	for _, ext := range exts {
		args = append(args, "-ext", strings.TrimPrefix(ext, "."))
	}
	return append(args, dir)
}

// WriteFieldArgs builds an in-place write of one tag on one file.
// -m lets exiftool accept minor warnings such as a missing IFD0.
func WriteFieldArgs(attr, value, file string) []string {
	return []string{
		"-overwrite_original",
		"-m",
		"-" + attr + "=" + flatten(value),
		file,
	}
}

// StopArgs ends stay_open mode; the process exits after reading them.
func StopArgs() []string {
	return []string{"-stay_open", "False"}
}

var updatedRe = regexp.MustCompile(`(?m)^\s*[1-9]\d* image files? (updated|unchanged)`)

// WriteConfirmed reports whether a write response carries exiftool's
// "N image files updated" (or unchanged) summary line.
func WriteConfirmed(response string) bool {
	return updatedRe.MatchString(response)
}

// flatten keeps a value on one argument line
func flatten(value string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(value)
}
