package testutils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// Updated is exiftool's reply to a successful single-file write
const Updated = "    1 image files updated\n"

// Record is one file of a fake bulk read. Empty fields are left out of the
// JSON, as exiftool does for missing tags.
type Record struct {
	Name             string
	Artist           string
	PageName         string
	ImageDescription string
	UserComment      string
	ImageSize        string
	Content          string // file content written to disk
}

// Write is one field write received by FakeSidecar
type Write struct {
	Attr  string
	Value string
	File  string
}

// FakeSidecar answers bulk reads from a per-folder table and records every
// field write. It satisfies catalog.Sidecar.
type FakeSidecar struct {
	mu       sync.Mutex
	Reads    map[string]string
	ReadErrs map[string]error
	Writes   []Write
	Response string // reply to writes
	WriteErr error
}

// NewFakeSidecar creates a sidecar that confirms every write
func NewFakeSidecar() *FakeSidecar {
	return &FakeSidecar{
		Reads:    make(map[string]string),
		ReadErrs: make(map[string]error),
		Response: Updated,
	}
}

// Submit implements catalog.Sidecar. The last line of every command is its
// target path.
func (f *FakeSidecar) Submit(lines []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	target := lines[len(lines)-1]
	if lines[0] == "-overwrite_original" {
		var assign string
		for _, line := range lines[1 : len(lines)-1] {
			if strings.Contains(line, "=") {
				assign = strings.TrimPrefix(line, "-")
			}
		}
		attr, value, _ := strings.Cut(assign, "=")
		f.Writes = append(f.Writes, Write{Attr: attr, Value: value, File: target})
		return f.Response, f.WriteErr
	}
	if err := f.ReadErrs[target]; err != nil {
		return "", err
	}
	return f.Reads[target], nil
}

// LastWrite returns the most recent write, failing the test if there is none
func (f *FakeSidecar) LastWrite(t *testing.T) Write {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.Writes, "no field write was submitted")
	return f.Writes[len(f.Writes)-1]
}

// Folder creates dir with one file per record and registers the matching
// bulk read response
func (f *FakeSidecar) Folder(t *testing.T, dir string, records ...Record) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))

	out := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		path := filepath.Join(dir, rec.Name)
		require.NoError(t, os.WriteFile(path, []byte(rec.Content), 0o644))
		entry := map[string]string{"SourceFile": path, "FileName": rec.Name}
		for key, value := range map[string]string{
			"Artist":           rec.Artist,
			"PageName":         rec.PageName,
			"ImageDescription": rec.ImageDescription,
			"UserComment":      rec.UserComment,
			"ImageSize":        rec.ImageSize,
		} {
			if value != "" {
				entry[key] = value
			}
		}
		out = append(out, entry)
	}
	data, err := json.Marshal(out)
	require.NoError(t, err)

	f.mu.Lock()
	f.Reads[dir] = string(data)
	f.mu.Unlock()
}

// List renders values the way the catalog writes list fields
func List(values ...string) string {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// CreateTestFilesWithContent creates test files with specific content
func CreateTestFilesWithContent(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)
		require.NoError(t, err)
	}
}

// StripANSI removes ANSI escape sequences from a string
func StripANSI(str string) string {
	var result []rune
	inEscape := false
	for _, r := range str {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEscape = false
			}
			continue
		}
		result = append(result, r)
	}
	return string(result)
}
