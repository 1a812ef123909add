package catalog

import (
	"bytes"
	"encoding/json"
	"strings"

	"tagshelf/internal/errors"
	"tagshelf/internal/sidecar"
)

// text accepts any JSON scalar. exiftool emits numeric-looking values as
// numbers, so a tag field of "1984" arrives as 1984.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = text(s)
		return nil
	}
	// numbers and booleans keep their literal form
	*t = text(data)
	return nil
}

// record is one element of the sidecar's -json bulk read
type record struct {
	SourceFile       text `json:"SourceFile"`
	Artist           text `json:"Artist"`
	PageName         text `json:"PageName"`
	ImageDescription text `json:"ImageDescription"`
	UserComment      text `json:"UserComment"`
	ImageSize        text `json:"ImageSize"`
}

// parseRecords decodes a bulk read. An empty response means no matching
// files. A response that is not a JSON array fails the whole folder; a
// record without a usable SourceFile only fails itself and is reported
// through skipped.
func parseRecords(folder, response string) (images []*Image, skipped []error, err error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, nil, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(response), &raw); err != nil {
		return nil, nil, errors.NewFolderError("malformed bulk read", folder, err)
	}

	for i, msg := range raw {
		var rec record
		if err := json.Unmarshal(msg, &rec); err != nil {
			skipped = append(skipped, errors.NewRecordError("unreadable record", folder, i, err))
			continue
		}
		file := strings.TrimSpace(string(rec.SourceFile))
		if file == "" {
			skipped = append(skipped, errors.NewRecordError("record has no "+sidecar.AttrSource, folder, i, nil))
			continue
		}
		images = append(images, newImage(
			file,
			decodeList(string(rec.Artist)),
			decodeList(string(rec.PageName)),
			decodeList(string(rec.ImageDescription)),
			string(rec.UserComment),
			string(rec.ImageSize),
		))
	}
	return images, skipped, nil
}

// encodeList renders a field value as written to the file: ["a","b"].
// Embedded double quotes are escaped so the value stays decodable.
func encodeList(values []string) string {
	if values == nil {
		values = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(values); err != nil {
		return "[]"
	}
	return strings.TrimSpace(buf.String())
}

// decodeList reads a field value written by encodeList. Non-string array
// elements are dropped. A plain value that is not a JSON array is taken as a
// single entry, which covers files tagged by other tools.
func decodeList(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if !strings.HasPrefix(value, "[") {
		return []string{value}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(value), &elems); err != nil {
		return nil
	}
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		var s *string
		if json.Unmarshal(e, &s) == nil && s != nil {
			out = append(out, *s)
		}
	}
	return out
}

// escapeNotes escapes double quotes for the quoted UserComment write
func escapeNotes(notes string) string {
	return strings.ReplaceAll(notes, `"`, `\"`)
}

// decodeNotes undoes the quoting applied by SetNotes. Comments written by
// other tools come back unchanged.
func decodeNotes(notes string) string {
	if len(notes) < 2 || !strings.HasPrefix(notes, `"`) || !strings.HasSuffix(notes, `"`) {
		return notes
	}
	return strings.ReplaceAll(notes[1:len(notes)-1], `\"`, `"`)
}
