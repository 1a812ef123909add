package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"tagshelf/internal/catalog"
	"tagshelf/internal/session"
	"tagshelf/pkg/types"
)

func plural(n int, singular, pluralForm string) string {
	return english.PluralWord(n, singular, pluralForm)
}

// renderResults prints the current results grouped by folder
func renderResults(w io.Writer, s *session.Session) {
	search := s.Search()
	c := s.Catalog()

	folders := 0
	for f, addrs := range search.Results() {
		if len(addrs) == 0 {
			continue
		}
		folders++
		folder, err := c.Folder(f)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%s %s\n", headerText(folder.Label), badgeText(fmt.Sprintf("(%s)", humanize.Comma(int64(len(addrs))))))
		if folder.Collapsed {
			continue
		}
		for _, addr := range addrs {
			img, err := c.Image(addr)
			if err != nil {
				continue
			}
			line := "  " + primaryText(img.Name())
			if img.Size != "" {
				line += " " + infoText(img.Size)
			}
			if len(img.Tags) > 0 {
				line += "  " + strings.Join(img.Tags, " ")
			}
			fmt.Fprintln(w, line)
		}
	}

	total := search.Count()
	summary := fmt.Sprintf("%s %s in %s %s", humanize.Comma(int64(total)), plural(total, "result", "results"),
		humanize.Comma(int64(folders)), plural(folders, "folder", "folders"))
	if q := search.Text(); strings.TrimSpace(q) != "" {
		summary += fmt.Sprintf(" for %q", q)
	}
	fmt.Fprintln(w, infoText(summary))
}

// renderImage prints every field of one image
func renderImage(w io.Writer, img *catalog.Image) {
	fmt.Fprintln(w, headerText(img.Name()))
	fmt.Fprintf(w, "  %-8s %s\n", "path", img.Path)
	if info, err := os.Stat(img.Path); err == nil {
		fmt.Fprintf(w, "  %-8s %s, modified %s\n", "file", humanize.Bytes(uint64(info.Size())), humanize.Time(info.ModTime()))
	}
	if img.Size != "" {
		fmt.Fprintf(w, "  %-8s %s\n", "size", img.Size)
	}
	for _, f := range types.ListFields {
		values := img.Values(f)
		fmt.Fprintf(w, "  %-8s %s\n", f, primaryText(strings.Join(values, ", ")))
	}
	if img.Notes != "" {
		fmt.Fprintf(w, "  %-8s %s\n", types.Notes, img.Notes)
	}
}

// renderTags prints the aggregated values of the selection, one bucket per
// list field
func renderTags(w io.Writer, s *session.Session) {
	sel := s.Selection()
	fmt.Fprintln(w, infoText(fmt.Sprintf("%s selected", humanize.Comma(int64(sel.Len())))))
	for _, f := range types.ListFields {
		bucket := sel.Tags(f)
		if len(bucket) == 0 {
			continue
		}
		fmt.Fprintln(w, headerText(f.String()))
		for _, tc := range bucket {
			fmt.Fprintf(w, "  %s %s\n", badgeText(fmt.Sprintf("(%d):", tc.Count)), tc.Value)
		}
	}
}
