// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders stored articles to user-facing files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/paper-harvest/pkg/types"
)

// Format identifies an export file format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
	FormatText  Format = "txt"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSONL, FormatText:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// DefaultPath returns the default output path for a format.
func DefaultPath(f Format) string {
	return "export." + string(f)
}

// header is the column order shared by the csv and jsonl formats.
var header = []string{"article_url", "title", "journal", "published_date", "abstract_en", "abstract_zh"}

// WriteCSV writes rows as UTF-8 CSV with a byte-order mark so spreadsheet
// tools detect the encoding.
func WriteCSV(w io.Writer, rows []types.Article) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("writing byte-order mark: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range rows {
		record := []string{r.URL, r.Title, r.Journal, r.PublishedDate, r.AbstractEN, r.AbstractZH}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row for %s: %w", r.URL, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// exportRow fixes the JSON key order and renders absent fields as null.
type exportRow struct {
	ArticleURL    string  `json:"article_url"`
	Title         *string `json:"title"`
	Journal       *string `json:"journal"`
	PublishedDate *string `json:"published_date"`
	AbstractEN    *string `json:"abstract_en"`
	AbstractZH    *string `json:"abstract_zh"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// WriteJSONL writes one JSON object per row. Non-ASCII text is emitted raw.
func WriteJSONL(w io.Writer, rows []types.Article) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range rows {
		row := exportRow{
			ArticleURL:    r.URL,
			Title:         nullable(r.Title),
			Journal:       nullable(r.Journal),
			PublishedDate: nullable(r.PublishedDate),
			AbstractEN:    nullable(r.AbstractEN),
			AbstractZH:    nullable(r.AbstractZH),
		}
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("encoding row for %s: %w", r.URL, err)
		}
	}
	return nil
}

// WriteText writes human-readable blocks, one per row, blank-line separated.
// Absent fields render as "-".
func WriteText(w io.Writer, rows []types.Article) error {
	for i, r := range rows {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return fmt.Errorf("writing separator: %w", err)
			}
		}
		lines := []struct{ label, value string }{
			{"URL", r.URL},
			{"Title", r.Title},
			{"Journal", r.Journal},
			{"Published", r.PublishedDate},
			{"Abstract EN", r.AbstractEN},
			{"Abstract ZH", r.AbstractZH},
		}
		for _, ln := range lines {
			v := ln.value
			if v == "" {
				v = "-"
			}
			if _, err := fmt.Fprintf(w, "%s: %s\n", ln.label, v); err != nil {
				return fmt.Errorf("writing text row for %s: %w", r.URL, err)
			}
		}
	}
	return nil
}

// WriteFile renders rows to path in the given format, creating parent
// directories as needed.
func WriteFile(path string, format Format, rows []types.Article) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}

	var werr error
	switch format {
	case FormatCSV:
		werr = WriteCSV(f, rows)
	case FormatJSONL:
		werr = WriteJSONL(f, rows)
	case FormatText:
		werr = WriteText(f, rows)
	default:
		werr = fmt.Errorf("unsupported export format %q", format)
	}
	if werr != nil {
		f.Close()
		return werr
	}
	return f.Close()
}
