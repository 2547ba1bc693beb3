package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
)

// CSVBackend reads comma- or semicolon-separated files as rows.
type CSVBackend struct{}

func (CSVBackend) Name() string     { return "csv" }
func (CSVBackend) Requires() string { return "csv" }
func (CSVBackend) Available() error { return nil }

func (CSVBackend) Extract(_ context.Context, path string) (*Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader([]byte(validUTF8(content))))
	r.Comma = sniffDelimiter(content)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}
	rows = trimRows(rows)
	return &Result{Text: rowsText(rows), Rows: rows}, nil
}

// sniffDelimiter picks the most frequent candidate separator on the first line.
func sniffDelimiter(content []byte) rune {
	first := content
	if i := bytes.IndexByte(content, '\n'); i >= 0 {
		first = content[:i]
	}
	best, bestCount := ',', bytes.Count(first, []byte{','})
	for _, c := range []rune{';', '\t'} {
		if n := bytes.Count(first, []byte(string(c))); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}
