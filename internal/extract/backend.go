// Package extract turns source files into raw text or rows of cells.
//
// Every format has an ordered chain of backends. A Runner tries them in order
// and returns the first non-empty result, so a missing external tool or a
// library that chokes on one file falls through to the next backend.
package extract

import (
	"context"
	"strings"

	"github.com/hyperjump/larder/internal/models"
)

// Result is the output of one successful extraction.
type Result struct {
	Text    string
	Rows    [][]string
	Backend string
}

// Empty reports whether the result carries neither text nor any non-blank cell.
func (r *Result) Empty() bool {
	if r == nil {
		return true
	}
	if strings.TrimSpace(r.Text) != "" {
		return false
	}
	for _, row := range r.Rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return false
			}
		}
	}
	return true
}

// Backend extracts content from one family of files.
type Backend interface {
	// Name identifies the backend in logs, results and the disabled list.
	Name() string
	// Requires names what the user must install when Available fails.
	Requires() string
	// Available reports whether the backend can run right now.
	Available() error
	Extract(ctx context.Context, path string) (*Result, error)
}

// Registry maps a format to its ordered backend chain.
type Registry map[models.Format][]Backend

// DefaultRegistry returns the built-in chains.
func DefaultRegistry() Registry {
	plain := PlainBackend{}
	cat := CatBackend{}
	textutil := NewTextutilBackend()
	return Registry{
		models.FormatPDF:      {PDFBackend{}, PDFCPUBackend{}, NewPdftotextBackend()},
		models.FormatDOC:      {NewAntiwordBackend(), NewCatdocBackend(), WordStreamBackend{}},
		models.FormatDOCX:     {OOXMLBackend{}, cat},
		models.FormatODT:      {ODFTextBackend{}, cat, textutil},
		models.FormatRTF:      {cat, textutil},
		models.FormatXLSX:     {ExcelBackend{}},
		models.FormatODS:      {ODSBackend{}},
		models.FormatCSV:      {CSVBackend{}},
		models.FormatTXT:      {plain},
		models.FormatText:     {plain},
		models.FormatMarkdown: {plain},
		models.FormatJSON:     {plain},
		models.FormatXML:      {plain},
		models.FormatYAML:     {plain},
		models.FormatHTML:     {plain},
	}
}

// Without returns a copy of r with the named backends removed from every chain.
func (r Registry) Without(names ...string) Registry {
	if len(names) == 0 {
		return r
	}
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[strings.ToLower(strings.TrimSpace(n))] = true
	}
	out := make(Registry, len(r))
	for format, chain := range r {
		kept := make([]Backend, 0, len(chain))
		for _, b := range chain {
			if !drop[strings.ToLower(b.Name())] {
				kept = append(kept, b)
			}
		}
		out[format] = kept
	}
	return out
}
