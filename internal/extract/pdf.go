package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFBackend reads the text layer with ledongthuc/pdf.
type PDFBackend struct{}

func (PDFBackend) Name() string     { return "ledongthuc-pdf" }
func (PDFBackend) Requires() string { return "ledongthuc-pdf" }
func (PDFBackend) Available() error { return nil }

// Extract concatenates the plain text of every page, one page per paragraph.
func (PDFBackend) Extract(ctx context.Context, path string) (res *Result, err error) {
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if rec := recover(); rec != nil {
			res, err = nil, fmt.Errorf("read PDF: %v", rec)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	defer f.Close()

	var buf strings.Builder
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		buf.WriteString(text)
		if i < numPages {
			buf.WriteString("\n\n")
		}
	}
	return &Result{Text: validUTF8([]byte(buf.String()))}, nil
}
