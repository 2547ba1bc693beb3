package extract

import (
	"context"
	"fmt"

	"github.com/lu4p/cat"
)

// CatBackend uses lu4p/cat, which reads .docx, .odt and .rtf text in-process.
// Its paragraph matcher misses <w:p> elements with attributes, so it only
// serves as a fallback behind OOXMLBackend and ODFTextBackend.
type CatBackend struct{}

func (CatBackend) Name() string     { return "cat" }
func (CatBackend) Requires() string { return "cat" }
func (CatBackend) Available() error { return nil }

func (CatBackend) Extract(_ context.Context, path string) (*Result, error) {
	text, err := cat.File(path)
	if err != nil {
		return nil, fmt.Errorf("cat: %w", err)
	}
	return &Result{Text: validUTF8([]byte(text))}, nil
}
