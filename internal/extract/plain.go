package extract

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// PlainBackend reads text files as-is.
type PlainBackend struct{}

func (PlainBackend) Name() string     { return "plain" }
func (PlainBackend) Requires() string { return "plain" }
func (PlainBackend) Available() error { return nil }

// Extract returns the file content, replacing invalid UTF-8 sequences.
func (PlainBackend) Extract(_ context.Context, path string) (*Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return &Result{Text: validUTF8(content)}, nil
}

// validUTF8 returns content as a string with invalid sequences replaced by U+FFFD.
func validUTF8(content []byte) string {
	if !utf8.Valid(content) {
		return strings.ToValidUTF8(string(content), "\uFFFD")
	}
	return string(content)
}
