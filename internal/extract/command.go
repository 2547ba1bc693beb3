package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandBackend runs an external converter that writes plain text to stdout.
type CommandBackend struct {
	name     string
	binary   string
	requires string
	args     func(path string) []string

	// lookPath resolves binary; tests replace it.
	lookPath func(file string) (string, error)
}

// NewCommandBackend returns a backend that runs binary with args(path).
func NewCommandBackend(name, binary, requires string, args func(path string) []string) *CommandBackend {
	return &CommandBackend{
		name:     name,
		binary:   binary,
		requires: requires,
		args:     args,
		lookPath: exec.LookPath,
	}
}

// NewPdftotextBackend uses poppler's pdftotext.
func NewPdftotextBackend() *CommandBackend {
	return NewCommandBackend("pdftotext", "pdftotext", "pdftotext (poppler-utils)", func(path string) []string {
		return []string{"-enc", "UTF-8", path, "-"}
	})
}

// NewAntiwordBackend reads legacy Word files with antiword.
func NewAntiwordBackend() *CommandBackend {
	return NewCommandBackend("antiword", "antiword", "antiword", func(path string) []string {
		return []string{"-w", "0", path}
	})
}

// NewCatdocBackend reads legacy Word files with catdoc.
func NewCatdocBackend() *CommandBackend {
	return NewCommandBackend("catdoc", "catdoc", "catdoc", func(path string) []string {
		return []string{"-w", "-d", "utf-8", path}
	})
}

// NewTextutilBackend uses the macOS textutil converter.
func NewTextutilBackend() *CommandBackend {
	return NewCommandBackend("textutil", "textutil", "textutil (macOS)", func(path string) []string {
		return []string{"-convert", "txt", "-stdout", path}
	})
}

func (c *CommandBackend) Name() string     { return c.name }
func (c *CommandBackend) Requires() string { return c.requires }

// Available reports whether the binary is on PATH.
func (c *CommandBackend) Available() error {
	_, err := c.lookPath(c.binary)
	return err
}

// Extract runs the converter and returns its standard output.
func (c *CommandBackend) Extract(ctx context.Context, path string) (*Result, error) {
	bin, err := c.lookPath(c.binary)
	if err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, bin, c.args(path)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", c.binary, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", c.binary, err)
	}
	text := strings.ReplaceAll(validUTF8(stdout.Bytes()), "\f", "\n")
	return &Result{Text: text}, nil
}
