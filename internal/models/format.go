package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies the kind of source being imported.
type Format string

const (
	FormatAuto     Format = ""
	FormatText     Format = "text" // pasted text, no file
	FormatTXT      Format = "txt"
	FormatPDF      Format = "pdf"
	FormatDOC      Format = "doc"
	FormatDOCX     Format = "docx"
	FormatODT      Format = "odt"
	FormatRTF      Format = "rtf"
	FormatXLSX     Format = "xlsx"
	FormatODS      Format = "ods"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatXML      Format = "xml"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

var extensionFormats = map[string]Format{
	".txt":      FormatTXT,
	".text":     FormatTXT,
	".pdf":      FormatPDF,
	".doc":      FormatDOC,
	".docx":     FormatDOCX,
	".odt":      FormatODT,
	".rtf":      FormatRTF,
	".xlsx":     FormatXLSX,
	".xlsm":     FormatXLSX,
	".ods":      FormatODS,
	".csv":      FormatCSV,
	".json":     FormatJSON,
	".jsonld":   FormatJSON,
	".xml":      FormatXML,
	".yaml":     FormatYAML,
	".yml":      FormatYAML,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".html":     FormatHTML,
	".htm":      FormatHTML,
}

// DetectFormat returns the format for path based on its extension.
func DetectFormat(path string) (Format, bool) {
	f, ok := extensionFormats[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

// SupportedExtensions returns every file extension with a known format.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extensionFormats))
	for ext := range extensionFormats {
		exts = append(exts, ext)
	}
	return exts
}

// ParseFormat parses a user-supplied format name. "auto" and "" mean detect from path.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "auto":
		return FormatAuto, nil
	case "md":
		return FormatMarkdown, nil
	case "yml":
		return FormatYAML, nil
	case "htm":
		return FormatHTML, nil
	}
	f := Format(s)
	if f == FormatText {
		return f, nil
	}
	for _, known := range extensionFormats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format: %q", s)
}

// IsTree reports whether the format parses into a generic structured tree.
func (f Format) IsTree() bool {
	switch f {
	case FormatJSON, FormatXML, FormatYAML:
		return true
	}
	return false
}

// IsTabular reports whether the format yields rows of cells.
func (f Format) IsTabular() bool {
	switch f {
	case FormatXLSX, FormatODS, FormatCSV:
		return true
	}
	return false
}

// IsBinary reports whether the format needs an extraction backend to produce text.
func (f Format) IsBinary() bool {
	switch f {
	case FormatPDF, FormatDOC, FormatDOCX, FormatODT, FormatRTF, FormatXLSX, FormatODS:
		return true
	}
	return false
}
