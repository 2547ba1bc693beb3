package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// docxDocumentXMLPath is the default path to the main document body inside a .docx zip.
const docxDocumentXMLPath = "word/document.xml"

// contentTypesPath is the path to [Content_Types].xml in OOXML packages.
const contentTypesPath = "[Content_Types].xml"

// docxMainContentType is the content type for the main document in DOCX files.
const docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"

// partNameRe extracts PartName from Override elements in [Content_Types].xml.
var partNameRe = regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"`)

// partNameRe2 handles the case where ContentType appears before PartName.
var partNameRe2 = regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"[^>]+PartName="([^"]+)"`)

// OOXMLBackend reads .docx bodies paragraph by paragraph. Tables come back
// both as tab-separated lines in Text and as Rows.
type OOXMLBackend struct{}

func (OOXMLBackend) Name() string     { return "ooxml" }
func (OOXMLBackend) Requires() string { return "ooxml" }
func (OOXMLBackend) Available() error { return nil }

func (OOXMLBackend) Extract(_ context.Context, path string) (*Result, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("extract DOCX: not a zip: %w", err)
	}
	defer zr.Close()

	// Find main document path from [Content_Types].xml, fall back to default
	docPath := findDocxMainDocumentPath(&zr.Reader)
	if docPath == "" {
		docPath = docxDocumentXMLPath
	}
	docXML, err := readZipEntry(&zr.Reader, docPath)
	if err != nil {
		return nil, fmt.Errorf("extract DOCX: %w", err)
	}
	return walkDocx(docXML)
}

// findDocxMainDocumentPath finds the main document path from [Content_Types].xml.
// Returns the path without leading slash, or empty string if not found.
func findDocxMainDocumentPath(zr *zip.Reader) string {
	content, err := readZipEntry(zr, contentTypesPath)
	if err != nil {
		return ""
	}
	// Try both attribute orders
	if matches := partNameRe.FindSubmatch(content); len(matches) > 1 {
		return strings.TrimPrefix(string(matches[1]), "/")
	}
	if matches := partNameRe2.FindSubmatch(content); len(matches) > 1 {
		return strings.TrimPrefix(string(matches[1]), "/")
	}
	return ""
}

// readZipEntry returns the content of the named archive member.
func readZipEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		defer rc.Close()
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("%s not found", name)
}

// walkDocx streams the WordprocessingML body. Paragraphs end lines; inside a
// table, paragraphs of one cell are joined with spaces and each row becomes
// one tab-separated line.
func walkDocx(docXML []byte) (*Result, error) {
	dec := xml.NewDecoder(bytes.NewReader(docXML))
	var (
		text     strings.Builder
		para     strings.Builder
		rows     [][]string
		row      []string
		cell     []string
		tblDepth int
		inText   bool
	)
	flushPara := func() {
		p := strings.TrimSpace(para.String())
		para.Reset()
		if tblDepth > 0 {
			if p != "" {
				cell = append(cell, p)
			}
			return
		}
		text.WriteString(p)
		text.WriteByte('\n')
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document XML: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tblDepth++
			case "tr":
				if tblDepth == 1 {
					row = nil
				}
			case "tc":
				if tblDepth == 1 {
					cell = nil
				}
			case "t":
				inText = true
			case "tab":
				para.WriteByte(' ')
			case "br", "cr":
				if tblDepth > 0 {
					para.WriteByte(' ')
				} else {
					para.WriteByte('\n')
				}
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				flushPara()
			case "tc":
				if tblDepth == 1 {
					row = append(row, strings.Join(cell, " "))
				}
			case "tr":
				if tblDepth == 1 {
					rows = append(rows, row)
					text.WriteString(strings.Join(row, "\t"))
					text.WriteByte('\n')
				}
			case "tbl":
				tblDepth--
			}
		}
	}
	return &Result{Text: strings.TrimSpace(text.String()), Rows: rows}, nil
}
