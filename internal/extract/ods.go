package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// odfContentPath is the path to the main content inside an OpenDocument zip.
const odfContentPath = "content.xml"

// maxRepeat caps table:number-columns-repeated and table:number-rows-repeated,
// which spreadsheets use to pad sheets out to their full width.
const maxRepeat = 64

// ODSBackend reads the first non-empty table of an .ods spreadsheet as rows.
type ODSBackend struct{}

func (ODSBackend) Name() string     { return "odf-table" }
func (ODSBackend) Requires() string { return "odf-table" }
func (ODSBackend) Available() error { return nil }

func (ODSBackend) Extract(_ context.Context, path string) (*Result, error) {
	contentXML, err := readODFContent(path)
	if err != nil {
		return nil, fmt.Errorf("extract ODS: %w", err)
	}
	rows, err := odsRows(contentXML)
	if err != nil {
		return nil, fmt.Errorf("extract ODS: %w", err)
	}
	return &Result{Text: rowsText(rows), Rows: rows}, nil
}

// readODFContent returns content.xml from an OpenDocument package.
func readODFContent(path string) ([]byte, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("not a zip: %w", err)
	}
	defer zr.Close()
	return readZipEntry(&zr.Reader, odfContentPath)
}

// odsRows walks table:table elements and returns the rows of the first one
// holding any text.
func odsRows(contentXML []byte) ([][]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(contentXML))
	var (
		rows      [][]string
		row       []string
		cell      strings.Builder
		paras     int
		rowRepeat int
		colRepeat int
		inCell    bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse content XML: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "table-row":
				row = nil
				rowRepeat = repeatAttr(t, "number-rows-repeated")
			case "table-cell", "covered-table-cell":
				inCell = true
				cell.Reset()
				paras = 0
				colRepeat = repeatAttr(t, "number-columns-repeated")
			case "p":
				if inCell && paras > 0 {
					cell.WriteByte(' ')
				}
				paras++
			case "s":
				if inCell {
					cell.WriteString(strings.Repeat(" ", repeatAttr(t, "c")))
				}
			case "tab", "line-break":
				if inCell {
					cell.WriteByte(' ')
				}
			}
		case xml.CharData:
			if inCell {
				cell.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "table-cell", "covered-table-cell":
				inCell = false
				value := strings.TrimSpace(cell.String())
				for i := 0; i < colRepeat; i++ {
					row = append(row, value)
				}
			case "table-row":
				row = trimTrailing(row)
				for i := 0; i < rowRepeat && len(row) > 0; i++ {
					rows = append(rows, append([]string(nil), row...))
				}
			case "table":
				if rows = trimRows(rows); len(rows) > 0 {
					return rows, nil
				}
				rows = nil
			}
		}
	}
	return trimRows(rows), nil
}

// repeatAttr reads a positive repeat count attribute, defaulting to 1.
func repeatAttr(t xml.StartElement, local string) int {
	for _, a := range t.Attr {
		if a.Name.Local != local {
			continue
		}
		n, err := strconv.Atoi(a.Value)
		if err != nil || n < 1 {
			return 1
		}
		return min(n, maxRepeat)
	}
	return 1
}

func trimTrailing(row []string) []string {
	for len(row) > 0 && row[len(row)-1] == "" {
		row = row[:len(row)-1]
	}
	return row
}
