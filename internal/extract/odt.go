package extract

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// ODFTextBackend reads OpenDocument text (.odt) bodies, one line per
// paragraph or heading. List items are paragraphs too, so they keep their lines.
type ODFTextBackend struct{}

func (ODFTextBackend) Name() string     { return "odf-text" }
func (ODFTextBackend) Requires() string { return "odf-text" }
func (ODFTextBackend) Available() error { return nil }

func (ODFTextBackend) Extract(_ context.Context, path string) (*Result, error) {
	contentXML, err := readODFContent(path)
	if err != nil {
		return nil, fmt.Errorf("extract ODT: %w", err)
	}
	text, err := odtText(contentXML)
	if err != nil {
		return nil, fmt.Errorf("extract ODT: %w", err)
	}
	return &Result{Text: text}, nil
}

func odtText(contentXML []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(contentXML))
	var (
		out    strings.Builder
		line   strings.Builder
		depth  int
		inBody bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse content XML: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "body":
				inBody = true
			case "p", "h":
				depth++
			case "s":
				if depth > 0 {
					line.WriteString(strings.Repeat(" ", repeatAttr(t, "c")))
				}
			case "tab":
				line.WriteByte(' ')
			case "line-break":
				line.WriteByte('\n')
			}
		case xml.CharData:
			if inBody && depth > 0 {
				line.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p", "h":
				depth--
				if depth == 0 {
					out.WriteString(strings.TrimSpace(line.String()))
					out.WriteByte('\n')
					line.Reset()
				}
			case "body":
				inBody = false
			}
		}
	}
	return strings.TrimSpace(out.String()), nil
}
