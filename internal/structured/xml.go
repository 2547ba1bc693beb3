package structured

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	ierrors "github.com/hyperjump/larder/internal/errors"
)

// ParseXML decodes data into a generic tree and returns the content of the
// root element. Child elements become keys, repeated children become lists,
// attributes become keys of their element, and text-only elements become
// strings.
func ParseXML(data []byte) (any, error) {
	dec := xml.NewDecoder(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	dec.CharsetReader = charset.NewReaderLabel
	dec.Strict = false
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ierrors.NewExtractionFailed("empty XML document", nil)
			}
			return nil, ierrors.NewExtractionFailed("invalid XML", err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			node, err := decodeElement(dec, start)
			if err != nil {
				return nil, ierrors.NewExtractionFailed("invalid XML", err)
			}
			return node, nil
		}
	}
}

func decodeElement(dec *xml.Decoder, start xml.StartElement) (any, error) {
	children := make(map[string]any)
	var order []string
	var text strings.Builder

	add := func(name string, v any) {
		existing, ok := children[name]
		if !ok {
			children[name] = v
			order = append(order, name)
			return
		}
		if list, isList := existing.([]any); isList {
			children[name] = append(list, v)
			return
		}
		children[name] = []any{existing, v}
	}

	for _, a := range start.Attr {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		add(a.Name.Local, a.Value)
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := decodeElement(dec, t)
			if err != nil {
				return nil, err
			}
			add(t.Name.Local, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			s := strings.TrimSpace(text.String())
			if len(children) == 0 {
				return s, nil
			}
			if s != "" {
				add("#text", s)
			}
			return children, nil
		}
	}
}
