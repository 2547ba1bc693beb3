// Package structured decodes JSON, YAML, XML, Markdown, and HTML sources into
// generic trees and prose ready for normalization.
package structured

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"gopkg.in/yaml.v3"

	ierrors "github.com/hyperjump/larder/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Document is the result of reading a structured source. Tree holds a
// decoded tree (JSON, YAML, XML, JSON-LD, front matter), Text holds prose for
// the heuristic parser, and Rows holds tables found in the prose.
type Document struct {
	Tree any
	Text string
	Rows [][]string
}

// ParseJSON decodes data into a generic tree. Numbers are kept as json.Number.
func ParseJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, ierrors.NewExtractionFailed("invalid JSON", err)
	}
	return tree, nil
}

// ParseYAML decodes data into a generic tree. Multi-document streams yield a
// list with one element per document.
func ParseYAML(data []byte) (any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	var docs []any
	for {
		var doc any
		err := dec.Decode(&doc)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, ierrors.NewExtractionFailed("invalid YAML", err)
		}
		if doc != nil {
			docs = append(docs, doc)
		}
	}
	switch len(docs) {
	case 0:
		return nil, ierrors.NewExtractionFailed("empty YAML document", nil)
	case 1:
		return docs[0], nil
	}
	return docs, nil
}
