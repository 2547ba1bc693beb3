package structured

import (
	"bytes"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	ierrors "github.com/hyperjump/larder/internal/errors"
)

var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

// ParseHTML reads a saved recipe page. Embedded JSON-LD blocks become Tree
// (a list of every decoded node). The visible page is converted to Markdown
// and flattened like ParseMarkdown, so prose parsing remains available when
// the page has no structured data.
func ParseHTML(data []byte) (*Document, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, ierrors.NewExtractionFailed("invalid HTML", err)
	}

	doc := &Document{}
	if nodes := jsonLD(root); len(nodes) > 0 {
		doc.Tree = nodes
	}

	md, err := mdConverter.ConvertString(string(data))
	if err != nil {
		return nil, ierrors.NewExtractionFailed("convert HTML", err)
	}
	body, err := ParseMarkdown([]byte(md))
	if err != nil {
		return nil, err
	}
	doc.Text = body.Text
	doc.Rows = body.Rows
	if doc.Text == "" {
		doc.Text = pageTitle(root)
	}
	return doc, nil
}

// jsonLD decodes every <script type="application/ld+json"> block. Blocks
// that fail to decode are skipped; pages often carry one broken block.
func jsonLD(n *html.Node) []any {
	var nodes []any
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Script && isJSONLD(n) {
			var b strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					b.WriteString(c.Data)
				}
			}
			if tree, err := ParseJSON([]byte(b.String())); err == nil {
				switch v := tree.(type) {
				case []any:
					nodes = append(nodes, v...)
				case map[string]any:
					if graph, ok := v["@graph"].([]any); ok {
						nodes = append(nodes, graph...)
					} else {
						nodes = append(nodes, v)
					}
				}
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return nodes
}

func isJSONLD(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Key == "type" && strings.EqualFold(strings.TrimSpace(a.Val), "application/ld+json") {
			return true
		}
	}
	return false
}

func pageTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title {
		if n.FirstChild != nil {
			return strings.TrimSpace(n.FirstChild.Data)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := pageTitle(c); t != "" {
			return t
		}
	}
	return ""
}

// HasRecipe reports whether a JSON-LD node list contains a Recipe.
func HasRecipe(nodes any) bool {
	list, ok := nodes.([]any)
	if !ok {
		return false
	}
	for _, el := range list {
		obj, ok := el.(map[string]any)
		if !ok {
			continue
		}
		switch t := obj["@type"].(type) {
		case string:
			if strings.EqualFold(t, "Recipe") {
				return true
			}
		case []any:
			for _, s := range t {
				if str, ok := s.(string); ok && strings.EqualFold(str, "Recipe") {
					return true
				}
			}
		}
	}
	return false
}
