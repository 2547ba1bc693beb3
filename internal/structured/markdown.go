package structured

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// ParseMarkdown splits off YAML front matter into Tree and flattens the body
// into headed plain text. Ordered lists keep their numbers so steps survive.
// GFM tables are returned as Rows.
func ParseMarkdown(data []byte) (*Document, error) {
	src := bytes.ReplaceAll(bytes.TrimPrefix(data, utf8BOM), []byte("\r\n"), []byte("\n"))
	doc := &Document{}

	if fm, body, ok := splitFrontMatter(src); ok {
		var meta map[string]any
		if err := yaml.Unmarshal(fm, &meta); err == nil && len(meta) > 0 {
			doc.Tree = meta
		}
		src = body
	}

	root := markdown.Parser().Parse(text.NewReader(src))
	w := &mdWriter{src: src}
	w.blocks(root)
	doc.Text = strings.TrimSpace(w.out.String())
	doc.Rows = w.rows
	return doc, nil
}

func splitFrontMatter(src []byte) (fm, body []byte, ok bool) {
	if !bytes.HasPrefix(src, []byte("---\n")) {
		return nil, src, false
	}
	rest := src[4:]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return nil, src, false
	}
	body = rest[end+4:]
	if i := bytes.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		body = nil
	}
	return rest[:end], body, true
}

type mdWriter struct {
	src  []byte
	out  strings.Builder
	rows [][]string
}

func (w *mdWriter) line(s string) {
	if s = strings.TrimSpace(s); s != "" {
		w.out.WriteString(s)
		w.out.WriteByte('\n')
	}
}

func (w *mdWriter) blank() {
	w.out.WriteByte('\n')
}

func (w *mdWriter) blocks(parent ast.Node) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch b := n.(type) {
		case *ast.Heading:
			w.blank()
			w.line(w.inline(b))
			w.blank()
		case *ast.Paragraph, *ast.TextBlock:
			for _, l := range strings.Split(w.text(b), "\n") {
				w.line(strings.Join(strings.Fields(l), " "))
			}
			w.blank()
		case *ast.List:
			w.list(b)
			w.blank()
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := b.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				w.line(string(seg.Value(w.src)))
			}
			w.blank()
		case *east.Table:
			w.table(b)
			w.blank()
		case *ast.HTMLBlock, *ast.ThematicBreak:
			w.blank()
		default:
			w.blocks(b)
		}
	}
}

func (w *mdWriter) list(l *ast.List) {
	i := l.Start
	if i == 0 {
		i = 1
	}
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		var parts []string
		var nested []*ast.List
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if sub, ok := c.(*ast.List); ok {
				nested = append(nested, sub)
				continue
			}
			if s := w.inline(c); s != "" {
				parts = append(parts, s)
			}
		}
		marker := "- "
		if l.IsOrdered() {
			marker = fmt.Sprintf("%d. ", i)
			i++
		}
		if len(parts) > 0 {
			w.line(marker + strings.Join(parts, " "))
		}
		for _, sub := range nested {
			w.list(sub)
		}
	}
}

func (w *mdWriter) table(t *east.Table) {
	for r := t.FirstChild(); r != nil; r = r.NextSibling() {
		var row []string
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			row = append(row, w.inline(c))
		}
		w.rows = append(w.rows, row)
		w.line(strings.Join(row, " "))
	}
}

// inline concatenates the text of n's inline descendants on one line.
func (w *mdWriter) inline(n ast.Node) string {
	return strings.Join(strings.Fields(w.text(n)), " ")
}

// text is the raw inline text of n with soft and hard breaks kept as newlines.
func (w *mdWriter) text(n ast.Node) string {
	var b strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				b.Write(t.Segment.Value(w.src))
				if t.SoftLineBreak() || t.HardLineBreak() {
					b.WriteByte('\n')
				}
			case *ast.String:
				b.Write(t.Value)
			case *ast.AutoLink:
				b.Write(t.URL(w.src))
			case *ast.RawHTML:
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}
