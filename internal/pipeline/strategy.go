package pipeline

import (
	"strings"

	"github.com/hyperjump/larder/internal/errors"
	"github.com/hyperjump/larder/internal/extract"
	"github.com/hyperjump/larder/internal/models"
	"github.com/hyperjump/larder/internal/normalize"
	"github.com/hyperjump/larder/internal/structured"
)

// resolveFormat validates req and settles its format: detected from the
// file extension, or sniffed from pasted text.
func (i *Importer) resolveFormat(req *Request) (models.Format, error) {
	hasText := strings.TrimSpace(req.Text) != ""
	switch {
	case hasText && req.Path != "":
		return "", errors.NewInvalidRequest("give either text or a file, not both")
	case !hasText && req.Path == "":
		return "", errors.NewInvalidRequest("nothing to import: text and file are both empty")
	}

	if req.Path != "" {
		if req.Format != models.FormatAuto {
			return req.Format, nil
		}
		f, ok := models.DetectFormat(req.Path)
		if !ok {
			return "", errors.NewInvalidRequest("unsupported file type: " + req.Path)
		}
		return f, nil
	}

	if req.Format.IsBinary() {
		return "", errors.NewInvalidRequest("pasted text cannot be read as " + string(req.Format))
	}
	if req.Format != models.FormatAuto {
		return req.Format, nil
	}
	return sniffText(req.Text), nil
}

// sniffText recognizes pasted JSON, HTML, and Markdown with front matter;
// anything else is prose.
func sniffText(text string) models.Format {
	t := strings.TrimSpace(text)
	lower := strings.ToLower(t)
	switch {
	case strings.HasPrefix(t, "{") || strings.HasPrefix(t, "["):
		if _, err := structured.ParseJSON([]byte(t)); err == nil {
			return models.FormatJSON
		}
	case strings.HasPrefix(lower, "<!doctype html") || strings.HasPrefix(lower, "<html"):
		return models.FormatHTML
	case strings.HasPrefix(t, "---\n") || strings.HasPrefix(t, "---\r\n"):
		return models.FormatMarkdown
	}
	return models.FormatText
}

// candidates turns extracted content into field bags with the strategy for
// format: tree formats go through the normalizer, tabular formats through
// the row reader, and everything else through the prose parser. A sheet with
// no titled rows that reads as an ingredient table is one untitled recipe.
func (i *Importer) candidates(format models.Format, res *extract.Result) ([]normalize.Candidate, error) {
	data := []byte(res.Text)
	switch {
	case format.IsTree():
		tree, err := parseTree(format, data)
		if err != nil {
			return nil, err
		}
		return i.normalizer.FromTree(tree)

	case format.IsTabular():
		candidates, err := i.normalizer.FromRows(res.Rows)
		if len(candidates) == 0 {
			if lines, ok := normalize.IngredientTable(res.Rows); ok {
				bag := models.FieldBag{}
				bag.SetLines(lines)
				return single(bag), nil
			}
		}
		return candidates, err

	case format == models.FormatMarkdown:
		doc, err := structured.ParseMarkdown(data)
		if err != nil {
			return nil, err
		}
		bag := i.prose(doc.Text, doc.Rows)
		if meta, ok := doc.Tree.(map[string]any); ok {
			bag.Merge(i.normalizer.FromObject(meta))
		}
		return single(bag), nil

	case format == models.FormatHTML:
		doc, err := structured.ParseHTML(data)
		if err != nil {
			return nil, err
		}
		if structured.HasRecipe(doc.Tree) {
			return i.normalizer.FromTree(doc.Tree)
		}
		return single(i.prose(doc.Text, doc.Rows)), nil
	}
	return single(i.prose(res.Text, res.Rows)), nil
}

func parseTree(format models.Format, data []byte) (any, error) {
	switch format {
	case models.FormatYAML:
		return structured.ParseYAML(data)
	case models.FormatXML:
		return structured.ParseXML(data)
	}
	return structured.ParseJSON(data)
}

// prose parses free text. A table that reads as an ingredient list replaces
// whatever ingredients the text heuristics found.
func (i *Importer) prose(text string, rows [][]string) models.FieldBag {
	bag := i.parser.Parse(text)
	if len(rows) > 0 {
		if lines, ok := normalize.IngredientTable(rows); ok {
			bag.SetLines(lines)
		}
	}
	return bag
}

func single(bag models.FieldBag) []normalize.Candidate {
	return []normalize.Candidate{{Index: 0, Bag: bag}}
}
