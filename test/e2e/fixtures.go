package e2e

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// SupportedFileExtensions is the list of file extensions used in E2E file-based tests.
// PDF, DOC, ODT and RTF are covered by the extract package tests; they need
// external tools or generators that are not available here.
var SupportedFileExtensions = []string{
	".txt", ".md", ".json", ".yaml", ".csv", ".xlsx", ".docx", ".html",
}

// RenderRecipe writes r in the layout a user would typically have for ext.
func RenderRecipe(ext string, r CorpusRecipe) ([]byte, error) {
	switch ext {
	case ".txt":
		return []byte(renderText(r)), nil
	case ".md":
		return []byte(renderMarkdown(r)), nil
	case ".json":
		return json.MarshalIndent(recipeObject(r), "", "  ")
	case ".yaml":
		return yaml.Marshal(recipeObject(r))
	case ".csv":
		return renderCSV(r)
	case ".xlsx":
		return renderXlsx(r)
	case ".docx":
		return renderDocx(r), nil
	case ".html":
		return renderHTML(r)
	}
	return nil, fmt.Errorf("no renderer for %s", ext)
}

func renderText(r CorpusRecipe) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nServes 4\n\n", r.Title)
	for _, l := range r.Ingredients {
		b.WriteString(l + "\n")
	}
	b.WriteString("\n")
	for i, s := range r.Instructions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	return b.String()
}

func renderMarkdown(r CorpusRecipe) string {
	var b strings.Builder
	fmt.Fprintf(&b, "---\ntitle: %s\ncategory: %s\n---\n# %s\n\n## Ingredients\n\n", r.Title, r.Category, r.Title)
	for _, l := range r.Ingredients {
		b.WriteString("- " + l + "\n")
	}
	b.WriteString("\n## Method\n\n")
	for i, s := range r.Instructions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	return b.String()
}

func recipeObject(r CorpusRecipe) map[string]interface{} {
	return map[string]interface{}{
		"title":        r.Title,
		"category":     r.Category,
		"ingredients":  r.Ingredients,
		"instructions": r.Instructions,
	}
}

func tableRows(r CorpusRecipe) [][]string {
	return [][]string{
		{"Title", "Category", "Ingredients", "Instructions"},
		{r.Title, r.Category, strings.Join(r.Ingredients, "\n"), strings.Join(r.Instructions, "\n")},
	}
}

func renderCSV(r CorpusRecipe) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(tableRows(r)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderXlsx(r CorpusRecipe) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range tableRows(r) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderDocx puts the ingredients in a two-column table, the way recipes
// copied out of word processors usually arrive.
func renderDocx(r CorpusRecipe) []byte {
	p := func(s string) string { return `<w:p><w:r><w:t>` + s + `</w:t></w:r></w:p>` }
	cell := func(s string) string { return `<w:tc>` + p(s) + `</w:tc>` }

	var body strings.Builder
	body.WriteString(p(r.Title) + p("Ingredients") + `<w:tbl>`)
	body.WriteString(`<w:tr>` + cell("Amount") + cell("Ingredient") + `</w:tr>`)
	for _, l := range r.Ingredients {
		parts := strings.SplitN(l, " ", 3)
		body.WriteString(`<w:tr>` + cell(parts[0]+" "+parts[1]) + cell(parts[2]) + `</w:tr>`)
	}
	body.WriteString(`</w:tbl>` + p("Method"))
	for _, s := range r.Instructions {
		body.WriteString(p(s))
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create("word/document.xml")
	_, _ = fw.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`))
	_ = w.Close()
	return buf.Bytes()
}

func renderHTML(r CorpusRecipe) ([]byte, error) {
	steps := make([]map[string]string, 0, len(r.Instructions))
	for _, s := range r.Instructions {
		steps = append(steps, map[string]string{"@type": "HowToStep", "text": s})
	}
	ld, err := json.Marshal(map[string]interface{}{
		"@context":           "https://schema.org",
		"@type":              "Recipe",
		"name":               r.Title,
		"recipeCategory":     r.Category,
		"recipeIngredient":   r.Ingredients,
		"recipeInstructions": steps,
	})
	if err != nil {
		return nil, err
	}
	return []byte(`<!DOCTYPE html><html><head><title>` + r.Title + ` | My Food Blog</title>` +
		`<script type="application/ld+json">` + string(ld) + `</script></head>` +
		`<body><nav>Home</nav><h1>` + r.Title + `</h1><p>Jump to recipe</p></body></html>`), nil
}
