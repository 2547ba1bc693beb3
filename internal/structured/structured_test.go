package structured

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	ierrors "github.com/hyperjump/larder/internal/errors"
)

func TestParseJSON(t *testing.T) {
	tree, err := ParseJSON([]byte("\xEF\xBB\xBF{\"title\": \"Soup\", \"servings\": 4}"))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	obj := tree.(map[string]any)
	if obj["title"] != "Soup" {
		t.Errorf("title = %v", obj["title"])
	}
	if n, ok := obj["servings"].(json.Number); !ok || n.String() != "4" {
		t.Errorf("servings = %#v", obj["servings"])
	}

	if _, err := ParseJSON([]byte("{not json")); !ierrors.Is(err, ierrors.ErrExtractionFailed) {
		t.Errorf("err = %v, want EXTRACTION_FAILED", err)
	}
}

func TestParseYAML_MultiDocument(t *testing.T) {
	tree, err := ParseYAML([]byte("title: A\n---\ntitle: B\n"))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	list, ok := tree.([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("tree = %#v", tree)
	}

	single, err := ParseYAML([]byte("title: A\n"))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	if _, ok := single.(map[string]any); !ok {
		t.Errorf("single = %#v", single)
	}
}

func TestParseXML(t *testing.T) {
	src := `<?xml version="1.0" encoding="UTF-8"?>
<recipes>
  <recipe id="1">
    <title>Pancakes</title>
    <ingredients>
      <ingredient>1 cup flour</ingredient>
      <ingredient>1 egg</ingredient>
    </ingredients>
  </recipe>
  <recipe id="2">
    <title>Toast</title>
  </recipe>
</recipes>`
	tree, err := ParseXML([]byte(src))
	if err != nil {
		t.Fatalf("ParseXML: %v", err)
	}
	root := tree.(map[string]any)
	recipes, ok := root["recipe"].([]any)
	if !ok || len(recipes) != 2 {
		t.Fatalf("recipe = %#v", root["recipe"])
	}
	first := recipes[0].(map[string]any)
	if first["title"] != "Pancakes" || first["id"] != "1" {
		t.Errorf("first = %#v", first)
	}
	ings := first["ingredients"].(map[string]any)["ingredient"].([]any)
	if !reflect.DeepEqual(ings, []any{"1 cup flour", "1 egg"}) {
		t.Errorf("ingredients = %#v", ings)
	}

	if _, err := ParseXML([]byte("<a><b></a>")); err == nil {
		t.Error("expected error for malformed XML")
	}
}

func TestParseMarkdown(t *testing.T) {
	src := `---
title: Shakshuka
servings: 2
tags: [eggs, brunch]
---
# Shakshuka

A one-pan *breakfast* of eggs in spiced tomato sauce.

## Ingredients

- 4 eggs
- 1 can tomatoes

## Method

1. Simmer the tomatoes.
2. Crack in the eggs.
`
	doc, err := ParseMarkdown([]byte(src))
	if err != nil {
		t.Fatalf("ParseMarkdown: %v", err)
	}
	meta, ok := doc.Tree.(map[string]any)
	if !ok || meta["title"] != "Shakshuka" {
		t.Errorf("front matter = %#v", doc.Tree)
	}
	for _, want := range []string{
		"Shakshuka\n",
		"A one-pan breakfast of eggs in spiced tomato sauce.",
		"Ingredients\n",
		"- 4 eggs\n- 1 can tomatoes",
		"1. Simmer the tomatoes.\n2. Crack in the eggs.",
	} {
		if !strings.Contains(doc.Text, want) {
			t.Errorf("text missing %q:\n%s", want, doc.Text)
		}
	}
	if strings.Contains(doc.Text, "title:") {
		t.Errorf("front matter leaked into text:\n%s", doc.Text)
	}
}

func TestParseMarkdown_SoftBreaksKeepLines(t *testing.T) {
	src := "# Pancakes\n\nCategory: Breakfast\nServings: 4\n\nMix  everything.\nFry in a pan.  \nServe *warm*.\n"
	doc, err := ParseMarkdown([]byte(src))
	if err != nil {
		t.Fatalf("ParseMarkdown: %v", err)
	}
	want := "Pancakes\n\nCategory: Breakfast\nServings: 4\n\nMix everything.\nFry in a pan.\nServe warm."
	if doc.Text != want {
		t.Errorf("text = %q, want %q", doc.Text, want)
	}
}

func TestParseMarkdown_Table(t *testing.T) {
	src := "# Dressing\n\n| Amount | Ingredient |\n|---|---|\n| 3 tbsp | olive oil |\n| 1 tbsp | vinegar |\n"
	doc, err := ParseMarkdown([]byte(src))
	if err != nil {
		t.Fatalf("ParseMarkdown: %v", err)
	}
	want := [][]string{{"Amount", "Ingredient"}, {"3 tbsp", "olive oil"}, {"1 tbsp", "vinegar"}}
	if !reflect.DeepEqual(doc.Rows, want) {
		t.Errorf("rows = %q, want %q", doc.Rows, want)
	}
}

func TestParseHTML_JSONLD(t *testing.T) {
	src := `<html><head><title>Best Brownies | Site</title>
<script type="application/ld+json">{"@context":"https://schema.org","@graph":[
  {"@type":"WebSite","name":"Site"},
  {"@type":"Recipe","name":"Best Brownies","recipeIngredient":["200 g chocolate"]}
]}</script>
<script type="application/ld+json">{broken</script>
</head><body><h1>Best Brownies</h1><p>Fudgy.</p></body></html>`
	doc, err := ParseHTML([]byte(src))
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}
	nodes, ok := doc.Tree.([]any)
	if !ok || len(nodes) != 2 {
		t.Fatalf("tree = %#v", doc.Tree)
	}
	if !HasRecipe(doc.Tree) {
		t.Error("HasRecipe = false")
	}
	if !strings.Contains(doc.Text, "Best Brownies") || !strings.Contains(doc.Text, "Fudgy.") {
		t.Errorf("text = %q", doc.Text)
	}
}

func TestParseHTML_ProseOnly(t *testing.T) {
	src := `<html><body><h2>Ingredients</h2><ul><li>1 cup rice</li><li>2 cups water</li></ul>
<h2>Directions</h2><ol><li>Rinse rice.</li><li>Boil.</li></ol></body></html>`
	doc, err := ParseHTML([]byte(src))
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}
	if doc.Tree != nil || HasRecipe(doc.Tree) {
		t.Errorf("unexpected tree %#v", doc.Tree)
	}
	for _, want := range []string{"Ingredients", "- 1 cup rice", "1. Rinse rice.", "2. Boil."} {
		if !strings.Contains(doc.Text, want) {
			t.Errorf("text missing %q:\n%s", want, doc.Text)
		}
	}
}
