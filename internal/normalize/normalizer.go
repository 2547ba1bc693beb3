// Package normalize converts structured trees and tabular rows into field
// bags using alias-tolerant key lookup.
package normalize

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	ierrors "github.com/hyperjump/larder/internal/errors"
	"github.com/hyperjump/larder/internal/models"
	"github.com/hyperjump/larder/internal/vocab"
)

// maxDepth bounds recursion into wrapper objects.
const maxDepth = 8

// Candidate is one recipe found in a source. Err is set when the record
// could not be read; other candidates in the same source are unaffected.
type Candidate struct {
	Index int
	Bag   models.FieldBag
	Err   error
}

// Normalizer maps generic trees and rows to field bags.
type Normalizer struct {
	vocab *vocab.Vocabulary
}

// NewNormalizer creates a Normalizer using the given vocabulary.
func NewNormalizer(v *vocab.Vocabulary) *Normalizer {
	return &Normalizer{vocab: v}
}

// FromTree finds the recipes in a decoded JSON, YAML, or XML tree: a list of
// recipes, an object wrapping a list under a collection key, or a single
// recipe object.
func (n *Normalizer) FromTree(tree any) ([]Candidate, error) {
	nodes, err := n.recipeNodes(normalizeNode(tree), 0)
	if err != nil {
		return nil, err
	}
	candidates := make([]Candidate, 0, len(nodes))
	for i, node := range nodes {
		c := Candidate{Index: i}
		obj, ok := node.(map[string]any)
		if !ok {
			c.Err = ierrors.NewUnsupportedShape(fmt.Sprintf("record %d is a %s, not an object", i, kindOf(node)))
			candidates = append(candidates, c)
			continue
		}
		c.Bag = n.FromObject(obj)
		if len(c.Bag) == 0 {
			c.Err = ierrors.NewUnsupportedShape(fmt.Sprintf("record %d has no recognizable recipe fields", i))
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func (n *Normalizer) recipeNodes(node any, depth int) ([]any, error) {
	if depth > maxDepth {
		return nil, ierrors.NewUnsupportedShape("nesting too deep")
	}
	switch v := node.(type) {
	case []any:
		return filterJSONLD(v), nil
	case map[string]any:
		for _, key := range sortedKeys(v) {
			if !n.vocab.IsCollection(key) {
				continue
			}
			switch inner := v[key].(type) {
			case []any, map[string]any:
				return n.recipeNodes(inner, depth+1)
			}
		}
		if inner, ok := n.singleWrapper(v); ok {
			return n.recipeNodes(inner, depth+1)
		}
		return []any{v}, nil
	case nil:
		return nil, ierrors.NewUnsupportedShape("empty document")
	default:
		return nil, ierrors.NewUnsupportedShape(fmt.Sprintf("top-level %s is not a recipe", kindOf(v)))
	}
}

// singleWrapper unwraps an object with exactly one key holding an object or a
// list of objects, as produced by XML roots like <recipes><recipe/>...</recipes>.
func (n *Normalizer) singleWrapper(obj map[string]any) (any, bool) {
	if len(obj) != 1 {
		return nil, false
	}
	for key, val := range obj {
		for _, f := range n.vocab.Fields(key) {
			if f.IsList() {
				return nil, false
			}
		}
		switch inner := val.(type) {
		case map[string]any:
			return inner, true
		case []any:
			for _, el := range inner {
				if _, ok := el.(map[string]any); !ok {
					return nil, false
				}
			}
			return inner, len(inner) > 0
		}
	}
	return nil, false
}

// filterJSONLD keeps only Recipe nodes when the list is a JSON-LD graph that
// mixes recipes with pages, people, and breadcrumbs.
func filterJSONLD(list []any) []any {
	typed, recipes := 0, 0
	for _, el := range list {
		if obj, ok := el.(map[string]any); ok {
			if _, has := obj["@type"]; has {
				typed++
				if isRecipeType(obj["@type"]) {
					recipes++
				}
			}
		}
	}
	if typed == 0 || recipes == 0 {
		return list
	}
	out := make([]any, 0, recipes)
	for _, el := range list {
		if obj, ok := el.(map[string]any); ok && isRecipeType(obj["@type"]) {
			out = append(out, obj)
		}
	}
	return out
}

func isRecipeType(t any) bool {
	switch v := t.(type) {
	case string:
		return strings.EqualFold(v, "Recipe")
	case []any:
		for _, el := range v {
			if isRecipeType(el) {
				return true
			}
		}
	}
	return false
}

// FromObject resolves each canonical field through the alias table. The first
// alias present with a non-empty value wins.
func (n *Normalizer) FromObject(obj map[string]any) models.FieldBag {
	index := make(map[string]any, len(obj))
	for _, key := range sortedKeys(obj) {
		nk := vocab.NormalizeKey(key)
		if _, seen := index[nk]; !seen {
			index[nk] = obj[key]
		}
	}

	bag := models.FieldBag{}
	for _, field := range models.AllFields {
		for _, alias := range n.vocab.Aliases(field) {
			raw, ok := index[alias]
			if !ok {
				continue
			}
			if field.IsList() {
				if items := listValue(raw, field == models.FieldTags, 0); len(items) > 0 {
					bag.SetList(field, items)
					break
				}
				continue
			}
			s := scalarValue(raw)
			switch field {
			case models.FieldPrepTime, models.FieldCookTime, models.FieldTotalTime:
				s = humanizeDuration(s)
			}
			if s != "" {
				bag.Set(field, s)
				break
			}
		}
	}
	return bag
}

// FromRows maps a header row through the alias table and turns each
// following row into a bag. Rows with no resolved title are dropped.
func (n *Normalizer) FromRows(rows [][]string) ([]Candidate, error) {
	headerIdx := -1
	for i, row := range rows {
		if !blankRow(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, ierrors.NewUnsupportedShape("no rows")
	}
	header := rows[headerIdx]
	recognized := false
	for _, cell := range header {
		if len(n.vocab.Fields(cell)) > 0 {
			recognized = true
			break
		}
	}
	if !recognized {
		return nil, ierrors.NewUnsupportedShape("no recognizable column headers")
	}

	var candidates []Candidate
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if blankRow(row) {
			continue
		}
		obj := make(map[string]any, len(header))
		for col, name := range header {
			if col >= len(row) || strings.TrimSpace(name) == "" {
				continue
			}
			if _, dup := obj[name]; dup {
				continue
			}
			obj[name] = row[col]
		}
		bag := n.FromObject(obj)
		if !bag.Has(models.FieldTitle) {
			continue
		}
		candidates = append(candidates, Candidate{Index: i - headerIdx, Bag: bag})
	}
	return candidates, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// listValue flattens a list-valued field: a list of strings or objects, a
// delimited string, or a wrapper object such as <ingredients><item/></ingredients>.
func listValue(raw any, commas bool, depth int) []string {
	if depth > maxDepth {
		return nil
	}
	switch v := raw.(type) {
	case string:
		return splitDelimited(v, commas)
	case []any:
		var out []string
		for _, el := range v {
			switch e := el.(type) {
			case map[string]any:
				if items, ok := e["itemListElement"]; ok {
					out = append(out, listValue(items, commas, depth+1)...)
					continue
				}
				if s := objectText(e); s != "" {
					out = append(out, s)
				}
			case []any:
				out = append(out, listValue(e, commas, depth+1)...)
			default:
				if s := cleanValue(scalarString(e)); s != "" {
					out = append(out, s)
				}
			}
		}
		return out
	case map[string]any:
		if items, ok := v["itemListElement"]; ok {
			return listValue(items, commas, depth+1)
		}
		if len(v) == 1 {
			for _, inner := range v {
				return listValue(inner, commas, depth+1)
			}
		}
		if s := objectText(v); s != "" {
			return []string{s}
		}
	default:
		if s := cleanValue(scalarString(v)); s != "" {
			return []string{s}
		}
	}
	return nil
}

// objectText reads a list element that is itself an object: a JSON-LD
// HowToStep, or a structured ingredient {quantity, unit, name}.
func objectText(obj map[string]any) string {
	for _, k := range []string{"text", "@value", "#text", "description"} {
		if s := cleanValue(scalarString(obj[k])); s != "" {
			return s
		}
	}
	var parts []string
	for _, k := range []string{"quantity", "amount", "qty", "unit", "name", "ingredient", "item"} {
		if s := cleanValue(scalarString(obj[k])); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// scalarValue reads a single-valued field. Objects yield their value/name
// member and lists their first usable element.
func scalarValue(raw any) string {
	switch v := raw.(type) {
	case map[string]any:
		for _, k := range []string{"value", "@value", "#text", "text", "name"} {
			if s := scalarValue(v[k]); s != "" {
				return s
			}
		}
		return ""
	case []any:
		for _, el := range v {
			if s := scalarValue(el); s != "" {
				return s
			}
		}
		return ""
	}
	return cleanValue(scalarString(raw))
}

func scalarString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case uint64:
		return strconv.FormatUint(s, 10)
	case bool:
		return strconv.FormatBool(s)
	case time.Time:
		return s.Format("2006-01-02")
	case map[string]any, []any:
		return ""
	}
	return fmt.Sprint(v)
}

// normalizeNode converts YAML's map[any]any into map[string]any recursively.
func normalizeNode(node any) any {
	switch v := node.(type) {
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[fmt.Sprint(k)] = normalizeNode(val)
		}
		return out
	case map[string]any:
		for k, val := range v {
			v[k] = normalizeNode(val)
		}
		return v
	case []any:
		for i, val := range v {
			v[i] = normalizeNode(val)
		}
		return v
	}
	return node
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func kindOf(v any) string {
	switch v.(type) {
	case []any:
		return "list"
	case string:
		return "string"
	case nil:
		return "null"
	case bool:
		return "boolean"
	}
	return "number"
}
