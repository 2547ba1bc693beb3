package models

import "strings"

// FieldKey is a canonical recipe field name.
type FieldKey string

const (
	FieldTitle        FieldKey = "title"
	FieldCategory     FieldKey = "category"
	FieldType         FieldKey = "type"
	FieldServings     FieldKey = "servings"
	FieldPrepTime     FieldKey = "prep_time"
	FieldCookTime     FieldKey = "cook_time"
	FieldTotalTime    FieldKey = "total_time"
	FieldDifficulty   FieldKey = "difficulty"
	FieldDescription  FieldKey = "description"
	FieldIngredients  FieldKey = "ingredients"
	FieldInstructions FieldKey = "instructions"
	FieldNotes        FieldKey = "notes"
	FieldSource       FieldKey = "source"
	FieldURL          FieldKey = "url"
	FieldTags         FieldKey = "tags"
)

// AllFields lists every canonical field in display order.
var AllFields = []FieldKey{
	FieldTitle, FieldCategory, FieldType, FieldServings, FieldPrepTime, FieldCookTime,
	FieldTotalTime, FieldDifficulty, FieldDescription, FieldIngredients, FieldInstructions,
	FieldNotes, FieldSource, FieldURL, FieldTags,
}

// IsList reports whether the field holds a sequence of items.
func (k FieldKey) IsList() bool {
	return k == FieldIngredients || k == FieldInstructions || k == FieldTags
}

// FieldValue is either a single string, a list of strings, or a list of
// already split ingredient lines.
type FieldValue struct {
	Text  string
	List  []string
	Lines []IngredientLine
}

// FieldBag is a loose mapping from canonical field to raw value, produced
// before validation. Unresolved fields are absent, never empty.
type FieldBag map[FieldKey]FieldValue

// Set stores a trimmed string value. Empty values are ignored.
func (b FieldBag) Set(key FieldKey, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	b[key] = FieldValue{Text: value}
}

// SetList stores trimmed, non-empty items. Nothing is stored when no item survives.
func (b FieldBag) SetList(key FieldKey, items []string) {
	var kept []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			kept = append(kept, item)
		}
	}
	if len(kept) == 0 {
		return
	}
	b[key] = FieldValue{List: kept}
}

// SetLines stores pre-split ingredient lines.
func (b FieldBag) SetLines(lines []IngredientLine) {
	if len(lines) == 0 {
		return
	}
	b[FieldIngredients] = FieldValue{Lines: lines}
}

// Has reports whether key holds a value.
func (b FieldBag) Has(key FieldKey) bool {
	_, ok := b[key]
	return ok
}

// String returns the value for key as one string; list values are joined by newlines.
func (b FieldBag) String(key FieldKey) string {
	v, ok := b[key]
	if !ok {
		return ""
	}
	if v.Text != "" {
		return v.Text
	}
	if len(v.List) > 0 {
		return strings.Join(v.List, "\n")
	}
	raws := make([]string, 0, len(v.Lines))
	for _, l := range v.Lines {
		raws = append(raws, l.RawText)
	}
	return strings.Join(raws, "\n")
}

// List returns the value for key as items. A single string becomes one item.
func (b FieldBag) List(key FieldKey) []string {
	v, ok := b[key]
	if !ok {
		return nil
	}
	switch {
	case len(v.List) > 0:
		return v.List
	case len(v.Lines) > 0:
		raws := make([]string, 0, len(v.Lines))
		for _, l := range v.Lines {
			raws = append(raws, l.RawText)
		}
		return raws
	case v.Text != "":
		return []string{v.Text}
	}
	return nil
}

// Merge copies every field of other into b, overwriting existing values.
func (b FieldBag) Merge(other FieldBag) {
	for k, v := range other {
		b[k] = v
	}
}

// Empty reports whether the bag carries none of title, ingredients, or instructions.
func (b FieldBag) Empty() bool {
	return !b.Has(FieldTitle) && !b.Has(FieldIngredients) && !b.Has(FieldInstructions)
}
