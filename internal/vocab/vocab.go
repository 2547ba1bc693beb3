// Package vocab holds the alias tables used to recognize recipe fields, units,
// and section headers. A Vocabulary is immutable once built and is passed
// explicitly to every component that needs it.
package vocab

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/larder/internal/models"
)

// Section is a recognized block of a prose recipe.
type Section string

const (
	SectionNone         Section = ""
	SectionIngredients  Section = "ingredients"
	SectionInstructions Section = "instructions"
	SectionNotes        Section = "notes"
)

// Vocabulary is a compiled, read-only set of alias tables.
type Vocabulary struct {
	fieldAliases map[models.FieldKey][]string
	fieldIndex   map[string][]models.FieldKey
	labels       map[string]models.FieldKey
	labelOrder   []string
	collections  map[string]bool
	units        map[string]bool
	unitPattern  string
	sections     map[string]Section
	artifacts    []*regexp.Regexp
}

// Default returns the built-in vocabulary.
func Default() *Vocabulary {
	v, err := New(DefaultTables())
	if err != nil {
		panic(fmt.Sprintf("vocab: default tables: %v", err))
	}
	return v
}

// Load reads a YAML overlay from path and returns the defaults extended with it.
func Load(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary: %w", err)
	}
	var extra Tables
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary: %w", err)
	}
	tables := DefaultTables()
	tables.merge(extra)
	return New(tables)
}

// New compiles t into a Vocabulary.
func New(t Tables) (*Vocabulary, error) {
	v := &Vocabulary{
		fieldAliases: make(map[models.FieldKey][]string),
		fieldIndex:   make(map[string][]models.FieldKey),
		labels:       make(map[string]models.FieldKey),
		collections:  make(map[string]bool),
		units:        make(map[string]bool),
		sections:     make(map[string]Section),
	}

	known := make(map[models.FieldKey]bool, len(models.AllFields))
	for _, k := range models.AllFields {
		known[k] = true
	}

	// Iterate canonical fields in a fixed order so the index is deterministic.
	for _, key := range models.AllFields {
		for _, alias := range t.Fields[string(key)] {
			a := NormalizeKey(alias)
			if a == "" {
				continue
			}
			v.fieldAliases[key] = append(v.fieldAliases[key], a)
			v.fieldIndex[a] = append(v.fieldIndex[a], key)
		}
	}
	for name := range t.Fields {
		if !known[models.FieldKey(name)] {
			return nil, fmt.Errorf("unknown field %q in field aliases", name)
		}
	}

	for name, aliases := range t.Labels {
		key := models.FieldKey(name)
		if !known[key] {
			return nil, fmt.Errorf("unknown field %q in label aliases", name)
		}
		for _, alias := range aliases {
			l := normalizeHeader(alias)
			if l == "" {
				continue
			}
			v.labels[l] = key
			v.labelOrder = append(v.labelOrder, l)
		}
	}
	// Longest label first so "prep time" wins over "time".
	sort.SliceStable(v.labelOrder, func(i, j int) bool {
		return len(v.labelOrder[i]) > len(v.labelOrder[j])
	})

	for _, c := range t.Collections {
		v.collections[NormalizeKey(c)] = true
	}

	units := make([]string, 0, len(t.Units))
	for _, u := range t.Units {
		u = strings.ToLower(strings.TrimSpace(u))
		if u == "" || v.units[u] {
			continue
		}
		v.units[u] = true
		units = append(units, u)
	}
	sort.SliceStable(units, func(i, j int) bool { return len(units[i]) > len(units[j]) })
	quoted := make([]string, len(units))
	for i, u := range units {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(u), " ", `\s+`)
	}
	v.unitPattern = strings.Join(quoted, "|")

	for name, aliases := range t.Sections {
		sec := Section(name)
		switch sec {
		case SectionIngredients, SectionInstructions, SectionNotes:
		default:
			return nil, fmt.Errorf("unknown section %q", name)
		}
		for _, alias := range aliases {
			v.sections[normalizeHeader(alias)] = sec
		}
	}

	for _, expr := range t.Artifacts {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid artifact pattern %q: %w", expr, err)
		}
		v.artifacts = append(v.artifacts, re)
	}
	return v, nil
}

// NormalizeKey lowercases a structured-data key and folds camelCase, spaces,
// and dashes to underscores: "recipeIngredient" and "Recipe-Ingredient" both
// become "recipe_ingredient".
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	var b strings.Builder
	prevLower := false
	for _, r := range key {
		switch {
		case r >= 'A' && r <= 'Z':
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			prevLower = false
		case r == ' ' || r == '-' || r == '_' || r == '.':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
			prevLower = false
		default:
			b.WriteRune(r)
			prevLower = r >= 'a' && r <= 'z' || r >= '0' && r <= '9'
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// Aliases returns the normalized aliases for key in priority order.
func (v *Vocabulary) Aliases(key models.FieldKey) []string {
	return v.fieldAliases[key]
}

// Fields returns the canonical fields a structured-data key resolves to.
func (v *Vocabulary) Fields(key string) []models.FieldKey {
	return v.fieldIndex[NormalizeKey(key)]
}

// IsCollection reports whether key wraps a list of recipes.
func (v *Vocabulary) IsCollection(key string) bool {
	return v.collections[NormalizeKey(key)]
}

// Label resolves a "label: value" prefix from prose.
func (v *Vocabulary) Label(label string) (models.FieldKey, bool) {
	k, ok := v.labels[normalizeHeader(label)]
	return k, ok
}

// IsUnit reports whether tok is a known unit, ignoring case and a trailing period.
func (v *Vocabulary) IsUnit(tok string) bool {
	tok = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(tok)), ".")
	return v.units[strings.Join(strings.Fields(tok), " ")]
}

// UnitPattern returns a regular expression alternation matching every unit,
// longest first. It carries no flags or anchors.
func (v *Vocabulary) UnitPattern() string {
	return v.unitPattern
}

// Section reports whether line is a section header and which one.
func (v *Vocabulary) Section(line string) (Section, bool) {
	h := normalizeHeader(line)
	if h == "" {
		return SectionNone, false
	}
	sec, ok := v.sections[h]
	return sec, ok
}

// IsArtifact reports whether line is page furniture: page numbers, copyright
// lines, bare URLs.
func (v *Vocabulary) IsArtifact(line string) bool {
	line = strings.TrimSpace(line)
	for _, re := range v.artifacts {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// normalizeHeader strips markdown and list decoration, a trailing colon, and
// case from a header or label.
func normalizeHeader(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "#*=_-•· \t")
	s = strings.TrimRight(s, "*=_-:. \t")
	s = strings.ReplaceAll(s, "’", "'")
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
