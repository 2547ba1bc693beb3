// Package draft validates a FieldBag into a canonical RecipeDraft.
package draft

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperjump/larder/internal/errors"
	"github.com/hyperjump/larder/internal/heuristic"
	"github.com/hyperjump/larder/internal/ingredient"
	"github.com/hyperjump/larder/internal/models"
	"github.com/hyperjump/larder/internal/vocab"
)

// DefaultCategory is used when neither the source nor the config names one.
const DefaultCategory = "Uncategorized"

var firstInt = regexp.MustCompile(`\d+`)

// Builder turns field bags into drafts.
type Builder struct {
	defaultCategory string
	splitter        *ingredient.Splitter
	parser          *heuristic.Parser
}

// NewBuilder returns a Builder. An empty defaultCategory means DefaultCategory.
func NewBuilder(v *vocab.Vocabulary, defaultCategory string) *Builder {
	defaultCategory = strings.TrimSpace(defaultCategory)
	if defaultCategory == "" {
		defaultCategory = DefaultCategory
	}
	return &Builder{
		defaultCategory: defaultCategory,
		splitter:        ingredient.NewSplitter(v),
		parser:          heuristic.NewParser(v),
	}
}

// Build validates bag. It fails with EmptyRecipe when the bag has no title,
// no ingredients and no instructions.
func (b *Builder) Build(bag models.FieldBag) (*models.RecipeDraft, error) {
	title := strings.TrimSpace(bag.String(models.FieldTitle))
	ingredients := b.ingredients(bag)
	instructions := b.instructions(bag)
	if title == "" && len(ingredients) == 0 && len(instructions) == 0 {
		return nil, errors.NewEmptyRecipe()
	}
	if title == "" {
		title = models.DefaultTitle
	}

	category := strings.TrimSpace(bag.String(models.FieldCategory))
	if category == "" {
		category = b.defaultCategory
	}

	d := &models.RecipeDraft{
		Title:        title,
		Category:     category,
		Type:         optional(bag, models.FieldType),
		Servings:     Servings(bag.String(models.FieldServings)),
		PrepTime:     optional(bag, models.FieldPrepTime),
		CookTime:     optional(bag, models.FieldCookTime),
		TotalTime:    optional(bag, models.FieldTotalTime),
		Difficulty:   optional(bag, models.FieldDifficulty),
		Description:  optional(bag, models.FieldDescription),
		Notes:        optional(bag, models.FieldNotes),
		Source:       optional(bag, models.FieldSource),
		URL:          optional(bag, models.FieldURL),
		Tags:         dedupe(bag.List(models.FieldTags)),
		Ingredients:  ingredients,
		Instructions: instructions,
	}
	if d.Ingredients == nil {
		d.Ingredients = []models.IngredientLine{}
	}
	if d.Instructions == nil {
		d.Instructions = []string{}
	}
	return d, nil
}

// Servings returns the first integer in raw, or nil when there is none or it is zero.
func Servings(raw string) *int {
	m := firstInt.FindString(raw)
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

func optional(bag models.FieldBag, key models.FieldKey) *string {
	return models.StringPtr(bag.String(key))
}

func (b *Builder) ingredients(bag models.FieldBag) []models.IngredientLine {
	v, ok := bag[models.FieldIngredients]
	if !ok {
		return nil
	}
	if len(v.Lines) > 0 {
		out := make([]models.IngredientLine, 0, len(v.Lines))
		for _, l := range v.Lines {
			l.RawText = strings.TrimSpace(l.RawText)
			l.Name = strings.TrimSpace(l.Name)
			if l.Name == "" && l.RawText == "" {
				continue
			}
			if l.Name == "" {
				l = b.splitter.Split(l.RawText)
			}
			if l.RawText == "" {
				l.RawText = l.Name
			}
			out = append(out, l)
		}
		return out
	}
	var raws []string
	for _, item := range bag.List(models.FieldIngredients) {
		// A single multi-line value holds one ingredient per line.
		raws = append(raws, strings.Split(item, "\n")...)
	}
	return b.splitter.SplitAll(raws)
}

func (b *Builder) instructions(bag models.FieldBag) []string {
	items := bag.List(models.FieldInstructions)
	if len(items) == 1 && strings.Contains(items[0], "\n") {
		return b.parser.SplitSteps(items[0])
	}
	var out []string
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// dedupe drops blank and case-insensitively repeated tags, keeping first spelling.
func dedupe(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
