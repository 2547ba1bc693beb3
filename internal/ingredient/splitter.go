// Package ingredient splits free-form ingredient lines into quantity, unit, and name.
package ingredient

import (
	"regexp"
	"strings"

	"github.com/hyperjump/larder/internal/models"
	"github.com/hyperjump/larder/internal/vocab"
)

// quantityPattern matches mixed numbers ("1 1/2"), fractions, unicode vulgar
// fractions, decimals, and ranges of those ("2-3", "2 to 3").
const (
	amount          = `(?:\d+\s+\d+/\d+|\d+/\d+|\d*\s?[½⅓⅔¼¾⅛⅜⅝⅞⅕⅖⅗⅘⅙⅚]|\d+(?:[.,]\d+)?)`
	quantityPattern = amount + `(?:\s*(?:-|–|to)\s*` + amount + `)?`
)

var (
	// bulletPrefix matches list decoration: "-", "*", "•", "1.", "2)", "(3)".
	bulletPrefix = regexp.MustCompile(`^\s*(?:[-*•·▪◦‣]+|\(?\d{1,2}[.)]\s)\s*`)
	leadingOf    = regexp.MustCompile(`(?i)^of\s+`)
)

// Splitter splits ingredient lines using a unit vocabulary.
type Splitter struct {
	line     *regexp.Regexp
	unitLine *regexp.Regexp
}

// NewSplitter compiles the splitting expressions for v.
func NewSplitter(v *vocab.Vocabulary) *Splitter {
	units := v.UnitPattern()
	unitGroup := `(?:(` + units + `)\.?(?:\s+|$))?`
	if units == "" {
		unitGroup = `()`
	}
	return &Splitter{
		line: regexp.MustCompile(`(?i)^(` + quantityPattern + `)\s*` + unitGroup + `\s*(.*)$`),
		unitLine: regexp.MustCompile(`(?i)^` + quantityPattern + `\s*(?:` + orNever(units) + `)\.?(?:\s+|$)`),
	}
}

func orNever(units string) string {
	if units == "" {
		return `[^\s\S]`
	}
	return units
}

// StripBullet removes a leading bullet or list number from line.
func StripBullet(line string) string {
	return strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
}

// Split turns raw into an IngredientLine. Name is never empty: when no
// quantity or unit can be separated, the whole trimmed line is the name.
func (s *Splitter) Split(raw string) models.IngredientLine {
	text := strings.TrimSpace(raw)
	cleaned := StripBullet(text)
	if cleaned == "" {
		cleaned = text
	}
	out := models.IngredientLine{Name: cleaned, RawText: text}

	m := s.line.FindStringSubmatch(cleaned)
	if m == nil {
		return out
	}
	qty := strings.Join(strings.Fields(m[1]), " ")
	unit := strings.TrimSpace(m[2])
	name := strings.TrimSpace(leadingOf.ReplaceAllString(strings.TrimSpace(m[3]), ""))
	if name == "" {
		return out
	}
	out.Name = name
	out.Quantity = &qty
	if unit != "" {
		out.Unit = &unit
	}
	return out
}

// SplitAll splits every non-empty line, preserving order.
func (s *Splitter) SplitAll(lines []string) []models.IngredientLine {
	out := make([]models.IngredientLine, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, s.Split(l))
	}
	return out
}

// LooksLikeIngredient reports whether line starts with a quantity followed by
// a known unit, e.g. "200 g sugar". Used when a document has no ingredient header.
func (s *Splitter) LooksLikeIngredient(line string) bool {
	return s.unitLine.MatchString(StripBullet(line))
}

// HasQuantity reports whether line, bullet removed, starts with an amount.
func (s *Splitter) HasQuantity(line string) bool {
	return s.line.MatchString(StripBullet(line))
}
