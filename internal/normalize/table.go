package normalize

import (
	"regexp"
	"strings"

	"github.com/hyperjump/larder/internal/models"
	"github.com/hyperjump/larder/internal/vocab"
)

var (
	quantityHeaders   = map[string]bool{"amount": true, "quantity": true, "qty": true, "measure": true, "amt": true}
	unitHeaders       = map[string]bool{"unit": true, "units": true, "measurement": true}
	ingredientHeaders = map[string]bool{"ingredient": true, "ingredients": true, "name": true, "item": true, "food": true}

	numericCell = regexp.MustCompile(`^\s*(?:\d|[½⅓⅔¼¾⅛⅜⅝⅞])`)
)

// IngredientTable reads rows as an ingredient table: either a header row
// naming amount and ingredient columns (and optionally a unit column), or a
// headerless two-column table whose first column holds quantities. Lines keep
// row order. ok is false when rows do not look like an ingredient table.
func IngredientTable(rows [][]string) (lines []models.IngredientLine, ok bool) {
	var data [][]string
	for _, r := range rows {
		if !blankRow(r) {
			data = append(data, r)
		}
	}
	if len(data) == 0 {
		return nil, false
	}

	qtyCol, unitCol, nameCol := -1, -1, -1
	for i, cell := range data[0] {
		h := vocab.NormalizeKey(cell)
		switch {
		case quantityHeaders[h] && qtyCol < 0:
			qtyCol = i
		case unitHeaders[h] && unitCol < 0:
			unitCol = i
		case ingredientHeaders[h] && nameCol < 0:
			nameCol = i
		}
	}
	if qtyCol >= 0 && nameCol >= 0 {
		data = data[1:]
	} else if headerlessPair(data) {
		qtyCol, unitCol, nameCol = 0, -1, 1
		for i, r := range data {
			data[i] = nonEmpty(r...)
		}
	} else {
		return nil, false
	}

	for _, r := range data {
		name := strings.TrimSpace(cell(r, nameCol))
		if name == "" {
			continue
		}
		qty := strings.TrimSpace(cell(r, qtyCol))
		unit := strings.TrimSpace(cell(r, unitCol))
		raw := strings.Join(nonEmpty(qty, unit, name), " ")
		lines = append(lines, models.IngredientLine{
			Quantity: models.StringPtr(qty),
			Unit:     models.StringPtr(unit),
			Name:     name,
			RawText:  raw,
		})
	}
	return lines, len(lines) > 0
}

// headerlessPair reports whether every row has exactly two filled cells and
// most first cells look numeric.
func headerlessPair(rows [][]string) bool {
	numeric := 0
	for _, r := range rows {
		filled := nonEmpty(r...)
		if len(filled) != 2 {
			return false
		}
		if numericCell.MatchString(filled[0]) {
			numeric++
		}
	}
	return numeric*2 > len(rows)
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func nonEmpty(vals ...string) []string {
	var out []string
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
