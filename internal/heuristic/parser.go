// Package heuristic infers recipe structure from unstructured prose: a title,
// labeled metadata lines, section headers, and list items.
package heuristic

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/larder/internal/ingredient"
	"github.com/hyperjump/larder/internal/models"
	"github.com/hyperjump/larder/internal/vocab"
)

const (
	titleScanLines = 10
	minTitleLen    = 3
	minStepLen     = 3
	maxDescLines   = 3
	minDescLineLen = 12
	maxLabelLen    = 24
)

var (
	labelLine    = regexp.MustCompile(`^\s*[*_]*([\p{L}][\p{L} .'’/&]*?)[*_]*\s*[:：]\s*[*_]*\s*(.+?)\s*$`)
	bareServings = regexp.MustCompile(`(?i)^\s*(serves|makes|yields?)\s+(\d.*)$`)
	numbered     = regexp.MustCompile(`(?i)^\s*(?:step\s*)?\(?\d{1,2}\s*[.):](?:\s+|$)(.*)$`)
	firstStep    = regexp.MustCompile(`(?i)^\s*(?:step\s*)?\(?0?1\s*[.):](?:\s+|$)`)
	hasDigit     = regexp.MustCompile(`\d`)
	duration     = regexp.MustCompile(`(?i)\d|\b(hours?|hrs?|minutes?|mins?|seconds?|overnight)\b`)
	urlRe        = regexp.MustCompile(`(?i)https?://\S+`)
	byLine       = regexp.MustCompile(`(?i)^(?:recipe\s+)?(?:by|from)\s+(.+)$`)
	subHeader    = regexp.MustCompile(`^[^\d]{2,40}:$`)
)

// Parser turns prose into a FieldBag.
type Parser struct {
	vocab    *vocab.Vocabulary
	splitter *ingredient.Splitter
}

// NewParser creates a Parser using the given vocabulary.
func NewParser(v *vocab.Vocabulary) *Parser {
	return &Parser{vocab: v, splitter: ingredient.NewSplitter(v)}
}

// lineKind classifies each line once so later passes can skip metadata and
// headers without re-matching.
type lineKind int

const (
	kindText lineKind = iota
	kindBlank
	kindHeader
	kindMeta
	kindArtifact
)

type line struct {
	text    string
	kind    lineKind
	section vocab.Section
}

type block struct {
	start, end int
}

func (b block) found() bool { return b.start >= 0 }

// Parse always returns a FieldBag, possibly holding only a title. No single
// heuristic failing is fatal.
func (p *Parser) Parse(text string) models.FieldBag {
	bag := models.FieldBag{}
	lines := p.classify(Lines(text), bag)

	titleIdx := p.title(lines, bag)

	ingredients := p.findBlock(lines, vocab.SectionIngredients)
	instructions := p.findBlock(lines, vocab.SectionInstructions)
	if !instructions.found() && ingredients.found() {
		if i := p.stepStart(lines[ingredients.start:ingredients.end]); i >= 0 {
			instructions = block{start: ingredients.start + i, end: ingredients.end}
			ingredients.end = ingredients.start + i
		}
	}
	if !instructions.found() {
		instructions = p.numberedBlock(lines, ingredients)
	}
	notes := p.findBlock(lines, vocab.SectionNotes)

	if ingredients.found() {
		bag.SetLines(p.ingredientLines(lines[ingredients.start:ingredients.end]))
	} else {
		bag.SetLines(p.scanIngredients(lines, titleIdx, instructions))
	}
	if instructions.found() {
		bag.SetList(models.FieldInstructions, p.steps(lines[instructions.start:instructions.end]))
	}
	if notes.found() {
		bag.Set(models.FieldNotes, joinText(lines[notes.start:notes.end], "\n"))
	}

	stop := len(lines)
	for _, b := range []block{ingredients, instructions, notes} {
		if b.found() && b.start < stop {
			stop = b.start
		}
	}
	p.headerBlock(lines[:stop], titleIdx, bag)
	return bag
}

// classify labels each line and records labeled metadata into bag.
func (p *Parser) classify(raw []string, bag models.FieldBag) []line {
	out := make([]line, len(raw))
	for i, r := range raw {
		t := strings.TrimSpace(r)
		out[i] = line{text: t}
		switch {
		case t == "":
			out[i].kind = kindBlank
		case p.isHeader(t, &out[i]):
			out[i].kind = kindHeader
		case p.metadata(t, bag):
			out[i].kind = kindMeta
		case p.vocab.IsArtifact(t):
			out[i].kind = kindArtifact
		}
	}
	return out
}

func (p *Parser) isHeader(t string, l *line) bool {
	if utf8.RuneCountInString(t) > 40 {
		return false
	}
	sec, ok := p.vocab.Section(t)
	if ok {
		l.section = sec
	}
	return ok
}

// metadata records a "label: value" line. Servings require a number and
// times a duration; anything else that does not fit is left as text.
func (p *Parser) metadata(t string, bag models.FieldBag) bool {
	if m := bareServings.FindStringSubmatch(t); m != nil {
		if !bag.Has(models.FieldServings) {
			bag.Set(models.FieldServings, m[2])
		}
		return true
	}
	m := labelLine.FindStringSubmatch(t)
	if m == nil || utf8.RuneCountInString(m[1]) > maxLabelLen {
		return false
	}
	key, ok := p.vocab.Label(m[1])
	if !ok {
		return false
	}
	value := strings.Trim(m[2], "*_ ")
	switch key {
	case models.FieldServings:
		if !hasDigit.MatchString(value) {
			return false
		}
	case models.FieldPrepTime, models.FieldCookTime, models.FieldTotalTime:
		if !duration.MatchString(value) {
			return false
		}
	case models.FieldTags:
		if bag.Has(key) {
			return true
		}
		bag.SetList(key, splitTags(value))
		return true
	}
	if !bag.Has(key) {
		bag.Set(key, value)
	}
	return true
}

func splitTags(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' || r == '|' })
}

// title picks the first substantial, non-artifact line among the first
// non-empty lines before any section header and returns its index, or -1.
func (p *Parser) title(lines []line, bag models.FieldBag) int {
	if bag.Has(models.FieldTitle) {
		return -1
	}
	seen := 0
	for i, l := range lines {
		if l.kind == kindBlank {
			continue
		}
		if seen++; seen > titleScanLines || l.kind == kindHeader {
			break
		}
		if l.kind != kindText {
			continue
		}
		t := strings.TrimSpace(strings.Trim(l.text, "#*=_ "))
		if utf8.RuneCountInString(t) < minTitleLen || urlRe.MatchString(t) || byLine.MatchString(t) {
			continue
		}
		if numbered.MatchString(t) || (p.splitter.LooksLikeIngredient(t) && p.listFollows(lines, i)) {
			continue
		}
		bag.Set(models.FieldTitle, t)
		return i
	}
	return -1
}

// listFollows reports whether the next non-blank line after i is another
// ingredient or numbered line, i.e. line i opens a headerless list.
func (p *Parser) listFollows(lines []line, i int) bool {
	for _, l := range lines[i+1:] {
		if l.kind == kindBlank {
			continue
		}
		return l.kind == kindText && (numbered.MatchString(l.text) || p.splitter.LooksLikeIngredient(l.text))
	}
	return false
}

// findBlock returns the lines between the first header of sec and the next
// header of a different section.
func (p *Parser) findBlock(lines []line, sec vocab.Section) block {
	b := block{start: -1, end: -1}
	for i, l := range lines {
		if l.kind != kindHeader {
			continue
		}
		if b.start < 0 {
			if l.section == sec {
				b.start = i + 1
			}
			continue
		}
		if l.section != sec {
			b.end = i
			return b
		}
	}
	if b.start >= 0 {
		b.end = len(lines)
	}
	return b
}

// numberedBlock starts the instruction block at the first numbered line after
// the ingredient block, ending at the next header.
func (p *Parser) numberedBlock(lines []line, ingredients block) block {
	from := 0
	if ingredients.found() {
		from = ingredients.end
	}
	for i := from; i < len(lines); i++ {
		l := lines[i]
		if l.kind != kindText || !numbered.MatchString(l.text) {
			continue
		}
		if !ingredients.found() && p.splitter.LooksLikeIngredient(l.text) {
			continue
		}
		end := len(lines)
		for j := i + 1; j < len(lines); j++ {
			if lines[j].kind == kindHeader {
				end = j
				break
			}
		}
		return block{start: i, end: end}
	}
	return block{start: -1, end: -1}
}

// stepStart finds where unheaded steps begin inside an ingredient block: the
// first line numbered 1 whose body carries no amount. Returns -1 if none.
func (p *Parser) stepStart(lines []line) int {
	for i, l := range lines {
		if l.kind == kindText && firstStep.MatchString(l.text) && !p.splitter.HasQuantity(l.text) {
			return i
		}
	}
	return -1
}

func (p *Parser) ingredientLines(lines []line) []models.IngredientLine {
	var out []models.IngredientLine
	for _, l := range lines {
		if l.kind != kindText || subHeader.MatchString(l.text) {
			continue
		}
		if ingredient.StripBullet(l.text) == "" {
			continue
		}
		out = append(out, p.splitter.Split(l.text))
	}
	return out
}

// scanIngredients is the last resort for documents without an ingredient
// header: every line that starts with a quantity and a unit, in order.
func (p *Parser) scanIngredients(lines []line, titleIdx int, instructions block) []models.IngredientLine {
	var out []models.IngredientLine
	for i, l := range lines {
		if i == titleIdx || l.kind != kindText {
			continue
		}
		if instructions.found() && i >= instructions.start && i < instructions.end {
			continue
		}
		if p.splitter.LooksLikeIngredient(l.text) {
			out = append(out, p.splitter.Split(l.text))
		}
	}
	return out
}

// steps splits on leading numbering when present, joining continuation lines
// onto the previous step. Otherwise it splits on blank-line paragraphs, and a
// single paragraph falls back to one step per line.
func (p *Parser) steps(lines []line) []string {
	var usable []line
	numberedCount := 0
	for _, l := range lines {
		if l.kind == kindMeta || l.kind == kindArtifact || l.kind == kindHeader {
			continue
		}
		if l.kind == kindText && subHeader.MatchString(l.text) {
			continue
		}
		if l.kind == kindText && numbered.MatchString(l.text) {
			numberedCount++
		}
		usable = append(usable, l)
	}

	var steps []string
	if numberedCount > 0 {
		var cur []string
		flush := func() {
			if s := strings.Join(cur, " "); utf8.RuneCountInString(s) >= minStepLen {
				steps = append(steps, s)
			}
			cur = nil
		}
		for _, l := range usable {
			if l.kind == kindBlank {
				continue
			}
			if m := numbered.FindStringSubmatch(l.text); m != nil {
				flush()
				if s := strings.TrimSpace(m[1]); s != "" {
					cur = append(cur, s)
				}
				continue
			}
			cur = append(cur, ingredient.StripBullet(l.text))
		}
		flush()
		return steps
	}

	var paragraphs [][]string
	var cur []string
	for _, l := range usable {
		if l.kind == kindBlank {
			if len(cur) > 0 {
				paragraphs = append(paragraphs, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, ingredient.StripBullet(l.text))
	}
	if len(cur) > 0 {
		paragraphs = append(paragraphs, cur)
	}
	if len(paragraphs) == 1 {
		for _, s := range paragraphs[0] {
			if utf8.RuneCountInString(s) >= minStepLen {
				steps = append(steps, s)
			}
		}
		return steps
	}
	for _, para := range paragraphs {
		if s := strings.Join(para, " "); utf8.RuneCountInString(s) >= minStepLen {
			steps = append(steps, s)
		}
	}
	return steps
}

// headerBlock handles the lines before the first section: a URL, a "by X"
// source line, and the description.
func (p *Parser) headerBlock(lines []line, titleIdx int, bag models.FieldBag) {
	end := len(lines)
	for i, l := range lines {
		if l.kind == kindHeader {
			end = i
			break
		}
	}
	var desc []string
	for i := 0; i < end; i++ {
		l := lines[i]
		if i == titleIdx || l.kind == kindBlank || l.kind == kindHeader || l.kind == kindMeta {
			continue
		}
		if m := urlRe.FindString(l.text); m != "" {
			if !bag.Has(models.FieldURL) {
				bag.Set(models.FieldURL, strings.TrimRight(m, ").,;"))
			}
			continue
		}
		if l.kind == kindArtifact {
			continue
		}
		if m := byLine.FindStringSubmatch(l.text); m != nil {
			if !bag.Has(models.FieldSource) {
				bag.Set(models.FieldSource, m[1])
			}
			continue
		}
		if i < titleIdx || len(desc) >= maxDescLines {
			continue
		}
		if utf8.RuneCountInString(l.text) < minDescLineLen || p.splitter.LooksLikeIngredient(l.text) || numbered.MatchString(l.text) {
			continue
		}
		desc = append(desc, l.text)
	}
	if len(desc) > 0 && !bag.Has(models.FieldDescription) {
		bag.Set(models.FieldDescription, strings.Join(desc, " "))
	}
}

func joinText(lines []line, sep string) string {
	var parts []string
	for _, l := range lines {
		if l.kind == kindHeader {
			continue
		}
		parts = append(parts, l.text)
	}
	return strings.TrimSpace(strings.Join(parts, sep))
}

// SplitSteps splits one block of instruction text into steps using the same
// rules as Parse: numbering first, then paragraphs, then lines.
func (p *Parser) SplitSteps(text string) []string {
	return p.steps(p.classify(Lines(text), models.FieldBag{}))
}
