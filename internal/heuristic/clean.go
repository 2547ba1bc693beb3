package heuristic

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var textReplacer = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\u00a0", " ", // no-break space
	"\u2007", " ",
	"\u202f", " ",
	"\t", " ",
	"\u200b", "",
	"\u00ad", "", // soft hyphen
	"\ufeff", "",
	"\ufb01", "fi",
	"\ufb02", "fl",
	"\u2028", "\n",
	"\u2029", "\n\n",
)

// Lines normalizes text to NFC, unifies line endings and odd spaces, and
// returns its lines with trailing whitespace removed. Blank lines are kept.
func Lines(text string) []string {
	text = norm.NFC.String(text)
	text = textReplacer.Replace(text)
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return lines
}
