package normalize

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy = bluemonday.StrictPolicy()
	isoDuration  = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)
	spaceRun     = regexp.MustCompile(`[ \t]+`)
)

// cleanValue strips markup and entities from a scalar pulled out of a
// structured source. Recipe pages often embed HTML in JSON-LD strings.
func cleanValue(s string) string {
	if strings.ContainsAny(s, "<&") {
		s = html.UnescapeString(strictPolicy.Sanitize(s))
	}
	s = spaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// humanizeDuration turns an ISO 8601 duration like "PT1H30M" into
// "1 hour 30 minutes". Other values are returned unchanged.
func humanizeDuration(s string) string {
	m := isoDuration.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil || s == "P" || strings.EqualFold(s, "PT") {
		return s
	}
	var parts []string
	add := func(v, unit string) {
		if v == "" {
			return
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || n == 0 {
			return
		}
		label := unit
		if n != 1 {
			label += "s"
		}
		parts = append(parts, fmt.Sprintf("%s %s", strconv.FormatFloat(n, 'f', -1, 64), label))
	}
	add(m[1], "day")
	add(m[2], "hour")
	add(m[3], "minute")
	add(m[4], "second")
	if len(parts) == 0 {
		return s
	}
	return strings.Join(parts, " ")
}

// splitDelimited splits a list-valued string on newlines, or on ";" or "|"
// when the value is a single line. Tags also split on commas.
func splitDelimited(s string, commas bool) []string {
	var items []string
	switch {
	case strings.Contains(s, "\n"):
		items = strings.Split(s, "\n")
	case strings.Contains(s, ";"):
		items = strings.Split(s, ";")
	case strings.Contains(s, "|"):
		items = strings.Split(s, "|")
	case commas && strings.Contains(s, ","):
		items = strings.Split(s, ",")
	default:
		items = []string{s}
	}
	out := items[:0]
	for _, it := range items {
		if it = cleanValue(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}
