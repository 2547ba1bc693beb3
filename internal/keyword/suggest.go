package keyword

import "strings"

// suggestFields are the dictionaries a misspelled query is checked against.
var suggestFields = []string{"title", "ingredients"}

// Suggest respells every query term missing from the title and ingredient
// dictionaries with its closest indexed term. Closer terms win, then more
// frequent ones. ok is false when no term changed.
func (b *BleveIndex) Suggest(query string) (suggestion string, ok bool, err error) {
	dict, err := b.termFrequencies(suggestFields...)
	if err != nil {
		return "", false, err
	}

	terms := tokenizeQuery(query)
	for i, term := range terms {
		if _, known := dict[term]; known {
			continue
		}
		if best, found := closest(term, dict); found {
			terms[i] = best
			ok = true
		}
	}
	if !ok {
		return "", false, nil
	}
	return strings.Join(terms, " "), true, nil
}

func closest(term string, dict map[string]uint64) (string, bool) {
	limit := maxEdits(term)
	var (
		best     string
		bestDist = limit + 1
		bestFreq uint64
	)
	for cand, freq := range dict {
		if d := len([]rune(cand)) - len([]rune(term)); d > limit || -d > limit {
			continue
		}
		dist := LevenshteinDistance(term, cand)
		if dist > limit {
			continue
		}
		if dist < bestDist || (dist == bestDist && (freq > bestFreq || (freq == bestFreq && cand < best))) {
			best, bestDist, bestFreq = cand, dist, freq
		}
	}
	return best, best != ""
}

// termFrequencies reads the term dictionaries of fields into one map of
// term to document frequency.
func (b *BleveIndex) termFrequencies(fields ...string) (map[string]uint64, error) {
	out := make(map[string]uint64)
	for _, field := range fields {
		fd, err := b.index.FieldDict(field)
		if err != nil {
			return nil, err
		}
		for {
			entry, err := fd.Next()
			if err != nil {
				_ = fd.Close()
				return nil, err
			}
			if entry == nil {
				break
			}
			out[entry.Term] += entry.Count
		}
		if err := fd.Close(); err != nil {
			return nil, err
		}
	}
	return out, nil
}
