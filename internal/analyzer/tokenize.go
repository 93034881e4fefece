package analyzer

import "strings"

// tokenize lowercases s, splits on non-letter/digit runes, and drops stop
// words and empty tokens, returning a set (bag with duplicates collapsed,
// since only Jaccard overlap is computed from it).
func tokenize(s string, stopWords map[string]bool) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	bag := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f == "" || stopWords[f] {
			continue
		}
		bag[f] = true
	}
	return bag
}

// jaccard computes |a ∩ b| / |a ∪ b| for two keyword sets. Returns 0 when
// either set is empty.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// hasPrecedenceWord reports whether any word in vocabulary appears in
// titleWords.
func hasPrecedenceWord(titleWords map[string]bool, vocabulary []string) bool {
	for _, v := range vocabulary {
		if titleWords[v] {
			return true
		}
	}
	return false
}
