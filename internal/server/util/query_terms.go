package util

import (
	"strings"
	"unicode"
)

const minTermLength = 4

// SearchTerms pulls candidate entity names out of a natural language
// question. Capitalized words are treated as name candidates; punctuation
// is stripped and short words are dropped. Order of appearance is kept
// and duplicates are removed.
func SearchTerms(query string) []string {
	words := strings.Fields(query)
	terms := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))

	for _, word := range words {
		runes := []rune(word)
		if len(runes) == 0 || !unicode.IsUpper(runes[0]) {
			continue
		}

		term := strings.ToLower(strings.Trim(word, `,.!?()[]{};"'`))
		if len(term) < minTermLength {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}

		seen[term] = struct{}{}
		terms = append(terms, term)
	}

	return terms
}
