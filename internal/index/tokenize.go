package index

import (
	"strings"
	"unicode"
)

// Tokenize splits text into lowercased terms on any non letter/digit
// rune. Duplicates are removed; order of first occurrence is kept.
// The same tokenization is applied to document bodies at index time and
// to query text at search time, so matching is case-insensitive term
// equality.
func Tokenize(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(words))
	terms := make([]string, 0, len(words))
	for _, w := range words {
		t := strings.ToLower(w)
		if _, found := seen[t]; found {
			continue
		}
		seen[t] = struct{}{}
		terms = append(terms, t)
	}

	return terms
}
