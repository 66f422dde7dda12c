package chunker

import (
	"strings"
	"unicode/utf8"
)

// EstimateTokens approximates how many tokens text costs a model. It takes
// the larger of a word-based estimate (about 1.33 tokens per word) and a
// character-based one (about 4 characters per token), so dense text without
// spaces is not undercounted.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	byWords := int(float64(len(strings.Fields(text))) * 1.33)
	byChars := utf8.RuneCountInString(text) / 4
	return max(byWords, byChars, 1)
}
