package utils

import "unicode/utf8"

// EstimateTokens estimates token count using a ~4 runes per token heuristic.
// NOTE: This is an approximation and may differ from actual tokenizers,
// especially for Russian text and code.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	count := utf8.RuneCountInString(text)
	if count <= 0 {
		return 0
	}
	return (count + 3) / 4
}
