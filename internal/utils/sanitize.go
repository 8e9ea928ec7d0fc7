package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SanitizeText normalizes unicode (NFKC) and strips control and format
// characters, keeping \n, \r and \t. Upstream output occasionally carries
// stray control bytes that break downstream SSE consumers.
func SanitizeText(text string) string {
	if text == "" {
		return text
	}

	normalized := norm.NFKC.String(text)

	var b strings.Builder
	b.Grow(len(normalized))
	for _, r := range normalized {
		if r == '\n' || r == '\r' || r == '\t' {
			b.WriteRune(r)
			continue
		}
		if unicode.In(r, unicode.Cc, unicode.Cf) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CleanUTF8 drops invalid byte sequences, mirroring a decode/encode
// round-trip with errors ignored.
func CleanUTF8(text string) string {
	return strings.ToValidUTF8(text, "")
}
