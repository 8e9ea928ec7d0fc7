package utils

import (
	"fmt"
	"unicode/utf8"
)

// TruncateText cuts text to maxLength characters and reports whether
// truncation happened. The limit counts runes, not bytes, so multibyte
// input is never cut mid-character.
func TruncateText(text string, maxLength int) (string, bool) {
	if text == "" || utf8.RuneCountInString(text) <= maxLength {
		return text, false
	}
	return firstRunes(text, maxLength), true
}

// PrepareUpstreamMessage applies the global input length limit before a
// message is sent upstream. Truncated messages get an explanatory suffix so
// the model knows context was cut; if the notice itself does not fit, the
// text is cut without it.
func PrepareUpstreamMessage(message string, maxLength int) (string, bool) {
	truncated, wasTruncated := TruncateText(message, maxLength)
	if !wasTruncated {
		return truncated, false
	}

	notice := fmt.Sprintf("\n\n[TRUNCATED: Original message length was %d characters, truncated to %d characters]",
		utf8.RuneCountInString(message), maxLength)
	available := maxLength - utf8.RuneCountInString(notice)
	if available > 0 {
		return firstRunes(message, available) + notice, true
	}
	return truncated, true
}

// TruncateString shortens a string for log output.
func TruncateString(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return firstRunes(s, max) + "...(truncated)"
}

// firstRunes returns the prefix of text holding at most n runes.
func firstRunes(text string, n int) string {
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}
