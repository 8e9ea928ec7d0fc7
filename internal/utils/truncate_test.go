package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

// TestTruncateText tests the plain length limiter
func TestTruncateText(t *testing.T) {
	text, truncated := TruncateText("hello", 10)
	assert.Equal(t, "hello", text)
	assert.False(t, truncated)

	text, truncated = TruncateText("hello world", 5)
	assert.Equal(t, "hello", text)
	assert.True(t, truncated)

	text, truncated = TruncateText("", 5)
	assert.Equal(t, "", text)
	assert.False(t, truncated)
}

// TestTruncateText_Multibyte tests that the limit counts characters
func TestTruncateText_Multibyte(t *testing.T) {
	text, truncated := TruncateText(strings.Repeat("я", 200), 9)
	assert.True(t, truncated)
	assert.Equal(t, strings.Repeat("я", 9), text)
	assert.True(t, utf8.ValidString(text))

	// 6 Cyrillic characters are 12 bytes but fit a limit of 6
	text, truncated = TruncateText("привет", 6)
	assert.Equal(t, "привет", text)
	assert.False(t, truncated)
}

// TestPrepareUpstreamMessage tests the truncation notice behavior
func TestPrepareUpstreamMessage(t *testing.T) {
	t.Run("short message passes through", func(t *testing.T) {
		msg, truncated := PrepareUpstreamMessage("short", 100)
		assert.Equal(t, "short", msg)
		assert.False(t, truncated)
	})

	t.Run("long message gets notice within limit", func(t *testing.T) {
		original := strings.Repeat("x", 500)
		msg, truncated := PrepareUpstreamMessage(original, 200)
		assert.True(t, truncated)
		assert.LessOrEqual(t, len(msg), 200)
		assert.Contains(t, msg, "[TRUNCATED: Original message length was 500")
	})

	t.Run("tiny limit drops the notice", func(t *testing.T) {
		original := strings.Repeat("x", 500)
		msg, truncated := PrepareUpstreamMessage(original, 10)
		assert.True(t, truncated)
		assert.Equal(t, strings.Repeat("x", 10), msg)
	})

	t.Run("multibyte message stays valid UTF-8", func(t *testing.T) {
		original := strings.Repeat("я", 500)
		msg, truncated := PrepareUpstreamMessage(original, 200)
		assert.True(t, truncated)
		assert.True(t, utf8.ValidString(msg))
		assert.LessOrEqual(t, utf8.RuneCountInString(msg), 200)
		assert.Contains(t, msg, "[TRUNCATED: Original message length was 500")

		msg, truncated = PrepareUpstreamMessage(original, 10)
		assert.True(t, truncated)
		assert.Equal(t, strings.Repeat("я", 10), msg)
	})
}

// TestClassifyClient tests the fingerprint classifier
func TestClassifyClient(t *testing.T) {
	mkHeader := func(kv ...string) map[string][]string {
		h := make(map[string][]string)
		for i := 0; i+1 < len(kv); i += 2 {
			h[kv[i]] = []string{kv[i+1]}
		}
		return h
	}

	tests := []struct {
		name     string
		header   map[string][]string
		expected ClientProfile
	}{
		{"no hints", mkHeader("User-Agent", "curl/8.0"), ProfileStandard},
		{"kilocode version header", mkHeader("X-Kilocode-Version", "1.2.3"), ProfileBuffered},
		{"kilo-code user agent", mkHeader("User-Agent", "Kilo-Code/4.1 VSCode"), ProfileBuffered},
		{"kilocode user agent", mkHeader("User-Agent", "some KiloCode client"), ProfileBuffered},
		{"empty headers", mkHeader(), ProfileStandard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyClient(tt.header))
		})
	}
}
