package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReconciler_Growth tests the common append-only case
func TestReconciler_Growth(t *testing.T) {
	rec := NewReconciler(PolicyReset)

	frag, ok := rec.Apply("Hel")
	require.True(t, ok)
	assert.Equal(t, Fragment{Text: "Hel"}, frag)

	frag, ok = rec.Apply("Hello")
	require.True(t, ok)
	assert.Equal(t, Fragment{Text: "lo"}, frag)

	frag, ok = rec.Apply("Hello world")
	require.True(t, ok)
	assert.Equal(t, Fragment{Text: " world"}, frag)

	assert.Equal(t, "Hello world", rec.Final())
}

// TestReconciler_UnchangedAndEmpty tests skip conditions
func TestReconciler_UnchangedAndEmpty(t *testing.T) {
	rec := NewReconciler(PolicyOverlap)

	_, ok := rec.Apply("")
	assert.False(t, ok)

	_, ok = rec.Apply("Hello")
	assert.True(t, ok)

	_, ok = rec.Apply("Hello")
	assert.False(t, ok)

	frag, ok := rec.Apply("Hello!")
	require.True(t, ok)
	assert.Equal(t, "!", frag.Text)
}

// TestReconciler_ResetPolicy tests divergence with an explicit reset
func TestReconciler_ResetPolicy(t *testing.T) {
	rec := NewReconciler(PolicyReset)

	_, ok := rec.Apply("first attempt")
	require.True(t, ok)

	frag, ok := rec.Apply("second answer")
	require.True(t, ok)
	assert.True(t, frag.Reset)
	assert.Equal(t, "second answer", frag.Text)
	assert.Equal(t, "second answer", rec.Final())
}

// TestReconciler_OverlapPolicy tests divergence via suffix/prefix splicing
func TestReconciler_OverlapPolicy(t *testing.T) {
	rec := NewReconciler(PolicyOverlap)

	_, ok := rec.Apply("abcdef")
	require.True(t, ok)

	frag, ok := rec.Apply("defghi")
	require.True(t, ok)
	assert.False(t, frag.Reset)
	assert.Equal(t, "ghi", frag.Text)
}

// TestReconciler_OverlapNoCommon tests divergence with zero overlap
func TestReconciler_OverlapNoCommon(t *testing.T) {
	rec := NewReconciler(PolicyOverlap)

	_, ok := rec.Apply("abc")
	require.True(t, ok)

	frag, ok := rec.Apply("xyz")
	require.True(t, ok)
	assert.Equal(t, "xyz", frag.Text)
}

// TestReconciler_ShrunkSnapshot tests a snapshot fully contained in prev
func TestReconciler_ShrunkSnapshot(t *testing.T) {
	rec := NewReconciler(PolicyOverlap)

	_, ok := rec.Apply("abcdef")
	require.True(t, ok)

	// "abc" is a suffix-overlap of nothing but prefix-overlaps nothing at
	// full length; the longest suffix of "abcdef" that prefixes "abc" is
	// empty, so the whole snapshot is forwarded.
	frag, ok := rec.Apply("abc")
	require.True(t, ok)
	assert.Equal(t, "abc", frag.Text)
}

// TestLongestOverlap tests the overlap scan directly
func TestLongestOverlap(t *testing.T) {
	assert.Equal(t, 3, longestOverlap("abcdef", "defghi"))
	assert.Equal(t, 0, longestOverlap("abc", "xyz"))
	assert.Equal(t, 2, longestOverlap("xxab", "abab"))
	assert.Equal(t, 0, longestOverlap("", "abc"))
	assert.Equal(t, 0, longestOverlap("abc", ""))
}
