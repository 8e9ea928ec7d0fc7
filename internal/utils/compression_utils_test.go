package utils

import (
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func brotliBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// TestDecompressResponse tests encoding dispatch and fallbacks
func TestDecompressResponse(t *testing.T) {
	payload := []byte(`{"uuid":"abc"}`)

	t.Run("no encoding passes through", func(t *testing.T) {
		out, err := DecompressResponse("", payload)
		assert.NoError(t, err)
		assert.Equal(t, payload, out)
	})

	t.Run("gzip", func(t *testing.T) {
		out, err := DecompressResponse("gzip", gzipBytes(t, payload))
		assert.NoError(t, err)
		assert.Equal(t, payload, out)
	})

	t.Run("brotli", func(t *testing.T) {
		out, err := DecompressResponse("br", brotliBytes(t, payload))
		assert.NoError(t, err)
		assert.Equal(t, payload, out)
	})

	t.Run("unknown encoding returns original", func(t *testing.T) {
		out, err := DecompressResponse("lzma", payload)
		assert.NoError(t, err)
		assert.Equal(t, payload, out)
	})

	t.Run("corrupt data returns original", func(t *testing.T) {
		corrupt := []byte("definitely not gzip")
		out, err := DecompressResponse("gzip", corrupt)
		assert.NoError(t, err)
		assert.Equal(t, corrupt, out)
	})
}
