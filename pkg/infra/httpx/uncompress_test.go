package httpx

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipCompress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDecodeBody(t *testing.T) {
	payload := []byte(`{"categoriesAnalysis":[{"category":"Sexual","severity":2}]}`)

	brotliCompress := func(data []byte) []byte {
		var buf bytes.Buffer
		w := brotli.NewWriter(&buf)
		_, err := w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
		return buf.Bytes()
	}
	zstdCompress := func(data []byte) []byte {
		var buf bytes.Buffer
		w, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
		return buf.Bytes()
	}
	zlibCompress := func(data []byte) []byte {
		var buf bytes.Buffer
		w := zlib.NewWriter(&buf)
		_, err := w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
		return buf.Bytes()
	}

	tests := []struct {
		name     string
		encoding string
		body     []byte
	}{
		{name: "empty encoding passes through", encoding: "", body: payload},
		{name: "identity passes through", encoding: "identity", body: payload},
		{name: "gzip", encoding: "gzip", body: gzipCompress(t, payload)},
		{name: "brotli", encoding: "br", body: brotliCompress(payload)},
		{name: "zstd", encoding: "zstd", body: zstdCompress(payload)},
		{name: "deflate (zlib wrapped)", encoding: "deflate", body: zlibCompress(payload)},
		{name: "chained encodings", encoding: "gzip, br", body: brotliCompress(gzipCompress(t, payload))},
		{name: "case insensitive", encoding: "GZIP", body: gzipCompress(t, payload)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := DecodeBody(tt.encoding, tt.body)
			require.NoError(t, err)
			assert.Equal(t, payload, decoded)
		})
	}
}

func TestDecodeBody_UnsupportedEncoding(t *testing.T) {
	_, err := DecodeBody("snappy", []byte("data"))
	assert.Error(t, err)
}

func TestDecodeBody_CorruptStream(t *testing.T) {
	_, err := DecodeBody("gzip", []byte("definitely not gzip"))
	assert.Error(t, err)
}
