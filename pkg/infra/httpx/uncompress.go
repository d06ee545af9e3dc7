package httpx

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// DecodeBody decodes a response body according to its Content-Encoding
// header value. Supports chained encodings (e.g. "gzip, br") and the
// algorithms br, gzip, zstd and deflate; for deflate both zlib-wrapped and
// raw streams are handled. An empty encoding returns the body unchanged.
func DecodeBody(contentEncoding string, body []byte) ([]byte, error) {
	if contentEncoding == "" {
		return body, nil
	}
	compressions := strings.Split(contentEncoding, ",")
	for i := len(compressions) - 1; i >= 0; i-- {
		encoding := strings.TrimSpace(strings.ToLower(compressions[i]))
		decoded, err := decodeOne(encoding, body)
		if err != nil {
			return nil, fmt.Errorf("decoding %q: %w", encoding, err)
		}
		body = decoded
	}
	return body, nil
}

func decodeOne(encoding string, body []byte) ([]byte, error) {
	switch encoding {
	case "", "identity":
		return body, nil
	case "br":
		return io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
	case "gzip":
		gr, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		out, err := io.ReadAll(gr)
		if cerr := gr.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	case "zstd":
		dec, err := zstd.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return io.ReadAll(dec)
	case "deflate":
		// zlib-wrapped first (RFC), raw deflate as fallback
		zr, err := zlib.NewReader(bytes.NewReader(body))
		if err == nil {
			out, err := io.ReadAll(zr)
			if cerr := zr.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return nil, err
			}
			return out, nil
		}
		fr := flate.NewReader(bytes.NewReader(body))
		out, err := io.ReadAll(fr)
		if cerr := fr.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported content encoding")
	}
}
