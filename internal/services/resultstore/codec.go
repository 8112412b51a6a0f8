// Package resultstore implements C2: the result store and its
// streaming log codec, layered over the persistent store (C1).
package resultstore

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/ecoci/ecoci/internal/domain/resultrow"
)

// Encode compresses plain at gzip's default level when enc is
// EncodingGzip; EncodingPlain passes the bytes through unchanged.
// Archive generation always works from decoded plain bytes, never
// from this encoded form directly.
func Encode(plain []byte, enc resultrow.Encoding) ([]byte, error) {
	switch enc {
	case resultrow.EncodingPlain:
		return plain, nil
	case resultrow.EncodingGzip:
		var buf bytes.Buffer

		w := gzip.NewWriter(&buf)
		if _, err := w.Write(plain); err != nil {
			return nil, fmt.Errorf("gzip encode: %w", err)
		}

		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("gzip encode: %w", err)
		}

		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown log encoding %q", enc)
	}
}

// Decode reverses Encode: EncodingGzip input is inflated back to its
// original plain bytes, EncodingPlain is returned unchanged.
func Decode(encoded []byte, enc resultrow.Encoding) ([]byte, error) {
	switch enc {
	case resultrow.EncodingPlain:
		return encoded, nil
	case resultrow.EncodingGzip:
		r, err := gzip.NewReader(bytes.NewReader(encoded))
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		defer r.Close()

		plain, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}

		return plain, nil
	default:
		return nil, fmt.Errorf("unknown log encoding %q", enc)
	}
}
