package resultstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoci/ecoci/internal/domain/resultrow"
)

func TestEncodeDecodePlainRoundTrip(t *testing.T) {
	plain := []byte("warning: unused import\ntest result: ok")

	encoded, err := Encode(plain, resultrow.EncodingPlain)
	require.NoError(t, err)
	assert.Equal(t, plain, encoded)

	decoded, err := Decode(encoded, resultrow.EncodingPlain)
	require.NoError(t, err)
	assert.Equal(t, plain, decoded)
}

func TestEncodeDecodeGzipRoundTrip(t *testing.T) {
	plain := []byte("error[E0308]: mismatched types\nerror[E0308]: mismatched types\n")

	encoded, err := Encode(plain, resultrow.EncodingGzip)
	require.NoError(t, err)
	assert.NotEqual(t, plain, encoded)

	decoded, err := Decode(encoded, resultrow.EncodingGzip)
	require.NoError(t, err)
	assert.Equal(t, plain, decoded)
}

func TestEncodeRejectsUnknownEncoding(t *testing.T) {
	_, err := Encode([]byte("x"), resultrow.Encoding("bogus"))
	assert.Error(t, err)
}

func TestDecodeRejectsUnknownEncoding(t *testing.T) {
	_, err := Decode([]byte("x"), resultrow.Encoding("bogus"))
	assert.Error(t, err)
}

func TestDecodeRejectsMalformedGzip(t *testing.T) {
	_, err := Decode([]byte("not gzip data"), resultrow.EncodingGzip)
	assert.Error(t, err)
}
