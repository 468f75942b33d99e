package filter

import (
	"bytes"
	"compress/zlib"
	"io"
	"io/ioutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAll(t *testing.T, name string, params Params, encoded []byte) []byte {
	t.Helper()
	codec, ok := Lookup(name)
	require.True(t, ok)
	r, err := codec.Decoder(bytes.NewReader(encoded), params)
	require.NoError(t, err)
	out, err := ioutil.ReadAll(r)
	require.NoError(t, err)
	return out
}

func encodeAll(t *testing.T, name string, params Params, raw []byte) []byte {
	t.Helper()
	codec, ok := Lookup(name)
	require.True(t, ok)
	r, err := codec.Encoder(bytes.NewReader(raw), params)
	require.NoError(t, err)
	out, err := ioutil.ReadAll(r)
	require.NoError(t, err)
	return out
}

func TestASCIIHexRoundTrip(t *testing.T) {
	raw := []byte("Hello, World!")
	encoded := encodeAll(t, ASCIIHex, nil, raw)
	decoded := decodeAll(t, ASCIIHex, nil, encoded)
	assert.Equal(t, raw, decoded)
}

func TestASCIIHexOddLengthPadded(t *testing.T) {
	decoded := decodeAll(t, ASCIIHex, nil, []byte("4142 4>"))
	assert.Equal(t, []byte{0x41, 0x42, 0x40}, decoded)
}

func TestASCII85RoundTrip(t *testing.T) {
	raw := []byte("the quick brown fox jumps over the lazy dog 0123456789")
	encoded := encodeAll(t, ASCII85, nil, raw)
	decoded := decodeAll(t, ASCII85, nil, encoded)
	assert.Equal(t, raw, decoded)
}

func TestRunLengthRoundTrip(t *testing.T) {
	raw := []byte("aaaaaaaaaaaaabbbbbbbbbbbbbbbcdefg")
	encoded := encodeAll(t, RunLength, nil, raw)
	decoded := decodeAll(t, RunLength, nil, encoded)
	assert.Equal(t, raw, decoded)
}

func TestFlateRoundTripNoPredictor(t *testing.T) {
	raw := []byte("some stream content, repeated repeated repeated")
	encoded := encodeAll(t, Flate, nil, raw)
	decoded := decodeAll(t, Flate, nil, encoded)
	assert.Equal(t, raw, decoded)
}

func TestFlatePNGPredictorRoundTrip(t *testing.T) {
	raw := []byte{0x00, 0x01, 0x02, 0x03, 0x10, 0x11, 0x12, 0x13}
	params := Params{"Predictor": 12, "Columns": 4, "Colors": 1, "BitsPerComponent": 8}
	encoded := encodeAll(t, Flate, params, raw)
	decoded := decodeAll(t, Flate, params, encoded)
	assert.Equal(t, raw, decoded)
}

func TestFlateHonorsConfiguredCompressionLevel(t *testing.T) {
	raw := bytes.Repeat([]byte("compress me please, compress me please "), 200)

	stored := encodeAll(t, Flate, Params{"FlateCompression": zlib.NoCompression}, raw)
	best := encodeAll(t, Flate, Params{"FlateCompression": zlib.BestCompression}, raw)

	assert.Greater(t, len(stored), len(best), "FlateCompression: 0 must produce larger output than level 9 for compressible input")
	assert.Equal(t, raw, decodeAll(t, Flate, Params{"FlateCompression": zlib.NoCompression}, stored))
	assert.Equal(t, raw, decodeAll(t, Flate, Params{"FlateCompression": zlib.BestCompression}, best))
}

func TestFlateDefaultsCompressionLevelWhenUnset(t *testing.T) {
	raw := []byte("default level, no FlateCompression param supplied")
	encoded := encodeAll(t, Flate, nil, raw)
	decoded := decodeAll(t, Flate, nil, encoded)
	assert.Equal(t, raw, decoded)
}

func TestDecodeChainAppliesInOrder(t *testing.T) {
	raw := []byte("chained filter content")
	flateEncoded := encodeAll(t, Flate, nil, raw)
	hexEncoded := encodeAll(t, ASCIIHex, nil, flateEncoded)

	r, err := DecodeChain(bytes.NewReader(hexEncoded), []Stage{
		{Name: ASCIIHex},
		{Name: Flate},
	})
	require.NoError(t, err)
	out, err := ioutil.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func TestEncodeChainIsReverseOfDecodeChain(t *testing.T) {
	raw := []byte("round trip through a 2-stage chain")
	stages := []Stage{{Name: ASCIIHex}, {Name: Flate}}

	encR, err := EncodeChain(bytes.NewReader(raw), stages)
	require.NoError(t, err)
	encoded, err := ioutil.ReadAll(encR)
	require.NoError(t, err)

	decR, err := DecodeChain(bytes.NewReader(encoded), stages)
	require.NoError(t, err)
	decoded, err := ioutil.ReadAll(decR)
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
}

func TestLZWRoundTrip(t *testing.T) {
	raw := []byte("LZW round trip test data LZW LZW LZW")
	encoded := encodeAll(t, LZW, nil, raw)
	decoded := decodeAll(t, LZW, nil, encoded)
	assert.Equal(t, raw, decoded)
}

func TestPassthroughCodecIsIdentity(t *testing.T) {
	raw := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	codec, ok := Lookup(DCT)
	require.True(t, ok)
	r, err := codec.Decoder(bytes.NewReader(raw), nil)
	require.NoError(t, err)
	out, err := ioutil.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

var _ io.Reader = (*stopAtMarker)(nil)
