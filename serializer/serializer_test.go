package serializer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gettalong/hexapdf-sub005/objects"
)

func TestWriteIndirectObjectPlainValue(t *testing.T) {
	var buf bytes.Buffer
	err := WriteIndirectObject(&buf, 3, 0, objects.Integer(42), nil)
	require.NoError(t, err)
	assert.Equal(t, "3 0 obj\n42\nendobj\n", buf.String())
}

func TestWriteIndirectObjectStreamFixesLength(t *testing.T) {
	var buf bytes.Buffer
	strm := objects.Stream{Dict: objects.Dict{"Filter": objects.Name("FlateDecode")}}
	streamBytes := func(objects.Stream) ([]byte, error) { return []byte("hello"), nil }

	err := WriteIndirectObject(&buf, 1, 0, strm, streamBytes)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "1 0 obj\n")
	assert.Contains(t, out, "/Length 5")
	assert.Contains(t, out, "stream\nhello\nendstream\nendobj\n")
}

func TestWriteIndirectObjectStreamPropagatesError(t *testing.T) {
	var buf bytes.Buffer
	strm := objects.Stream{Dict: objects.Dict{}}
	wantErr := assert.AnError
	streamBytes := func(objects.Stream) ([]byte, error) { return nil, wantErr }

	err := WriteIndirectObject(&buf, 1, 0, strm, streamBytes)
	assert.ErrorIs(t, err, wantErr)
}

func TestCountingWriterTracksOffset(t *testing.T) {
	var buf bytes.Buffer
	cw := &CountingWriter{W: &buf}
	_, _ = cw.Write([]byte("abc"))
	_, _ = cw.Write([]byte("de"))
	assert.Equal(t, int64(5), cw.N)
}
