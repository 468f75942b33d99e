package objparser

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gettalong/hexapdf-sub005/objects"
	"github.com/gettalong/hexapdf-sub005/token"
)

func newParser(t *testing.T, data string) *Parser {
	t.Helper()
	r := bytes.NewReader([]byte(data))
	return New(token.New(r, int64(len(data)), 0))
}

func TestParseScalarValues(t *testing.T) {
	tests := []struct {
		in   string
		want objects.Object
	}{
		{"null", objects.Null{}},
		{"true", objects.Boolean(true)},
		{"false", objects.Boolean(false)},
		{"42", objects.Integer(42)},
		{"3.5", objects.Real(3.5)},
		{"/Foo", objects.Name("Foo")},
	}
	for _, tt := range tests {
		v, err := newParser(t, tt.in).ParseValue()
		require.NoError(t, err)
		assert.Equal(t, tt.want, v)
	}
}

func TestParseArrayAndDictDropsNull(t *testing.T) {
	v, err := newParser(t, "<</A 1/B null/C[true false]>>").ParseValue()
	require.NoError(t, err)
	d, ok := v.(objects.Dict)
	require.True(t, ok)
	assert.Equal(t, objects.Integer(1), d["A"])
	_, hasB := d["B"]
	assert.False(t, hasB)
	assert.Equal(t, objects.Array{objects.Boolean(true), objects.Boolean(false)}, d["C"])
}

func TestParseIndirectReferenceCollapse(t *testing.T) {
	v, err := newParser(t, "12 0 R").ParseValue()
	require.NoError(t, err)
	assert.Equal(t, objects.Reference{Oid: 12, Gen: 0}, v)
}

func TestParseBareIntegerNotMistakenForReference(t *testing.T) {
	v, err := newParser(t, "[1 2]").ParseValue()
	require.NoError(t, err)
	assert.Equal(t, objects.Array{objects.Integer(1), objects.Integer(2)}, v)
}

func TestParseIndirectObjectWithStream(t *testing.T) {
	body := "7 0 obj\n<</Length 11>>\nstream\nhello world\nendstream\nendobj"
	r := bytes.NewReader([]byte(body))
	tk := token.New(r, int64(len(body)), 0)
	obj, err := ParseIndirectObject(tk, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), obj.Oid)
	assert.Equal(t, uint16(0), obj.Gen)
	s, ok := obj.Value.(objects.Stream)
	require.True(t, ok)
	assert.Equal(t, int64(11), s.Data.Length)
}

func TestParseIndirectObjectCorruptLengthFallsBackToScan(t *testing.T) {
	body := "7 0 obj\n<</Length 999>>\nstream\nhello world\nendstream\nendobj"
	r := bytes.NewReader([]byte(body))
	tk := token.New(r, int64(len(body)), 0)
	obj, err := ParseIndirectObject(tk, nil)
	require.NoError(t, err)
	s, ok := obj.Value.(objects.Stream)
	require.True(t, ok)
	assert.Equal(t, int64(11), s.Data.Length)
}
