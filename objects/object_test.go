package objects

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPDFStringScalars(t *testing.T) {
	tests := []struct {
		name string
		val  Object
		want string
	}{
		{"null", Null{}, "null"},
		{"true", Boolean(true), "true"},
		{"false", Boolean(false), "false"},
		{"zero", Integer(0), "0"},
		{"negative integer", Integer(-17), "-17"},
		{"reference", Reference{Oid: 5, Gen: 0}, "5 0 R"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.val.PDFString())
		})
	}
}

func TestRealFormatting(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1, "1"},
		{-0.0, "0"},
		{0.5, "0.5"},
		{-0.5, "-0.5"},
		{612, "612"},
		{792.0001, "792.0001"},
		{1.0 / 3.0, "0.3333"},
		{-1.0 / 3.0, "-0.3333"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Real(tt.in).PDFString(), "formatting %v", tt.in)
	}
}

func TestReferenceIsZero(t *testing.T) {
	assert.True(t, Reference{}.IsZero())
	assert.False(t, Reference{Oid: 1}.IsZero())
}

func TestNamePDFStringEscaping(t *testing.T) {
	tests := []struct {
		in   Name
		want string
	}{
		{"Foo", "/Foo"},
		{"", "/"},
		{"A B", "/A#20B"},
		{"Na#me", "/Na#23me"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.PDFString())
	}
}

func TestByteStringEscaping(t *testing.T) {
	s := ByteString(`a(b)c\d`)
	assert.Equal(t, `(a\(b\)c\\d)`, s.PDFString())
}

func TestTextStringRoundTrip(t *testing.T) {
	orig := TextString("héllo")
	encoded := orig.PDFString()
	// strip surrounding parens for DecodeTextString, which expects the raw
	// byte payload rather than the literal-string wrapper.
	raw := []byte(encoded[1 : len(encoded)-1])
	got := DecodeTextString(raw)
	assert.Equal(t, orig, got)
}

func TestTextStringASCIIStaysLiteral(t *testing.T) {
	s := TextString("plain")
	assert.Equal(t, "(plain)", s.PDFString())
}

func TestCloneIsIndependent(t *testing.T) {
	a := Array{Integer(1), ByteString("x")}
	b := a.Clone().(Array)
	b[0] = Integer(99)
	assert.Equal(t, Integer(1), a[0])
}
