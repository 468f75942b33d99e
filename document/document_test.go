package document

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gettalong/hexapdf-sub005/config"
	"github.com/gettalong/hexapdf-sub005/objects"
)

// buildMinimalPDF hand-assembles a one-object PDF with a classical xref
// table, tracking offsets itself so the test has no dependency on the
// writer package. startxrefOverride, if non-negative, is written in place
// of the real xref offset (to exercise the reconstruction fallback).
func buildMinimalPDF(t *testing.T, startxrefOverride int) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")
	objOffset := buf.Len()
	buf.WriteString("1 0 obj\n<</Type/Catalog>>\nendobj\n")
	xrefOffset := buf.Len()
	if startxrefOverride >= 0 {
		xrefOffset = startxrefOverride
	}
	fmt.Fprintf(&buf, "xref\n0 2\n0000000000 65535 f \n%010d 00000 n \ntrailer\n<</Size 2/Root 1 0 R>>\nstartxref\n%d\n%%%%EOF\n", objOffset, xrefOffset)
	return buf.Bytes()
}

func TestOpenParsesClassicalXref(t *testing.T) {
	data := buildMinimalPDF(t, -1)
	doc, err := Open(FromBytes(data), Options{})
	require.NoError(t, err)
	defer doc.Close()

	cat, ok := doc.Catalog()
	require.True(t, ok)
	typeName, ok := cat.Get("Type")
	require.True(t, ok)
	assert.Equal(t, objects.Name("Catalog"), typeName)

	_, hasLast := doc.LastXRefOffset()
	assert.True(t, hasLast)
	assert.False(t, doc.UsedXRefStream())
}

func TestOpenFallsBackToReconstructionOnBrokenXref(t *testing.T) {
	// startxref points at byte 0 ("%PDF-1.7\n...") instead of the real
	// xref table, so the chain walk fails and Open must reconstruct.
	data := buildMinimalPDF(t, 0)

	doc, err := Open(FromBytes(data), Options{})
	require.NoError(t, err)
	defer doc.Close()

	_, hasLast := doc.LastXRefOffset()
	assert.False(t, hasLast, "a reconstructed document has no valid prior xref offset")

	cat, ok := doc.Catalog()
	require.True(t, ok)
	typeName, _ := cat.Get("Type")
	assert.Equal(t, objects.Name("Catalog"), typeName)
}

func TestNewDocumentHasNoBackingSource(t *testing.T) {
	doc := New(config.Default())
	defer doc.Close()
	assert.Nil(t, doc.Source())
	_, hasLast := doc.LastXRefOffset()
	assert.False(t, hasLast)
}

func TestAddSetDeleteMarkFree(t *testing.T) {
	doc := New(config.Default())
	defer doc.Close()

	ref := doc.Add(objects.Integer(1))
	v, err := doc.Object(ref)
	require.NoError(t, err)
	assert.Equal(t, objects.Integer(1), v)

	doc.Set(ref, objects.Integer(2))
	v, err = doc.Object(ref)
	require.NoError(t, err)
	assert.Equal(t, objects.Integer(2), v)

	doc.MarkFree(ref)
	v, err = doc.Object(ref)
	require.NoError(t, err)
	assert.Equal(t, objects.Null{}, v)

	ref2 := doc.Add(objects.Integer(3))
	doc.Delete(ref2)
	assert.False(t, doc.ObjectExists(ref2.Oid))
}

func TestEachVisitsEveryLiveObjectOnce(t *testing.T) {
	doc := New(config.Default())
	defer doc.Close()

	r1 := doc.Add(objects.Integer(1))
	r2 := doc.Add(objects.Integer(2))

	seen := map[uint32]objects.Object{}
	doc.Each(func(ref objects.Reference, value objects.Object) {
		seen[ref.Oid] = value
	})
	assert.Equal(t, objects.Integer(1), seen[r1.Oid])
	assert.Equal(t, objects.Integer(2), seen[r2.Oid])
}

func TestWrapDispatchesOnType(t *testing.T) {
	doc := New(config.Default())
	defer doc.Close()

	typed, ok := doc.Wrap(objects.Dict{"Type": objects.Name("Catalog")}, nil)
	require.True(t, ok)
	assert.Equal(t, objects.Name("Catalog"), typed.Class.TypeName)
}

func TestWrapFallsBackWhenTypeUnknown(t *testing.T) {
	doc := New(config.Default())
	defer doc.Close()

	_, ok := doc.Wrap(objects.Dict{"Foo": objects.Integer(1)}, nil)
	assert.False(t, ok)
}
