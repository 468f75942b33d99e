package writer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gettalong/hexapdf-sub005/config"
	"github.com/gettalong/hexapdf-sub005/document"
	"github.com/gettalong/hexapdf-sub005/objects"
)

func newTestDoc(t *testing.T) (*document.Document, objects.Reference) {
	t.Helper()
	doc := document.New(config.Default())
	pagesRef := doc.Add(objects.Dict{
		"Type":  objects.Name("Pages"),
		"Kids":  objects.Array{},
		"Count": objects.Integer(0),
	})
	catalogRef := doc.Add(objects.Dict{"Type": objects.Name("Catalog"), "Pages": pagesRef})
	doc.Trailer().Set("Root", catalogRef)
	return doc, catalogRef
}

func TestWriteProducesParsableHeaderAndTrailer(t *testing.T) {
	doc, catalogRef := newTestDoc(t)

	var buf bytes.Buffer
	require.NoError(t, Write(doc, &buf, Options{}))

	out := buf.String()
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-1.7\n")))
	assert.Contains(t, out, "2 0 obj\n<</Pages 1 0 R /Type /Catalog>>\nendobj\n")
	assert.Contains(t, out, "trailer\n")
	assert.Contains(t, out, "startxref\n")
	assert.Contains(t, out, "%%EOF\n")
	_ = catalogRef
}

func TestWriteThenReopenRoundTrips(t *testing.T) {
	doc, _ := newTestDoc(t)

	var buf bytes.Buffer
	require.NoError(t, Write(doc, &buf, Options{}))

	reopened, err := document.Open(document.FromBytes(buf.Bytes()), document.Options{})
	require.NoError(t, err)
	defer reopened.Close()

	cat, ok := reopened.Catalog()
	require.True(t, ok)
	typeName, ok := cat.Get("Type")
	require.True(t, ok)
	assert.Equal(t, objects.Name("Catalog"), typeName)
}

func TestWriteXRefStreamFormat(t *testing.T) {
	doc, _ := newTestDoc(t)

	var buf bytes.Buffer
	require.NoError(t, Write(doc, &buf, Options{UseXRefStream: true}))
	assert.Contains(t, buf.String(), "/Type /XRef")

	reopened, err := document.Open(document.FromBytes(buf.Bytes()), document.Options{})
	require.NoError(t, err)
	defer reopened.Close()
	assert.True(t, reopened.UsedXRefStream())
}

func TestWriteIncrementalAppendsOnlyChangedObjects(t *testing.T) {
	doc, _ := newTestDoc(t)

	var full bytes.Buffer
	require.NoError(t, Write(doc, &full, Options{}))

	reopened, err := document.Open(document.FromBytes(full.Bytes()), document.Options{})
	require.NoError(t, err)
	defer reopened.Close()

	newRef := reopened.Add(objects.Integer(99))

	var inc bytes.Buffer
	require.NoError(t, WriteIncremental(reopened, &inc, Options{}))

	assert.True(t, bytes.HasPrefix(inc.Bytes(), full.Bytes()), "incremental update must copy original bytes forward verbatim")
	assert.Greater(t, inc.Len(), full.Len())

	final, err := document.Open(document.FromBytes(inc.Bytes()), document.Options{})
	require.NoError(t, err)
	defer final.Close()

	v, err := final.Object(newRef)
	require.NoError(t, err)
	assert.Equal(t, objects.Integer(99), v)
}

func TestWriteIncrementalWithoutPriorXRefFails(t *testing.T) {
	doc, _ := newTestDoc(t)
	var buf bytes.Buffer
	err := WriteIncremental(doc, &buf, Options{})
	assert.Error(t, err)
}
