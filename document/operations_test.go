package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gettalong/hexapdf-sub005/config"
	"github.com/gettalong/hexapdf-sub005/objects"
	"github.com/gettalong/hexapdf-sub005/schema"
)

func TestUnwrapDeepConvertsReferences(t *testing.T) {
	doc := New(config.Default())
	defer doc.Close()

	leaf := doc.Add(objects.Integer(42))
	root := objects.Dict{"Kids": objects.Array{leaf}}
	typed, ok := schema.NewTyped(schema.PageTreeNode, root, doc)
	require.True(t, ok)

	out, err := doc.Unwrap(typed, nil)
	require.NoError(t, err)
	dict, ok := out.(objects.Dict)
	require.True(t, ok)
	kids, ok := dict["Kids"].(objects.Array)
	require.True(t, ok)
	assert.Equal(t, objects.Integer(42), kids[0])
}

func TestUnwrapDetectsCycle(t *testing.T) {
	doc := New(config.Default())
	defer doc.Close()

	ref := doc.MakeIndirect(objects.Null{})
	doc.Set(ref, objects.Dict{"Self": ref})

	dict, err := doc.Object(ref)
	require.NoError(t, err)
	typed, ok := schema.NewTyped(schema.PageTreeNode, dict, doc)
	require.True(t, ok)

	_, err = doc.Unwrap(typed, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestUnwrapAllowsDiamondSharingWithoutFalseCycle(t *testing.T) {
	doc := New(config.Default())
	defer doc.Close()

	shared := doc.Add(objects.Integer(7))
	root := objects.Dict{"A": shared, "B": shared}
	typed, ok := schema.NewTyped(schema.PageTreeNode, root, doc)
	require.True(t, ok)

	out, err := doc.Unwrap(typed, nil)
	require.NoError(t, err)
	dict := out.(objects.Dict)
	assert.Equal(t, objects.Integer(7), dict["A"])
	assert.Equal(t, objects.Integer(7), dict["B"])
}

func TestUnwrapResolvesStreamDict(t *testing.T) {
	doc := New(config.Default())
	defer doc.Close()

	innerRef := doc.Add(objects.Integer(1))
	strm := objects.Stream{
		Dict: objects.Dict{"Length": innerRef},
		Data: objects.StreamData{Inline: []byte("data")},
	}
	typed, ok := schema.NewTyped(schema.PageTreeNode, strm, doc)
	require.True(t, ok)

	out, err := doc.Unwrap(typed, nil)
	require.NoError(t, err)
	outStrm, ok := out.(objects.Stream)
	require.True(t, ok)
	assert.Equal(t, objects.Integer(1), outStrm.Dict["Length"])
	assert.Equal(t, []byte("data"), outStrm.Data.Inline)
}
