package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gettalong/hexapdf-sub005/config"
	"github.com/gettalong/hexapdf-sub005/objects"
	"github.com/gettalong/hexapdf-sub005/schema"
)

func TestDuplicateCopiesGraphOntoFreshOids(t *testing.T) {
	src := New(config.Default())
	defer src.Close()
	dst := New(config.Default())
	defer dst.Close()

	// Give dst's oid counter a head start so a coincidental oid/gen match
	// with src's assignments can't mask a bug in the remapping itself.
	dst.Add(objects.Integer(0))
	dst.Add(objects.Integer(0))

	kidRef := src.Add(objects.Dict{"Type": objects.Name("Page")})
	rootRef := src.Add(objects.Dict{
		"Type": objects.Name("Pages"),
		"Kids": objects.Array{kidRef},
	})
	rootRaw, err := src.Object(rootRef)
	require.NoError(t, err)
	typed, ok := src.Wrap(rootRaw, nil)
	require.True(t, ok)

	copyTyped, err := dst.Duplicate(src, typed)
	require.NoError(t, err)

	kidsArr := copyTyped.Dict["Kids"].(objects.Array)
	newKidRef := kidsArr[0].(objects.Reference)
	assert.NotEqual(t, kidRef, newKidRef, "duplicated reference must point at a fresh oid in dst")

	kidVal, err := dst.Object(newKidRef)
	require.NoError(t, err)
	assert.Equal(t, objects.Name("Page"), kidVal.(objects.Dict)["Type"])

	// Mutating the copy in dst must not affect src's original.
	dst.Set(newKidRef, objects.Dict{"Type": objects.Name("Changed")})
	srcStillHasOriginal, err := src.Object(kidRef)
	require.NoError(t, err)
	assert.Equal(t, objects.Name("Page"), srcStillHasOriginal.(objects.Dict)["Type"])
}

func TestDuplicatePreservesSharedSubstructure(t *testing.T) {
	src := New(config.Default())
	defer src.Close()
	dst := New(config.Default())
	defer dst.Close()

	shared := src.Add(objects.Integer(9))
	rootRef := src.Add(objects.Dict{"A": shared, "B": shared})
	rootRaw, _ := src.Object(rootRef)
	typed, ok := schema.NewTyped(schema.PageTreeNode, rootRaw, src)
	require.True(t, ok)

	copyTyped, err := dst.Duplicate(src, typed)
	require.NoError(t, err)

	a := copyTyped.Dict["A"].(objects.Reference)
	b := copyTyped.Dict["B"].(objects.Reference)
	assert.Equal(t, a, b, "the same source Reference must duplicate to the same destination oid")
}

func TestDuplicateTerminatesOnSelfReferentialGraph(t *testing.T) {
	src := New(config.Default())
	defer src.Close()
	dst := New(config.Default())
	defer dst.Close()

	ref := src.MakeIndirect(objects.Null{})
	src.Set(ref, objects.Dict{"Self": ref})
	raw, _ := src.Object(ref)
	typed, ok := schema.NewTyped(schema.PageTreeNode, raw, src)
	require.True(t, ok)

	copyTyped, err := dst.Duplicate(src, typed)
	require.NoError(t, err)

	self := copyTyped.Dict["Self"].(objects.Reference)
	selfVal, err := dst.Object(self)
	require.NoError(t, err)
	assert.Equal(t, self, selfVal.(objects.Dict)["Self"], "the copy must keep pointing at its own duplicated oid")
}
