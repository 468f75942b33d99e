package revision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gettalong/hexapdf-sub005/objects"
	"github.com/gettalong/hexapdf-sub005/xref"
)

type fakeLoader struct {
	values map[uint32]objects.Object
	calls  int
}

func (l *fakeLoader) LoadObject(entry xref.Entry) (objects.Object, error) {
	l.calls++
	return l.values[entry.Oid], nil
}

func TestGetLoadsLazilyAndCaches(t *testing.T) {
	sec := xref.New()
	sec.AddInUse(1, 0, 1)
	loader := &fakeLoader{values: map[uint32]objects.Object{1: objects.Integer(42)}}
	r := FromXref(objects.Dict{}, sec, loader)

	v, gen, err := r.Get(1)
	require.NoError(t, err)
	assert.Equal(t, objects.Integer(42), v)
	assert.Equal(t, uint16(0), gen)

	// Second Get must not call the loader again.
	_, _, err = r.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 1, loader.calls)
}

func TestGetOnFreeEntryIsNull(t *testing.T) {
	sec := xref.New()
	sec.AddFree(5, 0, 0)
	r := FromXref(objects.Dict{}, sec, nil)

	v, _, err := r.Get(5)
	require.NoError(t, err)
	assert.Equal(t, objects.Null{}, v)
}

func TestGetUnknownOidIsNilNoError(t *testing.T) {
	r := New(nil)
	v, _, err := r.Get(99)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestPutTracksAddedOids(t *testing.T) {
	r := New(nil)
	r.Put(10, 0, objects.Integer(1))
	r.Put(5, 0, objects.Integer(2))
	assert.Equal(t, []uint32{5, 10}, r.AddedOids())
}

func TestMarkFreeRecordsAsAdded(t *testing.T) {
	sec := xref.New()
	sec.AddInUse(7, 0, 1)
	r := FromXref(objects.Dict{}, sec, &fakeLoader{values: map[uint32]objects.Object{7: objects.Integer(1)}})

	r.MarkFree(7, 0)
	assert.Contains(t, r.AddedOids(), uint32(7))

	v, _, err := r.Get(7)
	require.NoError(t, err)
	assert.Equal(t, objects.Null{}, v)

	xe, ok := r.Xref.Lookup(7, 0)
	require.True(t, ok)
	assert.Equal(t, xref.Free, xe.Kind)
}

func TestEachUnionsXrefAndAddedOids(t *testing.T) {
	sec := xref.New()
	sec.AddInUse(1, 0, 1)
	r := FromXref(objects.Dict{}, sec, &fakeLoader{values: map[uint32]objects.Object{1: objects.Integer(1)}})
	r.Put(2, 0, objects.Integer(2)) // never touches r.Xref

	var seen []uint32
	r.Each(func(oid uint32, gen uint16, value objects.Object) {
		seen = append(seen, oid)
	})
	assert.Equal(t, []uint32{1, 2}, seen)
}

func TestMaxOidCoversAddedOnlyOids(t *testing.T) {
	r := New(nil)
	r.Put(100, 0, objects.Integer(1))
	assert.Equal(t, uint32(100), r.MaxOid())
}

func TestDeleteRemovesFromXrefCacheAndAdded(t *testing.T) {
	r := New(nil)
	r.Put(3, 0, objects.Integer(1))
	r.Delete(3)
	assert.False(t, r.Has(3))
	assert.Empty(t, r.AddedOids())
}

func TestGetWithoutLoaderErrors(t *testing.T) {
	sec := xref.New()
	sec.AddInUse(1, 0, 1)
	r := FromXref(objects.Dict{}, sec, nil)

	_, _, err := r.Get(1)
	assert.Error(t, err)
}
