package xref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndLookup(t *testing.T) {
	s := New()
	s.AddInUse(1, 0, 100)
	s.AddFree(2, 0, 0)
	s.AddCompressed(3, 10, 2)

	e, ok := s.Lookup(1, 0)
	require.True(t, ok)
	assert.Equal(t, InUse, e.Kind)
	assert.Equal(t, int64(100), e.Offset)

	e2, ok := s.Lookup(3, 0)
	require.True(t, ok)
	assert.Equal(t, Compressed, e2.Kind)
	assert.Equal(t, uint32(10), e2.ObjStmOid)
	assert.Equal(t, 2, e2.Index)

	_, ok = s.Lookup(99, 0)
	assert.False(t, ok)
}

func TestEachSubsectionGroupsContiguousRuns(t *testing.T) {
	s := New()
	for _, oid := range []uint32{1, 2, 3, 7, 8, 20} {
		s.AddInUse(oid, 0, int64(oid)*10)
	}
	var subs []Subsection
	s.EachSubsection(func(sub Subsection) { subs = append(subs, sub) })
	require.Len(t, subs, 3)
	assert.Equal(t, uint32(1), subs[0].First)
	assert.Len(t, subs[0].Entries, 3)
	assert.Equal(t, uint32(7), subs[1].First)
	assert.Len(t, subs[1].Entries, 2)
	assert.Equal(t, uint32(20), subs[2].First)
	assert.Len(t, subs[2].Entries, 1)
}

func TestMergeFillsGapsWithoutOverwriting(t *testing.T) {
	newer := New()
	newer.AddInUse(1, 0, 111)
	older := New()
	older.AddInUse(1, 0, 999) // should NOT override newer's entry
	older.AddInUse(2, 0, 222)

	newer.Merge(older)

	e1, _ := newer.Lookup(1, 0)
	assert.Equal(t, int64(111), e1.Offset)
	e2, _ := newer.Lookup(2, 0)
	assert.Equal(t, int64(222), e2.Offset)
}

func TestEncodeDecodeStreamRoundTrip(t *testing.T) {
	orig := New()
	orig.AddInUse(1, 0, 1000)
	orig.AddFree(2, 0, 0)
	orig.AddCompressed(3, 5, 1)

	w := Widths{1, 4, 2}
	index := BuildIndex(orig)
	encoded := EncodeStream(orig, w, index)

	decoded, err := DecodeStream(encoded, w, index)
	require.NoError(t, err)

	e1, _ := decoded.Lookup(1, 0)
	assert.Equal(t, InUse, e1.Kind)
	assert.Equal(t, int64(1000), e1.Offset)

	e2, _ := decoded.Lookup(2, 0)
	assert.Equal(t, Free, e2.Kind)

	e3, _ := decoded.Lookup(3, 0)
	assert.Equal(t, Compressed, e3.Kind)
	assert.Equal(t, uint32(5), e3.ObjStmOid)
	assert.Equal(t, 1, e3.Index)
}

func TestDecodeStreamDefaultsTypeWhenW0IsZero(t *testing.T) {
	w := Widths{0, 2, 1}
	// one in-use entry, offset=300, gen=0
	row := append(int64ToBuf(300, 2), int64ToBuf(0, 1)...)
	sec, err := DecodeStream(row, w, []IndexRange{{First: 5, Count: 1}})
	require.NoError(t, err)
	e, ok := sec.Lookup(5, 0)
	require.True(t, ok)
	assert.Equal(t, InUse, e.Kind)
	assert.Equal(t, int64(300), e.Offset)
}
