package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gettalong/hexapdf-sub005/objects"
)

type fakeResolver struct {
	values  map[objects.Reference]objects.Object
	nextOid uint32
}

func (f *fakeResolver) Resolve(ref objects.Reference) (objects.Object, bool) {
	v, ok := f.values[ref]
	return v, ok
}

func (f *fakeResolver) MakeIndirect(v objects.Object) objects.Reference {
	f.nextOid++
	ref := objects.Reference{Oid: f.nextOid}
	if f.values == nil {
		f.values = map[objects.Reference]objects.Object{}
	}
	f.values[ref] = v
	return ref
}

var testClass = &ClassDef{
	TypeName: "Widget",
	Fields: []Descriptor{
		{Name: "Count", Kinds: []Kind{IntegerKind}, Required: true},
		{Name: "Label", Kinds: []Kind{NameKind}, Default: func() objects.Object { return objects.Name("untitled") }},
		{Name: "Data", MustBeIndirect: true},
	},
}

func TestGetResolvesIndirectReference(t *testing.T) {
	r := &fakeResolver{}
	ref := r.MakeIndirect(objects.Integer(7))
	d := objects.Dict{"Count": ref}

	v, ok := Get(testClass, d, r, "Count")
	require.True(t, ok)
	assert.Equal(t, objects.Integer(7), v)
}

func TestGetMaterializesDefaultAndMemoizes(t *testing.T) {
	r := &fakeResolver{}
	d := objects.Dict{}

	v, ok := Get(testClass, d, r, "Label")
	require.True(t, ok)
	assert.Equal(t, objects.Name("untitled"), v)

	stored, present := d.Get("Label")
	require.True(t, present)
	assert.Equal(t, objects.Name("untitled"), stored)
}

func TestGetMissingFieldNoDefault(t *testing.T) {
	r := &fakeResolver{}
	d := objects.Dict{}
	_, ok := Get(testClass, d, r, "Count")
	assert.False(t, ok)
}

func TestValidateDictFlagsMissingRequiredField(t *testing.T) {
	r := &fakeResolver{}
	d := objects.Dict{}
	issues := ValidateDict(testClass, d, r, false)
	require.Len(t, issues, 1)
	assert.Equal(t, "Count", issues[0].Field)
	assert.False(t, issues[0].Correctable)
}

func TestValidateDictFlagsTypeMismatch(t *testing.T) {
	r := &fakeResolver{}
	d := objects.Dict{"Count": objects.Name("not-a-number")}
	issues := ValidateDict(testClass, d, r, false)
	require.Len(t, issues, 1)
	assert.Equal(t, "Count", issues[0].Field)
}

func TestValidateDictAutoCorrectsMustBeIndirect(t *testing.T) {
	r := &fakeResolver{}
	d := objects.Dict{"Count": objects.Integer(1), "Data": objects.Integer(99)}

	issues := ValidateDict(testClass, d, r, true)
	assert.Empty(t, issues)

	raw, ok := d.Get("Data")
	require.True(t, ok)
	_, isRef := raw.(objects.Reference)
	assert.True(t, isRef, "Data should have been rewritten as an indirect reference")
}

func TestValidateDictReportsMustBeIndirectWithoutAutoCorrect(t *testing.T) {
	r := &fakeResolver{}
	d := objects.Dict{"Count": objects.Integer(1), "Data": objects.Integer(99)}

	issues := ValidateDict(testClass, d, r, false)
	require.Len(t, issues, 1)
	assert.Equal(t, "Data", issues[0].Field)
	assert.True(t, issues[0].Correctable)
}

func TestAllFieldsInheritsFromBase(t *testing.T) {
	base := &ClassDef{Fields: []Descriptor{{Name: "Base1"}}}
	sub := &ClassDef{Base: base, Fields: []Descriptor{{Name: "Sub1"}}}

	fields := AllFields(sub)
	require.Len(t, fields, 2)
	assert.Equal(t, objects.Name("Base1"), fields[0].Name)
	assert.Equal(t, objects.Name("Sub1"), fields[1].Name)
}

func TestNewTypedSharesBackingDict(t *testing.T) {
	d := objects.Dict{"Count": objects.Integer(1)}
	typed, ok := NewTyped(testClass, d, &fakeResolver{})
	require.True(t, ok)

	typed.Set("Count", objects.Integer(2))
	assert.Equal(t, objects.Integer(2), d["Count"])
}

func TestNewTypedStream(t *testing.T) {
	strm := objects.Stream{Dict: objects.Dict{"Count": objects.Integer(1)}}
	typed, ok := NewTyped(testClass, strm, &fakeResolver{})
	require.True(t, ok)
	require.NotNil(t, typed.Stream)
	assert.Equal(t, typed.Dict, typed.Stream.Dict)
	assert.Equal(t, typed.Raw(), *typed.Stream)
}
