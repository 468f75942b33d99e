package objects

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDictPDFStringKeyOrderAndDrop(t *testing.T) {
	d := Dict{
		"Zebra": Integer(1),
		"Alpha": Integer(2),
		"Gamma": Null{},
	}
	assert.Equal(t, "<</Alpha 2 /Zebra 1>>", d.PDFString())
}

func TestDictSetNullDeletes(t *testing.T) {
	d := Dict{"Key": Integer(1)}
	d.Set("Key", Null{})
	_, ok := d.Get("Key")
	assert.False(t, ok)
	assert.NotContains(t, d, Name("Key"))
}

func TestDictSetNilDeletes(t *testing.T) {
	d := Dict{"Key": Integer(1)}
	d.Set("Key", nil)
	_, ok := d["Key"]
	assert.False(t, ok)
}

func TestDictCloneDropsNullEntries(t *testing.T) {
	d := Dict{"A": Integer(1), "B": Null{}}
	clone := d.Clone().(Dict)
	assert.Len(t, clone, 1)
	assert.Contains(t, clone, Name("A"))
}

func TestDictGetTreatsNullAsAbsent(t *testing.T) {
	d := Dict{"A": Null{}}
	_, ok := d.Get("A")
	assert.False(t, ok)
}
