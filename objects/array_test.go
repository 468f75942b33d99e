package objects

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArrayPDFStringSeparators(t *testing.T) {
	tests := []struct {
		name string
		arr  Array
		want string
	}{
		{"empty", Array{}, "[]"},
		{"two integers need a space", Array{Integer(5), Integer(6)}, "[5 6]"},
		{"integer then name needs a space", Array{Integer(5), Name("Foo")}, "[5 /Foo]"},
		{"name then integer needs a space", Array{Name("Foo"), Integer(5)}, "[/Foo 5]"},
		{"integer then array needs no space", Array{Integer(5), Array{}}, "[5[]]"},
		{"array then integer needs no space", Array{Array{}, Integer(5)}, "[[]5]"},
		{
			"mixed rectangle",
			Array{Integer(0), Integer(0), Integer(612), Integer(792)},
			"[0 0 612 792]",
		},
		{"nested array", Array{Array{Integer(1), Integer(2)}}, "[[1 2]]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.arr.PDFString())
		})
	}
}

func TestArrayCloneDeepCopies(t *testing.T) {
	inner := Array{Integer(1)}
	outer := Array{inner}
	clone := outer.Clone().(Array)
	clone[0].(Array)[0] = Integer(2)
	assert.Equal(t, Integer(1), outer[0].(Array)[0])
}
