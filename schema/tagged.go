// tagged.go layers github.com/go-playground/validator/v10 struct-tag
// validation on top of the hand-rolled Descriptor engine, for the
// handful of scalar-shaped typed dictionaries (a Rectangle array, the
// /P permission bitmask) where a fixed Go struct with tags is a better
// fit than a generic Dict walk. Grounded on sassoftware-pdf-xtract's use
// of the same library for request/config validation, adapted here to
// PDF array/bitmask shapes.
package schema

import (
	"github.com/go-playground/validator/v10"

	"github.com/gettalong/hexapdf-sub005/objects"
	"github.com/gettalong/hexapdf-sub005/pdferr"
)

var tagValidate = validator.New()

// Rectangle is PDF32000 7.9.5's four-number array [llx lly urx ury],
// normalized so LLX<=URX and LLY<=URY.
type Rectangle struct {
	LLX float64 `validate:"ltefield=URX"`
	LLY float64 `validate:"ltefield=URY"`
	URX float64 `validate:"gtefield=LLX"`
	URY float64 `validate:"gtefield=LLY"`
}

// ParseRectangle converts a 4-element Array into a Rectangle, normalizing
// reversed corners the way real-world producers occasionally emit them
// (spec.md §4.7 treats this as the kind of convertible shape dict access
// performs on read).
func ParseRectangle(v objects.Object) (Rectangle, error) {
	arr, ok := v.(objects.Array)
	if !ok || len(arr) != 4 {
		return Rectangle{}, pdferr.Validationf("Rectangle", "expected a 4-element array")
	}
	nums := make([]float64, 4)
	for i, el := range arr {
		switch n := el.(type) {
		case objects.Integer:
			nums[i] = float64(n)
		case objects.Real:
			nums[i] = float64(n)
		default:
			return Rectangle{}, pdferr.Validationf("Rectangle", "element %d is not a number", i)
		}
	}
	r := Rectangle{LLX: nums[0], LLY: nums[1], URX: nums[2], URY: nums[3]}
	if r.LLX > r.URX {
		r.LLX, r.URX = r.URX, r.LLX
	}
	if r.LLY > r.URY {
		r.LLY, r.URY = r.URY, r.LLY
	}
	return r, nil
}

// ToArray serializes a Rectangle back to its PDF array form.
func (r Rectangle) ToArray() objects.Array {
	return objects.Array{objects.Real(r.LLX), objects.Real(r.LLY), objects.Real(r.URX), objects.Real(r.URY)}
}

// ValidateTags runs struct-tag validation over v (a Rectangle or
// Permissions value) and converts every failure into a non-correctable
// Issue named field.<StructField>, the same Issue type every other
// validator in this package returns.
func ValidateTags(field string, v interface{}) []Issue {
	if err := tagValidate.Struct(v); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			issues := make([]Issue, 0, len(verrs))
			for _, fe := range verrs {
				issues = append(issues, Issue{
					Field:       field + "." + fe.Field(),
					Message:     fe.Tag() + " constraint violated",
					Correctable: false,
				})
			}
			return issues
		}
		return []Issue{{Field: field, Message: err.Error()}}
	}
	return nil
}

// Permissions mirrors the /P bitmask of PDF32000 7.6.3.2 Table 22: bits
// 3,4,5,6,9,10,11,12 are the only ones a conforming reader interprets,
// the rest are reserved and must be 1.
type Permissions struct {
	Bits int32 `validate:"-"`
}

// PermissionFlag names one bit of the /P bitmask.
type PermissionFlag int32

const (
	PermPrint PermissionFlag = 1 << 2
	// PermPrint above is bit 3 (value 4), PDF32000's "print" bit.
	PermModify       PermissionFlag = 1 << 3
	PermCopy         PermissionFlag = 1 << 4
	PermAnnotate     PermissionFlag = 1 << 5
	PermFillForms    PermissionFlag = 1 << 8
	PermExtract      PermissionFlag = 1 << 9
	PermAssemble     PermissionFlag = 1 << 10
	PermPrintHighRes PermissionFlag = 1 << 11
)

// Has reports whether flag is granted.
func (p Permissions) Has(flag PermissionFlag) bool { return p.Bits&int32(flag) != 0 }

// NewPermissions builds the reserved-bits-set bitmask PDF32000 requires
// (all reserved bits must be 1) with the given flags granted.
func NewPermissions(flags ...PermissionFlag) Permissions {
	bits := ^int32(0) &^ 0b11 // every reserved bit set to 1, bits 0-1 unused
	bits &^= int32(PermPrint | PermModify | PermCopy | PermAnnotate | PermFillForms | PermExtract | PermAssemble | PermPrintHighRes)
	for _, f := range flags {
		bits |= int32(f)
	}
	return Permissions{Bits: bits}
}
