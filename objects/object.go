// Package objects implements the primitive PDF value types: the tagged sum
// described in spec.md §3 (Null, Boolean, Integer, Real, Name, ByteString,
// TextString, Array, Dict, Reference, Stream). Every value in a parsed or
// constructed PDF document is one of these.
//
// Grounded on github.com/benoitkugler/pdf parser/types.go and
// parser/types_dict.go (themselves adapted from pdfcpu), generalized with
// Null/TextString/Stream and an oid/gen Reference instead of a pointer graph.
package objects

import "fmt"

// Object is the interface implemented by every PDF value kind.
type Object interface {
	fmt.Stringer

	// Clone returns a deep copy of the value. Indirect references are
	// copied by value (oid, gen), not followed.
	Clone() Object

	// PDFString returns the canonical byte representation used when
	// writing the value to a PDF file body. See needsSeparator (array.go)
	// for the spacing rules applied between sibling values.
	PDFString() string
}

// Null represents the PDF null object. A dictionary entry whose value
// would be Null is dropped by the parser (spec.md §4.2); Null still
// appears as a parsed "null" outside a dictionary (an array element, a
// bare value) and as the result of dereferencing a freed or absent object.
type Null struct{}

func (Null) Clone() Object    { return Null{} }
func (Null) String() string   { return "null" }
func (Null) PDFString() string { return "null" }

// Boolean represents a PDF boolean object.
type Boolean bool

func (b Boolean) Clone() Object { return b }
func (b Boolean) String() string { return fmt.Sprintf("%v", bool(b)) }
func (b Boolean) PDFString() string { return b.String() }

// Integer represents a PDF integer object.
type Integer int64

func (i Integer) Clone() Object    { return i }
func (i Integer) String() string   { return fmt.Sprintf("%d", int64(i)) }
func (i Integer) PDFString() string { return i.String() }

// Real represents a PDF real (floating point) object.
type Real float64

func (r Real) Clone() Object  { return r }
func (r Real) String() string { return fmt.Sprintf("%.4f", float64(r)) }

// PDFString formats r per spec.md §4.10: rounded to 4 fractional digits,
// no exponent, no trailing dot, a leading "0" for values in (-1, 1).
func (r Real) PDFString() string { return formatReal(float64(r)) }

// Reference is a weak pointer (oid, gen) to an indirect object, resolvable
// only through the Document owning the revision chain that contains it.
// The zero value (0, 0) denotes "not yet assigned".
type Reference struct {
	Oid uint32
	Gen uint16
}

func (r Reference) Clone() Object     { return r }
func (r Reference) String() string    { return fmt.Sprintf("%d %d R", r.Oid, r.Gen) }
func (r Reference) PDFString() string { return r.String() }

// IsZero reports whether r is the "not yet assigned" placeholder.
func (r Reference) IsZero() bool { return r.Oid == 0 && r.Gen == 0 }
