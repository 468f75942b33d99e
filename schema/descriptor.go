// Package schema implements the dictionary/stream typing layer of
// spec.md §4.7: a per-class table of field descriptors, inherited
// subtype→base, that drives on-access conversion (reference resolution,
// default materialization, shape-to-typed-value conversion) and
// validation of an objects.Dict or objects.Stream.
//
// Grounded on the teacher's per-class Go structs in model/*.go (Catalog,
// PageTree, Trailer, Info, ...): each of those static field lists is the
// source this package's ClassDef tables were transcribed from, turned
// into a runtime-inspectable descriptor list per spec.md §3/§9 ("a
// static table of field descriptors per type plus a tagged sum for
// values").
package schema

import "github.com/gettalong/hexapdf-sub005/objects"

// Kind is the set of shapes a field's value may take, independent of
// which concrete objects.Object type currently occupies the slot (a
// Reference is always acceptable in addition to the listed kinds, since
// it resolves to one of them).
type Kind uint8

const (
	AnyKind Kind = iota
	BooleanKind
	IntegerKind
	RealKind
	NumberKind // Integer or Real
	NameKind
	StringKind
	TextStringKind
	ArrayKind
	DictKind
	StreamKind
	DateKind
	RectangleKind
)

// Matches reports whether v (already reference-resolved) satisfies k.
func (k Kind) Matches(v objects.Object) bool {
	if k == AnyKind {
		return true
	}
	switch v.(type) {
	case objects.Boolean:
		return k == BooleanKind
	case objects.Integer:
		return k == IntegerKind || k == NumberKind
	case objects.Real:
		return k == RealKind || k == NumberKind
	case objects.Name:
		return k == NameKind
	case objects.ByteString:
		// A not-yet-converted text string is still a raw ByteString.
		return k == StringKind || k == DateKind || k == TextStringKind
	case objects.TextString:
		return k == TextStringKind || k == StringKind
	case objects.Array:
		return k == ArrayKind || k == RectangleKind
	case objects.Dict:
		return k == DictKind
	case objects.Stream:
		return k == StreamKind
	case objects.Null:
		return true // an absent/null value never fails a type check by itself
	default:
		return false
	}
}

// Descriptor is one field of a ClassDef, spec.md §3: "{name,
// allowed-type-set, required?, default, must-be-indirect?,
// introduced-in-version}".
type Descriptor struct {
	Name Name

	// Kinds lists the shapes this field's resolved value may take; the
	// field passes validation if it matches any of them. A nil/empty
	// Kinds means AnyKind.
	Kinds []Kind

	Required       bool
	MustBeIndirect bool

	// IntroducedInVersion is "1.7", "2.0", etc.; empty means "always".
	IntroducedInVersion string

	// Default, if non-nil, is materialized as a fresh copy of the
	// returned value the first time the field is read absent (spec.md
	// §3: "if absent but a default exists, materialize a fresh copy of
	// the default under name").
	Default func() objects.Object

	// Convert, if non-nil, is consulted after Default/reference
	// resolution: it may replace the raw value with a converted one
	// (e.g. decoding a TextString, wrapping a Dict as a typed subclass).
	// Returning (nil, false) leaves the value untouched.
	Convert func(raw objects.Object) (objects.Object, bool)
}

// Name is a field key, an alias of objects.Name so descriptor tables
// can write Name without a package qualifier at every call site.
type Name = objects.Name

// ClassDef describes one well-known PDF type: Catalog, Pages, Page,
// Trailer, Info, XRefStream, ObjectStream, and so on.
type ClassDef struct {
	// TypeName/SubtypeName are this class's own /Type and /Subtype
	// values, used by the document package's dispatch (document.Wrap)
	// and left empty when a class has no such entry (e.g. Trailer has
	// no /Type).
	TypeName, SubtypeName objects.Name

	// Base is the class this one extends; field descriptors are
	// inherited, spec.md §3: "Field descriptors are inherited: a
	// subtype's descriptor list extends its base's."
	Base *ClassDef

	Fields []Descriptor

	// RequireIndirect, when true, means every instance of this class
	// must itself be an indirect object (spec.md §4.7: "Streams
	// override default-indirect to require indirect").
	RequireIndirect bool

	// Validators run once per ValidateDict call, after the built-in
	// field checks, for constraints the descriptor table cannot express
	// (spec.md §4.7 (iv): "run custom per-class validators").
	Validators []func(d objects.Dict) []Issue
}

// AllFields walks Base→subtype and returns the full inherited field
// list, subtype fields last so a subtype redeclaring a base field's
// Descriptor (rare, but legal) wins on lookup-by-name.
func AllFields(c *ClassDef) []Descriptor {
	if c == nil {
		return nil
	}
	return append(AllFields(c.Base), c.Fields...)
}

// FieldByName returns the most specific Descriptor named name, if any.
func FieldByName(c *ClassDef, name objects.Name) (Descriptor, bool) {
	fields := AllFields(c)
	for i := len(fields) - 1; i >= 0; i-- {
		if fields[i].Name == name {
			return fields[i], true
		}
	}
	return Descriptor{}, false
}
