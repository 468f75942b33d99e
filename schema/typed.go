package schema

import "github.com/gettalong/hexapdf-sub005/objects"

// Typed is a typed wrapper around a raw Dict or Stream, sharing the
// backing data so in-place mutation through Typed is visible to anyone
// else still holding the raw value (spec.md §4.6: "the resulting typed
// wrapper shares data with the raw input so that in-place mutations are
// visible").
type Typed struct {
	Class *ClassDef
	Dict  objects.Dict
	// Stream is non-nil when the wrapped value was an objects.Stream;
	// Dict is then Stream.Dict (the same map), not a copy.
	Stream *objects.Stream

	Resolver Resolver
}

// NewTyped wraps raw (a Dict or Stream) under class, sharing its
// backing map.
func NewTyped(class *ClassDef, raw objects.Object, r Resolver) (Typed, bool) {
	switch v := raw.(type) {
	case objects.Dict:
		return Typed{Class: class, Dict: v, Resolver: r}, true
	case objects.Stream:
		return Typed{Class: class, Dict: v.Dict, Stream: &v, Resolver: r}, true
	default:
		return Typed{}, false
	}
}

// Get reads field name through the class's descriptor table.
func (t Typed) Get(name objects.Name) (objects.Object, bool) {
	return Get(t.Class, t.Dict, t.Resolver, name)
}

// Set stores value under name directly in the shared dict.
func (t Typed) Set(name objects.Name, value objects.Object) {
	t.Dict.Set(name, value)
}

// Validate runs ValidateDict against the wrapped dict, additionally
// failing (non-correctably) if the class requires the object itself to
// be indirect but Stream is nil and the caller indicates raw was direct;
// that check happens one layer up (document.Wrap's caller knows whether
// the value came from an indirect slot), so this only covers field-level
// issues.
func (t Typed) Validate(autoCorrect bool) []Issue {
	return ValidateDict(t.Class, t.Dict, t.Resolver, autoCorrect)
}

// Raw returns the underlying Stream if present, else the Dict.
func (t Typed) Raw() objects.Object {
	if t.Stream != nil {
		return *t.Stream
	}
	return t.Dict
}
