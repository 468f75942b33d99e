package document

import (
	"github.com/gettalong/hexapdf-sub005/objects"
	"github.com/gettalong/hexapdf-sub005/pdferr"
	"github.com/gettalong/hexapdf-sub005/revision"
	"github.com/gettalong/hexapdf-sub005/schema"
)

// Object resolves ref against the revision chain, newest revision first
// (spec.md §4.6: "object(ref) walks revisions newest→oldest, returning
// the first one whose xref table records the oid"). A Free entry or an
// oid absent from every revision resolves to objects.Null{}.
func (d *Document) Object(ref objects.Reference) (objects.Object, error) {
	var found objects.Object
	var foundErr error
	hit := false
	d.revisions.EachNewestFirst(func(r *revision.Revision) bool {
		if !r.Has(ref.Oid) {
			return true
		}
		v, _, err := r.Get(ref.Oid)
		found, foundErr, hit = v, err, true
		return false
	})
	if !hit {
		return objects.Null{}, nil
	}
	return found, foundErr
}

// ObjectExists reports whether oid is recorded (in-use or compressed) in
// any revision, without materializing it.
func (d *Document) ObjectExists(oid uint32) bool {
	exists := false
	d.revisions.EachNewestFirst(func(r *revision.Revision) bool {
		if r.Has(oid) {
			exists = true
			return false
		}
		return true
	})
	return exists
}

// Resolve implements schema.Resolver.
func (d *Document) Resolve(ref objects.Reference) (objects.Object, bool) {
	v, err := d.Object(ref)
	if err != nil {
		return nil, false
	}
	return v, true
}

// MakeIndirect implements schema.Resolver: stores v under a fresh oid in
// the current revision and returns a Reference to it.
func (d *Document) MakeIndirect(v objects.Object) objects.Reference {
	oid := d.revisions.NextFreeOid()
	d.revisions.Current().Put(oid, 0, v)
	return objects.Reference{Oid: oid, Gen: 0}
}

// Add stores value under a freshly assigned oid in the current revision
// and returns the Reference to it (spec.md §4.6's "add").
func (d *Document) Add(value objects.Object) objects.Reference {
	return d.MakeIndirect(value)
}

// Set stores value directly under ref in the current revision,
// overwriting whatever (if anything) was there (spec.md §4.6's direct
// oid/gen write path used when rebuilding a known slot in place).
func (d *Document) Set(ref objects.Reference, value objects.Object) {
	d.revisions.Current().Put(ref.Oid, ref.Gen, value)
}

// Delete hard-deletes ref from the current revision (spec.md §4.6).
func (d *Document) Delete(ref objects.Reference) {
	d.revisions.Current().Delete(ref.Oid)
}

// MarkFree replaces ref's entry with a Null tombstone in the current
// revision (spec.md §4.6's soft delete).
func (d *Document) MarkFree(ref objects.Reference) {
	d.revisions.Current().MarkFree(ref.Oid, ref.Gen)
}

// Each calls fn once for every oid recorded across the whole revision
// chain, resolved against its newest (current) value (spec.md §4.6's
// each(current=true), the default).
func (d *Document) Each(fn func(ref objects.Reference, value objects.Object)) {
	seen := map[uint32]bool{}
	d.revisions.EachNewestFirst(func(r *revision.Revision) bool {
		r.Each(func(oid uint32, gen uint16, value objects.Object) {
			if seen[oid] {
				return
			}
			seen[oid] = true
			fn(objects.Reference{Oid: oid, Gen: gen}, value)
		})
		return true
	})
}

// Trailer returns the current revision's trailer dictionary.
func (d *Document) Trailer() objects.Dict {
	return d.revisions.Current().Trailer
}

// CurrentRevision returns the topmost revision.Revision, for
// writer.WriteIncremental's AddedOids-driven body emission.
func (d *Document) CurrentRevision() *revision.Revision {
	return d.revisions.Current()
}

// Catalog resolves and wraps the document's /Root catalog.
func (d *Document) Catalog() (schema.Typed, bool) {
	root, ok := d.Trailer().Get("Root")
	if !ok {
		return schema.Typed{}, false
	}
	var raw objects.Object
	if ref, ok := root.(objects.Reference); ok {
		v, err := d.Object(ref)
		if err != nil {
			return schema.Typed{}, false
		}
		raw = v
	} else {
		raw = root
	}
	return schema.NewTyped(schema.Catalog, raw, d)
}

// Version returns the document's declared PDF version (spec.md §4.4:
// "the catalog's /Version overrides the header version when present and
// numerically greater").
func (d *Document) Version() (major, minor int) {
	major, minor = d.header.Major, d.header.Minor
	if cat, ok := d.Catalog(); ok {
		if v, ok := cat.Get("Version"); ok {
			if n, ok := v.(objects.Name); ok {
				if m, n2, ok := parseVersionName(string(n)); ok && (m > major || (m == major && n2 > minor)) {
					major, minor = m, n2
				}
			}
		}
	}
	return major, minor
}

func parseVersionName(s string) (major, minor int, ok bool) {
	return parseVersionDigits([]byte(s))
}

// SetVersion sets the header version fields directly (used by New and by
// explicit version bumps); spec.md §4.6 prefers updating the catalog
// /Version entry for an existing document, which callers do directly via
// Catalog().Set("Version", ...).
func (d *Document) SetVersion(major, minor int) {
	d.header.Major, d.header.Minor = major, minor
}

// Encrypted reports whether this document was opened with (or has since
// had installed) an encryption Handler.
func (d *Document) Encrypted() bool {
	return d.crypt != nil
}

// Wrap wraps raw under the ClassDef registered for its /Type (and, for a
// Page, /Subtype-equivalent dispatch via PageTreeNode/Page's shared
// /Type "Pages" vs leaf), falling back to the caller-supplied fallback
// class when no /Type entry matches (spec.md §4.7: "wrap resolves a
// class by consulting /Type, then /Subtype, then falls back to a
// caller-specified default").
func (d *Document) Wrap(raw objects.Object, fallback *schema.ClassDef) (schema.Typed, bool) {
	dict := dictOf(raw)
	if dict != nil {
		if tv, ok := dict.Get("Type"); ok {
			if name, ok := tv.(objects.Name); ok {
				if class, ok := d.typeMap[name]; ok {
					return schema.NewTyped(class, raw, d)
				}
			}
		}
		if sv, ok := dict.Get("Subtype"); ok {
			if name, ok := sv.(objects.Name); ok {
				if class, ok := d.subtypeMap[name]; ok {
					return schema.NewTyped(class, raw, d)
				}
			}
		}
	}
	if fallback != nil {
		return schema.NewTyped(fallback, raw, d)
	}
	return schema.Typed{}, false
}

func dictOf(v objects.Object) objects.Dict {
	switch val := v.(type) {
	case objects.Dict:
		return val
	case objects.Stream:
		return val.Dict
	default:
		return nil
	}
}

// Unwrap deep-converts t back into a plain objects.Object tree with
// every Reference it contains (recursively, through Arrays, Dicts and
// Stream dictionaries) resolved and inlined, the inverse of Wrap
// (spec.md §4.6: "unwrap(v): deep conversion to native-language values,
// detecting cycles and failing with a clear error"). seen tracks the
// References already being expanded on the current path; pass nil or an
// empty map on the initial call.
func (d *Document) Unwrap(t schema.Typed, seen map[objects.Reference]bool) (objects.Object, error) {
	if seen == nil {
		seen = map[objects.Reference]bool{}
	}
	return d.unwrapValue(t.Raw(), seen)
}

func (d *Document) unwrapValue(v objects.Object, seen map[objects.Reference]bool) (objects.Object, error) {
	switch val := v.(type) {
	case objects.Reference:
		if seen[val] {
			return nil, pdferr.Usagef("unwrap: cycle through indirect object %d %d R", val.Oid, val.Gen)
		}
		seen[val] = true
		resolved, err := d.Object(val)
		if err != nil {
			return nil, err
		}
		out, err := d.unwrapValue(resolved, seen)
		delete(seen, val)
		return out, err
	case objects.Array:
		out := make(objects.Array, len(val))
		for i, el := range val {
			u, err := d.unwrapValue(el, seen)
			if err != nil {
				return nil, err
			}
			out[i] = u
		}
		return out, nil
	case objects.Dict:
		out := make(objects.Dict, len(val))
		for k, el := range val {
			u, err := d.unwrapValue(el, seen)
			if err != nil {
				return nil, err
			}
			out[k] = u
		}
		return out, nil
	case objects.Stream:
		dictOut, err := d.unwrapValue(val.Dict, seen)
		if err != nil {
			return nil, err
		}
		return objects.Stream{Dict: dictOut.(objects.Dict), Data: val.Data}, nil
	default:
		return v, nil
	}
}
