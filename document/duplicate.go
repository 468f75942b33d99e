package document

import (
	"github.com/gettalong/hexapdf-sub005/objects"
	"github.com/gettalong/hexapdf-sub005/schema"
)

// Duplicate deep-copies src's wrapped value into d, rewriting every
// Reference it contains (recursively, through Arrays, Dicts and Stream
// dictionaries) onto freshly assigned oids in d, and returns the typed
// wrapper for the copy. This is the workaround spec.md §4.6 implies by
// rejecting "an object already owned by another Document": an object
// read out of one Document can never be add()ed directly into another,
// so Duplicate is the only supported way to move it across.
//
// Shared substructure and reference cycles within src's graph are
// preserved: each distinct source Reference is copied at most once, and
// the destination oid is reserved (via MakeIndirect(objects.Null{}))
// before recursing into it, so a self-referential graph (e.g. a page
// tree's /Parent back-edges) terminates instead of looping forever.
func (d *Document) Duplicate(src *Document, t schema.Typed) (schema.Typed, error) {
	cache := map[objects.Reference]objects.Reference{}
	raw, err := d.duplicateValue(src, 0, 0, t.Raw(), cache)
	if err != nil {
		return schema.Typed{}, err
	}
	out, ok := d.Wrap(raw, t.Class)
	if !ok {
		return schema.Typed{}, nil
	}
	return out, nil
}

// duplicateValue copies v (read from src, where it lives under (oid, gen)
// when v is itself a Stream) into d. oid/gen are only consulted for the
// Stream case, to derive the correct per-object decryption key via src's
// own rawStreamBytes; they are meaningless for the other cases since only
// indirect Streams carry filtered, possibly-encrypted bytes.
func (d *Document) duplicateValue(src *Document, oid uint32, gen uint16, v objects.Object, cache map[objects.Reference]objects.Reference) (objects.Object, error) {
	switch val := v.(type) {
	case objects.Reference:
		if newRef, ok := cache[val]; ok {
			return newRef, nil
		}
		newRef := d.MakeIndirect(objects.Null{})
		cache[val] = newRef

		resolved, err := src.Object(val)
		if err != nil {
			return nil, err
		}
		copied, err := d.duplicateValue(src, val.Oid, val.Gen, resolved, cache)
		if err != nil {
			return nil, err
		}
		d.Set(newRef, copied)
		return newRef, nil
	case objects.Array:
		out := make(objects.Array, len(val))
		for i, el := range val {
			u, err := d.duplicateValue(src, 0, 0, el, cache)
			if err != nil {
				return nil, err
			}
			out[i] = u
		}
		return out, nil
	case objects.Dict:
		out := make(objects.Dict, len(val))
		for k, el := range val {
			u, err := d.duplicateValue(src, 0, 0, el, cache)
			if err != nil {
				return nil, err
			}
			out[k] = u
		}
		return out, nil
	case objects.Stream:
		dictOut, err := d.duplicateValue(src, 0, 0, val.Dict, cache)
		if err != nil {
			return nil, err
		}
		raw, err := src.rawStreamBytes(oid, gen, val)
		if err != nil {
			return nil, err
		}
		return objects.Stream{Dict: dictOut.(objects.Dict), Data: objects.StreamData{Inline: raw}}, nil
	default:
		return v.Clone(), nil
	}
}
