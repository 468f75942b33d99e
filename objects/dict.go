package objects

import (
	"sort"
	"strings"
)

// Dict is an unordered key/value mapping, the PDF dictionary object.
// Serialization sorts keys for determinism (spec.md §6: "serialization is
// byte-for-byte reproducible given the same Document state").
//
// Grounded on parser/types_dict.go Dict (map[string]Object), whose
// indentedString already sorted keys before emitting "<<...>>"; this
// keeps that behaviour but drops the teacher's pretty-printing indent,
// since spec.md has no concept of a human-readable/debug mode at the
// Object layer (Document.String or a future debug dumper can add one).
type Dict map[Name]Object

func (d Dict) Clone() Object {
	out := make(Dict, len(d))
	for k, v := range d {
		if v == nil {
			continue
		}
		if _, isNull := v.(Null); isNull {
			continue
		}
		out[k] = v.Clone()
	}
	return out
}

func (d Dict) sortedKeys() []Name {
	keys := make([]Name, 0, len(d))
	for k, v := range d {
		if v == nil {
			continue
		}
		if _, isNull := v.(Null); isNull {
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (d Dict) String() string {
	keys := d.sortedKeys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = string(k) + " " + d[k].String()
	}
	return "<<" + strings.Join(parts, " ") + ">>"
}

// PDFString serializes the dictionary in key order, dropping any entry
// whose value is nil or Null (spec.md §4.2: "a dictionary entry whose
// value is Null is equivalent to the entry being absent"). The same
// merge-avoidance spacing used by Array applies between a key's name and
// its value, and between one entry and the next.
func (d Dict) PDFString() string {
	keys := d.sortedKeys()

	var b strings.Builder
	b.WriteString("<<")
	prev := byte('<')
	for _, k := range keys {
		keyStr := k.PDFString()
		if needsSeparator(prev, keyStr[0]) {
			b.WriteByte(' ')
		}
		b.WriteString(keyStr)
		prev = keyStr[len(keyStr)-1]

		valStr := d[k].PDFString()
		if needsSeparator(prev, valStr[0]) {
			b.WriteByte(' ')
		}
		b.WriteString(valStr)
		prev = valStr[len(valStr)-1]
	}
	b.WriteString(">>")
	return b.String()
}

// Get returns the value for key and whether it is present (a present but
// Null entry is treated as absent, matching the drop-on-write rule).
func (d Dict) Get(key Name) (Object, bool) {
	v, ok := d[key]
	if !ok {
		return nil, false
	}
	if _, isNull := v.(Null); isNull {
		return nil, false
	}
	return v, true
}

// Set stores value under key, or deletes key if value is nil or Null.
func (d Dict) Set(key Name, value Object) {
	if value == nil {
		delete(d, key)
		return
	}
	if _, isNull := value.(Null); isNull {
		delete(d, key)
		return
	}
	d[key] = value
}
