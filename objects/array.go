package objects

import "strings"

// Array is an ordered sequence of values.
//
// Grounded on parser/types_dict.go's Dict.PDFString for the separator
// logic, generalized to arrays per spec.md §4.10.
type Array []Object

func (a Array) Clone() Object {
	out := make(Array, len(a))
	for i, v := range a {
		if v == nil {
			continue
		}
		out[i] = v.Clone()
	}
	return out
}

func (a Array) String() string {
	parts := make([]string, len(a))
	for i, v := range a {
		parts[i] = stringOrNull(v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// PDFString joins the child tokens, inserting a separating space only
// between two tokens that would otherwise merge into a single lexical
// token (spec.md §4.10): e.g. two adjacent integers, or an integer
// followed by a name, but not an integer followed by "[" or "<<".
func (a Array) PDFString() string {
	var b strings.Builder
	b.WriteByte('[')
	prev := byte(0)
	for i, v := range a {
		s := pdfStringOrNull(v)
		if i > 0 && needsSeparator(prev, s[0]) {
			b.WriteByte(' ')
		}
		b.WriteString(s)
		prev = s[len(s)-1]
	}
	b.WriteByte(']')
	return b.String()
}

func stringOrNull(v Object) string {
	if v == nil {
		return "null"
	}
	return v.String()
}

func pdfStringOrNull(v Object) string {
	if v == nil {
		return "null"
	}
	return v.PDFString()
}

// selfDelimiting reports whether b is one of the structural bracket/paren
// bytes that the tokenizer always treats as a token boundary on its own,
// regardless of what is adjacent to it.
func selfDelimiting(b byte) bool {
	switch b {
	case '<', '>', '[', ']', '(', ')':
		return true
	}
	return false
}

// needsSeparator reports whether two adjacent serialized tokens must be
// separated by whitespace to avoid merging into a single lexical token.
// Two integers ("5" "6" -> "56"), an integer followed by a name ("5"
// "/Foo" -> the name parser would not be confused, but we still insert
// the space per spec.md §4.10), and a name followed by a number ("/Foo"
// "5" -> "/Foo5" WOULD merge, since name bodies only stop at delimiters
// or whitespace) all require it. A value ending or starting with a
// bracket/paren never needs one, since those bytes are delimiters in
// both directions.
func needsSeparator(prevLast, nextFirst byte) bool {
	return !selfDelimiting(prevLast) && !selfDelimiting(nextFirst)
}
