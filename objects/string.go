package objects

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// ByteString is an opaque binary string, as produced by a literal "(...)"
// or hex "<...>" token. It carries no encoding information; interpreting
// its bytes as text is the caller's job (see TextString).
//
// Grounded on parser/types.go StringLiteral/HexLiteral, merged into one
// binary-safe type per spec.md §3 ("ByteString (binary)").
type ByteString []byte

func (s ByteString) Clone() Object {
	out := make(ByteString, len(s))
	copy(out, s)
	return out
}

func (s ByteString) String() string { return string(s) }

var literalReplacer = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

// PDFString escapes parentheses and backslashes and wraps the result in
// "(...)". spec.md §4.10 leaves the literal-vs-hex choice open and asks
// for a deterministic pick, so this package always picks the literal
// form, for TextString's BOM-prefixed encoding too; no value is ever
// written in hex form. Bytes other than parentheses and backslash,
// non-printable ones included, are written unescaped.
func (s ByteString) PDFString() string {
	return "(" + literalReplacer.Replace(string(s)) + ")"
}

// TextString is a Unicode-decoded view over a ByteString: either
// UTF-16BE-with-BOM (the common case for strings written by conforming
// PDF producers) or PDFDocEncoding (for legacy ASCII-ish byte strings).
// spec.md §3 describes this as a decode-on-access conversion performed by
// the typed dictionary layer; schema.Get materializes TextString values
// in place of the raw ByteString the first time a field is read.
//
// Grounded on model/writer/writer.go EncodeTextString (encode side) and
// reader/encodings/pdfdocenc.go (decode side), using
// golang.org/x/text/encoding/unicode for the UTF-16BE transcoding instead
// of a hand-rolled loop.
type TextString string

func (s TextString) Clone() Object  { return s }
func (s TextString) String() string { return string(s) }

var utf16BOM = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)

// PDFString encodes s as UTF-16BE with a leading BOM inside a literal
// string, per spec.md §4.10 ("TextStrings that are not pure ASCII are
// serialized with a UTF-16BE BOM prefix"). Pure-ASCII text strings are
// written as plain literals, matching what real PDF producers emit and
// avoiding needless bloat.
func (s TextString) PDFString() string {
	if isASCII(string(s)) {
		return ByteString(s).PDFString()
	}
	enc, err := utf16BOM.NewEncoder().String(string(s))
	if err != nil {
		// Fall back to a lossy ASCII literal rather than failing the
		// whole serialization; callers validating strict conformance
		// should check this ahead of time.
		return ByteString(s).PDFString()
	}
	return ByteString(enc).PDFString()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// DecodeTextString interprets raw as UTF-16BE (if it starts with the BOM
// 0xFE 0xFF) or as PDFDocEncoding/Latin-1-ish bytes otherwise.
func DecodeTextString(raw []byte) TextString {
	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		s, err := utf16BOM.NewDecoder().Bytes(raw)
		if err == nil {
			return TextString(s)
		}
	}
	return TextString(decodePDFDocEncoding(raw))
}
