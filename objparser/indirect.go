package objparser

import (
	"bytes"

	"github.com/gettalong/hexapdf-sub005/objects"
	"github.com/gettalong/hexapdf-sub005/pdferr"
	"github.com/gettalong/hexapdf-sub005/token"
)

// IndirectObject is the result of parsing an "<oid> <gen> obj ... endobj"
// body (spec.md §4.2).
type IndirectObject struct {
	Oid   uint32
	Gen   uint16
	Value objects.Object
}

// LengthResolver resolves a /Length value that is itself an indirect
// reference, since the stream's own length entry may point elsewhere in
// the file (spec.md §4.2). Returning ok=false falls back to scanning for
// "endstream".
type LengthResolver func(ref objects.Reference) (length int64, ok bool)

// ParseIndirectObject reads one indirect object starting at the
// tokenizer's current position, including its trailing stream body if
// present. resolve is consulted only when /Length is itself a
// Reference; it may be nil if the caller has no store to resolve
// against yet (the forward length will then always fall back to
// scanning).
//
// Grounded on reader/file/streams.go parseStreamDictAt +
// readStreamFromLength/readStreamMaxLength/readStreamBlindly, adapted
// to build a StreamData descriptor (offset+length) rather than eagerly
// reading the bytes, and reader/parser's ParseObjectDefinition for the
// "oid gen obj" header.
func ParseIndirectObject(tk *token.Tokenizer, resolve LengthResolver) (IndirectObject, error) {
	var out IndirectObject

	oidTok, err := tk.Next()
	if err != nil {
		return out, err
	}
	if oidTok.Kind != token.Integer {
		return out, pdferr.Malformedf(oidTok.Offset, "expected object number, got %s", oidTok.Kind)
	}
	oid, err := oidTok.Int()
	if err != nil {
		return out, pdferr.Malformedf(oidTok.Offset, "invalid object number: %v", err)
	}

	genTok, err := tk.Next()
	if err != nil {
		return out, err
	}
	if genTok.Kind != token.Integer {
		return out, pdferr.Malformedf(genTok.Offset, "expected generation number, got %s", genTok.Kind)
	}
	gen, err := genTok.Int()
	if err != nil {
		return out, pdferr.Malformedf(genTok.Offset, "invalid generation number: %v", err)
	}

	objKw, err := tk.Next()
	if err != nil {
		return out, err
	}
	if !objKw.IsKeyword("obj") {
		return out, pdferr.Malformedf(objKw.Offset, "expected \"obj\", got %s", objKw.Value)
	}

	out.Oid = uint32(oid)
	out.Gen = uint16(gen)

	p := New(tk)
	value, err := p.ParseValue()
	if err != nil {
		return out, err
	}

	// If a "stream" keyword follows, value must be a dictionary and we
	// attach a StreamData descriptor to it (spec.md §4.2).
	streamKw, err := tk.Peek()
	if err != nil {
		return out, err
	}
	if streamKw.IsKeyword("stream") {
		dict, ok := value.(objects.Dict)
		if !ok {
			return out, pdferr.Malformedf(streamKw.Offset, "\"stream\" keyword after non-dictionary value")
		}
		_, _ = tk.Next() // consume "stream"
		data, err := readStreamBody(tk, dict, resolve)
		if err != nil {
			return out, err
		}
		value = objects.Stream{Dict: dict, Data: data}
	}

	out.Value = value

	endTok, err := tk.Next()
	if err != nil {
		return out, err
	}
	if !endTok.IsKeyword("endobj") {
		return out, pdferr.Malformedf(endTok.Offset, "expected \"endobj\", got %s", endTok.Value)
	}
	return out, nil
}

// readStreamBody locates the encoded byte range following "stream", per
// the separator and /Length rules in spec.md §4.2: a single LF (or
// CRLF) separates the keyword from the bytes; if /Length is corrupt
// (missing, wrong type, or an unresolvable reference), scan forward for
// "endstream" preceded by LF/CRLF.
func readStreamBody(tk *token.Tokenizer, dict objects.Dict, resolve LengthResolver) (objects.StreamData, error) {
	contentStart := tk.Pos()
	b0, ok := tk.Byte(contentStart)
	if ok && b0 == '\r' {
		contentStart++
		if b1, ok1 := tk.Byte(contentStart); ok1 && b1 == '\n' {
			contentStart++
		}
	} else if ok && b0 == '\n' {
		contentStart++
	}

	length, lengthOK := resolveStreamLength(dict, resolve)

	var data objects.StreamData
	if lengthOK {
		data = objects.StreamData{Offset: contentStart, Length: length}
	} else {
		end, err := scanForEndstream(tk, contentStart)
		if err != nil {
			return data, err
		}
		data = objects.StreamData{Offset: contentStart, Length: end - contentStart}
	}

	tk.SeekTo(data.Offset + data.Length)
	endstreamTok, err := tk.Next()
	if err != nil {
		return data, err
	}
	if !endstreamTok.IsKeyword("endstream") {
		// The declared/resolved length didn't land exactly on
		// "endstream" (a common producer bug); fall back to scanning.
		end, serr := scanForEndstream(tk, contentStart)
		if serr != nil {
			return data, serr
		}
		data.Length = end - contentStart
		tk.SeekTo(end)
		if _, err := tk.Next(); err != nil { // consume "endstream"
			return data, err
		}
	}
	return data, nil
}

func resolveStreamLength(dict objects.Dict, resolve LengthResolver) (int64, bool) {
	v, ok := dict.Get("Length")
	if !ok {
		return 0, false
	}
	switch l := v.(type) {
	case objects.Integer:
		if int64(l) < 0 {
			return 0, false
		}
		return int64(l), true
	case objects.Reference:
		if resolve == nil {
			return 0, false
		}
		return resolve(l)
	default:
		return 0, false
	}
}

var endstreamMarker = []byte("endstream")

// scanForEndstream implements the corrupt-length fallback: scan forward
// byte by byte for "endstream" preceded by LF or CRLF, per spec.md §4.2.
func scanForEndstream(tk *token.Tokenizer, from int64) (int64, error) {
	var window bytes.Buffer
	pos := from
	for {
		b, ok := tk.Byte(pos)
		if !ok {
			return 0, pdferr.Malformedf(from, "no \"endstream\" found after stream body")
		}
		window.WriteByte(b)
		if window.Len() > len(endstreamMarker)+2 {
			trimmed := window.Bytes()[window.Len()-len(endstreamMarker)-2:]
			window.Reset()
			window.Write(trimmed)
		}
		if bytes.HasSuffix(window.Bytes(), endstreamMarker) {
			streamEnd := pos + 1 - int64(len(endstreamMarker))
			// trim the preceding LF/CRLF from the stream body itself
			if b1, ok1 := tk.Byte(streamEnd - 1); ok1 && b1 == '\n' {
				streamEnd--
				if b2, ok2 := tk.Byte(streamEnd - 1); ok2 && b2 == '\r' {
					streamEnd--
				}
			}
			return streamEnd, nil
		}
		pos++
	}
}
