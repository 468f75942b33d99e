package objects

import "fmt"

// StreamData describes where a stream's raw (still-encoded) bytes live:
// either held inline in memory, or as a byte range in an underlying
// source that must be read lazily (spec.md §3: "either an inline byte
// buffer or a reference into an underlying byte source").
//
// Exactly one of the two shapes is populated; Inline is non-nil for a
// freshly-constructed or already-materialized stream, Offset/Length
// describe the source range for a stream still backed by the file a
// Document was parsed from.
type StreamData struct {
	Inline []byte

	Offset int64
	Length int64

	// FilterNames/DecodeParms are copied by Clone but not filled in by
	// the parser or any other code in this module; filter pipelines are
	// built from the dictionary's /Filter and /DecodeParms entries.
	FilterNames []Name
	DecodeParms []Object
}

func (d StreamData) isInline() bool { return d.Inline != nil }

func (d StreamData) Clone() StreamData {
	out := d
	if d.Inline != nil {
		out.Inline = append([]byte(nil), d.Inline...)
	}
	if d.FilterNames != nil {
		out.FilterNames = append([]Name(nil), d.FilterNames...)
	}
	if d.DecodeParms != nil {
		out.DecodeParms = make([]Object, len(d.DecodeParms))
		for i, p := range d.DecodeParms {
			if p != nil {
				out.DecodeParms[i] = p.Clone()
			}
		}
	}
	return out
}

// Stream is a Dict paired with a stream-data descriptor (spec.md §3,
// §4.7: "Stream objects must always be indirect"). The byte-oriented
// package layers (filter, document) are responsible for actually
// reading/decoding Data; this package only carries the raw descriptor
// and the dictionary it belongs to.
//
// Grounded on model/streams.go StreamDict/ContentStream, split apart
// from the teacher's single always-in-memory Content []byte field so an
// unread stream from a large source file need not be materialized.
type Stream struct {
	Dict Dict
	Data StreamData
}

func (s Stream) Clone() Object {
	return Stream{Dict: s.Dict.Clone().(Dict), Data: s.Data.Clone()}
}

func (s Stream) String() string {
	return fmt.Sprintf("%s stream(%d bytes)", s.Dict.String(), s.dataLen())
}

func (s Stream) dataLen() int64 {
	if s.Data.isInline() {
		return int64(len(s.Data.Inline))
	}
	return s.Data.Length
}

// PDFString serializes only the dictionary portion; the writer emits
// the "stream\n<bytes>\nendstream" framing itself once it has re-run
// the stream through its filter chain and fixed up /Length (spec.md
// §5.2), since that step requires I/O this package does not perform.
func (s Stream) PDFString() string {
	return s.Dict.PDFString()
}
