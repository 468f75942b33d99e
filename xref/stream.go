package xref

import (
	"github.com/gettalong/hexapdf-sub005/pdferr"
)

// Widths holds the per-field byte widths declared by an xref stream's
// /W array (spec.md §7: "/W [w1 w2 w3] describing per-field byte widths
// (big-endian)"). A width of 0 means that field is absent from the
// stream and the entry's type defaults to 1 (in-use) per PDF32000
// Table 17.
type Widths [3]int

func (w Widths) entrySize() int { return w[0] + w[1] + w[2] }

// IndexRange is one "first object number, count" pair from the stream's
// /Index array.
type IndexRange struct {
	First uint32
	Count uint32
}

func bufToInt64(buf []byte) int64 {
	var v int64
	for _, b := range buf {
		v = v<<8 | int64(b)
	}
	return v
}

func int64ToBuf(v int64, width int) []byte {
	buf := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		buf[i] = byte(v)
		v >>= 8
	}
	return buf
}

// DecodeStream parses decoded xref-stream bytes into a Section, per the
// field layout in spec.md §7 (type byte[0] defaults to 1 when w[0]==0).
//
// Grounded on reader/file/xreftable.go
// extractXRefTableEntriesFromXRefStream/bufToInt64.
func DecodeStream(data []byte, w Widths, index []IndexRange) (*Section, error) {
	entrySize := w.entrySize()
	total := 0
	for _, r := range index {
		total += int(r.Count)
	}
	need := total * entrySize
	if len(data) < need {
		return nil, pdferr.Malformedf(0, "xref stream: need %d bytes, have %d", need, len(data))
	}
	data = data[:need]

	sec := New()
	j := 0
	for _, r := range index {
		for i := uint32(0); i < r.Count; i++ {
			oid := r.First + i
			off := j * entrySize
			var typeField byte = 1
			pos := off
			if w[0] > 0 {
				typeField = data[pos]
				pos += w[0]
			}
			f2 := bufToInt64(data[pos : pos+w[1]])
			pos += w[1]
			f3 := bufToInt64(data[pos : pos+w[2]])

			switch typeField {
			case 0:
				sec.entries[oid] = Entry{Kind: Free, Oid: oid, Offset: f2, Gen: uint16(f3)}
			case 1:
				sec.entries[oid] = Entry{Kind: InUse, Oid: oid, Offset: f2, Gen: uint16(f3)}
			case 2:
				sec.entries[oid] = Entry{Kind: Compressed, Oid: oid, ObjStmOid: uint32(f2), Index: int(f3)}
			default:
				return nil, pdferr.Malformedf(0, "xref stream: unknown entry type %d", typeField)
			}
			j++
		}
	}
	return sec, nil
}

// EncodeStream serializes sec's entries (in the oid ranges given by
// index) into the fixed-width binary row format an xref stream's body
// uses, with widths w. Used by the writer when the source revision's
// xref was itself a stream (spec.md §5.2 step 3).
func EncodeStream(sec *Section, w Widths, index []IndexRange) []byte {
	entrySize := w.entrySize()
	total := 0
	for _, r := range index {
		total += int(r.Count)
	}
	out := make([]byte, 0, total*entrySize)
	for _, r := range index {
		for i := uint32(0); i < r.Count; i++ {
			oid := r.First + i
			e, ok := sec.entries[oid]
			if !ok {
				e = Entry{Kind: Free, Oid: oid}
			}
			var typ byte
			var f2, f3 int64
			switch e.Kind {
			case Free:
				typ, f2, f3 = 0, e.Offset, int64(e.Gen)
			case InUse:
				typ, f2, f3 = 1, e.Offset, int64(e.Gen)
			case Compressed:
				typ, f2, f3 = 2, int64(e.ObjStmOid), int64(e.Index)
			}
			if w[0] > 0 {
				out = append(out, typ)
			}
			out = append(out, int64ToBuf(f2, w[1])...)
			out = append(out, int64ToBuf(f3, w[2])...)
		}
	}
	return out
}

// BuildIndex returns the minimal set of contiguous-run IndexRanges
// covering every oid in sec, the shape the writer emits as /Index
// (spec.md §4.3's each_subsection, reused here since xref streams and
// classical sections subdivide identically).
func BuildIndex(sec *Section) []IndexRange {
	var out []IndexRange
	sec.EachSubsection(func(sub Subsection) {
		out = append(out, IndexRange{First: sub.First, Count: uint32(len(sub.Entries))})
	})
	return out
}
