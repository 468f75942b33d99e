package document

import (
	"bytes"
	"strconv"

	"github.com/gettalong/hexapdf-sub005/objects"
	"github.com/gettalong/hexapdf-sub005/objparser"
	"github.com/gettalong/hexapdf-sub005/pdferr"
	"github.com/gettalong/hexapdf-sub005/token"
	"github.com/gettalong/hexapdf-sub005/xref"
)

// headerScanLimit bounds how far into the file the "%PDF-M.N" header
// may appear (spec.md §4.4 step 1: "within the first 1024 bytes").
const headerScanLimit = 1024

// trailerScanLimit is how much of the file's tail is searched for
// "%%EOF"/"startxref" (spec.md §4.4 step 2: "the last ~1054 bytes").
const trailerScanLimit = 1054

// header holds the result of locating the PDF header line.
type header struct {
	Offset       int64 // byte offset of "%PDF-" within the source
	Major, Minor int
}

func parseHeader(src Source) (header, error) {
	n := headerScanLimit
	if sz := src.Size(); sz < int64(n) {
		n = int(sz)
	}
	buf := make([]byte, n)
	rn, _ := src.ReadAt(buf, 0)
	buf = buf[:rn]

	idx := bytes.Index(buf, []byte("%PDF-"))
	if idx < 0 {
		return header{}, pdferr.Malformedf(0, "no %%PDF-M.N header found in first %d bytes", headerScanLimit)
	}
	rest := buf[idx+len("%PDF-"):]
	major, minor, ok := parseVersionDigits(rest)
	if !ok {
		return header{}, pdferr.Malformedf(int64(idx), "malformed PDF version in header")
	}
	return header{Offset: int64(idx), Major: major, Minor: minor}, nil
}

func parseVersionDigits(b []byte) (major, minor int, ok bool) {
	i := 0
	start := i
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
	}
	if i == start {
		return 0, 0, false
	}
	major, _ = strconv.Atoi(string(b[start:i]))
	if i >= len(b) || b[i] != '.' {
		return 0, 0, false
	}
	i++
	start = i
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
	}
	if i == start {
		return 0, 0, false
	}
	minor, _ = strconv.Atoi(string(b[start:i]))
	return major, minor, true
}

// locateStartXref finds the last "startxref\n<offset>" pair before the
// last "%%EOF" marker, per spec.md §4.4 step 2.
func locateStartXref(src Source) (int64, error) {
	n := int64(trailerScanLimit)
	sz := src.Size()
	if n > sz {
		n = sz
	}
	tailStart := sz - n
	buf := make([]byte, n)
	rn, _ := src.ReadAt(buf, tailStart)
	buf = buf[:rn]

	eof := bytes.LastIndex(buf, []byte("%%EOF"))
	if eof < 0 {
		return 0, pdferr.Malformedf(tailStart, "no %%%%EOF marker found in file tail")
	}
	head := buf[:eof]
	sx := bytes.LastIndex(head, []byte("startxref"))
	if sx < 0 {
		return 0, pdferr.Malformedf(tailStart, "no startxref keyword found before %%%%EOF")
	}
	numStart := sx + len("startxref")
	for numStart < len(head) && isSpaceByte(head[numStart]) {
		numStart++
	}
	numEnd := numStart
	for numEnd < len(head) && head[numEnd] >= '0' && head[numEnd] <= '9' {
		numEnd++
	}
	if numEnd == numStart {
		return 0, pdferr.Malformedf(tailStart+int64(sx), "startxref not followed by a number")
	}
	v, err := strconv.ParseInt(string(head[numStart:numEnd]), 10, 64)
	if err != nil {
		return 0, pdferr.Malformedf(tailStart+int64(sx), "invalid startxref offset: %v", err)
	}
	return v, nil
}

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

// revisionData is one parsed (trailer, xref) pair, before it is wrapped
// into a *revision.Revision bound to a Document's Loader.
type revisionData struct {
	Trailer   objects.Dict
	Xref      *xref.Section
	IsStream  bool // true if this revision's xref was an XRef stream
}

// parseRevisionAt parses the xref section or xref stream living at
// absolute file offset off, per spec.md §4.4 step 3.
func parseRevisionAt(src Source, off int64) (revisionData, error) {
	tk := token.New(src, src.Size(), off)
	first, err := tk.Peek()
	if err != nil {
		return revisionData{}, err
	}
	if first.IsKeyword("xref") {
		return parseClassicalXref(tk)
	}
	return parseXrefStreamObject(tk)
}

func parseClassicalXref(tk *token.Tokenizer) (revisionData, error) {
	_, _ = tk.Next() // consume "xref"
	sec := xref.New()
	for {
		t, err := tk.Peek()
		if err != nil {
			return revisionData{}, err
		}
		if t.IsKeyword("trailer") {
			_, _ = tk.Next()
			p := objparser.New(tk)
			v, err := p.ParseValue()
			if err != nil {
				return revisionData{}, err
			}
			d, ok := v.(objects.Dict)
			if !ok {
				return revisionData{}, pdferr.Malformedf(t.Offset, "trailer value is not a dictionary")
			}
			return revisionData{Trailer: d, Xref: sec}, nil
		}
		if t.Kind != token.Integer {
			return revisionData{}, pdferr.Malformedf(t.Offset, "expected subsection header or \"trailer\", got %s", t.Kind)
		}
		firstTok, _ := tk.Next()
		firstOid, err := firstTok.Int()
		if err != nil {
			return revisionData{}, pdferr.Malformedf(firstTok.Offset, "invalid subsection first oid: %v", err)
		}
		countTok, err := tk.Next()
		if err != nil {
			return revisionData{}, err
		}
		count, err := countTok.Int()
		if err != nil {
			return revisionData{}, pdferr.Malformedf(countTok.Offset, "invalid subsection count: %v", err)
		}
		for i := int64(0); i < count; i++ {
			offTok, err := tk.Next()
			if err != nil {
				return revisionData{}, err
			}
			offset, err := offTok.Int()
			if err != nil {
				return revisionData{}, pdferr.Malformedf(offTok.Offset, "invalid xref entry offset: %v", err)
			}
			genTok, err := tk.Next()
			if err != nil {
				return revisionData{}, err
			}
			gen, err := genTok.Int()
			if err != nil {
				return revisionData{}, pdferr.Malformedf(genTok.Offset, "invalid xref entry generation: %v", err)
			}
			kindTok, err := tk.Next()
			if err != nil {
				return revisionData{}, err
			}
			oid := uint32(firstOid + i)
			switch kindTok.Value {
			case "n":
				sec.AddInUse(oid, uint16(gen), offset)
			case "f":
				sec.AddFree(oid, uint16(gen), uint32(offset))
			default:
				return revisionData{}, pdferr.Malformedf(kindTok.Offset, "expected \"n\" or \"f\", got %q", kindTok.Value)
			}
		}
	}
}

func parseXrefStreamObject(tk *token.Tokenizer) (revisionData, error) {
	ind, err := objparser.ParseIndirectObject(tk, nil)
	if err != nil {
		return revisionData{}, err
	}
	strm, ok := ind.Value.(objects.Stream)
	if !ok {
		return revisionData{}, pdferr.Malformedf(0, "expected an XRef stream object")
	}

	raw, err := readInlineOrSourceBytes(tk, strm.Data)
	if err != nil {
		return revisionData{}, err
	}
	decoded, err := decodeStreamBytes(strm.Dict, raw)
	if err != nil {
		return revisionData{}, err
	}

	w, err := parseWidths(strm.Dict)
	if err != nil {
		return revisionData{}, err
	}
	size := int64(0)
	if sv, ok := strm.Dict.Get("Size"); ok {
		if i, ok := sv.(objects.Integer); ok {
			size = int64(i)
		}
	}
	index, err := parseIndexRanges(strm.Dict, size)
	if err != nil {
		return revisionData{}, err
	}

	sec, err := xref.DecodeStream(decoded, w, index)
	if err != nil {
		return revisionData{}, err
	}
	return revisionData{Trailer: strm.Dict, Xref: sec, IsStream: true}, nil
}

func parseWidths(d objects.Dict) (xref.Widths, error) {
	v, ok := d.Get("W")
	if !ok {
		return xref.Widths{}, pdferr.Malformedf(0, "XRef stream missing /W")
	}
	arr, ok := v.(objects.Array)
	if !ok || len(arr) != 3 {
		return xref.Widths{}, pdferr.Malformedf(0, "XRef stream /W must be a 3-element array")
	}
	var w xref.Widths
	for i, el := range arr {
		iv, ok := el.(objects.Integer)
		if !ok {
			return xref.Widths{}, pdferr.Malformedf(0, "XRef stream /W element %d is not an integer", i)
		}
		w[i] = int(iv)
	}
	return w, nil
}

func parseIndexRanges(d objects.Dict, size int64) ([]xref.IndexRange, error) {
	v, ok := d.Get("Index")
	if !ok {
		return []xref.IndexRange{{First: 0, Count: uint32(size)}}, nil
	}
	arr, ok := v.(objects.Array)
	if !ok || len(arr)%2 != 0 {
		return nil, pdferr.Malformedf(0, "XRef stream /Index must be an array of pairs")
	}
	out := make([]xref.IndexRange, 0, len(arr)/2)
	for i := 0; i < len(arr); i += 2 {
		first, ok1 := arr[i].(objects.Integer)
		count, ok2 := arr[i+1].(objects.Integer)
		if !ok1 || !ok2 {
			return nil, pdferr.Malformedf(0, "XRef stream /Index elements must be integers")
		}
		out = append(out, xref.IndexRange{First: uint32(first), Count: uint32(count)})
	}
	return out, nil
}

// readInlineOrSourceBytes returns the raw (still-encoded) bytes of a
// stream, reading through the tokenizer's underlying source when the
// descriptor only carries an offset/length (as it always does right
// after objparser.ParseIndirectObject parses it fresh off disk).
func readInlineOrSourceBytes(tk *token.Tokenizer, data objects.StreamData) ([]byte, error) {
	if data.Inline != nil {
		return data.Inline, nil
	}
	return tk.ReadRaw(data.Offset, data.Length), nil
}
