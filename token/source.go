// Package token implements the lowest level of PDF file processing: a
// chunked tokenizer over a seekable byte source, producing the atoms
// consumed by package objparser (spec.md §4.1).
//
// Grounded on parser/tokenizer/token.go, which tokenized an in-memory
// []byte; generalized here to a sliding window over an io.ReaderAt so a
// Document need not hold an entire (potentially huge) file in memory
// just to scan it once.
package token

import (
	"io"

	"github.com/gettalong/hexapdf-sub005/pdferr"
)

// chunkSize is the window size the source buffers at once before
// sliding, per spec.md §4.1 ("~8 KiB, slides once consumed prefix
// exceeds 8 KiB").
const chunkSize = 8 * 1024

// source is a sliding read-ahead window over an io.ReaderAt. Logical
// byte offsets are absolute positions in the underlying reader; the
// window only ever holds a contiguous slice of it.
type source struct {
	r io.ReaderAt

	// base is the absolute offset of buf[0]; buf holds bytes
	// [base, base+len(buf)) that have already been read from r.
	base int64
	buf  []byte

	// size is the total length of the underlying source, or -1 if
	// unknown (read errors other than io.EOF propagate immediately).
	size int64
}

func newSource(r io.ReaderAt, size int64) *source {
	return &source{r: r, size: size}
}

// byteAt returns the byte at absolute offset pos, sliding/extending the
// window as needed. ok is false at or past end-of-data.
func (s *source) byteAt(pos int64) (byte, bool) {
	if pos < s.base || pos >= s.base+int64(len(s.buf)) {
		if !s.fill(pos) {
			return 0, false
		}
	}
	idx := pos - s.base
	if idx < 0 || idx >= int64(len(s.buf)) {
		return 0, false
	}
	return s.buf[idx], true
}

// fill slides the window so that it contains pos, reading a fresh
// chunkSize-ish block starting at pos. Returns false if pos is at or
// past the end of the source.
func (s *source) fill(pos int64) bool {
	if s.size >= 0 && pos >= s.size {
		return false
	}
	// Slide: if pos is just past the current window and the consumed
	// prefix already exceeds chunkSize, drop it and start a new window
	// at pos (spec.md §4.1's "slides once consumed prefix exceeds
	// 8 KiB"); otherwise simply extend the buffer forward.
	if len(s.buf) > 0 && pos >= s.base && pos-s.base <= chunkSize {
		return s.extend(pos)
	}
	s.base = pos
	s.buf = s.buf[:0]
	return s.extend(pos)
}

func (s *source) extend(through int64) bool {
	want := through - s.base + chunkSize
	if want <= int64(len(s.buf)) {
		return through < s.base+int64(len(s.buf))
	}
	newBuf := make([]byte, want)
	n, err := s.r.ReadAt(newBuf, s.base)
	newBuf = newBuf[:n]
	s.buf = newBuf
	if err != nil && err != io.EOF {
		// A transport error mid-read is reported as malformed at this
		// offset; the tokenizer has no retry policy (spec.md §4.1).
		panic(readFailure{offset: s.base + int64(n), err: err})
	}
	return through < s.base+int64(len(s.buf))
}

// readFailure is recovered at the Tokenizer API boundary and surfaced
// as a *pdferr.Malformed; panicking here keeps the scanning loops in
// tokenizer.go free of error-threading noise, matching the teacher's
// single-function nextToken that never expects mid-scan I/O errors.
type readFailure struct {
	offset int64
	err    error
}

func recoverReadFailure(rec interface{}) error {
	if rec == nil {
		return nil
	}
	if rf, ok := rec.(readFailure); ok {
		return pdferr.Malformedf(rf.offset, "reading source: %v", rf.err)
	}
	panic(rec)
}

// Slice returns a copy of the bytes in [start, end), used by SkipBytes
// to hand the parser a stream body without holding the source's window
// open past the call.
func (s *source) slice(start, end int64) []byte {
	out := make([]byte, 0, end-start)
	for pos := start; pos < end; pos++ {
		b, ok := s.byteAt(pos)
		if !ok {
			break
		}
		out = append(out, b)
	}
	return out
}
