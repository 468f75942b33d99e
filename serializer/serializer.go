// Package serializer turns a single indirect (oid, gen, value) triple
// into the "oid gen obj ... endobj" byte form spec.md §4.2 describes,
// including stream framing and the /Length fixup spec.md §5.2 requires.
// It has no knowledge of revisions, xref, or encryption; writer supplies
// already-encrypted/already-encoded bytes.
//
// Grounded on writer/pdfwriter.go's writeObject/writeStream (the
// teacher's single-pass emitter that tracks byte offsets as it writes),
// split out here as its own package per spec.md §2's component table so
// it can be unit-tested without a full Document.
package serializer

import (
	"fmt"
	"io"

	"github.com/gettalong/hexapdf-sub005/objects"
)

// StreamBytes resolves a Stream's final on-disk byte payload (already
// run through whatever filter chain the caller wants applied), since
// this package has no filter or encryption dependencies of its own.
type StreamBytes func(objects.Stream) ([]byte, error)

// CountingWriter wraps an io.Writer to track the total number of bytes
// written, the running offset WriteIndirectObject's callers need to
// build xref entries.
type CountingWriter struct {
	W io.Writer
	N int64
}

func (c *CountingWriter) Write(p []byte) (int, error) {
	n, err := c.W.Write(p)
	c.N += int64(n)
	return n, err
}

// WriteIndirectObject writes "oid gen obj\n<value>\nendobj\n" to w and
// returns only the write error; callers that need the object's file
// offset pass a *CountingWriter and record c.N before calling.
func WriteIndirectObject(w io.Writer, oid uint32, gen uint16, value objects.Object, streamBytes StreamBytes) error {
	if strm, ok := value.(objects.Stream); ok {
		return writeStream(w, oid, gen, strm, streamBytes)
	}
	_, err := fmt.Fprintf(w, "%d %d obj\n%s\nendobj\n", oid, gen, value.PDFString())
	return err
}

func writeStream(w io.Writer, oid uint32, gen uint16, strm objects.Stream, streamBytes StreamBytes) error {
	data, err := streamBytes(strm)
	if err != nil {
		return err
	}
	dict := strm.Dict.Clone().(objects.Dict)
	dict.Set("Length", objects.Integer(len(data)))

	if _, err := fmt.Fprintf(w, "%d %d obj\n%s\nstream\n", oid, gen, dict.PDFString()); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = fmt.Fprint(w, "\nendstream\nendobj\n")
	return err
}
