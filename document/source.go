// Package document implements spec.md §4.4 (file-level parser: header
// detection, startxref location, xref chain traversal, reconstruction)
// and §4.6 (the Document façade). It is the top of the dependency stack:
// token → objparser/xref → revision → schema → document.
//
// Grounded on reader/file/file.go's Read/parseXRefSections entry point
// and model/model.go's Document façade, recombined here into a single
// façade over the dynamically-typed object graph spec.md §3 describes
// (the teacher's Document is statically typed and has no equivalent of
// "wrap"/"unwrap").
package document

import (
	"bytes"
	"io"
	"os"
)

// Source is the seekable byte source spec.md §6 describes ("a file path,
// in-memory buffer, or object exposing read(n)+seek(offset)+size").
type Source interface {
	io.ReaderAt
	Size() int64
}

type byteSource struct {
	data []byte
}

func (b *byteSource) ReadAt(p []byte, off int64) (int, error) {
	return bytes.NewReader(b.data).ReadAt(p, off)
}
func (b *byteSource) Size() int64 { return int64(len(b.data)) }

// FromBytes wraps an in-memory buffer as a Source.
func FromBytes(data []byte) Source { return &byteSource{data: data} }

type fileSource struct {
	f    *os.File
	size int64
}

func (f *fileSource) ReadAt(p []byte, off int64) (int, error) { return f.f.ReadAt(p, off) }
func (f *fileSource) Size() int64                             { return f.size }

// FromFile opens path and wraps it as a Source. The caller is
// responsible for closing the returned *os.File itself; Document.Close
// does not close it.
func FromFile(path string) (Source, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return &fileSource{f: f, size: fi.Size()}, f, nil
}
