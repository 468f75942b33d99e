package document

import (
	"github.com/gettalong/hexapdf-sub005/objects"
	"github.com/gettalong/hexapdf-sub005/objparser"
	"github.com/gettalong/hexapdf-sub005/pdferr"
	"github.com/gettalong/hexapdf-sub005/token"
	"github.com/gettalong/hexapdf-sub005/xref"
	"github.com/pdfcpu/pdfcpu/pkg/log"
)

// parseObjectAt parses one "oid gen obj ... endobj" body directly off
// src at off, resolving an indirect /Length (if any) through the
// Document's own object graph (spec.md §4.2: "/Length may itself be an
// indirect reference; the parser resolves it through the document's own
// resolution path, which works because lower-numbered xref entries are
// already fully parsed by the time a later stream needs them").
func (d *Document) parseObjectAt(src Source, off int64) (objects.Object, error) {
	tk := token.New(src, src.Size(), off)
	resolve := func(ref objects.Reference) (int64, bool) {
		v, err := d.Object(ref)
		if err != nil {
			return 0, false
		}
		i, ok := v.(objects.Integer)
		if !ok {
			return 0, false
		}
		return int64(i), true
	}
	ind, err := objparser.ParseIndirectObject(tk, resolve)
	if err != nil {
		return nil, err
	}
	return ind.Value, nil
}

// objStmContents is the parsed, decoded, cached body of one ObjectStream
// container (spec.md §4.4: "caching its parsed contents" so a container
// holding many compressed objects is decoded and tokenized only once).
type objStmContents struct {
	offsets []int64       // byte offset (within the decoded body) of object i
	objects []objects.Object // lazily filled in as entries are requested
	decoded []byte
}

// loadCompressed resolves a Compressed xref entry by loading (and
// caching) its container ObjectStream, then parsing the Index'th object
// out of the container's decoded body (spec.md §4.4, §4.7's ObjectStream
// class).
func (d *Document) loadCompressed(entry xref.Entry) (objects.Object, error) {
	c, ok := d.objStmCache[entry.ObjStmOid]
	if !ok {
		container, err := d.Object(objects.Reference{Oid: entry.ObjStmOid, Gen: 0})
		if err != nil {
			return nil, err
		}
		strm, ok := container.(objects.Stream)
		if !ok {
			return nil, pdferr.Malformedf(0, "object %d is not an ObjectStream container", entry.ObjStmOid)
		}
		raw, err := d.rawStreamBytes(entry.ObjStmOid, 0, strm)
		if err != nil {
			return nil, err
		}
		decoded, err := decodeStreamBytes(strm.Dict, raw)
		if err != nil {
			return nil, err
		}
		n := intFieldFromDict(strm.Dict, "N", 0)
		first := intFieldFromDict(strm.Dict, "First", 0)
		offsets, err := parseObjStmHeader(decoded, n, int64(first))
		if err != nil {
			return nil, err
		}
		c = &objStmContents{offsets: offsets, objects: make([]objects.Object, n), decoded: decoded}
		d.objStmCache[entry.ObjStmOid] = c
		log.Read.Printf("document: decoded object stream %d (%d contained object(s))\n", entry.ObjStmOid, n)
	}

	if entry.Index < 0 || entry.Index >= len(c.offsets) {
		return nil, pdferr.Malformedf(0, "compressed object index %d out of range", entry.Index)
	}
	if c.objects[entry.Index] != nil {
		return c.objects[entry.Index], nil
	}
	src := FromBytes(c.decoded)
	tk := token.New(src, src.Size(), c.offsets[entry.Index])
	p := objparser.New(tk)
	v, err := p.ParseValue()
	if err != nil {
		return nil, err
	}
	c.objects[entry.Index] = v
	return v, nil
}

// parseObjStmHeader reads the "oid1 off1 oid2 off2 ..." pair list an
// ObjectStream's decoded body begins with, returning the absolute (i.e.
// plus /First) byte offset of each of the n objects it declares.
func parseObjStmHeader(decoded []byte, n int, first int64) ([]int64, error) {
	src := FromBytes(decoded)
	tk := token.New(src, src.Size(), 0)
	offsets := make([]int64, n)
	for i := 0; i < n; i++ {
		_, err := tk.Next() // oid, unused: entry.Index already names position
		if err != nil {
			return nil, err
		}
		offTok, err := tk.Next()
		if err != nil {
			return nil, err
		}
		off, err := offTok.Int()
		if err != nil {
			return nil, pdferr.Malformedf(offTok.Offset, "invalid ObjectStream offset: %v", err)
		}
		offsets[i] = first + off
	}
	return offsets, nil
}

func intFieldFromDict(d objects.Dict, name string, def int) int {
	v, ok := d.Get(objects.Name(name))
	if !ok {
		return def
	}
	i, ok := v.(objects.Integer)
	if !ok {
		return def
	}
	return int(i)
}

// rawStreamBytes returns a stream's still-filter-encoded bytes for
// indirect object (oid, gen): read off the Document's backing source and
// transparently decrypted when the Stream came from parseObjectAt (Data
// carries only an offset/length), or returned as Data.Inline directly for
// a stream constructed in memory, which NewStream never encrypts (spec.md
// §4.6's add/modify path, §4.9: "Transparently decrypt every ByteString
// and stream on access").
func (d *Document) rawStreamBytes(oid uint32, gen uint16, strm objects.Stream) ([]byte, error) {
	if strm.Data.Inline != nil {
		return strm.Data.Inline, nil
	}
	if d.src == nil {
		return nil, pdferr.Usagef("stream has no backing source and no inline data")
	}
	buf := make([]byte, strm.Data.Length)
	n, err := d.src.ReadAt(buf, strm.Data.Offset)
	if err != nil && int64(n) != strm.Data.Length {
		return nil, err
	}
	raw := buf[:n]
	if d.crypt == nil {
		return raw, nil
	}
	return d.crypt.Decrypt(oid, gen, raw)
}
