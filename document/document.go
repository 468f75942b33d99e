package document

import (
	"github.com/gettalong/hexapdf-sub005/config"
	"github.com/gettalong/hexapdf-sub005/crypt"
	"github.com/gettalong/hexapdf-sub005/objects"
	"github.com/gettalong/hexapdf-sub005/pdferr"
	"github.com/gettalong/hexapdf-sub005/revision"
	"github.com/gettalong/hexapdf-sub005/schema"
	"github.com/gettalong/hexapdf-sub005/xref"
	"github.com/pdfcpu/pdfcpu/pkg/log"
)

// Document is the top-level façade (spec.md §4.6): indirect-object
// resolution, addition, deletion, typed-object wrapping, and validation
// orchestration over a chain of Revisions.
//
// Grounded on model/model.go's Document, generalized from a statically
// typed Catalog/Trailer pair to the dynamically-typed object graph
// spec.md §3 requires, and split apart so loading (this file, file.go,
// objectstream.go) is independent of the façade operations
// (operations.go).
type Document struct {
	Config config.Configuration

	src        Source
	closer     func() error
	header     header
	revisions  *revision.Revisions
	crypt      *crypt.Handler
	typeMap    map[objects.Name]*schema.ClassDef
	subtypeMap map[objects.Name]*schema.ClassDef

	objStmCache map[uint32]*objStmContents

	// xrefWasStream records whether the newest parsed revision used an
	// XRef stream (vs. a classical table), so Write can default to
	// matching the source format (spec.md §4.10, §9's open question:
	// "yes, default the output xref format to whatever the source used").
	xrefWasStream bool

	// lastXrefOffset is the absolute file offset of the xref section (or
	// stream) that was current when Open parsed this file, the value an
	// incremental update's new trailer must record as /Prev.
	lastXrefOffset int64
	hasLastXref    bool
}

// LastXRefOffset returns the byte offset writer.WriteIncremental must
// record as the new revision's /Prev, and whether Open actually recorded
// one (false for a Document built fresh via New).
func (d *Document) LastXRefOffset() (int64, bool) {
	return d.lastXrefOffset, d.hasLastXref
}

// Source exposes the backing byte source writer.WriteIncremental copies
// forward verbatim before appending the new revision; nil for a
// Document built via New.
func (d *Document) Source() Source {
	return d.src
}

// UsedXRefStream reports the source document's cross-reference format,
// for writer.Write's default Options.UseXRefStream.
func (d *Document) UsedXRefStream() bool {
	return d.xrefWasStream
}

// Options configures Open, spec.md §6's "optional decryption options
// blob".
type Options struct {
	Password string
	Config   config.Configuration
}

// Open parses src per spec.md §4.4: header, startxref, xref chain walk
// with /Prev (and /XRefStm hybrid) following, falling back to
// reconstruction on any MalformedPDF encountered along the way.
func Open(src Source, opts Options) (*Document, error) {
	cfg := opts.Config
	if cfg.IOChunkSize == 0 {
		cfg = config.Default()
	}

	doc := &Document{
		Config:      cfg,
		src:         src,
		typeMap:     cloneClassMap(schema.TypeMap),
		subtypeMap:  cloneClassMap(schema.SubtypeMap),
		objStmCache: map[uint32]*objStmContents{},
	}

	hdr, err := parseHeader(src)
	if err != nil {
		return nil, err
	}
	doc.header = hdr

	revs, startOffset, err := walkXrefChain(src, hdr)
	if err != nil {
		log.Read.Printf("document: xref chain unreadable (%s), falling back to reconstruction\n", err)
		revs, err = reconstruct(src)
		if err != nil {
			return nil, err
		}
	} else {
		log.Read.Printf("document: walked xref chain, %d revision(s), starting at offset %d\n", len(revs), startOffset)
		doc.lastXrefOffset, doc.hasLastXref = startOffset, true
	}

	built := make([]*revision.Revision, len(revs))
	for i, rd := range revs {
		built[i] = revision.FromXref(rd.Trailer, rd.Xref, nil)
	}
	doc.revisions = revision.NewRevisions(built)
	for _, r := range built {
		r.SetLoader(&sourceLoader{doc: doc, src: src})
	}
	if len(revs) > 0 {
		doc.xrefWasStream = revs[len(revs)-1].IsStream
	}

	if opts.Password != "" || doc.trailerHasEncrypt() {
		log.Read.Println("document: /Encrypt present, authenticating")
		if err := doc.setupEncryption(opts.Password); err != nil {
			return nil, err
		}
	}

	return doc, nil
}

func cloneClassMap(m map[objects.Name]*schema.ClassDef) map[objects.Name]*schema.ClassDef {
	out := make(map[objects.Name]*schema.ClassDef, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// New returns an empty Document (no revisions, no backing source) ready
// to have a Catalog/Pages tree built up and written out fresh, per
// spec.md §4.6's add/wrap surface.
func New(cfg config.Configuration) *Document {
	if cfg.IOChunkSize == 0 {
		cfg = config.Default()
	}
	doc := &Document{
		Config:      cfg,
		typeMap:     cloneClassMap(schema.TypeMap),
		subtypeMap:  cloneClassMap(schema.SubtypeMap),
		objStmCache: map[uint32]*objStmContents{},
		header:      header{Major: 1, Minor: 7},
	}
	first := revision.New(nil)
	first.Trailer = objects.Dict{"Size": objects.Integer(1)}
	doc.revisions = revision.NewRevisions([]*revision.Revision{first})
	first.SetLoader(&sourceLoader{doc: doc})
	return doc
}

// Close releases the underlying byte source, if Open acquired one
// (spec.md §5: "The Document acquires its byte source on construction
// and releases it on destruction").
func (d *Document) Close() error {
	if d.closer != nil {
		return d.closer()
	}
	return nil
}

func walkXrefChain(src Source, hdr header) ([]revisionData, int64, error) {
	startRaw, err := locateStartXref(src)
	if err != nil {
		return nil, 0, err
	}
	startOffset := startRaw + hdr.Offset

	var list []revisionData
	seen := map[int64]bool{}
	cur := startOffset
	for {
		if seen[cur] {
			break
		}
		seen[cur] = true

		rd, err := parseRevisionAt(src, cur)
		if err != nil {
			return nil, 0, err
		}
		if xrStmVal, ok := rd.Trailer.Get("XRefStm"); ok {
			if xi, ok := xrStmVal.(objects.Integer); ok {
				if hybrid, err := parseRevisionAt(src, int64(xi)+hdr.Offset); err == nil {
					rd.Xref.Merge(hybrid.Xref)
				}
			}
		}
		list = append(list, rd)

		prevVal, ok := rd.Trailer.Get("Prev")
		if !ok {
			break
		}
		pi, ok := prevVal.(objects.Integer)
		if !ok {
			break
		}
		cur = int64(pi) + hdr.Offset
	}

	// list is newest-first (current revision first); reverse to
	// oldest-first, the order revision.Revisions expects.
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return list, startOffset, nil
}

func (d *Document) trailerHasEncrypt() bool {
	cur := d.revisions.Current()
	if cur == nil {
		return false
	}
	_, ok := cur.Trailer.Get("Encrypt")
	return ok
}

// sourceLoader implements revision.Loader by parsing an indirect object
// directly off the Document's backing Source at the entry's recorded
// location, and by delegating Compressed entries to the ObjectStream
// cache (spec.md §4.4: "Compressed objects are resolved by loading
// their container ObjectStream... on first access and caching its
// parsed contents").
type sourceLoader struct {
	doc *Document
	src Source
}

func (l *sourceLoader) LoadObject(entry xref.Entry) (objects.Object, error) {
	switch entry.Kind {
	case xref.InUse:
		v, err := l.doc.parseObjectAt(l.src, entry.Offset)
		if err != nil {
			return nil, err
		}
		return l.doc.decryptIfNeeded(entry.Oid, entry.Gen, v), nil
	case xref.Compressed:
		return l.doc.loadCompressed(entry)
	default:
		return objects.Null{}, nil
	}
}

func (d *Document) decryptIfNeeded(oid uint32, gen uint16, v objects.Object) objects.Object {
	if d.crypt == nil {
		return v
	}
	return decryptValue(d.crypt, oid, gen, v)
}

func decryptValue(h *crypt.Handler, oid uint32, gen uint16, v objects.Object) objects.Object {
	switch val := v.(type) {
	case objects.ByteString:
		out, err := h.Decrypt(oid, gen, []byte(val))
		if err != nil {
			return val
		}
		return objects.ByteString(out)
	case objects.Array:
		out := make(objects.Array, len(val))
		for i, el := range val {
			out[i] = decryptValue(h, oid, gen, el)
		}
		return out
	case objects.Dict:
		out := make(objects.Dict, len(val))
		for k, el := range val {
			out[k] = decryptValue(h, oid, gen, el)
		}
		return out
	case objects.Stream:
		outDict := decryptValue(h, oid, gen, val.Dict).(objects.Dict)
		return objects.Stream{Dict: outDict, Data: val.Data}
	default:
		return v
	}
}

func encryptValue(h *crypt.Handler, oid uint32, gen uint16, v objects.Object) objects.Object {
	switch val := v.(type) {
	case objects.ByteString:
		out, err := h.Encrypt(oid, gen, []byte(val))
		if err != nil {
			return val
		}
		return objects.ByteString(out)
	case objects.Array:
		out := make(objects.Array, len(val))
		for i, el := range val {
			out[i] = encryptValue(h, oid, gen, el)
		}
		return out
	case objects.Dict:
		out := make(objects.Dict, len(val))
		for k, el := range val {
			out[k] = encryptValue(h, oid, gen, el)
		}
		return out
	case objects.Stream:
		outDict := encryptValue(h, oid, gen, val.Dict).(objects.Dict)
		return objects.Stream{Dict: outDict, Data: val.Data}
	default:
		return v
	}
}

var errDocNotFound = pdferr.Usagef("object not found")
