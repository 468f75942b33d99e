// Package revision implements one generation of a PDF document (spec.md
// §3 "Revision", §4.5): a trailer, a cross-reference section, and a
// lazily-populated oid→object cache. Multiple revisions, oldest to
// current, form the incremental-update chain a document.Document walks.
//
// Grounded on reader/file/xreftable.go's xRefTable (trailer + entries +
// a cache map) and model/model.go's Document revision bookkeeping,
// split out into its own package per spec.md §2's component table so the
// xref chain walk (document package) and the in-memory object cache
// (this package) are independently testable.
package revision

import (
	"github.com/gettalong/hexapdf-sub005/objects"
	"github.com/gettalong/hexapdf-sub005/xref"
	"golang.org/x/exp/slices"
)

// Loader resolves an indirect object backed by an xref.Entry into its
// parsed value, the first time a Revision needs it (spec.md §3: "a
// revision is ... populated by loading from an xref section (lazily)").
// Compressed entries are resolved by the Loader loading (and caching)
// the container ObjectStream itself; that caching lives above this
// package, in document, since it spans every Revision's compressed
// entries pointing at the same container.
type Loader interface {
	LoadObject(entry xref.Entry) (objects.Object, error)
}

// entry is one cached slot: the object plus the generation number it
// was recorded under (needed since Free tombstones still carry a gen).
type entry struct {
	gen   uint16
	value objects.Object
	// loaded is false until the first successful/failed load attempt;
	// loadErr is sticky so a broken object does not get silently
	// re-parsed (and re-failed) on every access.
	loaded  bool
	loadErr error
}

// Revision holds one generation's trailer, xref table, and lazily
// materialized objects.
type Revision struct {
	Trailer objects.Dict
	Xref    *xref.Section

	loader  Loader
	cache   map[uint32]*entry
	added   map[uint32]bool // oids this revision itself introduced, not loaded from Xref
}

// New returns an empty Revision with no trailer entries and an empty
// xref section, the shape Document.add_revision (spec.md §4.6) starts
// from.
func New(loader Loader) *Revision {
	return &Revision{
		Trailer: objects.Dict{},
		Xref:    xref.New(),
		loader:  loader,
		cache:   map[uint32]*entry{},
		added:   map[uint32]bool{},
	}
}

// FromXref returns a Revision over an already-parsed trailer and xref
// section, as produced when the document parser locates a revision in
// an existing file (spec.md §4.4).
func FromXref(trailer objects.Dict, sec *xref.Section, loader Loader) *Revision {
	r := New(loader)
	r.Trailer = trailer
	r.Xref = sec
	return r
}

// SetLoader attaches (or replaces) the Loader used to resolve
// not-yet-cached entries; used when a Revision is built before its
// owning Document is fully constructed (document.Open builds the xref
// chain, then wires each Revision's loader back to itself).
func (r *Revision) SetLoader(l Loader) {
	r.loader = l
}

// Has reports whether oid is recorded in this revision's xref table
// (regardless of whether it has been loaded into the cache yet) or was
// placed there by Put.
func (r *Revision) Has(oid uint32) bool {
	if r.Xref.Has(oid) {
		return true
	}
	_, ok := r.cache[oid]
	return ok
}

// Get resolves oid within this revision only, loading it from the
// underlying source on first access (spec.md §4.6's object() walks
// multiple revisions; this method only ever looks at one). A Free entry
// resolves to objects.Null{} per spec.md §3 ("Free objects... logically
// represent Null when dereferenced").
func (r *Revision) Get(oid uint32) (objects.Object, uint16, error) {
	if e, ok := r.cache[oid]; ok {
		if !e.loaded {
			r.load(oid, e)
		}
		return e.value, e.gen, e.loadErr
	}

	xe, ok := r.Xref.Lookup(oid, 0)
	if !ok {
		return nil, 0, nil
	}
	e := &entry{gen: xe.Gen}
	r.cache[oid] = e
	r.load(oid, e)
	return e.value, e.gen, e.loadErr
}

func (r *Revision) load(oid uint32, e *entry) {
	e.loaded = true
	xe, ok := r.Xref.Lookup(oid, 0)
	if !ok {
		e.value = objects.Null{}
		return
	}
	if xe.Kind == xref.Free {
		e.value = objects.Null{}
		return
	}
	if r.loader == nil {
		e.loadErr = errNoLoader(oid)
		return
	}
	v, err := r.loader.LoadObject(xe)
	if err != nil {
		e.loadErr = err
		return
	}
	e.value = v
}

// Put stores value directly under oid/gen, bypassing the loader; used by
// Document.Add/Set (spec.md §4.6) to introduce or overwrite an object in
// the current revision without going through the xref/loader path.
func (r *Revision) Put(oid uint32, gen uint16, value objects.Object) {
	r.cache[oid] = &entry{gen: gen, value: value, loaded: true}
	r.added[oid] = true
}

// Delete removes oid from both the xref table and the object cache, a
// hard delete per spec.md §4.6 ("a hard delete drops the entry from the
// xref and from the in-memory map").
func (r *Revision) Delete(oid uint32) {
	r.Xref.Delete(oid)
	delete(r.cache, oid)
	delete(r.added, oid)
}

// MarkFree replaces oid's entry with a Null tombstone at the same
// (oid, gen), per spec.md §4.6 ("marking as free replaces the entry
// with a Null object carrying the same (oid, gen)").
func (r *Revision) MarkFree(oid uint32, gen uint16) {
	r.Xref.AddFree(oid, gen, 0)
	r.cache[oid] = &entry{gen: gen, value: objects.Null{}, loaded: true}
	r.added[oid] = true
}

// Each calls fn once for every oid this revision records — either in its
// xref table, or introduced directly via Put/MarkFree without ever
// gaining an xref entry (a freshly Added object) — loading each lazily
// as it goes (spec.md §4.6's each(current=false) path walks every
// stored revision this way).
func (r *Revision) Each(fn func(oid uint32, gen uint16, value objects.Object)) {
	oids := r.Xref.SortedOids()
	seen := make(map[uint32]bool, len(oids))
	for _, oid := range oids {
		seen[oid] = true
	}
	for oid := range r.added {
		if !seen[oid] {
			oids = append(oids, oid)
		}
	}
	slices.Sort(oids)

	for _, oid := range oids {
		v, gen, err := r.Get(oid)
		if err != nil {
			continue
		}
		fn(oid, gen, v)
	}
}

// AddedOids returns, in ascending order, every oid this revision itself
// introduced via Put/MarkFree rather than inherited from a parsed xref
// table (spec.md §4.5: "an incremental update's body contains only the
// objects that revision added or changed").
func (r *Revision) AddedOids() []uint32 {
	out := make([]uint32, 0, len(r.added))
	for oid := range r.added {
		out = append(out, oid)
	}
	slices.Sort(out)
	return out
}

// MaxOid returns the highest object number recorded in this revision,
// across both its xref table and any oid introduced directly via
// Put/MarkFree, or 0 if it is empty. Used by Revisions.NextFreeOid.
func (r *Revision) MaxOid() uint32 {
	var max uint32
	for _, oid := range r.Xref.SortedOids() {
		if oid > max {
			max = oid
		}
	}
	for oid := range r.added {
		if oid > max {
			max = oid
		}
	}
	return max
}

type noLoaderError struct{ oid uint32 }

func (e noLoaderError) Error() string {
	return "revision: no loader configured to resolve object"
}

func errNoLoader(oid uint32) error { return noLoaderError{oid: oid} }
