package revision

import (
	"github.com/gettalong/hexapdf-sub005/objects"
	"github.com/gettalong/hexapdf-sub005/pdferr"
	"github.com/gettalong/hexapdf-sub005/xref"
)

// Revisions is the ordered oldest→current chain spec.md §4.5 describes.
// Index len(Revisions)-1 is always the current revision.
type Revisions struct {
	list []*Revision
}

// NewRevisions wraps an already-ordered (oldest-first) slice, as built by
// the document parser's xref-chain walk.
func NewRevisions(ordered []*Revision) *Revisions {
	return &Revisions{list: append([]*Revision(nil), ordered...)}
}

// Current returns the newest revision.
func (rs *Revisions) Current() *Revision {
	if len(rs.list) == 0 {
		return nil
	}
	return rs.list[len(rs.list)-1]
}

// Len reports the number of revisions in the chain.
func (rs *Revisions) Len() int { return len(rs.list) }

// At returns the revision at position i (0 = oldest).
func (rs *Revisions) At(i int) *Revision { return rs.list[i] }

// Each iterates oldest→current (spec.md §4.5 "each").
func (rs *Revisions) Each(fn func(*Revision)) {
	for _, r := range rs.list {
		fn(r)
	}
}

// EachNewestFirst iterates current→oldest, the order Document.object
// needs (spec.md §4.6: "walks revisions newest→oldest").
func (rs *Revisions) EachNewestFirst(fn func(*Revision) bool) {
	for i := len(rs.list) - 1; i >= 0; i-- {
		if !fn(rs.list[i]) {
			return
		}
	}
}

// AddRevision appends a fresh empty Revision whose trailer is a shallow
// copy of the current one with /Prev and /XRefStm removed (spec.md §4.5),
// and returns it. It becomes the new current revision.
func (rs *Revisions) AddRevision(loader Loader) *Revision {
	r := New(loader)
	if cur := rs.Current(); cur != nil {
		for k, v := range cur.Trailer {
			if k == "Prev" || k == "XRefStm" {
				continue
			}
			r.Trailer[k] = v.Clone()
		}
	}
	rs.list = append(rs.list, r)
	return r
}

// Delete removes the revision at index i. Removing the last remaining
// revision is forbidden (spec.md §4.5).
func (rs *Revisions) Delete(i int) error {
	if len(rs.list) <= 1 {
		return pdferr.Usagef("cannot delete the last remaining revision")
	}
	if i < 0 || i >= len(rs.list) {
		return pdferr.Usagef("revision index %d out of range", i)
	}
	rs.list = append(rs.list[:i], rs.list[i+1:]...)
	return nil
}

// Merge collapses revisions [from, to] (inclusive, oldest-first indices)
// into the oldest member of the range: objects from newer revisions in
// the range overwrite those from older ones by oid (spec.md §4.5). After
// Merge, that single revision replaces the whole range.
func (rs *Revisions) Merge(from, to int) error {
	if from < 0 || to >= len(rs.list) || from > to {
		return pdferr.Usagef("invalid merge range [%d, %d]", from, to)
	}
	base := rs.list[from]
	for i := from + 1; i <= to; i++ {
		r := rs.list[i]
		for _, oid := range r.Xref.SortedOids() {
			e, _ := r.Xref.Lookup(oid, 0)
			switch e.Kind {
			case xref.Free:
				base.Xref.AddFree(e.Oid, e.Gen, uint32(e.Offset))
			case xref.InUse:
				base.Xref.AddInUse(e.Oid, e.Gen, e.Offset)
			case xref.Compressed:
				base.Xref.AddCompressed(e.Oid, e.ObjStmOid, e.Index)
			}
		}
		r.Each(func(oid uint32, gen uint16, value objects.Object) {
			base.Put(oid, gen, value)
		})
	}
	merged := append([]*Revision{}, rs.list[:from]...)
	merged = append(merged, base)
	merged = append(merged, rs.list[to+1:]...)
	rs.list = merged
	return nil
}

// NextFreeOid returns one past the highest object number recorded across
// every revision in the chain, the oid Document.add assigns to a fresh
// object (spec.md §4.6: "assigns a free oid (max of next_free_oid across
// revisions)").
func (rs *Revisions) NextFreeOid() uint32 {
	var max uint32
	for _, r := range rs.list {
		if m := r.MaxOid(); m > max {
			max = m
		}
	}
	return max + 1
}
