// Package xref implements the cross-reference section type (spec.md
// §4.3): free/in-use/compressed entries keyed by object number, plus the
// binary encode/decode used by cross-reference streams (spec.md §7).
//
// Grounded on reader/file/xreftable.go's xrefEntry/xRefTable (map-based,
// in-use/free/compressed variants distinguished by zero-value fields)
// and extractXRefTableEntriesFromXRefStream/bufToInt64 for the stream
// wire format.
package xref

import "golang.org/x/exp/slices"

// EntryKind classifies a cross-reference entry.
type EntryKind uint8

const (
	// Free marks an object number as unused; NextFree chains freed slots
	// per the classical free-list convention (type 0 in an xref stream).
	Free EntryKind = iota
	// InUse is a regular object at a file offset (type 1).
	InUse
	// Compressed is an object stored inside an ObjectStream (type 2);
	// Gen is always reported as 0 per spec.md (PDF32000 Table 18).
	Compressed
)

// Entry is one cross-reference table row.
type Entry struct {
	Kind EntryKind

	Oid uint32
	Gen uint16

	// Offset is the byte offset of "oid gen obj" in the file (InUse),
	// or the next free object number (Free).
	Offset int64

	// ObjStmOid/Index locate a Compressed entry's container.
	ObjStmOid uint32
	Index     int
}

// Section is an ordered-by-oid cross-reference table for one revision.
type Section struct {
	entries map[uint32]Entry
}

// New returns an empty Section.
func New() *Section {
	return &Section{entries: make(map[uint32]Entry)}
}

// AddInUse records oid as a regular object at file offset pos.
func (s *Section) AddInUse(oid uint32, gen uint16, pos int64) {
	s.entries[oid] = Entry{Kind: InUse, Oid: oid, Gen: gen, Offset: pos}
}

// AddFree records oid as free, chaining to nextFree per the classical
// xref free-list convention.
func (s *Section) AddFree(oid uint32, gen uint16, nextFree uint32) {
	s.entries[oid] = Entry{Kind: Free, Oid: oid, Gen: gen, Offset: int64(nextFree)}
}

// AddCompressed records oid as living inside objStmOid at the given
// index within that object stream's body.
func (s *Section) AddCompressed(oid uint32, objStmOid uint32, index int) {
	s.entries[oid] = Entry{Kind: Compressed, Oid: oid, ObjStmOid: objStmOid, Index: index}
}

// Lookup returns the entry for oid, if any. gen is accepted but not
// currently checked against stored entries: spec.md §4.3 lists lookup as
// "lookup(oid[, gen])", and real-world producers routinely emit stale
// generation numbers in references that conforming readers still honor.
func (s *Section) Lookup(oid uint32, gen uint16) (Entry, bool) {
	e, ok := s.entries[oid]
	return e, ok
}

// Has reports whether oid has any entry, regardless of kind.
func (s *Section) Has(oid uint32) bool {
	_, ok := s.entries[oid]
	return ok
}

// Delete removes oid's entry entirely (used when an object is deleted
// from the in-memory graph rather than replaced with a tombstone).
func (s *Section) Delete(oid uint32) {
	delete(s.entries, oid)
}

// Len returns the number of entries in the section.
func (s *Section) Len() int { return len(s.entries) }

// SortedOids returns every recorded object number in ascending order.
func (s *Section) SortedOids() []uint32 {
	oids := make([]uint32, 0, len(s.entries))
	for oid := range s.entries {
		oids = append(oids, oid)
	}
	slices.Sort(oids)
	return oids
}

// Subsection is a maximal run of contiguous object numbers, the unit the
// classical xref-section writer emits (spec.md §4.3, §5.2).
type Subsection struct {
	First   uint32
	Entries []Entry
}

// EachSubsection calls fn once per maximal contiguous run of object
// numbers present in the section, in ascending oid order. Grounded on
// the writer's need (spec.md §5.2 step 3) to emit xref entries grouped
// into "N G" subsection headers.
func (s *Section) EachSubsection(fn func(Subsection)) {
	oids := s.SortedOids()
	i := 0
	for i < len(oids) {
		j := i + 1
		for j < len(oids) && oids[j] == oids[j-1]+1 {
			j++
		}
		sub := Subsection{First: oids[i]}
		for _, oid := range oids[i:j] {
			sub.Entries = append(sub.Entries, s.entries[oid])
		}
		fn(sub)
		i = j
	}
}

// Merge copies every entry from other into s that s does not already
// have, implementing the "newer revision wins, older fills gaps"
// behaviour used when walking /Prev chains (spec.md §4.4, §4.5).
func (s *Section) Merge(other *Section) {
	for oid, e := range other.entries {
		if _, has := s.entries[oid]; !has {
			s.entries[oid] = e
		}
	}
}
