package domain

import (
	"fmt"
	"iter"
	"slices"
)

// Database is the immutable SBAS reference table. It keeps entries in
// declaration order, which is also the selector's tie-break order.
type Database struct {
	source  string
	entries []SBASEntry
	bySlot  map[uint8]int
}

// NewDatabase validates entries and builds a database. Any structural
// problem fails the whole load with a *DatabaseError.
func NewDatabase(source string, entries []SBASEntry) (*Database, error) {
	db := &Database{
		source:  source,
		entries: make([]SBASEntry, len(entries)),
		bySlot:  make(map[uint8]int, len(entries)),
	}
	copy(db.entries, entries)

	for i, e := range db.entries {
		if e.Slot >= sbasPRNOffset {
			return nil, &DatabaseError{Source: source, Index: i,
				Reason: fmt.Sprintf("slot %d out of range 0-99", e.Slot)}
		}
		if !e.Constellation.IsSBAS() {
			return nil, &DatabaseError{Source: source, Index: i,
				Reason: fmt.Sprintf("slot %d: %s is not an augmentation service", e.Slot, e.Constellation)}
		}
		if prev, dup := db.bySlot[e.Slot]; dup {
			return nil, &DatabaseError{Source: source, Index: i,
				Reason: fmt.Sprintf("slot %d already declared by entry %d", e.Slot, prev)}
		}
		if reason := checkCoverage(e.Coverage); reason != "" {
			return nil, &DatabaseError{Source: source, Index: i,
				Reason: fmt.Sprintf("slot %d coverage: %s", e.Slot, reason)}
		}
		db.bySlot[e.Slot] = i
	}

	return db, nil
}

// Source names where the database was loaded from.
func (db *Database) Source() string {
	return db.source
}

// Len returns the number of entries.
func (db *Database) Len() int {
	return len(db.entries)
}

// CoverageCount returns the number of entries with a coverage region.
func (db *Database) CoverageCount() int {
	n := 0
	for range db.AllWithCoverage() {
		n++
	}
	return n
}

// Lookup returns the entry for a publication number.
func (db *Database) Lookup(slot uint8) (SBASEntry, bool) {
	i, ok := db.bySlot[slot]
	if !ok {
		return SBASEntry{}, false
	}
	return db.entries[i], true
}

// Entries returns a copy of all entries in declaration order.
func (db *Database) Entries() []SBASEntry {
	return slices.Clone(db.entries)
}

// AllWithCoverage yields entries that have a coverage region, in
// declaration order. Each call starts a new traversal.
func (db *Database) AllWithCoverage() iter.Seq[SBASEntry] {
	return func(yield func(SBASEntry) bool) {
		for _, e := range db.entries {
			if !e.HasCoverage() {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Resolve maps a generic SBAS identity ("S23") to the service owning the
// slot. Other SVs and unknown slots are returned unchanged.
func (db *Database) Resolve(sv SV) SV {
	if !sv.Constellation.IsSBAS() {
		return sv
	}
	if resolved, ok := NewSBAS(db, sv.PRN); ok {
		return resolved
	}
	return sv
}

// SelectEntry returns the first entry, in declaration order, whose coverage
// contains the point. Edges count as inside.
func (db *Database) SelectEntry(lon, lat float64) (SBASEntry, bool) {
	pt := NewCoordinate(lon, lat).Point()
	for e := range db.AllWithCoverage() {
		if e.Contains(pt) {
			return e, true
		}
	}
	return SBASEntry{}, false
}

// Matches returns every entry whose coverage contains the point, in
// declaration order. Overlapping services produce more than one match.
func (db *Database) Matches(lon, lat float64) []SBASEntry {
	pt := NewCoordinate(lon, lat).Point()
	var out []SBASEntry
	for e := range db.AllWithCoverage() {
		if e.Contains(pt) {
			out = append(out, e)
		}
	}
	return out
}

// Select returns the augmentation service covering the point, if any.
// There is no nearest-region fallback.
func (db *Database) Select(lon, lat float64) (Constellation, bool) {
	e, ok := db.SelectEntry(lon, lat)
	if !ok {
		return 0, false
	}
	return e.Constellation, true
}
