package domain

import "time"

// Selection is the outcome of a coverage selection for one coordinate.
type Selection struct {
	Coordinate     Coordinate
	Entry          *SBASEntry    // First matching entry, nil when no service covers the point
	Matches        []SBASEntry   // All matching entries in declaration order
	ProcessingTime time.Duration // Time spent scanning coverage regions
}

// Constellation returns the selected service.
func (s *Selection) Constellation() (Constellation, bool) {
	if s.Entry == nil {
		return 0, false
	}
	return s.Entry.Constellation, true
}

// Overlapping reports whether more than one region contains the point.
func (s *Selection) Overlapping() bool {
	return len(s.Matches) > 1
}
