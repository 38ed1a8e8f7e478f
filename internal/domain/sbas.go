package domain

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// SBASEntry is one row of the SBAS reference database.
type SBASEntry struct {
	Slot          uint8         // Publication number, PRN minus 100
	Constellation Constellation // Augmentation service owning the slot
	Vehicle       string        // Broadcasting satellite, e.g. "ASTRA-5B"
	Launch        time.Time     // Zero when unknown
	Coverage      orb.Geometry  // orb.Polygon or orb.MultiPolygon, nil when unpublished
}

// SV returns the satellite identity of the entry.
func (e SBASEntry) SV() SV {
	return SV{Constellation: e.Constellation, PRN: e.Slot}
}

// PRN returns the catalog satellite number (slot + 100).
func (e SBASEntry) PRN() int {
	return int(e.Slot) + sbasPRNOffset
}

// HasCoverage reports whether a footprint is published for the slot.
func (e SBASEntry) HasCoverage() bool {
	return e.Coverage != nil
}

// Contains reports whether pt lies in the coverage region.
// Points on an edge are inside, hole edges included; points strictly
// inside a hole are not.
func (e SBASEntry) Contains(pt orb.Point) bool {
	switch g := e.Coverage.(type) {
	case orb.Polygon:
		return polygonContains(g, pt)
	case orb.MultiPolygon:
		for _, p := range g {
			if polygonContains(p, pt) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// polygonContains is planar.PolygonContains except that the boundary of a
// hole belongs to the polygon.
func polygonContains(p orb.Polygon, pt orb.Point) bool {
	if len(p) == 0 || !planar.RingContains(p[0], pt) {
		return false
	}
	for _, hole := range p[1:] {
		if planar.RingContains(hole, pt) && !onRing(hole, pt) {
			return false
		}
	}
	return true
}

// onRing reports whether pt lies exactly on one of the segments of r.
func onRing(r orb.Ring, pt orb.Point) bool {
	for i := 1; i < len(r); i++ {
		a, b := r[i-1], r[i]
		cross := (b[0]-a[0])*(pt[1]-a[1]) - (b[1]-a[1])*(pt[0]-a[0])
		if cross != 0 {
			continue
		}
		if pt[0] >= min(a[0], b[0]) && pt[0] <= max(a[0], b[0]) &&
			pt[1] >= min(a[1], b[1]) && pt[1] <= max(a[1], b[1]) {
			return true
		}
	}
	return false
}

// checkCoverage returns a description of what is wrong with g, or "".
func checkCoverage(g orb.Geometry) string {
	switch g := g.(type) {
	case nil:
		return ""
	case orb.Polygon:
		return checkPolygon(g)
	case orb.MultiPolygon:
		if len(g) == 0 {
			return "empty multipolygon"
		}
		for i, p := range g {
			if reason := checkPolygon(p); reason != "" {
				return fmt.Sprintf("polygon %d: %s", i, reason)
			}
		}
		return ""
	default:
		return fmt.Sprintf("unsupported coverage geometry %s", g.GeoJSONType())
	}
}

func checkPolygon(p orb.Polygon) string {
	if len(p) == 0 {
		return "polygon without rings"
	}
	for i, ring := range p {
		if len(ring) < 4 {
			return fmt.Sprintf("ring %d has %d vertices, need at least 4", i, len(ring))
		}
		if !ring.Closed() {
			return fmt.Sprintf("ring %d is not closed", i)
		}
		for _, pt := range ring {
			if err := NewCoordinate(pt.Lon(), pt.Lat()).Validate(); err != nil {
				return fmt.Sprintf("ring %d: %v", i, err)
			}
		}
	}
	return ""
}
