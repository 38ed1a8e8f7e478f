package domain

import (
	"testing"
	"time"

	"github.com/paulmach/orb"
)

// box returns a closed rectangular ring.
func box(minLon, minLat, maxLon, maxLat float64) orb.Ring {
	return orb.Ring{
		{minLon, minLat},
		{maxLon, minLat},
		{maxLon, maxLat},
		{minLon, maxLat},
		{minLon, minLat},
	}
}

// fixtureEntries is a small database: two overlapping squares, a square
// with a hole, a multipolygon and an entry without coverage.
func fixtureEntries() []SBASEntry {
	return []SBASEntry{
		{Slot: 23, Constellation: EGNOS, Vehicle: "ASTRA-5B",
			Launch:   time.Date(2021, 11, 1, 0, 0, 0, 0, time.UTC),
			Coverage: orb.Polygon{box(0, 0, 10, 10)}},
		{Slot: 31, Constellation: WAAS, Vehicle: "EUTELSAT-117WB",
			Coverage: orb.Polygon{box(5, 5, 15, 15)}},
		{Slot: 29, Constellation: MSAS, Vehicle: "QZS-3",
			Coverage: orb.Polygon{box(20, 0, 30, 10), box(24, 4, 26, 6)}},
		{Slot: 22, Constellation: SPAN, Vehicle: "INMARSAT-4F1",
			Coverage: orb.MultiPolygon{
				{box(40, 0, 45, 5)},
				{box(50, 0, 55, 5)},
			}},
		{Slot: 20, Constellation: EGNOS, Vehicle: "INMARSAT-3F2"},
	}
}

func fixtureDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase("fixture", fixtureEntries())
	if err != nil {
		t.Fatalf("NewDatabase() error: %v", err)
	}
	return db
}
