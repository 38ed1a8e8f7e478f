package bundle

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func TestCoverageCollection(t *testing.T) {
	db := mustDefault(t)

	fc := CoverageCollection(db.Entries())
	if len(fc.Features) != db.CoverageCount() {
		t.Fatalf("features = %d, want %d", len(fc.Features), db.CoverageCount())
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error: %v", err)
	}
	decoded, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		t.Fatalf("UnmarshalFeatureCollection() error: %v", err)
	}

	first := decoded.Features[0]
	if got := first.Properties.MustString("constellation"); got != "SPAN" {
		t.Errorf("first constellation = %q, want SPAN", got)
	}
	if got := first.Properties.MustInt("prn"); got != 122 {
		t.Errorf("first prn = %d, want 122", got)
	}
	if _, ok := first.Geometry.(orb.MultiPolygon); !ok {
		t.Errorf("geometry = %T, want orb.MultiPolygon", first.Geometry)
	}
}

func TestCoverageFeatureWithoutCoverage(t *testing.T) {
	db := mustDefault(t)

	e, ok := db.Lookup(20)
	if !ok {
		t.Fatal("slot 20 missing")
	}
	f := CoverageFeature(e)
	if f.Geometry != nil {
		t.Errorf("geometry = %v, want nil", f.Geometry)
	}
	if f.ID != uint8(20) {
		t.Errorf("ID = %v, want 20", f.ID)
	}
}
