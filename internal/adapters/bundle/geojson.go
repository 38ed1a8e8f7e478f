package bundle

import (
	"github.com/paulmach/orb/geojson"

	"github.com/jobrunner/gnss/internal/domain"
)

// CoverageFeature converts an entry to a GeoJSON feature identified by its
// slot. Entries without coverage have a null geometry.
func CoverageFeature(e domain.SBASEntry) *geojson.Feature {
	f := geojson.NewFeature(e.Coverage)
	f.ID = e.Slot
	f.Properties = geojson.Properties{
		"slot":          e.Slot,
		"prn":           e.PRN(),
		"constellation": recordName(e.Constellation),
		"vehicle":       e.Vehicle,
	}
	if !e.Launch.IsZero() {
		f.Properties["launch"] = e.Launch.Format("2006-01-02")
	}
	return f
}

// CoverageCollection returns the coverage regions of entries, skipping
// entries without one.
func CoverageCollection(entries []domain.SBASEntry) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, e := range entries {
		if e.HasCoverage() {
			fc.Append(CoverageFeature(e))
		}
	}
	return fc
}
