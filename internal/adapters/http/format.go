package http //nolint:revive // package name conflicts with stdlib but is acceptable in this context

import (
	"time"

	"github.com/paulmach/orb/encoding/wkt"

	"github.com/jobrunner/gnss/internal/domain"
)

// formatConstellation formats a constellation with all its spellings.
// Fields that do not apply are null.
func formatConstellation(c domain.Constellation) map[string]interface{} {
	out := map[string]interface{}{
		"name":      render(c, domain.SpellingLong),
		"short":     render(c, domain.SpellingShort),
		"letter":    nil,
		"country":   nil,
		"timescale": nil,
		"sbas":      c.IsSBAS(),
	}
	if letter, err := domain.Render(c, domain.SpellingLetter); err == nil {
		out["letter"] = letter
	}
	if country, ok := c.Country(); ok {
		out["country"] = country
	}
	if ts, ok := c.Timescale(); ok {
		out["timescale"] = ts.String()
	}
	return out
}

// formatSV formats a satellite identity. entry is the database row of an
// SBAS vehicle, nil otherwise; launch is zero when unknown.
func formatSV(sv domain.SV, entry *domain.SBASEntry, launch time.Time) map[string]interface{} {
	out := map[string]interface{}{
		"sv":            sv.String(),
		"constellation": shortName(sv.Constellation),
		"prn":           sv.PRN,
		"sbas":          sv.Constellation.IsSBAS(),
		"timescale":     nil,
	}
	if ts, ok := sv.Timescale(); ok {
		out["timescale"] = ts.String()
	}
	if n, ok := sv.TrueSatelliteNumber(); ok {
		out["true_satellite_number"] = n
	}
	if sv.Constellation == domain.BeiDou {
		out["beidou_geo"] = sv.IsBeiDouGeo()
	}
	if entry != nil {
		out["vehicle"] = entry.Vehicle
		out["launch"] = formatLaunch(launch)
		out["has_coverage"] = entry.HasCoverage()
	}
	return out
}

// formatEntry formats an SBAS database row without its geometry.
func formatEntry(e domain.SBASEntry) map[string]interface{} {
	return map[string]interface{}{
		"slot":          e.Slot,
		"prn":           e.PRN(),
		"sv":            e.SV().String(),
		"constellation": shortName(e.Constellation),
		"vehicle":       e.Vehicle,
		"launch":        formatLaunch(e.Launch),
		"has_coverage":  e.HasCoverage(),
	}
}

// formatEntryWithCoverage adds the coverage region as WKT.
func formatEntryWithCoverage(e domain.SBASEntry) map[string]interface{} {
	out := formatEntry(e)
	out["coverage"] = nil
	if e.HasCoverage() {
		out["coverage"] = wkt.MarshalString(e.Coverage)
	}
	return out
}

// formatSelection formats a selector result. "constellation" is null when
// no coverage region contains the coordinate.
func formatSelection(sel *domain.Selection) map[string]interface{} {
	matches := make([]map[string]interface{}, len(sel.Matches))
	for i, m := range sel.Matches {
		matches[i] = formatEntry(m)
	}

	out := map[string]interface{}{
		"coordinate": map[string]float64{
			"lon": sel.Coordinate.Lon,
			"lat": sel.Coordinate.Lat,
		},
		"constellation":      nil,
		"entry":              nil,
		"matches":            matches,
		"overlapping":        sel.Overlapping(),
		"processing_time_us": sel.ProcessingTime.Microseconds(),
	}
	if c, ok := sel.Constellation(); ok {
		out["constellation"] = shortName(c)
		out["entry"] = formatEntry(*sel.Entry)
	}
	return out
}

func formatLaunch(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.DateOnly)
}

func render(c domain.Constellation, sp domain.Spelling) string {
	text, _ := domain.Render(c, sp)
	return text
}

func shortName(c domain.Constellation) string {
	return render(c, domain.SpellingShort)
}
