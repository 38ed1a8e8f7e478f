package http //nolint:revive // package name conflicts with stdlib but is acceptable in this context

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/jobrunner/gnss/internal/adapters/bundle"
	"github.com/jobrunner/gnss/internal/application"
	"github.com/jobrunner/gnss/internal/domain"
)

// handleHealth returns detailed health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	details := s.health.GetHealthDetails(r.Context())

	status := http.StatusOK
	if !details.Healthy {
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, status, map[string]interface{}{
		"status":           boolToStatus(details.Healthy),
		"ready":            details.Ready,
		"source":           details.Source,
		"entries":          details.Entries,
		"coverage_regions": details.CoverageRegions,
		"components":       details.Components,
	})
}

// handleLiveness returns liveness status.
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	if s.health.IsHealthy(r.Context()) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	} else {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
	}
}

// handleReadiness returns readiness status.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if s.health.IsReady(r.Context()) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	} else {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
	}
}

// handleListConstellations returns every constellation with its spellings.
func (s *Server) handleListConstellations(w http.ResponseWriter, _ *http.Request) {
	all := domain.All()
	out := make([]map[string]interface{}, len(all))
	for i, c := range all {
		out[i] = formatConstellation(c)
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"constellations": out,
		"count":          len(out),
	})
}

// handleGetConstellation parses any spelling of a constellation.
func (s *Server) handleGetConstellation(w http.ResponseWriter, r *http.Request) {
	c, ok := s.constellationFromPath(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, formatConstellation(c))
}

// handleRenderConstellation encodes a constellation in the requested spelling.
func (s *Server) handleRenderConstellation(w http.ResponseWriter, r *http.Request) {
	c, ok := s.constellationFromPath(w, r)
	if !ok {
		return
	}

	name := r.URL.Query().Get("spelling")
	if name == "" {
		name = domain.SpellingLong.String()
	}
	sp, err := domain.ParseSpelling(name)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "spelling must be one of long, short, letter")
		return
	}

	text, err := s.catalog.RenderConstellation(r.Context(), c, sp)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"constellation": shortName(c),
		"spelling":      sp.String(),
		"text":          text,
	})
}

// constellationFromPath parses the {text} variable and writes a 404 with
// close spellings when it is not recognized.
func (s *Server) constellationFromPath(w http.ResponseWriter, r *http.Request) (domain.Constellation, bool) {
	text, err := pathVar(r, "text")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid path encoding")
		return 0, false
	}

	c, err := s.catalog.ParseConstellation(r.Context(), text)
	if err != nil {
		s.writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"error":       http.StatusText(http.StatusNotFound),
			"message":     fmt.Sprintf("unknown constellation %q", text),
			"suggestions": nonNil(s.catalog.Suggest(text)),
		})
		return 0, false
	}
	return c, true
}

// handleGetSV decodes an "XYY" identifier. SBAS slots are resolved
// against the database.
func (s *Server) handleGetSV(w http.ResponseWriter, r *http.Request) {
	id, err := pathVar(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid path encoding")
		return
	}

	sv, err := s.catalog.ResolveSV(r.Context(), id)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	var (
		entry  *domain.SBASEntry
		launch time.Time
	)
	if sv.Constellation.IsSBAS() {
		e, err := s.catalog.LookupSBAS(r.Context(), sv.PRN)
		switch {
		case err == nil:
			entry = &e
		case !errors.Is(err, domain.ErrEntryNotFound):
			s.handleServiceError(w, err)
			return
		}
		if launch, _, err = s.catalog.LaunchDatetime(r.Context(), sv); err != nil {
			s.handleServiceError(w, err)
			return
		}
	}

	s.writeJSON(w, http.StatusOK, formatSV(sv, entry, launch))
}

// handleListSBAS returns the database entries, optionally filtered by
// ?constellation=.
func (s *Server) handleListSBAS(w http.ResponseWriter, r *http.Request) {
	entries, ok := s.filteredEntries(w, r)
	if !ok {
		return
	}

	out := make([]map[string]interface{}, len(entries))
	for i, e := range entries {
		out[i] = formatEntry(e)
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": out,
		"count":   len(out),
	})
}

// handleGetSBAS returns one entry. Coverage is embedded as WKT, or the
// whole entry is returned as a GeoJSON feature with ?format=geojson.
func (s *Server) handleGetSBAS(w http.ResponseWriter, r *http.Request) {
	slot, err := strconv.ParseUint(mux.Vars(r)["slot"], 10, 8)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "slot must be between 0 and 255")
		return
	}

	entry, err := s.catalog.LookupSBAS(r.Context(), uint8(slot))
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		s.writeJSON(w, http.StatusOK, formatEntryWithCoverage(entry))
	case "geojson":
		s.writeGeoJSON(w, bundle.CoverageFeature(entry))
	default:
		s.writeError(w, http.StatusBadRequest, "format must be json or geojson")
	}
}

// handleCoverage returns all coverage regions as a GeoJSON FeatureCollection.
func (s *Server) handleCoverage(w http.ResponseWriter, r *http.Request) {
	entries, ok := s.filteredEntries(w, r)
	if !ok {
		return
	}

	s.writeGeoJSON(w, bundle.CoverageCollection(entries))
}

// filteredEntries lists the database, applying ?constellation= when set.
func (s *Server) filteredEntries(w http.ResponseWriter, r *http.Request) ([]domain.SBASEntry, bool) {
	entries, err := s.catalog.ListSBAS(r.Context())
	if err != nil {
		s.handleServiceError(w, err)
		return nil, false
	}

	text := r.URL.Query().Get("constellation")
	if text == "" {
		return entries, true
	}
	c, err := s.catalog.ParseConstellation(r.Context(), text)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown constellation %q", text))
		return nil, false
	}

	filtered := entries[:0]
	for _, e := range entries {
		if e.Constellation == c {
			filtered = append(filtered, e)
		}
	}
	return filtered, true
}

// handleSelect picks the augmentation service covering ?lon=&lat=.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	coord, err := parseCoordinate(r.URL.Query())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	selection, err := s.selector.Select(r.Context(), coord)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, formatSelection(selection))
}

// handleValidate validates every candidate database document.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	result, err := s.validation.TriggerValidation(r.Context())
	if err != nil {
		if errors.Is(err, application.ErrRateLimited) {
			seconds := int(math.Ceil(s.validation.Cooldown().Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			s.writeError(w, http.StatusTooManyRequests,
				fmt.Sprintf("Rate limit exceeded. Try again in %d seconds.", seconds))
			return
		}
		s.logger.Error("validation failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Validation failed")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// handleValidationReports returns the latest report per document.
func (s *Server) handleValidationReports(w http.ResponseWriter, _ *http.Request) {
	reports := s.validation.Reports()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
		"count":   len(reports),
	})
}

// handleOpenAPI returns the OpenAPI specification.
func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	spec, err := getOpenAPIJSON()
	if err != nil {
		s.logger.Error("failed to get OpenAPI spec", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to load OpenAPI specification")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(spec)
}

// handleServiceError maps application errors to HTTP status codes.
func (s *Server) handleServiceError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		s.writeError(w, http.StatusBadRequest, validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrNoSingleLetterCode):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnavailable):
		s.writeError(w, http.StatusServiceUnavailable, "SBAS database not available")
	default:
		s.logger.Error("request failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Request failed")
	}
}

// parseCoordinate reads the required lon and lat parameters.
func parseCoordinate(q url.Values) (domain.Coordinate, error) {
	lon, err := parseFloatParam(q, "lon")
	if err != nil {
		return domain.Coordinate{}, err
	}
	lat, err := parseFloatParam(q, "lat")
	if err != nil {
		return domain.Coordinate{}, err
	}
	return domain.NewCoordinate(lon, lat), nil
}

func parseFloatParam(q url.Values, name string) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%s parameter is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return v, nil
}

// pathVar returns an unescaped route variable; the router matches on the
// encoded path.
func pathVar(r *http.Request, name string) (string, error) {
	return url.PathUnescape(mux.Vars(r)[name])
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeGeoJSON writes a GeoJSON document.
func (s *Server) writeGeoJSON(w http.ResponseWriter, v json.Marshaler) {
	data, err := v.MarshalJSON()
	if err != nil {
		s.logger.Error("failed to encode geojson", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to encode coverage")
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// writeError writes an error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func boolToStatus(b bool) string {
	if b {
		return "ok"
	}
	return "unhealthy"
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
