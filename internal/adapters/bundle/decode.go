// Package bundle decodes SBAS database documents and provides the database
// embedded in the binary.
package bundle

import (
	"fmt"
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/paulmach/orb/geojson"

	"github.com/jobrunner/gnss/internal/domain"
)

// Record is the document shape of one SBAS entry.
type Record struct {
	PRN           int               `json:"prn"`
	Constellation string            `json:"constellation"`
	Vehicle       string            `json:"vehicle,omitempty"`
	Launch        string            `json:"launch,omitempty"`
	Coverage      *geojson.Geometry `json:"coverage,omitempty"`
}

// strictJSON rejects unknown fields so typos in hand-edited documents fail
// the load instead of silently dropping data.
var strictJSON = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	DisallowUnknownFields:  true,
}.Froze()

var launchLayouts = []string{"2006-01-02", time.RFC3339}

// Decode parses a JSON document into a validated database. source names the
// document in error messages.
func Decode(source string, data []byte) (*domain.Database, error) {
	var records []Record
	if err := strictJSON.Unmarshal(data, &records); err != nil {
		return nil, &domain.DatabaseError{Source: source, Index: -1, Reason: err.Error()}
	}
	return FromRecords(source, records)
}

// DecodeReader reads and parses a JSON document.
func DecodeReader(source string, r io.Reader) (*domain.Database, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &domain.StorageError{Operation: "read", Path: source, Err: err}
	}
	return Decode(source, data)
}

// FromRecords converts document records into a validated database.
func FromRecords(source string, records []Record) (*domain.Database, error) {
	entries := make([]domain.SBASEntry, 0, len(records))
	for i, rec := range records {
		entry, reason := rec.entry()
		if reason != "" {
			return nil, &domain.DatabaseError{Source: source, Index: i, Reason: reason}
		}
		entries = append(entries, entry)
	}
	return domain.NewDatabase(source, entries)
}

func (r Record) entry() (domain.SBASEntry, string) {
	if r.PRN < 100 || r.PRN > 199 {
		return domain.SBASEntry{}, fmt.Sprintf("prn %d out of range 100-199", r.PRN)
	}
	c, err := domain.Parse(r.Constellation)
	if err != nil {
		return domain.SBASEntry{}, err.Error()
	}
	entry := domain.SBASEntry{
		Slot:          uint8(r.PRN - 100),
		Constellation: c,
		Vehicle:       r.Vehicle,
	}
	if r.Launch != "" {
		launch, ok := parseLaunch(r.Launch)
		if !ok {
			return domain.SBASEntry{}, fmt.Sprintf("invalid launch date %q", r.Launch)
		}
		entry.Launch = launch
	}
	if r.Coverage != nil {
		entry.Coverage = r.Coverage.Geometry()
		if entry.Coverage == nil {
			return domain.SBASEntry{}, fmt.Sprintf("empty coverage geometry of type %q", r.Coverage.Type)
		}
	}
	return entry, ""
}

func parseLaunch(text string) (time.Time, bool) {
	for _, layout := range launchLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Records converts a database back into document records.
func Records(db *domain.Database) []Record {
	entries := db.Entries()
	out := make([]Record, len(entries))
	for i, e := range entries {
		out[i] = Record{
			PRN:           e.PRN(),
			Constellation: recordName(e.Constellation),
			Vehicle:       e.Vehicle,
		}
		if !e.Launch.IsZero() {
			out[i].Launch = e.Launch.Format("2006-01-02")
		}
		if e.Coverage != nil {
			out[i].Coverage = geojson.NewGeometry(e.Coverage)
		}
	}
	return out
}

// Encode renders a database as an indented JSON document accepted by Decode.
func Encode(db *domain.Database) ([]byte, error) {
	return strictJSON.MarshalIndent(Records(db), "", "  ")
}

func recordName(c domain.Constellation) string {
	name, _ := domain.Render(c, domain.SpellingShort)
	return name
}
