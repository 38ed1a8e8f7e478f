package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// sbasPRNOffset converts an SBAS publication number to the satellite
// number used by external catalogs.
const sbasPRNOffset = 100

// SV identifies one satellite slot within a constellation. Any slot number
// may be constructed; existence is checked against the SBAS database only.
type SV struct {
	Constellation Constellation
	PRN           uint8 // PRN, or publication number for SBAS
}

// NewSV creates an SV without validation.
func NewSV(c Constellation, prn uint8) SV {
	return SV{Constellation: c, PRN: prn}
}

// NewSBAS looks up a publication number in db. The returned SV carries the
// database's constellation for that slot.
func NewSBAS(db *Database, publication uint8) (SV, bool) {
	entry, ok := db.Lookup(publication)
	if !ok {
		return SV{}, false
	}
	return SV{Constellation: entry.Constellation, PRN: entry.Slot}, true
}

// TrueSatelliteNumber returns PRN+100 for SBAS vehicles.
func (sv SV) TrueSatelliteNumber() (int, bool) {
	if !sv.Constellation.IsSBAS() {
		return 0, false
	}
	return int(sv.PRN) + sbasPRNOffset, true
}

// LaunchDatetime returns the recorded launch date of an SBAS vehicle.
func (sv SV) LaunchDatetime(db *Database) (time.Time, bool) {
	if !sv.Constellation.IsSBAS() {
		return time.Time{}, false
	}
	entry, ok := db.Lookup(sv.PRN)
	if !ok || entry.Launch.IsZero() {
		return time.Time{}, false
	}
	return entry.Launch, true
}

// Timescale returns the timescale of the SV's constellation.
func (sv SV) Timescale() (Timescale, bool) {
	return sv.Constellation.Timescale()
}

// IsBeiDouGeo reports whether sv is a BeiDou geostationary vehicle.
func (sv SV) IsBeiDouGeo() bool {
	return sv.Constellation == BeiDou && (sv.PRN < 6 || sv.PRN > 58)
}

// String returns the "XYY" form, e.g. "G01". Augmentation services
// without their own letter use "S".
func (sv SV) String() string {
	letter := sv.Constellation.Metadata().Letter
	if letter == 0 && sv.Constellation.IsSBAS() {
		letter = 'S'
	}
	if letter == 0 {
		letter = '?'
	}
	return fmt.Sprintf("%c%02d", letter, sv.PRN)
}

// ParseSV decodes the "XYY" form. Padding spaces around the number are
// accepted ("G 1", "E4 "). An "S" prefix yields the generic SBAS
// constellation; use Database.Resolve for the specific service.
func ParseSV(text string) (SV, error) {
	if len(text) < 2 {
		return SV{}, &ParseError{Input: text, Err: ErrInvalidSV}
	}
	c, err := Parse(text[:1])
	if err != nil {
		return SV{}, &ParseError{Input: text, Err: ErrUnknownConstellation}
	}
	prn, err := strconv.ParseUint(strings.TrimSpace(text[1:]), 10, 8)
	if err != nil {
		return SV{}, &ParseError{Input: text, Err: ErrInvalidSV}
	}
	return SV{Constellation: c, PRN: uint8(prn)}, nil
}

// MarshalText encodes the "XYY" form.
func (sv SV) MarshalText() ([]byte, error) {
	return []byte(sv.String()), nil
}

// UnmarshalText decodes the "XYY" form.
func (sv *SV) UnmarshalText(text []byte) error {
	parsed, err := ParseSV(string(text))
	if err != nil {
		return err
	}
	*sv = parsed
	return nil
}
