// Package domain contains the GNSS identity model, the SBAS reference
// database and the coverage selector.
package domain

import "strings"

// Constellation is one navigation system or one augmentation service.
// The set is closed: only the constants below are valid.
type Constellation uint8

// Constellations. Values start at one so the zero value is invalid.
const (
	GPS Constellation = iota + 1
	Glonass
	BeiDou
	QZSS
	Galileo
	IRNSS
	WAAS
	EGNOS
	MSAS
	GAGAN
	BDSBAS
	KASS
	SDCM
	ASBAS
	SPAN
	SBAS // generic augmentation service
	AusNZ
	GBAS
	NSAS
	ASAL
	Mixed
)

// Metadata holds the static attributes of a constellation.
type Metadata struct {
	Name      string    // Display name used in the long form
	Acronym   string    // Standard abbreviation
	Letter    byte      // RINEX single-letter code, 0 if none
	Country   string    // Operating country or agency code, empty if none
	Timescale Timescale // Reference timescale, 0 if none
	SBAS      bool      // Geostationary augmentation service
}

var registry = [...]Metadata{
	GPS:     {Name: "GPS", Acronym: "GPS", Letter: 'G', Country: "US", Timescale: GPST},
	Glonass: {Name: "Glonass", Acronym: "GLO", Letter: 'R', Country: "RU", Timescale: UTC},
	BeiDou:  {Name: "BeiDou", Acronym: "BDS", Letter: 'C', Country: "CH", Timescale: BDT},
	QZSS:    {Name: "QZSS", Acronym: "QZSS", Letter: 'J', Country: "JP", Timescale: QZSST},
	Galileo: {Name: "Galileo", Acronym: "GAL", Letter: 'E', Country: "EU", Timescale: GST},
	IRNSS:   {Name: "IRNSS", Acronym: "IRNSS", Letter: 'I', Country: "IN"},
	WAAS:    {Name: "WAAS", Acronym: "WAAS", Country: "US", Timescale: GPST, SBAS: true},
	EGNOS:   {Name: "EGNOS", Acronym: "EGNOS", Country: "EU", Timescale: GPST, SBAS: true},
	MSAS:    {Name: "MSAS", Acronym: "MSAS", Country: "JP", Timescale: GPST, SBAS: true},
	GAGAN:   {Name: "GAGAN", Acronym: "GAGAN", Country: "IN", Timescale: GPST, SBAS: true},
	BDSBAS:  {Name: "BDSBAS", Acronym: "BDSBAS", Country: "CH", Timescale: GPST, SBAS: true},
	KASS:    {Name: "KASS", Acronym: "KASS", Country: "KR", Timescale: GPST, SBAS: true},
	SDCM:    {Name: "SDCM", Acronym: "SDCM", Country: "RU", Timescale: GPST, SBAS: true},
	ASBAS:   {Name: "ASBAS", Acronym: "ASBAS", Country: "SA", Timescale: GPST, SBAS: true},
	SPAN:    {Name: "SPAN", Acronym: "SPAN", Country: "AUS/NZ", Timescale: GPST, SBAS: true},
	SBAS:    {Name: "SBAS", Acronym: "SBAS", Letter: 'S', Timescale: GPST, SBAS: true},
	AusNZ:   {Name: "AusNZ", Acronym: "AUS/NZ", Country: "AUS/NZ", Timescale: GPST, SBAS: true},
	GBAS:    {Name: "GBAS", Acronym: "GBAS", Country: "UK", Timescale: GPST, SBAS: true},
	NSAS:    {Name: "NSAS", Acronym: "NSAS", Country: "NI", Timescale: GPST, SBAS: true},
	ASAL:    {Name: "ASAL", Acronym: "ASAL", Country: "AL", Timescale: GPST, SBAS: true},
	Mixed:   {Name: "MIXED", Acronym: "MIX", Letter: 'M'},
}

// All returns every constellation in declaration order.
func All() []Constellation {
	out := make([]Constellation, 0, len(registry)-1)
	for c := GPS; c <= Mixed; c++ {
		out = append(out, c)
	}
	return out
}

// Valid reports whether c is one of the declared constellations.
func (c Constellation) Valid() bool {
	return c >= GPS && c <= Mixed
}

// Metadata returns the static attributes of c.
// Undeclared values yield the zero Metadata.
func (c Constellation) Metadata() Metadata {
	if !c.Valid() {
		return Metadata{}
	}
	return registry[c]
}

// IsSBAS reports whether c is an augmentation service.
func (c Constellation) IsSBAS() bool {
	return c.Metadata().SBAS
}

// Country returns the operating country code, if any.
func (c Constellation) Country() (string, bool) {
	code := c.Metadata().Country
	return code, code != ""
}

// Timescale returns the reference timescale, if any.
func (c Constellation) Timescale() (Timescale, bool) {
	ts := c.Metadata().Timescale
	return ts, ts != 0
}

// String returns the long form, e.g. "GPS (US)".
func (c Constellation) String() string {
	if !c.Valid() {
		return "unknown"
	}
	s, _ := Render(c, SpellingLong)
	return s
}

type prefixRule struct {
	prefix string
	c      Constellation
}

var countryPrefixes = []prefixRule{
	{"us", GPS},
	{"eu", Galileo},
	{"ch", BeiDou},
	{"ru", Glonass},
	{"jp", QZSS},
	{"jap", QZSS},
	{"in", IRNSS},
}

var sbasCountryPrefixes = []prefixRule{
	{"us", WAAS},
	{"eu", EGNOS},
	{"ch", BDSBAS},
	{"ru", SDCM},
	{"jp", MSAS},
	{"jap", MSAS},
	{"in", GAGAN},
	{"uk", GBAS},
	{"sa", ASBAS},
	{"south-af", ASBAS},
	{"kr", KASS},
	{"kor", KASS},
	{"australia", SPAN},
	{"new-zea", SPAN},
	{"aus/nz", SPAN},
	{"nz", SPAN},
	{"ni", NSAS},
	{"al", ASAL},
}

// FromCountryCode returns the navigation constellation operated by a country,
// matching case-insensitive prefixes such as "US", "usa" or "Japan".
func FromCountryCode(code string) (Constellation, bool) {
	return matchPrefix(countryPrefixes, code)
}

// FromSBASCountryCode returns the augmentation service operated by a country.
func FromSBASCountryCode(code string) (Constellation, bool) {
	return matchPrefix(sbasCountryPrefixes, code)
}

func matchPrefix(rules []prefixRule, code string) (Constellation, bool) {
	lower := strings.ToLower(code)
	if lower == "" {
		return 0, false
	}
	for _, r := range rules {
		if strings.HasPrefix(lower, r.prefix) {
			return r.c, true
		}
	}
	return 0, false
}
