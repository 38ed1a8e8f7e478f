package domain

import (
	"fmt"
	"strconv"
)

// TrackingPoint distinguishes monuments from instruments in a DOMES number.
type TrackingPoint byte

// Tracking point kinds.
const (
	Monument   TrackingPoint = 'M'
	Instrument TrackingPoint = 'S'
)

// DOMES is an IERS site identifier, e.g. "10002M006".
type DOMES struct {
	Area       uint16        // 3 digits
	Site       uint8         // 2 digits
	Point      TrackingPoint // M or S
	Sequential uint16        // 3 digits
}

// String returns the nine character form.
func (d DOMES) String() string {
	return fmt.Sprintf("%03d%02d%c%03d", d.Area, d.Site, d.Point, d.Sequential)
}

// ParseDOMES decodes a nine character DOMES number.
func ParseDOMES(text string) (DOMES, error) {
	fail := func() (DOMES, error) {
		return DOMES{}, &ParseError{Input: text, Err: ErrInvalidDOMES}
	}
	if len(text) != 9 {
		return fail()
	}
	area, err := strconv.ParseUint(text[0:3], 10, 16)
	if err != nil {
		return fail()
	}
	site, err := strconv.ParseUint(text[3:5], 10, 8)
	if err != nil {
		return fail()
	}
	point := TrackingPoint(text[5])
	if point != Monument && point != Instrument {
		return fail()
	}
	seq, err := strconv.ParseUint(text[6:9], 10, 16)
	if err != nil {
		return fail()
	}
	return DOMES{Area: uint16(area), Site: uint8(site), Point: point, Sequential: uint16(seq)}, nil
}
