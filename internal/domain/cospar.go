package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// COSPAR is an international launch designator, e.g. "2018-080A".
type COSPAR struct {
	Year   uint16 // Launch year
	Launch uint16 // Launch number within the year
	Piece  string // Piece code, up to three letters
}

// String returns the "YYYY-NNNP" form.
func (c COSPAR) String() string {
	return fmt.Sprintf("%04d-%03d%s", c.Year, c.Launch, c.Piece)
}

// ParseCOSPAR decodes a launch designator.
func ParseCOSPAR(text string) (COSPAR, error) {
	fail := func() (COSPAR, error) {
		return COSPAR{}, &ParseError{Input: text, Err: ErrInvalidCOSPAR}
	}
	if len(text) < 9 {
		return fail()
	}
	yearText, rest, ok := strings.Cut(text, "-")
	if !ok || len(rest) < 4 {
		return fail()
	}
	year, err := strconv.ParseUint(yearText, 10, 16)
	if err != nil {
		return fail()
	}
	launch, err := strconv.ParseUint(strings.TrimSpace(rest[:3]), 10, 16)
	if err != nil {
		return fail()
	}
	piece := strings.TrimSpace(rest[3:])
	if len(piece) > 3 {
		return fail()
	}
	for _, r := range piece {
		if r < 'A' || r > 'Z' {
			return fail()
		}
	}
	return COSPAR{Year: uint16(year), Launch: uint16(launch), Piece: piece}, nil
}
