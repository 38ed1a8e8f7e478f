package domain

import (
	"fmt"
	"slices"
)

// Spelling selects one of the textual encodings of a constellation.
type Spelling uint8

// Supported spellings.
const (
	SpellingLong   Spelling = iota // "GPS (US)"
	SpellingShort                  // "GPS"
	SpellingLetter                 // "G", RINEX convention
)

var spellingNames = [...]string{
	SpellingLong:   "long",
	SpellingShort:  "short",
	SpellingLetter: "letter",
}

// String returns the spelling name accepted by ParseSpelling.
func (s Spelling) String() string {
	if int(s) < len(spellingNames) {
		return spellingNames[s]
	}
	return "unknown"
}

// Spellings returns every supported spelling.
func Spellings() []Spelling {
	return []Spelling{SpellingLong, SpellingShort, SpellingLetter}
}

// ParseSpelling decodes a spelling name ("long", "short" or "letter").
func ParseSpelling(name string) (Spelling, error) {
	for i, n := range spellingNames {
		if n == name {
			return Spelling(i), nil
		}
	}
	return 0, &ParseError{Input: name, Err: ErrInvalidSpelling}
}

// spellings maps every accepted text to its constellation. Built once at
// init and read-only afterwards.
var spellings = buildSpellings()

func buildSpellings() map[string]Constellation {
	m := make(map[string]Constellation, 3*len(registry))
	for _, c := range All() {
		for _, s := range Spellings() {
			text, err := Render(c, s)
			if err != nil {
				continue
			}
			if prev, dup := m[text]; dup && prev != c {
				panic(fmt.Sprintf("spelling %q shared by %d and %d", text, prev, c))
			}
			m[text] = c
		}
	}
	return m
}

// Parse decodes a constellation from any of its spellings.
// Matching is exact: case-sensitive and without trimming.
func Parse(text string) (Constellation, error) {
	if c, ok := spellings[text]; ok {
		return c, nil
	}
	return 0, &ParseError{Input: text, Err: ErrUnknownConstellation}
}

// Render encodes c in the requested spelling. The single-letter spelling
// fails with ErrNoSingleLetterCode for services without a RINEX code.
func Render(c Constellation, s Spelling) (string, error) {
	if !c.Valid() {
		return "", ErrUnknownConstellation
	}
	md := registry[c]
	switch s {
	case SpellingLong:
		if md.Country == "" {
			return md.Name, nil
		}
		return md.Name + " (" + md.Country + ")", nil
	case SpellingShort:
		return md.Acronym, nil
	case SpellingLetter:
		if md.Letter == 0 {
			return "", fmt.Errorf("%s: %w", md.Acronym, ErrNoSingleLetterCode)
		}
		return string(md.Letter), nil
	default:
		return "", ErrInvalidSpelling
	}
}

// MarshalText encodes the short acronym.
func (c Constellation) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, ErrUnknownConstellation
	}
	return []byte(registry[c].Acronym), nil
}

// UnmarshalText accepts any spelling.
func (c *Constellation) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// KnownSpellings returns every accepted text, sorted.
func KnownSpellings() []string {
	out := make([]string, 0, len(spellings))
	for text := range spellings {
		out = append(out, text)
	}
	slices.Sort(out)
	return out
}
