package domain

import (
	"errors"
	"testing"
	"time"
)

func TestTrueSatelliteNumber(t *testing.T) {
	for _, c := range All() {
		for _, prn := range []uint8{0, 1, 23, 58, 99} {
			sv := NewSV(c, prn)
			got, ok := sv.TrueSatelliteNumber()
			if c.IsSBAS() {
				if !ok || got != int(prn)+100 {
					t.Errorf("%s TrueSatelliteNumber() = (%d, %v), want %d", sv, got, ok, int(prn)+100)
				}
			} else if ok {
				t.Errorf("%s TrueSatelliteNumber() = %d, want none", sv, got)
			}
		}
	}
}

func TestNewSBAS(t *testing.T) {
	db := fixtureDatabase(t)

	if _, ok := NewSBAS(db, 1); ok {
		t.Error("NewSBAS(1) should return none for an unassigned slot")
	}

	sv, ok := NewSBAS(db, 23)
	if !ok {
		t.Fatal("NewSBAS(23) should succeed")
	}
	if sv.Constellation != EGNOS || sv.PRN != 23 {
		t.Errorf("NewSBAS(23) = %+v, want EGNOS/23", sv)
	}

	launch, ok := sv.LaunchDatetime(db)
	if !ok {
		t.Fatal("LaunchDatetime() should be known for slot 23")
	}
	if launch.Year() != 2021 || launch.Month() != time.November {
		t.Errorf("LaunchDatetime() = %v, want November 2021", launch)
	}
}

func TestLaunchDatetimeAbsent(t *testing.T) {
	db := fixtureDatabase(t)

	tests := []struct {
		name string
		sv   SV
	}{
		{"not sbas", NewSV(GPS, 23)},
		{"unknown slot", NewSV(EGNOS, 77)},
		{"no recorded launch", NewSV(WAAS, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, ok := tt.sv.LaunchDatetime(db); ok {
				t.Errorf("LaunchDatetime() = %v, want none", got)
			}
		})
	}
}

func TestSVTimescale(t *testing.T) {
	ts, ok := NewSV(GPS, 1).Timescale()
	if !ok || ts != GPST {
		t.Errorf("GPS timescale = (%v, %v), want GPST", ts, ok)
	}
	if _, ok := NewSV(IRNSS, 1).Timescale(); ok {
		t.Error("IRNSS should have no timescale")
	}
}

func TestIsBeiDouGeo(t *testing.T) {
	tests := []struct {
		sv   SV
		want bool
	}{
		{NewSV(BeiDou, 1), true},
		{NewSV(BeiDou, 5), true},
		{NewSV(BeiDou, 6), false},
		{NewSV(BeiDou, 30), false},
		{NewSV(BeiDou, 58), false},
		{NewSV(BeiDou, 59), true},
		{NewSV(GPS, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.sv.String(), func(t *testing.T) {
			if got := tt.sv.IsBeiDouGeo(); got != tt.want {
				t.Errorf("IsBeiDouGeo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSVString(t *testing.T) {
	tests := []struct {
		sv   SV
		want string
	}{
		{NewSV(GPS, 1), "G01"},
		{NewSV(Galileo, 12), "E12"},
		{NewSV(SBAS, 23), "S23"},
		{NewSV(EGNOS, 23), "S23"},
		{NewSV(Mixed, 3), "M03"},
		{NewSV(Constellation(0), 3), "?03"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.sv.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseSV(t *testing.T) {
	tests := []struct {
		text    string
		want    SV
		wantErr error
	}{
		{"G01", NewSV(GPS, 1), nil},
		{"E4 ", NewSV(Galileo, 4), nil},
		{"G 1", NewSV(GPS, 1), nil},
		{"R24", NewSV(Glonass, 24), nil},
		{"C59", NewSV(BeiDou, 59), nil},
		{"S23", NewSV(SBAS, 23), nil},
		{"G", SV{}, ErrInvalidSV},
		{"", SV{}, ErrInvalidSV},
		{"Gxx", SV{}, ErrInvalidSV},
		{"G300", SV{}, ErrInvalidSV},
		{"X01", SV{}, ErrUnknownConstellation},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseSV(tt.text)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParseSV(%q) error = %v, want %v", tt.text, err, tt.wantErr)
				}
				var pe *ParseError
				if !errors.As(err, &pe) || pe.Input != tt.text {
					t.Errorf("ParseSV(%q) error should be a *ParseError carrying the input", tt.text)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSV(%q) unexpected error: %v", tt.text, err)
			}
			if got != tt.want {
				t.Errorf("ParseSV(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestSVText(t *testing.T) {
	var sv SV
	if err := sv.UnmarshalText([]byte("J02")); err != nil {
		t.Fatalf("UnmarshalText() error: %v", err)
	}
	b, err := sv.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() error: %v", err)
	}
	if string(b) != "J02" {
		t.Errorf("MarshalText() = %q, want J02", b)
	}
}
