package domain

import (
	"errors"
	"testing"
)

func TestNewCoordinate(t *testing.T) {
	c := NewCoordinate(2.38, 48.81)

	if c.Lon != 2.38 {
		t.Errorf("expected Lon=2.38, got %f", c.Lon)
	}
	if c.Lat != 48.81 {
		t.Errorf("expected Lat=48.81, got %f", c.Lat)
	}

	pt := c.Point()
	if pt.Lon() != 2.38 || pt.Lat() != 48.81 {
		t.Errorf("Point() = %v, want [2.38 48.81]", pt)
	}
}

func TestCoordinateValidate(t *testing.T) {
	tests := []struct {
		name    string
		coord   Coordinate
		wantErr bool
	}{
		{
			name:    "valid coordinate",
			coord:   NewCoordinate(9.9, 52.5),
			wantErr: false,
		},
		{
			name:    "origin",
			coord:   NewCoordinate(0, 0),
			wantErr: false,
		},
		{
			name:    "max bounds",
			coord:   NewCoordinate(180, 90),
			wantErr: false,
		},
		{
			name:    "min bounds",
			coord:   NewCoordinate(-180, -90),
			wantErr: false,
		},
		{
			name:    "longitude too large",
			coord:   NewCoordinate(181, 0),
			wantErr: true,
		},
		{
			name:    "longitude too small",
			coord:   NewCoordinate(-180.5, 0),
			wantErr: true,
		},
		{
			name:    "latitude too large",
			coord:   NewCoordinate(0, 91),
			wantErr: true,
		},
		{
			name:    "latitude too small",
			coord:   NewCoordinate(0, -90.1),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.coord.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidCoordinate) {
				t.Errorf("Validate() error should wrap ErrInvalidCoordinate, got %v", err)
			}
		})
	}
}

func TestCoordinateString(t *testing.T) {
	c := NewCoordinate(9.9, 52.5)
	want := "POINT(9.900000 52.500000)"
	if got := c.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
