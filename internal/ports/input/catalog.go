// Package input defines the primary/driving ports of the application.
package input

import (
	"context"
	"time"

	"github.com/jobrunner/gnss/internal/domain"
)

// Catalog defines the primary port for identity lookups.
type Catalog interface {
	// ParseConstellation decodes any supported spelling.
	ParseConstellation(ctx context.Context, text string) (domain.Constellation, error)

	// RenderConstellation encodes a constellation in the requested spelling.
	RenderConstellation(ctx context.Context, c domain.Constellation, s domain.Spelling) (string, error)

	// ResolveSV decodes an "XYY" identifier, mapping SBAS slots to their service.
	ResolveSV(ctx context.Context, text string) (domain.SV, error)

	// LookupSBAS returns the reference entry of a publication number.
	LookupSBAS(ctx context.Context, slot uint8) (domain.SBASEntry, error)

	// LaunchDatetime returns the recorded launch date of an SBAS vehicle.
	LaunchDatetime(ctx context.Context, sv domain.SV) (time.Time, bool, error)

	// ListSBAS returns all reference entries in declaration order.
	ListSBAS(ctx context.Context) ([]domain.SBASEntry, error)

	// Suggest returns known spellings close to an unrecognized text.
	Suggest(text string) []string
}

// Selector defines the primary port for coverage selection.
type Selector interface {
	// Select returns the augmentation service covering a coordinate.
	Select(ctx context.Context, coord domain.Coordinate) (*domain.Selection, error)
}

// HealthChecker defines the primary port for health checks.
type HealthChecker interface {
	// IsHealthy returns true if the service is healthy.
	IsHealthy(ctx context.Context) bool

	// IsReady returns true once the database is loaded.
	IsReady(ctx context.Context) bool

	// GetHealthDetails returns detailed health information.
	GetHealthDetails(ctx context.Context) HealthDetails
}

// HealthDetails contains detailed health information.
type HealthDetails struct {
	Healthy         bool              // Overall health status
	Ready           bool              // Database loaded
	Source          string            // Database source name
	Entries         int               // Number of SBAS entries
	CoverageRegions int               // Entries with coverage
	Components      map[string]string // Component statuses
}
