package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/jobrunner/gnss/internal/domain"
	"github.com/jobrunner/gnss/internal/ports/output"
)

// SelectorService picks the augmentation service covering a coordinate.
type SelectorService struct {
	catalog *CatalogService
	metrics output.MetricsCollector
	logger  *slog.Logger
}

// NewSelectorService creates a new selector service.
func NewSelectorService(
	catalog *CatalogService,
	metrics output.MetricsCollector,
	logger *slog.Logger,
) *SelectorService {
	return &SelectorService{
		catalog: catalog,
		metrics: metrics,
		logger:  logger,
	}
}

// Select validates the coordinate and scans the coverage regions in
// declaration order. The first match is selected; no match is not an error.
func (s *SelectorService) Select(ctx context.Context, coord domain.Coordinate) (*domain.Selection, error) {
	if err := coord.Validate(); err != nil {
		return nil, err
	}

	db, err := s.catalog.Database(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	selection := &domain.Selection{
		Coordinate: coord,
		Matches:    db.Matches(coord.Lon, coord.Lat),
	}
	if len(selection.Matches) > 0 {
		first := selection.Matches[0]
		selection.Entry = &first
	}
	selection.ProcessingTime = time.Since(start)

	s.metrics.ObserveSelectionDuration(selection.ProcessingTime)
	if c, ok := selection.Constellation(); ok {
		s.metrics.IncSelection(shortName(c))
	} else {
		s.metrics.IncSelection("none")
	}

	if selection.Overlapping() {
		s.logger.Debug("overlapping coverage regions",
			"lon", coord.Lon,
			"lat", coord.Lat,
			"matches", len(selection.Matches),
			"selected", selection.Entry.Constellation.String(),
		)
	}

	return selection, nil
}

func shortName(c domain.Constellation) string {
	name, _ := domain.Render(c, domain.SpellingShort)
	return name
}
