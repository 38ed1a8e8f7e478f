package application

import (
	"context"

	"github.com/jobrunner/gnss/internal/domain"
	"github.com/jobrunner/gnss/internal/ports/input"
)

// HealthService provides health check functionality.
type HealthService struct {
	catalog *CatalogService
}

// NewHealthService creates a new health service.
func NewHealthService(catalog *CatalogService) *HealthService {
	return &HealthService{
		catalog: catalog,
	}
}

// IsHealthy returns false only when the database failed to load; the
// process cannot serve lookups without it.
func (s *HealthService) IsHealthy(_ context.Context) bool {
	status, _, _ := s.catalog.Status()
	return status != domain.StatusError
}

// IsReady returns true once the database is loaded.
func (s *HealthService) IsReady(_ context.Context) bool {
	status, _, _ := s.catalog.Status()
	return status == domain.StatusReady
}

// GetHealthDetails returns detailed health information.
func (s *HealthService) GetHealthDetails(ctx context.Context) input.HealthDetails {
	status, _, err := s.catalog.Status()

	details := input.HealthDetails{
		Healthy: s.IsHealthy(ctx),
		Ready:   s.IsReady(ctx),
		Source:  s.catalog.SourceName(),
		Components: map[string]string{
			"database": string(status),
		},
	}
	if err != nil {
		details.Components["database_error"] = err.Error()
	}

	if status == domain.StatusReady {
		db, err := s.catalog.Database(ctx)
		if err == nil {
			details.Entries = db.Len()
			details.CoverageRegions = db.CoverageCount()
		}
	}

	return details
}
