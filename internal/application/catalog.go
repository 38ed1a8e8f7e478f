// Package application contains the application services.
package application

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/jobrunner/gnss/internal/domain"
	"github.com/jobrunner/gnss/internal/ports/output"
)

// maxSuggestions bounds the number of spellings returned by Suggest.
const maxSuggestions = 3

// CatalogService owns the SBAS database and answers identity lookups.
// The database is loaded once; it is never replaced afterwards.
type CatalogService struct {
	source  output.DatabaseSource
	metrics output.MetricsCollector
	logger  *slog.Logger

	once     sync.Once
	mu       sync.RWMutex
	db       *domain.Database
	err      error
	status   domain.DatabaseStatus
	loadedAt time.Time
}

// NewCatalogService creates a catalog backed by source.
func NewCatalogService(
	source output.DatabaseSource,
	metrics output.MetricsCollector,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		source:  source,
		metrics: metrics,
		logger:  logger,
		status:  domain.StatusPending,
	}
}

// Load loads the database on first call. Later calls return the outcome of
// that first load without touching the source again.
func (s *CatalogService) Load(ctx context.Context) error {
	s.once.Do(func() {
		s.setStatus(domain.StatusLoading)
		s.logger.Info("loading sbas database", "source", s.source.Name())

		start := time.Now()
		db, err := s.source.Load(ctx)

		s.mu.Lock()
		s.db, s.err = db, err
		if err != nil {
			s.status = domain.StatusError
		} else {
			s.status = domain.StatusReady
			s.loadedAt = time.Now()
		}
		s.mu.Unlock()

		s.metrics.IncDatabaseLoads(s.source.Name(), err == nil)
		if err != nil {
			s.logger.Error("failed to load sbas database", "source", s.source.Name(), "error", err)
			return
		}

		s.metrics.SetDatabaseEntries(db.Len(), db.CoverageCount())
		s.logger.Info("sbas database loaded",
			"source", db.Source(),
			"entries", db.Len(),
			"coverage_regions", db.CoverageCount(),
			"duration", time.Since(start),
		)
	})

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Database returns the loaded database, loading it if needed.
func (s *CatalogService) Database(ctx context.Context) (*domain.Database, error) {
	if err := s.Load(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrNotReady, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db, nil
}

// Status returns the load state, the load time and the load error, if any.
func (s *CatalogService) Status() (domain.DatabaseStatus, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.loadedAt, s.err
}

// SourceName returns the configured source name.
func (s *CatalogService) SourceName() string {
	return s.source.Name()
}

func (s *CatalogService) setStatus(status domain.DatabaseStatus) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// ParseConstellation decodes any supported spelling.
func (s *CatalogService) ParseConstellation(_ context.Context, text string) (domain.Constellation, error) {
	c, err := domain.Parse(text)
	s.metrics.IncLookup("constellation", err == nil)
	if err != nil {
		s.logger.Debug("unknown constellation", "text", text)
		return 0, err
	}
	return c, nil
}

// RenderConstellation encodes c in the requested spelling.
func (s *CatalogService) RenderConstellation(_ context.Context, c domain.Constellation, sp domain.Spelling) (string, error) {
	return domain.Render(c, sp)
}

// ResolveSV decodes an "XYY" identifier and maps SBAS slots to the service
// recorded in the database.
func (s *CatalogService) ResolveSV(ctx context.Context, text string) (domain.SV, error) {
	sv, err := domain.ParseSV(text)
	if err != nil {
		s.metrics.IncLookup("sv", false)
		return domain.SV{}, err
	}
	if sv.Constellation.IsSBAS() {
		db, err := s.Database(ctx)
		if err != nil {
			return domain.SV{}, err
		}
		sv = db.Resolve(sv)
	}
	s.metrics.IncLookup("sv", true)
	return sv, nil
}

// LookupSBAS returns the entry of a publication number, or ErrEntryNotFound.
func (s *CatalogService) LookupSBAS(ctx context.Context, slot uint8) (domain.SBASEntry, error) {
	db, err := s.Database(ctx)
	if err != nil {
		return domain.SBASEntry{}, err
	}
	entry, ok := db.Lookup(slot)
	s.metrics.IncLookup("sbas", ok)
	if !ok {
		return domain.SBASEntry{}, fmt.Errorf("slot %d: %w", slot, domain.ErrEntryNotFound)
	}
	return entry, nil
}

// LaunchDatetime returns the launch date recorded for an SBAS vehicle.
// Non-SBAS vehicles, unknown slots and unknown dates yield false.
func (s *CatalogService) LaunchDatetime(ctx context.Context, sv domain.SV) (time.Time, bool, error) {
	if !sv.Constellation.IsSBAS() {
		return time.Time{}, false, nil
	}
	db, err := s.Database(ctx)
	if err != nil {
		return time.Time{}, false, err
	}
	launch, ok := sv.LaunchDatetime(db)
	return launch, ok, nil
}

// ListSBAS returns all entries in declaration order.
func (s *CatalogService) ListSBAS(ctx context.Context) ([]domain.SBASEntry, error) {
	db, err := s.Database(ctx)
	if err != nil {
		return nil, err
	}
	return db.Entries(), nil
}

// Suggest returns up to three known spellings within a small edit distance
// of text, compared case-insensitively. Parsing itself stays exact.
func (s *CatalogService) Suggest(text string) []string {
	if text == "" {
		return nil
	}

	type candidate struct {
		text     string
		distance int
	}

	needle := strings.ToLower(text)
	limit := max(1, len(needle)/3)

	var found []candidate
	for _, known := range domain.KnownSpellings() {
		d := levenshtein.ComputeDistance(needle, strings.ToLower(known))
		if d <= limit {
			found = append(found, candidate{text: known, distance: d})
		}
	}

	slices.SortStableFunc(found, func(a, b candidate) int {
		return cmp.Compare(a.distance, b.distance)
	})

	out := make([]string, 0, min(len(found), maxSuggestions))
	for _, c := range found {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, c.text)
	}
	return out
}
