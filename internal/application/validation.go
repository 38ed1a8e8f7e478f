package application

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jobrunner/gnss/internal/ports/output"
)

// ErrRateLimited is returned when the validation API rate limit is exceeded.
var ErrRateLimited = errors.New("rate limit exceeded")

// DefaultValidationCooldown is the minimum time between API-triggered runs.
const DefaultValidationCooldown = 30 * time.Second

// ValidationReport is the outcome of validating one database document.
type ValidationReport struct {
	Path            string    `json:"path"`
	Valid           bool      `json:"valid"`
	Entries         int       `json:"entries"`
	CoverageRegions int       `json:"coverage_regions"`
	Error           string    `json:"error,omitempty"`
	CheckedAt       time.Time `json:"checked_at"`
}

// ValidationResult summarizes a validation run over a document store.
type ValidationResult struct {
	Reports   []ValidationReport `json:"reports"`
	Valid     int                `json:"valid"`
	Invalid   int                `json:"invalid"`
	CheckedAt time.Time          `json:"checked_at"`
}

// ValidationService checks candidate database documents without touching
// the database the catalog serves.
type ValidationService struct {
	store    output.DocumentStore
	logger   *slog.Logger
	cooldown time.Duration

	// Rate limiting for API triggers
	lastTrigger time.Time
	apiMutex    sync.Mutex

	// Prevents concurrent runs
	runMutex sync.Mutex

	mu      sync.RWMutex
	reports map[string]ValidationReport
}

// NewValidationService creates a new validation service.
func NewValidationService(store output.DocumentStore, cooldown time.Duration, logger *slog.Logger) *ValidationService {
	if cooldown <= 0 {
		cooldown = DefaultValidationCooldown
	}
	return &ValidationService{
		store:    store,
		logger:   logger,
		cooldown: cooldown,
		reports:  make(map[string]ValidationReport),
		// Allow an immediate first API call
		lastTrigger: time.Now().Add(-cooldown - time.Second),
	}
}

// ValidateFile validates one document and records the report.
func (s *ValidationService) ValidateFile(ctx context.Context, path string) ValidationReport {
	report := ValidationReport{Path: path, CheckedAt: time.Now()}

	db, err := s.store.Load(ctx, path)
	if err != nil {
		report.Error = err.Error()
		s.logger.Warn("database document invalid", "path", path, "error", err)
	} else {
		report.Valid = true
		report.Entries = db.Len()
		report.CoverageRegions = db.CoverageCount()
		s.logger.Info("database document valid",
			"path", path,
			"entries", report.Entries,
			"coverage_regions", report.CoverageRegions,
		)
	}

	s.mu.Lock()
	s.reports[path] = report
	s.mu.Unlock()

	return report
}

// Forget drops the report of a removed document.
func (s *ValidationService) Forget(path string) {
	s.mu.Lock()
	delete(s.reports, path)
	s.mu.Unlock()
}

// ValidateAll validates every document in the store.
func (s *ValidationService) ValidateAll(ctx context.Context) (ValidationResult, error) {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()

	docs, err := s.store.List(ctx)
	if err != nil {
		return ValidationResult{}, err
	}

	result := ValidationResult{CheckedAt: time.Now()}
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		report := s.ValidateFile(ctx, doc.Path)
		if report.Valid {
			result.Valid++
		} else {
			result.Invalid++
		}
		result.Reports = append(result.Reports, report)
	}

	s.logger.Info("validation completed", "valid", result.Valid, "invalid", result.Invalid)
	return result, nil
}

// TriggerValidation runs ValidateAll with rate limiting.
// Returns ErrRateLimited if called again within the cooldown.
func (s *ValidationService) TriggerValidation(ctx context.Context) (ValidationResult, error) {
	s.apiMutex.Lock()
	if time.Since(s.lastTrigger) < s.cooldown {
		s.apiMutex.Unlock()
		return ValidationResult{}, ErrRateLimited
	}
	s.lastTrigger = time.Now()
	s.apiMutex.Unlock()

	return s.ValidateAll(ctx)
}

// Reports returns the latest report per document, sorted by path.
func (s *ValidationService) Reports() []ValidationReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ValidationReport, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b ValidationReport) int {
		return cmp.Compare(a.Path, b.Path)
	})
	return out
}

// Cooldown returns the minimum time between API-triggered runs.
func (s *ValidationService) Cooldown() time.Duration {
	return s.cooldown
}
