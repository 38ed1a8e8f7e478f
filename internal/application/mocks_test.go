package application

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb"

	"github.com/jobrunner/gnss/internal/domain"
	"github.com/jobrunner/gnss/internal/ports/output"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func square(minLon, minLat, maxLon, maxLat float64) orb.Polygon {
	return orb.Polygon{{
		{minLon, minLat},
		{maxLon, minLat},
		{maxLon, maxLat},
		{minLon, maxLat},
		{minLon, minLat},
	}}
}

// fixtureDatabase returns a small database with two overlapping regions.
func fixtureDatabase() *domain.Database {
	db, err := domain.NewDatabase("fixture", []domain.SBASEntry{
		{Slot: 23, Constellation: domain.EGNOS, Vehicle: "ASTRA-5B",
			Launch:   time.Date(2021, 11, 1, 0, 0, 0, 0, time.UTC),
			Coverage: square(-10, 35, 30, 70)},
		{Slot: 48, Constellation: domain.ASAL, Vehicle: "ALCOMSAT-1",
			Coverage: square(-9, 19, 12, 37)},
		{Slot: 31, Constellation: domain.WAAS, Vehicle: "EUTELSAT-117WB",
			Coverage: square(-170, 15, -50, 75)},
		{Slot: 33, Constellation: domain.WAAS, Vehicle: "SES-15"},
	})
	if err != nil {
		panic(err)
	}
	return db
}

// mockSource implements output.DatabaseSource for testing.
type mockSource struct {
	db    *domain.Database
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (m *mockSource) Name() string {
	return "mock"
}

func (m *mockSource) Load(_ context.Context) (*domain.Database, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.db, nil
}

// mockStore implements output.DocumentStore for testing.
type mockStore struct {
	docs    []output.Document
	dbs     map[string]*domain.Database
	listErr error
}

func (m *mockStore) List(_ context.Context) ([]output.Document, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.docs, nil
}

func (m *mockStore) Load(_ context.Context, path string) (*domain.Database, error) {
	if db, ok := m.dbs[path]; ok {
		return db, nil
	}
	return nil, &domain.DatabaseError{Source: path, Index: -1, Reason: "unreadable"}
}

// recordingMetrics implements output.MetricsCollector and keeps counts.
type recordingMetrics struct {
	output.NoOpMetrics

	mu         sync.Mutex
	lookups    map[string]int
	selections map[string]int
	loads      int
	entries    int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		lookups:    make(map[string]int),
		selections: make(map[string]int),
	}
}

func (m *recordingMetrics) IncLookup(kind string, found bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if found {
		m.lookups[kind+"/found"]++
	} else {
		m.lookups[kind+"/missing"]++
	}
}

func (m *recordingMetrics) IncSelection(constellation string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selections[constellation]++
}

func (m *recordingMetrics) SetDatabaseEntries(total, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = total
}

func (m *recordingMetrics) IncDatabaseLoads(_ string, _ bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
}

func newTestCatalog(source *mockSource) *CatalogService {
	return NewCatalogService(source, &output.NoOpMetrics{}, testLogger())
}
