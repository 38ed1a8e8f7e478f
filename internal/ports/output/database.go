package output

import (
	"context"

	"github.com/jobrunner/gnss/internal/domain"
)

// DatabaseSource defines the secondary port that supplies the SBAS
// reference database.
type DatabaseSource interface {
	// Name identifies the source in logs and metrics.
	Name() string

	// Load decodes and validates the database. A failure is fatal for
	// the caller: there is no partial database.
	Load(ctx context.Context) (*domain.Database, error)
}

// DatabaseExporter writes a database into another storage format.
type DatabaseExporter interface {
	// Export writes db to path, replacing any existing file.
	Export(ctx context.Context, db *domain.Database, path string) error
}

// DocumentStore lists and decodes candidate database documents kept on
// disk, e.g. revisions prepared by data maintainers.
type DocumentStore interface {
	// List returns all database documents in the store.
	List(ctx context.Context) ([]Document, error)

	// Load decodes and validates one document.
	Load(ctx context.Context, path string) (*domain.Database, error)
}

// Document represents a database file in a DocumentStore.
type Document struct {
	Path         string // File path
	Size         int64  // Size in bytes
	LastModified int64  // Unix timestamp
}
