package bundle

import (
	"context"
	"embed"
	"sync"

	"github.com/jobrunner/gnss/internal/domain"
)

// EmbeddedName identifies the embedded database in errors and metrics.
const EmbeddedName = "embedded"

//go:embed data/sbas.json
var dataFS embed.FS

var (
	defaultDB   *domain.Database
	defaultOnce sync.Once
	defaultErr  error
)

// Default returns the process-wide database decoded from the embedded
// document. The document is decoded on first access; concurrent callers
// wait for that single load and share its result.
func Default() (*domain.Database, error) {
	defaultOnce.Do(func() {
		defaultDB, defaultErr = decodeEmbedded()
	})
	return defaultDB, defaultErr
}

func decodeEmbedded() (*domain.Database, error) {
	data, err := dataFS.ReadFile("data/sbas.json")
	if err != nil {
		return nil, &domain.StorageError{Operation: "read", Path: EmbeddedName, Err: err}
	}
	return Decode(EmbeddedName, data)
}

// Document returns the raw embedded JSON document.
func Document() ([]byte, error) {
	return dataFS.ReadFile("data/sbas.json")
}

// Source serves the embedded database through the DatabaseSource port.
type Source struct{}

// NewSource creates an embedded database source.
func NewSource() *Source {
	return &Source{}
}

// Name implements output.DatabaseSource.
func (s *Source) Name() string {
	return EmbeddedName
}

// Load implements output.DatabaseSource.
func (s *Source) Load(_ context.Context) (*domain.Database, error) {
	return Default()
}
