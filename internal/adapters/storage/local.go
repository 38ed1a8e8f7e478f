// Package storage provides filesystem adapters for SBAS database documents.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jobrunner/gnss/internal/adapters/bundle"
	"github.com/jobrunner/gnss/internal/domain"
	"github.com/jobrunner/gnss/internal/ports/output"
)

// Loader decodes a binary database file, e.g. sqlite.Load.
type Loader func(ctx context.Context, path string) (*domain.Database, error)

// IsDatabaseFile reports whether name has a supported database extension.
func IsDatabaseFile(name string) bool {
	return IsJSONFile(name) || IsSQLiteFile(name)
}

// IsJSONFile reports whether name is a JSON database document.
func IsJSONFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".json")
}

// IsSQLiteFile reports whether name is a SQLite database file.
func IsSQLiteFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".sqlite" || ext == ".db"
}

// LocalStorage implements output.DocumentStore for local directories and
// single files.
type LocalStorage struct {
	basePaths []string
	sqlite    Loader
}

// NewLocalStorage creates a new local storage adapter. sqlite may be nil,
// in which case SQLite files are listed but fail to load.
func NewLocalStorage(sqlite Loader, basePaths ...string) *LocalStorage {
	return &LocalStorage{basePaths: basePaths, sqlite: sqlite}
}

// List returns all database documents below the base paths. A base path
// naming a file is listed when it has a database extension.
func (s *LocalStorage) List(_ context.Context) ([]output.Document, error) {
	var docs []output.Document

	for _, base := range s.basePaths {
		err := filepath.Walk(base, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if info.IsDir() || !IsDatabaseFile(info.Name()) {
				return nil
			}

			docs = append(docs, output.Document{
				Path:         path,
				Size:         info.Size(),
				LastModified: info.ModTime().Unix(),
			})
			return nil
		})
		if err != nil {
			return nil, &domain.StorageError{Operation: "list", Path: base, Err: err}
		}
	}

	return docs, nil
}

// Load decodes one document, dispatching on its extension.
func (s *LocalStorage) Load(ctx context.Context, path string) (*domain.Database, error) {
	switch {
	case IsJSONFile(path):
		return LoadJSON(path)
	case IsSQLiteFile(path):
		if s.sqlite == nil {
			return nil, &domain.StorageError{Operation: "read", Path: path,
				Err: fmt.Errorf("sqlite documents: %w", domain.ErrUnsupported)}
		}
		return s.sqlite(ctx, path)
	default:
		return nil, &domain.StorageError{Operation: "read", Path: path,
			Err: fmt.Errorf("file type %q: %w", filepath.Ext(path), domain.ErrUnsupported)}
	}
}

// BasePaths returns the listed paths.
func (s *LocalStorage) BasePaths() []string {
	return s.basePaths
}

// LoadJSON reads and decodes a JSON database document.
func LoadJSON(path string) (*domain.Database, error) {
	f, err := os.Open(path) //#nosec G304 -- path comes from configuration or a directory walk
	if err != nil {
		return nil, &domain.StorageError{Operation: "read", Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	return bundle.DecodeReader(path, f)
}

// FileSource serves a JSON document through the DatabaseSource port.
type FileSource struct {
	path string
}

// NewFileSource creates a source reading the JSON document at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name implements output.DatabaseSource.
func (s *FileSource) Name() string {
	return "file:" + filepath.Base(s.path)
}

// Load implements output.DatabaseSource.
func (s *FileSource) Load(_ context.Context) (*domain.Database, error) {
	return LoadJSON(s.path)
}
