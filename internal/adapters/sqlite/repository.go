// Package sqlite stores the SBAS database in a SQLite file, with coverage
// regions kept as WKB blobs.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"

	"github.com/jobrunner/gnss/internal/domain"
)

// SchemaVersion is written to the metadata table and checked on load.
const SchemaVersion = 1

const driverName = "sqlite3_gnss"

// Register a driver that enforces constraints on every connection.
func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			_, err := conn.Exec("PRAGMA foreign_keys = ON", nil)
			return err
		},
	})
}

const schema = `
CREATE TABLE metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE sbas_entries (
	slot          INTEGER PRIMARY KEY CHECK (slot BETWEEN 0 AND 99),
	position      INTEGER NOT NULL UNIQUE,
	prn           INTEGER NOT NULL,
	constellation TEXT    NOT NULL,
	vehicle       TEXT    NOT NULL DEFAULT '',
	launch        TEXT,
	coverage      BLOB
);`

// DeriveName derives a short source name from a file path.
func DeriveName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	if name == "." {
		return ""
	}
	return name
}

// Exporter writes databases to SQLite files.
type Exporter struct{}

// NewExporter creates a new SQLite exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export implements output.DatabaseExporter. An existing file at path is replaced.
func (e *Exporter) Export(ctx context.Context, db *domain.Database, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return &domain.StorageError{Operation: "export", Path: path, Err: err}
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &domain.StorageError{Operation: "export", Path: path, Err: err}
	}

	conn, err := openDB(ctx, path, false)
	if err != nil {
		return &domain.StorageError{Operation: "export", Path: path, Err: err}
	}
	defer func() { _ = conn.Close() }()

	if err := writeDatabase(ctx, conn, db); err != nil {
		return &domain.StorageError{Operation: "export", Path: path, Err: err}
	}
	return nil
}

func writeDatabase(ctx context.Context, conn *sql.DB, db *domain.Database) (err error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	meta := map[string]string{
		"schema_version": strconv.Itoa(SchemaVersion),
		"source":         db.Source(),
		"exported_at":    time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err = tx.ExecContext(ctx, `INSERT INTO metadata (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("writing metadata %s: %w", k, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sbas_entries (slot, position, prn, constellation, vehicle, launch, coverage)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, entry := range db.Entries() {
		var launch any
		if !entry.Launch.IsZero() {
			launch = entry.Launch.UTC().Format(time.RFC3339)
		}
		var coverage any
		if entry.Coverage != nil {
			blob, merr := wkb.Marshal(entry.Coverage)
			if merr != nil {
				return fmt.Errorf("encoding coverage of slot %d: %w", entry.Slot, merr)
			}
			coverage = blob
		}
		name, _ := domain.Render(entry.Constellation, domain.SpellingShort)

		if _, err = stmt.ExecContext(ctx,
			entry.Slot, i, entry.PRN(), name, entry.Vehicle, launch, coverage,
		); err != nil {
			return fmt.Errorf("writing slot %d: %w", entry.Slot, err)
		}
	}

	return tx.Commit()
}

// Source loads a database exported by Exporter.
type Source struct {
	path string
}

// NewSource creates a SQLite database source.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// Name implements output.DatabaseSource.
func (s *Source) Name() string {
	return "sqlite:" + DeriveName(s.path)
}

// Load implements output.DatabaseSource.
func (s *Source) Load(ctx context.Context) (*domain.Database, error) {
	return Load(ctx, s.path)
}

// Load reads and validates the database stored at path.
func Load(ctx context.Context, path string) (*domain.Database, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &domain.StorageError{Operation: "read", Path: path, Err: err}
	}

	conn, err := openDB(ctx, path, true)
	if err != nil {
		return nil, &domain.StorageError{Operation: "read", Path: path, Err: err}
	}
	defer func() { _ = conn.Close() }()

	if err := checkSchema(ctx, conn, path); err != nil {
		return nil, err
	}

	entries, err := readEntries(ctx, conn, path)
	if err != nil {
		return nil, err
	}
	return domain.NewDatabase(path, entries)
}

func checkSchema(ctx context.Context, conn *sql.DB, path string) error {
	var version string
	err := conn.QueryRowContext(ctx,
		`SELECT value FROM metadata WHERE key = 'schema_version'`,
	).Scan(&version)
	if err != nil {
		return &domain.DatabaseError{Source: path, Index: -1,
			Reason: fmt.Sprintf("reading schema version: %v", err)}
	}
	if version != strconv.Itoa(SchemaVersion) {
		return &domain.DatabaseError{Source: path, Index: -1,
			Reason: fmt.Sprintf("unsupported schema version %q", version)}
	}
	return nil
}

func readEntries(ctx context.Context, conn *sql.DB, path string) ([]domain.SBASEntry, error) {
	rows, err := conn.QueryContext(ctx, `
		SELECT slot, constellation, vehicle, launch, coverage
		FROM sbas_entries
		ORDER BY position`)
	if err != nil {
		return nil, &domain.DatabaseError{Source: path, Index: -1,
			Reason: fmt.Sprintf("reading entries: %v", err)}
	}
	defer func() { _ = rows.Close() }()

	var entries []domain.SBASEntry
	for i := 0; rows.Next(); i++ {
		var (
			slot     int
			name     string
			vehicle  string
			launch   sql.NullString
			coverage []byte
		)
		if err := rows.Scan(&slot, &name, &vehicle, &launch, &coverage); err != nil {
			return nil, &domain.DatabaseError{Source: path, Index: i, Reason: err.Error()}
		}

		entry, reason := buildEntry(slot, name, vehicle, launch, coverage)
		if reason != "" {
			return nil, &domain.DatabaseError{Source: path, Index: i, Reason: reason}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.DatabaseError{Source: path, Index: -1, Reason: err.Error()}
	}
	return entries, nil
}

func buildEntry(slot int, name, vehicle string, launch sql.NullString, coverage []byte) (domain.SBASEntry, string) {
	c, err := domain.Parse(name)
	if err != nil {
		return domain.SBASEntry{}, err.Error()
	}
	entry := domain.SBASEntry{Slot: uint8(slot), Constellation: c, Vehicle: vehicle}

	if launch.Valid && launch.String != "" {
		t, err := time.Parse(time.RFC3339, launch.String)
		if err != nil {
			return domain.SBASEntry{}, fmt.Sprintf("invalid launch %q", launch.String)
		}
		entry.Launch = t.UTC()
	}

	if len(coverage) > 0 {
		geom, err := wkb.Unmarshal(coverage)
		if err != nil {
			return domain.SBASEntry{}, fmt.Sprintf("decoding coverage: %v", err)
		}
		entry.Coverage = normalize(geom)
	}
	return entry, ""
}

// normalize unwraps single-member collections some writers produce.
func normalize(g orb.Geometry) orb.Geometry {
	if c, ok := g.(orb.Collection); ok && len(c) == 1 {
		return c[0]
	}
	return g
}

func openDB(ctx context.Context, path string, readOnly bool) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s", path)
	if readOnly {
		dsn += "?mode=ro"
	}
	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}
