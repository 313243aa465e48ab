package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/jobforge/jobforge/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/jobforge/jobforge/internal/core/domain"
	"github.com/jobforge/jobforge/internal/core/ports/driven"
)

// Ledger is a SQLite-backed ingest ledger. It tracks the checksum and
// fragment count of every ingested document so unchanged documents can
// be skipped on later runs.
type Ledger struct {
	db   *sql.DB
	path string
}

var _ driven.IngestLedger = (*Ledger)(nil)

// NewLedger opens (or creates) the ledger database at the given path
// and runs pending migrations.
func NewLedger(path string) (*Ledger, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: ledger path is required")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}

	l := &Ledger{
		db:   db,
		path: path,
	}

	// Run migrations
	if err := l.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return l, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Path returns the database file path.
func (l *Ledger) Path() string {
	return l.path
}

// migrate runs all pending migrations.
func (l *Ledger) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := l.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := l.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_ingest_ledger.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := l.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// Get returns the record for a source document.
// Returns domain.ErrNotFound if the document was never ingested.
func (l *Ledger) Get(ctx context.Context, source string) (domain.IngestRecord, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT source, checksum, fragments, ingested_at
		FROM ingest_records WHERE source = ?
	`, source)

	var record domain.IngestRecord
	var ingestedAt sql.NullTime
	if err := row.Scan(&record.Source, &record.Checksum, &record.Fragments, &ingestedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.IngestRecord{}, domain.ErrNotFound
		}
		return domain.IngestRecord{}, fmt.Errorf("scanning ingest record: %w", err)
	}
	if ingestedAt.Valid {
		record.IngestedAt = ingestedAt.Time
	}

	return record, nil
}

// Save writes or replaces the record for a source document.
func (l *Ledger) Save(ctx context.Context, record domain.IngestRecord) error {
	if record.IngestedAt.IsZero() {
		record.IngestedAt = time.Now().UTC()
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO ingest_records (source, checksum, fragments, ingested_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET
			checksum = excluded.checksum,
			fragments = excluded.fragments,
			ingested_at = excluded.ingested_at
	`, record.Source, record.Checksum, record.Fragments, record.IngestedAt)
	if err != nil {
		return fmt.Errorf("saving ingest record: %w", err)
	}
	return nil
}

// List returns all records, ordered by source.
func (l *Ledger) List(ctx context.Context) ([]domain.IngestRecord, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT source, checksum, fragments, ingested_at
		FROM ingest_records ORDER BY source
	`)
	if err != nil {
		return nil, fmt.Errorf("querying ingest records: %w", err)
	}
	defer rows.Close()

	var records []domain.IngestRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var record domain.IngestRecord
		var ingestedAt sql.NullTime
		if err := rows.Scan(&record.Source, &record.Checksum, &record.Fragments, &ingestedAt); err != nil {
			return nil, fmt.Errorf("scanning ingest record: %w", err)
		}
		if ingestedAt.Valid {
			record.IngestedAt = ingestedAt.Time
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ingest records: %w", err)
	}

	return records, nil
}

// Delete removes the record for a source document.
func (l *Ledger) Delete(ctx context.Context, source string) error {
	_, err := l.db.ExecContext(ctx, "DELETE FROM ingest_records WHERE source = ?", source)
	if err != nil {
		return fmt.Errorf("deleting ingest record: %w", err)
	}
	return nil
}

// Reset removes all records. Used when the collection is recreated.
func (l *Ledger) Reset(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, "DELETE FROM ingest_records")
	if err != nil {
		return fmt.Errorf("resetting ingest ledger: %w", err)
	}
	return nil
}
