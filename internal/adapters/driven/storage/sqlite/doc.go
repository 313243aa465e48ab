// Package sqlite provides the SQLite-backed ingest ledger.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. It implements the
// driven.IngestLedger interface: one row per ingested document, recording
// the content checksum and fragment count so unchanged documents are
// skipped on later ingest runs.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// The database path comes from the ingest.ledger_path setting, resolved by
// the settings store like every other path.
//
// # Thread Safety
//
// All operations are thread-safe. The ledger uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
