package domain

import "time"

// IngestOptions controls an ingestion run.
type IngestOptions struct {
	// Recreate drops and rebuilds the collection before ingesting.
	// All previously stored fragments are lost.
	Recreate bool

	// Force re-ingests documents even when their checksum is unchanged.
	Force bool
}

// IngestRecord tracks one ingested source document in the ledger.
// The checksum decides whether a later run can skip the document.
type IngestRecord struct {
	// Source is the document identifier (file name relative to the data dir).
	Source string

	// Checksum is the SHA-256 of the document content at ingestion time.
	Checksum string

	// Fragments is how many fragments the document produced.
	Fragments int

	// IngestedAt is when the document was last ingested.
	IngestedAt time.Time
}

// IngestAction describes what an ingestion run did with one document.
type IngestAction string

// Ingest actions.
const (
	// IngestActionIngested means the document was chunked and upserted.
	IngestActionIngested IngestAction = "ingested"

	// IngestActionSkipped means the document was unchanged since the last run.
	IngestActionSkipped IngestAction = "skipped"

	// IngestActionFailed means the document could not be ingested.
	IngestActionFailed IngestAction = "failed"
)

// IngestReport is the per-document outcome of an ingestion run.
type IngestReport struct {
	// Source is the document identifier.
	Source string

	// Action is what happened to the document.
	Action IngestAction

	// Fragments is how many fragments were produced (ingested only).
	Fragments int

	// Err holds the failure, if any.
	Err error
}
