package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jobforge/jobforge/internal/core/domain"
	"github.com/jobforge/jobforge/internal/core/ports/driven"
	"github.com/jobforge/jobforge/internal/core/ports/driving"
)

// Ensure IngestService implements the interface.
var _ driving.IngestOrchestrator = (*IngestService)(nil)

// IngestService loads knowledge-base documents into the fragment store.
// Documents are extracted to text, chunked, upserted, and recorded in
// the ledger so later runs skip unchanged files.
type IngestService struct {
	store      driven.FragmentStore
	chunker    driven.Chunker
	ledger     driven.IngestLedger
	extractors map[string]driven.TextExtractor
	log        *slog.Logger
}

// NewIngestService creates an ingest orchestrator. The extractors decide
// which file extensions ingestion accepts.
// The ledger is optional: without it every run re-ingests all documents.
// A nil logger falls back to slog.Default.
func NewIngestService(
	store driven.FragmentStore,
	chunker driven.Chunker,
	ledger driven.IngestLedger,
	extractors []driven.TextExtractor,
	log *slog.Logger,
) *IngestService {
	if log == nil {
		log = slog.Default()
	}
	byExt := make(map[string]driven.TextExtractor)
	for _, e := range extractors {
		for _, ext := range e.Extensions() {
			byExt[strings.ToLower(ext)] = e
		}
	}
	return &IngestService{
		store:      store,
		chunker:    chunker,
		ledger:     ledger,
		extractors: byExt,
		log:        log.With("component", "ingest"),
	}
}

// IngestDir chunks and stores every supported document under dir.
//
// Per-document failures do not stop the run; they surface in the
// returned reports. The returned error covers setup failures only
// (unreachable store, unreadable directory).
func (s *IngestService) IngestDir(
	ctx context.Context, dir string, opts domain.IngestOptions,
) ([]domain.IngestReport, error) {
	// 1. Prepare the collection.
	if err := s.store.EnsureReady(ctx, opts.Recreate); err != nil {
		return nil, fmt.Errorf("prepare fragment store: %w", err)
	}

	// 2. A recreated collection invalidates every ledger entry.
	if opts.Recreate && s.ledger != nil {
		if err := s.ledger.Reset(ctx); err != nil {
			return nil, fmt.Errorf("reset ingest ledger: %w", err)
		}
	}

	// 3. Collect candidate documents.
	paths, err := s.collectDocuments(dir)
	if err != nil {
		return nil, fmt.Errorf("scan data dir: %w", err)
	}

	s.log.Info("ingestion started", "dir", dir, "documents", len(paths), "recreate", opts.Recreate)

	// 4. Ingest each document, isolating failures.
	reports := make([]domain.IngestReport, 0, len(paths))
	for _, path := range paths {
		if ctx.Err() != nil {
			return reports, ctx.Err()
		}

		source, err := filepath.Rel(dir, path)
		if err != nil {
			source = filepath.Base(path)
		}
		source = filepath.ToSlash(source)

		reports = append(reports, s.ingestOne(ctx, path, source, opts))
	}

	var ingested, skipped, failed int
	for _, r := range reports {
		switch r.Action {
		case domain.IngestActionIngested:
			ingested++
		case domain.IngestActionSkipped:
			skipped++
		case domain.IngestActionFailed:
			failed++
		}
	}
	s.log.Info("ingestion completed", "ingested", ingested, "skipped", skipped, "failed", failed)

	return reports, nil
}

// IngestFile chunks and stores a single document.
func (s *IngestService) IngestFile(
	ctx context.Context, path string, opts domain.IngestOptions,
) (domain.IngestReport, error) {
	if err := s.store.EnsureReady(ctx, opts.Recreate); err != nil {
		return domain.IngestReport{}, fmt.Errorf("prepare fragment store: %w", err)
	}
	if opts.Recreate && s.ledger != nil {
		if err := s.ledger.Reset(ctx); err != nil {
			return domain.IngestReport{}, fmt.Errorf("reset ingest ledger: %w", err)
		}
	}

	report := s.ingestOne(ctx, path, filepath.Base(path), opts)
	return report, nil
}

// ingestOne runs the per-document pipeline: read, checksum, skip check,
// extract, chunk, upsert, record.
func (s *IngestService) ingestOne(
	ctx context.Context, path, source string, opts domain.IngestOptions,
) domain.IngestReport {
	fail := func(err error) domain.IngestReport {
		s.log.Warn("document ingestion failed", "source", source, "error", err)
		return domain.IngestReport{Source: source, Action: domain.IngestActionFailed, Err: err}
	}

	ext := strings.ToLower(filepath.Ext(path))
	extractor, ok := s.extractors[ext]
	if !ok {
		return fail(fmt.Errorf("unsupported document type %q: %w", ext, domain.ErrInvalidInput))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fail(fmt.Errorf("read document: %w", err))
	}

	// Checksums cover the raw bytes, not the extracted text.
	sum := sha256.Sum256(content)
	checksum := hex.EncodeToString(sum[:])

	// Skip unchanged documents unless forced.
	if !opts.Force && s.ledger != nil {
		record, err := s.ledger.Get(ctx, source)
		switch {
		case err == nil && record.Checksum == checksum:
			s.log.Debug("document unchanged, skipping", "source", source)
			return domain.IngestReport{
				Source:    source,
				Action:    domain.IngestActionSkipped,
				Fragments: record.Fragments,
			}
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return fail(fmt.Errorf("read ingest ledger: %w", err))
		}
	}

	text, err := extractor.Extract(content)
	if err != nil {
		return fail(fmt.Errorf("extract text: %w", err))
	}

	fragments := s.chunker.Chunk(text, source)
	if len(fragments) > 0 {
		if err := s.store.Upsert(ctx, fragments); err != nil {
			return fail(fmt.Errorf("upsert fragments: %w", err))
		}
	}

	if s.ledger != nil {
		record := domain.IngestRecord{
			Source:     source,
			Checksum:   checksum,
			Fragments:  len(fragments),
			IngestedAt: time.Now().UTC(),
		}
		if err := s.ledger.Save(ctx, record); err != nil {
			// The document is already stored; a stale ledger only costs
			// a redundant re-ingest next run.
			s.log.Warn("saving ingest record failed", "source", source, "error", err)
		}
	}

	s.log.Info("document ingested", "source", source, "fragments", len(fragments))

	return domain.IngestReport{
		Source:    source,
		Action:    domain.IngestActionIngested,
		Fragments: len(fragments),
	}
}

// collectDocuments walks dir and returns paths an extractor claims, in
// lexical order. Hidden directories are skipped.
func (s *IngestService) collectDocuments(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := s.extractors[strings.ToLower(filepath.Ext(path))]; ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
