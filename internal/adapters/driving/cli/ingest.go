package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jobforge/jobforge/internal/core/domain"
)

var (
	ingestDataDir  string
	ingestRecreate bool
	ingestForce    bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load knowledge-base documents into the vector store",
	Long: `Chunks every supported document under the data directory and stores
the fragments in the vector store. Markdown and plain text are ingested
as-is; HTML, Word (.docx) and email (.eml) files are converted first.

Unchanged documents are skipped using the ingest ledger. Use --force to
re-ingest everything, or --recreate to rebuild the collection from
scratch (all stored fragments are lost).`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

var ingestStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what has been ingested",
	RunE:  runIngestStatus,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDataDir, "data-dir", "", "directory holding the documents (default from settings)")
	ingestCmd.Flags().BoolVar(&ingestRecreate, "recreate", false, "drop and rebuild the collection first")
	ingestCmd.Flags().BoolVar(&ingestForce, "force", false, "re-ingest documents even when unchanged")
	ingestCmd.AddCommand(ingestStatusCmd)
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return fmt.Errorf("ingestion not configured: %s", configHints())
	}

	dir := ingestDataDir
	if dir == "" {
		dir = settings.Ingest.DataDir
	}

	cmd.Printf("Ingesting documents from %s...\n\n", dir)

	reports, err := ingestService.IngestDir(cmd.Context(), dir, domain.IngestOptions{
		Recreate: ingestRecreate,
		Force:    ingestForce,
	})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if len(reports) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	printIngestReports(cmd, reports)

	for _, r := range reports {
		if r.Action == domain.IngestActionFailed {
			return errors.New("some documents failed to ingest")
		}
	}
	return nil
}

func runIngestStatus(cmd *cobra.Command, _ []string) error {
	if ingestLedger == nil {
		return errors.New("ingest ledger not configured (set ingest.ledger_path)")
	}

	records, err := ingestLedger.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("read ingest ledger: %w", err)
	}

	if len(records) == 0 {
		cmd.Println("Nothing ingested yet. Run 'jobforge ingest' to load documents.")
		return nil
	}

	cmd.Printf("Ingested documents (%d):\n\n", len(records))
	for _, rec := range records {
		cmd.Printf("  %s\n", rec.Source)
		cmd.Printf("    Fragments: %d\n", rec.Fragments)
		cmd.Printf("    Ingested:  %s\n", rec.IngestedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
