// Package cli wires the application together and exposes it as a set of
// cobra commands. Adapters are constructed once per process from the
// effective settings; commands whose service is missing an API key
// report what is unconfigured instead of failing deep in a request.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jobforge/jobforge/internal/adapters/driven/ai/openai"
	"github.com/jobforge/jobforge/internal/adapters/driven/config/file"
	hfembed "github.com/jobforge/jobforge/internal/adapters/driven/embedding/huggingface"
	"github.com/jobforge/jobforge/internal/adapters/driven/observability/langfuse"
	"github.com/jobforge/jobforge/internal/adapters/driven/observability/noop"
	hfrerank "github.com/jobforge/jobforge/internal/adapters/driven/reranker/huggingface"
	"github.com/jobforge/jobforge/internal/adapters/driven/storage/sqlite"
	"github.com/jobforge/jobforge/internal/adapters/driven/vectorstore/qdrant"
	"github.com/jobforge/jobforge/internal/chunker"
	"github.com/jobforge/jobforge/internal/core/domain"
	"github.com/jobforge/jobforge/internal/core/ports/driven"
	"github.com/jobforge/jobforge/internal/core/ports/driving"
	"github.com/jobforge/jobforge/internal/core/services"
	"github.com/jobforge/jobforge/internal/extract"
	"github.com/jobforge/jobforge/internal/logger"
)

// version is set via ldflags at release build time.
var version = "dev"

// Persistent flags.
var (
	cfgFile string
	verbose bool
)

// Runtime state assembled by initRuntime. Commands check for nil
// services and report missing configuration; tests inject mocks here.
var (
	settingsStore *file.SettingsStore
	settings      domain.AppSettings
	log           *slog.Logger

	fragmentStore driven.FragmentStore
	promptStore   driven.PromptStore
	promptFiles   *file.PromptStore
	tracer        driven.Tracer
	ingestLedger  driven.IngestLedger

	generationService driving.GenerationService
	ingestService     driving.IngestOrchestrator

	wired bool
)

var rootCmd = &cobra.Command{
	Use:   "jobforge",
	Short: "Generate job application content from your own knowledge base",
	Long: `JobForge turns a job posting into an application email, a LinkedIn
message, or a cover letter, grounded in your own documents.

A posting is analysed, matching fragments are retrieved from the vector
store and reranked, and the selected fragments feed the writing model.
Load your documents first with 'jobforge ingest', then generate from the
CLI or run 'jobforge serve' for the HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initRuntime()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "settings file (default jobforge.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// Execute runs the root command and returns the process exit code.
// Pending traces are flushed and stores closed before returning.
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	closeRuntime()
	if err != nil {
		return 1
	}
	return 0
}

// initRuntime loads settings, builds the logger, and wires every adapter
// the configuration allows. Idempotent; tests pre-set wired to inject
// their own services.
func initRuntime() error {
	if wired {
		return nil
	}

	// A .env file is optional; the environment may already be set.
	_ = godotenv.Load() //nolint:errcheck

	store, err := file.NewSettingsStore(cfgFile)
	if err != nil {
		return fmt.Errorf("settings store: %w", err)
	}
	settingsStore = store

	settings, err = settingsStore.Load()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if verbose {
		settings.Logging.Level = "debug"
	}

	log = logger.New(settings.Logging)
	slog.SetDefault(log)

	if err := wireServices(); err != nil {
		return err
	}

	wired = true
	return nil
}

// wireServices constructs the adapter graph. Pieces whose configuration
// is absent stay nil; only a configured-but-broken adapter is an error.
//
//nolint:gocyclo // Composition root, sequential construction
func wireServices() error {
	if settings.Langfuse.IsConfigured() {
		lf, err := langfuse.NewTracer(langfuse.Config{
			BaseURL:   settings.Langfuse.Host,
			PublicKey: settings.Langfuse.PublicKey,
			SecretKey: settings.Langfuse.SecretKey,
		}, log)
		if err != nil {
			return fmt.Errorf("langfuse tracer: %w", err)
		}
		tracer = lf
	} else {
		tracer = noop.NewTracer()
	}

	if settings.PromptsPath != "" {
		ps, err := file.NewPromptStore(settings.PromptsPath, openai.DefaultPrompts())
		if err != nil {
			return fmt.Errorf("prompt store: %w", err)
		}
		promptStore = ps
		promptFiles = ps
	}

	categories, err := file.LoadCategories(settings.CategoriesPath)
	if err != nil {
		return fmt.Errorf("category rules: %w", err)
	}
	builder := services.NewContextBuilder(categories, log)

	if settings.Ingest.LedgerPath != "" {
		ledger, err := sqlite.NewLedger(settings.Ingest.LedgerPath)
		if err != nil {
			return fmt.Errorf("ingest ledger: %w", err)
		}
		ingestLedger = ledger
	}

	var reranker driven.Reranker
	if settings.HuggingFace.IsConfigured() {
		embedder, err := hfembed.NewEmbeddingService(hfembed.Config{
			APIKey:     settings.HuggingFace.APIKey,
			BaseURL:    settings.HuggingFace.BaseURL,
			Model:      settings.HuggingFace.EmbeddingModel,
			Dimensions: settings.HuggingFace.Dimensions,
		})
		if err != nil {
			return fmt.Errorf("embedding service: %w", err)
		}

		qs, err := qdrant.New(qdrant.Config{
			BaseURL:    settings.Store.URL,
			APIKey:     settings.Store.APIKey,
			Collection: settings.Store.Collection,
		}, embedder)
		if err != nil {
			return fmt.Errorf("fragment store: %w", err)
		}
		fragmentStore = qs

		reranker, err = hfrerank.New(hfrerank.Config{
			APIKey:  settings.HuggingFace.APIKey,
			BaseURL: settings.HuggingFace.BaseURL,
			Model:   settings.HuggingFace.RerankerModel,
		})
		if err != nil {
			return fmt.Errorf("reranker: %w", err)
		}
	}

	if fragmentStore != nil {
		chk := chunker.New(
			chunker.WithChunkSize(settings.Ingest.ChunkSize),
			chunker.WithOverlap(settings.Ingest.ChunkOverlap),
		)
		ingestService = services.NewIngestService(fragmentStore, chk, ingestLedger, extract.Default(), log)
	}

	if settings.LLM.IsConfigured() && fragmentStore != nil && reranker != nil {
		client, err := openai.NewClient(openai.Config{
			APIKey:      settings.LLM.APIKey,
			BaseURL:     settings.LLM.BaseURL,
			Model:       settings.LLM.Model,
			Temperature: settings.LLM.Temperature,
		})
		if err != nil {
			return fmt.Errorf("llm client: %w", err)
		}

		analyzer, err := openai.NewAnalyzer(client, promptStore)
		if err != nil {
			return fmt.Errorf("analyzer: %w", err)
		}

		writers := make([]driven.ContentWriter, 0, len(domain.AllContentTypes()))
		for _, ct := range domain.AllContentTypes() {
			w, err := openai.NewWriter(client, promptStore, ct)
			if err != nil {
				return fmt.Errorf("%s writer: %w", ct.String(), err)
			}
			writers = append(writers, w)
		}

		generationService = services.NewGenerationService(
			analyzer,
			fragmentStore,
			reranker,
			writers,
			builder,
			tracer,
			services.GenerationConfig{
				SearchLimit:    settings.Retrieval.SearchLimit,
				ScoreThreshold: settings.Retrieval.ScoreThreshold,
				RerankTopK:     settings.Retrieval.RerankTopK,
				Query:          services.DefaultQueryOptions(),
			},
			log,
		)
	}

	return nil
}

// closeRuntime flushes traces and releases adapter resources.
func closeRuntime() {
	if tracer != nil {
		if err := tracer.Close(); err != nil && log != nil {
			log.Warn("tracer close failed", "error", err)
		}
	}
	if fragmentStore != nil {
		if err := fragmentStore.Close(); err != nil && log != nil {
			log.Warn("fragment store close failed", "error", err)
		}
	}
	if ingestLedger != nil {
		if err := ingestLedger.Close(); err != nil && log != nil {
			log.Warn("ingest ledger close failed", "error", err)
		}
	}
}

// configHints names the settings the disabled services are waiting for.
func configHints() string {
	var missing []string
	if !settings.LLM.IsConfigured() {
		missing = append(missing, "llm.api_key (OPENAI_API_KEY)")
	}
	if !settings.HuggingFace.IsConfigured() {
		missing = append(missing, "huggingface.api_key (HUGGINGFACE_API_KEY)")
	}
	if !settings.Store.IsConfigured() {
		missing = append(missing, "store.url (QDRANT_URL)")
	}
	if len(missing) == 0 {
		return ""
	}
	return "missing " + strings.Join(missing, ", ")
}
