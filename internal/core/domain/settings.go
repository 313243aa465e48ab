package domain

import "time"

// Default model and endpoint choices. These mirror the models the
// knowledge base was tuned against; all of them can be overridden
// in the settings file.
const (
	// DefaultLLMModel is the chat model used for analysis and writing.
	DefaultLLMModel = "gpt-4o-mini"

	// DefaultEmbeddingModel is the multilingual embedding model.
	DefaultEmbeddingModel = "intfloat/multilingual-e5-base"

	// DefaultRerankerModel is the cross-encoder reranking model.
	DefaultRerankerModel = "BAAI/bge-reranker-base"

	// DefaultLangfuseHost is the hosted Langfuse endpoint.
	DefaultLangfuseHost = "https://cloud.langfuse.com"

	// DefaultCollection is the vector store collection name.
	DefaultCollection = "user_info"
)

// Retrieval defaults. Broad recall first, precision via reranking.
const (
	// DefaultSearchLimit is the candidate count fetched from the store.
	DefaultSearchLimit = 25

	// DefaultScoreThreshold filters out weak similarity matches.
	DefaultScoreThreshold = 0.3

	// DefaultRerankTopK is the number of fragments kept after reranking.
	DefaultRerankTopK = 10
)

// Ingestion defaults.
const (
	// DefaultChunkSize is the target chunk size in characters.
	DefaultChunkSize = 400

	// DefaultChunkOverlap is the overlap between consecutive sub-chunks.
	DefaultChunkOverlap = 50

	// DefaultDataDir is where knowledge-base documents live.
	DefaultDataDir = "data"
)

// ServerSettings holds HTTP transport configuration.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string

	// RequestTimeout bounds a single generation request end to end.
	RequestTimeout time.Duration
}

// StoreSettings holds vector store (Qdrant) configuration.
type StoreSettings struct {
	// URL is the Qdrant base URL.
	URL string

	// APIKey authenticates against a managed Qdrant instance.
	// Empty for local unauthenticated instances.
	APIKey string

	// Collection is the collection holding the knowledge base.
	Collection string
}

// IsConfigured returns true if the store can be reached.
func (s StoreSettings) IsConfigured() bool {
	return s.URL != "" && s.Collection != ""
}

// HuggingFaceSettings holds Inference API configuration shared by the
// embedding and reranking clients.
type HuggingFaceSettings struct {
	// APIKey is the Inference API token.
	APIKey string

	// BaseURL is the Inference API endpoint.
	BaseURL string

	// EmbeddingModel is the feature-extraction model.
	EmbeddingModel string

	// RerankerModel is the sentence-similarity cross-encoder.
	RerankerModel string

	// Dimensions overrides the embedding vector size for models
	// missing from the known-dimensions table. Zero means lookup.
	Dimensions int
}

// IsConfigured returns true if the Inference API is usable.
func (h HuggingFaceSettings) IsConfigured() bool {
	return h.APIKey != ""
}

// LLMSettings holds chat-completion provider configuration for the
// analyzer and the content writers.
type LLMSettings struct {
	// APIKey is the provider API key.
	APIKey string

	// Model is the chat model name.
	Model string

	// BaseURL is the API endpoint. Empty selects the provider default.
	BaseURL string

	// Temperature controls sampling. Writers want some variation;
	// the analyzer runs at a lower value set in code.
	Temperature float64
}

// IsConfigured returns true if the LLM provider is usable.
func (l LLMSettings) IsConfigured() bool {
	return l.APIKey != ""
}

// LangfuseSettings holds observability backend configuration.
type LangfuseSettings struct {
	// Enabled switches tracing on. When false the no-op tracer is used.
	Enabled bool

	// Host is the Langfuse base URL.
	Host string

	// PublicKey is the Langfuse project public key.
	PublicKey string

	// SecretKey is the Langfuse project secret key.
	SecretKey string
}

// IsConfigured returns true if tracing can actually reach a backend.
func (l LangfuseSettings) IsConfigured() bool {
	return l.Enabled && l.PublicKey != "" && l.SecretKey != ""
}

// RetrievalSettings holds the knobs of the retrieval funnel.
type RetrievalSettings struct {
	// SearchLimit is the broad-recall candidate count.
	SearchLimit int

	// ScoreThreshold is the minimum similarity score for candidates.
	ScoreThreshold float64

	// RerankTopK bounds the fragments kept after reranking.
	RerankTopK int
}

// IngestSettings holds knowledge-base ingestion configuration.
type IngestSettings struct {
	// DataDir is the directory scanned for knowledge-base documents.
	DataDir string

	// LedgerPath is the SQLite file tracking ingested documents.
	// Empty disables incremental ingestion (every run re-ingests).
	LedgerPath string

	// ChunkSize is the target chunk size in characters.
	ChunkSize int

	// ChunkOverlap is the overlap between consecutive sub-chunks.
	ChunkOverlap int
}

// LoggingSettings holds log output configuration.
type LoggingSettings struct {
	// Level is the minimum level: "debug", "info", "warn", "error".
	Level string

	// Format is "text" or "json".
	Format string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Server holds HTTP transport settings.
	Server ServerSettings

	// Store holds vector store settings.
	Store StoreSettings

	// HuggingFace holds embedding and reranker API settings.
	HuggingFace HuggingFaceSettings

	// LLM holds analyzer/writer provider settings.
	LLM LLMSettings

	// Langfuse holds observability settings.
	Langfuse LangfuseSettings

	// Retrieval holds the retrieval funnel knobs.
	Retrieval RetrievalSettings

	// Ingest holds ingestion settings.
	Ingest IngestSettings

	// Logging holds log output settings.
	Logging LoggingSettings

	// PromptsPath points to the directory of prompt files.
	// Empty uses the built-in prompts without touching disk.
	PromptsPath string

	// CategoriesPath points to the YAML context category rules.
	// Empty uses the embedded defaults.
	CategoriesPath string
}

// DefaultAppSettings returns settings with working defaults.
// API keys are left empty and must come from the settings file
// or environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Server: ServerSettings{
			Addr:           ":8000",
			RequestTimeout: 120 * time.Second,
		},
		Store: StoreSettings{
			URL:        "http://localhost:6333",
			Collection: DefaultCollection,
		},
		HuggingFace: HuggingFaceSettings{
			BaseURL:        "https://api-inference.huggingface.co",
			EmbeddingModel: DefaultEmbeddingModel,
			RerankerModel:  DefaultRerankerModel,
		},
		LLM: LLMSettings{
			Model:       DefaultLLMModel,
			Temperature: 0.7,
		},
		Langfuse: LangfuseSettings{
			Host: DefaultLangfuseHost,
		},
		Retrieval: RetrievalSettings{
			SearchLimit:    DefaultSearchLimit,
			ScoreThreshold: DefaultScoreThreshold,
			RerankTopK:     DefaultRerankTopK,
		},
		Ingest: IngestSettings{
			DataDir:      DefaultDataDir,
			LedgerPath:   "jobforge.db",
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
		},
		Logging: LoggingSettings{
			Level:  "info",
			Format: "text",
		},
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"intfloat/multilingual-e5-base":          768,
		"intfloat/multilingual-e5-large":         1024,
		"sentence-transformers/all-MiniLM-L6-v2": 384,
		"BAAI/bge-base-en-v1.5":                  768,
		"BAAI/bge-large-en-v1.5":                 1024,
	}
}
