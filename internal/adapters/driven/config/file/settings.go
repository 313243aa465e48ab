package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jobforge/jobforge/internal/core/domain"
	"github.com/jobforge/jobforge/internal/core/ports/driven"
)

// Ensure SettingsStore implements the interface.
var _ driven.SettingsStore = (*SettingsStore)(nil)

// DefaultSettingsFile is the settings file name used when no path is given.
const DefaultSettingsFile = "jobforge.toml"

// SettingsStore is a TOML-based implementation of driven.SettingsStore.
// A missing file yields the application defaults; environment variables
// override both defaults and file values, so a plain .env setup works
// without any TOML file.
type SettingsStore struct {
	filePath string
}

// fileSettings mirrors domain.AppSettings with TOML tags. The wire
// struct keeps serialization tags out of the domain package.
type fileSettings struct {
	Server struct {
		Addr           string `toml:"addr"`
		RequestTimeout string `toml:"request_timeout"`
	} `toml:"server"`

	Store struct {
		URL        string `toml:"url"`
		APIKey     string `toml:"api_key"`
		Collection string `toml:"collection"`
	} `toml:"store"`

	HuggingFace struct {
		APIKey         string `toml:"api_key"`
		BaseURL        string `toml:"base_url"`
		EmbeddingModel string `toml:"embedding_model"`
		RerankerModel  string `toml:"reranker_model"`
		Dimensions     int    `toml:"dimensions"`
	} `toml:"huggingface"`

	LLM struct {
		APIKey      string  `toml:"api_key"`
		Model       string  `toml:"model"`
		BaseURL     string  `toml:"base_url"`
		Temperature float64 `toml:"temperature"`
	} `toml:"llm"`

	Langfuse struct {
		Enabled   bool   `toml:"enabled"`
		Host      string `toml:"host"`
		PublicKey string `toml:"public_key"`
		SecretKey string `toml:"secret_key"`
	} `toml:"langfuse"`

	Retrieval struct {
		SearchLimit    int     `toml:"search_limit"`
		ScoreThreshold float64 `toml:"score_threshold"`
		RerankTopK     int     `toml:"rerank_top_k"`
	} `toml:"retrieval"`

	Ingest struct {
		DataDir      string `toml:"data_dir"`
		LedgerPath   string `toml:"ledger_path"`
		ChunkSize    int    `toml:"chunk_size"`
		ChunkOverlap int    `toml:"chunk_overlap"`
	} `toml:"ingest"`

	Logging struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"logging"`

	PromptsPath    string `toml:"prompts_path"`
	CategoriesPath string `toml:"categories_path"`
}

// NewSettingsStore creates a TOML-based settings store.
// If path is empty, defaults to jobforge.toml in the working directory.
func NewSettingsStore(path string) (*SettingsStore, error) {
	if path == "" {
		path = DefaultSettingsFile
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating settings directory: %w", err)
		}
	}

	return &SettingsStore{filePath: path}, nil
}

// Load reads settings from the TOML file. A missing file yields
// defaults. Environment variables override file values.
func (s *SettingsStore) Load() (domain.AppSettings, error) {
	settings := domain.DefaultAppSettings()
	wire := wireFromDomain(settings)

	data, err := os.ReadFile(s.filePath)
	switch {
	case os.IsNotExist(err):
		// No settings file yet - defaults plus environment.
	case err != nil:
		return domain.AppSettings{}, fmt.Errorf("reading settings file: %w", err)
	default:
		if err := toml.Unmarshal(data, &wire); err != nil {
			return domain.AppSettings{}, fmt.Errorf("parsing %s: %w", s.filePath, err)
		}
	}

	settings, err = wire.toDomain()
	if err != nil {
		return domain.AppSettings{}, fmt.Errorf("parsing %s: %w", s.filePath, err)
	}

	if err := applyEnv(&settings); err != nil {
		return domain.AppSettings{}, err
	}

	return settings, nil
}

// Save persists the given settings to the TOML file.
func (s *SettingsStore) Save(settings domain.AppSettings) error {
	data, err := toml.Marshal(wireFromDomain(settings))
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	// Write with restricted permissions, the file may hold API keys
	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}

// Path returns the settings file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}

func wireFromDomain(settings domain.AppSettings) fileSettings {
	var wire fileSettings

	wire.Server.Addr = settings.Server.Addr
	wire.Server.RequestTimeout = settings.Server.RequestTimeout.String()

	wire.Store.URL = settings.Store.URL
	wire.Store.APIKey = settings.Store.APIKey
	wire.Store.Collection = settings.Store.Collection

	wire.HuggingFace.APIKey = settings.HuggingFace.APIKey
	wire.HuggingFace.BaseURL = settings.HuggingFace.BaseURL
	wire.HuggingFace.EmbeddingModel = settings.HuggingFace.EmbeddingModel
	wire.HuggingFace.RerankerModel = settings.HuggingFace.RerankerModel
	wire.HuggingFace.Dimensions = settings.HuggingFace.Dimensions

	wire.LLM.APIKey = settings.LLM.APIKey
	wire.LLM.Model = settings.LLM.Model
	wire.LLM.BaseURL = settings.LLM.BaseURL
	wire.LLM.Temperature = settings.LLM.Temperature

	wire.Langfuse.Enabled = settings.Langfuse.Enabled
	wire.Langfuse.Host = settings.Langfuse.Host
	wire.Langfuse.PublicKey = settings.Langfuse.PublicKey
	wire.Langfuse.SecretKey = settings.Langfuse.SecretKey

	wire.Retrieval.SearchLimit = settings.Retrieval.SearchLimit
	wire.Retrieval.ScoreThreshold = settings.Retrieval.ScoreThreshold
	wire.Retrieval.RerankTopK = settings.Retrieval.RerankTopK

	wire.Ingest.DataDir = settings.Ingest.DataDir
	wire.Ingest.LedgerPath = settings.Ingest.LedgerPath
	wire.Ingest.ChunkSize = settings.Ingest.ChunkSize
	wire.Ingest.ChunkOverlap = settings.Ingest.ChunkOverlap

	wire.Logging.Level = settings.Logging.Level
	wire.Logging.Format = settings.Logging.Format

	wire.PromptsPath = settings.PromptsPath
	wire.CategoriesPath = settings.CategoriesPath

	return wire
}

func (w fileSettings) toDomain() (domain.AppSettings, error) {
	timeout, err := time.ParseDuration(w.Server.RequestTimeout)
	if err != nil {
		return domain.AppSettings{}, fmt.Errorf("invalid server.request_timeout %q: %w", w.Server.RequestTimeout, err)
	}

	return domain.AppSettings{
		Server: domain.ServerSettings{
			Addr:           w.Server.Addr,
			RequestTimeout: timeout,
		},
		Store: domain.StoreSettings{
			URL:        w.Store.URL,
			APIKey:     w.Store.APIKey,
			Collection: w.Store.Collection,
		},
		HuggingFace: domain.HuggingFaceSettings{
			APIKey:         w.HuggingFace.APIKey,
			BaseURL:        w.HuggingFace.BaseURL,
			EmbeddingModel: w.HuggingFace.EmbeddingModel,
			RerankerModel:  w.HuggingFace.RerankerModel,
			Dimensions:     w.HuggingFace.Dimensions,
		},
		LLM: domain.LLMSettings{
			APIKey:      w.LLM.APIKey,
			Model:       w.LLM.Model,
			BaseURL:     w.LLM.BaseURL,
			Temperature: w.LLM.Temperature,
		},
		Langfuse: domain.LangfuseSettings{
			Enabled:   w.Langfuse.Enabled,
			Host:      w.Langfuse.Host,
			PublicKey: w.Langfuse.PublicKey,
			SecretKey: w.Langfuse.SecretKey,
		},
		Retrieval: domain.RetrievalSettings{
			SearchLimit:    w.Retrieval.SearchLimit,
			ScoreThreshold: w.Retrieval.ScoreThreshold,
			RerankTopK:     w.Retrieval.RerankTopK,
		},
		Ingest: domain.IngestSettings{
			DataDir:      w.Ingest.DataDir,
			LedgerPath:   w.Ingest.LedgerPath,
			ChunkSize:    w.Ingest.ChunkSize,
			ChunkOverlap: w.Ingest.ChunkOverlap,
		},
		Logging: domain.LoggingSettings{
			Level:  w.Logging.Level,
			Format: w.Logging.Format,
		},
		PromptsPath:    w.PromptsPath,
		CategoriesPath: w.CategoriesPath,
	}, nil
}

// applyEnv overrides settings from environment variables. The names
// match the .env keys the knowledge-base tooling has always used, so
// an existing .env keeps working without a TOML file.
func applyEnv(settings *domain.AppSettings) error {
	envString("OPENAI_API_KEY", &settings.LLM.APIKey)
	envString("OPENAI_MODEL", &settings.LLM.Model)
	envString("HUGGINGFACE_API_KEY", &settings.HuggingFace.APIKey)
	envString("EMBEDDING_MODEL", &settings.HuggingFace.EmbeddingModel)
	envString("RERANKER_MODEL", &settings.HuggingFace.RerankerModel)
	envString("QDRANT_URL", &settings.Store.URL)
	envString("QDRANT_API_KEY", &settings.Store.APIKey)
	envString("QDRANT_COLLECTION", &settings.Store.Collection)
	envString("LANGFUSE_HOST", &settings.Langfuse.Host)
	envString("DATA_DIR", &settings.Ingest.DataDir)

	if err := envInt("CHUNK_SIZE", &settings.Ingest.ChunkSize); err != nil {
		return err
	}
	if err := envInt("CHUNK_OVERLAP", &settings.Ingest.ChunkOverlap); err != nil {
		return err
	}

	// Langfuse keys arriving from the environment imply tracing is
	// wanted, matching the .env-driven setup.
	var gotPublic, gotSecret bool
	if v, ok := os.LookupEnv("LANGFUSE_PUBLIC_KEY"); ok && v != "" {
		settings.Langfuse.PublicKey = v
		gotPublic = true
	}
	if v, ok := os.LookupEnv("LANGFUSE_SECRET_KEY"); ok && v != "" {
		settings.Langfuse.SecretKey = v
		gotSecret = true
	}
	if gotPublic && gotSecret {
		settings.Langfuse.Enabled = true
	}

	return nil
}

func envString(name string, target *string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*target = v
	}
}

func envInt(name string, target *int) error {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	*target = n
	return nil
}
