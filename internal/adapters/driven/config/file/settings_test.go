package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobforge/jobforge/internal/core/domain"
	"github.com/jobforge/jobforge/internal/core/ports/driven"
)

// clearEnv neutralises the environment overrides so tests only see the
// values they set themselves.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"OPENAI_API_KEY", "OPENAI_MODEL", "HUGGINGFACE_API_KEY",
		"EMBEDDING_MODEL", "RERANKER_MODEL", "QDRANT_URL", "QDRANT_API_KEY",
		"QDRANT_COLLECTION", "LANGFUSE_HOST", "LANGFUSE_PUBLIC_KEY",
		"LANGFUSE_SECRET_KEY", "DATA_DIR", "CHUNK_SIZE", "CHUNK_OVERLAP",
	} {
		t.Setenv(name, "")
	}
}

func newTestSettingsStore(t *testing.T) *SettingsStore {
	t.Helper()
	store, err := NewSettingsStore(filepath.Join(t.TempDir(), "jobforge.toml"))
	require.NoError(t, err)
	return store
}

func TestSettingsStore_ImplementsInterface(t *testing.T) {
	var _ driven.SettingsStore = (*SettingsStore)(nil)
}

func TestNewSettingsStore_DefaultPath(t *testing.T) {
	store, err := NewSettingsStore("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettingsFile, store.Path())
}

func TestNewSettingsStore_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config", "jobforge.toml")
	store, err := NewSettingsStore(path)
	require.NoError(t, err)
	assert.Equal(t, path, store.Path())

	_, err = os.Stat(filepath.Dir(path))
	assert.NoError(t, err)
}

func TestSettingsStore_Load_MissingFileYieldsDefaults(t *testing.T) {
	clearEnv(t)
	store := newTestSettingsStore(t)

	settings, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultAppSettings(), settings)
}

func TestSettingsStore_SaveAndLoadRoundtrip(t *testing.T) {
	clearEnv(t)
	store := newTestSettingsStore(t)

	settings := domain.DefaultAppSettings()
	settings.Server.Addr = ":9000"
	settings.Server.RequestTimeout = 45 * time.Second
	settings.Store.URL = "http://qdrant.internal:6333"
	settings.Store.APIKey = "qd-key"
	settings.HuggingFace.APIKey = "hf-key"
	settings.LLM.APIKey = "sk-test"
	settings.LLM.Temperature = 0.2
	settings.Langfuse.Enabled = true
	settings.Langfuse.PublicKey = "pk"
	settings.Langfuse.SecretKey = "sk"
	settings.Retrieval.SearchLimit = 50
	settings.Ingest.DataDir = "knowledge"
	settings.Logging.Format = "json"
	settings.PromptsPath = "custom/prompts"

	require.NoError(t, store.Save(settings))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, settings, loaded)
}

func TestSettingsStore_Load_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	store := newTestSettingsStore(t)

	content := `
[server]
request_timeout = "30s"

[llm]
api_key = "sk-from-file"
model = "gpt-4o"

[retrieval]
search_limit = 40
`
	require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0600))

	settings, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, settings.Server.RequestTimeout)
	assert.Equal(t, "sk-from-file", settings.LLM.APIKey)
	assert.Equal(t, "gpt-4o", settings.LLM.Model)
	assert.Equal(t, 40, settings.Retrieval.SearchLimit)

	// Untouched keys keep their defaults.
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Server.Addr, settings.Server.Addr)
	assert.Equal(t, defaults.Store.URL, settings.Store.URL)
	assert.Equal(t, defaults.Retrieval.ScoreThreshold, settings.Retrieval.ScoreThreshold)
	assert.Equal(t, defaults.Ingest.ChunkSize, settings.Ingest.ChunkSize)
}

func TestSettingsStore_Load_MalformedFile(t *testing.T) {
	clearEnv(t)
	store := newTestSettingsStore(t)

	require.NoError(t, os.WriteFile(store.Path(), []byte("not [valid toml"), 0600))

	_, err := store.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing")
}

func TestSettingsStore_Load_InvalidTimeout(t *testing.T) {
	clearEnv(t)
	store := newTestSettingsStore(t)

	content := `
[server]
request_timeout = "not-a-duration"
`
	require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0600))

	_, err := store.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request_timeout")
}

func TestSettingsStore_Load_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	store := newTestSettingsStore(t)

	content := `
[llm]
api_key = "sk-from-file"

[store]
url = "http://file.example:6333"
`
	require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0600))

	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	t.Setenv("QDRANT_URL", "http://env.example:6333")

	settings, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-from-env", settings.LLM.APIKey)
	assert.Equal(t, "http://env.example:6333", settings.Store.URL)
}

func TestSettingsStore_Load_EnvKeysEnableLangfuse(t *testing.T) {
	clearEnv(t)
	store := newTestSettingsStore(t)

	t.Setenv("LANGFUSE_PUBLIC_KEY", "pk-lf")
	t.Setenv("LANGFUSE_SECRET_KEY", "sk-lf")

	settings, err := store.Load()
	require.NoError(t, err)

	assert.True(t, settings.Langfuse.Enabled)
	assert.True(t, settings.Langfuse.IsConfigured())
	assert.Equal(t, "pk-lf", settings.Langfuse.PublicKey)
}

func TestSettingsStore_Load_PublicKeyAloneDoesNotEnableLangfuse(t *testing.T) {
	clearEnv(t)
	store := newTestSettingsStore(t)

	t.Setenv("LANGFUSE_PUBLIC_KEY", "pk-lf")

	settings, err := store.Load()
	require.NoError(t, err)

	assert.False(t, settings.Langfuse.Enabled)
	assert.False(t, settings.Langfuse.IsConfigured())
}

func TestSettingsStore_Load_InvalidNumericEnv(t *testing.T) {
	clearEnv(t)
	store := newTestSettingsStore(t)

	t.Setenv("CHUNK_SIZE", "four hundred")

	_, err := store.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHUNK_SIZE")
}

func TestSettingsStore_Save_RestrictsPermissions(t *testing.T) {
	clearEnv(t)
	store := newTestSettingsStore(t)

	require.NoError(t, store.Save(domain.DefaultAppSettings()))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
