package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobforge/jobforge/internal/core/ports/driven"
)

func TestNewPromptWatcher_RequiresStore(t *testing.T) {
	_, err := NewPromptWatcher(nil, nil)
	require.Error(t, err)
}

func TestPromptWatcher_ReloadsOnFileChange(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir, map[string]string{
		driven.PromptAnalyzerSystem: "original analyzer prompt",
	})
	require.NoError(t, err)

	// First load seeds the file and warms the cache.
	text, err := store.Load(driven.PromptAnalyzerSystem)
	require.NoError(t, err)
	require.Equal(t, "original analyzer prompt", text)

	watcher, err := NewPromptWatcher(store, nil)
	require.NoError(t, err)
	defer watcher.Close() //nolint:errcheck // test cleanup

	path := filepath.Join(dir, driven.PromptAnalyzerSystem+".txt")
	require.NoError(t, os.WriteFile(path, []byte("edited analyzer prompt"), 0600))

	require.Eventually(t, func() bool {
		current, loadErr := store.Load(driven.PromptAnalyzerSystem)
		return loadErr == nil && current == "edited analyzer prompt"
	}, 5*time.Second, 20*time.Millisecond, "cache should drop after the file changes")
}

func TestPromptWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir, map[string]string{
		driven.PromptAnalyzerSystem: "analyzer prompt",
	})
	require.NoError(t, err)

	_, err = store.Load(driven.PromptAnalyzerSystem)
	require.NoError(t, err)

	watcher, err := NewPromptWatcher(store, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.yaml"), []byte("x: 1"), 0600))

	// Give the event loop a beat, then confirm the cache survived.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, watcher.Close())

	store.mu.RLock()
	_, cached := store.cache[driven.PromptAnalyzerSystem]
	store.mu.RUnlock()
	assert.True(t, cached, "cache should survive unrelated file events")
}
