package file

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// PromptWatcher clears the prompt cache whenever a prompt file changes
// on disk, so a running server picks up edits without a restart.
type PromptWatcher struct {
	store   *PromptStore
	watcher *fsnotify.Watcher
	log     *slog.Logger
	done    chan struct{}
}

// NewPromptWatcher watches the store's prompt directory. The directory
// is created if it does not exist yet.
func NewPromptWatcher(store *PromptStore, log *slog.Logger) (*PromptWatcher, error) {
	if store == nil {
		return nil, fmt.Errorf("promptwatch: store is required")
	}
	if log == nil {
		log = slog.Default()
	}

	if err := os.MkdirAll(store.Dir(), 0700); err != nil {
		return nil, fmt.Errorf("create prompt directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(store.Dir()); err != nil {
		watcher.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("watch %s: %w", store.Dir(), err)
	}

	pw := &PromptWatcher{
		store:   store,
		watcher: watcher,
		log:     log.With("component", "promptwatch"),
		done:    make(chan struct{}),
	}
	go pw.run()
	return pw, nil
}

func (pw *PromptWatcher) run() {
	defer close(pw.done)
	for {
		select {
		case event, ok := <-pw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !strings.HasSuffix(event.Name, ".txt") {
				continue
			}
			pw.store.Reload()
			pw.log.Info("prompt files changed, cache cleared", "file", filepath.Base(event.Name))
		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return
			}
			pw.log.Warn("prompt watcher error", "error", err)
		}
	}
}

// Close stops watching and waits for the event loop to exit.
func (pw *PromptWatcher) Close() error {
	err := pw.watcher.Close()
	<-pw.done
	return err
}
