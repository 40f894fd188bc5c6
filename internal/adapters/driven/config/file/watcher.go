package file

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/thorr/internal/logger"
)

// PromptWatcher reloads a PromptStore when its prompt files change on disk.
type PromptWatcher struct {
	store *PromptStore
}

// NewPromptWatcher creates a watcher for store's directory.
func NewPromptWatcher(store *PromptStore) *PromptWatcher {
	return &PromptWatcher{store: store}
}

// Watch starts watching the prompt directory. Each relevant change clears the
// store cache and the changed prompt name is sent on the returned channel.
// The channel is closed when ctx is cancelled or the watcher fails.
func (w *PromptWatcher) Watch(ctx context.Context) (<-chan string, error) {
	// fsnotify needs the directory to exist before it can be added.
	if err := w.store.ensureDir(); err != nil {
		return nil, fmt.Errorf("prepare prompt directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(w.store.Dir()); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", w.store.Dir(), err)
	}

	changes := make(chan string, 8)
	go func() {
		defer close(changes)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				name, changed := w.handleEvent(event)
				if !changed {
					continue
				}
				w.store.Reload()
				logger.Debug("Prompt %s changed on disk, cache cleared", name)
				select {
				case changes <- name:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Prompt watcher error: %v", err)
			}
		}
	}()

	return changes, nil
}

// handleEvent reports the prompt name affected by event.
// Chmod events, hidden files and non-prompt files are ignored.
func (w *PromptWatcher) handleEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}

	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || filepath.Ext(base) != promptExt {
		return "", false
	}
	return strings.TrimSuffix(base, promptExt), true
}
