package privacy

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fireboltd/fireboltd/pkg/logging"
)

// Watcher monitors the privacy settings file and invokes onChange after
// reloading the store.
type Watcher struct {
	store    *Store
	onChange func(Settings)
	logger   *slog.Logger
	debounce time.Duration
}

// NewWatcher creates a watcher over the store's backing file. onChange runs
// with the freshly loaded settings after each change.
func NewWatcher(store *Store, onChange func(Settings)) *Watcher {
	return &Watcher{
		store:    store,
		onChange: onChange,
		logger:   logging.NewDiscardLogger(),
		debounce: 300 * time.Millisecond,
	}
}

// SetLogger sets the logger for watcher events.
func (w *Watcher) SetLogger(logger *slog.Logger) {
	if logger != nil {
		w.logger = logger
	}
}

// Watch blocks until the context is cancelled, reloading the store on change.
//
// The parent directory is watched rather than the file itself: writers that
// replace the file atomically (write temp, rename) would otherwise detach the
// watch on the first update.
func (w *Watcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(w.store.Path())
	if err := watcher.Add(dir); err != nil {
		return err
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.store.Path()) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("privacy watcher error", "error", err)
		case <-fire:
			if err := w.store.Reload(); err != nil {
				w.logger.Warn("privacy settings reload failed", "error", err)
				continue
			}
			w.logger.Info("privacy settings reloaded", "path", w.store.Path())
			if w.onChange != nil {
				w.onChange(w.store.Settings())
			}
		}
	}
}
