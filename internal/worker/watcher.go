package worker

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/vivispa/catalog-api/internal/service/catalog"
)

// CatalogWatcher reloads the snapshot when the catalog file changes on disk.
//
// It watches the parent directory rather than the file so saves that
// replace the file by rename are still seen.
type CatalogWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	reloader Reloader
	path     string
	debounce time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

func NewCatalogWatcher(path string, reloader Reloader, debounce time.Duration) (*CatalogWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog path: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	return &CatalogWatcher{
		watcher:  w,
		reloader: reloader,
		path:     abs,
		debounce: debounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. It does not block.
func (w *CatalogWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.running = true

	log.Info().Str("path", w.path).Dur("debounce", w.debounce).Msg("watching catalog file")
	go w.run(ctx)
	return nil
}

// Stop stops the event loop, waits for it to exit and releases the watcher.
// Calling Stop on a watcher that never started only releases the watcher.
func (w *CatalogWatcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close catalog watcher")
	}
}

// Run starts the watcher and blocks until ctx is done.
func (w *CatalogWatcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return err
	}
	<-ctx.Done()
	w.Stop()
	return nil
}

func (w *CatalogWatcher) run(ctx context.Context) {
	defer close(w.doneCh)

	// A nil channel blocks, so the timer case is idle until an event arms it.
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			log.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("catalog file changed")
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("catalog watcher error")

		case <-fire:
			fire = nil
			if _, err := w.reloader.Reload(ctx, catalog.TriggerWatch); err != nil {
				log.Warn().Err(err).Str("path", w.path).Msg("keeping previous snapshot")
			}
		}
	}
}

func (w *CatalogWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0
}
