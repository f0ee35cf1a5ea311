// Package watch reloads the user catalog file when it changes on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pthm-cable/molview/molecule"
)

// Loader parses a catalog file. molecule.Load is the default.
type Loader func(path string) (*molecule.Catalog, error)

// Stats tracks watcher activity.
type Stats struct {
	Events  int
	Reloads int
	Errors  int
}

// CatalogWatcher watches one catalog file and delivers each valid reload
// on Catalogs. Invalid files are logged and skipped; the last good catalog
// stays in use.
type CatalogWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	load     Loader
	debounce time.Duration
	out      chan *molecule.Catalog
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool

	pending   bool
	lastEvent time.Time
	stats     Stats
}

// New creates a watcher for path. The containing directory is watched so
// editors that save by rename are picked up too.
func New(path string, debounce time.Duration, load Loader) (*CatalogWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	if load == nil {
		load = molecule.Load
	}
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	return &CatalogWatcher{
		watcher:  w,
		path:     abs,
		load:     load,
		debounce: debounce,
		out:      make(chan *molecule.Catalog, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Catalogs delivers reloaded catalogs. Only the newest undelivered catalog
// is kept.
func (cw *CatalogWatcher) Catalogs() <-chan *molecule.Catalog {
	return cw.out
}

// Stats returns a copy of the activity counters.
func (cw *CatalogWatcher) Stats() Stats {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.stats
}

// Start begins watching in a goroutine. Calling Start twice is a no-op.
func (cw *CatalogWatcher) Start(ctx context.Context) {
	cw.mu.Lock()
	if cw.running {
		cw.mu.Unlock()
		return
	}
	cw.running = true
	cw.mu.Unlock()

	slog.Info("watching catalog", "path", cw.path)
	go cw.run(ctx)
}

// Run watches until ctx is cancelled or Stop is called, then releases the
// underlying watcher. It blocks.
func (cw *CatalogWatcher) Run(ctx context.Context) error {
	cw.Start(ctx)
	select {
	case <-cw.doneCh:
	case <-ctx.Done():
		<-cw.doneCh
	}
	return cw.closeWatcher()
}

// Stop stops the watcher and waits for its goroutine to exit.
func (cw *CatalogWatcher) Stop() error {
	cw.mu.Lock()
	if !cw.running {
		cw.mu.Unlock()
		return cw.closeWatcher()
	}
	cw.running = false
	cw.mu.Unlock()

	close(cw.stopCh)
	<-cw.doneCh
	return cw.closeWatcher()
}

func (cw *CatalogWatcher) closeWatcher() error {
	if err := cw.watcher.Close(); err != nil {
		return fmt.Errorf("closing watcher: %w", err)
	}
	return nil
}

func (cw *CatalogWatcher) run(ctx context.Context) {
	defer close(cw.doneCh)

	ticker := time.NewTicker(cw.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cw.stopCh:
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			cw.handleEvent(event)
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("catalog watcher", "error", err)
			cw.mu.Lock()
			cw.stats.Errors++
			cw.mu.Unlock()
		case now := <-ticker.C:
			cw.flush(now)
		}
	}
}

func (cw *CatalogWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != cw.path {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}
	cw.mu.Lock()
	cw.stats.Events++
	cw.pending = true
	cw.lastEvent = time.Now()
	cw.mu.Unlock()
}

// flush reloads once events have been quiet for the debounce interval.
func (cw *CatalogWatcher) flush(now time.Time) {
	cw.mu.Lock()
	ready := cw.pending && now.Sub(cw.lastEvent) >= cw.debounce
	if ready {
		cw.pending = false
	}
	cw.mu.Unlock()
	if !ready {
		return
	}

	c, err := cw.load(cw.path)
	if err != nil {
		slog.Warn("catalog reload rejected", "path", cw.path, "error", err)
		cw.mu.Lock()
		cw.stats.Errors++
		cw.mu.Unlock()
		return
	}

	// Drop an undelivered older catalog in favour of this one.
	select {
	case <-cw.out:
	default:
	}
	cw.out <- c

	cw.mu.Lock()
	cw.stats.Reloads++
	cw.mu.Unlock()
	slog.Info("catalog reload ready", "path", cw.path, "molecules", c.Len())
}
