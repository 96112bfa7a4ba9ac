package server

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SaweraJamal/PowerScan/internal/catalog"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period after the last change before a reload
const DefaultDebounce = 300 * time.Millisecond

// CatalogHolder publishes the current catalog to concurrent scans.
// A scan keeps the catalog it started with even if a reload swaps it.
type CatalogHolder struct {
	current atomic.Pointer[catalog.Catalog]
}

// NewCatalogHolder creates a holder around an initial catalog
func NewCatalogHolder(c *catalog.Catalog) *CatalogHolder {
	h := &CatalogHolder{}
	h.current.Store(c)
	return h
}

// Load returns the current catalog
func (h *CatalogHolder) Load() *catalog.Catalog {
	return h.current.Load()
}

// Swap replaces the current catalog
func (h *CatalogHolder) Swap(c *catalog.Catalog) {
	h.current.Store(c)
}

// Watcher reloads a catalog file or directory when it changes. A reload that
// fails keeps the previous catalog.
type Watcher struct {
	path     string
	holder   *CatalogHolder
	logger   *zap.Logger
	debounce time.Duration
	watcher  *fsnotify.Watcher
	onReload func(*catalog.Catalog, error)

	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool
}

// NewWatcher creates a watcher for the catalog at path
func NewWatcher(path string, holder *CatalogHolder, logger *zap.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Watcher{
		path:     path,
		holder:   holder,
		logger:   logger,
		debounce: DefaultDebounce,
		watcher:  fsWatcher,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// SetDebounce changes the reload debounce interval
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// OnReload registers a callback invoked after every reload attempt
func (w *Watcher) OnReload(fn func(*catalog.Catalog, error)) {
	w.onReload = fn
}

// Start begins watching for catalog changes
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.addTree(w.watchDir()); err != nil {
		return err
	}

	go w.watchLoop(ctx)
	return nil
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	return w.watcher.Close()
}

// watchDir returns the directory to subscribe to. Single files are watched
// through their parent so editors that replace the file are still seen.
func (w *Watcher) watchDir() string {
	if w.isDir() {
		return w.path
	}
	return filepath.Dir(w.path)
}

// addTree subscribes to dir and, for catalog directories, to every nested
// directory since the loader reads catalog files recursively
func (w *Watcher) addTree(dir string) error {
	if !w.isDir() {
		return w.watcher.Add(dir)
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) isDir() bool {
	info, err := os.Stat(w.path)
	return err == nil && info.IsDir()
}

// relevant reports whether an event touches the watched catalog
func (w *Watcher) relevant(name string) bool {
	if w.isDir() {
		ext := filepath.Ext(name)
		return ext == ".yaml" || ext == ".yml" || ext == ".json"
	}
	return filepath.Clean(name) == filepath.Clean(w.path)
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer close(w.doneCh)

	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time

	stopTimer := func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}

	for {
		select {
		case <-ctx.Done():
			stopTimer()
			return

		case <-w.stopCh:
			stopTimer()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != 0 && w.isDir() {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warn("Failed to watch catalog directory", zap.String("dir", event.Name), zap.Error(err))
					}
				}
			}
			if !w.relevant(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				stopTimer()
				debounceTimer = time.NewTimer(w.debounce)
				debounceCh = debounceTimer.C
			}

		case <-debounceCh:
			debounceCh = nil
			w.Reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Catalog watcher error", zap.Error(err))
		}
	}
}

// Reload loads the catalog again and swaps it in on success
func (w *Watcher) Reload() {
	c, err := catalog.NewLoader(w.path, w.logger).Load()
	if err != nil {
		w.logger.Error("Catalog reload failed, keeping previous catalog",
			zap.String("path", w.path),
			zap.Error(err))
	} else {
		w.holder.Swap(c)
		w.logger.Info("Catalog reloaded",
			zap.String("path", w.path),
			zap.Int("detectors", c.Len()))
	}

	if w.onReload != nil {
		w.onReload(c, err)
	}
}
