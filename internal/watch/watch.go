// Package watch reloads the record set whenever its backing JSON file
// changes on disk.
package watch

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 300 * time.Millisecond

// Loader receives the raw file contents after every settled change.
type Loader interface {
	LoadRaw(data []byte) error
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(data []byte) error

func (f LoaderFunc) LoadRaw(data []byte) error { return f(data) }

type Option func(*Watcher)

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithReloadHook is called after each reload attempt with its outcome.
func WithReloadHook(hook func(error)) Option {
	return func(w *Watcher) {
		w.hook = hook
	}
}

// Watcher watches one file. It watches the parent directory so editors that
// replace the file by rename are still seen.
type Watcher struct {
	path     string
	loader   Loader
	debounce time.Duration
	logger   *zap.Logger
	hook     func(error)

	mu      sync.Mutex
	pending bool
	hash    [sha256.Size]byte
	hashed  bool
}

func New(path string, loader Loader, options ...Option) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("watch: path is required")
	}
	if loader == nil {
		return nil, errors.New("watch: loader is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", path, err)
	}
	w := &Watcher{
		path:     abs,
		loader:   loader,
		debounce: DefaultDebounce,
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// Prime records the current contents so an unchanged file is not reloaded.
func (w *Watcher) Prime(data []byte) {
	w.mu.Lock()
	w.hash = sha256.Sum256(data)
	w.hashed = true
	w.mu.Unlock()
}

// Run blocks until ctx is done or the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch: add %s: %w", dir, err)
	}
	w.logger.Info("watching record file", zap.String("path", w.path), zap.Duration("debounce", w.debounce))

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", zap.Error(err))
		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	w.mu.Lock()
	w.pending = true
	w.mu.Unlock()
	w.logger.Debug("record file changed", zap.String("op", event.Op.String()))
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if !w.pending {
		w.mu.Unlock()
		return
	}
	w.pending = false
	w.mu.Unlock()

	data, err := os.ReadFile(w.path)
	if err != nil {
		// A rename-replace may not have landed yet; the create event
		// that follows marks the file pending again.
		if !errors.Is(err, os.ErrNotExist) {
			w.logger.Warn("read record file", zap.Error(err))
		}
		return
	}

	sum := sha256.Sum256(data)
	w.mu.Lock()
	same := w.hashed && sum == w.hash
	w.mu.Unlock()
	if same {
		return
	}

	err = w.loader.LoadRaw(data)
	if err != nil {
		w.logger.Warn("reload rejected, keeping current records", zap.String("path", w.path), zap.Error(err))
	} else {
		w.mu.Lock()
		w.hash = sum
		w.hashed = true
		w.mu.Unlock()
		w.logger.Info("records reloaded", zap.String("path", w.path))
	}
	if w.hook != nil {
		w.hook(err)
	}
}
