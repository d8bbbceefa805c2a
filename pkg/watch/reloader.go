// Package watch keeps a registry synchronized with template files on disk.
// A Reloader mirrors a directory tree into a Registry: files are registered
// under their relative path with the extension stripped, re-registered on
// change, and removed when they disappear.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-tplreg/pkg/registry"
)

// DefaultDebounce groups rapid editor events before the registry updates.
const DefaultDebounce = 100 * time.Millisecond

// Option configures a Reloader during construction.
type Option func(*Reloader)

// WithExtensions replaces the watched template extensions. The defaults are
// .tmpl and .html; a missing leading dot is added.
func WithExtensions(exts ...string) Option {
	return func(rl *Reloader) {
		if len(exts) == 0 {
			return
		}
		rl.exts = make(map[string]struct{}, len(exts))
		for _, ext := range exts {
			trimmed := strings.TrimSpace(ext)
			if trimmed == "" {
				continue
			}
			if !strings.HasPrefix(trimmed, ".") {
				trimmed = "." + trimmed
			}
			rl.exts[trimmed] = struct{}{}
		}
	}
}

// WithDebounce overrides the debounce delay.
func WithDebounce(delay time.Duration) Option {
	return func(rl *Reloader) {
		if delay > 0 {
			rl.delay = delay
		}
	}
}

// WithLogger sets the logger for watch diagnostics. A nil logger keeps the
// default.
func WithLogger(logger *slog.Logger) Option {
	return func(rl *Reloader) {
		if logger != nil {
			rl.logger = logger
		}
	}
}

// Reloader watches a directory tree and keeps a Registry in sync with the
// template files beneath it.
type Reloader struct {
	registry *registry.Registry
	root     string
	exts     map[string]struct{}
	delay    time.Duration
	logger   *slog.Logger

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
}

// New creates a Reloader rooted at root. Watching starts with Start.
func New(reg *registry.Registry, root string, opts ...Option) (*Reloader, error) {
	if reg == nil {
		return nil, errors.New("watch: registry is required")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("watch: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch: root %s is not a directory", root)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}

	rl := &Reloader{
		registry: reg,
		root:     filepath.Clean(root),
		exts:     map[string]struct{}{".tmpl": {}, ".html": {}},
		delay:    DefaultDebounce,
		logger:   slog.Default(),
		watcher:  watcher,
		pending:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(rl)
		}
	}
	return rl, nil
}

// Start loads every template under the root into the registry, then watches
// for changes until ctx is canceled or Stop is called.
func (rl *Reloader) Start(ctx context.Context) error {
	if err := rl.addRecursive(rl.root); err != nil {
		return err
	}
	if err := rl.syncTree(rl.root); err != nil {
		return err
	}
	go rl.loop(ctx)
	return nil
}

// Stop closes the watcher. Pending debounced updates are dropped.
func (rl *Reloader) Stop() error {
	rl.mu.Lock()
	if rl.timer != nil {
		rl.timer.Stop()
		rl.timer = nil
	}
	rl.mu.Unlock()
	return rl.watcher.Close()
}

func (rl *Reloader) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-rl.watcher.Events:
			if !ok {
				return
			}
			rl.enqueue(event)
		case err, ok := <-rl.watcher.Errors:
			if !ok {
				return
			}
			rl.logger.Error("watch error", "error", err)
		}
	}
}

func (rl *Reloader) enqueue(event fsnotify.Event) {
	// Directories created under the root join the watch set, and any
	// template files moved in with them register immediately.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := rl.addRecursive(event.Name); err != nil {
				rl.logger.Warn("watch new directory failed", "path", event.Name, "error", err)
			}
			if err := rl.syncTree(event.Name); err != nil {
				rl.logger.Warn("scan new directory failed", "path", event.Name, "error", err)
			}
			return
		}
	}

	if _, ok := rl.nameFor(event.Name); !ok {
		return
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.pending[event.Name] = struct{}{}
	if rl.timer == nil {
		rl.timer = time.AfterFunc(rl.delay, rl.flush)
	} else {
		rl.timer.Reset(rl.delay)
	}
}

func (rl *Reloader) flush() {
	rl.mu.Lock()
	pending := rl.pending
	rl.pending = make(map[string]struct{})
	rl.timer = nil
	rl.mu.Unlock()

	for path := range pending {
		rl.apply(path)
	}
}

// apply reconciles one path against the registry. The filesystem is the
// source of truth: a readable file re-registers, a missing one removes.
func (rl *Reloader) apply(path string) {
	name, ok := rl.nameFor(path)
	if !ok {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		rl.registry.Remove(name)
		rl.logger.Debug("template removed", "name", name, "path", path)
		return
	}
	if info.IsDir() {
		return
	}
	if err := rl.reload(path, name); err != nil {
		rl.logger.Warn("template reload failed", "name", name, "path", path, "error", err)
	}
}

func (rl *Reloader) reload(path, name string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	// Remove first so the stale compiled form drops with the old source.
	rl.registry.Remove(name).Register(name, string(data))
	rl.logger.Debug("template loaded", "name", name, "path", path)
	return nil
}

// nameFor maps a file path to its registry name: the path relative to the
// root, slash separated, extension stripped. Paths outside the root or with
// an unwatched extension report ok=false.
func (rl *Reloader) nameFor(path string) (string, bool) {
	rel, err := filepath.Rel(rl.root, path)
	if err != nil {
		return "", false
	}
	if rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	ext := filepath.Ext(rel)
	if _, ok := rl.exts[ext]; !ok {
		return "", false
	}
	return filepath.ToSlash(strings.TrimSuffix(rel, ext)), true
}

func (rl *Reloader) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if err := rl.watcher.Add(path); err != nil {
				return fmt.Errorf("watch: add %s: %w", path, err)
			}
		}
		return nil
	})
}

func (rl *Reloader) syncTree(root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		name, ok := rl.nameFor(path)
		if !ok {
			return nil
		}
		if loadErr := rl.reload(path, name); loadErr != nil {
			rl.logger.Warn("template load failed", "name", name, "path", path, "error", loadErr)
		}
		return nil
	})
}
