// Package watcher triggers library rescans when album folders appear under
// the music root.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pders01/crate/internal/catalog"
	"github.com/pders01/crate/internal/debuglog"
	"github.com/pders01/crate/internal/library"
)

const defaultTick = time.Second

// Rescanner runs one library scan.
type Rescanner interface {
	Rescan(ctx context.Context) (catalog.RescanSummary, error)
}

type Option func(*Watcher)

// WithTick sets how often the quiet period is checked.
func WithTick(d time.Duration) Option {
	return func(w *Watcher) { w.tick = d }
}

// WithScanHook registers a callback run after every triggered scan.
func WithScanHook(fn func(catalog.RescanSummary, error)) Option {
	return func(w *Watcher) { w.onScan = fn }
}

type Watcher struct {
	root    string
	delay   time.Duration
	tick    time.Duration
	scanner Rescanner
	fsw     *fsnotify.Watcher
	onScan  func(catalog.RescanSummary, error)

	dirty      bool
	lastChange time.Time
}

// New watches root and every non-hidden directory below it.
func New(root string, delay time.Duration, scanner Rescanner, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving music root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("music root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("music root %s is not a directory", abs)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		root:    abs,
		delay:   delay,
		tick:    defaultTick,
		scanner: scanner,
		fsw:     fsw,
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.addTree(abs); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// Run processes events until ctx is canceled. A scan starts once changes
// have been quiet for the configured delay.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	debuglog.Infof("watching %s (scan delay %s)", w.root, w.delay)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			debuglog.Warnf("watcher: %v", err)

		case <-ticker.C:
			if w.dirty && time.Since(w.lastChange) >= w.delay {
				w.dirty = false
				w.scan(ctx)
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) {
		return
	}
	if !w.within(event.Name) || strings.HasPrefix(filepath.Base(event.Name), ".") {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if err := w.addTree(event.Name); err != nil {
			debuglog.Warnf("watcher: %v", err)
		}
		if !isAlbumFolder(event.Name) {
			return
		}
	} else if !library.IsAudioFile(event.Name) {
		return
	}

	debuglog.Debugf("watcher: change at %s", event.Name)
	w.dirty = true
	w.lastChange = time.Now()
}

func (w *Watcher) scan(ctx context.Context) {
	summary, err := w.scanner.Rescan(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		debuglog.Errorf("watcher: rescan failed: %v", err)
	} else if err == nil {
		debuglog.Infof("watcher: rescan added %d, skipped %d", summary.Added, summary.Skipped)
	}
	if w.onScan != nil {
		w.onScan(summary, err)
	}
}

func (w *Watcher) within(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// isAlbumFolder reports whether dir or one of its direct subdirectories
// holds audio files.
func isAlbumFolder(dir string) bool {
	if library.HasAudioFiles(dir) {
		return true
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.IsDir() && library.HasAudioFiles(filepath.Join(dir, e.Name())) {
			return true
		}
	}
	return false
}
