// Package watcher triggers a collection run when the inventory changes.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename

// Watcher reports inventory edits, once per burst of filesystem events
type Watcher struct {
	paths    []string
	onChange func(path string)
	debounce time.Duration
	logger   *zap.Logger
}

func New(onChange func(path string), paths ...string) *Watcher {
	return &Watcher{
		paths:    paths,
		onChange: onChange,
		debounce: 500 * time.Millisecond,
		logger:   zap.NewNop(),
	}
}

// WithDebounce sets how long the files must stay quiet before onChange fires
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

func (w *Watcher) WithLogger(l *zap.Logger) *Watcher {
	if l != nil {
		w.logger = l
	}
	return w
}

// Watch blocks until ctx is cancelled or the fsnotify watcher closes.
// Parent directories are watched so files replaced by editors stay tracked.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	targets, err := w.subscribe(fw)
	if err != nil {
		return err
	}

	d := &debouncer{delay: w.debounce, fire: func(path string) {
		if ctx.Err() != nil {
			return
		}
		w.logger.Info("inventory changed", zap.String("path", path))
		w.onChange(path)
	}}
	defer d.stop()

	for {
		select {
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&relevantOps == 0 {
				continue
			}
			if abs, err := filepath.Abs(ev.Name); err == nil && targets[abs] {
				d.touch(abs)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// subscribe adds each target's directory to fw and returns the absolute targets
func (w *Watcher) subscribe(fw *fsnotify.Watcher) (map[string]bool, error) {
	targets := make(map[string]bool, len(w.paths))
	added := make(map[string]bool)
	for _, p := range w.paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		targets[abs] = true

		dir := filepath.Dir(abs)
		if added[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		added[dir] = true
		w.logger.Info("watching inventory", zap.String("path", abs))
	}
	return targets, nil
}

// debouncer restarts its timer on every touch and fires with the last path
type debouncer struct {
	delay time.Duration
	fire  func(path string)

	mu    sync.Mutex
	timer *time.Timer
	last  string
}

func (d *debouncer) touch(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = path
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		path := d.last
		d.mu.Unlock()
		d.fire(path)
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
