package syncer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/okian/linepulse/pkg/logger"
)

const (
	DefaultDebounce = 5 * time.Second
	DefaultInterval = 5 * time.Minute
)

// TriggerFunc starts a pass. It is called from the watcher goroutine, one call
// at a time.
type TriggerFunc func(ctx context.Context, trigger string)

// Watcher turns file system activity in the log folder, and a periodic tick,
// into sync triggers.
type Watcher struct {
	root     string
	trigger  TriggerFunc
	debounce time.Duration
	interval time.Duration
	match    func(name string) bool
	log      logger.Logger
}

// NewWatcher creates a Watcher over root.
func NewWatcher(root string, trigger TriggerFunc, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		root:     root,
		trigger:  trigger,
		debounce: DefaultDebounce,
		interval: DefaultInterval,
		match:    func(name string) bool { return strings.EqualFold(filepath.Ext(name), ".csv") },
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fs watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw); err != nil {
		return err
	}

	debounce := time.NewTimer(w.debounce)
	debounce.Stop()
	defer debounce.Stop()

	var tick <-chan time.Time
	if w.interval > 0 {
		t := time.NewTicker(w.interval)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = fw.Add(ev.Name)
					continue
				}
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !w.match(filepath.Base(ev.Name)) {
				continue
			}
			w.log.Debug(ctx, "log file changed", logger.String("file", ev.Name), logger.String("op", ev.Op.String()))
			debounce.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn(ctx, "fs watcher error", logger.Error(err))
		case <-debounce.C:
			w.trigger(ctx, TriggerWatch)
		case <-tick:
			w.trigger(ctx, TriggerInterval)
		}
	}
}

func (w *Watcher) addTree(fw *fsnotify.Watcher) error {
	if err := fw.Add(w.root); err != nil {
		return fmt.Errorf("watch %s: %w", w.root, err)
	}
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.root, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		_ = filepath.WalkDir(filepath.Join(w.root, e.Name()), func(path string, d fs.DirEntry, err error) error {
			if err == nil && d.IsDir() {
				_ = fw.Add(path)
			}
			return nil
		})
	}
	return nil
}
