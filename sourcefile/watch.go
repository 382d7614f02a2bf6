package sourcefile

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceDelay is how long a group must stay quiet before its change is reported.
const DebounceDelay = 100 * time.Millisecond

// Watch monitors the search paths (and their subdirectories) and calls onChange with the name
// of every group whose file was written, created, removed or renamed. Bursts of events for
// one group are debounced. Missing search paths are skipped. Blocks until ctx is done.
func Watch(ctx context.Context, opts Options, onChange func(group string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	var roots []string
	for _, dir := range opts.Paths {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("resolve search path %s: %w", dir, err)
		}
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			continue
		}
		if err := addTree(watcher, abs); err != nil {
			return err
		}
		roots = append(roots, abs)
	}

	d := newDebouncer(DebounceDelay, onChange)
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			// New subdirectories may hold nested groups
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addTree(watcher, event.Name)
					continue
				}
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if group, ok := groupForPath(roots, event.Name); ok {
				d.trigger(group)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch search paths: %w", err)
		}
	}
}

func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// groupForPath derives the group name of a config file relative to the search path containing it.
func groupForPath(roots []string, path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if inferFormat(path) == "" {
		return "", false
	}

	for _, root := range roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		return filepath.ToSlash(rel[:len(rel)-len(ext)]), true
	}
	return "", false
}

// debouncer coalesces triggers per group and reports each group once it has been quiet for delay.
type debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	timers   map[string]*time.Timer
	stopped  bool
	onChange func(group string)
}

func newDebouncer(delay time.Duration, onChange func(group string)) *debouncer {
	return &debouncer{
		delay:    delay,
		timers:   make(map[string]*time.Timer),
		onChange: onChange,
	}
}

func (d *debouncer) trigger(group string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.schedule(group)
}

// schedule (re)starts the timer of group. d.mu must be held.
func (d *debouncer) schedule(group string) {
	if d.stopped {
		return
	}
	if t, ok := d.timers[group]; ok {
		t.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A trigger that arrived while this callback waited for the lock owns the group now
		current := d.timers[group] == timer
		if current {
			delete(d.timers, group)
		}
		stopped := d.stopped
		d.mu.Unlock()

		if current && !stopped {
			d.onChange(group)
		}
	})
	d.timers[group] = timer
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for group, t := range d.timers {
		t.Stop()
		delete(d.timers, group)
	}
}
