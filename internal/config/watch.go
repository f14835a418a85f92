package config

import (
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watcher watches the resolved config path and invokes onChange after
// a short debounce whenever an event in the path's directory names the
// path itself and is a write, create or rename; watching the directory
// keeps editors that save via rename-into-place visible. The fsnotify
// watch set up by NewWatcher is never replaced, remove events are
// ignored, and a symlinked config is not followed: a change to the
// link's target file is seen only if it produces an event on the path
// itself. This is the core's SetupConfigWatcher
// dependency (§6.2); the core only ever sees the resulting
// ConfigRefresh event.
type Watcher struct {
	fsw    *fsnotify.Watcher
	path   string
	logger *log.Logger
	done   chan struct{}
}

// NewWatcher starts watching path's containing directory (so renames
// and removes are visible) and calls onChange(path) after debouncing
// bursts of events into one call.
func NewWatcher(path string, onChange func(string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{fsw: fsw, path: path, logger: log.Default().With("component", "config-watcher"), done: make(chan struct{})}

	go w.loop(path, onChange)
	return w, nil
}

func (w *Watcher) loop(path string, onChange func(string)) {
	var pending *time.Timer
	const debounce = 150 * time.Millisecond

	fire := func() {
		onChange(path)
	}

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(debounce, fire)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "err", err)
		case <-w.done:
			return
		}
	}
}

// Close stops the watch.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
