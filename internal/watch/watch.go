// Package watch provides polling file watching for configuration live
// reload. The watcher is an injected capability: the engine's reload path is
// plain method calls and stays directly testable without it.
package watch

import (
	"context"
	"os"
	"time"
)

// Handler is called after a watched file settles following a change.
type Handler func()

// Watcher polls one file's modification time and debounces rapid rewrites.
type Watcher struct {
	path     string
	interval time.Duration
	debounce time.Duration
	handler  Handler
}

// New creates a watcher for path. Non-positive durations fall back to
// sensible polling defaults.
func New(path string, interval, debounce time.Duration, handler Handler) *Watcher {
	if interval <= 0 {
		interval = time.Second
	}
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	return &Watcher{path: path, interval: interval, debounce: debounce, handler: handler}
}

// Run polls until ctx is cancelled. File creation counts as a change;
// deletion is ignored until the file reappears.
func (w *Watcher) Run(ctx context.Context) {
	lastMod, exists := w.stat()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var pending bool
	var settleAt time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			mod, ok := w.stat()
			changed := (ok && !exists) || (ok && mod.After(lastMod))
			if ok {
				lastMod, exists = mod, true
			} else {
				exists = false
			}

			if changed {
				pending = true
				settleAt = now.Add(w.debounce)
				continue
			}
			if pending && now.After(settleAt) {
				pending = false
				w.handler()
			}
		}
	}
}

func (w *Watcher) stat() (time.Time, bool) {
	info, err := os.Stat(w.path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}
