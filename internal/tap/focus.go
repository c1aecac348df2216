package tap

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// activeWindow carries the hyprctl activewindow fields used for app naming.
type activeWindow struct {
	Class        string `json:"class"`
	InitialClass string `json:"initialClass"`
	Title        string `json:"title"`
}

// name prefers the window class; titles are too volatile for pattern matching.
func (w activeWindow) name() string {
	if class := strings.TrimSpace(w.Class); class != "" {
		return class
	}
	return strings.TrimSpace(w.InitialClass)
}

// HyprFocusTracker polls the compositor for the focused window and emits
// focus-change events on transitions. It also serves the current-app snapshot
// the engine records at start.
type HyprFocusTracker struct {
	interval time.Duration
	logger   *slog.Logger
	handler  FocusHandler

	mu      sync.Mutex
	current string
}

// NewHyprFocusTracker builds a tracker polling at the given interval.
func NewHyprFocusTracker(interval time.Duration, handler FocusHandler, logger *slog.Logger) *HyprFocusTracker {
	if interval <= 0 {
		interval = 300 * time.Millisecond
	}
	return &HyprFocusTracker{interval: interval, logger: logger, handler: handler}
}

// SetHandler attaches the focus-event consumer. Call before Run.
func (t *HyprFocusTracker) SetHandler(handler FocusHandler) {
	t.handler = handler
}

// Current returns the last observed focused application name.
func (t *HyprFocusTracker) Current() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Prime queries the compositor once so the snapshot is populated before the
// engine starts.
func (t *HyprFocusTracker) Prime(ctx context.Context) error {
	name, err := queryActiveWindow(ctx)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.current = name
	t.mu.Unlock()
	return nil
}

// Run polls until ctx is cancelled, emitting deactivated/activated pairs on
// every focus transition.
func (t *HyprFocusTracker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			t.poll(ctx)
		}
	}
}

func (t *HyprFocusTracker) poll(ctx context.Context) {
	queryCtx, cancel := context.WithTimeout(ctx, t.interval)
	defer cancel()

	name, err := queryActiveWindow(queryCtx)
	if err != nil {
		if ctx.Err() == nil && t.logger != nil {
			t.logger.Debug("focus query failed", "error", err.Error())
		}
		return
	}

	t.mu.Lock()
	previous := t.current
	if name == previous {
		t.mu.Unlock()
		return
	}
	t.current = name
	t.mu.Unlock()

	if t.handler == nil {
		return
	}
	if previous != "" {
		t.handler.HandleFocus(previous, FocusDeactivated)
	}
	if name != "" {
		t.handler.HandleFocus(name, FocusActivated)
	}
}

// queryActiveWindow fetches the focused window name from hyprctl.
func queryActiveWindow(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "hyprctl", "-j", "activewindow")
	out, err := cmd.CombinedOutput()
	if err != nil {
		trimmed := strings.TrimSpace(string(out))
		if trimmed == "" {
			return "", fmt.Errorf("hyprctl activewindow failed: %w", err)
		}
		return "", fmt.Errorf("hyprctl activewindow failed: %w (%s)", err, trimmed)
	}

	// An empty object means no window is focused.
	var window activeWindow
	if err := json.Unmarshal(out, &window); err != nil {
		return "", fmt.Errorf("decode hyprctl activewindow json: %w", err)
	}
	return window.name(), nil
}
