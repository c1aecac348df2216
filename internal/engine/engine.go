// Package engine owns the live keystroke counter and the threshold/reset
// state machine. It consumes key-down and focus-change events, decides
// counting, reset, and alert firing, and emits notifications for
// collaborators. Events are only observed; it never consumes or blocks them.
package engine

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rbright/nudge/internal/config"
	"github.com/rbright/nudge/internal/fsm"
	"github.com/rbright/nudge/internal/tap"
)

// CurrentAppFunc supplies the focused-application snapshot recorded when the
// engine starts.
type CurrentAppFunc func() string

// Status is a point-in-time snapshot of the engine.
type Status struct {
	Enabled             bool   `json:"enabled"`
	Count               int    `json:"count"`
	Threshold           int    `json:"threshold"`
	CurrentApp          string `json:"currentApp"`
	CurrentAppMonitored bool   `json:"currentAppMonitored"`
	MonitoredAppCount   int    `json:"monitoredAppCount"`
}

// Engine is one monitoring instance. All handlers are serialized by an
// internal mutex, so event sources may deliver from separate goroutines.
type Engine struct {
	logger   *slog.Logger
	listener Listener
	focus    CurrentAppFunc

	mu         sync.Mutex
	state      fsm.State
	cfg        config.Config
	apps       []string
	count      int
	currentApp string
	// leftMonitored survives the deactivate/activate pair a focus switch
	// arrives as, so the next activation still knows a monitored app was left.
	leftMonitored bool
	timer         *time.Timer
	timerGen      uint64
}

// New constructs a stopped engine with safe fallbacks for absent
// collaborators.
func New(logger *slog.Logger, listener Listener, focus CurrentAppFunc) *Engine {
	if listener == nil {
		listener = noopListener{}
	}
	if focus == nil {
		focus = func() string { return "" }
	}
	return &Engine{
		logger:   logger,
		listener: listener,
		focus:    focus,
		state:    fsm.StateStopped,
	}
}

// Start begins monitoring with the given configuration and monitored-app
// pattern set. It is a no-op while running, and remains stopped when the
// master switch is off.
func (e *Engine) Start(cfg config.Config, apps []string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == fsm.StateRunning {
		return
	}

	e.cfg = cfg
	e.apps = apps
	if !cfg.Enabled {
		e.log("engine start skipped", "reason", "disabled in config")
		return
	}

	next, err := fsm.Transition(e.state, fsm.EventStart)
	if err != nil {
		e.log("engine start rejected", "error", err.Error())
		return
	}
	e.state = next
	e.currentApp = e.focus()
	e.log("engine started",
		"threshold", cfg.Threshold,
		"reset_after_s", cfg.ResetAfterSeconds,
		"monitored_apps", len(apps),
		"current_app", e.currentApp,
	)
}

// Stop halts monitoring: the inactivity timer is cancelled, the counter is
// zeroed with a notification, and the engine returns to stopped. Idempotent
// and safe to call at any time, including mid-alert.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

func (e *Engine) stopLocked() {
	e.cancelTimerLocked()
	// A repeat stop on an already-stopped engine with a zero counter changes
	// nothing, so listeners hear nothing.
	if e.count != 0 || e.state == fsm.StateRunning {
		e.count = 0
		e.listener.CountUpdated(0)
	}

	next, _ := fsm.Transition(e.state, fsm.EventStop)
	if e.state != next {
		e.log("engine stopped")
	}
	e.state = next
}

// Toggle stops a running engine or restarts a stopped one with the
// last-loaded configuration.
func (e *Engine) Toggle() {
	e.mu.Lock()
	cfg, apps, running := e.cfg, e.apps, e.state == fsm.StateRunning
	if running {
		e.stopLocked()
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()
	e.Start(cfg, apps)
}

// Reload swaps in a new configuration and app set. A running engine is
// stopped and restarted (only when the new config is enabled); a stopped one
// just replaces the held parameters.
func (e *Engine) Reload(cfg config.Config, apps []string) {
	e.mu.Lock()
	running := e.state == fsm.StateRunning
	if running {
		e.stopLocked()
	}
	e.cfg = cfg
	e.apps = apps
	e.mu.Unlock()

	if running && cfg.Enabled {
		e.Start(cfg, apps)
	}
}

// Reset zeroes the counter and notifies, without affecting run state.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

func (e *Engine) resetLocked() {
	e.cancelTimerLocked()
	e.count = 0
	e.listener.CountUpdated(0)
}

// HandleKey processes one key-down event. The event always passes through to
// the system; the engine only decides whether it counts.
func (e *Engine) HandleKey(event tap.KeyEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != fsm.StateRunning || !e.cfg.Enabled {
		return
	}
	if !matchesAny(e.currentApp, e.apps) {
		return
	}
	if event.Modified() {
		return
	}
	if IgnoredKey(event.Code) {
		return
	}

	e.count++
	e.listener.CountUpdated(e.count)
	e.restartTimerLocked()

	if e.count >= e.cfg.Threshold {
		alert := Alert{
			Message:  e.cfg.AlertMessage,
			Duration: time.Duration(e.cfg.AlertDurationSeconds * float64(time.Second)),
			Voice:    e.cfg.Voice.Enabled,
		}
		// Reset is atomic with the firing; the alert itself is
		// fire-and-forget for the listener.
		e.cancelTimerLocked()
		e.count = 0
		e.listener.AlertFired(alert)
		e.listener.CountUpdated(0)
		e.log("alert fired", "threshold", e.cfg.Threshold, "app", e.currentApp)
	}
}

// HandleFocus processes one focus-change event. Leaving every monitored app
// is an activity boundary: the counter resets immediately.
func (e *Engine) HandleFocus(app string, kind tap.FocusKind) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch kind {
	case tap.FocusActivated:
		previousMonitored := e.leftMonitored || matchesAny(e.currentApp, e.apps)
		nowMonitored := matchesAny(app, e.apps)
		if e.state == fsm.StateRunning && previousMonitored && !nowMonitored {
			e.resetLocked()
		}
		e.leftMonitored = false
		e.currentApp = app
	case tap.FocusDeactivated:
		if app == e.currentApp {
			e.leftMonitored = matchesAny(e.currentApp, e.apps)
			e.currentApp = ""
		}
	}
}

// Status returns a snapshot of the engine state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Status{
		Enabled:             e.cfg.Enabled && e.state == fsm.StateRunning,
		Count:               e.count,
		Threshold:           e.cfg.Threshold,
		CurrentApp:          e.currentApp,
		CurrentAppMonitored: matchesAny(e.currentApp, e.apps),
		MonitoredAppCount:   len(e.apps),
	}
}

// Running reports whether the engine is currently monitoring.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == fsm.StateRunning
}

// restartTimerLocked arms the inactivity timer, replacing any pending one.
// The generation guard keeps a cancelled timer's late firing from resetting a
// newer count.
func (e *Engine) restartTimerLocked() {
	e.cancelTimerLocked()
	e.timerGen++
	gen := e.timerGen

	resetAfter := time.Duration(e.cfg.ResetAfterSeconds) * time.Second
	if resetAfter <= 0 {
		return
	}
	e.timer = time.AfterFunc(resetAfter, func() {
		e.inactivityExpired(gen)
	})
}

func (e *Engine) cancelTimerLocked() {
	e.timerGen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// inactivityExpired handles inactivity-timer firing: the counter resets with
// a notification, run state is untouched.
func (e *Engine) inactivityExpired(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.timerGen || e.state != fsm.StateRunning {
		return
	}
	e.timer = nil
	e.count = 0
	e.listener.CountUpdated(0)
	e.log("inactivity reset", "reset_after_s", e.cfg.ResetAfterSeconds)
}

// matchesAny reports whether name matches any monitored pattern. Matching is
// a case-sensitive substring test, so the pattern "Code" also matches
// "Code - Insiders"; this is the documented contract, not an accident.
func matchesAny(name string, patterns []string) bool {
	if name == "" {
		return false
	}
	for _, pattern := range patterns {
		if strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}

func (e *Engine) log(message string, fields ...any) {
	if e.logger == nil {
		return
	}
	e.logger.Info(message, fields...)
}
