// Package tap bridges external key-capture and focus-change event sources
// into the monitoring engine. Capture itself is an external collaborator: the
// key source is a configured helper command emitting JSON events, and focus
// tracking polls the compositor. Events are observed, never consumed.
package tap

// KeyEvent is one key-down event as reported by the capture helper.
// Code is a Linux evdev key code.
type KeyEvent struct {
	Code int  `json:"code"`
	Ctrl bool `json:"ctrl"`
	Alt  bool `json:"alt"`
	Meta bool `json:"meta"`
}

// Modified reports whether any counting-exempt modifier is held.
// Shift is deliberately absent: shifted characters are still keystrokes.
func (e KeyEvent) Modified() bool {
	return e.Ctrl || e.Alt || e.Meta
}

// FocusKind discriminates focus-change events.
type FocusKind string

const (
	FocusActivated   FocusKind = "activated"
	FocusDeactivated FocusKind = "deactivated"
)

// FocusEvent is one application focus change.
type FocusEvent struct {
	App  string    `json:"app"`
	Kind FocusKind `json:"kind"`
}

// KeyHandler consumes key-down events.
type KeyHandler interface {
	HandleKey(KeyEvent)
}

// FocusHandler consumes focus-change events.
type FocusHandler interface {
	HandleFocus(app string, kind FocusKind)
}
