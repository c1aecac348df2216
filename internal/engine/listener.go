package engine

import "time"

// Alert is the payload emitted when the keystroke threshold is crossed.
type Alert struct {
	Message  string
	Duration time.Duration
	Voice    bool
}

// Listener receives engine notifications. Implementations must return
// quickly and must not call back into the engine; slow side effects (alert
// rendering, speech) belong on the listener's own goroutine.
type Listener interface {
	CountUpdated(count int)
	AlertFired(alert Alert)
}

// noopListener preserves engine flow when no listener is wired.
type noopListener struct{}

func (noopListener) CountUpdated(int) {}
func (noopListener) AlertFired(Alert) {}

// MultiListener fans notifications out to several listeners in order.
type MultiListener []Listener

func (m MultiListener) CountUpdated(count int) {
	for _, l := range m {
		l.CountUpdated(count)
	}
}

func (m MultiListener) AlertFired(alert Alert) {
	for _, l := range m {
		l.AlertFired(alert)
	}
}
