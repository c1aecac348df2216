package alert

import (
	"context"

	"github.com/rbright/nudge/internal/engine"
)

// EngineListener adapts a Notifier to the engine's notification contract.
// Alert rendering and speech run on their own goroutine so the engine's state
// transitions never wait on the sinks.
type EngineListener struct {
	notifier Notifier
}

// NewEngineListener wraps a notifier for engine subscription.
func NewEngineListener(notifier Notifier) *EngineListener {
	return &EngineListener{notifier: notifier}
}

// CountUpdated is ignored; the alert sink only reacts to firings.
func (l *EngineListener) CountUpdated(int) {}

// AlertFired dispatches the notification and optional speech, fire-and-forget.
func (l *EngineListener) AlertFired(a engine.Alert) {
	if l.notifier == nil {
		return
	}
	go func() {
		ctx := context.Background()
		l.notifier.Alert(ctx, a.Message, a.Duration)
		if a.Voice {
			l.notifier.Speak(ctx, a.Message)
		}
	}()
}
