package server

import (
	"golang.org/x/time/rate"

	"github.com/rbright/nudge/internal/engine"
)

// HubListener pushes engine notifications to connected settings pages.
// Count updates arrive at typing speed, so they are throttled through a rate
// limiter; alerts always go out. Notifications are emitted while the engine
// holds its state lock, so this listener never calls back into the engine;
// clients wanting a full snapshot poll /api/status.
type HubListener struct {
	hub     *Hub
	limiter *rate.Limiter
}

// NewHubListener wires a hub to the engine notification stream.
func NewHubListener(hub *Hub) *HubListener {
	return &HubListener{
		hub:     hub,
		limiter: rate.NewLimiter(rate.Limit(8), 4),
	}
}

// CountUpdated broadcasts the live counter, coalescing typing bursts. A zero
// count always goes out so the page never sticks on a stale value after a
// reset.
func (l *HubListener) CountUpdated(count int) {
	if count != 0 && !l.limiter.Allow() {
		return
	}
	l.hub.Broadcast(NewMessage("count", map[string]any{"count": count}))
}

// AlertFired broadcasts the alert event.
func (l *HubListener) AlertFired(a engine.Alert) {
	l.hub.Broadcast(NewMessage("alert", map[string]any{
		"message":         a.Message,
		"durationSeconds": a.Duration.Seconds(),
		"voice":           a.Voice,
	}))
}
