// Package alert renders threshold alerts: a transient desktop notification,
// an optional audio chime, and optional speech playback.
package alert

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Notifier is the alert-sink contract. Errors stay inside the sink; a failed
// notification never propagates back as an engine failure.
type Notifier interface {
	Alert(ctx context.Context, message string, duration time.Duration)
	Speak(ctx context.Context, message string)
}

// DesktopNotifier sends freedesktop notifications over DBus via busctl and
// speaks through spd-say, falling back to espeak.
type DesktopNotifier struct {
	appName     string
	chimeEnable bool
	logger      *slog.Logger

	mu             sync.Mutex
	notificationID uint32
	soundMu        sync.Mutex
}

// NewDesktopNotifier creates the default alert sink.
func NewDesktopNotifier(chimeEnable bool, logger *slog.Logger) *DesktopNotifier {
	return &DesktopNotifier{
		appName:     "nudge",
		chimeEnable: chimeEnable,
		logger:      logger,
	}
}

// Alert shows the reminder for the given duration, replacing any previous
// one, and plays the chime.
func (n *DesktopNotifier) Alert(ctx context.Context, message string, duration time.Duration) {
	n.playChime()

	runCtx, cancel := context.WithTimeout(ctx, 400*time.Millisecond)
	defer cancel()

	n.mu.Lock()
	replaceID := n.notificationID
	n.mu.Unlock()

	id, err := desktopNotify(runCtx, n.appName, replaceID, message, int(duration.Milliseconds()))
	if err != nil {
		n.log("alert notification failed", err)
		return
	}

	n.mu.Lock()
	n.notificationID = id
	n.mu.Unlock()
}

// Speak reads the message aloud through the first available speech tool.
func (n *DesktopNotifier) Speak(ctx context.Context, message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := exec.LookPath("spd-say"); err == nil {
		if err := exec.CommandContext(runCtx, "spd-say", "--wait", message).Run(); err != nil {
			n.log("spd-say failed", err)
		}
		return
	}
	if _, err := exec.LookPath("espeak"); err == nil {
		if err := exec.CommandContext(runCtx, "espeak", message).Run(); err != nil {
			n.log("espeak failed", err)
		}
		return
	}
	n.log("speech playback unavailable", fmt.Errorf("neither spd-say nor espeak found in PATH"))
}

// playChime serializes chime playback and emits audio asynchronously.
func (n *DesktopNotifier) playChime() {
	if !n.chimeEnable {
		return
	}
	go func() {
		n.soundMu.Lock()
		defer n.soundMu.Unlock()
		if err := playAlertChime(); err != nil {
			n.log("alert chime failed", err)
		}
	}()
}

func (n *DesktopNotifier) log(message string, err error) {
	if n.logger == nil || err == nil {
		return
	}
	n.logger.Debug(message, "error", err.Error())
}

// desktopNotify sends a freedesktop notification over DBus via busctl and
// returns the server-assigned notification ID.
func desktopNotify(ctx context.Context, appName string, replaceID uint32, summary string, timeoutMS int) (uint32, error) {
	args := []string{
		"--user",
		"call",
		"org.freedesktop.Notifications",
		"/org/freedesktop/Notifications",
		"org.freedesktop.Notifications",
		"Notify",
		"susssasa{sv}i",
		appName,
		fmt.Sprintf("%d", replaceID),
		"",
		summary,
		"",
		"0", // actions array length
		"0", // hints map length
		fmt.Sprintf("%d", timeoutMS),
	}

	out, err := exec.CommandContext(ctx, "busctl", args...).CombinedOutput()
	if err != nil {
		trimmed := strings.TrimSpace(string(out))
		if trimmed == "" {
			return 0, fmt.Errorf("desktop notify failed: %w", err)
		}
		return 0, fmt.Errorf("desktop notify failed: %w (%s)", err, trimmed)
	}

	fields := strings.Fields(strings.TrimSpace(string(out)))
	if len(fields) < 2 || fields[0] != "u" {
		return 0, fmt.Errorf("desktop notify invalid response: %q", strings.TrimSpace(string(out)))
	}

	value, parseErr := strconv.ParseUint(fields[1], 10, 32)
	if parseErr != nil {
		return 0, fmt.Errorf("desktop notify parse id %q: %w", fields[1], parseErr)
	}
	return uint32(value), nil
}
