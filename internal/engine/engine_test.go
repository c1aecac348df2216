package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/nudge/internal/config"
	"github.com/rbright/nudge/internal/tap"
)

// recorder captures listener notifications for assertions.
type recorder struct {
	mu     sync.Mutex
	counts []int
	alerts []Alert
}

func (r *recorder) CountUpdated(count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts = append(r.counts, count)
}

func (r *recorder) AlertFired(a Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
}

func (r *recorder) snapshot() ([]int, []Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.counts...), append([]Alert(nil), r.alerts...)
}

func testConfig() config.Config {
	return config.Config{
		Enabled:              true,
		Threshold:            3,
		ResetAfterSeconds:    30,
		AlertDurationSeconds: 2.0,
		AlertMessage:         "Use your voice!",
	}
}

func startedEngine(t *testing.T, cfg config.Config, apps []string, focused string) (*Engine, *recorder) {
	t.Helper()
	rec := &recorder{}
	eng := New(nil, rec, func() string { return focused })
	eng.Start(cfg, apps)
	return eng, rec
}

func keyDownEvent(code int) tap.KeyEvent {
	return tap.KeyEvent{Code: code}
}

func TestThresholdFiresAlertAndResets(t *testing.T) {
	eng, rec := startedEngine(t, testConfig(), []string{"Editor"}, "Editor")

	eng.HandleKey(keyDownEvent(30))
	eng.HandleKey(keyDownEvent(31))
	require.Equal(t, 2, eng.Status().Count)

	eng.HandleKey(keyDownEvent(32))

	counts, alerts := rec.snapshot()
	require.Equal(t, []int{1, 2, 3, 0}, counts)
	require.Len(t, alerts, 1)
	require.Equal(t, "Use your voice!", alerts[0].Message)
	require.Equal(t, 0, eng.Status().Count)
	require.True(t, eng.Running())
}

func TestModifiedKeysDoNotCount(t *testing.T) {
	eng, rec := startedEngine(t, testConfig(), []string{"Editor"}, "Editor")

	eng.HandleKey(tap.KeyEvent{Code: 30, Meta: true})
	eng.HandleKey(tap.KeyEvent{Code: 30, Ctrl: true})
	eng.HandleKey(tap.KeyEvent{Code: 30, Alt: true})
	eng.HandleKey(keyDownEvent(30))

	counts, _ := rec.snapshot()
	require.Equal(t, []int{1}, counts)
}

func TestIgnoredKeysDoNotCount(t *testing.T) {
	eng, _ := startedEngine(t, testConfig(), []string{"Editor"}, "Editor")

	for _, code := range []int{1, 14, 15, 28, 59, 88, 103, 111} {
		eng.HandleKey(keyDownEvent(code))
	}
	require.Equal(t, 0, eng.Status().Count)

	eng.HandleKey(keyDownEvent(57)) // space counts
	require.Equal(t, 1, eng.Status().Count)
}

func TestKeysInUnmonitoredAppDoNotCount(t *testing.T) {
	eng, _ := startedEngine(t, testConfig(), []string{"Editor"}, "Browser")

	eng.HandleKey(keyDownEvent(30))
	require.Equal(t, 0, eng.Status().Count)
}

func TestSubstringAppMatching(t *testing.T) {
	eng, _ := startedEngine(t, testConfig(), []string{"Code"}, "Code - Insiders")

	eng.HandleKey(keyDownEvent(30))
	require.Equal(t, 1, eng.Status().Count)
	require.True(t, eng.Status().CurrentAppMonitored)
}

func TestLeavingMonitoredAppsResetsCounter(t *testing.T) {
	eng, rec := startedEngine(t, testConfig(), []string{"Editor"}, "Editor")

	eng.HandleKey(keyDownEvent(30))
	eng.HandleKey(keyDownEvent(31))

	eng.HandleFocus("Editor", tap.FocusDeactivated)
	eng.HandleFocus("Browser", tap.FocusActivated)

	counts, _ := rec.snapshot()
	require.Equal(t, []int{1, 2, 0}, counts)
	require.Equal(t, 0, eng.Status().Count)
	require.Equal(t, "Browser", eng.Status().CurrentApp)
}

func TestSwitchingBetweenMonitoredAppsKeepsCounter(t *testing.T) {
	cfg := testConfig()
	cfg.Threshold = 10
	eng, _ := startedEngine(t, cfg, []string{"Editor", "Terminal"}, "Editor")

	eng.HandleKey(keyDownEvent(30))
	eng.HandleKey(keyDownEvent(31))

	eng.HandleFocus("Editor", tap.FocusDeactivated)
	eng.HandleFocus("Terminal", tap.FocusActivated)

	require.Equal(t, 2, eng.Status().Count)

	eng.HandleKey(keyDownEvent(32))
	require.Equal(t, 3, eng.Status().Count)
}

func TestDeactivatedFocusStopsCounting(t *testing.T) {
	eng, _ := startedEngine(t, testConfig(), []string{"Editor"}, "Editor")

	eng.HandleFocus("Editor", tap.FocusDeactivated)
	eng.HandleKey(keyDownEvent(30))

	require.Equal(t, 0, eng.Status().Count)
	require.Equal(t, "", eng.Status().CurrentApp)
}

func TestStartRespectsMasterSwitch(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	eng, _ := startedEngine(t, cfg, []string{"Editor"}, "Editor")

	require.False(t, eng.Running())
	eng.HandleKey(keyDownEvent(30))
	require.Equal(t, 0, eng.Status().Count)
}

func TestStopZeroesCounterAndIsIdempotent(t *testing.T) {
	eng, rec := startedEngine(t, testConfig(), []string{"Editor"}, "Editor")

	eng.HandleKey(keyDownEvent(30))
	eng.Stop()
	eng.Stop()

	counts, _ := rec.snapshot()
	require.Equal(t, []int{1, 0}, counts)
	require.False(t, eng.Running())
}

func TestRepeatStopStaysSilent(t *testing.T) {
	eng, rec := startedEngine(t, testConfig(), []string{"Editor"}, "Editor")

	eng.Stop()
	eng.Stop()
	eng.Stop()

	counts, _ := rec.snapshot()
	require.Equal(t, []int{0}, counts)
	require.False(t, eng.Running())
}

func TestToggleFlipsRunState(t *testing.T) {
	eng, _ := startedEngine(t, testConfig(), []string{"Editor"}, "Editor")

	require.True(t, eng.Running())
	eng.Toggle()
	require.False(t, eng.Running())
	eng.Toggle()
	require.True(t, eng.Running())
}

func TestReloadAppliesNewThresholdWhileRunning(t *testing.T) {
	eng, rec := startedEngine(t, testConfig(), []string{"Editor"}, "Editor")

	next := testConfig()
	next.Threshold = 2
	eng.Reload(next, []string{"Editor"})

	require.True(t, eng.Running())
	eng.HandleKey(keyDownEvent(30))
	eng.HandleKey(keyDownEvent(31))

	_, alerts := rec.snapshot()
	require.Len(t, alerts, 1)
}

func TestReloadWithDisabledConfigStopsEngine(t *testing.T) {
	eng, _ := startedEngine(t, testConfig(), []string{"Editor"}, "Editor")

	next := testConfig()
	next.Enabled = false
	eng.Reload(next, []string{"Editor"})

	require.False(t, eng.Running())
}

func TestInactivityResetZeroesCounter(t *testing.T) {
	eng, rec := startedEngine(t, testConfig(), []string{"Editor"}, "Editor")

	eng.HandleKey(keyDownEvent(30))
	eng.HandleKey(keyDownEvent(31))

	eng.mu.Lock()
	gen := eng.timerGen
	eng.mu.Unlock()
	eng.inactivityExpired(gen)

	counts, _ := rec.snapshot()
	require.Equal(t, []int{1, 2, 0}, counts)
}

func TestStaleInactivityTimerIsIgnored(t *testing.T) {
	eng, rec := startedEngine(t, testConfig(), []string{"Editor"}, "Editor")

	eng.HandleKey(keyDownEvent(30))
	eng.mu.Lock()
	stale := eng.timerGen
	eng.mu.Unlock()

	// Another keystroke re-arms the timer and invalidates the old generation.
	eng.HandleKey(keyDownEvent(31))
	eng.inactivityExpired(stale)

	counts, _ := rec.snapshot()
	require.Equal(t, []int{1, 2}, counts)
	require.Equal(t, 2, eng.Status().Count)
}

func TestStatusSnapshot(t *testing.T) {
	eng, _ := startedEngine(t, testConfig(), []string{"Editor", "Terminal"}, "Editor")
	eng.HandleKey(keyDownEvent(30))

	st := eng.Status()
	require.True(t, st.Enabled)
	require.Equal(t, 1, st.Count)
	require.Equal(t, 3, st.Threshold)
	require.Equal(t, "Editor", st.CurrentApp)
	require.True(t, st.CurrentAppMonitored)
	require.Equal(t, 2, st.MonitoredAppCount)
}

func TestIgnoredKeyTable(t *testing.T) {
	for code := 59; code <= 68; code++ {
		require.True(t, IgnoredKey(code), "F-row code %d", code)
	}
	require.True(t, IgnoredKey(87))
	require.True(t, IgnoredKey(88))
	require.False(t, IgnoredKey(30))
	require.False(t, IgnoredKey(57))
}
