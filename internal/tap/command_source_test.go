package tap

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type keyRecorder struct {
	mu     sync.Mutex
	events []KeyEvent
}

func (r *keyRecorder) HandleKey(event KeyEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *keyRecorder) snapshot() []KeyEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]KeyEvent(nil), r.events...)
}

func TestCommandSourceDeliversEvents(t *testing.T) {
	rec := &keyRecorder{}
	script := `printf '%s\n' '{"code": 30}' '' 'not json' '{"code": 31, "ctrl": true}'`
	source := NewCommandSource([]string{"/bin/sh", "-c", script}, rec, nil)

	err := source.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, []KeyEvent{
		{Code: 30},
		{Code: 31, Ctrl: true},
	}, rec.snapshot())
}

func TestCommandSourceMissingCommand(t *testing.T) {
	source := NewCommandSource(nil, &keyRecorder{}, nil)
	require.ErrorIs(t, source.Run(context.Background()), ErrNoCaptureCommand)

	source = NewCommandSource([]string{"definitely-not-a-real-binary-1234"}, &keyRecorder{}, nil)
	err := source.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}

func TestCommandSourceReportsHelperFailure(t *testing.T) {
	source := NewCommandSource([]string{"/bin/sh", "-c", "exit 3"}, &keyRecorder{}, nil)
	err := source.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "exited")
}

func TestCommandSourceStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := &keyRecorder{}
	source := NewCommandSource([]string{"/bin/sh", "-c", "sleep 10"}, rec, nil)

	done := make(chan error, 1)
	go func() { done <- source.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("source did not stop after cancel")
	}
}

func TestKeyEventModified(t *testing.T) {
	require.False(t, KeyEvent{Code: 30}.Modified())
	require.True(t, KeyEvent{Code: 30, Ctrl: true}.Modified())
	require.True(t, KeyEvent{Code: 30, Alt: true}.Modified())
	require.True(t, KeyEvent{Code: 30, Meta: true}.Modified())
}
