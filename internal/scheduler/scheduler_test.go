package scheduler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/nudge/internal/config"
)

func TestConfigureDisabledScheduleIsNoop(t *testing.T) {
	s := New(nil)
	called := false
	err := s.Configure(config.ScheduleConfig{Enabled: false}, func() { called = true }, func() { called = true })
	require.NoError(t, err)
	require.False(t, called)
}

func TestConfigureAcceptsValidSpecs(t *testing.T) {
	s := New(nil)
	err := s.Configure(config.ScheduleConfig{
		Enabled:    true,
		PauseSpec:  "0 22 * * *",
		ResumeSpec: "0 8 * * 1-5",
	}, func() {}, func() {})
	require.NoError(t, err)

	s.Start()
	s.Stop()
}

func TestConfigureRejectsInvalidSpecs(t *testing.T) {
	s := New(nil)
	err := s.Configure(config.ScheduleConfig{
		Enabled:    true,
		PauseSpec:  "not a cron spec",
		ResumeSpec: "0 8 * * *",
	}, func() {}, func() {})
	require.Error(t, err)
	require.Contains(t, err.Error(), "pause spec")

	err = s.Configure(config.ScheduleConfig{
		Enabled:    true,
		PauseSpec:  "0 22 * * *",
		ResumeSpec: "61 8 * * *",
	}, func() {}, func() {})
	require.Error(t, err)
	require.Contains(t, err.Error(), "resume spec")
}
