// Package doctor runs runtime readiness diagnostics for config, registry,
// external tools, and the daemon socket.
package doctor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rbright/nudge/internal/config"
	"github.com/rbright/nudge/internal/ipc"
	"github.com/rbright/nudge/internal/registry"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(ctx context.Context, loaded config.Loaded, reg registry.Registry) Report {
	checks := []Check{}

	checks = append(checks, checkConfig(loaded))
	checks = append(checks, Check{
		Name:    "registry",
		Pass:    true,
		Message: fmt.Sprintf("%d categories loaded", reg.Len()),
	})
	checks = append(checks, checkMonitoredApps(loaded.Config, reg))
	checks = append(checks, checkBinary("busctl", "desktop notifications require busctl"))
	checks = append(checks, checkTapCommand(loaded.Config))
	checks = append(checks, checkSpeech(loaded.Config))
	checks = append(checks, checkDaemon(ctx))

	return Report{Checks: checks}
}

// checkConfig surfaces load-time warnings; a config that only loads via
// defaults fallback still passes, matching the never-fatal contract.
func checkConfig(loaded config.Loaded) Check {
	if len(loaded.Warnings) == 0 {
		return Check{Name: "config", Pass: true, Message: fmt.Sprintf("loaded %q", loaded.Path)}
	}
	messages := make([]string, 0, len(loaded.Warnings))
	for _, w := range loaded.Warnings {
		messages = append(messages, w.Message)
	}
	return Check{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("loaded %q with warnings: %s", loaded.Path, strings.Join(messages, "; ")),
	}
}

func checkMonitoredApps(cfg config.Config, reg registry.Registry) Check {
	apps := config.EnabledApps(cfg, reg)
	if len(apps) == 0 {
		return Check{Name: "monitored_apps", Pass: false, Message: "no categories or custom apps enabled; nothing will be counted"}
	}
	return Check{Name: "monitored_apps", Pass: true, Message: fmt.Sprintf("%d app patterns active", len(apps))}
}

func checkTapCommand(cfg config.Config) Check {
	argv, err := config.ParseArgv(cfg.TapCmd)
	if err != nil {
		return Check{Name: "tap_cmd", Pass: false, Message: err.Error()}
	}
	if len(argv) == 0 {
		return Check{Name: "tap_cmd", Pass: false, Message: "no key capture command configured"}
	}
	return checkBinaryNamed("tap_cmd", argv[0], "key capture command is available")
}

// checkSpeech only fails when voice alerts are enabled but no speech tool is
// installed.
func checkSpeech(cfg config.Config) Check {
	for _, bin := range []string{"spd-say", "espeak"} {
		if path, err := exec.LookPath(bin); err == nil {
			return Check{Name: "speech", Pass: true, Message: fmt.Sprintf("found %s at %s", bin, path)}
		}
	}
	if cfg.Voice.Enabled {
		return Check{Name: "speech", Pass: false, Message: "voice alerts enabled but neither spd-say nor espeak found in PATH"}
	}
	return Check{Name: "speech", Pass: true, Message: "no speech tool found (voice alerts disabled)"}
}

func checkDaemon(ctx context.Context) Check {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		return Check{Name: "daemon", Pass: true, Message: err.Error()}
	}
	alive, probeErr := ipc.Probe(ctx, socketPath, 220*time.Millisecond)
	if probeErr != nil {
		return Check{Name: "daemon", Pass: false, Message: probeErr.Error()}
	}
	if alive {
		return Check{Name: "daemon", Pass: true, Message: fmt.Sprintf("running at %s", socketPath)}
	}
	return Check{Name: "daemon", Pass: true, Message: "not running"}
}

func checkBinary(bin string, okMsg string) Check {
	return checkBinaryNamed(bin, bin, okMsg)
}

func checkBinaryNamed(name, bin, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}
