// Package app wires the command surface to the daemon, the config store, and
// the IPC socket.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rbright/nudge/internal/config"
	"github.com/rbright/nudge/internal/doctor"
	"github.com/rbright/nudge/internal/ipc"
	"github.com/rbright/nudge/internal/logging"
	"github.com/rbright/nudge/internal/preset"
	"github.com/rbright/nudge/internal/registry"
	"github.com/rbright/nudge/internal/setup"
	"github.com/rbright/nudge/internal/version"
)

const forwardTimeout = 220 * time.Millisecond

// Runner carries the streams and logger every command writes to. Tests inject
// their own buffers.
type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	configPath string
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := &Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r *Runner) Execute(ctx context.Context, args []string) int {
	root := r.newRootCmd()
	root.SetArgs(args)
	root.SetOut(r.Stdout)
	root.SetErr(r.Stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func (r *Runner) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "nudge",
		Short:         "Keystroke-count reminders for apps where you could dictate instead",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&r.configPath, "config", "", "config file path (default: $XDG_CONFIG_HOME/nudge/config.json)")

	root.AddCommand(
		r.newRunCmd(),
		r.newStatusCmd(),
		r.newToggleCmd(),
		r.newResetCmd(),
		r.newStopCmd(),
		r.newEnableCmd(),
		r.newDisableCmd(),
		r.newPresetCmd(),
		r.newThresholdCmd(),
		r.newAppsCmd(),
		r.newCategoryCmd(),
		r.newConfigureCmd(),
		r.newSetupCmd(),
		r.newDoctorCmd(),
		r.newUninstallCmd(),
		r.newVersionCmd(),
	)
	return root
}

// environment is the loaded state shared by most commands.
type environment struct {
	logging logging.Runtime
	logger  *slog.Logger
	reg     registry.Registry
	loaded  config.Loaded
	store   *Store
}

func (e *environment) close() {
	_ = e.logging.Close()
}

func (r *Runner) openEnvironment() (*environment, error) {
	logRuntime, err := logging.New()
	if err != nil {
		return nil, fmt.Errorf("setup logging: %w", err)
	}

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	registryPath, err := config.RegistryPath()
	if err != nil {
		_ = logRuntime.Close()
		return nil, err
	}
	reg, err := registry.Load(registryPath)
	if err != nil {
		_ = logRuntime.Close()
		return nil, err
	}

	loaded, err := config.Load(r.configPath, reg)
	if err != nil {
		_ = logRuntime.Close()
		return nil, err
	}
	for _, w := range loaded.Warnings {
		fmt.Fprintf(r.Stderr, "warning: %s\n", w.Message)
		logger.Warn("config warning", "message", w.Message)
	}

	return &environment{
		logging: logRuntime,
		logger:  logger,
		reg:     reg,
		loaded:  loaded,
		store:   NewStore(loaded, reg, logger),
	}, nil
}

func (r *Runner) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return nil
		},
	}
}

func (r *Runner) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the daemon state and live keystroke count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, handled, err := r.forward(cmd.Context(), "status")
			if err != nil {
				return err
			}
			if !handled {
				fmt.Fprintln(cmd.OutOrStdout(), "stopped")
				return nil
			}
			line := resp.State
			if resp.State == "running" {
				line = fmt.Sprintf("running  count=%d/%d", resp.Count, resp.Threshold)
				if resp.CurrentApp != "" {
					line += "  app=" + resp.CurrentApp
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
			return nil
		},
	}
}

func (r *Runner) newToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Pause or resume monitoring in the running daemon",
		Args:  cobra.NoArgs,
		RunE:  r.forwardRunE("toggle"),
	}
}

func (r *Runner) newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset the keystroke counter to zero",
		Args:  cobra.NoArgs,
		RunE:  r.forwardRunE("reset"),
	}
}

func (r *Runner) newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, handled, err := r.forward(cmd.Context(), "stop")
			if err != nil {
				return err
			}
			if !handled {
				fmt.Fprintln(cmd.OutOrStdout(), "stopped")
				return nil
			}
			if resp.Message != "" {
				fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			}
			return nil
		},
	}
}

// forwardRunE builds a RunE that sends one command to the daemon and requires
// it to be running.
func (r *Runner) forwardRunE(command string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		resp, handled, err := r.forward(cmd.Context(), command)
		if err != nil {
			return err
		}
		if !handled {
			return errors.New("nudge daemon is not running")
		}
		if resp.Message != "" {
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
		}
		return nil
	}
}

// forward sends a command over the IPC socket. handled reports whether a
// daemon answered; a missing socket or refused connection means no daemon.
func (r *Runner) forward(ctx context.Context, command string) (ipc.Response, bool, error) {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		return ipc.Response{}, false, err
	}

	resp, err := ipc.Send(ctx, socketPath, ipc.Request{Command: command}, forwardTimeout)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}
	if ipc.IsSocketMissing(err) || ipc.IsConnectionRefused(err) {
		return ipc.Response{}, false, nil
	}
	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", command, err)
}

func (r *Runner) newEnableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable",
		Short: "Enable monitoring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.setEnabled(cmd, true)
		},
	}
}

func (r *Runner) newDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable",
		Short: "Disable monitoring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.setEnabled(cmd, false)
		},
	}
}

func (r *Runner) setEnabled(cmd *cobra.Command, enabled bool) error {
	env, err := r.openEnvironment()
	if err != nil {
		return err
	}
	defer env.close()

	err = env.store.Update(func(doc config.Document) (config.Document, error) {
		doc["enabled"] = enabled
		return doc, nil
	})
	if err != nil {
		return err
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "monitoring %s\n", state)
	r.nudgeDaemon(cmd.Context())
	return nil
}

func (r *Runner) newPresetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preset <name>",
		Short: "Apply a named preset (" + strings.Join(preset.Names, ", ") + ")",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := r.openEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			err = env.store.Update(func(doc config.Document) (config.Document, error) {
				return preset.Apply(doc, args[0])
			})
			if err != nil {
				return err
			}

			cfg := env.store.Config()
			fmt.Fprintf(cmd.OutOrStdout(), "applied preset %s (threshold=%d resetAfterSeconds=%d)\n",
				strings.ToLower(args[0]), cfg.Threshold, cfg.ResetAfterSeconds)
			r.nudgeDaemon(cmd.Context())
			return nil
		},
	}
}

func (r *Runner) newThresholdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "threshold <count>",
		Short: "Set the keystroke threshold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("threshold must be a number, got %q", args[0])
			}
			clamped := config.ClampThreshold(n, config.DefaultThreshold)

			env, err := r.openEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			err = env.store.Update(func(doc config.Document) (config.Document, error) {
				doc["threshold"] = clamped
				return doc, nil
			})
			if err != nil {
				return err
			}

			if clamped != n {
				fmt.Fprintf(cmd.OutOrStdout(), "threshold clamped to %d (allowed range %d-%d)\n",
					clamped, config.ThresholdMin, config.ThresholdMax)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "threshold set to %d\n", clamped)
			}
			r.nudgeDaemon(cmd.Context())
			return nil
		},
	}
}

func (r *Runner) newAppsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apps <name,name,...>",
		Short: "Set the custom monitored app list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apps := config.ParseApps(args[0])

			env, err := r.openEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			err = env.store.Update(func(doc config.Document) (config.Document, error) {
				doc["customApps"] = map[string]any{
					"enabled": len(apps) > 0,
					"apps":    apps,
				}
				return doc, nil
			})
			if err != nil {
				return err
			}

			if len(apps) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "custom app list cleared")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "monitoring custom apps: %s\n", strings.Join(apps, ", "))
			}
			r.nudgeDaemon(cmd.Context())
			return nil
		},
	}
}

func (r *Runner) newCategoryCmd() *cobra.Command {
	category := &cobra.Command{
		Use:   "category",
		Short: "Inspect and toggle app categories",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories and their state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := r.openEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			cfg := env.store.Config()
			for _, cat := range env.reg.Categories() {
				mark := " "
				if cfg.Categories[cat.ID].Enabled {
					mark = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-14s %s (%s)\n",
					mark, cat.ID, cat.Name, strings.Join(cat.Apps, ", "))
			}
			return nil
		},
	}

	category.AddCommand(list)
	category.AddCommand(r.newCategoryToggleCmd("enable", true))
	category.AddCommand(r.newCategoryToggleCmd("disable", false))
	return category
}

func (r *Runner) newCategoryToggleCmd(verb string, enabled bool) *cobra.Command {
	short := "Enable a category"
	if !enabled {
		short = "Disable a category"
	}
	return &cobra.Command{
		Use:   verb + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := r.openEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			id := args[0]
			if _, ok := env.reg.Get(id); !ok {
				return fmt.Errorf("unknown category %q (known: %s)", id, strings.Join(categoryIDs(env.reg), ", "))
			}

			err = env.store.Update(func(doc config.Document) (config.Document, error) {
				categories, _ := doc["categories"].(map[string]any)
				if categories == nil {
					categories = map[string]any{}
				}
				categories[id] = map[string]any{"enabled": enabled}
				doc["categories"] = categories
				return doc, nil
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "category %s %sd\n", id, verb)
			r.nudgeDaemon(cmd.Context())
			return nil
		},
	}
}

func categoryIDs(reg registry.Registry) []string {
	ids := make([]string, 0, reg.Len())
	for _, cat := range reg.Categories() {
		ids = append(ids, cat.ID)
	}
	sort.Strings(ids)
	return ids
}

func (r *Runner) newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactive first-run configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := r.openEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			err = env.store.Update(func(doc config.Document) (config.Document, error) {
				return setup.Run(cmd.InOrStdin(), cmd.OutOrStdout(), doc, env.reg)
			})
			if err != nil {
				return err
			}
			r.nudgeDaemon(cmd.Context())
			return nil
		},
	}
}

func (r *Runner) newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run configuration and environment checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := r.openEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			report := doctor.Run(cmd.Context(), env.loaded, env.reg)
			fmt.Fprintln(cmd.OutOrStdout(), report.String())
			if !report.OK() {
				return errors.New("doctor found problems")
			}
			return nil
		},
	}
}

func (r *Runner) newUninstallCmd() *cobra.Command {
	var assumeYes bool
	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Stop the daemon and remove configuration and state files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !assumeYes {
				fmt.Fprint(cmd.OutOrStdout(), "Remove nudge configuration and state? [y/N] ")
				var answer string
				_, _ = fmt.Fscanln(cmd.InOrStdin(), &answer)
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "aborted")
					return nil
				}
			}

			if _, handled, err := r.forward(cmd.Context(), "stop"); err == nil && handled {
				fmt.Fprintln(cmd.OutOrStdout(), "stopped running daemon")
			}

			configDir, err := config.Dir()
			if err != nil {
				return err
			}
			if err := os.RemoveAll(configDir); err != nil {
				return fmt.Errorf("remove config dir %q: %w", configDir, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", configDir)

			if stateDir, err := logging.StateDir(); err == nil {
				if err := os.RemoveAll(stateDir); err == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", stateDir)
				}
			}
			if socketPath, err := ipc.RuntimeSocketPath(); err == nil {
				_ = os.Remove(socketPath)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&assumeYes, "yes", false, "skip the confirmation prompt")
	return cmd
}

// nudgeDaemon asks a running daemon to reload from disk after a CLI config
// change. Best effort: the config watcher catches it anyway.
func (r *Runner) nudgeDaemon(ctx context.Context) {
	_, _, _ = r.forward(ctx, "reload")
}
