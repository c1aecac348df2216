package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/rbright/nudge/internal/alert"
	"github.com/rbright/nudge/internal/config"
	"github.com/rbright/nudge/internal/engine"
	"github.com/rbright/nudge/internal/ipc"
	"github.com/rbright/nudge/internal/scheduler"
	"github.com/rbright/nudge/internal/server"
	"github.com/rbright/nudge/internal/tap"
	"github.com/rbright/nudge/internal/watch"
)

const (
	acquireProbeTimeout = 180 * time.Millisecond
	acquireRetries      = 8
	configPollInterval  = time.Second
	configDebounce      = 250 * time.Millisecond
)

func (r *Runner) newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the monitoring daemon in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.runDaemon(cmd.Context())
		},
	}
}

func (r *Runner) runDaemon(ctx context.Context) error {
	env, err := r.openEnvironment()
	if err != nil {
		return err
	}
	defer env.close()
	logger := env.logger

	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		return err
	}
	listener, err := ipc.Acquire(ctx, socketPath, acquireProbeTimeout, acquireRetries)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			return err
		}
		return fmt.Errorf("acquire socket %q: %w", socketPath, err)
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	daemonCtx, shutdown := context.WithCancel(ctx)
	defer shutdown()

	cfg := env.store.Config()

	hub := server.NewHub(logger)
	notifier := alert.NewDesktopNotifier(true, logger)
	focusTracker := tap.NewHyprFocusTracker(focusInterval(cfg), nil, logger)

	eng := engine.New(logger, engine.MultiListener{
		alert.NewEngineListener(notifier),
		server.NewHubListener(hub),
	}, focusTracker.Current)
	focusTracker.SetHandler(eng)
	env.store.AttachEngine(eng)

	if err := focusTracker.Prime(daemonCtx); err != nil {
		logger.Warn("focus tracker unavailable", "error", err.Error())
	}
	go func() {
		if err := focusTracker.Run(daemonCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("focus tracker stopped", "error", err.Error())
		}
	}()

	// The tap helper is an external process. When it is missing or dies the
	// daemon stays up and simply counts nothing.
	go r.runTapSource(daemonCtx, env, eng)

	sched := scheduler.New(logger)
	if err := sched.Configure(cfg.Schedule,
		func() { eng.Stop() },
		func() { eng.Start(env.store.Config(), env.store.EnabledApps()) },
	); err != nil {
		logger.Warn("schedule disabled", "error", err.Error())
	}
	sched.Start()
	defer sched.Stop()

	watcher := watch.New(env.loaded.Path, configPollInterval, configDebounce, func() {
		if err := env.store.ReloadFromDisk(); err != nil {
			logger.Warn("config reload failed", "error", err.Error())
		}
	})
	go watcher.Run(daemonCtx)

	var settings *server.Server
	if cfg.Server.Enabled {
		settings = server.New(cfg.Server, env.store, hub, logger)
		go func() {
			if err := settings.ListenAndServe(); err != nil {
				logger.Error("settings server failed", "error", err.Error())
			}
		}()
	}

	eng.Start(cfg, env.store.EnabledApps())
	logger.Info("daemon started",
		"config", env.loaded.Path,
		"socket", socketPath,
		"monitored_apps", len(env.store.EnabledApps()),
	)

	serveErrCh := make(chan error, 1)
	go func() {
		serveErrCh <- ipc.Serve(daemonCtx, listener, r.daemonHandler(env, eng, shutdown))
	}()

	<-daemonCtx.Done()

	eng.Stop()
	if settings != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = settings.Shutdown(shutdownCtx)
		cancel()
	}
	if err := <-serveErrCh; err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("ipc server failed: %w", err)
	}

	logger.Info("daemon stopped")
	return nil
}

func (r *Runner) runTapSource(ctx context.Context, env *environment, eng *engine.Engine) {
	logger := env.logger
	for {
		cfg := env.store.Config()
		argv, err := config.ParseArgv(cfg.TapCmd)
		if err != nil || len(argv) == 0 {
			logger.Warn("tap command not usable, key capture disabled", "tapCmd", cfg.TapCmd)
			return
		}

		source := tap.NewCommandSource(argv, eng, logger)
		err = source.Run(ctx)
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, tap.ErrNoCaptureCommand) || errors.Is(err, exec.ErrNotFound) {
			logger.Warn("tap command not found, key capture disabled", "tapCmd", cfg.TapCmd)
			return
		}
		logger.Warn("tap source exited, restarting", "error", errString(err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

func (r *Runner) daemonHandler(env *environment, eng *engine.Engine, shutdown context.CancelFunc) ipc.Handler {
	return ipc.HandlerFunc(func(_ context.Context, req ipc.Request) ipc.Response {
		switch req.Command {
		case "status":
			st := eng.Status()
			state := "paused"
			if st.Enabled {
				state = "running"
			}
			return ipc.Response{
				OK:         true,
				State:      state,
				Count:      st.Count,
				Threshold:  st.Threshold,
				CurrentApp: st.CurrentApp,
				Monitored:  st.MonitoredAppCount,
			}
		case "toggle":
			eng.Toggle()
			state := "paused"
			if eng.Running() {
				state = "running"
			}
			return ipc.Response{OK: true, State: state, Message: "monitoring " + state}
		case "reset":
			eng.Reset()
			return ipc.Response{OK: true, Message: "counter reset"}
		case "reload":
			if err := env.store.ReloadFromDisk(); err != nil {
				return ipc.Response{OK: false, Error: err.Error()}
			}
			return ipc.Response{OK: true, Message: "config reloaded"}
		case "stop":
			shutdown()
			return ipc.Response{OK: true, Message: "stopping"}
		default:
			return ipc.Response{OK: false, Error: fmt.Sprintf("unknown command %q", req.Command)}
		}
	})
}

func (r *Runner) newConfigureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Serve the browser settings page without starting the daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := r.openEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			serverCfg := env.store.Config().Server
			if serverCfg.Addr == "" {
				serverCfg.Addr = config.DefaultServerAddr
			}

			hub := server.NewHub(env.logger)
			settings := server.New(serverCfg, env.store, hub, env.logger)

			errCh := make(chan error, 1)
			go func() { errCh <- settings.ListenAndServe() }()

			fmt.Fprintf(cmd.OutOrStdout(), "settings page at http://%s (Ctrl-C to stop)\n", serverCfg.Addr)

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				return settings.Shutdown(shutdownCtx)
			}
		},
	}
}

func focusInterval(cfg config.Config) time.Duration {
	ms := cfg.FocusPollMS
	if ms <= 0 {
		ms = 300
	}
	return time.Duration(ms) * time.Millisecond
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
