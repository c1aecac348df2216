package tap

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// ErrNoCaptureCommand indicates the capture helper is not configured.
var ErrNoCaptureCommand = errors.New("no key capture command configured")

// CommandSource runs the configured capture helper and forwards each JSON
// line on its stdout as a key event. The helper owns the OS-level hook; this
// process only reads its event stream.
type CommandSource struct {
	argv    []string
	logger  *slog.Logger
	handler KeyHandler
}

// NewCommandSource builds a key source from a parsed capture command argv.
func NewCommandSource(argv []string, handler KeyHandler, logger *slog.Logger) *CommandSource {
	return &CommandSource{argv: argv, logger: logger, handler: handler}
}

// Run starts the capture helper and pumps its events until the stream ends or
// ctx is cancelled. A missing helper is reported to the caller, who treats it
// as a warning: the engine still initializes, monitoring resumes once the
// helper is available and the daemon restarts.
func (s *CommandSource) Run(ctx context.Context) error {
	if len(s.argv) == 0 {
		return ErrNoCaptureCommand
	}

	if _, err := exec.LookPath(s.argv[0]); err != nil {
		return fmt.Errorf("key capture command %q not found: %w", s.argv[0], err)
	}

	cmd := exec.CommandContext(ctx, s.argv[0], s.argv[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("open capture stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start key capture command %q: %w", s.argv[0], err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event KeyEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			s.log("skipping malformed key event", "line", line, "error", err.Error())
			continue
		}
		s.handler.HandleKey(event)
	}

	waitErr := cmd.Wait()
	if ctx.Err() != nil {
		return nil
	}
	if waitErr != nil {
		return fmt.Errorf("key capture command exited: %w", waitErr)
	}
	return nil
}

func (s *CommandSource) log(message string, fields ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Debug(message, fields...)
}
