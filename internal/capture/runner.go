// Package capture owns the per-channel recording task: exactly one external
// capture subprocess per task, with explicit lifecycle state.
package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ttvtools/ttvrec/internal/log"
	"github.com/ttvtools/ttvrec/internal/metrics"
	"github.com/ttvtools/ttvrec/internal/procgroup"
)

// State is the lifecycle state of a recording task.
type State int

const (
	StateCreated State = iota
	StateRunning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrAlreadyStarted is returned when Start is called twice on one Runner.
var ErrAlreadyStarted = errors.New("capture already started")

// Config holds the settings shared by all capture tasks.
type Config struct {
	// BinPath is the capture tool binary (default "streamlink").
	BinPath string
	// OutputDir is where capture files are written; created on demand.
	OutputDir string
	// Quality is the stream quality selection (default "best").
	Quality string
	// ExtraArgs are appended to the computed argument list.
	ExtraArgs []string

	// Args, when set, replaces the computed argument list entirely. Tests
	// use this to substitute a harmless command.
	Args []string
}

// Runner is one in-flight capture. It exclusively owns its subprocess handle;
// nothing else may signal that process except through Cancel.
type Runner struct {
	cfg        Config
	channel    string
	outputPath string
	id         string
	logger     zerolog.Logger

	cmd    *exec.Cmd
	waitCh chan error
	ring   *LineRing
	start  time.Time

	mu       sync.Mutex
	state    State
	exitCode int
}

// NewRunner creates a task for the given channel. The output path is derived
// from the channel name and the current time, which keeps it unique per task
// instance.
func NewRunner(cfg Config, channel string) *Runner {
	if cfg.BinPath == "" {
		cfg.BinPath = "streamlink"
	}
	if cfg.Quality == "" {
		cfg.Quality = "best"
	}

	id := uuid.NewString()
	name := fmt.Sprintf("%s_%s.ts", channel, time.Now().Format("20060102_150405"))

	return &Runner{
		cfg:        cfg,
		channel:    channel,
		outputPath: filepath.Join(cfg.OutputDir, name),
		id:         id,
		logger: log.WithComponent("capture").With().
			Str(log.FieldChannel, channel).
			Str(log.FieldTaskID, id).
			Logger(),
		ring:   NewLineRing(256),
		waitCh: make(chan error, 1),
		state:  StateCreated,
	}
}

// Channel returns the channel this task records.
func (r *Runner) Channel() string { return r.channel }

// OutputPath returns the capture file path computed at creation.
func (r *Runner) OutputPath() string { return r.outputPath }

// ID returns the task identifier used for log correlation.
func (r *Runner) ID() string { return r.id }

func (r *Runner) buildArgs() []string {
	if len(r.cfg.Args) > 0 {
		return r.cfg.Args
	}
	args := []string{
		"--twitch-disable-ads",
		"-o", r.outputPath,
		"https://twitch.tv/" + r.channel,
		r.cfg.Quality,
	}
	return append(args, r.cfg.ExtraArgs...)
}

// Start spawns the capture subprocess and transitions Created → Running.
// Spawn failure transitions directly to Failed and leaves nothing behind for
// the caller to clean up.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateCreated {
		return ErrAlreadyStarted
	}

	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		r.state = StateFailed
		metrics.IncCaptureStart("err")
		return fmt.Errorf("create output dir: %w", err)
	}

	cmd := exec.Command(r.cfg.BinPath, r.buildArgs()...) // #nosec G204 -- binary and args come from trusted config
	cmd.Stdout = r.ring
	cmd.Stderr = r.ring
	procgroup.Set(cmd)

	r.logger.Debug().
		Str(log.FieldEvent, "capture.spawn").
		Str("command", cmd.String()).
		Msg("spawning capture process")

	if err := cmd.Start(); err != nil {
		r.state = StateFailed
		metrics.IncCaptureStart("err")
		return fmt.Errorf("start capture for %s: %w", r.channel, err)
	}

	r.cmd = cmd
	r.start = time.Now()
	r.state = StateRunning
	metrics.IncCaptureStart("ok")

	r.logger.Info().
		Str(log.FieldEvent, "capture.start").
		Int(log.FieldPID, cmd.Process.Pid).
		Str(log.FieldOutputPath, r.outputPath).
		Msg("recording started")

	go r.reap(ctx)
	return nil
}

// reap waits for the subprocess and records the terminal state.
func (r *Runner) reap(ctx context.Context) {
	err := r.cmd.Wait()

	r.mu.Lock()
	code := 0
	if err != nil {
		code = 1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
	}
	r.exitCode = code
	if code == 0 {
		r.state = StateCompleted
	} else {
		r.state = StateFailed
	}
	state := r.state
	elapsed := time.Since(r.start)
	r.mu.Unlock()

	if state == StateCompleted {
		metrics.IncCaptureExit("clean")
		r.logger.Info().
			Str(log.FieldEvent, "capture.exit").
			Dur("elapsed", elapsed).
			Msg("recording finished")
	} else {
		reason := "error"
		if ctx.Err() != nil {
			reason = "cancelled"
		}
		metrics.IncCaptureExit(reason)
		r.logger.Warn().
			Str(log.FieldEvent, "capture.exit").
			Int(log.FieldExitCode, code).
			Dur("elapsed", elapsed).
			Strs("output_tail", r.ring.LastN(10)).
			Msg("recording ended abnormally")
	}

	r.waitCh <- err
}

// Poll reports the current lifecycle state without blocking.
func (r *Runner) Poll() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// ExitCode returns the subprocess exit code; only meaningful once Poll
// reports Completed or Failed.
func (r *Runner) ExitCode() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exitCode
}

// Cancel sends a termination request to the capture process group. It is
// fire-and-forget: it neither waits for the process nor guarantees a final
// state.
func (r *Runner) Cancel() {
	r.mu.Lock()
	cmd := r.cmd
	r.mu.Unlock()

	if cmd == nil {
		return
	}
	r.logger.Info().
		Str(log.FieldEvent, "capture.cancel").
		Msg("stopping recording")
	if err := procgroup.Kill(cmd, syscall.SIGTERM); err != nil {
		r.logger.Debug().Err(err).Msg("signal delivery failed")
	}
}

// Shutdown stops the capture and waits up to grace for it to exit, escalating
// to SIGKILL. Used by tests and teardown paths that must not leak processes.
func (r *Runner) Shutdown(grace time.Duration) error {
	r.mu.Lock()
	cmd := r.cmd
	r.mu.Unlock()
	return procgroup.Terminate(cmd, r.waitCh, grace)
}

// Done exposes process exit for callers that need to block (tests).
func (r *Runner) Done() <-chan error { return r.waitCh }
