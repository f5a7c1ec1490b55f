// Package supervisor runs the channel monitoring loop: it polls liveness for
// unclaimed channels, launches recording tasks, reaps finished ones, and
// dispatches post-processing, one tick at a time.
package supervisor

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ttvtools/ttvrec/internal/capture"
	"github.com/ttvtools/ttvrec/internal/log"
	"github.com/ttvtools/ttvrec/internal/metrics"
	"github.com/ttvtools/ttvrec/internal/probe"
)

// Task is the supervisor's view of one in-flight recording.
// capture.Runner is the production implementation.
type Task interface {
	Channel() string
	OutputPath() string
	Poll() capture.State
	Cancel()
}

// Launcher creates and starts a Task for a live channel.
type Launcher interface {
	Launch(ctx context.Context, channel string) (Task, error)
}

// LaunchFunc adapts a function to the Launcher interface.
type LaunchFunc func(ctx context.Context, channel string) (Task, error)

func (f LaunchFunc) Launch(ctx context.Context, channel string) (Task, error) {
	return f(ctx, channel)
}

// Remuxer post-processes a completed capture file.
type Remuxer interface {
	Remux(ctx context.Context, inputPath string) (string, error)
}

// Config holds the supervisor settings, fixed for the process lifetime.
type Config struct {
	// Channels is the ordered watch list. Order determines tick iteration
	// order; it has no other meaning.
	Channels []string
	// PollInterval is the time between tick starts.
	PollInterval time.Duration
	// Remux enables post-processing of completed captures.
	Remux bool
}

// Supervisor owns the channel→task registry. The registry is mutated only by
// the Run goroutine at tick boundaries; no locks are needed.
type Supervisor struct {
	cfg      Config
	prober   probe.Prober
	launcher Launcher
	remuxer  Remuxer
	logger   zerolog.Logger

	clock    Clock
	registry map[string]Task
}

// New creates a Supervisor. remuxer may be nil when cfg.Remux is false.
func New(cfg Config, prober probe.Prober, launcher Launcher, remuxer Remuxer) *Supervisor {
	return &Supervisor{
		cfg:      cfg,
		prober:   prober,
		launcher: launcher,
		remuxer:  remuxer,
		logger:   log.WithComponent("supervisor"),
		clock:    RealClock{},
		registry: make(map[string]Task, len(cfg.Channels)),
	}
}

// Run executes the monitoring loop until ctx is cancelled. On cancellation it
// requests termination of every registered task and returns nil; it never
// returns under normal operation.
func (s *Supervisor) Run(ctx context.Context) error {
	s.logger.Info().
		Str(log.FieldEvent, "supervisor.start").
		Strs("channels", s.cfg.Channels).
		Dur("poll_interval", s.cfg.PollInterval).
		Bool("remux", s.cfg.Remux).
		Msg("watching channels")

	// First tick immediately, then on the interval.
	s.tick(ctx)

	timer := s.clock.NewTimer(s.cfg.PollInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return nil
		case <-timer.C():
			s.tick(ctx)
			timer.Reset(s.cfg.PollInterval)
		}
	}
}

// tick runs one pass over the watch list. Reaping strictly precedes probing,
// so a channel whose task just finished is re-probed in the same tick and can
// never hold two tasks at once.
func (s *Supervisor) tick(ctx context.Context) {
	for _, channel := range s.cfg.Channels {
		task, ok := s.registry[channel]
		if !ok {
			continue
		}
		if state := task.Poll(); state != capture.StateRunning {
			s.reap(ctx, channel, task, state)
		}
	}

	for _, channel := range s.cfg.Channels {
		if ctx.Err() != nil {
			return
		}
		if _, recording := s.registry[channel]; recording {
			continue
		}
		s.launch(ctx, channel)
	}
}

// reap finalises a task whose subprocess has exited and removes it from the
// registry. A completed capture is remuxed synchronously when enabled; remux
// failure is logged and does not affect the capture's outcome.
func (s *Supervisor) reap(ctx context.Context, channel string, task Task, state capture.State) {
	logger := s.logger.With().Str(log.FieldChannel, channel).Logger()

	if state == capture.StateCompleted {
		logger.Info().
			Str(log.FieldEvent, "recording.stopped").
			Str(log.FieldOutputPath, task.OutputPath()).
			Msg("recording stopped")
		if s.cfg.Remux && s.remuxer != nil {
			if out, err := s.remuxer.Remux(ctx, task.OutputPath()); err != nil {
				logger.Error().
					Err(err).
					Str(log.FieldEvent, "remux.failed").
					Msg("remux failed")
			} else {
				logger.Info().
					Str(log.FieldEvent, "remux.ok").
					Str(log.FieldOutputPath, out).
					Msg("remux succeeded")
			}
		}
	} else {
		logger.Warn().
			Str(log.FieldEvent, "recording.failed").
			Str(log.FieldNewState, state.String()).
			Msg("recording ended with failure")
	}

	delete(s.registry, channel)
	metrics.DecActiveRecordings()
}

// launch probes an unclaimed channel and registers a new task when live.
func (s *Supervisor) launch(ctx context.Context, channel string) {
	logger := s.logger.With().Str(log.FieldChannel, channel).Logger()

	if s.prober.Probe(ctx, channel) != probe.StatusLive {
		logger.Debug().
			Str(log.FieldEvent, "probe.offline").
			Msg("channel offline")
		return
	}

	task, err := s.launcher.Launch(ctx, channel)
	if err != nil {
		// No registry entry: the channel is retried next tick.
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "capture.spawn_failed").
			Msg("failed to start recording")
		return
	}

	s.registry[channel] = task
	metrics.IncActiveRecordings()
	logger.Info().
		Str(log.FieldEvent, "recording.started").
		Str(log.FieldOutputPath, task.OutputPath()).
		Msg("recording started")
}

// shutdown issues a best-effort cancel to every registered task before the
// registry is discarded.
func (s *Supervisor) shutdown() {
	s.logger.Info().
		Str(log.FieldEvent, "supervisor.stop").
		Int("active", len(s.registry)).
		Msg("shutting down, cancelling active recordings")

	for channel, task := range s.registry {
		task.Cancel()
		delete(s.registry, channel)
		metrics.DecActiveRecordings()
	}
}
