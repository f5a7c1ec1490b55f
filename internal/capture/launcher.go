package capture

import "context"

// Launcher creates and starts Runners from a shared Config.
type Launcher struct {
	cfg Config
}

// NewLauncher returns a Launcher for the given capture configuration.
func NewLauncher(cfg Config) *Launcher {
	return &Launcher{cfg: cfg}
}

// Launch creates a task for channel and starts its subprocess. On spawn
// failure no task is returned; the caller retries on a later tick.
func (l *Launcher) Launch(ctx context.Context, channel string) (*Runner, error) {
	r := NewRunner(l.cfg, channel)
	if err := r.Start(ctx); err != nil {
		return nil, err
	}
	return r, nil
}
