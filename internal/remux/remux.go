// Package remux wraps the external transcoder for container remuxing of
// finished captures.
package remux

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ttvtools/ttvrec/internal/log"
	"github.com/ttvtools/ttvrec/internal/metrics"
)

// SubDir is the sibling directory capture remuxes land in.
const SubDir = "mkv"

// OutputPath derives the deterministic remux target for an input file:
// same base name, mkv/ subdirectory next to the input, .mkv extension.
// Re-running on the same input yields the same path.
func OutputPath(input string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + ".mkv"
	return filepath.Join(filepath.Dir(input), SubDir, base)
}

// Remuxer invokes the transcoder with stream copy. One Remuxer is shared by
// all tasks; invocations are independent.
type Remuxer struct {
	// BinPath is the transcoder binary (default "ffmpeg").
	BinPath string
	// OnProgress, when set, receives a snapshot every time the transcoder
	// reports progress.
	OnProgress func(Progress)

	logger zerolog.Logger
}

// New returns a Remuxer using the given transcoder binary.
func New(binPath string) *Remuxer {
	if binPath == "" {
		binPath = "ffmpeg"
	}
	return &Remuxer{
		BinPath: binPath,
		logger:  log.WithComponent("remux"),
	}
}

// Remux converts input into the derived MKV path, overwriting any previous
// result. The output subdirectory is created if absent. Returns the output
// path on success.
func (x *Remuxer) Remux(ctx context.Context, input string) (string, error) {
	out := OutputPath(input)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		metrics.IncRemux("err")
		return "", fmt.Errorf("create remux dir: %w", err)
	}

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-nostats",
		"-progress", "pipe:1",
		"-y",
		"-i", input,
		"-c", "copy",
		out,
	}

	cmd := exec.CommandContext(ctx, x.BinPath, args...) // #nosec G204 -- binary from trusted config, paths computed internally
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		metrics.IncRemux("err")
		return "", fmt.Errorf("remux stdout pipe: %w", err)
	}

	x.logger.Debug().
		Str(log.FieldEvent, "remux.start").
		Str(log.FieldPath, input).
		Str(log.FieldOutputPath, out).
		Msg("starting remux")

	if err := cmd.Start(); err != nil {
		metrics.IncRemux("err")
		return "", fmt.Errorf("start remux: %w", err)
	}

	tracker := NewTracker()
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if tracker.ParseLine(scanner.Text()) && x.OnProgress != nil {
			x.OnProgress(tracker.Snapshot())
		}
	}

	if err := cmd.Wait(); err != nil {
		metrics.IncRemux("err")
		tail := strings.TrimSpace(stderr.String())
		if tail != "" {
			return "", fmt.Errorf("remux %s: %w: %s", input, err, tail)
		}
		return "", fmt.Errorf("remux %s: %w", input, err)
	}

	metrics.IncRemux("ok")
	x.logger.Info().
		Str(log.FieldEvent, "remux.done").
		Str(log.FieldOutputPath, out).
		Msg("remux finished")
	return out, nil
}
