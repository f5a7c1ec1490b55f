// Package mediainfo wraps the stream prober for the one scalar this project
// needs: media duration.
package mediainfo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// Duration returns the duration of the media file at path, as reported by the
// prober binary (ffprobe-compatible JSON output).
func Duration(ctx context.Context, binPath, path string) (time.Duration, error) {
	if binPath == "" {
		binPath = "ffprobe"
	}

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-i", path,
	}

	cmd := exec.CommandContext(ctx, binPath, args...) // #nosec G204 -- binary from trusted config
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("probe %s: %w", path, err)
	}

	var data struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &data); err != nil {
		return 0, fmt.Errorf("probe %s: decode output: %w", path, err)
	}
	if data.Format.Duration == "" {
		return 0, fmt.Errorf("probe %s: no duration reported", path)
	}

	secs, err := strconv.ParseFloat(data.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("probe %s: bad duration %q: %w", path, data.Format.Duration, err)
	}
	return time.Duration(secs * float64(time.Second)), nil
}
