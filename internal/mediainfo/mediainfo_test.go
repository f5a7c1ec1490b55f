package mediainfo

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFakeProber(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-ffprobe")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755))
	return path
}

func TestDuration(t *testing.T) {
	bin := writeFakeProber(t, `printf '{"format":{"duration":"123.456000"}}'`)

	d, err := Duration(context.Background(), bin, "ignored.ts")
	require.NoError(t, err)
	assert.InDelta(t, 123.456, d.Seconds(), 0.001)
}

func TestDurationMissingField(t *testing.T) {
	bin := writeFakeProber(t, `printf '{"format":{}}'`)

	_, err := Duration(context.Background(), bin, "ignored.ts")
	assert.ErrorContains(t, err, "no duration")
}

func TestDurationBadJSON(t *testing.T) {
	bin := writeFakeProber(t, `printf 'not json'`)

	_, err := Duration(context.Background(), bin, "ignored.ts")
	assert.Error(t, err)
}

func TestDurationProberFails(t *testing.T) {
	bin := writeFakeProber(t, `exit 1`)

	_, err := Duration(context.Background(), bin, "ignored.ts")
	assert.Error(t, err)
}

func TestDurationRespectsContext(t *testing.T) {
	bin := writeFakeProber(t, `sleep 60`)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := Duration(ctx, bin, "ignored.ts")
	assert.Error(t, err)
}
