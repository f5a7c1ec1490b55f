package remux

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrackerParseLine(t *testing.T) {
	tr := NewTracker()

	assert.True(t, tr.ParseLine("out_time_ms=2500000"))
	assert.Equal(t, 2500*time.Millisecond, tr.Snapshot().OutTime)

	assert.True(t, tr.ParseLine("total_size=4096"))
	assert.Equal(t, int64(4096), tr.Snapshot().TotalSize)

	assert.False(t, tr.Snapshot().Done)
	assert.True(t, tr.ParseLine("progress=end"))
	assert.True(t, tr.Snapshot().Done)
}

func TestTrackerIgnoresNoise(t *testing.T) {
	tr := NewTracker()

	assert.False(t, tr.ParseLine("frame dropped"))
	assert.False(t, tr.ParseLine("out_time_ms=garbage"))
	assert.False(t, tr.ParseLine("out_time_ms=-5"))
	assert.False(t, tr.ParseLine("progress=continue"))
	assert.Equal(t, Progress{}, tr.Snapshot())
}

func TestTrackerDedupesRepeats(t *testing.T) {
	tr := NewTracker()

	assert.True(t, tr.ParseLine("out_time_ms=1000"))
	assert.False(t, tr.ParseLine("out_time_ms=1000"))
	assert.True(t, tr.ParseLine("progress=end"))
	assert.False(t, tr.ParseLine("progress=end"))
}
