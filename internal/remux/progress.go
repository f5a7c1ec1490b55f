package remux

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// Progress is a snapshot of remux progress derived from the transcoder's
// machine-readable key=value stream.
type Progress struct {
	OutTime   time.Duration
	TotalSize int64
	Done      bool
}

// Tracker consumes ffmpeg -progress key=value lines.
type Tracker struct {
	mu sync.Mutex
	p  Progress
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// ParseLine processes one line from the progress pipe. Lines that are not
// key=value pairs are ignored. It reports whether the snapshot changed.
func (t *Tracker) ParseLine(line string) bool {
	key, val, ok := strings.Cut(line, "=")
	if !ok {
		return false
	}
	key = strings.TrimSpace(key)
	val = strings.TrimSpace(val)

	t.mu.Lock()
	defer t.mu.Unlock()

	switch key {
	case "out_time_ms":
		// out_time_ms is microseconds despite the name.
		us, err := strconv.ParseInt(val, 10, 64)
		if err != nil || us < 0 {
			return false
		}
		d := time.Duration(us) * time.Microsecond
		if d == t.p.OutTime {
			return false
		}
		t.p.OutTime = d
		return true
	case "total_size":
		size, err := strconv.ParseInt(val, 10, 64)
		if err != nil || size == t.p.TotalSize {
			return false
		}
		t.p.TotalSize = size
		return true
	case "progress":
		if val == "end" && !t.p.Done {
			t.p.Done = true
			return true
		}
	}
	return false
}

// Snapshot returns the current progress.
func (t *Tracker) Snapshot() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.p
}
