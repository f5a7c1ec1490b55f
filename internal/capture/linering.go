package capture

import (
	"strings"
	"sync"
)

// LineRing is a thread-safe ring buffer for capturing the last N lines of
// subprocess output.
type LineRing struct {
	mu    sync.RWMutex
	lines []string
	head  int
	size  int
}

// NewLineRing creates a LineRing with the specified capacity.
func NewLineRing(capacity int) *LineRing {
	if capacity < 1 {
		capacity = 50
	}
	return &LineRing{
		lines: make([]string, capacity),
		size:  capacity,
	}
}

// Write implements io.Writer. Input is split on newlines; empty lines are
// dropped. Partial lines across writes are not reassembled, which is
// acceptable for log output.
func (r *LineRing) Write(p []byte) (n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, line := range strings.Split(string(p), "\n") {
		if line == "" {
			continue
		}
		r.lines[r.head] = line
		r.head = (r.head + 1) % r.size
	}
	return len(p), nil
}

// LastN returns the last N lines in chronological order.
func (r *LineRing) LastN(n int) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n > r.size {
		n = r.size
	}

	out := make([]string, 0, n)
	// Walk backwards from head collecting up to n non-empty entries, then
	// reverse into chronological order.
	idx := r.head
	for i := 0; i < n; i++ {
		idx--
		if idx < 0 {
			idx = r.size - 1
		}
		if r.lines[idx] == "" {
			break
		}
		out = append(out, r.lines[idx])
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
