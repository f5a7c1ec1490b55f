package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineRingKeepsLastLines(t *testing.T) {
	ring := NewLineRing(3)
	for _, line := range []string{"one\n", "two\n", "three\n", "four\n"} {
		_, err := ring.Write([]byte(line))
		assert.NoError(t, err)
	}
	assert.Equal(t, []string{"two", "three", "four"}, ring.LastN(3))
}

func TestLineRingMultilineWrite(t *testing.T) {
	ring := NewLineRing(10)
	_, _ = ring.Write([]byte("a\nb\nc\n"))
	assert.Equal(t, []string{"a", "b", "c"}, ring.LastN(5))
}

func TestLineRingEmpty(t *testing.T) {
	ring := NewLineRing(4)
	assert.Empty(t, ring.LastN(4))
}

func TestLineRingCapacityClamp(t *testing.T) {
	ring := NewLineRing(0)
	_, _ = ring.Write([]byte("x\n"))
	assert.Equal(t, []string{"x"}, ring.LastN(100))
}
