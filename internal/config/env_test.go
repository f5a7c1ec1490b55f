package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseString(t *testing.T) {
	t.Setenv("TTVREC_TEST_STR", "value")
	assert.Equal(t, "value", ParseString("TTVREC_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", ParseString("TTVREC_TEST_STR_MISSING", "fallback"))

	t.Setenv("TTVREC_TEST_EMPTY", "")
	assert.Equal(t, "fallback", ParseString("TTVREC_TEST_EMPTY", "fallback"))
}

func TestParseInt(t *testing.T) {
	t.Setenv("TTVREC_TEST_INT", "42")
	assert.Equal(t, 42, ParseInt("TTVREC_TEST_INT", 7))

	t.Setenv("TTVREC_TEST_INT_BAD", "not-a-number")
	assert.Equal(t, 7, ParseInt("TTVREC_TEST_INT_BAD", 7))

	assert.Equal(t, 7, ParseInt("TTVREC_TEST_INT_MISSING", 7))
}

func TestParseDuration(t *testing.T) {
	t.Setenv("TTVREC_TEST_DUR", "90s")
	assert.Equal(t, 90*time.Second, ParseDuration("TTVREC_TEST_DUR", time.Minute))

	// Bare integers are treated as seconds.
	t.Setenv("TTVREC_TEST_DUR_SECS", "30")
	assert.Equal(t, 30*time.Second, ParseDuration("TTVREC_TEST_DUR_SECS", time.Minute))

	t.Setenv("TTVREC_TEST_DUR_BAD", "soon")
	assert.Equal(t, time.Minute, ParseDuration("TTVREC_TEST_DUR_BAD", time.Minute))
}

func TestParseBool(t *testing.T) {
	for _, v := range []string{"true", "1", "yes", "TRUE"} {
		t.Setenv("TTVREC_TEST_BOOL", v)
		assert.True(t, ParseBool("TTVREC_TEST_BOOL", false), "value %q", v)
	}
	for _, v := range []string{"false", "0", "no"} {
		t.Setenv("TTVREC_TEST_BOOL", v)
		assert.False(t, ParseBool("TTVREC_TEST_BOOL", true), "value %q", v)
	}

	t.Setenv("TTVREC_TEST_BOOL", "maybe")
	assert.True(t, ParseBool("TTVREC_TEST_BOOL", true))
}
