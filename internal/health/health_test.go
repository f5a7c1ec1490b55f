package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticChecker struct {
	name   string
	result CheckResult
}

func (c *staticChecker) Name() string                        { return c.name }
func (c *staticChecker) Check(_ context.Context) CheckResult { return c.result }

func TestHealthAlwaysHealthyWithoutVerbose(t *testing.T) {
	m := NewManager("1.2.3")
	m.RegisterChecker(&staticChecker{name: "broken", result: CheckResult{Status: StatusUnhealthy}})

	resp := m.Health(context.Background(), false)

	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Empty(t, resp.Checks)
}

func TestHealthVerboseAggregatesComponents(t *testing.T) {
	m := NewManager("dev")
	m.RegisterChecker(&staticChecker{name: "ok", result: CheckResult{Status: StatusHealthy}})
	m.RegisterChecker(&staticChecker{name: "slow", result: CheckResult{Status: StatusDegraded}})

	resp := m.Health(context.Background(), true)

	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Len(t, resp.Checks, 2)
}

func TestReadyUnhealthyComponentMakesUnready(t *testing.T) {
	m := NewManager("dev")
	m.RegisterChecker(&staticChecker{name: "ok", result: CheckResult{Status: StatusHealthy}})
	m.RegisterChecker(&staticChecker{name: "broken", result: CheckResult{Status: StatusUnhealthy, Error: "gone"}})

	resp := m.Ready(context.Background())

	assert.False(t, resp.Ready)
	assert.Equal(t, StatusUnhealthy, resp.Status)
}

func TestReadyNoCheckersIsReady(t *testing.T) {
	resp := NewManager("dev").Ready(context.Background())
	assert.True(t, resp.Ready)
	assert.Equal(t, StatusHealthy, resp.Status)
}

func TestServeReadyStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		checker  Checker
		wantCode int
	}{
		{
			name:     "ready",
			checker:  &staticChecker{name: "ok", result: CheckResult{Status: StatusHealthy}},
			wantCode: http.StatusOK,
		},
		{
			name:     "unready",
			checker:  &staticChecker{name: "broken", result: CheckResult{Status: StatusUnhealthy}},
			wantCode: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager("dev")
			m.RegisterChecker(tt.checker)

			rec := httptest.NewRecorder()
			m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp ReadinessResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode == http.StatusOK, resp.Ready)
		})
	}
}

func TestServeHealthVerbose(t *testing.T) {
	m := NewManager("dev")
	m.RegisterChecker(&staticChecker{name: "broken", result: CheckResult{Status: StatusUnhealthy}})

	rec := httptest.NewRecorder()
	m.ServeHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz?verbose=true", nil))

	// Liveness is always 200, the body carries the degradation.
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusUnhealthy, resp.Status)
}

func TestBinaryChecker(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		result := NewBinaryChecker("shell", "sh").Check(context.Background())
		assert.Equal(t, StatusHealthy, result.Status)
		assert.NotEmpty(t, result.Message)
	})

	t.Run("missing", func(t *testing.T) {
		result := NewBinaryChecker("capture", "definitely-not-a-real-binary").Check(context.Background())
		assert.Equal(t, StatusUnhealthy, result.Status)
		assert.Equal(t, "binary not found", result.Error)
	})
}

func TestOutputDirChecker(t *testing.T) {
	t.Run("exists", func(t *testing.T) {
		result := NewOutputDirChecker(t.TempDir()).Check(context.Background())
		assert.Equal(t, StatusHealthy, result.Status)
	})

	t.Run("missing is degraded", func(t *testing.T) {
		result := NewOutputDirChecker(filepath.Join(t.TempDir(), "nope")).Check(context.Background())
		assert.Equal(t, StatusDegraded, result.Status)
	})

	t.Run("file is unhealthy", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

		result := NewOutputDirChecker(path).Check(context.Background())
		assert.Equal(t, StatusUnhealthy, result.Status)
	})
}
