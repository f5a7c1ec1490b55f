package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttvtools/ttvrec/internal/log"
)

func newTestProber(srv *httptest.Server) *HTTP {
	return &HTTP{
		Client:  srv.Client(),
		BaseURL: srv.URL,
		Marker:  "isLiveBroadcast",
		logger:  log.WithComponent("probe"),
	}
}

func TestProbeLive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/alice", r.URL.Path)
		_, _ = w.Write([]byte(`<html>..."isLiveBroadcast":true...</html>`))
	}))
	defer srv.Close()

	p := newTestProber(srv)
	assert.Equal(t, StatusLive, p.Probe(context.Background(), "alice"))
}

func TestProbeOfflineWithoutMarker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>nothing to see</html>`))
	}))
	defer srv.Close()

	p := newTestProber(srv)
	assert.Equal(t, StatusOffline, p.Probe(context.Background(), "alice"))
}

func TestProbeOfflineOnHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := newTestProber(srv)
	assert.Equal(t, StatusOffline, p.Probe(context.Background(), "bob"))
}

func TestProbeOfflineOnNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // unreachable on purpose

	p := newTestProber(srv)
	p.Client = &http.Client{Timeout: time.Second}
	assert.Equal(t, StatusOffline, p.Probe(context.Background(), "bob"))
}

func TestProbeRespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	p := newTestProber(srv)
	assert.Equal(t, StatusOffline, p.Probe(ctx, "alice"))
}
