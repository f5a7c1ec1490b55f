// Package probe answers one question per channel: live or offline.
//
// The detection heuristic is deliberately pluggable. The bundled HTTP prober
// fetches the channel's public page and searches for a live marker; anything
// short of a positive match is Offline, so a flaky network never starts a
// recording by accident.
package probe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ttvtools/ttvrec/internal/log"
	"github.com/ttvtools/ttvrec/internal/metrics"
)

// Status is the probe outcome.
type Status int

const (
	StatusOffline Status = iota
	StatusLive
)

func (s Status) String() string {
	if s == StatusLive {
		return "live"
	}
	return "offline"
}

// Prober reports whether a channel is currently live.
type Prober interface {
	Probe(ctx context.Context, channel string) Status
}

// Marker found in the channel page markup while a broadcast is running.
const defaultMarker = "isLiveBroadcast"

const maxBodyBytes = 4 << 20

// HTTP probes liveness by fetching the channel's public page.
type HTTP struct {
	Client    *http.Client
	BaseURL   string
	Marker    string
	UserAgent string

	logger zerolog.Logger
}

// NewHTTP returns a prober with production defaults.
func NewHTTP() *HTTP {
	return &HTTP{
		Client:    &http.Client{Timeout: 10 * time.Second},
		BaseURL:   "https://www.twitch.tv",
		Marker:    defaultMarker,
		UserAgent: "Mozilla/5.0 (compatible; ttvrec)",
		logger:    log.WithComponent("probe"),
	}
}

// Probe fetches the channel page and searches for the live marker. It never
// returns an error: any failure to positively detect the marker is Offline.
func (p *HTTP) Probe(ctx context.Context, channel string) Status {
	url := fmt.Sprintf("%s/%s", p.BaseURL, channel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		p.fail(channel, err)
		return StatusOffline
	}
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		p.fail(channel, err)
		return StatusOffline
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		p.logger.Debug().
			Str(log.FieldChannel, channel).
			Int("status_code", resp.StatusCode).
			Msg("unexpected status from channel page")
		metrics.IncProbe("error")
		return StatusOffline
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		p.fail(channel, err)
		return StatusOffline
	}

	if bytes.Contains(body, []byte(p.Marker)) {
		metrics.IncProbe("live")
		return StatusLive
	}
	metrics.IncProbe("offline")
	return StatusOffline
}

func (p *HTTP) fail(channel string, err error) {
	metrics.IncProbe("error")
	p.logger.Debug().
		Err(err).
		Str(log.FieldChannel, channel).
		Msg("probe failed, treating channel as offline")
}
