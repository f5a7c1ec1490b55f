package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ttvtools/ttvrec/internal/capture"
	"github.com/ttvtools/ttvrec/internal/config"
	"github.com/ttvtools/ttvrec/internal/health"
	"github.com/ttvtools/ttvrec/internal/log"
	"github.com/ttvtools/ttvrec/internal/probe"
	"github.com/ttvtools/ttvrec/internal/remux"
	"github.com/ttvtools/ttvrec/internal/supervisor"
)

var (
	version   = "v0.3.0"
	commit    = "none"
	buildDate = "unknown"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [--remux] <channel>...\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "\nMonitors the given channels and records every live broadcast.")
	fmt.Fprintln(os.Stderr, "Runs until interrupted (SIGINT/SIGTERM).")
	flag.PrintDefaults()
}

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	remuxFlag := flag.Bool("remux", false, "remux finished recordings to mkv")
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	cfg := config.FromEnv()
	cfg.Channels = flag.Args()
	if *remuxFlag {
		cfg.Remux = true
	}

	log.Configure(log.Config{
		Level:   cfg.LogLevel,
		Service: "ttvrec",
		Pretty:  os.Getenv("LOG_FORMAT") != "json",
	})
	logger := log.WithComponent("main")

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrNoChannels) {
			flag.Usage()
			os.Exit(1)
		}
		logger.Fatal().
			Err(err).
			Str("event", "config.invalid").
			Msg("invalid configuration")
	}

	// External tools must resolve before any channel goes live.
	checkTool(logger, "streamlink", cfg.StreamlinkPath)
	if cfg.Remux {
		checkTool(logger, "ffmpeg", cfg.FFmpegPath)
	}

	logger.Info().
		Str("event", "daemon.starting").
		Str("version", version).
		Strs("channels", cfg.Channels).
		Dur("poll_interval", cfg.PollInterval).
		Str("output_dir", cfg.OutputDir).
		Bool("remux", cfg.Remux).
		Msg("starting channel recorder")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	launcher := capture.NewLauncher(capture.Config{
		BinPath:   cfg.StreamlinkPath,
		OutputDir: cfg.OutputDir,
		Quality:   cfg.Quality,
	})

	var remuxer supervisor.Remuxer
	if cfg.Remux {
		remuxer = remux.New(cfg.FFmpegPath)
	}

	sup := supervisor.New(
		supervisor.Config{
			Channels:     cfg.Channels,
			PollInterval: cfg.PollInterval,
			Remux:        cfg.Remux,
		},
		probe.NewHTTP(),
		supervisor.LaunchFunc(func(ctx context.Context, channel string) (supervisor.Task, error) {
			task, err := launcher.Launch(ctx, channel)
			if err != nil {
				return nil, err
			}
			return task, nil
		}),
		remuxer,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sup.Run(ctx)
	})

	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			return serveMetrics(ctx, cfg)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "daemon.failed").
			Msg("daemon failed")
	}

	logger.Info().Str("event", "daemon.stopped").Msg("shutdown complete")
}

func checkTool(logger zerolog.Logger, name, bin string) {
	if _, err := exec.LookPath(bin); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "daemon.missing_tool").
			Str("tool", name).
			Str("path", bin).
			Msg("required external tool not found")
	}
}

// serveMetrics exposes /metrics, /healthz and /readyz until ctx is cancelled.
func serveMetrics(ctx context.Context, cfg config.Config) error {
	logger := log.WithComponent("metrics")

	hm := health.NewManager(version)
	hm.RegisterChecker(health.NewBinaryChecker("streamlink", cfg.StreamlinkPath))
	if cfg.Remux {
		hm.RegisterChecker(health.NewBinaryChecker("ffmpeg", cfg.FFmpegPath))
	}
	hm.RegisterChecker(health.NewOutputDirChecker(cfg.OutputDir))

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", hm.ServeHealth)
	r.Get("/readyz", hm.ServeReady)

	srv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("event", "metrics.listening").
			Str("addr", cfg.MetricsAddr).
			Msg("metrics server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown: %w", err)
		}
		<-errCh
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	}
}
