// Command ttvremux converts finished recordings to mkv without re-encoding.
// It is the standalone companion to the recorder's --remux mode, useful for
// captures that were recorded before remuxing was enabled.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/ttvtools/ttvrec/internal/config"
	"github.com/ttvtools/ttvrec/internal/log"
	"github.com/ttvtools/ttvrec/internal/mediainfo"
	"github.com/ttvtools/ttvrec/internal/remux"
)

var version = "v0.3.0"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s <file>...\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "\nRemuxes each recording into <dir>/mkv/<name>.mkv.")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	log.Configure(log.Config{
		Level:   config.ParseString("LOG_LEVEL", "info"),
		Service: "ttvremux",
		Pretty:  os.Getenv("LOG_FORMAT") != "json",
	})
	logger := log.WithComponent("remux")

	ffmpegPath := config.ParseString("TTVREC_FFMPEG", "ffmpeg")
	ffprobePath := config.ParseString("TTVREC_FFPROBE", "ffprobe")

	if _, err := exec.LookPath(ffmpegPath); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "remux.missing_tool").
			Str("path", ffmpegPath).
			Msg("ffmpeg not found")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	failed := 0
	for _, input := range flag.Args() {
		if err := remuxOne(ctx, ffmpegPath, ffprobePath, input); err != nil {
			logger.Error().
				Err(err).
				Str("event", "remux.failed").
				Str("path", input).
				Msg("remux failed")
			failed++
		}
		if ctx.Err() != nil {
			break
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func remuxOne(ctx context.Context, ffmpegPath, ffprobePath, input string) error {
	logger := log.WithComponent("remux")

	// Duration is best effort, for progress reporting only.
	var total time.Duration
	if d, err := mediainfo.Duration(ctx, ffprobePath, input); err == nil {
		total = d
	}

	x := remux.New(ffmpegPath)
	x.OnProgress = func(p remux.Progress) {
		if total <= 0 {
			return
		}
		pct := float64(p.OutTime) / float64(total) * 100
		if pct > 100 {
			pct = 100
		}
		fmt.Printf("\r%s: %5.1f%%", input, pct)
	}

	start := time.Now()
	out, err := x.Remux(ctx, input)
	if total > 0 {
		fmt.Println()
	}
	if err != nil {
		return err
	}

	logger.Info().
		Str("event", "remux.completed").
		Str("path", input).
		Str("output_path", out).
		Dur("elapsed", time.Since(start)).
		Msg("remux completed")
	return nil
}
