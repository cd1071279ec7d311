// Command ps3check scans a folder for media files the PlayStation 3 cannot
// play and optionally converts them to PS3-compatible MP4.
//
// It parses flags, validates configuration and paths, and either runs
// system diagnostics (--check) or the scan/convert pipeline.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/backmassage/ps3check/internal/check"
	"github.com/backmassage/ps3check/internal/config"
	"github.com/backmassage/ps3check/internal/display"
	"github.com/backmassage/ps3check/internal/logging"
	"github.com/backmassage/ps3check/internal/pipeline"
	"github.com/backmassage/ps3check/internal/report"
	"github.com/backmassage/ps3check/internal/term"
	"github.com/backmassage/ps3check/internal/tui"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr via fmt.
	cfg := config.DefaultConfig()
	if err := config.Load(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "ps3check: %v\n", err)
		return 1
	}
	if err := config.ParseFlags(&cfg, version); err != nil {
		fmt.Fprintf(os.Stderr, "ps3check: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "ps3check: %v\n", err)
		return 1
	}
	if cfg.TUI && !term.IsTerminal(os.Stdout) {
		cfg.TUI = false
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ps3check: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available.
	if !cfg.TUI {
		display.PrintBanner(os.Stdout, version)
	}

	if cfg.CheckOnly {
		if !check.RunCheck(&cfg, log) {
			return 1
		}
		return 0
	}

	if err := preparePaths(&cfg); err != nil {
		log.Error("%v", err)
		if errors.Is(err, errOutputInsideInput) {
			log.Error("Choose an output path outside: %s", cfg.InputDir)
		}
		return 1
	}

	log.Debug("ps3check v%s (%s)", version, commit)
	if cfg.ConfigFile != "" {
		log.Debug("Config: %s", cfg.ConfigFile)
	}
	log.Info("In:  %s", cfg.InputDir)
	if cfg.Convert && cfg.OutputDir != "" {
		log.Info("Out: %s", cfg.OutputDir)
	}
	if cfg.DryRun {
		log.Warn("DRY RUN: no files will be written")
	}

	// Fail fast if ffprobe (and, when converting, ffmpeg and its encoders)
	// are unavailable.
	if err := check.CheckDeps(&cfg); err != nil {
		log.Error("%v", err)
		if errors.Is(err, check.ErrFfmpegNotFound) || errors.Is(err, check.ErrFfprobeNotFound) {
			log.Info(check.InstallHint())
		}
		return 1
	}

	// Phase 3: Signal handling. SIGINT/SIGTERM cancel the context; the
	// pipeline stops between files and kills a running ffmpeg.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Phase 4: Run pipeline (discover → probe → check → convert).
	var res *pipeline.Result
	if cfg.TUI {
		res, err = tui.Run(ctx, &cfg, log)
	} else {
		res, err = pipeline.Run(ctx, &cfg, log, newLogObserver(&cfg, log))
	}
	if err != nil {
		log.Error("%v", err)
		return 1
	}

	// Phase 5: Report.
	fmt.Println()
	report.WriteSummary(os.Stdout, res)
	if cfg.ShowDetails {
		fmt.Println()
		report.WriteDetails(os.Stdout, res)
	}
	if cfg.ReportFile != "" {
		if err := report.Export(cfg.ReportFile, cfg.ReportFormat, res); err != nil {
			log.Error("%v", err)
			return 1
		}
		log.Info("Report written to %s", cfg.ReportFile)
	}

	if res.Interrupted || res.Stats.Failed > 0 {
		return 1
	}
	return 0
}

// newLogObserver draws the inline progress bar only when stdout is a TTY
// and progress display is enabled.
func newLogObserver(cfg *config.Config, log *logging.Logger) *pipeline.LogObserver {
	if cfg.ShowProgress && term.IsTerminal(os.Stdout) {
		return pipeline.NewLogObserver(log, os.Stdout, term.Width(os.Stdout, 80))
	}
	return pipeline.NewLogObserver(log, nil, 80)
}
