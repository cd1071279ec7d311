package pipeline

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/backmassage/ps3check/internal/display"
	"github.com/backmassage/ps3check/internal/ffmpeg"
	"github.com/backmassage/ps3check/internal/logging"
	"github.com/backmassage/ps3check/internal/media"
	"github.com/backmassage/ps3check/internal/planner"
)

// Observer receives run events so the pipeline itself does no rendering.
// Events arrive from the goroutine running [Run], in order.
type Observer interface {
	// OnScanStart is called once after discovery with the number of files.
	OnScanStart(root string, total int)
	// OnFileScanned is called after each file has a verdict.
	OnFileScanned(idx, total int, res media.ScanResult)
	// OnConvertStart is called before ffmpeg runs (or would run, in dry-run).
	OnConvertStart(idx, total int, plan *planner.FilePlan)
	// OnConvertProgress reports the fraction done of the current conversion.
	OnConvertProgress(fraction float64)
	// OnRetry is called before a conversion is retried with a fix applied.
	OnRetry(attempt int, action ffmpeg.RetryAction, reason string)
	// OnConvertDone is called for every queued file, with its outcome set.
	OnConvertDone(idx, total int, res media.ScanResult)
	// OnFinish is called once with the complete result.
	OnFinish(res *Result)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) OnScanStart(string, int) {}
func (NopObserver) OnFileScanned(int, int, media.ScanResult) {}
func (NopObserver) OnConvertStart(int, int, *planner.FilePlan) {}
func (NopObserver) OnConvertProgress(float64) {}
func (NopObserver) OnRetry(int, ffmpeg.RetryAction, string) {}
func (NopObserver) OnConvertDone(int, int, media.ScanResult) {}
func (NopObserver) OnFinish(*Result) {}

// LogObserver renders events as log lines, plus an inline progress bar on
// progress when it is non-nil (a TTY).
type LogObserver struct {
	log      *logging.Logger
	progress io.Writer
	width    int

	mu     sync.Mutex
	inline bool
	label  string
}

// NewLogObserver returns an observer that logs to log. progress may be nil
// to disable the inline bar; width is the terminal width in columns.
func NewLogObserver(log *logging.Logger, progress io.Writer, width int) *LogObserver {
	if width < 40 {
		width = 80
	}
	return &LogObserver{log: log, progress: progress, width: width}
}

func (o *LogObserver) OnScanStart(root string, total int) {
	o.log.Info("Scanning %s: %d media file(s)", root, total)
}

func (o *LogObserver) OnFileScanned(idx, total int, res media.ScanResult) {
	name := filepath.Base(res.File.Path)
	o.log.File(res.File.Path, fileFields(res), "scanned")
	switch {
	case res.Unreadable():
		o.log.Error("[%d/%d] %s: unreadable (%s)", idx, total, name, res.ProbeError)
	case res.Verdict == media.Compatible:
		o.log.Success("[%d/%d] %s: compatible (%s %s/%s %s)", idx, total, name,
			res.File.Container, res.File.VideoCodec, res.File.AudioCodec, res.File.Resolution())
	default:
		o.log.Warn("[%d/%d] %s: incompatible (%s)", idx, total, name, strings.Join(res.Reasons, "; "))
	}
}

func (o *LogObserver) OnConvertStart(idx, total int, plan *planner.FilePlan) {
	verb := "Encoding"
	if plan.Action == planner.ActionRemux {
		verb = "Remuxing"
	}
	o.log.Info("[%d/%d] %s %s -> %s", idx, total, verb,
		filepath.Base(plan.InputPath), filepath.Base(plan.OutputPath))

	o.mu.Lock()
	o.label = fmt.Sprintf("[%d/%d] %s", idx, total, filepath.Base(plan.InputPath))
	o.mu.Unlock()
}

func (o *LogObserver) OnConvertProgress(fraction float64) {
	if o.progress == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintf(o.progress, "\r%s", progressLine(o.label, fraction, o.width))
	o.inline = true
}

func (o *LogObserver) OnRetry(attempt int, action ffmpeg.RetryAction, reason string) {
	o.clearInline()
	o.log.Warn("  ffmpeg failed (%s); retry %d: %s", reason, attempt, action)
}

func (o *LogObserver) OnConvertDone(idx, total int, res media.ScanResult) {
	o.clearInline()
	c := res.Conversion
	if c == nil {
		return
	}
	name := filepath.Base(res.File.Path)
	o.log.File(res.File.Path, fileFields(res), "converted")
	switch c.Status {
	case media.StatusConverted:
		o.log.Success("  %s: converted in %s (%s)", name,
			display.FormatElapsed(c.Elapsed), display.FormatBytes(c.OutputSize))
	case media.StatusSkipped:
		o.log.Warn("  %s: skipped, %s already exists", name, filepath.Base(c.OutputPath))
	case media.StatusDryRun:
		o.log.Success("  [DRY] %s: would %s to %s", name, c.Action, filepath.Base(c.OutputPath))
	default:
		o.log.Error("  %s: conversion failed: %s", name, c.Err)
	}
}

func (o *LogObserver) OnFinish(res *Result) {
	o.clearInline()
	if res.Interrupted {
		o.log.Warn("Interrupted; results are partial")
	}
}

func (o *LogObserver) clearInline() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inline && o.progress != nil {
		fmt.Fprintf(o.progress, "\r%s\r", strings.Repeat(" ", o.width-1))
	}
	o.inline = false
}

// progressLine renders "label [#####-----]  45%" padded to width-1 so it
// overwrites a previous longer line.
func progressLine(label string, fraction float64, width int) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	pct := fmt.Sprintf(" %3d%%", int(fraction*100))

	barW := width / 3
	filled := int(fraction * float64(barW))
	bar := "[" + strings.Repeat("#", filled) + strings.Repeat("-", barW-filled) + "]"

	maxLabel := width - 1 - len(bar) - len(pct) - 3
	runes := []rune(label)
	if maxLabel > 1 && len(runes) > maxLabel {
		label = string(runes[:maxLabel-1]) + "…"
	}
	line := "  " + label + " " + bar + pct
	if n := width - 1 - len([]rune(line)); n > 0 {
		line += strings.Repeat(" ", n)
	}
	return line
}

// fileFields are the structured fields written to the JSON log file.
func fileFields(res media.ScanResult) map[string]interface{} {
	f := map[string]interface{}{
		"verdict":     string(res.Verdict),
		"container":   res.File.Container,
		"video_codec": res.File.VideoCodec,
		"audio_codec": res.File.AudioCodec,
		"resolution":  res.File.Resolution(),
		"size":        res.File.Size,
	}
	if len(res.Reasons) > 0 {
		f["reasons"] = res.Reasons
	}
	if c := res.Conversion; c != nil {
		f["status"] = string(c.Status)
		f["output"] = c.OutputPath
		if c.Err != "" {
			f["error"] = c.Err
		}
	}
	return f
}
