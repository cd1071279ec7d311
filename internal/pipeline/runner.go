package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/backmassage/ps3check/internal/compat"
	"github.com/backmassage/ps3check/internal/config"
	"github.com/backmassage/ps3check/internal/ffmpeg"
	"github.com/backmassage/ps3check/internal/logging"
	"github.com/backmassage/ps3check/internal/media"
	"github.com/backmassage/ps3check/internal/naming"
	"github.com/backmassage/ps3check/internal/planner"
	"github.com/backmassage/ps3check/internal/probe"
)

// minFileSize is the smallest file worth probing; anything below it is a
// truncated download or a placeholder.
const minFileSize = 1000

// Prober reads media metadata. [probe.Prober] is the production value.
type Prober interface {
	Probe(ctx context.Context, path string) (*probe.ProbeResult, error)
}

// Result is everything a run produced, in discovery order.
type Result struct {
	Root        string             `json:"root" yaml:"root"`
	Started     time.Time          `json:"started" yaml:"started"`
	Finished    time.Time          `json:"finished" yaml:"finished"`
	Interrupted bool               `json:"interrupted,omitempty" yaml:"interrupted,omitempty"`
	Converting  bool               `json:"converting" yaml:"converting"`
	DryRun      bool               `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Stats       RunStats           `json:"stats" yaml:"stats"`
	Files       []media.ScanResult `json:"files" yaml:"files"`
}

type runner struct {
	cfg      *config.Config
	log      *logging.Logger
	obs      Observer
	prober   Prober
	checker  *compat.Checker
	resolver *naming.CollisionResolver
}

// Run is the top-level batch entry point. It discovers files under
// cfg.InputDir, assigns each a verdict, and, when cfg.Convert or cfg.DryRun
// is set, converts the incompatible ones one at a time.
//
// Per-file problems never surface as an error: they are recorded on the
// file's ScanResult. The error return is reserved for a scan that cannot
// start or complete (unreadable input directory). obs may be nil.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, obs Observer) (*Result, error) {
	return RunWith(ctx, cfg, log, obs, probe.New(cfg.FFprobeBin))
}

// RunWith is Run with an explicit Prober.
func RunWith(ctx context.Context, cfg *config.Config, log *logging.Logger, obs Observer, prober Prober) (*Result, error) {
	if obs == nil {
		obs = NopObserver{}
	}
	r := &runner{
		cfg:      cfg,
		log:      log,
		obs:      obs,
		prober:   prober,
		checker:  compat.NewChecker(cfg.MaxWidth, cfg.MaxHeight),
		resolver: naming.NewCollisionResolver(),
	}

	files, err := Discover(cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", cfg.InputDir, err)
	}

	res := &Result{
		Root:       cfg.InputDir,
		Started:    time.Now(),
		Converting: cfg.Convert || cfg.DryRun,
		DryRun:     cfg.DryRun,
		Files:      make([]media.ScanResult, 0, len(files)),
	}
	obs.OnScanStart(cfg.InputDir, len(files))

	// --- Scan ---
	probes := make([]*probe.ProbeResult, 0, len(files))
	for i, path := range files {
		if ctx.Err() != nil {
			res.Interrupted = true
			break
		}
		sr, pr := r.scanFile(ctx, path)
		if ctx.Err() != nil {
			// The probe was killed, so its verdict means nothing.
			res.Interrupted = true
			break
		}
		res.Files = append(res.Files, sr)
		probes = append(probes, pr)
		obs.OnFileScanned(i+1, len(files), sr)
	}

	// --- Convert ---
	if res.Converting && !res.Interrupted {
		queue := lo.FilterMap(res.Files, func(sr media.ScanResult, i int) (int, bool) {
			return i, sr.NeedsConversion()
		})
		// A queued file must not be overwritten by an earlier conversion
		// before its own turn.
		r.resolver.Reserve(lo.Map(queue, func(i, _ int) string {
			return res.Files[i].File.Path
		})...)
		for n, i := range queue {
			if ctx.Err() != nil {
				res.Interrupted = true
				break
			}
			r.convertFile(ctx, n+1, len(queue), &res.Files[i], probes[i])
		}
		if ctx.Err() != nil {
			res.Interrupted = true
		}
	}

	res.Finished = time.Now()
	res.Stats = ComputeStats(res.Files)
	obs.OnFinish(res)
	return res, nil
}

// scanFile handles one media file: validate → probe → check. The probe
// result is nil when the metadata could not be read.
func (r *runner) scanFile(ctx context.Context, path string) (media.ScanResult, *probe.ProbeResult) {
	mf := media.MediaFile{Path: path}

	fi, err := os.Stat(path)
	if err != nil {
		return r.unreadable(mf, err), nil
	}
	mf.Size = fi.Size()
	if fi.Size() < minFileSize {
		return r.unreadable(mf, fmt.Errorf("file too small (%d bytes, possibly corrupt)", fi.Size())), nil
	}

	pr, err := r.prober.Probe(ctx, path)
	if err != nil {
		return r.unreadable(mf, err), nil
	}

	mf = pr.MediaFile(path, fi.Size())
	verdict, reasons := r.checker.Check(mf, nil)
	r.log.Debug("%s: %s %s/%s %s %d bps -> %s", filepath.Base(path),
		mf.Container, mf.VideoCodec, mf.AudioCodec, mf.Resolution(), mf.BitRate, verdict)
	return media.ScanResult{File: mf, Verdict: verdict, Reasons: reasons}, pr
}

func (r *runner) unreadable(mf media.MediaFile, err error) media.ScanResult {
	verdict, reasons := r.checker.Check(mf, err)
	return media.ScanResult{File: mf, Verdict: verdict, Reasons: reasons, ProbeError: err.Error()}
}

// convertFile handles one queued file: plan → name → skip check → execute
// with retry. The outcome is always recorded on sr.
func (r *runner) convertFile(ctx context.Context, idx, total int, sr *media.ScanResult, pr *probe.ProbeResult) {
	start := time.Now()
	out := &media.ConversionOutcome{}
	sr.Conversion = out
	defer func() {
		out.Elapsed = time.Since(start)
		r.obs.OnConvertDone(idx, total, *sr)
	}()

	fail := func(msg string) {
		out.Status = media.StatusFailed
		out.Err = msg
	}

	path := sr.File.Path
	if sr.Unreadable() || pr == nil {
		fail("metadata unreadable; not converted")
		return
	}

	// --- Plan ---
	plan, err := planner.BuildPlan(r.cfg, pr, r.checker)
	if err != nil {
		fail(err.Error())
		return
	}
	r.log.Debug("  Plan: %s (%s)", plan.Action, plan.Note)
	if plan.DroppedSubtitles > 0 || plan.DroppedAudio > 0 {
		r.log.Debug("  Dropping %d subtitle and %d extra audio stream(s)", plan.DroppedSubtitles, plan.DroppedAudio)
	}

	// --- Resolve output path ---
	output := naming.OutputPath(path, r.cfg.InputDir, r.cfg.OutputDir, r.cfg.OutputSuffix)
	output = r.resolver.Resolve(path, output)
	plan.InputPath = path
	plan.OutputPath = output
	out.OutputPath = output
	out.Action = plan.Action.String()

	if samePath(path, output) {
		fail("output path is the source file")
		return
	}

	// --- Skip-existing check ---
	if r.cfg.SkipExisting {
		if fi, err := os.Stat(output); err == nil {
			out.Status = media.StatusSkipped
			out.OutputSize = fi.Size()
			return
		}
	}

	r.obs.OnConvertStart(idx, total, plan)

	// --- Dry-run ---
	if r.cfg.DryRun {
		out.Status = media.StatusDryRun
		return
	}

	// --- Create output directory ---
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		fail(fmt.Sprintf("create output directory: %v", err))
		return
	}

	// --- Execute with retry ---
	attempts, err := r.executeWithRetry(ctx, plan)
	out.Attempts = attempts
	if err != nil {
		os.Remove(output)
		fail(err.Error())
		return
	}

	out.Status = media.StatusConverted
	if fi, err := os.Stat(output); err == nil {
		out.OutputSize = fi.Size()
	}
}

// executeWithRetry runs ffmpeg, classifies stderr on failure, applies the
// first matching fix, and retries. It returns the number of attempts made
// and a nil error once ffmpeg succeeds.
func (r *runner) executeWithRetry(ctx context.Context, plan *planner.FilePlan) (int, error) {
	rs := ffmpeg.NewRetryState(plan)
	opts := ffmpeg.ExecOptions{
		Duration:   plan.Duration,
		OnProgress: r.obs.OnConvertProgress,
		OnLine: func(line string) {
			r.log.Debug("  ffmpeg: %s", line)
		},
	}

	for {
		args := ffmpeg.Build(r.cfg, plan, rs)
		r.log.Debug("  %s %s", r.cfg.FFmpegBin, strings.Join(args, " "))

		result := ffmpeg.Execute(ctx, r.cfg.FFmpegBin, args, opts)
		attempts := rs.Attempt + 1
		if result.Err == nil {
			return attempts, nil
		}

		// Stop retrying if the context has been cancelled (e.g. SIGINT).
		if ctx.Err() != nil {
			return attempts, errors.New("interrupted")
		}

		reason := failureReason(result)
		if r.cfg.StrictMode {
			return attempts, errors.New(reason)
		}

		action := rs.Advance(result.Stderr)
		if action == ffmpeg.RetryNone {
			return attempts, errors.New(reason)
		}

		r.obs.OnRetry(rs.Attempt+1, action, reason)
		os.Remove(plan.OutputPath)
	}
}

// failureReason turns a failed run into one line for the report.
func failureReason(res ffmpeg.ExecResult) string {
	if ffmpeg.MatchUnknownEncoder(res.Stderr) {
		return "ffmpeg lacks a required encoder: " + ffmpeg.LastError(res.Stderr)
	}
	if last := ffmpeg.LastError(res.Stderr); last != "" {
		return fmt.Sprintf("ffmpeg: %v: %s", res.Err, last)
	}
	return fmt.Sprintf("ffmpeg: %v", res.Err)
}

func samePath(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return a == b
	}
	return aa == bb
}
