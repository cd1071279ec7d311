// Package check provides system diagnostics (--check mode) and pre-pipeline
// dependency validation (CheckDeps) for ffmpeg, ffprobe, and the H.264/AAC
// encoders the PS3 target needs.
package check

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/samber/lo"

	"github.com/backmassage/ps3check/internal/config"
)

// Sentinel errors returned by CheckDeps when a required tool or encoder is missing.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found")
	ErrFfprobeNotFound = errors.New("ffprobe not found")
	ErrEncoderMissing  = errors.New("ffmpeg lacks a required encoder")
)

// installHint is logged after a missing-tool error.
const installHint = "Install ffmpeg (which ships ffprobe), e.g. `apt install ffmpeg` or `brew install ffmpeg`, or point PS3CHECK_FFMPEG/PS3CHECK_FFPROBE at the binaries."

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(string, ...interface{})
}

// InstallHint returns the one-line install advice shown for missing tools.
func InstallHint() string { return installHint }

// RunCheck runs the interactive --check flow: prints availability of ffmpeg
// and ffprobe, the configured encoders, and a short test encode with the
// PS3 settings. It returns false when anything required is unusable.
func RunCheck(cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkBinary(log, "ffmpeg", cfg.FFmpegBin)
	ok = checkBinary(log, "ffprobe", cfg.FFprobeBin) && ok
	if !ok {
		log.Info(installHint)
		return false
	}

	ok = checkEncoders(cfg, log)
	if ok {
		ok = checkTestEncode(cfg, log)
	}
	return ok
}

// checkBinary verifies bin is runnable and logs its version string.
func checkBinary(log Logger, name, bin string) bool {
	if _, err := exec.LookPath(bin); err != nil {
		log.Error("%s not found (%s)", name, bin)
		return false
	}
	out, err := exec.Command(bin, "-version").Output()
	if err != nil {
		log.Warn("%s found but -version failed: %v", name, err)
		return false
	}
	firstLine := strings.TrimSpace(string(out))
	if idx := strings.Index(firstLine, "\n"); idx > 0 {
		firstLine = firstLine[:idx]
	}
	log.Success("%s: %s", name, firstLine)
	return true
}

// checkEncoders reports whether ffmpeg lists the configured video and audio encoders.
func checkEncoders(cfg *config.Config, log Logger) bool {
	missing, err := missingEncoders(cfg)
	if err != nil {
		log.Warn("Could not list encoders: %v", err)
		return false
	}
	for _, enc := range []string{cfg.VideoEncoder, cfg.AudioEncoder} {
		if lo.Contains(missing, enc) {
			log.Error("Encoder %s: missing", enc)
		} else {
			log.Success("Encoder %s: available", enc)
		}
	}
	return len(missing) == 0
}

// checkTestEncode runs a fraction of a second of synthetic input through the
// exact PS3 encoder settings.
func checkTestEncode(cfg *config.Config, log Logger) bool {
	log.Info("Testing %s %s@%s + %s encode...", cfg.VideoEncoder, cfg.VideoProfile, cfg.VideoLevel, cfg.AudioEncoder)
	args := testEncodeArgs(cfg)
	log.Debug("%s %s", cfg.FFmpegBin, strings.Join(args, " "))
	if err := runSilent(cfg.FFmpegBin, args...); err != nil {
		log.Error("Test encode failed: %v", err)
		return false
	}
	log.Success("Test encode works")
	return true
}

// CheckDeps is the pre-pipeline validation: it verifies that ffmpeg and
// ffprobe can be found and, when converting, that ffmpeg has the configured
// encoders. Returns a sentinel error (possibly wrapped) on failure.
func CheckDeps(cfg *config.Config) error {
	if _, err := exec.LookPath(cfg.FFprobeBin); err != nil {
		return fmt.Errorf("%w: %s", ErrFfprobeNotFound, cfg.FFprobeBin)
	}
	if !cfg.Convert || cfg.DryRun {
		return nil
	}
	if _, err := exec.LookPath(cfg.FFmpegBin); err != nil {
		return fmt.Errorf("%w: %s", ErrFfmpegNotFound, cfg.FFmpegBin)
	}
	missing, err := missingEncoders(cfg)
	if err != nil {
		return fmt.Errorf("list ffmpeg encoders: %w", err)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrEncoderMissing, strings.Join(missing, ", "))
	}
	return nil
}

// --- internal helpers ---

// missingEncoders returns the configured encoders absent from `ffmpeg -encoders`.
func missingEncoders(cfg *config.Config) ([]string, error) {
	out, err := exec.Command(cfg.FFmpegBin, "-hide_banner", "-encoders").Output()
	if err != nil {
		return nil, err
	}
	have := parseEncoders(string(out))
	var missing []string
	for _, enc := range []string{cfg.VideoEncoder, cfg.AudioEncoder} {
		if !have[enc] && !lo.Contains(missing, enc) {
			missing = append(missing, enc)
		}
	}
	return missing, nil
}

// parseEncoders extracts encoder names from `ffmpeg -encoders` output, where
// each entry looks like " V....D libx264   libx264 H.264 / AVC ...".
func parseEncoders(out string) map[string]bool {
	have := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields[0]) != 6 || strings.Trim(fields[0], "VASFXBD.") != "" {
			continue
		}
		have[fields[1]] = true
	}
	return have
}

// testEncodeArgs returns the ffmpeg arguments for a minimal PS3-profile test encode.
func testEncodeArgs(cfg *config.Config) []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=black:s=256x144:d=0.1",
		"-f", "lavfi", "-i", "sine=frequency=1000:duration=0.1",
		"-c:v", cfg.VideoEncoder, "-profile:v", cfg.VideoProfile, "-level:v", cfg.VideoLevel,
		"-pix_fmt", cfg.PixFmt,
		"-c:a", cfg.AudioEncoder, "-b:a", cfg.AudioBitrate,
		"-f", "null", "-",
	}
}

// runSilent runs a command and returns its error. Output is discarded.
func runSilent(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run()
}
