// Package config holds runtime configuration: defaults, config file and
// environment loading, CLI flag parsing, and validation.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// ReportFormat selects the encoding of the --report file.
type ReportFormat string

const (
	ReportText ReportFormat = "text"
	ReportJSON ReportFormat = "json"
	ReportYAML ReportFormat = "yaml"
)

// Encoder value ranges accepted by Validate.
const (
	CRFMin = 0
	CRFMax = 51
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// then [Load] (config file and environment), then [ParseFlags], before being
// passed by pointer to packages that need it.
type Config struct {
	// Paths.
	InputDir     string // Positional argument: folder to scan.
	OutputDir    string // Empty: converted files are written next to their source.
	OutputSuffix string // Default: "_ps3".
	ConfigFile   string // Path of the YAML file that was applied, if any.

	// External tools.
	FFmpegBin  string // Default: "ffmpeg".
	FFprobeBin string // Default: "ffprobe".

	// Compatibility limits.
	MaxWidth  int // Default: 1920.
	MaxHeight int // Default: 1080.

	// Conversion target. The container is always MP4.
	VideoEncoder    string // Fixed default: "libx264".
	VideoProfile    string // Fixed default: "high".
	VideoLevel      string // Fixed default: "4.1" (PS3 H.264 ceiling).
	PixFmt          string // Fixed default: "yuv420p".
	CRF             int    // Default: 20.
	Preset          string // Default: "medium".
	AudioEncoder    string // Fixed default: "aac".
	AudioBitrate    string // Default: "192k".
	AudioChannels   int    // Fixed default: 2.
	AudioSampleRate int    // Fixed default: 48000.

	// Behavior flags.
	Convert      bool // Convert incompatible files after the scan.
	DryRun       bool // Plan conversions without running ffmpeg.
	SkipExisting bool // Default: true. Cleared by --force.
	StrictMode   bool // Disable retry fallbacks.

	// Display and logging.
	Verbose      bool
	ShowDetails  bool      // Print the per-file detail table after the summary.
	ShowProgress bool      // Default: true. Live conversion progress on the console.
	TUI          bool      // Full-screen progress view.
	ColorMode    ColorMode // Default: "auto".
	LogFile      string    // Optional log file path (JSON lines).
	ReportFile   string    // Optional report output path.
	ReportFormat ReportFormat
	CheckOnly    bool // Run --check diagnostics and exit.
}

// DefaultConfig returns a Config with the defaults used before the config
// file, environment, and flags are applied.
func DefaultConfig() Config {
	return Config{
		OutputSuffix:    "_ps3",
		FFmpegBin:       "ffmpeg",
		FFprobeBin:      "ffprobe",
		MaxWidth:        1920,
		MaxHeight:       1080,
		VideoEncoder:    "libx264",
		VideoProfile:    "high",
		VideoLevel:      "4.1",
		PixFmt:          "yuv420p",
		CRF:             20,
		Preset:          "medium",
		AudioEncoder:    "aac",
		AudioBitrate:    "192k",
		AudioChannels:   2,
		AudioSampleRate: 48000,
		SkipExisting:    true,
		ShowProgress:    true,
		ColorMode:       ColorAuto,
		ReportFormat:    ReportText,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields and numeric ranges and canonicalizes the
// audio bitrate. When not in CheckOnly mode it also requires an input folder.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	switch c.ReportFormat {
	case ReportText, ReportJSON, ReportYAML:
	default:
		return errors.New("invalid report format (use 'text', 'json' or 'yaml')")
	}

	if c.CRF < CRFMin || c.CRF > CRFMax {
		return fmt.Errorf("crf must be between %d and %d (got %d)", CRFMin, CRFMax, c.CRF)
	}
	if c.MaxWidth <= 0 || c.MaxHeight <= 0 {
		return fmt.Errorf("max resolution must be positive (got %dx%d)", c.MaxWidth, c.MaxHeight)
	}
	if strings.TrimSpace(c.OutputSuffix) == "" && c.OutputDir == "" {
		return errors.New("output suffix must not be empty when writing next to the source")
	}
	if c.FFmpegBin == "" || c.FFprobeBin == "" {
		return errors.New("ffmpeg and ffprobe binaries must be set")
	}

	normalizedBitrate, err := normalizeAudioBitrate(c.AudioBitrate)
	if err != nil {
		return err
	}
	c.AudioBitrate = normalizedBitrate

	if c.CheckOnly {
		return nil
	}
	if c.InputDir == "" {
		return errors.New("need exactly one folder to scan")
	}
	return nil
}

// normalizeAudioBitrate validates and canonicalizes user bitrate input.
// Accepted forms: "192", "192k", "192K", "192kbps". Output is "<n>k".
func normalizeAudioBitrate(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", errors.New("audio bitrate must not be empty")
	}
	if strings.HasSuffix(s, "kbps") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "kbps"))
	} else if strings.HasSuffix(s, "k") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "k"))
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return "", fmt.Errorf("invalid audio bitrate %q (use positive Kbps value, e.g. 192k)", raw)
	}
	return fmt.Sprintf("%dk", n), nil
}

// ValidatePaths ensures the resolved output directory is not inside (or equal
// to) the resolved input directory, so a later scan does not pick up its own
// converted files. Both arguments must be absolute, symlink-resolved paths.
func (c *Config) ValidatePaths(inputAbs, outputAbs string) error {
	sep := string(filepath.Separator)
	if outputAbs == inputAbs || strings.HasPrefix(outputAbs+sep, inputAbs+sep) {
		return errors.New("output directory must not be inside input directory")
	}
	return nil
}
