package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into conversion, encoding, output, display, and utility.
// Negated flags (e.g. --no-progress) are applied after Parse so Config
// values loaded earlier hold unless the flag is set.

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseFlags parses os.Args into cfg. On --help or --version it prints and exits.
// On error it returns non-nil (e.g. unknown flag, missing positional arg).
func ParseFlags(cfg *Config, version string) error {
	help, showVersion, err := parseArgs(cfg, os.Args[1:], os.Stderr)
	if err != nil {
		return err
	}
	if help {
		printUsage(os.Stderr, version)
		os.Exit(0)
	}
	if showVersion {
		fmt.Fprintln(os.Stdout, "ps3check v"+version)
		os.Exit(0)
	}
	return nil
}

// parseArgs does the work of ParseFlags without touching process state.
// It reports whether help or version output was requested.
func parseArgs(cfg *Config, args []string, errOut io.Writer) (help, showVersion bool, err error) {
	fs := flag.NewFlagSet("ps3check", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {}

	var negated negatedFlags

	defineConversionFlags(fs, cfg)
	defineEncodingFlags(fs, cfg)
	defineOutputFlags(fs, cfg, &negated)
	defineDisplayFlags(fs, cfg, &negated)
	defineUtilityFlags(fs, cfg, &negated)

	if err := fs.Parse(args); err != nil {
		return false, false, err
	}

	applyNegatedFlags(cfg, &negated)

	if negated.showHelp || negated.showVersion {
		return negated.showHelp, negated.showVersion, nil
	}
	return false, false, parsePositionalArgs(fs, cfg)
}

// negatedFlags holds boolean flags that are applied after Parse.
// These either invert a default (e.g. noProgress -> ShowProgress=false) or
// trigger exit (showHelp, showVersion).
type negatedFlags struct {
	noProgress  bool
	force       bool
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

// defineConversionFlags registers -C/--convert, -d/--dry-run, --strict.
func defineConversionFlags(fs *flag.FlagSet, cfg *Config) {
	fs.BoolVar(&cfg.Convert, "convert", cfg.Convert, "Convert unsupported files to PS3-compatible MP4")
	fs.BoolVar(&cfg.Convert, "C", cfg.Convert, "Same as --convert")
	fs.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "Plan conversions without running ffmpeg")
	fs.BoolVar(&cfg.DryRun, "d", cfg.DryRun, "Same as --dry-run")
	fs.BoolVar(&cfg.StrictMode, "strict", cfg.StrictMode, "Disable automatic ffmpeg retry fallbacks")
}

// defineEncodingFlags registers --crf, --preset, --audio-bitrate, --max-width, --max-height.
func defineEncodingFlags(fs *flag.FlagSet, cfg *Config) {
	fs.IntVar(&cfg.CRF, "crf", cfg.CRF, "x264 CRF for re-encoded video (0-51)")
	fs.StringVar(&cfg.Preset, "preset", cfg.Preset, "x264 preset (e.g. fast, medium, slow)")
	fs.StringVar(&cfg.Preset, "p", cfg.Preset, "Same as --preset")
	fs.StringVar(&cfg.AudioBitrate, "audio-bitrate", cfg.AudioBitrate, "AAC bitrate (e.g. 192k)")
	fs.IntVar(&cfg.MaxWidth, "max-width", cfg.MaxWidth, "Widest resolution accepted as compatible")
	fs.IntVar(&cfg.MaxHeight, "max-height", cfg.MaxHeight, "Tallest resolution accepted as compatible")
}

// defineOutputFlags registers -o/--output, --suffix, -f/--force, --report, --report-format.
func defineOutputFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.StringVar(&cfg.OutputDir, "output", cfg.OutputDir, "Write converted files under this directory")
	fs.StringVar(&cfg.OutputDir, "o", cfg.OutputDir, "Same as --output")
	fs.StringVar(&cfg.OutputSuffix, "suffix", cfg.OutputSuffix, "Suffix appended to converted file names")
	fs.BoolVar(&n.force, "force", false, "Overwrite existing converted files")
	fs.BoolVar(&n.force, "f", false, "Same as --force")
	fs.StringVar(&cfg.ReportFile, "report", cfg.ReportFile, "Write a run report to this file")
	fs.Var(&reportFormatValue{&cfg.ReportFormat}, "report-format", "Report format: text | json | yaml")
}

// defineDisplayFlags registers --details, --tui, --no-progress, --color, --no-color, verbose, --log.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&cfg.ShowDetails, "details", cfg.ShowDetails, "Print the per-file detail table")
	fs.BoolVar(&cfg.TUI, "tui", cfg.TUI, "Full-screen progress view")
	fs.BoolVar(&n.noProgress, "no-progress", false, "Do not show live conversion progress")
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Same as --verbose")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Append logs to file")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "Same as --log")
}

// defineUtilityFlags registers --check, --version and --help.
func defineUtilityFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&cfg.CheckOnly, "check", cfg.CheckOnly, "Run system diagnostics and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", cfg.CheckOnly, "Same as --check")
	fs.BoolVar(&n.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&n.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&n.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&n.showHelp, "h", false, "Same as --help")
}

// applyNegatedFlags copies negated and override flag values into cfg.
func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.noProgress {
		cfg.ShowProgress = false
	}
	if n.force {
		cfg.SkipExisting = false
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// parsePositionalArgs sets InputDir from the single positional arg when not in CheckOnly mode.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) error {
	args := fs.Args()
	if cfg.CheckOnly {
		return nil
	}
	if len(args) != 1 {
		return fmt.Errorf("need exactly one folder to scan (got %d arguments)", len(args))
	}
	cfg.InputDir = NormalizeDirArg(args[0])
	if cfg.OutputDir != "" {
		cfg.OutputDir = NormalizeDirArg(cfg.OutputDir)
	}
	return nil
}

// printUsage writes the help text. Column-aligned for readability.
func printUsage(w io.Writer, version string) {
	const col1 = 30
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "ps3check v" + version + " - PlayStation 3 video compatibility checker"},
		{"", ""},
		{"  ps3check [OPTIONS] <folder>", ""},
		{"", ""},
		{"Conversion", ""},
		{"  -C, --convert", "Convert unsupported files to PS3-compatible MP4"},
		{"  -d, --dry-run", "Plan conversions without running ffmpeg"},
		{"  --strict", "Disable automatic ffmpeg retry fallbacks"},
		{"", ""},
		{"Encoding", ""},
		{"  --crf <0-51>", "x264 CRF for re-encoded video (default: 20)"},
		{"  -p, --preset <name>", "x264 preset (default: medium)"},
		{"  --audio-bitrate <rate>", "AAC bitrate (default: 192k)"},
		{"  --max-width <px>", "Widest compatible resolution (default: 1920)"},
		{"  --max-height <px>", "Tallest compatible resolution (default: 1080)"},
		{"", ""},
		{"Output", ""},
		{"  -o, --output <dir>", "Write converted files under <dir> (default: next to source)"},
		{"  --suffix <text>", "Converted file name suffix (default: _ps3)"},
		{"  -f, --force", "Overwrite existing converted files"},
		{"  --report <path>", "Write a run report to <path>"},
		{"  --report-format <fmt>", "text | json | yaml (default: text)"},
		{"", ""},
		{"Display", ""},
		{"  --details", "Print the per-file detail table"},
		{"  --tui", "Full-screen progress view"},
		{"  --no-progress", "Disable live conversion progress"},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"  -l, --log <path>", "Append logs to file"},
		{"", ""},
		{"Utility", ""},
		{"  -c, --check", "System diagnostics (ffmpeg, ffprobe, H.264, AAC)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
		{"", ""},
		{"", "Settings are also read from ~/.ps3check.yaml ($PS3CHECK_CONFIG),"},
		{"", "a .env file, and PS3CHECK_* environment variables."},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(w)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(w, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(w, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(w, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// flag.Value adapter so the ReportFormat enum can be used with flag.Var.

type reportFormatValue struct{ p *ReportFormat }

func (r *reportFormatValue) String() string {
	if r.p == nil {
		return ""
	}
	return string(*r.p)
}

func (r *reportFormatValue) Set(s string) error {
	f, err := ParseReportFormat(s)
	if err != nil {
		return err
	}
	*r.p = f
	return nil
}

// ParseReportFormat maps user input to a ReportFormat, case-insensitively.
func ParseReportFormat(s string) (ReportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "txt":
		return ReportText, nil
	case "json":
		return ReportJSON, nil
	case "yaml", "yml":
		return ReportYAML, nil
	}
	return "", fmt.Errorf("invalid report format %q (use 'text', 'json' or 'yaml')", s)
}
