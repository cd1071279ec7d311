package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variable names read by Load.
const (
	EnvConfigFile   = "PS3CHECK_CONFIG"
	EnvFFmpeg       = "PS3CHECK_FFMPEG"
	EnvFFprobe      = "PS3CHECK_FFPROBE"
	EnvOutputDir    = "PS3CHECK_OUTPUT_DIR"
	EnvLogFile      = "PS3CHECK_LOG"
	EnvCRF          = "PS3CHECK_CRF"
	EnvPreset       = "PS3CHECK_PRESET"
	EnvAudioBitrate = "PS3CHECK_AUDIO_BITRATE"
)

// DefaultConfigName is the file looked up in the user's home directory.
const DefaultConfigName = ".ps3check.yaml"

// fileConfig mirrors the YAML config file. Pointer fields distinguish
// "unset" from a zero value so only present keys override defaults.
type fileConfig struct {
	OutputDir    *string `yaml:"output_dir"`
	OutputSuffix *string `yaml:"output_suffix"`
	FFmpeg       *string `yaml:"ffmpeg"`
	FFprobe      *string `yaml:"ffprobe"`
	MaxWidth     *int    `yaml:"max_width"`
	MaxHeight    *int    `yaml:"max_height"`
	CRF          *int    `yaml:"crf"`
	Preset       *string `yaml:"preset"`
	AudioBitrate *string `yaml:"audio_bitrate"`
	Convert      *bool   `yaml:"convert"`
	Strict       *bool   `yaml:"strict"`
	Force        *bool   `yaml:"force"`
	Details      *bool   `yaml:"details"`
	Progress     *bool   `yaml:"progress"`
	Color        *string `yaml:"color"`
	LogFile      *string `yaml:"log_file"`
	ReportFile   *string `yaml:"report_file"`
	ReportFormat *string `yaml:"report_format"`
}

// Load applies a .env file (if present), the YAML config file, and
// PS3CHECK_* environment variables to cfg, in that order of increasing
// precedence. A missing config file is not an error unless it was named
// explicitly through PS3CHECK_CONFIG.
func Load(cfg *Config) error {
	// .env is optional; a missing file is the common case.
	_ = godotenv.Load()

	path, explicit := configFilePath()
	if path != "" {
		err := LoadFile(cfg, path)
		switch {
		case err == nil:
			cfg.ConfigFile = path
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return err
		}
	}
	return applyEnv(cfg)
}

// configFilePath returns the config file to read and whether the user named
// it explicitly.
func configFilePath() (string, bool) {
	if p := os.Getenv(EnvConfigFile); p != "" {
		return p, true
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(home, DefaultConfigName), false
}

// LoadFile reads a YAML config file and applies the keys it sets to cfg.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc.apply(cfg)
}

func (fc *fileConfig) apply(cfg *Config) error {
	setString(&cfg.OutputDir, fc.OutputDir)
	setString(&cfg.OutputSuffix, fc.OutputSuffix)
	setString(&cfg.FFmpegBin, fc.FFmpeg)
	setString(&cfg.FFprobeBin, fc.FFprobe)
	setString(&cfg.Preset, fc.Preset)
	setString(&cfg.AudioBitrate, fc.AudioBitrate)
	setString(&cfg.LogFile, fc.LogFile)
	setString(&cfg.ReportFile, fc.ReportFile)
	setInt(&cfg.MaxWidth, fc.MaxWidth)
	setInt(&cfg.MaxHeight, fc.MaxHeight)
	setInt(&cfg.CRF, fc.CRF)
	setBool(&cfg.Convert, fc.Convert)
	setBool(&cfg.StrictMode, fc.Strict)
	setBool(&cfg.ShowDetails, fc.Details)
	setBool(&cfg.ShowProgress, fc.Progress)
	if fc.Force != nil {
		cfg.SkipExisting = !*fc.Force
	}
	if fc.Color != nil {
		switch mode := ColorMode(strings.ToLower(*fc.Color)); mode {
		case ColorAuto, ColorAlways, ColorNever:
			cfg.ColorMode = mode
		default:
			return fmt.Errorf("invalid color %q in config file", *fc.Color)
		}
	}
	if fc.ReportFormat != nil {
		f, err := ParseReportFormat(*fc.ReportFormat)
		if err != nil {
			return err
		}
		cfg.ReportFormat = f
	}
	return nil
}

// applyEnv overrides cfg from PS3CHECK_* variables.
func applyEnv(cfg *Config) error {
	envString(&cfg.FFmpegBin, EnvFFmpeg)
	envString(&cfg.FFprobeBin, EnvFFprobe)
	envString(&cfg.OutputDir, EnvOutputDir)
	envString(&cfg.LogFile, EnvLogFile)
	envString(&cfg.Preset, EnvPreset)
	envString(&cfg.AudioBitrate, EnvAudioBitrate)
	if v := os.Getenv(EnvCRF); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s must be a whole number (got %q)", EnvCRF, v)
		}
		cfg.CRF = n
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
