package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDirArg(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no trailing slash", "/media/videos", "/media/videos"},
		{"single trailing slash", "/media/videos/", "/media/videos"},
		{"multiple trailing slashes", "/media/videos///", "/media/videos"},
		{"root path", "/", "/"},
		{"relative path", "videos", "videos"},
		{"relative with slash", "videos/", "videos"},
		{"empty string", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDirArg(tt.in))
		})
	}
}

func TestValidate_ColorMode(t *testing.T) {
	tests := []struct {
		name    string
		mode    ColorMode
		wantErr bool
	}{
		{"auto is valid", ColorAuto, false},
		{"always is valid", ColorAlways, false},
		{"never is valid", ColorNever, false},
		{"empty is invalid", "", true},
		{"unknown is invalid", "sometimes", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.CheckOnly = true // skip path requirement
			cfg.ColorMode = tt.mode
			err := cfg.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "Validate() error = %v", err)
		})
	}
}

func TestValidate_ReportFormat(t *testing.T) {
	tests := []struct {
		name    string
		format  ReportFormat
		wantErr bool
	}{
		{"text is valid", ReportText, false},
		{"json is valid", ReportJSON, false},
		{"yaml is valid", ReportYAML, false},
		{"csv is invalid", "csv", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.CheckOnly = true
			cfg.ReportFormat = tt.format
			err := cfg.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "Validate() error = %v", err)
		})
	}
}

func TestValidate_NumericRanges(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default crf", func(*Config) {}, false},
		{"crf lower bound", func(c *Config) { c.CRF = 0 }, false},
		{"crf upper bound", func(c *Config) { c.CRF = 51 }, false},
		{"crf too high", func(c *Config) { c.CRF = 52 }, true},
		{"crf negative", func(c *Config) { c.CRF = -1 }, true},
		{"zero width", func(c *Config) { c.MaxWidth = 0 }, true},
		{"negative height", func(c *Config) { c.MaxHeight = -720 }, true},
		{"empty suffix next to source", func(c *Config) { c.OutputSuffix = "" }, true},
		{"empty suffix with output dir", func(c *Config) { c.OutputSuffix = ""; c.OutputDir = "/out" }, false},
		{"missing ffprobe", func(c *Config) { c.FFprobeBin = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.CheckOnly = true
			tt.mutate(&cfg)
			err := cfg.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "Validate() error = %v", err)
		})
	}
}

func TestValidate_NormalizesAudioBitrate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"192", "192k", false},
		{"192k", "192k", false},
		{"192K", "192k", false},
		{" 160kbps ", "160k", false},
		{"", "", true},
		{"-5k", "", true},
		{"loud", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.CheckOnly = true
			cfg.AudioBitrate = tt.in
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.AudioBitrate)
		})
	}
}

func TestValidate_RequiresInput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InputDir = ""
	assert.Error(t, cfg.Validate(), "Validate() should fail without a folder when CheckOnly is false")

	cfg.InputDir = "/videos"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_CheckOnlySkipsInput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CheckOnly = true
	assert.NoError(t, cfg.Validate())
}

func TestValidatePaths(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		output  string
		wantErr bool
	}{
		{"separate directories", "/media/in", "/media/out", false},
		{"output equals input", "/media/lib", "/media/lib", true},
		{"output inside input", "/media/lib", "/media/lib/ps3", true},
		{"output is parent of input", "/media/lib/sub", "/media/lib", false},
		{"similar prefix not nested", "/media/library", "/media/library2", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			err := cfg.ValidatePaths(tt.input, tt.output)
			assert.Equal(t, tt.wantErr, err != nil, "ValidatePaths(%q, %q) error = %v", tt.input, tt.output, err)
		})
	}
}

func TestDefaultConfig_SaneDefaults(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "_ps3", cfg.OutputSuffix)
	assert.Equal(t, 1920, cfg.MaxWidth)
	assert.Equal(t, 1080, cfg.MaxHeight)
	assert.Equal(t, "libx264", cfg.VideoEncoder)
	assert.Equal(t, "aac", cfg.AudioEncoder)
	assert.Equal(t, ColorAuto, cfg.ColorMode)
	assert.True(t, cfg.SkipExisting, "default SkipExisting should be true")
	assert.True(t, cfg.ShowProgress, "default ShowProgress should be true")
	assert.False(t, cfg.Convert, "default Convert should be false")
	assert.False(t, cfg.DryRun, "default DryRun should be false")
}

func TestParseArgs(t *testing.T) {
	t.Run("folder only", func(t *testing.T) {
		cfg := DefaultConfig()
		help, version, err := parseArgs(&cfg, []string{"/media/videos/"}, io.Discard)
		require.NoError(t, err)
		assert.False(t, help)
		assert.False(t, version)
		assert.Equal(t, "/media/videos", cfg.InputDir)
		assert.False(t, cfg.Convert)
	})

	t.Run("convert with overrides", func(t *testing.T) {
		cfg := DefaultConfig()
		_, _, err := parseArgs(&cfg, []string{
			"-C", "--force", "--no-color", "--no-progress",
			"--crf", "23", "-o", "/out/", "--report", "r.json", "--report-format", "JSON",
			"/in",
		}, io.Discard)
		require.NoError(t, err)
		assert.True(t, cfg.Convert)
		assert.False(t, cfg.SkipExisting)
		assert.False(t, cfg.ShowProgress)
		assert.Equal(t, ColorNever, cfg.ColorMode)
		assert.Equal(t, 23, cfg.CRF)
		assert.Equal(t, "/out", cfg.OutputDir)
		assert.Equal(t, "r.json", cfg.ReportFile)
		assert.Equal(t, ReportJSON, cfg.ReportFormat)
	})

	t.Run("no-color wins over color", func(t *testing.T) {
		cfg := DefaultConfig()
		_, _, err := parseArgs(&cfg, []string{"--color", "--no-color", "/in"}, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, ColorNever, cfg.ColorMode)
	})

	t.Run("missing folder", func(t *testing.T) {
		cfg := DefaultConfig()
		_, _, err := parseArgs(&cfg, nil, io.Discard)
		assert.Error(t, err)
	})

	t.Run("too many folders", func(t *testing.T) {
		cfg := DefaultConfig()
		_, _, err := parseArgs(&cfg, []string{"/a", "/b"}, io.Discard)
		assert.Error(t, err)
	})

	t.Run("check needs no folder", func(t *testing.T) {
		cfg := DefaultConfig()
		_, _, err := parseArgs(&cfg, []string{"--check"}, io.Discard)
		require.NoError(t, err)
		assert.True(t, cfg.CheckOnly)
	})

	t.Run("help short-circuits", func(t *testing.T) {
		cfg := DefaultConfig()
		help, _, err := parseArgs(&cfg, []string{"-h"}, io.Discard)
		require.NoError(t, err)
		assert.True(t, help)
	})

	t.Run("bad report format", func(t *testing.T) {
		cfg := DefaultConfig()
		_, _, err := parseArgs(&cfg, []string{"--report-format", "xml", "/in"}, io.Discard)
		assert.Error(t, err)
	})
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ps3check.yaml")
	content := `output_dir: /srv/ps3
crf: 22
convert: true
force: true
progress: false
color: never
report_format: yaml
ffmpeg: /opt/ffmpeg/bin/ffmpeg
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := DefaultConfig()
	require.NoError(t, LoadFile(&cfg, path))

	assert.Equal(t, "/srv/ps3", cfg.OutputDir)
	assert.Equal(t, 22, cfg.CRF)
	assert.True(t, cfg.Convert)
	assert.False(t, cfg.SkipExisting)
	assert.False(t, cfg.ShowProgress)
	assert.Equal(t, ColorNever, cfg.ColorMode)
	assert.Equal(t, ReportYAML, cfg.ReportFormat)
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.FFmpegBin)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, "ffprobe", cfg.FFprobeBin)
	assert.Equal(t, "medium", cfg.Preset)
}

func TestLoadFile_InvalidValues(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("color: rainbow\n"), 0o644))
	cfg := DefaultConfig()
	assert.Error(t, LoadFile(&cfg, bad))

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("crf: [1, 2\n"), 0o644))
	cfg = DefaultConfig()
	assert.Error(t, LoadFile(&cfg, broken))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ps3check.yaml")
	require.NoError(t, os.WriteFile(path, []byte("crf: 22\npreset: slow\n"), 0o644))

	t.Setenv(EnvConfigFile, path)
	t.Setenv(EnvCRF, "18")
	t.Setenv(EnvFFprobe, "/usr/local/bin/ffprobe")

	cfg := DefaultConfig()
	require.NoError(t, Load(&cfg))

	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, 18, cfg.CRF)
	assert.Equal(t, "slow", cfg.Preset)
	assert.Equal(t, "/usr/local/bin/ffprobe", cfg.FFprobeBin)
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	t.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "missing.yaml"))
	cfg := DefaultConfig()
	assert.Error(t, Load(&cfg))
}

func TestLoad_BadEnvCRF(t *testing.T) {
	t.Setenv(EnvConfigFile, "")
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvCRF, "twenty")
	cfg := DefaultConfig()
	assert.Error(t, Load(&cfg))
}
