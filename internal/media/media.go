// Package media defines the data model shared by the scan, conversion and
// report stages: the metadata read from a file, the verdict assigned to it,
// and the outcome of converting it.
package media

import (
	"strconv"
	"time"
)

// MediaFile holds the attributes read from a file's metadata.
// Zero values mean "not reported by ffprobe".
type MediaFile struct {
	Path       string  `json:"path" yaml:"path"`
	Container  string  `json:"container,omitempty" yaml:"container,omitempty"`
	VideoCodec string  `json:"video_codec,omitempty" yaml:"video_codec,omitempty"`
	AudioCodec string  `json:"audio_codec,omitempty" yaml:"audio_codec,omitempty"`
	PixFmt     string  `json:"pix_fmt,omitempty" yaml:"pix_fmt,omitempty"`
	Width      int     `json:"width,omitempty" yaml:"width,omitempty"`
	Height     int     `json:"height,omitempty" yaml:"height,omitempty"`
	BitRate    int64   `json:"bit_rate,omitempty" yaml:"bit_rate,omitempty"`
	Duration   float64 `json:"duration,omitempty" yaml:"duration,omitempty"`
	Size       int64   `json:"size" yaml:"size"`
}

// Resolution returns "WxH", or "unknown" when either dimension is missing.
func (m MediaFile) Resolution() string {
	if m.Width <= 0 || m.Height <= 0 {
		return "unknown"
	}
	return strconv.Itoa(m.Width) + "x" + strconv.Itoa(m.Height)
}

// Verdict is the compatible/incompatible classification of a scanned file.
type Verdict string

const (
	Compatible   Verdict = "compatible"
	Incompatible Verdict = "incompatible"
)

// Status is the outcome of a single conversion attempt.
type Status string

const (
	StatusConverted Status = "converted"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
	StatusDryRun    Status = "dry-run"
)

// ConversionOutcome records what happened when an incompatible file was
// handed to the converter.
type ConversionOutcome struct {
	Status     Status        `json:"status" yaml:"status"`
	OutputPath string        `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	Action     string        `json:"action,omitempty" yaml:"action,omitempty"`
	Attempts   int           `json:"attempts,omitempty" yaml:"attempts,omitempty"`
	Err        string        `json:"error,omitempty" yaml:"error,omitempty"`
	Elapsed    time.Duration `json:"elapsed_ns,omitempty" yaml:"elapsed,omitempty"`
	OutputSize int64         `json:"output_size,omitempty" yaml:"output_size,omitempty"`
}

// ScanResult pairs a file with its verdict. ProbeError is set when the
// metadata could not be read; such files are always Incompatible.
type ScanResult struct {
	File       MediaFile          `json:"file" yaml:"file"`
	Verdict    Verdict            `json:"verdict" yaml:"verdict"`
	Reasons    []string           `json:"reasons,omitempty" yaml:"reasons,omitempty"`
	ProbeError string             `json:"probe_error,omitempty" yaml:"probe_error,omitempty"`
	Conversion *ConversionOutcome `json:"conversion,omitempty" yaml:"conversion,omitempty"`
}

// NeedsConversion reports whether the file is queued for conversion.
func (r ScanResult) NeedsConversion() bool { return r.Verdict == Incompatible }

// Unreadable reports whether the metadata could not be read at all.
func (r ScanResult) Unreadable() bool { return r.ProbeError != "" }
