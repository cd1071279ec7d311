package pipeline

import (
	"github.com/samber/lo"

	"github.com/backmassage/ps3check/internal/media"
)

// RunStats tracks aggregate counters and byte totals across a batch run.
type RunStats struct {
	Total        int `json:"total" yaml:"total"`
	Compatible   int `json:"compatible" yaml:"compatible"`
	Incompatible int `json:"incompatible" yaml:"incompatible"`
	Unreadable   int `json:"unreadable" yaml:"unreadable"` // Subset of Incompatible.

	Converted int `json:"converted" yaml:"converted"`
	Skipped   int `json:"skipped" yaml:"skipped"`
	Failed    int `json:"failed" yaml:"failed"`
	DryRun    int `json:"dry_run" yaml:"dry_run"`

	// Sizes of converted sources and their outputs.
	TotalInputBytes  int64 `json:"total_input_bytes" yaml:"total_input_bytes"`
	TotalOutputBytes int64 `json:"total_output_bytes" yaml:"total_output_bytes"`
}

// ComputeStats derives the counters from a run's results.
func ComputeStats(results []media.ScanResult) RunStats {
	s := RunStats{
		Total: len(results),
		Compatible: lo.CountBy(results, func(r media.ScanResult) bool {
			return r.Verdict == media.Compatible
		}),
		Unreadable: lo.CountBy(results, media.ScanResult.Unreadable),
	}
	s.Incompatible = s.Total - s.Compatible

	for _, r := range results {
		c := r.Conversion
		if c == nil {
			continue
		}
		switch c.Status {
		case media.StatusConverted:
			s.Converted++
			s.TotalInputBytes += r.File.Size
			s.TotalOutputBytes += c.OutputSize
		case media.StatusSkipped:
			s.Skipped++
		case media.StatusFailed:
			s.Failed++
		case media.StatusDryRun:
			s.DryRun++
		}
	}
	return s
}

// SpaceSaved returns the aggregate byte difference between inputs and outputs.
// Positive means outputs are smaller; negative means they grew.
func (s *RunStats) SpaceSaved() int64 {
	return s.TotalInputBytes - s.TotalOutputBytes
}
