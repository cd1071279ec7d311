// Package report renders a finished run: the end-of-run summary, the
// per-file detail table, and report files in text, JSON or YAML.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/backmassage/ps3check/internal/display"
	"github.com/backmassage/ps3check/internal/media"
	"github.com/backmassage/ps3check/internal/pipeline"
	"github.com/backmassage/ps3check/internal/term"
)

// WriteSummary prints the three verdict lists (supported, unsupported,
// failed to process) followed by the conversion outcomes, if any.
func WriteSummary(w io.Writer, res *pipeline.Result) {
	s := res.Stats

	fmt.Fprintf(w, "%s=== Summary ===%s\n", term.Bold, term.NC)
	fmt.Fprintf(w, "  Folder:      %s\n", res.Root)
	fmt.Fprintf(w, "  Scanned:     %d file(s) in %s\n", s.Total,
		display.FormatElapsed(res.Finished.Sub(res.Started)))
	fmt.Fprintf(w, "  Supported:   %s%d%s\n", term.Green, s.Compatible, term.NC)
	fmt.Fprintf(w, "  Unsupported: %s%d%s\n", term.Yellow, s.Incompatible-s.Unreadable, term.NC)
	if s.Unreadable > 0 {
		fmt.Fprintf(w, "  Unreadable:  %s%d%s\n", term.Red, s.Unreadable, term.NC)
	}
	if res.Interrupted {
		fmt.Fprintf(w, "  %sInterrupted: results are partial%s\n", term.Yellow, term.NC)
	}

	supported := lo.Filter(res.Files, func(r media.ScanResult, _ int) bool {
		return r.Verdict == media.Compatible
	})
	unsupported := lo.Filter(res.Files, func(r media.ScanResult, _ int) bool {
		return r.Verdict == media.Incompatible && !r.Unreadable()
	})
	unreadable := lo.Filter(res.Files, func(r media.ScanResult, _ int) bool {
		return r.Unreadable()
	})

	writeList(w, "Supported", term.Green, supported, func(r media.ScanResult) string {
		return fmt.Sprintf("%s %s/%s %s", r.File.Container, r.File.VideoCodec, r.File.AudioCodec, r.File.Resolution())
	}, res.Root)
	writeList(w, "Unsupported", term.Yellow, unsupported, func(r media.ScanResult) string {
		return strings.Join(r.Reasons, "; ")
	}, res.Root)
	writeList(w, "Failed to process", term.Red, unreadable, func(r media.ScanResult) string {
		return r.ProbeError
	}, res.Root)

	if res.Converting {
		writeConversions(w, res)
	}
}

func writeList(w io.Writer, title, color string, rows []media.ScanResult, detail func(media.ScanResult) string, root string) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s%s (%d):%s\n", color, title, len(rows), term.NC)
	for _, r := range rows {
		fmt.Fprintf(w, "  %s", relName(root, r.File.Path))
		if d := detail(r); d != "" {
			fmt.Fprintf(w, ": %s", d)
		}
		fmt.Fprintln(w)
	}
}

func writeConversions(w io.Writer, res *pipeline.Result) {
	s := res.Stats
	queued := lo.Filter(res.Files, func(r media.ScanResult, _ int) bool {
		return r.Conversion != nil
	})

	title := "Conversions"
	if res.DryRun {
		title = "Planned conversions (dry run)"
	}
	fmt.Fprintf(w, "\n%s%s (%d):%s\n", term.Bold, title, len(queued), term.NC)
	if len(queued) == 0 {
		fmt.Fprintln(w, "  nothing to convert")
		return
	}

	for _, r := range queued {
		c := r.Conversion
		name := relName(res.Root, r.File.Path)
		switch c.Status {
		case media.StatusConverted:
			fmt.Fprintf(w, "  %sconverted%s %s -> %s (%s, %s, %s)\n", term.Green, term.NC,
				name, relName(res.Root, c.OutputPath), c.Action,
				display.FormatElapsed(c.Elapsed), display.FormatBytes(c.OutputSize))
		case media.StatusDryRun:
			fmt.Fprintf(w, "  %swould %s%s %s -> %s\n", term.Cyan, c.Action, term.NC,
				name, relName(res.Root, c.OutputPath))
		case media.StatusSkipped:
			fmt.Fprintf(w, "  %sskipped%s   %s (%s already exists)\n", term.Yellow, term.NC,
				name, relName(res.Root, c.OutputPath))
		default:
			fmt.Fprintf(w, "  %sfailed%s    %s: %s\n", term.Red, term.NC, name, c.Err)
		}
	}

	fmt.Fprintf(w, "\n  Converted: %d  Skipped: %d  Failed: %d", s.Converted, s.Skipped, s.Failed)
	if res.DryRun {
		fmt.Fprintf(w, "  Planned: %d", s.DryRun)
	}
	fmt.Fprintln(w)
	if s.Converted > 0 {
		fmt.Fprintf(w, "  Size: %s -> %s (%s)\n",
			display.FormatBytes(s.TotalInputBytes), display.FormatBytes(s.TotalOutputBytes),
			display.FormatBytesWithSign(-s.SpaceSaved()))
	}
}

// relName shows path relative to the scanned folder when it lies inside it.
func relName(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
