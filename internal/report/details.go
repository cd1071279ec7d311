package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/backmassage/ps3check/internal/display"
	"github.com/backmassage/ps3check/internal/media"
	"github.com/backmassage/ps3check/internal/pipeline"
	"github.com/backmassage/ps3check/internal/term"
)

const maxNameWidth = 50

// detailRow holds the display strings for one line of the detail table.
type detailRow struct {
	Name       string
	Verdict    string
	Container  string
	Video      string
	Audio      string
	Resolution string
	Bitrate    string
	Duration   string
	Size       string
	class      string
}

var detailHeaders = [...]string{"File", "Verdict", "Container", "Video", "Audio", "Resolution", "Bitrate", "Duration", "Size"}

// WriteDetails prints one table row per scanned file with the metadata the
// verdict was based on. Verdict cells are colored by outcome.
func WriteDetails(w io.Writer, res *pipeline.Result) {
	if len(res.Files) == 0 {
		fmt.Fprintln(w, "  No media files found")
		return
	}

	rows := make([]detailRow, 0, len(res.Files))
	for _, r := range res.Files {
		rows = append(rows, newDetailRow(res.Root, r))
	}

	var widths [len(detailHeaders)]int
	for i, h := range detailHeaders {
		widths[i] = len(h)
	}
	for _, r := range rows {
		for i, cell := range r.cells() {
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}
	if widths[0] > maxNameWidth {
		widths[0] = maxNameWidth
	}

	var header strings.Builder
	for i, h := range detailHeaders {
		fmt.Fprintf(&header, "  %-*s", widths[i], h)
	}
	line := strings.TrimRight(header.String(), " ")
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, "  "+strings.Repeat("─", utf8.RuneCountInString(line)-2))

	for _, r := range rows {
		var b strings.Builder
		for i, cell := range r.cells() {
			if i == 0 {
				cell = truncate(cell, widths[0])
			}
			b.WriteString("  ")
			if i == 1 {
				// Pad before coloring so escape bytes do not count as width.
				b.WriteString(colorPad(cell, widths[i], r.class))
				continue
			}
			b.WriteString(padRunes(cell, widths[i]))
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
}

func newDetailRow(root string, r media.ScanResult) detailRow {
	f := r.File
	row := detailRow{
		Name:       relName(root, f.Path),
		Verdict:    string(r.Verdict),
		Container:  orDash(f.Container),
		Video:      orDash(f.VideoCodec),
		Audio:      orDash(f.AudioCodec),
		Resolution: f.Resolution(),
		Bitrate:    display.FormatBitrateLabel(f.BitRate / 1000),
		Duration:   display.FormatDuration(f.Duration),
		Size:       display.FormatBytes(f.Size),
		class:      string(r.Verdict),
	}
	if r.Unreadable() {
		row.Verdict = "unreadable"
		row.class = "unreadable"
	}
	if c := r.Conversion; c != nil {
		row.Verdict += " (" + string(c.Status) + ")"
		if c.Status == media.StatusFailed {
			row.class = "unreadable"
		}
	}
	return row
}

func (r detailRow) cells() [len(detailHeaders)]string {
	return [...]string{r.Name, r.Verdict, r.Container, r.Video, r.Audio, r.Resolution, r.Bitrate, r.Duration, r.Size}
}

// colorPad pads a plain string to width, then wraps it in ANSI color.
func colorPad(s string, width int, class string) string {
	padded := padRunes(s, width)
	switch class {
	case string(media.Compatible):
		return term.Green + padded + term.NC
	case string(media.Incompatible):
		return term.Yellow + padded + term.NC
	case "unreadable":
		return term.Red + padded + term.NC
	default:
		return padded
	}
}

func padRunes(s string, width int) string {
	if n := width - utf8.RuneCountInString(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
