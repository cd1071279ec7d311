// Package tui is the full-screen progress view enabled by --tui. The
// pipeline runs on its own goroutine and reports through an Observer that
// forwards every event to the bubbletea program as a message.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/backmassage/ps3check/internal/config"
	"github.com/backmassage/ps3check/internal/media"
	"github.com/backmassage/ps3check/internal/pipeline"
)

type phase int

const (
	phaseScanning phase = iota
	phaseConverting
	phaseDone
)

// maxRecent is how many finished files stay listed under the progress bar.
const maxRecent = 6

type model struct {
	cfg    *config.Config
	cancel context.CancelFunc

	spinner  spinner.Model
	progress progress.Model
	phase    phase
	status   string
	stopping bool

	scanned, total     int
	convIdx, convTotal int
	current            string
	fraction           float64

	compatible, incompatible, unreadable int
	converted, skipped, failed           int
	recent                               []string

	width int

	result *pipeline.Result
	err    error
}

type scanStartMsg struct{ total int }

type fileScannedMsg struct {
	idx, total int
	res        media.ScanResult
}

type convertStartMsg struct {
	idx, total int
	name       string
	action     string
}

type progressMsg float64

type retryMsg struct {
	attempt int
	action  string
}

type convertDoneMsg struct{ res media.ScanResult }

type doneMsg struct {
	res *pipeline.Result
	err error
}

func newModel(cfg *config.Config, cancel context.CancelFunc) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithoutPercentage(),
	)
	p.Width = 60

	return model{
		cfg:      cfg,
		cancel:   cancel,
		spinner:  s,
		progress: p,
		status:   "Discovering media files...",
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		w := msg.Width - 30
		if w < 20 {
			w = 20
		}
		m.progress.Width = w
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.phase == phaseDone {
				return m, tea.Quit
			}
			if !m.stopping {
				m.stopping = true
				m.status = "Stopping after the current file..."
				m.cancel()
			}
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case scanStartMsg:
		m.total = msg.total
		m.status = fmt.Sprintf("Scanning %d file(s)", msg.total)
		return m, nil

	case fileScannedMsg:
		m.scanned = msg.idx
		m.current = filepath.Base(msg.res.File.Path)
		switch {
		case msg.res.Unreadable():
			m.unreadable++
			m.push(fmt.Sprintf("! %s: unreadable", m.current))
		case msg.res.Verdict == media.Compatible:
			m.compatible++
		default:
			m.incompatible++
			m.push(fmt.Sprintf("✗ %s: %s", m.current, strings.Join(msg.res.Reasons, "; ")))
		}
		return m, nil

	case convertStartMsg:
		m.phase = phaseConverting
		m.convIdx, m.convTotal = msg.idx, msg.total
		m.current = msg.name
		m.fraction = 0
		if !m.stopping {
			m.status = fmt.Sprintf("Converting (%s)", msg.action)
		}
		return m, nil

	case progressMsg:
		m.fraction = float64(msg)
		return m, nil

	case retryMsg:
		m.push(fmt.Sprintf("↻ %s: retry %d, %s", m.current, msg.attempt, msg.action))
		return m, nil

	case convertDoneMsg:
		m.phase = phaseConverting
		c := msg.res.Conversion
		name := filepath.Base(msg.res.File.Path)
		switch c.Status {
		case media.StatusConverted:
			m.converted++
			m.push(fmt.Sprintf("✓ %s → %s", name, filepath.Base(c.OutputPath)))
		case media.StatusSkipped:
			m.skipped++
			m.push(fmt.Sprintf("- %s: already converted", name))
		case media.StatusDryRun:
			m.push(fmt.Sprintf("· %s: would %s", name, c.Action))
		default:
			m.failed++
			m.push(fmt.Sprintf("✗ %s: %s", name, c.Err))
		}
		return m, nil

	case doneMsg:
		m.phase = phaseDone
		m.result = msg.res
		m.err = msg.err
		m.status = "Done"
		return m, tea.Quit
	}

	return m, nil
}

func (m *model) push(line string) {
	m.recent = append(m.recent, line)
	if len(m.recent) > maxRecent {
		m.recent = m.recent[len(m.recent)-maxRecent:]
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1).
			MarginLeft(2)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginLeft(2)
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true).MarginLeft(2)
)

func (m model) View() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(titleStyle.Render("PS3check"))
	b.WriteString("\n\n")

	mode := "SCAN"
	switch {
	case m.cfg.DryRun:
		mode = "DRY RUN"
	case m.cfg.Convert:
		mode = "CONVERT"
	}
	out := m.cfg.OutputDir
	if out == "" {
		out = "beside sources"
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("%s → %s | %s", truncate(m.cfg.InputDir, 30), truncate(out, 30), mode)))
	b.WriteString("\n\n  ")

	phases := []string{"Scanning", "Converting", "Done"}
	for i, name := range phases {
		if i > 0 {
			b.WriteString(" → ")
		}
		switch {
		case int(m.phase) == i:
			b.WriteString(activeStyle.Render(name))
		case int(m.phase) > i:
			b.WriteString(dimStyle.UnsetMarginLeft().Render("✓"))
		default:
			b.WriteString(dimStyle.UnsetMarginLeft().Render(name))
		}
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "  %s %s\n\n", m.spinner.View(), m.status)

	switch m.phase {
	case phaseScanning:
		if m.total > 0 {
			pct := float64(m.scanned) / float64(m.total)
			b.WriteString("  ")
			b.WriteString(m.progress.ViewAs(pct))
			fmt.Fprintf(&b, " %3d%% (%d/%d files)\n", int(pct*100), m.scanned, m.total)
		}
	case phaseConverting:
		b.WriteString("  ")
		b.WriteString(m.progress.ViewAs(m.fraction))
		fmt.Fprintf(&b, " %3d%% [%d/%d]\n", int(m.fraction*100), m.convIdx, m.convTotal)
	}
	if m.current != "" && m.phase != phaseDone {
		maxLen := m.width - 10
		if maxLen < 40 {
			maxLen = 40
		}
		b.WriteString(currentStyle.Render(truncate(m.current, maxLen)))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n  %s  %s  %s",
		okStyle.Render(fmt.Sprintf("%d compatible", m.compatible)),
		warnStyle.Render(fmt.Sprintf("%d incompatible", m.incompatible)),
		errStyle.Render(fmt.Sprintf("%d unreadable", m.unreadable)))
	if m.cfg.Convert || m.cfg.DryRun {
		fmt.Fprintf(&b, "  |  %d converted  %d skipped  %d failed", m.converted, m.skipped, m.failed)
	}
	b.WriteString("\n\n")

	for _, line := range m.recent {
		b.WriteString(dimStyle.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("ctrl+c/q: stop"))
	b.WriteString("\n")
	return b.String()
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return "…" + string(r[len(r)-maxLen+1:])
}
