package tui

import (
	"context"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/backmassage/ps3check/internal/config"
	"github.com/backmassage/ps3check/internal/ffmpeg"
	"github.com/backmassage/ps3check/internal/logging"
	"github.com/backmassage/ps3check/internal/media"
	"github.com/backmassage/ps3check/internal/pipeline"
	"github.com/backmassage/ps3check/internal/planner"
)

// Run executes the pipeline behind the full-screen view and returns once
// the pipeline has finished. ctrl+c cancels the run; partial results are
// still returned.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger) (*pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(cfg, cancel), tea.WithAltScreen())

	done := make(chan doneMsg, 1)
	go func() {
		res, err := pipeline.Run(ctx, cfg, log, NewObserver(p.Send))
		msg := doneMsg{res: res, err: err}
		done <- msg
		p.Send(msg)
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return nil, fmt.Errorf("tui: %w", err)
	}
	out := <-done
	return out.res, out.err
}

// Observer forwards pipeline events to a bubbletea program.
type Observer struct {
	send func(tea.Msg)
}

// NewObserver returns an Observer that delivers events through send,
// normally (*tea.Program).Send.
func NewObserver(send func(tea.Msg)) Observer {
	return Observer{send: send}
}

func (o Observer) OnScanStart(_ string, total int) {
	o.send(scanStartMsg{total: total})
}

func (o Observer) OnFileScanned(idx, total int, res media.ScanResult) {
	o.send(fileScannedMsg{idx: idx, total: total, res: res})
}

func (o Observer) OnConvertStart(idx, total int, plan *planner.FilePlan) {
	o.send(convertStartMsg{idx: idx, total: total, name: filepath.Base(plan.InputPath), action: plan.Action.String()})
}

func (o Observer) OnConvertProgress(fraction float64) {
	o.send(progressMsg(fraction))
}

func (o Observer) OnRetry(attempt int, action ffmpeg.RetryAction, _ string) {
	o.send(retryMsg{attempt: attempt, action: action.String()})
}

func (o Observer) OnConvertDone(_, _ int, res media.ScanResult) {
	o.send(convertDoneMsg{res: res})
}

// OnFinish is a no-op: completion is signalled once Run has returned.
func (o Observer) OnFinish(*pipeline.Result) {}
