// Package logging provides the leveled console/file logger used by every
// other package. Console output is human-readable and optionally colored;
// the optional log file receives one JSON object per line.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/backmassage/ps3check/internal/config"
	"github.com/backmassage/ps3check/internal/term"
)

const timeFormat = "2006-01-02 15:04:05"

// Logger provides leveled, optionally colored logging with optional file sink.
// Errors go to stderr, everything else to stdout.
type Logger struct {
	mu     sync.Mutex
	zl     zerolog.Logger
	fileZl zerolog.Logger // File sink only; Nop when no log file.
	file   *os.File
}

// NewLogger configures terminal colors from cfg, builds the console sink
// (muted when cfg.TUI owns the screen), and optionally opens cfg.LogFile.
// Call Close() when done.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode)

	var stdout, stderr io.Writer = os.Stdout, os.Stderr
	if cfg.TUI {
		stdout, stderr = io.Discard, io.Discard
	}
	return newLogger(cfg, stdout, stderr)
}

func newLogger(cfg *config.Config, stdout, stderr io.Writer) (*Logger, error) {
	l := &Logger{fileZl: zerolog.Nop()}

	writers := []io.Writer{splitWriter{
		out: consoleWriter(stdout),
		err: consoleWriter(stderr),
	}}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
		writers = append(writers, f)
		l.fileZl = zerolog.New(f).With().Timestamp().Logger()
	}

	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	l.zl = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().Timestamp().Logger()
	return l, nil
}

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !term.Enabled(),
		TimeFormat: timeFormat,
	}
}

// splitWriter routes error-and-above events to err and the rest to out.
type splitWriter struct {
	out io.Writer
	err io.Writer
}

func (w splitWriter) Write(p []byte) (int, error) {
	return w.out.Write(p)
}

func (w splitWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level >= zerolog.ErrorLevel {
		return w.err.Write(p)
	}
	return w.out.Write(p)
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

func (l *Logger) emit(e *zerolog.Event, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.Msg(fmt.Sprintf(format, args...))
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.emit(l.zl.Info(), format, args)
}

// Success logs at INFO level tagged status=ok.
func (l *Logger) Success(format string, args ...interface{}) {
	l.emit(l.zl.Info().Str("status", "ok"), format, args)
}

// Warn logs at WARN level.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.emit(l.zl.Warn(), format, args)
}

// Error logs at ERROR level, also to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.emit(l.zl.Error(), format, args)
}

// Debug logs at DEBUG level; dropped unless the logger was built with Verbose.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.emit(l.zl.Debug(), format, args)
}

// File writes an INFO event carrying the file path and the given fields to
// the log file only, so per-file results stay machine-readable there
// without repeating on the console.
func (l *Logger) File(path string, fields map[string]interface{}, format string, args ...interface{}) {
	l.emit(l.fileZl.Info().Str("file", path).Fields(fields), format, args)
}
