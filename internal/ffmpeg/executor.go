package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// stderrTailLines bounds how much non-progress stderr is kept per run.
const stderrTailLines = 200

// ExecResult holds the outcome of a single ffmpeg invocation.
type ExecResult struct {
	Stderr string // Non-progress stderr lines, newest last.
	Err    error
}

// ExecOptions carries the callbacks for one invocation. All fields are
// optional.
type ExecOptions struct {
	// Duration of the source in seconds; progress is reported as a fraction
	// of it.
	Duration float64
	// OnProgress receives a fraction in [0, 1] for every stats line and a
	// final 1 on success.
	OnProgress func(fraction float64)
	// OnLine receives every non-progress stderr line (verbose logging).
	OnLine func(line string)
}

// Execute runs bin with args. stderr is read line by line (ffmpeg ends
// stats lines with \r): stats lines feed OnProgress, everything else is
// kept for retry classification. The process is killed when ctx is done.
func Execute(ctx context.Context, bin string, args []string, opts ExecOptions) ExecResult {
	cmd := exec.CommandContext(ctx, bin, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return ExecResult{Err: err}
	}
	if err := cmd.Start(); err != nil {
		return ExecResult{Err: err}
	}

	var tail []string
	sc := bufio.NewScanner(stderr)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sc.Split(scanLinesCR)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if t, ok := ParseProgressTime(line); ok {
			if opts.OnProgress != nil {
				opts.OnProgress(Fraction(t, opts.Duration))
			}
			continue
		}
		if opts.OnLine != nil {
			opts.OnLine(line)
		}
		tail = append(tail, line)
		if len(tail) > stderrTailLines {
			tail = tail[len(tail)-stderrTailLines:]
		}
	}

	err = cmd.Wait()
	if err == nil && opts.OnProgress != nil {
		opts.OnProgress(1)
	}
	return ExecResult{
		Stderr: strings.Join(tail, "\n"),
		Err:    err,
	}
}

// scanLinesCR is bufio.ScanLines that also splits on a bare \r.
func scanLinesCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
