package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/backmassage/ps3check/internal/config"
	"github.com/backmassage/ps3check/internal/pipeline"
)

var reANSI = regexp.MustCompile("\x1b\\[[0-9;]*m")

// Write renders res in the given format. Text reports carry the summary and
// the detail table without color codes; JSON and YAML carry the full Result.
func Write(w io.Writer, format config.ReportFormat, res *pipeline.Result) error {
	switch format {
	case config.ReportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case config.ReportYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	case config.ReportText, "":
		var buf bytes.Buffer
		WriteSummary(&buf, res)
		buf.WriteString("\n")
		WriteDetails(&buf, res)
		_, err := w.Write(reANSI.ReplaceAll(buf.Bytes(), nil))
		return err
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// Export writes the report to path, replacing any existing file.
func Export(path string, format config.ReportFormat, res *pipeline.Result) error {
	var buf bytes.Buffer
	if err := Write(&buf, format, res); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
