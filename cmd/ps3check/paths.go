package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/backmassage/ps3check/internal/config"
)

var errOutputInsideInput = errors.New("output directory must not be inside input directory")

// preparePaths resolves and validates the run's folders: input must be an
// existing directory, and an output folder used by a conversion or a dry run
// must not be inside it. The output folder is only created for real
// conversions, so a dry run reports the same path errors without writing.
func preparePaths(cfg *config.Config) error {
	inputAbs, err := absPath(cfg.InputDir)
	if err != nil {
		return fmt.Errorf("cannot resolve input path %s: %w", cfg.InputDir, err)
	}
	if fi, err := os.Stat(inputAbs); err != nil || !fi.IsDir() {
		return fmt.Errorf("input is not a directory: %s", cfg.InputDir)
	}
	if cfg.OutputDir == "" || !(cfg.Convert || cfg.DryRun) {
		return nil
	}

	if !cfg.DryRun {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return fmt.Errorf("cannot create output directory %s: %w", cfg.OutputDir, err)
		}
	}
	outputAbs, err := absPath(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("cannot resolve output path %s: %w", cfg.OutputDir, err)
	}
	if err := cfg.ValidatePaths(inputAbs, outputAbs); err != nil {
		return fmt.Errorf("%w: %s", errOutputInsideInput, cfg.OutputDir)
	}
	return nil
}

// absPath returns the absolute, symlink-resolved path for safe comparison
// of input vs output directory hierarchies. Missing trailing components
// (an output folder a dry run has not created) are kept as given below
// their deepest existing ancestor.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	var missing []string
	for {
		resolved, err := filepath.EvalSymlinks(abs)
		if err == nil {
			return filepath.Join(append([]string{resolved}, missing...)...), nil
		}
		parent := filepath.Dir(abs)
		if !errors.Is(err, fs.ErrNotExist) || parent == abs {
			return "", err
		}
		missing = append([]string{filepath.Base(abs)}, missing...)
		abs = parent
	}
}
