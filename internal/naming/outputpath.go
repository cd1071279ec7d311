package naming

import (
	"path/filepath"
	"strings"
)

// OutputExt is the extension of every converted file.
const OutputExt = ".mp4"

// OutputPath builds the converted file path for input.
//
//	outputDir empty: <dir of input>/<stem><suffix>.mp4
//	otherwise:       <outputDir>/<input dir relative to inputRoot>/<stem><suffix>.mp4
//
// An input outside inputRoot is placed directly under outputDir.
func OutputPath(input, inputRoot, outputDir, suffix string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	file := stem + suffix + OutputExt

	if outputDir == "" {
		return filepath.Join(filepath.Dir(input), file)
	}

	rel, err := filepath.Rel(inputRoot, filepath.Dir(input))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = "."
	}
	return filepath.Join(outputDir, rel, file)
}
