package sync

import (
	"path/filepath"
	"strings"

	"github.com/mdexport/mdexport/pkg/errors"
)

// markdownExt is the extension (compared case-insensitively) that marks a
// file for conversion rather than copying.
const markdownExt = ".md"

// pdfExt is the extension given to converted output files.
const pdfExt = ".pdf"

// ExpectedPath computes where `inputFile` should end up under `outputRoot`.
// The file's path relative to `inputRoot` is re-rooted under `outputRoot`,
// and Markdown files have their extension rewritten to .pdf. It's a pure
// path computation; the only failure mode is `inputFile` not being inside
// `inputRoot`, which indicates a bug in the caller.
func ExpectedPath(inputFile, inputRoot, outputRoot string) (string, error) {
	relativePath, err := filepath.Rel(inputRoot, inputFile)
	if err != nil || strings.HasPrefix(relativePath, "..") {
		if err == nil {
			err = errors.New("path escapes the input root")
		}
		return "", errors.WithContext(err, "normalized path")
	}

	outputPath := filepath.Join(outputRoot, relativePath)
	if isMarkdown(inputFile) {
		outputPath = strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + pdfExt
	}
	return outputPath, nil
}

func isMarkdown(path string) bool {
	return strings.EqualFold(filepath.Ext(path), markdownExt)
}
