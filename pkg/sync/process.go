package sync

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/mdexport/mdexport/pkg/errors"
	"github.com/spf13/afero"
)

// Counters aggregates the per-file outcomes of one mapping's processing
// phase. They're the only feedback the phase produces -- no per-file failure
// stops the walk.
type Counters struct {
	Converted int
	Copied    int
	Errors    int
}

// processDirectory walks the input tree, mirrors its directory structure
// under the output root, converts Markdown files, and copies everything
// else. Failures on individual files are reported and counted; only walk
// errors (an unreadable input tree) abort the mapping.
func (s Syncer) processDirectory(inputRoot, outputRoot string) (Counters, error) {
	var counters Counters
	err := afero.Walk(fs, inputRoot, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if fi.IsDir() {
			if path == inputRoot {
				return nil
			}

			relativePath, err := filepath.Rel(inputRoot, path)
			if err != nil {
				return errors.WithContext(err, "normalized path")
			}
			return fs.MkdirAll(filepath.Join(outputRoot, relativePath), 0755)
		}

		s.processFile(path, inputRoot, outputRoot, &counters)
		return nil
	})
	if err != nil {
		return counters, err
	}
	return counters, nil
}

// processFile handles a single input file, folding the outcome into
// `counters`. It never returns an error: anything that goes wrong with this
// file is this file's problem alone.
func (s Syncer) processFile(path, inputRoot, outputRoot string, counters *Counters) {
	relativePath, err := filepath.Rel(inputRoot, path)
	if err != nil {
		relativePath = path
	}

	outputPath, err := ExpectedPath(path, inputRoot, outputRoot)
	if err != nil {
		s.reportFileError(relativePath, err, counters)
		return
	}

	// The cleanup phase may have deleted this file's parent directory, so
	// re-create it before writing.
	if err := fs.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		s.reportFileError(relativePath, err, counters)
		return
	}

	if isMarkdown(path) {
		fmt.Fprintf(stdout, "  Converting (%s): %s\n", s.converter.Name(), relativePath)
		if err := s.converter.Convert(path, outputPath); err != nil {
			s.reportFileError(relativePath, err, counters)
			return
		}
		counters.Converted++
		return
	}

	fmt.Fprintf(stdout, "  Copying: %s\n", relativePath)
	if err := copyFile(path, outputPath); err != nil {
		s.reportFileError(relativePath, err, counters)
		return
	}
	counters.Copied++
}

func (s Syncer) reportFileError(relativePath string, err error, counters *Counters) {
	fmt.Fprintf(stdout, "  Error processing %s: %s\n",
		relativePath, errors.GetPrintableMessage(err))
	log.WithError(err).Errorf("Failed to process %q", relativePath)
	counters.Errors++
}

// copyFile copies `src` to `dst`, overwriting any existing file and
// preserving the source's mode and modification time.
func copyFile(src, dst string) error {
	fi, err := fs.Stat(src)
	if err != nil {
		return errors.WithContext(err, "stat source")
	}

	srcFile, err := fs.Open(src)
	if err != nil {
		return errors.WithContext(err, "open source")
	}
	defer srcFile.Close()

	dstFile, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode())
	if err != nil {
		return errors.WithContext(err, "open destination")
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return errors.WithContext(err, "copy contents")
	}
	if err := dstFile.Close(); err != nil {
		return errors.WithContext(err, "close destination")
	}

	if err := fs.Chmod(dst, fi.Mode()); err != nil {
		return errors.WithContext(err, "preserve mode")
	}
	if err := fs.Chtimes(dst, fi.ModTime(), fi.ModTime()); err != nil {
		return errors.WithContext(err, "preserve modtime")
	}
	return nil
}
