package sync

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/mdexport/mdexport/pkg/errors"
)

// walkTree recursively walks `root` and returns the relative paths of every
// directory (excluding the root itself) and every file beneath it. A missing
// root isn't an error -- it yields empty sets, which is what a first run
// against a not-yet-created output directory needs.
func walkTree(root string) (dirs, files map[string]bool, err error) {
	dirs, files = map[string]bool{}, map[string]bool{}

	exists, err := afero.DirExists(fs, root)
	if err != nil {
		return nil, nil, errors.WithContext(err, "stat root")
	}
	if !exists {
		return dirs, files, nil
	}

	err = afero.Walk(fs, root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if path == root {
			return nil
		}

		relativePath, err := filepath.Rel(root, path)
		if err != nil {
			// This shouldn't happen because `path` is always a child of `root`.
			return errors.WithContext(err, "normalized path")
		}

		if fi.IsDir() {
			dirs[relativePath] = true
		} else {
			files[relativePath] = true
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return dirs, files, nil
}
