package fswatch

import (
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/mdexport/mdexport/pkg/errors"
)

var fs = afero.NewOsFs()

// Watch watches for changes anywhere under the given roots. It sends an
// event on the returned channel whenever a file within the watched trees
// changes. The watcher lives for the remainder of the process.
func Watch(roots []string) (chan struct{}, error) {
	pathsToWatch, err := getPathsToWatch(roots)
	if err != nil {
		return nil, errors.WithContext(err, "get paths")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WithContext(err, "create watcher")
	}

	for _, path := range pathsToWatch {
		if err := watcher.Add(path); err != nil {
			// Close the watcher so that we release the file handles for the
			// previously added paths.
			if err := watcher.Close(); err != nil {
				log.WithError(err).Warn("Failed to close file watcher")
			}

			return nil, errors.WithContext(err, fmt.Sprintf("watch %q", path))
		}
	}
	return combineUpdates(watcher.Events), nil
}

func combineUpdates(updates <-chan fsnotify.Event) chan struct{} {
	combined := make(chan struct{}, 1)
	go func() {
		for range updates {
			select {
			case combined <- struct{}{}:
			default:
			}
		}
	}()
	return combined
}

// getPathsToWatch expands each root into itself plus every directory and
// file beneath it, because fsnotify doesn't watch directories recursively.
func getPathsToWatch(roots []string) (paths []string, err error) {
	for _, root := range roots {
		fi, err := fs.Stat(root)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.FileNotFound{Path: root}
			}
			return nil, errors.WithContext(err, "stat")
		}
		if !fi.IsDir() {
			return nil, errors.New(fmt.Sprintf("%q is not a directory", root))
		}

		paths = append(paths, root)
		children, err := getChildren(root)
		if err != nil {
			return nil, errors.WithContext(err, "get subdirs")
		}
		paths = append(paths, children...)
	}

	return paths, nil
}

func getChildren(dir string) (paths []string, err error) {
	err = afero.Walk(fs, dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return errors.WithContext(err, "walk error")
		}

		if path == dir {
			return nil
		}

		paths = append(paths, path)
		return nil
	})
	return paths, err
}

// Debounce coalesces bursts of events: after an event arrives, it waits
// until `quiet` passes with no further events before forwarding one. Saving
// a directory in most editors produces several filesystem events in quick
// succession; without the quiet period every save would trigger several
// syncs.
func Debounce(in <-chan struct{}, clock clockwork.Clock, quiet time.Duration) <-chan struct{} {
	out := make(chan struct{})
	go func() {
		for range in {
			timer := clock.After(quiet)
		settle:
			for {
				select {
				case <-in:
					timer = clock.After(quiet)
				case <-timer:
					break settle
				}
			}
			out <- struct{}{}
		}
	}()
	return out
}
