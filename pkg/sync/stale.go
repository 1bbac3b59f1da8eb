package sync

import (
	"fmt"
	"path/filepath"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/mdexport/mdexport/pkg/errors"
)

// cleanState is the resolver's sticky-decision state. It starts at
// statePrompting and can only move to one of the forced states, where it
// stays for the remainder of the cleanup pass.
type cleanState int

const (
	statePrompting cleanState = iota
	stateForceDelete
	stateForceSkip
)

// cleanOutputDir finds stale items under `outputRoot` and resolves each one
// through the prompter. It returns how many items were deleted and how many
// were kept. Items whose deletion failed count as neither.
func (s Syncer) cleanOutputDir(inputRoot, outputRoot string) (deleted, skipped int, err error) {
	stale, err := findStale(inputRoot, outputRoot)
	if err != nil {
		return 0, 0, err
	}
	if len(stale) == 0 {
		log.WithField("output", outputRoot).Debug("No stale items in output directory")
		return 0, 0, nil
	}

	fmt.Fprintf(stdout, "Found %d item(s) in %q that are not in the source %q.\n",
		len(stale), outputRoot, inputRoot)

	state := statePrompting
	for _, item := range stale {
		if state == stateForceSkip {
			skipped++
			continue
		}

		answer := AnswerDelete
		if state == statePrompting {
			answer, err = s.prompter.AskDelete(item)
			if err != nil {
				return deleted, skipped, errors.WithContext(err, "read response")
			}
		}

		switch answer {
		case AnswerSkipAll:
			state = stateForceSkip
			skipped++
			continue
		case AnswerSkip:
			skipped++
			continue
		case AnswerDeleteAll:
			state = stateForceDelete
		}

		if err := deleteStale(outputRoot, item); err != nil {
			fmt.Fprintf(stdout, "  Error deleting %s %q: %s\n",
				item.kind(), item.RelPath, err)
			log.WithError(err).Errorf("Failed to delete stale %s %q",
				item.kind(), item.RelPath)
			continue
		}

		fmt.Fprintf(stdout, "  Deleted %s: %s\n", item.kind(), item.RelPath)
		deleted++
	}

	return deleted, skipped, nil
}

// findStale diffs the actual output tree against the output tree expected
// from the input. The result is ordered for prompting: files first, then
// directories, each group lexicographic. Deleting in this order drains the
// individual stale files before any directory is removed as a whole subtree.
func findStale(inputRoot, outputRoot string) ([]StaleItem, error) {
	expected, err := expectedOutputSet(inputRoot, outputRoot)
	if err != nil {
		return nil, errors.WithContext(err, "scan input")
	}

	actualDirs, actualFiles, err := walkTree(outputRoot)
	if err != nil {
		return nil, errors.WithContext(err, "scan output")
	}

	var stale []StaleItem
	for path := range actualFiles {
		if !expected[path] {
			stale = append(stale, StaleItem{RelPath: path})
		}
	}
	for path := range actualDirs {
		if !expected[path] {
			stale = append(stale, StaleItem{RelPath: path, IsDir: true})
		}
	}

	sort.Slice(stale, func(i, j int) bool {
		if stale[i].IsDir != stale[j].IsDir {
			return !stale[i].IsDir
		}
		return stale[i].RelPath < stale[j].RelPath
	})
	return stale, nil
}

// expectedOutputSet computes every output-root-relative path that the input
// tree accounts for: each directory (except the root), and each file after
// extension mapping.
func expectedOutputSet(inputRoot, outputRoot string) (map[string]bool, error) {
	inputDirs, inputFiles, err := walkTree(inputRoot)
	if err != nil {
		return nil, err
	}

	expected := map[string]bool{}
	for dir := range inputDirs {
		expected[dir] = true
	}
	for file := range inputFiles {
		outputPath, err := ExpectedPath(
			filepath.Join(inputRoot, file), inputRoot, outputRoot)
		if err != nil {
			return nil, err
		}

		relativePath, err := filepath.Rel(outputRoot, outputPath)
		if err != nil {
			return nil, errors.WithContext(err, "normalized path")
		}
		expected[relativePath] = true
	}
	return expected, nil
}

func deleteStale(outputRoot string, item StaleItem) error {
	path := filepath.Join(outputRoot, item.RelPath)
	if item.IsDir {
		return fs.RemoveAll(path)
	}
	return fs.Remove(path)
}
