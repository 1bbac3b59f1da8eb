package sync

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/mdexport/mdexport/pkg/config"
	"github.com/mdexport/mdexport/pkg/errors"
)

// Converter turns one Markdown file into a PDF. It's satisfied by
// converter.Converter; tests substitute fakes.
type Converter interface {
	// Name returns the converter's user-facing name.
	Name() string

	// CheckInstalled verifies that the converter can be invoked at all.
	CheckInstalled() error

	// Convert produces `output` from `input`, returning an error carrying
	// the process's diagnostic output on failure.
	Convert(input, output string) error
}

// Syncer runs the synchronization for a set of mappings. Construct it with
// New -- there is no package-level instance.
type Syncer struct {
	converter Converter
	prompter  StalePrompter
}

// New returns a Syncer that converts with `converter` and resolves stale
// output entries through `prompter`.
func New(converter Converter, prompter StalePrompter) Syncer {
	return Syncer{converter: converter, prompter: prompter}
}

// Run synchronizes each mapping in order: cleanup of the output tree, then
// the copy/convert pass. The converter is checked once up front -- if it
// isn't usable, the run aborts before any mapping is touched. After that, a
// failure in one mapping doesn't stop the others.
func (s Syncer) Run(mappings []config.Mapping) error {
	if len(mappings) == 0 {
		fmt.Fprintln(stdout, "No directory mappings configured. "+
			"Use `mdexport config add` first.")
		log.Warn("Sync skipped: no mappings configured")
		return nil
	}

	if err := s.converter.CheckInstalled(); err != nil {
		return errors.WithContext(err, "check converter")
	}

	for i, mapping := range mappings {
		fmt.Fprintf(stdout, "\nProcessing mapping %d/%d: %s -> %s\n",
			i+1, len(mappings), mapping.Input, mapping.Output)

		isDir, err := afero.DirExists(fs, mapping.Input)
		if err != nil || !isDir {
			fmt.Fprintf(stdout, "Skipping: input directory %q not found or "+
				"is not a directory.\n", mapping.Input)
			log.WithField("input", mapping.Input).Warn(
				"Skipping mapping: input directory not found")
			continue
		}

		if err := s.syncMapping(mapping); err != nil {
			fmt.Fprintf(stdout, "Error processing mapping %s -> %s: %s\n",
				mapping.Input, mapping.Output, errors.GetPrintableMessage(err))
			log.WithError(err).Errorf("Failed to sync mapping %s -> %s",
				mapping.Input, mapping.Output)
		}
	}

	fmt.Fprintln(stdout, "\nSynchronization complete.")
	return nil
}

func (s Syncer) syncMapping(mapping config.Mapping) error {
	if err := fs.MkdirAll(mapping.Output, 0755); err != nil {
		return errors.WithContext(err, "create output directory")
	}

	deleted, skipped, err := s.cleanOutputDir(mapping.Input, mapping.Output)
	if err != nil {
		return errors.WithContext(err, "clean output directory")
	}
	fmt.Fprintf(stdout, "Cleanup finished for %q. Deleted: %d, Skipped: %d.\n",
		mapping.Output, deleted, skipped)

	counters, err := s.processDirectory(mapping.Input, mapping.Output)
	if err != nil {
		return errors.WithContext(err, "process files")
	}
	fmt.Fprintf(stdout, "Processing finished for %q. Converted: %d, Copied: %d, Errors: %d.\n",
		mapping.Input, counters.Converted, counters.Copied, counters.Errors)
	return nil
}
