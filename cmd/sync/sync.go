package sync

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mdexport/mdexport/cmd/util"
	"github.com/mdexport/mdexport/pkg/config"
	"github.com/mdexport/mdexport/pkg/converter"
	"github.com/mdexport/mdexport/pkg/errors"
	"github.com/mdexport/mdexport/pkg/fswatch"
	"github.com/mdexport/mdexport/pkg/sync"
)

// quietPeriod is how long the input trees must stay quiet in watch mode
// before a re-sync starts. Editors write several files per save, so reacting
// to the first event would sync against a half-written tree.
const quietPeriod = 500 * time.Millisecond

// Mocked for unit testing.
var (
	stdout      io.Writer = os.Stdout
	parseConfig           = config.Parse
	stat                  = os.Stat
)

// New creates a new `sync` command.
func New() *cobra.Command {
	var converterName string
	var watch bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize the configured directory mappings",
		Long: "Synchronize each configured input directory into its output " +
			"directory.\nMarkdown files are converted to PDF, other files are " +
			"copied verbatim, and\nstale output entries are offered for deletion.",
		Run: func(_ *cobra.Command, _ []string) {
			if err := run(converterName, watch); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().StringVar(&converterName, "converter", string(converter.Pandoc),
		fmt.Sprintf("The Markdown converter to use (%q or %q).",
			converter.Pandoc, converter.Typst))
	cmd.Flags().BoolVar(&watch, "watch", false,
		"Keep running and re-sync whenever an input directory changes.")
	return cmd
}

func run(converterName string, watch bool) error {
	kind, err := converter.ParseKind(converterName)
	if err != nil {
		return err
	}

	cfg, err := parseConfig()
	if err != nil {
		return errors.WithContext(err, "parse config")
	}

	conv, err := converter.New(kind, settingsFor(kind, cfg))
	if err != nil {
		return errors.WithContext(err, "build converter")
	}

	syncer := sync.New(conv, sync.NewTerminalPrompter())
	if err := syncer.Run(cfg.Mappings); err != nil {
		return err
	}

	if !watch {
		return nil
	}
	return watchLoop(conv, cfg.Mappings)
}

func settingsFor(kind converter.Kind, cfg config.Config) config.ConverterSettings {
	if kind == converter.Typst {
		return cfg.Typst
	}
	return cfg.Pandoc
}

// watchLoop re-runs the sync whenever one of the input trees changes. Watch
// runs are unattended, so stale entries are never deleted -- they're skipped
// until the next interactive sync.
func watchLoop(conv converter.Converter, mappings []config.Mapping) error {
	var roots []string
	for _, mapping := range mappings {
		if _, err := stat(mapping.Input); err != nil {
			log.WithField("input", mapping.Input).Debug(
				"Not watching missing input directory")
			continue
		}
		roots = append(roots, mapping.Input)
	}
	if len(roots) == 0 {
		return errors.NewFriendlyError(
			"None of the configured input directories exist, so there is " +
				"nothing to watch.")
	}

	updates, err := fswatch.Watch(roots)
	if err != nil {
		return errors.WithContext(err, "watch input directories")
	}

	fmt.Fprintln(stdout, "\nWatching for changes. Press Ctrl-C to stop.")

	syncer := sync.New(conv, sync.SkipAllPrompter{})
	for range fswatch.Debounce(updates, clockwork.NewRealClock(), quietPeriod) {
		log.Debug("Input changed, re-syncing")
		if err := syncer.Run(mappings); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "\nWatching for changes. Press Ctrl-C to stop.")
	}
	return nil
}
