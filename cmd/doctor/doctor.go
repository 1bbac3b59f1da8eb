package doctor

import (
	"fmt"
	"io"
	"os"
	"regexp"

	goversion "github.com/hashicorp/go-version"
	"github.com/spf13/cobra"

	"github.com/mdexport/mdexport/cmd/util"
	"github.com/mdexport/mdexport/pkg/config"
	"github.com/mdexport/mdexport/pkg/converter"
	"github.com/mdexport/mdexport/pkg/errors"
)

// minimumVersions is the oldest release of each converter that mdexport is
// known to work with.
var minimumVersions = map[converter.Kind]string{
	converter.Pandoc: "2.0.0",
	converter.Typst:  "0.10.0",
}

// versionRegex extracts the version number from a converter's version banner,
// e.g. "pandoc 3.1.9" or "typst 0.12.0 (abcdef12)".
var versionRegex = regexp.MustCompile(`\d+(\.\d+)+`)

// Mocked for unit testing.
var (
	stdout      io.Writer = os.Stdout
	parseConfig           = config.Parse
)

// New creates a new `doctor` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the configured converters are installed and usable",
		Run: func(_ *cobra.Command, _ []string) {
			if err := run(); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
}

func run() error {
	cfg, err := parseConfig()
	if err != nil {
		return errors.WithContext(err, "parse config")
	}

	// Typst is optional, but without pandoc neither converter works.
	pandocOK := checkConverter(converter.Pandoc, cfg.Pandoc)
	checkConverter(converter.Typst, cfg.Typst)

	if !pandocOK {
		return errors.NewFriendlyError(
			"No usable Markdown converter was found.\n" +
				"Please install pandoc, or point mdexport at it with " +
				"`mdexport config set-pandoc --path /path/to/pandoc`.")
	}
	return nil
}

// checkConverter reports one converter's health and returns whether it's
// usable.
func checkConverter(kind converter.Kind, settings config.ConverterSettings) bool {
	conv, err := converter.New(kind, settings)
	if err != nil {
		fmt.Fprintf(stdout, "%s: broken settings: %s\n",
			kind, errors.GetPrintableMessage(err))
		return false
	}

	if err := conv.CheckInstalled(); err != nil {
		fmt.Fprintf(stdout, "%s: not installed\n", kind)
		return false
	}

	banner, err := conv.Version()
	if err != nil {
		fmt.Fprintf(stdout, "%s: installed, but its version could not be "+
			"determined: %s\n", kind, errors.GetPrintableMessage(err))
		return false
	}

	ok, err := meetsMinimum(kind, banner)
	if err != nil {
		fmt.Fprintf(stdout, "%s: installed (%s), but the version could not "+
			"be parsed\n", kind, banner)
		return false
	}
	if !ok {
		fmt.Fprintf(stdout, "%s: installed (%s), but mdexport requires at "+
			"least version %s\n", kind, banner, minimumVersions[kind])
		return false
	}

	fmt.Fprintf(stdout, "%s: OK (%s)\n", kind, banner)
	return true
}

func meetsMinimum(kind converter.Kind, banner string) (bool, error) {
	match := versionRegex.FindString(banner)
	if match == "" {
		return false, errors.New(
			fmt.Sprintf("no version number in %q", banner))
	}

	actual, err := goversion.NewVersion(match)
	if err != nil {
		return false, errors.WithContext(err, "parse version")
	}

	minimum, err := goversion.NewVersion(minimumVersions[kind])
	if err != nil {
		return false, errors.WithContext(err, "parse minimum version")
	}

	return actual.Compare(minimum) >= 0, nil
}
