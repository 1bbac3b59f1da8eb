package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mdexport/mdexport/cmd/util"
	"github.com/mdexport/mdexport/pkg/config"
	"github.com/mdexport/mdexport/pkg/errors"
)

// Mocked for unit testing.
var (
	stdout      io.Writer = os.Stdout
	parseConfig           = config.Parse
	writeConfig           = config.Write
	stat                  = os.Stat
	abs                   = filepath.Abs
)

// New creates a new `config` command.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage directory mappings and converter settings",
	}
	cmd.AddCommand(
		newAddCommand(),
		newRemoveCommand(),
		newListCommand(),
	)

	// Setup the commands for changing the converter settings. Both converters
	// take the same flags, so they share an implementation.
	type setterSpec struct {
		use, short string
		settings   func(*config.Config) *config.ConverterSettings
	}

	setters := []setterSpec{
		{
			use:   "set-pandoc",
			short: "Set the pandoc executable path and arguments",
			settings: func(cfg *config.Config) *config.ConverterSettings {
				return &cfg.Pandoc
			},
		},
		{
			use:   "set-typst",
			short: "Set the typst executable path and arguments",
			settings: func(cfg *config.Config) *config.ConverterSettings {
				return &cfg.Typst
			},
		},
	}
	for _, setter := range setters {
		setter := setter
		var path, args string
		setterCmd := &cobra.Command{
			Use:   setter.use,
			Short: setter.short,
			Run: func(cmd *cobra.Command, _ []string) {
				setPath := cmd.Flags().Changed("path")
				setArgs := cmd.Flags().Changed("args")
				err := updateConverter(setter.settings,
					path, setPath, args, setArgs)
				if err != nil {
					util.HandleFatalError(err)
				}
			},
		}
		setterCmd.Flags().StringVar(&path, "path", "",
			"The converter executable. Defaults to looking up the command "+
				"name on the PATH.")
		setterCmd.Flags().StringVar(&args, "args", "",
			"Extra arguments passed on every invocation, as a single "+
				"shell-quoted string.")
		cmd.AddCommand(setterCmd)
	}

	return cmd
}

func newAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add INPUT OUTPUT",
		Short: "Add a directory mapping to synchronize",
		Args:  cobra.ExactArgs(2),
		Run: func(_ *cobra.Command, args []string) {
			if err := addMapping(args[0], args[1]); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
}

func newRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove INPUT",
		Short: "Remove the directory mapping for an input directory",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			if err := removeMapping(args[0]); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the configured mappings and converter settings",
		Run: func(_ *cobra.Command, _ []string) {
			if err := list(); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
}

func addMapping(input, output string) error {
	input, err := abs(input)
	if err != nil {
		return errors.WithContext(err, "resolve input path")
	}
	output, err = abs(output)
	if err != nil {
		return errors.WithContext(err, "resolve output path")
	}

	fi, err := stat(input)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewFriendlyError(
				"The input directory %q does not exist.", input)
		}
		return errors.WithContext(err, "stat input path")
	}
	if !fi.IsDir() {
		return errors.NewFriendlyError(
			"The input path %q is not a directory.", input)
	}

	cfg, err := parseConfig()
	if err != nil {
		return errors.WithContext(err, "parse config")
	}

	cfg.AddMapping(input, output)
	if err := writeConfig(cfg); err != nil {
		return errors.WithContext(err, "write config")
	}

	fmt.Fprintf(stdout, "Added mapping %s -> %s\n", input, output)
	return nil
}

func removeMapping(input string) error {
	input, err := abs(input)
	if err != nil {
		return errors.WithContext(err, "resolve input path")
	}

	cfg, err := parseConfig()
	if err != nil {
		return errors.WithContext(err, "parse config")
	}

	if !cfg.RemoveMapping(input) {
		return errors.NewFriendlyError(
			"There is no mapping for the input directory %q.\n"+
				"Use `mdexport config list` to see the configured mappings.",
			input)
	}

	if err := writeConfig(cfg); err != nil {
		return errors.WithContext(err, "write config")
	}

	fmt.Fprintf(stdout, "Removed mapping for %s\n", input)
	return nil
}

func list() error {
	cfg, err := parseConfig()
	if err != nil {
		return errors.WithContext(err, "parse config")
	}

	if len(cfg.Mappings) == 0 {
		fmt.Fprintln(stdout, "No directory mappings configured.")
	} else {
		fmt.Fprintln(stdout, "Mappings:")
		for _, mapping := range cfg.Mappings {
			fmt.Fprintf(stdout, "  %s -> %s\n", mapping.Input, mapping.Output)
		}
	}

	fmt.Fprintln(stdout, "\nConverters:")
	printSettings("pandoc", cfg.Pandoc)
	printSettings("typst", cfg.Typst)
	return nil
}

func printSettings(name string, settings config.ConverterSettings) {
	path := settings.Path
	if path == "" {
		path = fmt.Sprintf("%s (from PATH)", name)
	}
	fmt.Fprintf(stdout, "  %s: path=%s", name, path)
	if settings.Args != "" {
		fmt.Fprintf(stdout, " args=%q", settings.Args)
	}
	fmt.Fprintln(stdout)
}

func updateConverter(settings func(*config.Config) *config.ConverterSettings,
	path string, setPath bool, args string, setArgs bool) error {

	if !setPath && !setArgs {
		return errors.NewFriendlyError(
			"Nothing to change. Provide --path, --args, or both.")
	}

	cfg, err := parseConfig()
	if err != nil {
		return errors.WithContext(err, "parse config")
	}

	target := settings(&cfg)
	if setPath {
		target.Path = path
	}
	if setArgs {
		target.Args = args
	}

	if err := writeConfig(cfg); err != nil {
		return errors.WithContext(err, "write config")
	}

	fmt.Fprintln(stdout, "Updated converter settings.")
	return nil
}
