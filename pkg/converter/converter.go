package converter

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/google/shlex"
	log "github.com/sirupsen/logrus"

	"github.com/mdexport/mdexport/pkg/config"
	"github.com/mdexport/mdexport/pkg/errors"
)

// Kind identifies one of the supported external converters. The set is
// closed -- each kind knows its default command name, the shape of its
// command line, and the other programs it needs on the search path.
type Kind string

const (
	// Pandoc converts Markdown straight to PDF.
	Pandoc Kind = "pandoc"

	// Typst renders PDFs with the typst compiler. Its Markdown ingestion
	// runs through a pandoc backend, so pandoc must also be installed even
	// when typst is selected.
	Typst Kind = "typst"
)

// ParseKind converts a user-supplied converter name into a Kind.
func ParseKind(name string) (Kind, error) {
	switch Kind(name) {
	case Pandoc, Typst:
		return Kind(name), nil
	}
	return "", errors.NewFriendlyError(
		"Unknown converter %q. Supported converters are %q and %q.",
		name, Pandoc, Typst)
}

func (k Kind) defaultCommand() string {
	return string(k)
}

// requires returns the commands that must be resolvable on the search path
// in addition to the converter's own executable.
func (k Kind) requires() []string {
	if k == Typst {
		return []string{string(Pandoc)}
	}
	return nil
}

// Converter invokes one external converter process per Markdown file.
type Converter struct {
	kind Kind
	path string
	args []string
}

// New builds a Converter for `kind` from its configured settings. An empty
// settings path falls back to the kind's default command name, and the raw
// argument string is split with shell word rules so quoted arguments with
// spaces survive.
func New(kind Kind, settings config.ConverterSettings) (Converter, error) {
	path := settings.Path
	if path == "" {
		path = kind.defaultCommand()
	}

	args, err := shlex.Split(settings.Args)
	if err != nil {
		return Converter{}, errors.WithContext(err, "split converter args")
	}

	return Converter{kind: kind, path: path, args: args}, nil
}

// Name returns the converter's user-facing name.
func (c Converter) Name() string {
	return string(c.kind)
}

// BuildCommand returns the full argv for converting `input` into `output`.
func (c Converter) BuildCommand(input, output string) []string {
	var argv []string
	switch c.kind {
	case Typst:
		// typst compile [options] <input> <output>
		argv = append(argv, c.path, "compile")
		argv = append(argv, c.args...)
		argv = append(argv, input, output)
	default:
		argv = append(argv, c.path)
		argv = append(argv, c.args...)
		argv = append(argv, "-i", input, "-o", output)
	}
	return argv
}

// Mocked for unit testing.
var (
	lookPath   = exec.LookPath
	runCommand = runCommandImpl
)

// CheckInstalled verifies that the converter (and anything it depends on)
// can actually be invoked. It's called once per sync run, before any mapping
// is touched.
func (c Converter) CheckInstalled() error {
	for _, dep := range c.kind.requires() {
		if _, err := lookPath(dep); err != nil {
			return errors.NewFriendlyError(
				"The %s converter depends on %s, which was not found on your PATH.\n"+
					"Please install %s, or select the %s converter directly.",
				c.kind, dep, dep, Pandoc)
		}
	}

	if _, err := lookPath(c.path); err != nil {
		return errors.NewFriendlyError(
			"The %s executable was not found at %q.\n"+
				"Please install %s, or configure the correct path with "+
				"`mdexport config set-%s --path /path/to/%s`.",
			c.kind, c.path, c.kind, c.kind, c.kind)
	}
	return nil
}

// RunError is returned when the converter process exits non-zero. Output
// holds the diagnostic the process wrote to stderr.
type RunError struct {
	Converter string
	File      string
	Output    string
}

func (err RunError) Error() string {
	return fmt.Sprintf("%s failed for %q: %s", err.Converter, err.File, err.Output)
}

// Convert runs the converter on `input`, expecting it to produce `output`.
// The process is trusted on a zero exit -- the output file isn't verified.
func (c Converter) Convert(input, output string) error {
	argv := c.BuildCommand(input, output)
	log.WithField("command", strings.Join(argv, " ")).Debug("Running converter")

	stdout, stderr, err := runCommand(argv)
	if err != nil {
		diagnostic := strings.TrimSpace(stderr)
		if diagnostic == "" {
			diagnostic = err.Error()
		}
		return RunError{Converter: c.Name(), File: input, Output: diagnostic}
	}

	// Converters tend to print warnings even on success. Keep them out of
	// the user's face, but don't lose them.
	if strings.TrimSpace(stderr) != "" {
		log.Debugf("%s stderr for %s:\n%s", c.kind, input, strings.TrimSpace(stderr))
	}
	if strings.TrimSpace(stdout) != "" {
		log.Debugf("%s stdout for %s:\n%s", c.kind, input, strings.TrimSpace(stdout))
	}
	return nil
}

// Version runs the converter's --version command and returns the first line
// of its output.
func (c Converter) Version() (string, error) {
	stdout, _, err := runCommand([]string{c.path, "--version"})
	if err != nil {
		return "", errors.WithContext(err, "run version command")
	}

	line := strings.SplitN(strings.TrimSpace(stdout), "\n", 2)[0]
	return strings.TrimSpace(line), nil
}

func runCommandImpl(argv []string) (stdout, stderr string, err error) {
	cmd := exec.Command(argv[0], argv[1:]...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err = cmd.Run()
	return stdoutBuf.String(), stderrBuf.String(), err
}
