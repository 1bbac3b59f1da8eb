package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"

	"github.com/mdexport/mdexport/pkg/errors"
)

const (
	// ConfigPath is the default path to the mdexport configuration file.
	ConfigPath = "~/.config/mdexport/config.yaml"

	// InitialConfigVersion is the first version of the mdexport config.
	// Config files that do not specify a version default to this version.
	InitialConfigVersion = "v1alpha1"

	// SupportedConfigVersion is the config version supported by the current
	// mdexport binary.
	SupportedConfigVersion = "v1alpha1"
)

// parseConfigErrTemplate is a template for when the CLI fails to parse the
// yaml configuration file. This can happen for a multitude of reasons,
// including extraneous fields and incorrect field types. However, the yaml
// library constructs errors in a way that loses context, and so we can only
// pass the error message on.
const parseConfigErrTemplate = "Configuration file could not be parsed. " +
	"Please review %q.\n" +
	"Common pitfalls include:\n" +
	" - Using the wrong types for fields\n" +
	" - Having extra fields inside the config file\n\n" +
	"For reference, here is the error from the parser:\n" +
	"%s"

// Config is the on-disk configuration for mdexport. It holds the directory
// mappings to synchronize and the settings for each converter.
type Config struct {
	Version  string            `json:"version,omitempty"`
	Mappings []Mapping         `json:"mappings,omitempty"`
	Pandoc   ConverterSettings `json:"pandoc,omitempty"`
	Typst    ConverterSettings `json:"typst,omitempty"`
}

// Mapping is one (input root, output root) pair to synchronize. Mappings are
// identified by their input root -- there can't be two mappings from the
// same input directory.
type Mapping struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// ConverterSettings configures how one converter is invoked. Path overrides
// the default command name, and Args is a raw argument string that's split
// with shell word rules before each invocation.
type ConverterSettings struct {
	Path string `json:"path,omitempty"`
	Args string `json:"args,omitempty"`
}

func (c Config) getVersion() string {
	return c.Version
}

// homedirExpand will be overridden in mock tests.
var homedirExpand = homedir.Expand

// GetConfigPath returns the expanded path to the mdexport configuration, so
// it can be directly passed to file operations.
func GetConfigPath() (string, error) {
	return homedirExpand(ConfigPath)
}

// Parse reads the configuration from the default path. A missing file isn't
// an error -- it parses as an empty configuration so that first runs work
// before `config add` has ever been called.
func Parse() (Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return Config{}, errors.WithContext(err, "expand config path")
	}

	config := Config{Version: InitialConfigVersion}
	if err := parseConfig(path, &config, SupportedConfigVersion); err != nil {
		if _, ok := err.(errors.FileNotFound); ok {
			return Config{Version: InitialConfigVersion}, nil
		}
		return Config{}, errors.WithContext(err, "parse")
	}

	// Expand ~'s in the mapping paths so that the rest of the code can treat
	// them as plain absolute paths.
	var expanded []Mapping
	for _, mapping := range config.Mappings {
		input, err := homedir.Expand(mapping.Input)
		if err != nil {
			return Config{}, errors.WithContext(err, "expand input path")
		}
		output, err := homedir.Expand(mapping.Output)
		if err != nil {
			return Config{}, errors.WithContext(err, "expand output path")
		}

		expanded = append(expanded, Mapping{
			Input:  filepath.Clean(input),
			Output: filepath.Clean(output),
		})
	}
	config.Mappings = expanded

	return config, nil
}

// Write persists the configuration to the default path, creating the parent
// directory if needed.
func Write(cfg Config) error {
	cfg.Version = SupportedConfigVersion
	path, err := GetConfigPath()
	if err != nil {
		return errors.WithContext(err, "expand config path")
	}

	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WithContext(err, "marshal")
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WithContext(err, "create config directory")
	}

	if err := afero.WriteFile(fs, path, yamlBytes, 0644); err != nil {
		return errors.WithContext(err, "write")
	}
	return nil
}

// AddMapping adds a mapping from `input` to `output`. If a mapping for the
// same input root already exists, it's replaced in place so that the mapping
// keeps its position in the sync order.
func (c *Config) AddMapping(input, output string) {
	for i, mapping := range c.Mappings {
		if mapping.Input == input {
			c.Mappings[i].Output = output
			return
		}
	}
	c.Mappings = append(c.Mappings, Mapping{Input: input, Output: output})
}

// RemoveMapping removes the mapping for `input`. It returns whether a
// mapping existed.
func (c *Config) RemoveMapping(input string) bool {
	for i, mapping := range c.Mappings {
		if mapping.Input == input {
			c.Mappings = append(c.Mappings[:i], c.Mappings[i+1:]...)
			return true
		}
	}
	return false
}

type configInterface interface {
	getVersion() string
}

type incompatibleVersionError struct {
	path, exp, actual string
}

func (err incompatibleVersionError) Error() string {
	return err.FriendlyMessage()
}

func (err incompatibleVersionError) FriendlyMessage() string {
	return fmt.Sprintf("The configuration file %q is incompatible "+
		"with this version of mdexport.\n"+
		"Expected version %q, but got %q.", err.path, err.exp, err.actual)
}

func parseConfig(path string, config configInterface, expVersion string) error {
	configBytes, err := afero.ReadFile(fs, path)
	if err != nil {
		if isPathNotFoundError(err) {
			return errors.FileNotFound{Path: path}
		}
		return errors.WithContext(err, "read file")
	}

	err = yaml.Unmarshal(configBytes, config)
	if err != nil {
		return errors.NewFriendlyError(parseConfigErrTemplate, path, err)
	}

	if config.getVersion() != expVersion {
		return incompatibleVersionError{path, expVersion, config.getVersion()}
	}

	// Do a strict unmarshal to check for any extra fields. We do a non-strict
	// unmarshal first so that we can catch version errors before erroring on
	// extra fields.
	err = yaml.UnmarshalStrict(configBytes, config, yaml.DisallowUnknownFields)
	if err != nil {
		return errors.NewFriendlyError(parseConfigErrTemplate, path, err)
	}
	return nil
}

func isPathNotFoundError(err error) bool {
	if fileErr, ok := err.(*os.PathError); ok && os.IsNotExist(fileErr.Err) {
		return true
	}
	return false
}
