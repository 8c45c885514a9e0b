// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/queryforge/queryforge/pkg/querydoc"
)

// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
var ErrInvalidConfig = errors.New("invalid config")

type (
	// Config is the full set of conversion options.
	Config struct {
		OutputKind        string   `mapstructure:"output_kind" toml:"output_kind"`
		AllowUnsafeCode   bool     `mapstructure:"allow_unsafe_code" toml:"allow_unsafe_code"`
		DumpHelperPackage string   `mapstructure:"dump_helper_package" toml:"dump_helper_package"`
		Overwrite         bool     `mapstructure:"overwrite" toml:"overwrite"`
		PackageSources    []string `mapstructure:"package_sources" toml:"package_sources"`
		TargetFramework   string   `mapstructure:"target_framework" toml:"target_framework"`
		EnvFile           string   `mapstructure:"env_file" toml:"env_file"`
		LogLevel          string   `mapstructure:"log_level" toml:"log_level"`
		Tools             Tools    `mapstructure:"tools" toml:"tools"`
	}

	// Tools holds the external tool command lines.
	Tools struct {
		Restore    string   `mapstructure:"restore" toml:"restore"`
		SourceFlag string   `mapstructure:"source_flag" toml:"source_flag"`
		Build      string   `mapstructure:"build" toml:"build"`
		BuildFlags []string `mapstructure:"build_flags" toml:"build_flags"`
		Publish    string   `mapstructure:"publish" toml:"publish"`
	}

	// InvalidConfigError collects field errors found after layering.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		OutputKind:      string(querydoc.OutputExe),
		PackageSources:  []string{},
		TargetFramework: "net46",
		LogLevel:        "info",
		Tools: Tools{
			Restore:    "dotnet restore",
			SourceFlag: "--source",
			Build:      "msbuild",
			BuildFlags: []string{"/nologo", "/verbosity:quiet"},
		},
	}
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return fmt.Sprintf("invalid config: %v", e.FieldErrors[0])
	}
	return fmt.Sprintf("invalid config: %d field error(s): %v", len(e.FieldErrors), errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig followed by the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// Validate checks values that environment variables or flags can set
// without passing through the schema.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.ParsedOutputKind(); err != nil {
		errs = append(errs, err)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.TargetFramework == "" {
		errs = append(errs, errors.New("target_framework must not be empty"))
	}
	if c.Tools.Restore == "" {
		errs = append(errs, errors.New("tools.restore must not be empty"))
	}
	if c.Tools.Build == "" {
		errs = append(errs, errors.New("tools.build must not be empty"))
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// ParsedOutputKind returns OutputKind as a querydoc.OutputKind.
func (c *Config) ParsedOutputKind() (querydoc.OutputKind, error) {
	return querydoc.ParseOutputKind(c.OutputKind)
}

// Level returns the configured log level, defaulting to info.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
