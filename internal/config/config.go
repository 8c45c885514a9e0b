// SPDX-License-Identifier: MPL-2.0

package config

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/queryforge/queryforge/internal/issue"
	"github.com/queryforge/queryforge/pkg/cueutil"
)

const (
	// AppName is the application name.
	AppName = "queryforge"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// SidecarFileName is the project-local override file.
	SidecarFileName = "queryforge.toml"
	// EnvPrefix prefixes environment overrides (QUERYFORGE_OUTPUT_KIND).
	EnvPrefix = "QUERYFORGE"

	schemaPath = "#Config"
)

//go:embed config_schema.cue
var configSchema []byte

// LoadResult is a loaded configuration and the files it came from, lowest
// precedence first.
type LoadResult struct {
	Config *Config
	Files  []string
}

// ConfigDir returns the queryforge configuration directory: %APPDATA% on
// Windows, ~/Library/Application Support on macOS, $XDG_CONFIG_HOME
// (defaulting to ~/.config) elsewhere.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string
	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(configDir, AppName), nil
}

// Load layers defaults, the config file, the project sidecar and the
// environment into a validated Config.
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	res := &LoadResult{}

	cfgPath, err := resolveConfigPath(opts)
	if err != nil {
		return nil, err
	}
	if cfgPath != "" {
		if err := loadCUEIntoViper(v, cfgPath); err != nil {
			return nil, loadError(cfgPath, err,
				"Check that the file contains valid CUE syntax",
				"Verify the configuration values match the expected schema",
				"Run 'queryforge config show' to see the default configuration")
		}
		res.Files = append(res.Files, cfgPath)
	}

	if opts.ProjectDir != "" {
		sidecar := filepath.Join(opts.ProjectDir, SidecarFileName)
		if fileExists(sidecar) {
			if err := loadTOMLIntoViper(v, sidecar); err != nil {
				return nil, loadError(sidecar, err,
					"Check that the file contains valid TOML",
					"Use the same keys as the CUE config file ('queryforge config show --format toml')")
			}
			res.Files = append(res.Files, sidecar)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithSuggestion("Check QUERYFORGE_* environment variables for invalid values").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}
	res.Config = &cfg
	return res, nil
}

func loadError(path string, err error, suggestions ...string) error {
	return issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path).
		WithSuggestions(suggestions...).
		WithIssue(issue.ConfigLoadFailedId).
		Wrap(err).
		BuildError()
}

// resolveConfigPath returns the config file to load, or "" when none
// exists. An explicit path must exist.
func resolveConfigPath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Run 'queryforge config init' to create a config file").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir := opts.ConfigDirPath
	if cfgDir == "" {
		var err error
		if cfgDir, err = ConfigDir(); err != nil {
			return "", err
		}
	}
	path := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if fileExists(path) {
		return path, nil
	}
	return "", nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("output_kind", d.OutputKind)
	v.SetDefault("allow_unsafe_code", d.AllowUnsafeCode)
	v.SetDefault("dump_helper_package", d.DumpHelperPackage)
	v.SetDefault("overwrite", d.Overwrite)
	v.SetDefault("package_sources", d.PackageSources)
	v.SetDefault("target_framework", d.TargetFramework)
	v.SetDefault("env_file", d.EnvFile)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("tools.restore", d.Tools.Restore)
	v.SetDefault("tools.source_flag", d.Tools.SourceFlag)
	v.SetDefault("tools.build", d.Tools.Build)
	v.SetDefault("tools.build_flags", d.Tools.BuildFlags)
	v.SetDefault("tools.publish", d.Tools.Publish)
}

// loadCUEIntoViper validates a CUE file against #Config and merges it into
// Viper. Concreteness is not required because every field is optional.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return mergeValidated(v, data, path)
}

// loadTOMLIntoViper decodes a TOML sidecar, validates it against the same
// schema as the CUE config and merges it into Viper.
func loadTOMLIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", SidecarFileName, err)
	}
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	// JSON is valid CUE, so the sidecar goes through the same schema.
	asJSON, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return mergeValidated(v, asJSON, path)
}

func mergeValidated(v *viper.Viper, data []byte, path string) error {
	res, err := cueutil.ParseAndDecode[map[string]any](configSchema, data, schemaPath,
		cueutil.WithConcrete(false), cueutil.WithFilename(path))
	if err != nil {
		return err
	}
	if err := v.MergeConfigMap(*res.Value); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default config file unless one exists and
// returns its path.
func CreateDefaultConfig() (string, error) {
	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if fileExists(cfgPath) {
		return cfgPath, nil
	}
	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return cfgPath, nil
}

// GenerateCUE generates a CUE representation of the configuration.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// queryforge configuration file\n\n")
	fmt.Fprintf(&sb, "output_kind: %q\n", cfg.OutputKind)
	fmt.Fprintf(&sb, "allow_unsafe_code: %v\n", cfg.AllowUnsafeCode)
	if cfg.DumpHelperPackage != "" {
		fmt.Fprintf(&sb, "dump_helper_package: %q\n", cfg.DumpHelperPackage)
	}
	fmt.Fprintf(&sb, "overwrite: %v\n", cfg.Overwrite)
	fmt.Fprintf(&sb, "package_sources: %s\n", cueList(cfg.PackageSources))
	fmt.Fprintf(&sb, "target_framework: %q\n", cfg.TargetFramework)
	if cfg.EnvFile != "" {
		fmt.Fprintf(&sb, "env_file: %q\n", cfg.EnvFile)
	}
	fmt.Fprintf(&sb, "log_level: %q\n", cfg.LogLevel)

	sb.WriteString("\ntools: {\n")
	fmt.Fprintf(&sb, "\trestore: %q\n", cfg.Tools.Restore)
	fmt.Fprintf(&sb, "\tsource_flag: %q\n", cfg.Tools.SourceFlag)
	fmt.Fprintf(&sb, "\tbuild: %q\n", cfg.Tools.Build)
	fmt.Fprintf(&sb, "\tbuild_flags: %s\n", cueList(cfg.Tools.BuildFlags))
	fmt.Fprintf(&sb, "\tpublish: %q\n", cfg.Tools.Publish)
	sb.WriteString("}\n")

	return sb.String()
}

// GenerateTOML renders the configuration in the sidecar format.
func GenerateTOML(cfg *Config) (string, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return "", fmt.Errorf("encode config as TOML: %w", err)
	}
	return buf.String(), nil
}

func cueList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
