// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for queryforge.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/queryforge/queryforge/internal/config"
	"github.com/queryforge/queryforge/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	verbose bool
	cfgFile string
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "queryforge",
		Short: "Turn query documents into buildable projects",
		Long: TitleStyle.Render("queryforge") + SubtitleStyle.Render(" - turn query documents into buildable projects") + `

queryforge reads a .linq query document (an XML header followed by C# or
F# code) and writes a standalone project next to it: a source file, an
MSBuild project file and, when the query uses packages, a project.json
manifest. It then restores packages, builds the project and, for
libraries, publishes it.

` + SubtitleStyle.Render("Examples:") + `
  queryforge convert report.linq              Build an executable
  queryforge convert report.linq --kind Library
  queryforge plan report.linq --format yaml   Show what would be generated
  queryforge config show                      Show the effective configuration`,
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging and full error chains")
	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/queryforge/config.cue)")

	root.AddCommand(newConvertCommand(opts))
	root.AddCommand(newPlanCommand(opts))
	root.AddCommand(newConfigCommand(opts))
	root.AddCommand(newWatchCommand(opts))
	root.AddCommand(newVersionCommand())
	root.AddCommand(newCompletionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the queryforge version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "queryforge "+getVersionString())
		},
	}
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		newRootCommand(),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// loadConfig layers the configuration for a document in projectDir.
func (o *globalOptions) loadConfig(ctx context.Context, projectDir string) (*config.Config, error) {
	return config.NewProvider().Load(ctx, config.LoadOptions{
		ConfigFilePath: o.cfgFile,
		ProjectDir:     projectDir,
	})
}

// newLogger returns the CLI logger. --verbose forces debug level.
func (o *globalOptions) newLogger(w io.Writer, cfg *config.Config) *log.Logger {
	level := cfg.Level()
	if o.verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "queryforge",
		Level:  level,
	})
}

// formatErrorForDisplay formats an error for user display, using the
// actionable form when available.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
