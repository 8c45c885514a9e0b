// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/queryforge/queryforge/internal/config"
)

func newConfigCommand(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create queryforge configuration",
		Long: `Inspect and create queryforge configuration.

Settings are layered: built-in defaults, the user config file, a
queryforge.toml next to the document and QUERYFORGE_* environment
variables, each overriding the previous layer.`,
	}
	cmd.AddCommand(newConfigShowCommand(global))
	cmd.AddCommand(newConfigInitCommand())
	return cmd
}

func newConfigShowCommand(global *globalOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := global.loadConfig(cmd.Context(), ".")
			if err != nil {
				return renderFailure(cmd, err, "load configuration", "", global.verbose)
			}
			switch format {
			case "cue":
				fmt.Fprint(cmd.OutOrStdout(), config.GenerateCUE(cfg))
			case "toml":
				out, err := config.GenerateTOML(cfg)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
			default:
				return fmt.Errorf("unknown format %q (valid: cue, toml)", format)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "cue", "output format: cue or toml")
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the default config file if none exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.CreateDefaultConfig()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", SuccessStyle.Render("✓"), PathStyle.Render(path))
			return nil
		},
	}
}
