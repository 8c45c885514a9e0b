// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/queryforge/queryforge/internal/config"
	"github.com/queryforge/queryforge/internal/pipeline"
	"github.com/queryforge/queryforge/internal/toolchain"
	"github.com/queryforge/queryforge/pkg/querydoc"
)

type convertOptions struct {
	synthFlags
	outDir    string
	overwrite bool
	noBuild   bool
}

func newConvertCommand(global *globalOptions) *cobra.Command {
	opts := &convertOptions{}
	cmd := &cobra.Command{
		Use:   "convert <document>",
		Short: "Convert a query document into a project and build it",
		Long: `Convert a query document into a project and build it.

The project is written to a directory named after the document (or -o).
Packages are restored, the project is built and, for libraries, published
when a publish command is configured.`,
		Example: `  queryforge convert report.linq
  queryforge convert report.linq --kind Library -o build/report
  queryforge convert report.linq --source https://api.nuget.org/v3/index.json --no-build`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.Context(), cmd, global, opts, args[0])
		},
	}
	opts.register(cmd.Flags())
	cmd.Flags().StringVarP(&opts.outDir, "output", "o", "", "output directory (default: <document dir>/<project name>)")
	cmd.Flags().BoolVar(&opts.overwrite, "overwrite", false, "replace existing generated files")
	cmd.Flags().BoolVar(&opts.noBuild, "no-build", false, "write the project files without running any tool")
	return cmd
}

func runConvert(ctx context.Context, cmd *cobra.Command, global *globalOptions, opts *convertOptions, docPath string) error {
	const operation = "convert query document"

	doc, err := querydoc.ReadFile(docPath)
	if err != nil {
		return renderFailure(cmd, err, "read query document", docPath, global.verbose)
	}
	projectDir := filepath.Dir(docPath)

	cfg, err := global.loadConfig(ctx, projectDir)
	if err != nil {
		return renderFailure(cmd, err, "load configuration", "", global.verbose)
	}
	opts.apply(cmd, cfg)
	if opts.overwrite {
		cfg.Overwrite = true
	}
	settings, err := settingsFromConfig(cfg)
	if err != nil {
		return renderFailure(cmd, err, "load configuration", "--kind", global.verbose)
	}
	settings.SkipBuild = opts.noBuild

	logger := global.newLogger(cmd.ErrOrStderr(), cfg)

	env := map[string]string{}
	if cfg.EnvFile != "" {
		if err := toolchain.LoadEnvFile(env, cfg.EnvFile, projectDir); err != nil {
			return renderFailure(cmd, err, "load tool environment", cfg.EnvFile, global.verbose)
		}
	}
	runner := toolchain.ExecRunner{}
	if global.verbose {
		runner.Stream = cmd.ErrOrStderr()
	}
	tc := toolchain.New(toolsFromConfig(cfg),
		toolchain.WithRunner(runner),
		toolchain.WithEnv(env),
		toolchain.WithLogger(logger))

	outDir := opts.outDir
	if outDir == "" {
		outDir = filepath.Join(projectDir, doc.Name)
	}

	report, err := pipeline.New(tc, logger).Run(ctx, doc, outDir, settings)
	if err != nil {
		return renderFailure(cmd, err, operation, docPath, global.verbose)
	}
	printReport(cmd, report, cfg)
	return nil
}

func printReport(cmd *cobra.Command, report *pipeline.Report, cfg *config.Config) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s %s\n", SuccessStyle.Render("✓"), TitleStyle.Render(report.Project.Name),
		SubtitleStyle.Render("("+report.Project.OutputKind.String()+")"))
	for _, name := range report.Written {
		fmt.Fprintf(out, "  wrote    %s\n", PathStyle.Render(filepath.Join(report.OutputDir, name)))
	}
	for _, name := range report.Unresolved {
		fmt.Fprintf(out, "  %s %s not in lock file, left as %q\n", WarningStyle.Render("warning"), name, querydoc.PlaceholderVersion)
	}
	if report.Built {
		fmt.Fprintf(out, "  built    %s\n", PathStyle.Render(report.Artifact))
	}
	if report.Published {
		fmt.Fprintf(out, "  published with %s\n", PathStyle.Render(cfg.Tools.Publish))
	}
}
