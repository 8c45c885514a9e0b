// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/queryforge/queryforge/internal/watch"
)

type watchOptions struct {
	convertOptions
	debounce time.Duration
}

func newWatchCommand(global *globalOptions) *cobra.Command {
	opts := &watchOptions{}
	cmd := &cobra.Command{
		Use:   "watch <document>",
		Short: "Reconvert a query document whenever it changes",
		Long: `Convert a query document, then convert it again every time it is saved.

Generated files are replaced on each run. A failed conversion is reported
and watching continues.`,
		Example: `  queryforge watch report.linq
  queryforge watch report.linq --kind Library --no-build --debounce 1s`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, global, opts, args[0])
		},
	}
	opts.register(cmd.Flags())
	cmd.Flags().StringVarP(&opts.outDir, "output", "o", "", "output directory (default: <document dir>/<project name>)")
	cmd.Flags().BoolVar(&opts.noBuild, "no-build", false, "write the project files without running any tool")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 500*time.Millisecond, "quiet period before reconverting")
	return cmd
}

func runWatch(cmd *cobra.Command, global *globalOptions, opts *watchOptions, docPath string) error {
	opts.overwrite = true
	dir := filepath.Dir(docPath)
	cfg, err := global.loadConfig(cmd.Context(), dir)
	if err != nil {
		return renderFailure(cmd, err, "load configuration", "", global.verbose)
	}
	logger := global.newLogger(cmd.ErrOrStderr(), cfg)

	convert := func(ctx context.Context, _ []string) error {
		return runConvert(ctx, cmd, global, &opts.convertOptions, docPath)
	}

	w, err := watch.New(watch.Config{
		BaseDir:  dir,
		Patterns: []string{watch.LiteralPattern(filepath.Base(docPath))},
		Debounce: opts.debounce,
		OnChange: convert,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	if err := convert(cmd.Context(), nil); err != nil {
		logger.Debug("initial conversion failed", "error", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", TitleStyle.Render("watching"), PathStyle.Render(docPath),
		SubtitleStyle.Render("(Ctrl+C to stop)"))
	if err := w.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", ErrorStyle.Render("Error:"), err)
		return &ExitError{Code: 1, Err: err}
	}
	return nil
}
