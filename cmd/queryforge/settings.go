// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/queryforge/queryforge/internal/config"
	"github.com/queryforge/queryforge/internal/pipeline"
	"github.com/queryforge/queryforge/internal/toolchain"
)

// synthFlags are the flags that change what is generated. They are shared
// by convert and plan.
type synthFlags struct {
	kind       string
	unsafe     bool
	dumpHelper string
	sources    []string
}

func (f *synthFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.kind, "kind", "", "output kind: Library, Exe or WinExe (default from config)")
	fs.BoolVar(&f.unsafe, "unsafe", false, "allow unsafe code")
	fs.StringVar(&f.dumpHelper, "dump-helper", "", "package providing the Dump routine")
	fs.StringArrayVar(&f.sources, "source", nil, "package source URI for restore (repeatable)")
}

// apply overrides cfg with the flags the user set explicitly.
func (f *synthFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("kind") {
		cfg.OutputKind = f.kind
	}
	if flags.Changed("unsafe") {
		cfg.AllowUnsafeCode = f.unsafe
	}
	if flags.Changed("dump-helper") {
		cfg.DumpHelperPackage = f.dumpHelper
	}
	if flags.Changed("source") {
		cfg.PackageSources = f.sources
	}
}

// settingsFromConfig converts a validated Config to pipeline settings.
func settingsFromConfig(cfg *config.Config) (pipeline.Settings, error) {
	kind, err := cfg.ParsedOutputKind()
	if err != nil {
		return pipeline.Settings{}, err
	}
	return pipeline.Settings{
		OutputKind:      kind,
		AllowUnsafe:     cfg.AllowUnsafeCode,
		DumpHelper:      cfg.DumpHelperPackage,
		Overwrite:       cfg.Overwrite,
		PackageSources:  cfg.PackageSources,
		TargetFramework: cfg.TargetFramework,
	}, nil
}

func toolsFromConfig(cfg *config.Config) toolchain.Tools {
	return toolchain.Tools{
		Restore:    cfg.Tools.Restore,
		SourceFlag: cfg.Tools.SourceFlag,
		Build:      cfg.Tools.Build,
		BuildFlags: cfg.Tools.BuildFlags,
		Publish:    cfg.Tools.Publish,
	}
}
