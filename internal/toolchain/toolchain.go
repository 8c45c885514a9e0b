// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/shell"
	"mvdan.cc/sh/v3/syntax"
)

const (
	// StepRestore restores packages listed in the manifest.
	StepRestore Step = "restore"
	// StepBuild compiles the project descriptor.
	StepBuild Step = "build"
	// StepPublish publishes the built library.
	StepPublish Step = "publish"

	// PrereleaseFlag is passed to the publish tool when any package
	// reference is a prerelease.
	PrereleaseFlag = "--prerelease"
)

type (
	// Step names one external tool invocation.
	Step string

	// Tools holds the configured tool command lines.
	Tools struct {
		Restore    string
		SourceFlag string
		Build      string
		BuildFlags []string
		// Publish is disabled when empty.
		Publish string
	}

	// Toolchain runs the configured tools in a project directory.
	Toolchain struct {
		tools  Tools
		runner Runner
		env    map[string]string
		logger *log.Logger
	}

	// Option configures a Toolchain.
	Option func(*Toolchain)
)

// DefaultTools returns the stock tool commands.
func DefaultTools() Tools {
	return Tools{
		Restore:    "dotnet restore",
		SourceFlag: "--source",
		Build:      "msbuild",
		BuildFlags: []string{"/nologo", "/verbosity:quiet"},
	}
}

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option {
	return func(t *Toolchain) { t.runner = r }
}

// WithEnv adds variables to every tool's environment.
func WithEnv(env map[string]string) Option {
	return func(t *Toolchain) { t.env = env }
}

// WithLogger sets the logger used for tool invocations.
func WithLogger(l *log.Logger) Option {
	return func(t *Toolchain) { t.logger = l }
}

// New creates a Toolchain. Without WithRunner, tools run as host processes.
func New(tools Tools, opts ...Option) *Toolchain {
	t := &Toolchain{tools: tools, runner: ExecRunner{}, logger: log.Default()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ParseCommand splits a shell-like command line into argv. Quoting is
// honored. Parameter expansion, command substitution and arithmetic are
// rejected with ErrUnsupportedExpansion; a literal $ must be single-quoted
// or escaped.
func ParseCommand(line string) ([]string, error) {
	if err := rejectExpansions(line); err != nil {
		return nil, fmt.Errorf("parse tool command %q: %w", line, err)
	}
	fields, err := shell.Fields(line, func(string) string { return "" })
	if err != nil {
		return nil, fmt.Errorf("parse tool command %q: %w", line, err)
	}
	if len(fields) == 0 {
		return nil, ErrEmptyCommand
	}
	return fields, nil
}

func rejectExpansions(line string) error {
	file, err := syntax.NewParser().Parse(strings.NewReader(line), "")
	if err != nil {
		return err
	}
	var found error
	syntax.Walk(file, func(node syntax.Node) bool {
		switch n := node.(type) {
		case *syntax.ParamExp:
			found = fmt.Errorf("%w: $%s", ErrUnsupportedExpansion, n.Param.Value)
		case *syntax.CmdSubst:
			found = fmt.Errorf("%w: command substitution", ErrUnsupportedExpansion)
		case *syntax.ArithmExp:
			found = fmt.Errorf("%w: arithmetic expansion", ErrUnsupportedExpansion)
		case *syntax.ProcSubst:
			found = fmt.Errorf("%w: process substitution", ErrUnsupportedExpansion)
		}
		return found == nil
	})
	return found
}

// Restore runs the restore tool on the manifest with one source flag per
// package source.
func (t *Toolchain) Restore(ctx context.Context, dir, manifest string, sources []string) error {
	argv, err := ParseCommand(t.tools.Restore)
	if err != nil {
		return err
	}
	argv = append(argv, manifest)
	for _, src := range sources {
		argv = append(argv, t.tools.SourceFlag, src)
	}
	return t.run(ctx, StepRestore, dir, argv)
}

// Build runs the build tool on the project descriptor with quiet flags.
func (t *Toolchain) Build(ctx context.Context, dir, descriptor string) error {
	argv, err := ParseCommand(t.tools.Build)
	if err != nil {
		return err
	}
	argv = append(argv, descriptor)
	argv = append(argv, t.tools.BuildFlags...)
	return t.run(ctx, StepBuild, dir, argv)
}

// PublishEnabled reports whether a publish command is configured.
func (t *Toolchain) PublishEnabled() bool { return t.tools.Publish != "" }

// Publish runs the publish tool for the project. It is a no-op when no
// publish command is configured.
func (t *Toolchain) Publish(ctx context.Context, dir, projectName string, prerelease bool) error {
	if !t.PublishEnabled() {
		t.logger.Debug("publish disabled", "project", projectName)
		return nil
	}
	argv, err := ParseCommand(t.tools.Publish)
	if err != nil {
		return err
	}
	argv = append(argv, projectName)
	if prerelease {
		argv = append(argv, PrereleaseFlag)
	}
	return t.run(ctx, StepPublish, dir, argv)
}

func (t *Toolchain) run(ctx context.Context, step Step, dir string, argv []string) error {
	t.logger.Info("running tool", "step", step, "cmd", filepath.Base(argv[0]), "dir", dir)
	res := t.runner.Run(ctx, Command{Argv: argv, Dir: dir, Env: t.env})
	if res.Err != nil || !res.ExitCode.IsSuccess() {
		return &ToolError{Step: step, Argv: argv, ExitCode: res.ExitCode, Output: res.Output, Err: res.Err}
	}
	t.logger.Debug("tool finished", "step", step)
	return nil
}
