// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/queryforge/queryforge/internal/pipeline"
	"github.com/queryforge/queryforge/internal/synth"
	"github.com/queryforge/queryforge/pkg/querydoc"
)

const (
	planFormatText = "text"
	planFormatYAML = "yaml"
	planFormatTOML = "toml"
)

type (
	planOptions struct {
		synthFlags
		format   string
		contents bool
	}

	// planView is the machine-readable form of a synthesized project.
	planView struct {
		Name            string        `yaml:"name" toml:"name"`
		Kind            string        `yaml:"kind" toml:"kind"`
		OutputKind      string        `yaml:"output_kind" toml:"output_kind"`
		TargetFramework string        `yaml:"target_framework" toml:"target_framework"`
		Files           []planFile    `yaml:"files" toml:"files"`
		Packages        []planPackage `yaml:"packages,omitempty" toml:"packages,omitempty"`
		Artifact        string        `yaml:"artifact" toml:"artifact"`
	}

	planFile struct {
		Role     string `yaml:"role" toml:"role"`
		Path     string `yaml:"path" toml:"path"`
		Contents string `yaml:"contents,omitempty" toml:"contents,omitempty"`
	}

	planPackage struct {
		Name       string `yaml:"name" toml:"name"`
		Version    string `yaml:"version" toml:"version"`
		Prerelease bool   `yaml:"prerelease,omitempty" toml:"prerelease,omitempty"`
	}
)

func newPlanCommand(global *globalOptions) *cobra.Command {
	opts := &planOptions{}
	cmd := &cobra.Command{
		Use:   "plan <document>",
		Short: "Show the project a query document would produce",
		Long: `Show the project a query document would produce without writing
files or running any tool.`,
		Example: `  queryforge plan report.linq
  queryforge plan report.linq --kind Library --format yaml
  queryforge plan report.linq --format toml --contents`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, global, opts, args[0])
		},
	}
	opts.register(cmd.Flags())
	cmd.Flags().StringVar(&opts.format, "format", planFormatText, "output format: text, yaml or toml")
	cmd.Flags().BoolVar(&opts.contents, "contents", false, "include the generated file contents")
	return cmd
}

func runPlan(cmd *cobra.Command, global *globalOptions, opts *planOptions, docPath string) error {
	switch opts.format {
	case planFormatText, planFormatYAML, planFormatTOML:
	default:
		return fmt.Errorf("unknown format %q (valid: %s, %s, %s)", opts.format, planFormatText, planFormatYAML, planFormatTOML)
	}

	doc, err := querydoc.ReadFile(docPath)
	if err != nil {
		return renderFailure(cmd, err, "read query document", docPath, global.verbose)
	}
	cfg, err := global.loadConfig(cmd.Context(), filepath.Dir(docPath))
	if err != nil {
		return renderFailure(cmd, err, "load configuration", "", global.verbose)
	}
	opts.apply(cmd, cfg)
	settings, err := settingsFromConfig(cfg)
	if err != nil {
		return renderFailure(cmd, err, "load configuration", "--kind", global.verbose)
	}

	logger := global.newLogger(cmd.ErrOrStderr(), cfg)
	project, err := pipeline.New(nil, logger).Plan(doc, settings)
	if err != nil {
		return renderFailure(cmd, err, "plan query document", docPath, global.verbose)
	}

	view := newPlanView(project, opts.contents)
	return writePlan(cmd.OutOrStdout(), view, opts.format)
}

func newPlanView(p *synth.Project, contents bool) planView {
	view := planView{
		Name:            p.Name,
		Kind:            p.Kind.String(),
		OutputKind:      p.OutputKind.String(),
		TargetFramework: p.TargetFramework,
		Artifact:        p.ArtifactFile(),
	}
	add := func(role, path, text string) {
		f := planFile{Role: role, Path: path}
		if contents {
			f.Contents = text
		}
		view.Files = append(view.Files, f)
	}
	if p.HasManifest() {
		add("manifest", p.ManifestFile, p.ManifestText)
	}
	add("source", p.SourceFile, p.SourceText)
	add("descriptor", p.DescriptorFile, p.DescriptorText)

	for _, ref := range p.PackageReferences {
		view.Packages = append(view.Packages, planPackage{
			Name:       ref.Name,
			Version:    ref.ManifestVersion(),
			Prerelease: ref.Prerelease,
		})
	}
	return view
}

func writePlan(w io.Writer, view planView, format string) error {
	switch format {
	case planFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return fmt.Errorf("encode plan as YAML: %w", err)
		}
		return enc.Close()
	case planFormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(view); err != nil {
			return fmt.Errorf("encode plan as TOML: %w", err)
		}
		_, err := w.Write(buf.Bytes())
		return err
	default:
		writePlanText(w, view)
		return nil
	}
}

func writePlanText(w io.Writer, view planView) {
	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render(view.Name), SubtitleStyle.Render("("+view.Kind+", "+view.OutputKind+", "+view.TargetFramework+")"))
	for _, f := range view.Files {
		fmt.Fprintf(w, "  %-10s %s\n", f.Role, PathStyle.Render(f.Path))
		if f.Contents != "" {
			fmt.Fprintln(w, f.Contents)
		}
	}
	for _, pkg := range view.Packages {
		line := pkg.Name + " " + pkg.Version
		if pkg.Prerelease {
			line += " (prerelease)"
		}
		fmt.Fprintf(w, "  %-10s %s\n", "package", line)
	}
	fmt.Fprintf(w, "  %-10s %s\n", "artifact", PathStyle.Render(view.Artifact))
}
