// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/queryforge/queryforge/internal/depfilter"
	"github.com/queryforge/queryforge/internal/lockfile"
	"github.com/queryforge/queryforge/internal/segment"
	"github.com/queryforge/queryforge/internal/synth"
	"github.com/queryforge/queryforge/pkg/querydoc"
)

const filePerm = 0o644

type (
	// Settings are the resolved options for one conversion.
	Settings struct {
		OutputKind      querydoc.OutputKind
		AllowUnsafe     bool
		DumpHelper      string
		Overwrite       bool
		PackageSources  []string
		TargetFramework string
		// SkipBuild stops after the project files are written.
		SkipBuild bool
	}

	// Tools runs the external restore, build and publish steps.
	// *toolchain.Toolchain satisfies it.
	Tools interface {
		Restore(ctx context.Context, dir, manifest string, sources []string) error
		Build(ctx context.Context, dir, descriptor string) error
		PublishEnabled() bool
		Publish(ctx context.Context, dir, projectName string, prerelease bool) error
	}

	// Report describes what Run did.
	Report struct {
		Project   *synth.Project
		OutputDir string
		// Written lists the files written, in write order.
		Written []string
		// Unresolved lists packages missing from the lock descriptor.
		Unresolved []string
		Restored   bool
		Built      bool
		// Artifact is the absolute path of the built output, when built.
		Artifact  string
		Published bool
	}

	// Pipeline converts documents.
	Pipeline struct {
		tools  Tools
		logger *log.Logger
	}
)

// New creates a Pipeline. A nil logger uses the default logger.
func New(tools Tools, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{tools: tools, logger: logger}
}

// Plan synthesizes the project for doc without writing anything. doc is not
// modified.
func (p *Pipeline) Plan(doc *querydoc.Document, s Settings) (*synth.Project, error) {
	if err := doc.Kind.Validate(); err != nil {
		return nil, err
	}

	seg, err := segment.Split(doc.CodeLines)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", doc.Name, err)
	}
	p.logger.Debug("segmented",
		"program", len(seg.ProgramLines), "library", len(seg.LibraryLines),
		"marker", seg.MarkerFound, "entryPoint", seg.EntryPoint.Found,
		"directives", !seg.Overrides.IsZero())

	outputKind, err := effectiveOutputKind(s.OutputKind, seg)
	if err != nil {
		return nil, err
	}
	isLibrary := outputKind.IsLibrary()
	if isLibrary && isBlank(seg.LibraryOutput(doc.Kind.IsAlternate())) {
		return nil, &EmptyLibraryError{Document: doc.Name, MarkerFound: seg.MarkerFound}
	}

	filtered := doc.Clone()
	depfilter.Apply(depfilter.FromDocument(filtered), seg.Overrides.ExeOnly, isLibrary).ApplyTo(filtered)
	p.logger.Debug("filtered dependencies",
		"packages", len(filtered.PackageReferences), "references", len(filtered.References),
		"namespaces", len(filtered.Namespaces))

	if s.DumpHelper != "" {
		injectDumpHelper(filtered, s.DumpHelper)
	}

	project, err := synth.Synthesize(filtered, seg, synth.Options{
		OutputKind:      outputKind,
		AllowUnsafe:     seg.Overrides.UnsafeCodeOr(s.AllowUnsafe),
		DumpHelper:      s.DumpHelper,
		TargetFramework: s.TargetFramework,
	})
	if err != nil {
		return nil, err
	}
	p.logger.Debug("synthesized", "source", project.SourceFile, "descriptor", project.DescriptorFile,
		"manifest", project.HasManifest())
	return project, nil
}

// Run converts doc into a project in outDir and drives the tools over it.
func (p *Pipeline) Run(ctx context.Context, doc *querydoc.Document, outDir string, s Settings) (*Report, error) {
	project, err := p.Plan(doc, s)
	if err != nil {
		return nil, err
	}
	report := &Report{Project: project, OutputDir: outDir}

	if !s.Overwrite {
		if err := checkNotExists(outDir, project.SourceFile, project.DescriptorFile); err != nil {
			return report, err
		}
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return report, fmt.Errorf("create output directory: %w", err)
	}
	if project.HasManifest() {
		if err := p.write(report, project.ManifestFile, project.ManifestText); err != nil {
			return report, err
		}
	}
	if err := p.write(report, project.SourceFile, project.SourceText); err != nil {
		return report, err
	}
	if err := p.write(report, project.DescriptorFile, project.DescriptorText); err != nil {
		return report, err
	}

	if s.SkipBuild {
		p.logger.Debug("build skipped")
		return report, nil
	}

	if project.HasManifest() {
		if err := p.restore(ctx, report, s.PackageSources); err != nil {
			return report, err
		}
	}

	if err := p.tools.Build(ctx, outDir, project.DescriptorFile); err != nil {
		return report, err
	}
	report.Built = true

	artifact, err := filepath.Abs(filepath.Join(outDir, project.ArtifactFile()))
	if err != nil {
		return report, err
	}
	if _, err := os.Stat(artifact); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return report, &ArtifactNotFoundError{Path: artifact}
		}
		return report, fmt.Errorf("load artifact: %w", err)
	}
	report.Artifact = artifact
	p.logger.Debug("artifact loaded", "path", artifact)

	if project.OutputKind.IsLibrary() && p.tools.PublishEnabled() {
		if err := p.tools.Publish(ctx, outDir, project.Name, project.Prerelease()); err != nil {
			return report, err
		}
		report.Published = true
	}
	return report, nil
}

// restore runs the restore tool, resolves versions from the lock descriptor
// and rewrites the manifest with them.
func (p *Pipeline) restore(ctx context.Context, report *Report, sources []string) error {
	project := report.Project
	if err := p.tools.Restore(ctx, report.OutputDir, project.ManifestFile, sources); err != nil {
		return err
	}
	report.Restored = true

	refs := slices.Clone(project.PackageReferences)
	unresolved, err := lockfile.Resolve(refs, filepath.Join(report.OutputDir, lockfile.FileName))
	if err != nil {
		return err
	}
	report.Unresolved = unresolved
	for _, name := range unresolved {
		p.logger.Warn("package not found in lock descriptor", "package", name)
	}

	if err := project.SetPackageReferences(refs); err != nil {
		return err
	}
	return p.write(report, project.ManifestFile, project.ManifestText)
}

func (p *Pipeline) write(report *Report, name, text string) error {
	path := filepath.Join(report.OutputDir, name)
	if err := os.WriteFile(path, []byte(text), filePerm); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	p.logger.Debug("wrote file", "path", path)
	if !slices.Contains(report.Written, name) {
		report.Written = append(report.Written, name)
	}
	return nil
}

// effectiveOutputKind applies the directive's executable kind to executable
// output. Library output is never changed by a directive.
func effectiveOutputKind(configured querydoc.OutputKind, seg *segment.Result) (querydoc.OutputKind, error) {
	if configured == "" {
		configured = querydoc.OutputExe
	}
	if configured.IsLibrary() || seg.Overrides.ExeOnly == nil || seg.Overrides.ExeOnly.OutputKind == "" {
		return configured, nil
	}
	kind, err := querydoc.ParseOutputKind(seg.Overrides.ExeOnly.OutputKind)
	if err != nil {
		return "", err
	}
	if kind.IsLibrary() {
		return configured, nil
	}
	return kind, nil
}

// injectDumpHelper adds the dump helper package and, for the primary
// language, imports its namespace so Dump resolves unqualified.
func injectDumpHelper(doc *querydoc.Document, helper string) {
	doc.AddPackageReference(querydoc.PackageReference{Name: helper})
	if !doc.Kind.IsAlternate() {
		doc.AddNamespace(helper)
	}
}

func checkNotExists(dir string, names ...string) error {
	for _, name := range names {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return &OutputExistsError{Path: path}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("check %s: %w", path, err)
		}
	}
	return nil
}

func isBlank(lines []string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return false
		}
	}
	return true
}
