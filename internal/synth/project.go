// SPDX-License-Identifier: MPL-2.0

package synth

import (
	"fmt"
	"slices"

	"github.com/queryforge/queryforge/internal/segment"
	"github.com/queryforge/queryforge/pkg/querydoc"
)

// DefaultTargetFramework is used when Options.TargetFramework is empty.
const DefaultTargetFramework = "net46"

type (
	// Options controls synthesis.
	Options struct {
		OutputKind  querydoc.OutputKind
		AllowUnsafe bool
		// DumpHelper is the package providing the dump routine, or "".
		DumpHelper      string
		TargetFramework string
	}

	// Project is the synthesized output. File names are relative to the
	// output directory. ManifestText is empty when the project has no
	// package references.
	Project struct {
		Name       string
		Kind       querydoc.Kind
		OutputKind querydoc.OutputKind

		SourceFile     string
		ManifestFile   string
		DescriptorFile string

		SourceText     string
		ManifestText   string
		DescriptorText string

		PackageReferences []querydoc.PackageReference
		TargetFramework   string
	}
)

// Synthesize produces the source, manifest and descriptor texts for an
// already-filtered document and its segmentation.
func Synthesize(doc *querydoc.Document, seg *segment.Result, opts Options) (*Project, error) {
	lang, err := languageFor(doc.Kind)
	if err != nil {
		return nil, err
	}
	if opts.TargetFramework == "" {
		opts.TargetFramework = DefaultTargetFramework
	}
	if opts.OutputKind == "" {
		opts.OutputKind = querydoc.OutputExe
	}
	exe := !opts.OutputKind.IsLibrary()

	sourceFile, descriptorFile, err := FileNames(doc.Name, doc.Kind)
	if err != nil {
		return nil, err
	}

	parts := sourceParts{
		name:    doc.Name,
		imports: mergeImports(lang.baselineImports, doc.Namespaces),
		exe:     exe,
	}
	if exe {
		parts.program = NormalizeProgram(doc.Kind, doc.Name, seg.EntryPoint, seg.ProgramLines, opts.DumpHelper)
		parts.library = seg.LibraryLines
	} else {
		parts.library = seg.LibraryOutput(doc.Kind.IsAlternate())
	}

	p := &Project{
		Name:              doc.Name,
		Kind:              doc.Kind,
		OutputKind:        opts.OutputKind,
		SourceFile:        sourceFile,
		DescriptorFile:    descriptorFile,
		SourceText:        renderSource(lang, parts),
		PackageReferences: slices.Clone(doc.PackageReferences),
		TargetFramework:   opts.TargetFramework,
	}

	if err := p.renderManifest(); err != nil {
		return nil, err
	}

	p.DescriptorText, err = RenderDescriptor(DescriptorSpec{
		Name:             doc.Name,
		Kind:             doc.Kind,
		OutputKind:       opts.OutputKind,
		SourceFile:       sourceFile,
		ManifestFile:     p.ManifestFile,
		TargetFramework:  opts.TargetFramework,
		AllowUnsafe:      opts.AllowUnsafe,
		References:       doc.References,
		SystemReferences: doc.SystemReferences,
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize %s: %w", doc.Name, err)
	}
	return p, nil
}

// HasManifest reports whether the project carries a package manifest.
func (p *Project) HasManifest() bool { return p.ManifestText != "" }

// ArtifactFile is the expected build output, relative to the output
// directory.
func (p *Project) ArtifactFile() string { return ArtifactPath(p.Name, p.OutputKind) }

// Prerelease reports whether any package reference is a prerelease.
func (p *Project) Prerelease() bool {
	return slices.ContainsFunc(p.PackageReferences, func(r querydoc.PackageReference) bool {
		return r.Prerelease
	})
}

// SetPackageReferences replaces the package references (typically with
// resolved versions) and re-renders the manifest.
func (p *Project) SetPackageReferences(refs []querydoc.PackageReference) error {
	p.PackageReferences = slices.Clone(refs)
	return p.renderManifest()
}

func (p *Project) renderManifest() error {
	text, err := RenderManifest(p.PackageReferences, p.TargetFramework)
	if err != nil {
		return fmt.Errorf("render manifest for %s: %w", p.Name, err)
	}
	p.ManifestText = text
	p.ManifestFile = ""
	if text != "" {
		p.ManifestFile = ManifestFileName
	}
	return nil
}
