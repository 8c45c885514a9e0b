// SPDX-License-Identifier: MPL-2.0

package synth

import (
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/queryforge/queryforge/pkg/querydoc"
)

const (
	msbuildNamespace = "http://schemas.microsoft.com/developer/msbuild/2003"

	// ExeSymbol is the conditional-compilation symbol defined only for
	// executable output.
	ExeSymbol = "EXE"

	baseConstants = "DEBUG;TRACE"
)

type (
	// DescriptorSpec is the input to RenderDescriptor.
	DescriptorSpec struct {
		Name             string
		Kind             querydoc.Kind
		OutputKind       querydoc.OutputKind
		SourceFile       string
		ManifestFile     string
		TargetFramework  string
		AllowUnsafe      bool
		References       []string
		SystemReferences []querydoc.SystemReference
	}

	msbuildProject struct {
		XMLName        xml.Name      `xml:"Project"`
		ToolsVersion   string        `xml:"ToolsVersion,attr"`
		DefaultTargets string        `xml:"DefaultTargets,attr"`
		Xmlns          string        `xml:"xmlns,attr"`
		Properties     propertyGroup `xml:"PropertyGroup"`
		ItemGroups     []itemGroup   `xml:"ItemGroup"`
		Imports        []importItem  `xml:"Import"`
	}

	propertyGroup struct {
		Configuration          string `xml:"Configuration"`
		Platform               string `xml:"Platform"`
		OutputType             string `xml:"OutputType"`
		RootNamespace          string `xml:"RootNamespace"`
		AssemblyName           string `xml:"AssemblyName"`
		TargetFrameworkVersion string `xml:"TargetFrameworkVersion"`
		OutputPath             string `xml:"OutputPath"`
		DefineConstants        string `xml:"DefineConstants"`
		AllowUnsafeBlocks      bool   `xml:"AllowUnsafeBlocks,omitempty"`
	}

	itemGroup struct {
		References []referenceItem `xml:"Reference,omitempty"`
		Compile    []fileItem      `xml:"Compile,omitempty"`
		None       []fileItem      `xml:"None,omitempty"`
	}

	referenceItem struct {
		Include  string `xml:"Include,attr"`
		HintPath string `xml:"HintPath,omitempty"`
	}

	fileItem struct {
		Include string `xml:"Include,attr"`
	}

	importItem struct {
		Project string `xml:"Project,attr"`
	}
)

// RenderDescriptor renders the MSBuild project file.
func RenderDescriptor(spec DescriptorSpec) (string, error) {
	lang, err := languageFor(spec.Kind)
	if err != nil {
		return "", err
	}

	constants := baseConstants
	if !spec.OutputKind.IsLibrary() {
		constants += ";" + ExeSymbol
	}

	proj := msbuildProject{
		ToolsVersion:   "14.0",
		DefaultTargets: "Build",
		Xmlns:          msbuildNamespace,
		Properties: propertyGroup{
			Configuration:          "Debug",
			Platform:               "AnyCPU",
			OutputType:             spec.OutputKind.String(),
			RootNamespace:          spec.Name,
			AssemblyName:           spec.Name,
			TargetFrameworkVersion: frameworkVersion(spec.TargetFramework),
			OutputPath:             `bin\Debug\`,
			DefineConstants:        constants,
			AllowUnsafeBlocks:      spec.AllowUnsafe && lang.supportsUnsafe,
		},
		ItemGroups: []itemGroup{
			{References: references(lang, spec)},
			{Compile: []fileItem{{Include: spec.SourceFile}}},
		},
		Imports: []importItem{{Project: lang.targetsImport}},
	}
	if spec.ManifestFile != "" {
		proj.ItemGroups[1].None = []fileItem{{Include: spec.ManifestFile}}
	}

	out, err := xml.MarshalIndent(proj, "", "  ")
	if err != nil {
		return "", fmt.Errorf("render project descriptor: %w", err)
	}
	return xml.Header + string(out) + "\n", nil
}

// references lists baseline framework assemblies, then the document's
// system references, then hint-path references to plain assembly files.
func references(lang *language, spec DescriptorSpec) []referenceItem {
	seen := map[string]struct{}{}
	var items []referenceItem
	for _, name := range lang.baselineReferences {
		seen[name] = struct{}{}
		items = append(items, referenceItem{Include: name})
	}
	for _, ref := range spec.SystemReferences {
		if _, dup := seen[ref.Name]; dup {
			continue
		}
		seen[ref.Name] = struct{}{}
		items = append(items, referenceItem{Include: ref.FullName})
	}
	for _, path := range spec.References {
		items = append(items, referenceItem{Include: assemblyBaseName(path), HintPath: path})
	}
	return items
}

func assemblyBaseName(path string) string {
	if i := strings.LastIndexAny(path, `\/`); i >= 0 {
		path = path[i+1:]
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// frameworkVersion maps a target framework moniker to an MSBuild version:
// "net46" -> "v4.6", "net472" -> "v4.7.2". Anything else passes through.
func frameworkVersion(tfm string) string {
	digits, ok := strings.CutPrefix(tfm, "net")
	if !ok || digits == "" {
		return tfm
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return tfm
		}
	}
	return "v" + strings.Join(strings.Split(digits, ""), ".")
}

// ArtifactPath is where the build tool places the compiled output, relative
// to the project directory.
func ArtifactPath(name string, kind querydoc.OutputKind) string {
	ext := ".exe"
	if kind.IsLibrary() {
		ext = ".dll"
	}
	return filepath.Join("bin", "Debug", name+ext)
}
