// SPDX-License-Identifier: MPL-2.0

package synth

import (
	"github.com/queryforge/queryforge/pkg/querydoc"
)

// language captures what differs between the primary (C#) and alternate
// (F#) output.
type language struct {
	sourceExt  string
	projectExt string

	baselineImports    []string
	baselineReferences []string

	importLine  func(ns string) string
	regionStart string
	regionEnd   string

	targetsImport  string
	supportsUnsafe bool
}

var (
	csharp = &language{
		sourceExt:  ".cs",
		projectExt: ".csproj",
		baselineImports: []string{
			"System",
			"System.Collections.Generic",
			"System.IO",
			"System.Linq",
			"System.Text",
			"System.Text.RegularExpressions",
			"System.Threading.Tasks",
		},
		baselineReferences: []string{"System", "System.Core", "System.Data", "System.Xml", "System.Xml.Linq", "Microsoft.CSharp"},
		importLine:         func(ns string) string { return "using " + ns + ";" },
		regionStart:        "#region Library",
		regionEnd:          "#endregion",
		targetsImport:      `$(MSBuildToolsPath)\Microsoft.CSharp.targets`,
		supportsUnsafe:     true,
	}

	fsharp = &language{
		sourceExt:  ".fs",
		projectExt: ".fsproj",
		baselineImports: []string{
			"System",
			"System.Collections.Generic",
			"System.IO",
			"System.Linq",
			"System.Text",
		},
		baselineReferences: []string{"System", "System.Core", "System.Data", "System.Xml", "System.Xml.Linq", "FSharp.Core"},
		importLine:         func(ns string) string { return "open " + ns },
		regionStart:        "//#region Library",
		regionEnd:          "//#endregion",
		targetsImport:      `$(MSBuildExtensionsPath32)\..\Microsoft SDKs\F#\4.0\Framework\v4.0\Microsoft.FSharp.Targets`,
	}
)

func languageFor(kind querydoc.Kind) (*language, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	if kind.IsAlternate() {
		return fsharp, nil
	}
	return csharp, nil
}

// FileNames returns the source and descriptor file names for a project.
func FileNames(name string, kind querydoc.Kind) (source, descriptor string, err error) {
	lang, err := languageFor(kind)
	if err != nil {
		return "", "", err
	}
	return name + lang.sourceExt, name + lang.projectExt, nil
}
