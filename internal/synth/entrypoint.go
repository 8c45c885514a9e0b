// SPDX-License-Identifier: MPL-2.0

package synth

import (
	"github.com/queryforge/queryforge/internal/segment"
	"github.com/queryforge/queryforge/pkg/querydoc"
)

const (
	// RenderAsIs emits the program segment unchanged.
	RenderAsIs Rendering = "as-is"
	// RenderWrapped nests the program segment in a synthesized entry type.
	RenderWrapped Rendering = "wrapped"
	// RenderTopLevel emits the program segment as top-level statements.
	RenderTopLevel Rendering = "top-level"

	defaultWrapperType   = "Program"
	alternateWrapperType = "QueryProgram"
)

// Rendering is how the program segment of an executable is emitted.
type Rendering string

// ChooseRendering decides how the program segment is emitted. Alternate
// language programs are always top-level. A static entry point is already
// self-sufficient. When no entry point was detected there is nothing to
// wrap, so the segment is emitted unchanged.
func ChooseRendering(kind querydoc.Kind, ep segment.EntryPoint) Rendering {
	switch {
	case kind.IsAlternate():
		return RenderTopLevel
	case !ep.Found || ep.IsStatic:
		return RenderAsIs
	default:
		return RenderWrapped
	}
}

// NormalizeProgram renders the program segment for executable output.
// projectName is the enclosing namespace; a synthesized wrapper type never
// shares it.
func NormalizeProgram(kind querydoc.Kind, projectName string, ep segment.EntryPoint, program []string, dumpHelper string) []string {
	switch ChooseRendering(kind, ep) {
	case RenderTopLevel:
		if dumpHelper == "" {
			return program
		}
		return append([]string{dumpAlias(dumpHelper)}, program...)
	case RenderWrapped:
		return wrapProgram(WrapperTypeName(projectName), ep, program)
	default:
		return program
	}
}

// WrapperTypeName is the type that encloses a wrapped program segment in
// the namespace projectName.
func WrapperTypeName(projectName string) string {
	if projectName == defaultWrapperType {
		return alternateWrapperType
	}
	return defaultWrapperType
}

func dumpAlias(helper string) string {
	return "let Dump = " + helper + ".Dump"
}

// wrapProgram encloses the program segment in a type whose static entry
// point instantiates it and calls the renamed helper. The entry point always
// declares the canonical string[] parameter; args are forwarded and a value
// returned only when the original signature had them.
func wrapProgram(typeName string, ep segment.EntryPoint, program []string) []string {
	returnType := "void"
	if ep.ReturnsValue {
		returnType = "int"
	}
	callArgs := ""
	if ep.HasArgsParameter {
		callArgs = "args"
	}
	call := "new " + typeName + "()." + segment.HelperName + "(" + callArgs + ");"
	if ep.ReturnsValue {
		call = "return " + call
	}

	out := make([]string, 0, len(program)+9)
	out = append(out,
		"    class "+typeName,
		"    {",
		"        static "+returnType+" Main(string[] args)",
		"        {",
		"            "+call,
		"        }",
		"",
	)
	out = append(out, program...)
	out = append(out, "    }")
	return out
}
