// SPDX-License-Identifier: MPL-2.0

package synth

import "strings"

// sourceParts are the inputs to renderSource.
type sourceParts struct {
	name    string
	imports []string
	// program is nil for library output.
	program []string
	library []string
	exe     bool
}

// renderSource wraps imports, program and library code in the language's
// namespace or module. User lines are never re-indented so multi-line
// string literals keep their content.
func renderSource(lang *language, parts sourceParts) string {
	var lines []string
	indent := ""
	if lang == csharp {
		indent = "    "
		lines = append(lines, "namespace "+parts.name, "{")
	} else {
		lines = append(lines, "module "+parts.name, "")
	}

	for _, ns := range parts.imports {
		lines = append(lines, indent+lang.importLine(ns))
	}
	lines = append(lines, "")

	if parts.exe {
		lines = append(lines, parts.program...)
		lines = append(lines, "", indent+lang.regionStart)
		lines = append(lines, parts.library...)
		lines = append(lines, indent+lang.regionEnd)
	} else {
		lines = append(lines, parts.library...)
	}

	if lang == csharp {
		lines = append(lines, "}")
	}
	return strings.Join(lines, "\n") + "\n"
}

// mergeImports returns the baseline imports followed by the document's own,
// dropping duplicates while keeping first-seen order.
func mergeImports(baseline, own []string) []string {
	seen := make(map[string]struct{}, len(baseline)+len(own))
	out := make([]string, 0, len(baseline)+len(own))
	for _, list := range [][]string{baseline, own} {
		for _, ns := range list {
			if _, dup := seen[ns]; dup {
				continue
			}
			seen[ns] = struct{}{}
			out = append(out, ns)
		}
	}
	return out
}
