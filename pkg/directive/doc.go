// SPDX-License-Identifier: MPL-2.0

// Package directive parses the override directives embedded in query
// document comments.
//
// A directive is a comma- or semicolon-separated list of assignments whose
// values are restricted literals: booleans, strings, lists and mappings.
//
//	// queryforge: unsafeCode=true, exeOnly={NugetPackages: ["X"], OutputKind: WinExe}
//
// Nothing is ever evaluated. The literal tree is validated against the
// embedded #Directive CUE schema and decoded into an immutable Overrides
// value that callers merge into their own state.
package directive
