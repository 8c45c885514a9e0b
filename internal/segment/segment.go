// SPDX-License-Identifier: MPL-2.0

// Package segment splits a query document's code into its program and
// library segments in a single pass, detecting the entry point and
// collecting directive overrides along the way.
package segment

import (
	"errors"
	"regexp"

	"github.com/queryforge/queryforge/pkg/directive"
)

// HelperName is the name a non-static entry point is renamed to so that a
// synthesized wrapper can call it.
const HelperName = "QueryMain"

var (
	markerPattern = regexp.MustCompile(
		`(?i)^\s*//\s*(?:define other methods and classes here|you can define other methods, fields, classes and namespaces here)\s*$`)

	// Groups: 1 indent, 2 static, 3 return type, 4 args parameter.
	entryPointPattern = regexp.MustCompile(
		`^(\s*)(?:(?:public|private|protected|internal)\s+)?(static\s+)?(void|int)\s+Main\s*\(\s*(string\s*\[\s*\]\s*args)?\s*\)`)

	directivePattern = regexp.MustCompile(`^\s*//\s*queryforge:(.*)$`)
)

type (
	// EntryPoint describes the first entry-point signature found in the code.
	EntryPoint struct {
		Found            bool
		IsStatic         bool
		ReturnsValue     bool
		HasArgsParameter bool
	}

	// Result is the outcome of Split.
	Result struct {
		// ProgramLines holds the lines before the marker.
		ProgramLines []string
		// LibraryLines holds the lines after the marker.
		LibraryLines []string
		// MarkerFound reports whether a marker line was seen.
		MarkerFound bool
		EntryPoint  EntryPoint
		Overrides   directive.Overrides
	}
)

// Split classifies lines into program and library segments. The first
// marker line is a pure delimiter and belongs to neither segment; later
// marker lines are ordinary code. A non-static entry point is rewritten in
// place to HelperName. Directive comments are parsed and merged in order;
// a malformed directive aborts the split.
func Split(lines []string) (*Result, error) {
	res := &Result{}
	for i, line := range lines {
		if !res.MarkerFound && markerPattern.MatchString(line) {
			res.MarkerFound = true
			continue
		}

		if !res.EntryPoint.Found {
			if ep, rewritten, ok := DetectEntryPoint(line); ok {
				res.EntryPoint = ep
				line = rewritten
			}
		}

		if m := directivePattern.FindStringSubmatch(line); m != nil {
			o, err := directive.Parse(m[1])
			if err != nil {
				var cpe *directive.ConfigParseError
				if errors.As(err, &cpe) {
					cpe.Line = i + 1
				}
				return nil, err
			}
			res.Overrides = res.Overrides.Merge(o)
		}

		if res.MarkerFound {
			res.LibraryLines = append(res.LibraryLines, line)
		} else {
			res.ProgramLines = append(res.ProgramLines, line)
		}
	}
	return res, nil
}

// DetectEntryPoint tests a single line against the entry-point pattern. On a
// match it returns the classification and the line to keep: unchanged for a
// static entry point, otherwise renamed to a private HelperName method with
// the rest of the line preserved.
func DetectEntryPoint(line string) (EntryPoint, string, bool) {
	loc := entryPointPattern.FindStringSubmatchIndex(line)
	if loc == nil {
		return EntryPoint{}, line, false
	}
	group := func(n int) string {
		if loc[2*n] < 0 {
			return ""
		}
		return line[loc[2*n]:loc[2*n+1]]
	}

	ep := EntryPoint{
		Found:            true,
		IsStatic:         group(2) != "",
		ReturnsValue:     group(3) == "int",
		HasArgsParameter: group(4) != "",
	}
	if ep.IsStatic {
		return ep, line, true
	}

	params := ""
	if ep.HasArgsParameter {
		params = "string[] args"
	}
	rewritten := group(1) + "private " + group(3) + " " + HelperName + "(" + params + ")" + line[loc[1]:]
	return ep, rewritten, true
}

// LibraryOutput returns the lines that form a library build. Alternate-language
// documents are authored with their library code before the marker, so the
// roles of the two segments are swapped for them.
func (r *Result) LibraryOutput(alternate bool) []string {
	if alternate {
		return r.ProgramLines
	}
	return r.LibraryLines
}
