// SPDX-License-Identifier: MPL-2.0

package directive

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/queryforge/queryforge/pkg/cueutil"
)

// maxDirectiveSize bounds a single directive line.
const maxDirectiveSize = 64 * 1024

//go:embed directive_schema.cue
var directiveSchema []byte

// ErrConfigParse is the sentinel error wrapped by ConfigParseError.
var ErrConfigParse = errors.New("malformed directive")

type (
	// ConfigParseError reports a directive that could not be parsed or did
	// not match the directive schema.
	ConfigParseError struct {
		// Line is the 1-based code line of the directive, or 0 when unknown.
		Line   int
		Source string
		Err    error
	}

	directiveDoc struct {
		UnsafeCode *bool       `json:"unsafeCode,omitempty"`
		ExeOnly    *exeOnlyDoc `json:"exeOnly,omitempty"`
	}

	exeOnlyDoc struct {
		NugetPackages []string `json:"NugetPackages,omitempty"`
		References    []string `json:"References,omitempty"`
		GacReferences []string `json:"GacReferences,omitempty"`
		Namespaces    []string `json:"Namespaces,omitempty"`
		OutputKind    string   `json:"OutputKind,omitempty"`
	}
)

// Error implements the error interface.
func (e *ConfigParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed directive on line %d %q: %v", e.Line, e.Source, e.Err)
	}
	return fmt.Sprintf("malformed directive %q: %v", e.Source, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ConfigParseError) Unwrap() error { return e.Err }

// Is reports ErrConfigParse so errors.Is works alongside the cause chain.
func (e *ConfigParseError) Is(target error) bool { return target == ErrConfigParse }

// Parse parses the text following a directive marker into Overrides.
// Fields absent from src stay nil.
func Parse(src string) (Overrides, error) {
	raw, err := parseLiteral(src)
	if err != nil {
		return Overrides{}, &ConfigParseError{Source: src, Err: err}
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return Overrides{}, &ConfigParseError{Source: src, Err: err}
	}

	res, err := cueutil.ParseAndDecode[directiveDoc](directiveSchema, data, "#Directive",
		cueutil.WithFilename("directive"),
		cueutil.WithMaxFileSize(maxDirectiveSize),
	)
	if err != nil {
		return Overrides{}, &ConfigParseError{Source: src, Err: err}
	}
	return res.Value.overrides(), nil
}

func (d *directiveDoc) overrides() Overrides {
	o := Overrides{UnsafeCode: d.UnsafeCode}
	if d.ExeOnly != nil {
		o.ExeOnly = &ExeOnly{
			PackageNames:        d.ExeOnly.NugetPackages,
			AssemblyPaths:       d.ExeOnly.References,
			SystemAssemblyNames: d.ExeOnly.GacReferences,
			Namespaces:          d.ExeOnly.Namespaces,
			OutputKind:          d.ExeOnly.OutputKind,
		}
	}
	return o
}
