// SPDX-License-Identifier: MPL-2.0

package directive

import "slices"

type (
	// Overrides is the typed result of one or more directives. Nil fields
	// mean "no override".
	Overrides struct {
		UnsafeCode *bool
		ExeOnly    *ExeOnly
	}

	// ExeOnly lists dependencies that are needed only when the document is
	// built as an executable and must be dropped from library output.
	ExeOnly struct {
		PackageNames        []string
		AssemblyPaths       []string
		SystemAssemblyNames []string
		Namespaces          []string
		// OutputKind selects Exe or WinExe for executable output; empty
		// leaves the configured kind alone.
		OutputKind string
	}
)

// Merge returns a copy of o where every field present in next replaces the
// corresponding field of o.
func (o Overrides) Merge(next Overrides) Overrides {
	merged := o
	if next.UnsafeCode != nil {
		v := *next.UnsafeCode
		merged.UnsafeCode = &v
	}
	if next.ExeOnly != nil {
		merged.ExeOnly = next.ExeOnly.clone()
	}
	return merged
}

// UnsafeCodeOr returns the directive's unsafeCode value when one was set,
// in either direction, and fallback otherwise.
func (o Overrides) UnsafeCodeOr(fallback bool) bool {
	if o.UnsafeCode == nil {
		return fallback
	}
	return *o.UnsafeCode
}

// IsZero reports whether no directive field was set.
func (o Overrides) IsZero() bool {
	return o.UnsafeCode == nil && o.ExeOnly == nil
}

// IsEmpty reports whether e carries no dependency collections. A nil
// receiver is empty.
func (e *ExeOnly) IsEmpty() bool {
	if e == nil {
		return true
	}
	return len(e.PackageNames) == 0 && len(e.AssemblyPaths) == 0 &&
		len(e.SystemAssemblyNames) == 0 && len(e.Namespaces) == 0
}

func (e *ExeOnly) clone() *ExeOnly {
	return &ExeOnly{
		PackageNames:        slices.Clone(e.PackageNames),
		AssemblyPaths:       slices.Clone(e.AssemblyPaths),
		SystemAssemblyNames: slices.Clone(e.SystemAssemblyNames),
		Namespaces:          slices.Clone(e.Namespaces),
		OutputKind:          e.OutputKind,
	}
}
