// SPDX-License-Identifier: MPL-2.0

package querydoc

import (
	"errors"
	"fmt"
	"slices"
)

const (
	// KindProgram is a primary-language (C#) program document.
	KindProgram Kind = "Program"
	// KindFSharpProgram is an alternate-language (F#) program document.
	KindFSharpProgram Kind = "FSharpProgram"

	// OutputLibrary produces a class library.
	OutputLibrary OutputKind = "Library"
	// OutputExe produces a console executable.
	OutputExe OutputKind = "Exe"
	// OutputWinExe produces a windowed executable.
	OutputWinExe OutputKind = "WinExe"

	// UnresolvedVersion is the sentinel for a package version that has not
	// been resolved against a lock descriptor.
	UnresolvedVersion = ""
	// PlaceholderVersion is how an unresolved version is written to a manifest.
	PlaceholderVersion = "*"
)

var (
	// ErrUnsupportedKind is the sentinel error wrapped by UnsupportedKindError.
	ErrUnsupportedKind = errors.New("unsupported document kind")
	// ErrInvalidOutputKind is the sentinel error wrapped by InvalidOutputKindError.
	ErrInvalidOutputKind = errors.New("invalid output kind")
)

type (
	// Kind is the document kind declared in the query header.
	Kind string

	// UnsupportedKindError is returned for any document kind other than
	// KindProgram and KindFSharpProgram.
	UnsupportedKindError struct {
		Value Kind
	}

	// OutputKind is the shape of the synthesized project.
	OutputKind string

	// InvalidOutputKindError is returned when an OutputKind value is not recognized.
	InvalidOutputKindError struct {
		Value OutputKind
	}

	// SystemReference is a reference to a framework assembly.
	SystemReference struct {
		// Name is the short assembly name (e.g. "System.Xml").
		Name string
		// FullName is the display name, possibly strong-named.
		FullName string
	}

	// PackageReference is a package dependency.
	PackageReference struct {
		Name       string
		Version    string
		Prerelease bool
	}

	// Document is a parsed query document.
	Document struct {
		Kind Kind
		// Name is the project name derived from the document file name.
		Name string
		// Path is the file the document was read from, if any.
		Path string

		CodeLines         []string
		Namespaces        []string
		References        []string
		SystemReferences  []SystemReference
		PackageReferences []PackageReference
	}
)

// Error implements the error interface.
func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("unsupported document kind %q (supported: %s, %s)", e.Value, KindProgram, KindFSharpProgram)
}

// Unwrap returns ErrUnsupportedKind for errors.Is.
func (e *UnsupportedKindError) Unwrap() error { return ErrUnsupportedKind }

// Validate returns an *UnsupportedKindError unless k is a supported kind.
func (k Kind) Validate() error {
	switch k {
	case KindProgram, KindFSharpProgram:
		return nil
	default:
		return &UnsupportedKindError{Value: k}
	}
}

// IsAlternate reports whether k is the alternate-language kind, whose
// marker convention is swapped relative to the primary language.
func (k Kind) IsAlternate() bool { return k == KindFSharpProgram }

// String returns the string representation of the Kind.
func (k Kind) String() string { return string(k) }

// Error implements the error interface.
func (e *InvalidOutputKindError) Error() string {
	return fmt.Sprintf("invalid output kind %q (valid: %s, %s, %s)", e.Value, OutputLibrary, OutputExe, OutputWinExe)
}

// Unwrap returns ErrInvalidOutputKind for errors.Is.
func (e *InvalidOutputKindError) Unwrap() error { return ErrInvalidOutputKind }

// ParseOutputKind converts a user-supplied string into an OutputKind.
func ParseOutputKind(s string) (OutputKind, error) {
	k := OutputKind(s)
	switch k {
	case OutputLibrary, OutputExe, OutputWinExe:
		return k, nil
	default:
		return "", &InvalidOutputKindError{Value: k}
	}
}

// IsLibrary reports whether the output is a class library.
func (k OutputKind) IsLibrary() bool { return k == OutputLibrary }

// String returns the string representation of the OutputKind.
func (k OutputKind) String() string { return string(k) }

// IsResolved reports whether the version is concrete.
func (r PackageReference) IsResolved() bool { return r.Version != UnresolvedVersion }

// ManifestVersion returns the version string to write into a manifest.
func (r PackageReference) ManifestVersion() string {
	if !r.IsResolved() {
		return PlaceholderVersion
	}
	return r.Version
}

// AddNamespace appends ns unless already present. It reports whether the
// namespace was added.
func (d *Document) AddNamespace(ns string) bool {
	for _, existing := range d.Namespaces {
		if existing == ns {
			return false
		}
	}
	d.Namespaces = append(d.Namespaces, ns)
	return true
}

// AddPackageReference appends ref unless a reference with the same name is
// already present. It reports whether the reference was added.
func (d *Document) AddPackageReference(ref PackageReference) bool {
	for _, existing := range d.PackageReferences {
		if existing.Name == ref.Name {
			return false
		}
	}
	d.PackageReferences = append(d.PackageReferences, ref)
	return true
}

// Clone returns a copy of d whose slices can be modified independently.
func (d *Document) Clone() *Document {
	c := *d
	c.CodeLines = slices.Clone(d.CodeLines)
	c.Namespaces = slices.Clone(d.Namespaces)
	c.References = slices.Clone(d.References)
	c.SystemReferences = slices.Clone(d.SystemReferences)
	c.PackageReferences = slices.Clone(d.PackageReferences)
	return &c
}
