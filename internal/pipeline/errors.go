// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"errors"
	"fmt"

	"github.com/queryforge/queryforge/pkg/querydoc"
)

var (
	// ErrUnsupportedKind is returned for documents that are neither the
	// primary nor the alternate program kind.
	ErrUnsupportedKind = querydoc.ErrUnsupportedKind

	// ErrEmptyLibrary is the sentinel error wrapped by EmptyLibraryError.
	ErrEmptyLibrary = errors.New("library segment is empty")

	// ErrOutputExists is the sentinel error wrapped by OutputExistsError.
	ErrOutputExists = errors.New("output file already exists")

	// ErrArtifactNotFound is the sentinel error wrapped by ArtifactNotFoundError.
	ErrArtifactNotFound = errors.New("build artifact not found")
)

type (
	// EmptyLibraryError is returned when library output is requested for a
	// document with no library code.
	EmptyLibraryError struct {
		Document    string
		MarkerFound bool
	}

	// OutputExistsError is returned when a generated file would overwrite an
	// existing one and overwriting is not enabled.
	OutputExistsError struct {
		Path string
	}

	// ArtifactNotFoundError is returned when the build succeeded but the
	// expected artifact is missing.
	ArtifactNotFoundError struct {
		Path string
	}
)

// Error implements the error interface.
func (e *EmptyLibraryError) Error() string {
	if !e.MarkerFound {
		return fmt.Sprintf("%s: library output requested but the document has no library marker", e.Document)
	}
	return fmt.Sprintf("%s: library output requested but the library segment is empty", e.Document)
}

// Unwrap returns ErrEmptyLibrary for errors.Is.
func (e *EmptyLibraryError) Unwrap() error { return ErrEmptyLibrary }

// Error implements the error interface.
func (e *OutputExistsError) Error() string {
	return fmt.Sprintf("output file already exists: %s", e.Path)
}

// Unwrap returns ErrOutputExists for errors.Is.
func (e *OutputExistsError) Unwrap() error { return ErrOutputExists }

// Error implements the error interface.
func (e *ArtifactNotFoundError) Error() string {
	return fmt.Sprintf("build artifact not found: %s", e.Path)
}

// Unwrap returns ErrArtifactNotFound for errors.Is.
func (e *ArtifactNotFoundError) Unwrap() error { return ErrArtifactNotFound }
