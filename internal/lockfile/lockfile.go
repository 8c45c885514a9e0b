// SPDX-License-Identifier: MPL-2.0

// Package lockfile resolves package versions from the lock descriptor
// written by a successful restore.
package lockfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/queryforge/queryforge/pkg/querydoc"
)

// FileName is the lock descriptor written next to the manifest by restore.
const FileName = "project.lock.json"

// ErrLockNotFound is the sentinel error wrapped by LockNotFoundError.
var ErrLockNotFound = errors.New("lock descriptor not found")

type (
	// LockNotFoundError is returned when the lock descriptor does not exist.
	LockNotFoundError struct {
		Path string
	}

	// Versions maps a package name to its locked version.
	Versions map[string]string
)

// Error implements the error interface.
func (e *LockNotFoundError) Error() string {
	return fmt.Sprintf("lock descriptor not found: %s", e.Path)
}

// Unwrap returns ErrLockNotFound for errors.Is.
func (e *LockNotFoundError) Unwrap() error { return ErrLockNotFound }

// Load reads the lock descriptor at path. A missing file is a
// *LockNotFoundError.
func Load(path string) (Versions, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &LockNotFoundError{Path: path}
	}
	if err != nil {
		return nil, fmt.Errorf("read lock descriptor %s: %w", path, err)
	}
	v, err := ParseVersions(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// ParseVersions builds a Versions map from the "libraries" object of a lock
// descriptor, whose keys have the form "<name>/<version>". Keys are split on
// the first separator only. Keys without a separator are ignored. When a
// package is listed under several versions, the one appearing last in the
// descriptor wins; versions are not compared.
func ParseVersions(data []byte) (Versions, error) {
	versions := Versions{}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("parse lock descriptor: %w", err)
	}
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse lock descriptor: %w", err)
		}
		if key != "libraries" {
			if err := skipValue(dec); err != nil {
				return nil, fmt.Errorf("parse lock descriptor: %w", err)
			}
			continue
		}
		if err := readLibraries(dec, versions); err != nil {
			return nil, fmt.Errorf("parse lock descriptor libraries: %w", err)
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, fmt.Errorf("parse lock descriptor: %w", err)
	}
	return versions, nil
}

// readLibraries walks the libraries object in document order. A null value
// contributes nothing.
func readLibraries(dec *json.Decoder, versions Versions) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		if err := skipValue(dec); err != nil {
			return err
		}
		name, version, ok := strings.Cut(key, "/")
		if !ok || name == "" {
			continue
		}
		versions[name] = version
	}
	return expectDelim(dec, '}')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func skipValue(dec *json.Decoder) error {
	var skip json.RawMessage
	return dec.Decode(&skip)
}

// Lookup returns the locked version of name, or querydoc.UnresolvedVersion.
func (v Versions) Lookup(name string) string {
	if version, ok := v[name]; ok {
		return version
	}
	return querydoc.UnresolvedVersion
}

// Apply assigns every reference its locked version in place and returns the
// names that were not found in the lock.
func (v Versions) Apply(refs []querydoc.PackageReference) []string {
	var unresolved []string
	for i := range refs {
		refs[i].Version = v.Lookup(refs[i].Name)
		if !refs[i].IsResolved() {
			unresolved = append(unresolved, refs[i].Name)
		}
	}
	return unresolved
}

// Resolve loads the lock descriptor at lockPath and applies it to refs.
func Resolve(refs []querydoc.PackageReference, lockPath string) ([]string, error) {
	versions, err := Load(lockPath)
	if err != nil {
		return nil, err
	}
	return versions.Apply(refs), nil
}
