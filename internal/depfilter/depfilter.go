// SPDX-License-Identifier: MPL-2.0

// Package depfilter removes executable-only dependencies from library builds.
package depfilter

import (
	"github.com/queryforge/queryforge/pkg/directive"
	"github.com/queryforge/queryforge/pkg/querydoc"
)

// Set is the group of dependency lists the filter operates on.
type Set struct {
	References        []string
	SystemReferences  []querydoc.SystemReference
	PackageReferences []querydoc.PackageReference
	Namespaces        []string
}

// FromDocument collects the dependency lists of doc.
func FromDocument(doc *querydoc.Document) Set {
	return Set{
		References:        doc.References,
		SystemReferences:  doc.SystemReferences,
		PackageReferences: doc.PackageReferences,
		Namespaces:        doc.Namespaces,
	}
}

// ApplyTo replaces doc's dependency lists with those of s.
func (s Set) ApplyTo(doc *querydoc.Document) {
	doc.References = s.References
	doc.SystemReferences = s.SystemReferences
	doc.PackageReferences = s.PackageReferences
	doc.Namespaces = s.Namespaces
}

// Apply returns in unchanged for executable output. For library output it
// drops every entry named in exeOnly, keeping the relative order of what
// remains. A nil exeOnly or empty collection filters nothing.
func Apply(in Set, exeOnly *directive.ExeOnly, outputIsLibrary bool) Set {
	if !outputIsLibrary || exeOnly.IsEmpty() {
		return in
	}
	return Set{
		References:        without(in.References, exeOnly.AssemblyPaths, func(r string) string { return r }),
		SystemReferences:  without(in.SystemReferences, exeOnly.SystemAssemblyNames, func(r querydoc.SystemReference) string { return r.Name }),
		PackageReferences: without(in.PackageReferences, exeOnly.PackageNames, func(r querydoc.PackageReference) string { return r.Name }),
		Namespaces:        without(in.Namespaces, exeOnly.Namespaces, func(ns string) string { return ns }),
	}
}

// without is a stable filter keeping items whose key is not in drop. The
// input slice is returned as is when drop is empty.
func without[T any](items []T, drop []string, key func(T) string) []T {
	if len(drop) == 0 {
		return items
	}
	excluded := make(map[string]struct{}, len(drop))
	for _, d := range drop {
		excluded[d] = struct{}{}
	}
	kept := make([]T, 0, len(items))
	for _, item := range items {
		if _, ok := excluded[key(item)]; !ok {
			kept = append(kept, item)
		}
	}
	return kept
}
