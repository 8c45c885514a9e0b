// SPDX-License-Identifier: MPL-2.0

// Package pipeline converts a query document into a project on disk and
// drives the external tools over it.
//
// Plan is pure: it segments, filters and synthesizes without touching the
// filesystem. Run checks preconditions, writes the project files and then
// restores, resolves, builds, loads and (for libraries) publishes. Any
// failure aborts the run; files already written are left in place.
package pipeline
