// SPDX-License-Identifier: MPL-2.0

// Package querydoc models interactive query documents and reads them from
// .linq files.
//
// A query document is an XML metadata header (kind, references, package
// references, namespace imports) followed by free-form code lines. The
// Document type is the structured form every later stage of queryforge
// consumes; it is built once per invocation and only mutated through the
// idempotent Add* helpers or by replacing its dependency lists with
// filtered copies.
package querydoc
