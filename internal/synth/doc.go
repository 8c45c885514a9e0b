// SPDX-License-Identifier: MPL-2.0

// Package synth assembles the text artifacts of a standalone project from a
// segmented query document: the source file, the optional package manifest
// and the MSBuild project descriptor.
//
// Everything here is pure. Writing files and running tools is the job of
// the pipeline package.
package synth
