// SPDX-License-Identifier: MPL-2.0

// Package toolchain invokes the external restore, build and publish tools.
//
// Tool commands are configured as shell-like strings and split into argv
// without a shell. Each invocation blocks until the process exits; a
// non-zero exit is reported as a *ToolError.
package toolchain
