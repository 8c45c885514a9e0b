// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrToolFailed is the sentinel wrapped by ToolError.
	ErrToolFailed = errors.New("external tool failed")

	// ErrEmptyCommand is returned when a tool command has no words.
	ErrEmptyCommand = errors.New("empty tool command")

	// ErrUnsupportedExpansion is returned when a tool command relies on
	// shell expansion.
	ErrUnsupportedExpansion = errors.New("shell expansion is not supported in tool commands")
)

// ToolError reports a tool that exited non-zero or could not be started.
type ToolError struct {
	Step     Step
	Argv     []string
	ExitCode ExitCode
	Output   string
	// Err is the start failure, if the process never ran.
	Err error
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	cmd := strings.Join(e.Argv, " ")
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Step, cmd, e.Err)
	}
	return fmt.Sprintf("%s: %s exited with code %s", e.Step, cmd, e.ExitCode)
}

// Unwrap returns ErrToolFailed, and the start failure when present.
func (e *ToolError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrToolFailed, e.Err}
	}
	return []error{ErrToolFailed}
}
