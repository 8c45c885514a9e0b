// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "convert query document"},
			expected: "failed to convert query document",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "convert query document", Resource: "./report.linq"},
			expected: "failed to convert query document: ./report.linq",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "convert query document",
				Resource:  "./report.linq",
				Cause:     errors.New("library segment is empty"),
			},
			expected: "failed to convert query document: ./report.linq: library segment is empty",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_ErrorsIs(t *testing.T) {
	t.Parallel()

	cause := errors.New("lock descriptor not found")
	wrapped := error(&ActionableError{Operation: "restore packages", Cause: fmt.Errorf("restore: %w", cause)})
	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if (&ActionableError{Operation: "x"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	err := &ActionableError{
		Operation:   "build project",
		Resource:    "out/Report.csproj",
		Suggestions: []string{"Inspect the generated source", "Run with --no-build"},
		Cause:       fmt.Errorf("build: %w", errors.New("exit status 1")),
	}

	plain := err.Format(false)
	for _, want := range []string{"failed to build project", "• Inspect the generated source", "• Run with --no-build"} {
		if !strings.Contains(plain, want) {
			t.Errorf("Format(false) missing %q:\n%s", want, plain)
		}
	}
	if strings.Contains(plain, "Error chain:") {
		t.Errorf("Format(false) includes error chain:\n%s", plain)
	}

	verbose := err.Format(true)
	for _, want := range []string{"Error chain:", "1. build: exit status 1", "2. exit status 1"} {
		if !strings.Contains(verbose, want) {
			t.Errorf("Format(true) missing %q:\n%s", want, verbose)
		}
	}
}

func TestActionableError_FormatWithoutSuggestions(t *testing.T) {
	t.Parallel()

	err := &ActionableError{Operation: "read query document", Cause: errors.New("no such file")}
	if got, want := err.Format(false), "failed to read query document: no such file"; got != want {
		t.Errorf("Format(false) = %q, want %q", got, want)
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	cause := errors.New("output file already exists")
	ae := NewErrorContext().
		WithOperation("write project").
		WithResource("out").
		WithSuggestion("Pass --overwrite").
		WithSuggestions("Choose another directory with -o").
		WithIssue(OutputExistsId).
		Wrap(cause).
		Build()
	if ae == nil {
		t.Fatal("Build() = nil")
	}
	if ae.Operation != "write project" || ae.Resource != "out" || len(ae.Suggestions) != 2 {
		t.Errorf("Build() = %+v", ae)
	}
	if !errors.Is(ae, cause) {
		t.Error("cause not wrapped")
	}
	if got := ae.Issue(); got == nil || got.Id() != OutputExistsId {
		t.Errorf("Issue() = %v, want OutputExistsId entry", got)
	}
	if !ae.HasSuggestions() {
		t.Error("HasSuggestions() = false")
	}
}

func TestErrorContext_BuildWithoutOperation(t *testing.T) {
	t.Parallel()

	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if NewErrorContext().BuildError() != nil {
		t.Error("BuildError() without operation should return nil")
	}
	if (&ActionableError{Operation: "x"}).Issue() != nil {
		t.Error("Issue() without id should return nil")
	}
}
