// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/queryforge/queryforge/internal/config"
	"github.com/queryforge/queryforge/internal/issue"
	"github.com/queryforge/queryforge/internal/lockfile"
	"github.com/queryforge/queryforge/internal/pipeline"
	"github.com/queryforge/queryforge/internal/toolchain"
	"github.com/queryforge/queryforge/pkg/directive"
	"github.com/queryforge/queryforge/pkg/querydoc"
)

// issueStyle is the glamour style used for catalog entries.
var issueStyle = "dark"

// classifyError maps a conversion failure to an issue catalog entry and
// short suggestions.
func classifyError(err error) (issue.Id, []string) {
	var te *toolchain.ToolError
	switch {
	case errors.Is(err, pipeline.ErrUnsupportedKind):
		return issue.UnsupportedKindId, nil
	case errors.Is(err, pipeline.ErrEmptyLibrary):
		return issue.EmptyLibraryId, []string{"Add the marker line or use --kind Exe"}
	case errors.Is(err, pipeline.ErrOutputExists):
		return issue.OutputExistsId, []string{"Pass --overwrite to replace the generated files"}
	case errors.Is(err, directive.ErrConfigParse):
		return issue.DirectiveParseErrorId, nil
	case errors.Is(err, lockfile.ErrLockNotFound):
		return issue.LockNotFoundId, nil
	case errors.As(err, &te):
		switch te.Step {
		case toolchain.StepRestore:
			return issue.RestoreFailedId, nil
		case toolchain.StepPublish:
			return issue.PublishFailedId, nil
		default:
			return issue.BuildFailedId, nil
		}
	case errors.Is(err, pipeline.ErrArtifactNotFound):
		return issue.ArtifactNotFoundId, nil
	case errors.Is(err, querydoc.ErrMissingHeader):
		return issue.DocumentParseErrorId, nil
	case errors.Is(err, config.ErrInvalidConfig), errors.Is(err, querydoc.ErrInvalidOutputKind):
		return issue.ConfigLoadFailedId, nil
	case errors.Is(err, toolchain.ErrUnsupportedExpansion), errors.Is(err, toolchain.ErrEmptyCommand):
		return issue.ConfigLoadFailedId, []string{"Write tool commands without shell expansion; single-quote a literal $"}
	case errors.Is(err, fs.ErrPermission):
		return issue.PermissionDeniedId, nil
	case errors.Is(err, fs.ErrNotExist):
		return issue.DocumentNotFoundId, nil
	default:
		return 0, nil
	}
}

// toActionable wraps err with operation context unless it already is an
// ActionableError, attaching the catalog entry that fits it.
func toActionable(err error, operation, resource string) *issue.ActionableError {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		if ae.IssueId == 0 {
			ae.IssueId, _ = classifyError(ae.Cause)
		}
		return ae
	}
	id, suggestions := classifyError(err)
	return issue.NewErrorContext().
		WithOperation(operation).
		WithResource(resource).
		WithSuggestions(suggestions...).
		WithIssue(id).
		Wrap(err).
		Build()
}

// renderFailure prints err with its catalog guidance to the command's
// stderr and returns the ExitError the command should return.
func renderFailure(cmd *cobra.Command, err error, operation, resource string, verbose bool) error {
	ae := toActionable(err, operation, resource)
	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(ae, verbose))
	renderIssue(stderr, ae.Issue())

	var te *toolchain.ToolError
	if verbose && errors.As(err, &te) && te.Output != "" {
		fmt.Fprintf(stderr, "\n%s\n%s\n", SubtitleStyle.Render("Tool output:"), te.Output)
	}

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return &ExitError{Code: 1, Err: ae}
}

func renderIssue(w io.Writer, entry *issue.Issue) {
	if entry == nil {
		return
	}
	rendered, err := entry.Render(issueStyle)
	if err != nil {
		log.Warn("failed to render issue catalog entry", "issueID", entry.Id(), "error", err)
		return
	}
	fmt.Fprint(w, rendered)
}
