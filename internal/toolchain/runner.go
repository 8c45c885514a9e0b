// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sort"
)

type (
	// Command is one external process invocation.
	Command struct {
		Argv []string
		Dir  string
		// Env is added on top of the current process environment.
		Env map[string]string
	}

	// Result is the outcome of running a Command. Err is set only when the
	// process could not be started or waited for; a process that ran and
	// exited non-zero has a non-zero ExitCode and a nil Err.
	Result struct {
		ExitCode ExitCode
		Output   string
		Err      error
	}

	// Runner executes commands.
	Runner interface {
		Run(ctx context.Context, cmd Command) Result
	}

	// ExecRunner runs commands as host processes. Combined output is
	// captured and, when Stream is set, copied to it as it arrives.
	ExecRunner struct {
		Stream io.Writer
	}
)

// Run implements Runner.
func (r ExecRunner) Run(ctx context.Context, c Command) Result {
	if len(c.Argv) == 0 {
		return Result{ExitCode: 1, Err: ErrEmptyCommand}
	}

	cmd := exec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), envToSlice(c.Env)...)

	var captured bytes.Buffer
	var out io.Writer = &captured
	if r.Stream != nil {
		out = io.MultiWriter(&captured, r.Stream)
	}
	cmd.Stdout = out
	cmd.Stderr = out

	return extractExitCode(cmd.Run(), captured.String())
}

// extractExitCode maps a process error to a Result.
func extractExitCode(err error, output string) Result {
	res := Result{Output: output}
	if err == nil {
		return res
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// Killed by a signal.
			code = 1
		}
		res.ExitCode = ExitCode(code)
		return res
	}
	res.ExitCode = 1
	res.Err = err
	return res
}

func envToSlice(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
