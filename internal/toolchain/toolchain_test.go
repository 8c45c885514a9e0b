// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
)

type recordingRunner struct {
	mu    sync.Mutex
	calls []Command
	exit  map[Step]ExitCode
	step  func(argv []string) Step
}

func (r *recordingRunner) Run(_ context.Context, c Command) Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	if r.step != nil {
		return Result{ExitCode: r.exit[r.step(c.Argv)], Output: "tool output"}
	}
	return Result{}
}

func quietLogger() *log.Logger { return log.New(io.Discard) }

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{in: "dotnet restore", want: []string{"dotnet", "restore"}},
		{in: `"C:/Program Files/nuget.exe" restore`, want: []string{"C:/Program Files/nuget.exe", "restore"}},
		{in: "msbuild  ", want: []string{"msbuild"}},
		{in: "", wantErr: true},
		{in: `"unterminated`, wantErr: true},
		{in: `msbuild '/p:Cfg=$Config'`, want: []string{"msbuild", "/p:Cfg=$Config"}},
		{in: `msbuild /p:Cfg=\$Config`, want: []string{"msbuild", "/p:Cfg=$Config"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseCommand(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCommand(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseCommand(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestParseCommand_RejectsExpansion(t *testing.T) {
	t.Parallel()

	for _, in := range []string{
		"msbuild /p:Cfg=$Config",
		`msbuild "/p:Cfg=${Config}"`,
		"nuget restore $(pwd)",
		"msbuild /m:$((1+1))",
	} {
		if _, err := ParseCommand(in); !errors.Is(err, ErrUnsupportedExpansion) {
			t.Errorf("ParseCommand(%q) error = %v, want ErrUnsupportedExpansion", in, err)
		}
	}
}

func TestToolchain_Arguments(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{}
	tools := DefaultTools()
	tools.Publish = "nuget-publish --quiet"
	tc := New(tools, WithRunner(runner), WithLogger(quietLogger()), WithEnv(map[string]string{"A": "1"}))
	ctx := context.Background()

	if err := tc.Restore(ctx, "/out", "project.json", []string{"https://a", "https://b"}); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if err := tc.Build(ctx, "/out", "Demo.csproj"); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if err := tc.Publish(ctx, "/out", "Demo", true); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	want := [][]string{
		{"dotnet", "restore", "project.json", "--source", "https://a", "--source", "https://b"},
		{"msbuild", "Demo.csproj", "/nologo", "/verbosity:quiet"},
		{"nuget-publish", "--quiet", "Demo", PrereleaseFlag},
	}
	var got [][]string
	for _, c := range runner.calls {
		got = append(got, c.Argv)
		if c.Dir != "/out" || c.Env["A"] != "1" {
			t.Errorf("command %v ran with dir %q env %v", c.Argv, c.Dir, c.Env)
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("argv mismatch (-want +got):\n%s", diff)
	}
}

func TestToolchain_PublishDisabled(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{}
	tc := New(DefaultTools(), WithRunner(runner), WithLogger(quietLogger()))
	if tc.PublishEnabled() {
		t.Fatal("PublishEnabled() = true for default tools")
	}
	if err := tc.Publish(context.Background(), "/out", "Demo", false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(runner.calls) != 0 {
		t.Errorf("publish ran %d commands, want 0", len(runner.calls))
	}
}

func TestToolchain_NonZeroExit(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{
		exit: map[Step]ExitCode{StepBuild: 2},
		step: func(argv []string) Step {
			if argv[0] == "msbuild" {
				return StepBuild
			}
			return StepRestore
		},
	}
	tc := New(DefaultTools(), WithRunner(runner), WithLogger(quietLogger()))

	err := tc.Build(context.Background(), "/out", "Demo.csproj")
	if !errors.Is(err, ErrToolFailed) {
		t.Fatalf("Build() error = %v, want ErrToolFailed", err)
	}
	var te *ToolError
	if !errors.As(err, &te) {
		t.Fatalf("Build() error type = %T, want *ToolError", err)
	}
	if te.Step != StepBuild || te.ExitCode != 2 || te.Output != "tool output" {
		t.Errorf("ToolError = %+v", te)
	}
}

func TestToolError_StartFailure(t *testing.T) {
	t.Parallel()

	cause := errors.New("not found")
	err := error(&ToolError{Step: StepRestore, Argv: []string{"dotnet"}, ExitCode: 1, Err: cause})
	if !errors.Is(err, ErrToolFailed) || !errors.Is(err, cause) {
		t.Errorf("errors.Is chain broken for %v", err)
	}
	if got, want := err.Error(), "restore: dotnet: not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
