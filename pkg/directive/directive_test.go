// SPDX-License-Identifier: MPL-2.0

package directive

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func boolPtr(b bool) *bool { return &b }

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want Overrides
	}{
		{
			name: "empty directive",
			src:  "   ",
			want: Overrides{},
		},
		{
			name: "unsafe only",
			src:  "unsafeCode=true",
			want: Overrides{UnsafeCode: boolPtr(true)},
		},
		{
			name: "python style boolean",
			src:  "unsafeCode = False",
			want: Overrides{UnsafeCode: boolPtr(false)},
		},
		{
			name: "exe only packages",
			src:  `exeOnly={NugetPackages:["X"]}`,
			want: Overrides{ExeOnly: &ExeOnly{PackageNames: []string{"X"}}},
		},
		{
			name: "all collections with mixed separators and quoting",
			src: `unsafeCode: true; exeOnly = {
				"NugetPackages": ['A', "B"],
				References: ["C:\\libs\\Acme.dll"],
				GacReferences: [System.Web],
				Namespaces: [Acme.Tools,],
				OutputKind: WinExe,
			}`,
			want: Overrides{
				UnsafeCode: boolPtr(true),
				ExeOnly: &ExeOnly{
					PackageNames:        []string{"A", "B"},
					AssemblyPaths:       []string{`C:\libs\Acme.dll`},
					SystemAssemblyNames: []string{"System.Web"},
					Namespaces:          []string{"Acme.Tools"},
					OutputKind:          "WinExe",
				},
			},
		},
		{
			name: "empty exeOnly mapping",
			src:  "exeOnly={}",
			want: Overrides{ExeOnly: &ExeOnly{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.src)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.src, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.src, diff)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{"unknown top level key", "optimize=true"},
		{"unknown exeOnly key", `exeOnly={Packages:["X"]}`},
		{"wrong value type", `unsafeCode="yes"`},
		{"list where bool expected", `unsafeCode=[true]`},
		{"invalid output kind", `exeOnly={OutputKind: Library}`},
		{"missing value", "unsafeCode="},
		{"missing separator", "unsafeCode true"},
		{"unterminated string", `exeOnly={NugetPackages:["X]}`},
		{"unterminated list", `exeOnly={NugetPackages:["X"}`},
		{"numbers are not literals", "unsafeCode=1"},
		{"function call", `exeOnly=__import__("os")`},
		{"bad escape", `exeOnly={NugetPackages:["\q"]}`},
		{"trailing garbage", "unsafeCode=true false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tt.src)
			if err == nil {
				t.Fatalf("Parse(%q) expected error", tt.src)
			}
			if !errors.Is(err, ErrConfigParse) {
				t.Errorf("Parse(%q) error %v does not match ErrConfigParse", tt.src, err)
			}
			var cpe *ConfigParseError
			if !errors.As(err, &cpe) || cpe.Source != tt.src {
				t.Errorf("Parse(%q) error is not a ConfigParseError carrying the source", tt.src)
			}
		})
	}
}

func TestConfigParseError_Error(t *testing.T) {
	t.Parallel()

	err := &ConfigParseError{Line: 7, Source: "x=", Err: errors.New("boom")}
	want := `malformed directive on line 7 "x=": boom`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	err.Line = 0
	want = `malformed directive "x=": boom`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
