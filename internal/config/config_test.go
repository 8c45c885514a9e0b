// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pelletier/go-toml/v2"

	"github.com/queryforge/queryforge/internal/issue"
	"github.com/queryforge/queryforge/pkg/querydoc"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.OutputKind != string(querydoc.OutputExe) {
		t.Errorf("OutputKind = %q, want Exe", cfg.OutputKind)
	}
	if cfg.TargetFramework != "net46" {
		t.Errorf("TargetFramework = %q, want net46", cfg.TargetFramework)
	}
	if cfg.Tools.Publish != "" {
		t.Errorf("publish enabled by default: %q", cfg.Tools.Publish)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoad_DefaultsWhenNoFiles(t *testing.T) {
	t.Parallel()

	res, err := Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir(), ProjectDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), res.Config, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if len(res.Files) != 0 {
		t.Errorf("Files = %v, want none", res.Files)
	}
}

func TestLoad_Layering(t *testing.T) {
	t.Parallel()

	cfgDir := t.TempDir()
	projectDir := t.TempDir()
	cuePath := writeFile(t, cfgDir, "config.cue", `
output_kind: "Library"
target_framework: "net472"
package_sources: ["https://feed.example/v3"]
tools: {
	publish: "nuget push"
}
`)
	tomlPath := writeFile(t, projectDir, SidecarFileName, `
output_kind = "WinExe"
allow_unsafe_code = true

[tools]
build_flags = ["/nologo"]
`)

	res, err := Load(context.Background(), LoadOptions{ConfigDirPath: cfgDir, ProjectDir: projectDir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg := res.Config

	if cfg.OutputKind != "WinExe" {
		t.Errorf("OutputKind = %q, sidecar should win over config file", cfg.OutputKind)
	}
	if cfg.TargetFramework != "net472" || !cfg.AllowUnsafeCode {
		t.Errorf("TargetFramework = %q, AllowUnsafeCode = %v", cfg.TargetFramework, cfg.AllowUnsafeCode)
	}
	if diff := cmp.Diff([]string{"https://feed.example/v3"}, cfg.PackageSources); diff != "" {
		t.Errorf("PackageSources mismatch (-want +got):\n%s", diff)
	}
	if cfg.Tools.Publish != "nuget push" || cfg.Tools.Build != "msbuild" {
		t.Errorf("Tools = %+v", cfg.Tools)
	}
	if diff := cmp.Diff([]string{"/nologo"}, cfg.Tools.BuildFlags); diff != "" {
		t.Errorf("BuildFlags mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{cuePath, tomlPath}, res.Files); diff != "" {
		t.Errorf("Files mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("QUERYFORGE_OUTPUT_KIND", "Library")
	t.Setenv("QUERYFORGE_TOOLS_RESTORE", "nuget restore")

	projectDir := t.TempDir()
	writeFile(t, projectDir, SidecarFileName, "output_kind = \"WinExe\"\n")

	res, err := Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir(), ProjectDir: projectDir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if res.Config.OutputKind != "Library" {
		t.Errorf("OutputKind = %q, environment should win over sidecar", res.Config.OutputKind)
	}
	if res.Config.Tools.Restore != "nuget restore" {
		t.Errorf("Tools.Restore = %q", res.Config.Tools.Restore)
	}
}

func TestLoad_InvalidEnvironmentValue(t *testing.T) {
	t.Setenv("QUERYFORGE_OUTPUT_KIND", "Module")

	_, err := Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Load() error = %v, want ErrInvalidConfig", err)
	}
	if !errors.Is(err, querydoc.ErrInvalidOutputKind) {
		t.Errorf("Load() error = %v, want ErrInvalidOutputKind in chain", err)
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cue     string
		sidecar string
	}{
		{name: "bad output kind", cue: `output_kind: "Module"`},
		{name: "unknown key", cue: `output: "Exe"`},
		{name: "bad framework", cue: `target_framework: "netcoreapp3.1"`},
		{name: "empty build tool", cue: `tools: build: ""`},
		{name: "cue syntax", cue: `output_kind: `},
		{name: "sidecar unknown key", sidecar: "kind = \"Exe\"\n"},
		{name: "sidecar wrong type", sidecar: "overwrite = \"yes\"\n"},
		{name: "sidecar syntax", sidecar: "overwrite = \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfgDir, projectDir := t.TempDir(), t.TempDir()
			if tt.cue != "" {
				writeFile(t, cfgDir, "config.cue", tt.cue)
			}
			if tt.sidecar != "" {
				writeFile(t, projectDir, SidecarFileName, tt.sidecar)
			}

			_, err := Load(context.Background(), LoadOptions{ConfigDirPath: cfgDir, ProjectDir: projectDir})
			if err == nil {
				t.Fatal("Load() error = nil")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) || ae.IssueId != issue.ConfigLoadFailedId {
				t.Errorf("Load() error = %v, want actionable config error", err)
			}
		})
	}
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	t.Parallel()

	_, err := Load(context.Background(), LoadOptions{ConfigFilePath: filepath.Join(t.TempDir(), "missing.cue")})
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("Load() error = %v", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Load(ctx, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.DumpHelperPackage = "ObjectDumper"
	cfg.PackageSources = []string{"https://a", "https://b"}

	dir := t.TempDir()
	path := writeFile(t, dir, "config.cue", GenerateCUE(cfg))

	res, err := Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load(generated) error = %v\n%s", err, GenerateCUE(cfg))
	}
	if diff := cmp.Diff(cfg, res.Config, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateTOML(t *testing.T) {
	t.Parallel()

	out, err := GenerateTOML(DefaultConfig())
	if err != nil {
		t.Fatalf("GenerateTOML() error = %v", err)
	}
	var back Config
	if err := toml.Unmarshal([]byte(out), &back); err != nil {
		t.Fatalf("generated TOML does not parse: %v\n%s", err, out)
	}
	if back.Tools.Build != "msbuild" || back.OutputKind != "Exe" {
		t.Errorf("decoded = %+v", back)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	path, err := CreateDefaultConfig()
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	if path != filepath.Join(dir, "config.cue") {
		t.Errorf("path = %q", path)
	}
	if err := os.WriteFile(path, []byte("output_kind: \"Library\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateDefaultConfig(); err != nil {
		t.Fatalf("second CreateDefaultConfig() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Library") {
		t.Error("existing config overwritten")
	}
}
