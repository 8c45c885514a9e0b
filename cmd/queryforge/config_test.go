// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
)

func TestConfigShow(t *testing.T) {
	stdout, stderr, err := executeCommand(t, "config", "show")
	if err != nil {
		t.Fatalf("config show error = %v\nstderr:\n%s", err, stderr)
	}
	if !strings.Contains(stdout, `output_kind: "Exe"`) {
		t.Errorf("CUE output missing the default output kind:\n%s", stdout)
	}

	stdout, _, err = executeCommand(t, "config", "show", "--format", "toml")
	if err != nil {
		t.Fatalf("config show --format toml error = %v", err)
	}
	var raw map[string]any
	if err := toml.Unmarshal([]byte(stdout), &raw); err != nil {
		t.Fatalf("TOML output does not parse: %v\n%s", err, stdout)
	}
	if raw["target_framework"] != "net46" {
		t.Errorf("target_framework = %v, want net46", raw["target_framework"])
	}
}

func TestConfigInit(t *testing.T) {
	stdout, _, err := executeCommand(t, "config", "init")
	if err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if !strings.Contains(stdout, filepath.Join("", "config.cue")) {
		t.Errorf("config init output does not name the file:\n%s", stdout)
	}
}

func TestConfigShow_ExplicitFileMissing(t *testing.T) {
	_, stderr, err := executeCommand(t, "--config", filepath.Join(t.TempDir(), "missing.cue"), "config", "show")
	if err == nil {
		t.Fatal("expected an error for a missing explicit config file")
	}
	if !strings.Contains(stderr, "config init") {
		t.Errorf("stderr lacks the init suggestion:\n%s", stderr)
	}
}
