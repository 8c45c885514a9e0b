// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"

	"github.com/charmbracelet/log"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "library", mutate: func(c *Config) { c.OutputKind = "Library" }},
		{name: "bad output kind", mutate: func(c *Config) { c.OutputKind = "Dll" }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "chatty" }, wantErr: true},
		{name: "no framework", mutate: func(c *Config) { c.TargetFramework = "" }, wantErr: true},
		{name: "no build tool", mutate: func(c *Config) { c.Tools.Build = "" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfig_Level(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.LogLevel = "debug"
	if cfg.Level() != log.DebugLevel {
		t.Errorf("Level() = %v, want debug", cfg.Level())
	}
	cfg.LogLevel = "bogus"
	if cfg.Level() != log.InfoLevel {
		t.Errorf("Level() = %v, want info fallback", cfg.Level())
	}
}
