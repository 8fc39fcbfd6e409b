// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// isolateHome points the home directory at a temp dir and clears overrides.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, k := range []string{"OLLAMACHAT_URL", "OLLAMACHAT_MODEL", "OLLAMACHAT_SIM", "OLLAMACHAT_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.BaseURL != "http://localhost:11435/api" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if !cfg.UI.ShowThinking || !cfg.UI.ShowStats || cfg.UI.Markdown {
		t.Errorf("unexpected UI defaults: %+v", cfg.UI)
	}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("Timeout() = %v", cfg.Timeout())
	}
	if cfg.ConnectTimeout() != 0 {
		t.Errorf("ConnectTimeout() = %v, want 0", cfg.ConnectTimeout())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoad_NoFile(t *testing.T) {
	isolateHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want default", cfg.BaseURL)
	}
}

func TestLoad_TOMLKeepsUnsetDefaults(t *testing.T) {
	home := isolateHome(t)
	path := filepath.Join(home, ".ollamachat", "config.toml")
	writeFile(t, path, `
base_url = "http://gpu-box:11434/api/"
default_model = "llama3:8b"

[ui]
markdown = true

[sim]
seed = 42
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BaseURL != "http://gpu-box:11434/api" {
		t.Errorf("BaseURL = %q, trailing slash should be trimmed", cfg.BaseURL)
	}
	if cfg.DefaultModel != "llama3:8b" {
		t.Errorf("DefaultModel = %q", cfg.DefaultModel)
	}
	if !cfg.UI.Markdown {
		t.Error("Markdown should be set from file")
	}
	if !cfg.UI.ShowThinking {
		t.Error("ShowThinking should keep its default when absent from file")
	}
	if cfg.Sim.Seed != 42 || cfg.Sim.MaxDelayMs != 700 {
		t.Errorf("Sim = %+v", cfg.Sim)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 && runtime.GOOS != "windows" {
		t.Errorf("permissions = %o, want 600", perm)
	}
}

func TestLoad_JSONFallback(t *testing.T) {
	home := isolateHome(t)
	writeFile(t, filepath.Join(home, ".ollamachat", "config.json"), `{"default_model":"phi3","log":{"level":"debug"}}`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultModel != "phi3" || cfg.Log.Level != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadFromPath_Invalid(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "bad.toml")
	writeFile(t, path, `base_url = "ftp://example.com"`)

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verrs ValidateErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("error %v is not ValidateErrors", err)
	}
	if verrs[0].Field != "base_url" {
		t.Errorf("Field = %q", verrs[0].Field)
	}
}

func TestLoadFromPath_Malformed(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "broken.toml")
	writeFile(t, path, `base_url = `)

	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	isolateHome(t)
	t.Setenv("OLLAMACHAT_URL", "https://remote:8443/api/")
	t.Setenv("OLLAMACHAT_MODEL", "mistral")
	t.Setenv("OLLAMACHAT_SIM", "1")
	t.Setenv("OLLAMACHAT_LOG_LEVEL", "DEBUG")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.BaseURL != "https://remote:8443/api" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.DefaultModel != "mistral" {
		t.Errorf("DefaultModel = %q", cfg.DefaultModel)
	}
	if !cfg.Sim.Enabled {
		t.Error("Sim.Enabled should be true")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"empty url", func(c *Config) { c.BaseURL = "" }, "base_url"},
		{"bad scheme", func(c *Config) { c.BaseURL = "unix:///tmp/sock" }, "base_url"},
		{"missing host", func(c *Config) { c.BaseURL = "http:///api" }, "base_url"},
		{"negative timeout", func(c *Config) { c.Client.TimeoutSecs = -1 }, "client.timeout_secs"},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"negative delay", func(c *Config) { c.Sim.MaxDelayMs = -5 }, "sim.max_delay_ms"},
		{"min above max", func(c *Config) { c.Sim.MinDelayMs = 900 }, "sim.min_delay_ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			var verrs ValidateErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Validate() = %v, want ValidateErrors", err)
			}
			found := false
			for _, v := range verrs {
				if v.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("no error for %s in %v", tt.field, verrs)
			}
		})
	}
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.DefaultModel = "qwen2.5:7b"
	cfg.UI.ShowThinking = false
	cfg.Sim.Seed = 7

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# ollamachat configuration file") {
		t.Errorf("missing header comment:\n%s", data)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if loaded.DefaultModel != "qwen2.5:7b" || loaded.UI.ShowThinking || loaded.Sim.Seed != 7 {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	tests := []struct {
		key   string
		value string
		want  interface{}
	}{
		{"base_url", "http://other:1/api", "http://other:1/api"},
		{"default_model", "gemma", "gemma"},
		{"client.timeout_secs", "12", 12},
		{"ui.show_stats", "false", false},
		{"ui.markdown", "yes", true},
		{"sim.seed", "99", uint64(99)},
		{"log.level", "warn", "warn"},
	}

	for _, tt := range tests {
		if err := cfg.Set(tt.key, tt.value); err != nil {
			t.Fatalf("Set(%q) error = %v", tt.key, err)
		}
		got, err := cfg.Get(tt.key)
		if err != nil {
			t.Fatalf("Get(%q) error = %v", tt.key, err)
		}
		if got != tt.want {
			t.Errorf("Get(%q) = %v (%T), want %v (%T)", tt.key, got, got, tt.want, tt.want)
		}
	}

	for _, bad := range []string{"", "nope", "ui.nope", "ui", "base_url.x"} {
		if _, err := cfg.Get(bad); err == nil {
			t.Errorf("Get(%q) expected error", bad)
		}
	}
	if err := cfg.Set("client.timeout_secs", "abc"); err == nil {
		t.Error("Set with non-integer should fail")
	}
}

func TestGetAllKeys(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%q) error = %v", key, err)
		}
	}
}

func TestClone(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()
	clone.DefaultModel = "changed"
	if cfg.DefaultModel == "changed" {
		t.Error("Clone shares state with original")
	}
}

func TestString(t *testing.T) {
	s := Default().String()
	if !strings.Contains(s, `base_url = "http://localhost:11435/api"`) {
		t.Errorf("String() missing base_url:\n%s", s)
	}
}
