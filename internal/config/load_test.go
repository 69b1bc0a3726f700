package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadProjectConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("base url = %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutMS != 30000 {
		t.Errorf("timeout = %d", cfg.API.TimeoutMS)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("level = %q", cfg.Log.Level)
	}
	if cfg.Audit.ExportPath != "audit_logs.csv" {
		t.Errorf("export path = %q", cfg.Audit.ExportPath)
	}
}

func TestLoadExplicitMissingPathFails(t *testing.T) {
	if _, err := LoadProjectConfig(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatal("want error for explicit missing path")
	}
}

func TestLoadParsesAndDefaults(t *testing.T) {
	path := writeConfig(t, `
version: 1
api:
  base_url: "http://localhost:8000"
auth:
  client_id: "abc-123"
log:
  level: debug
`)
	cfg, err := LoadProjectConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Errorf("base url = %q", cfg.API.BaseURL)
	}
	if cfg.Auth.ClientID != "abc-123" {
		t.Errorf("client id = %q", cfg.Auth.ClientID)
	}
	// Unset sections still get defaults.
	if cfg.API.TimeoutMS != 30000 {
		t.Errorf("timeout = %d", cfg.API.TimeoutMS)
	}
	if len(cfg.Auth.Scopes) == 0 {
		t.Error("scopes not defaulted")
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "version: 1\nsurprise: true\n")
	_, err := LoadProjectConfig(path)
	if err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("err = %v", err)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad version", "version: 2\n"},
		{"bad base url", "version: 1\napi:\n  base_url: \"ftp://x\"\n"},
		{"bad log level", "version: 1\nlog:\n  level: chatty\n"},
		{"negative timeout", "version: 1\napi:\n  timeout_ms: -5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.yaml)
			if _, err := LoadProjectConfig(path); err == nil {
				t.Fatal("want validation error")
			}
		})
	}
}

func TestDotEnvLoadedFromConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "llmops.yml")
	if err := os.WriteFile(path, []byte("version: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("LLMOPS_TEST_MARKER=set\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LLMOPS_TEST_MARKER", "")
	os.Unsetenv("LLMOPS_TEST_MARKER")

	if _, err := LoadProjectConfig(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("LLMOPS_TEST_MARKER"); got != "set" {
		t.Errorf("marker = %q", got)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "llmops.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}
