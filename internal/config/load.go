package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigYML  = "llmops.yml"
	defaultConfigYAML = "llmops.yaml"
)

// DefaultBaseURL is the deployment backend targeted when neither the
// LLMOPS_API_URL environment variable nor the config file names one. It is
// the single fallback for every console surface.
const DefaultBaseURL = "https://smart-factory-backend.eastus2-01.azurewebsites.net"

// LoadProjectConfig loads and validates a project configuration. An empty
// path falls back to llmops.yml / llmops.yaml in the working directory; if
// neither exists, defaults are returned so the console can start against the
// deployment backend without any local setup.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	configPath, err := resolveConfigPath(path)
	if err != nil {
		if path == "" {
			cfg := &ProjectConfig{Version: 1}
			applyDefaults(cfg)
			return cfg, nil
		}
		return nil, err
	}

	// Load .env from the config directory if present. Missing or malformed
	// .env files are not fatal; the variables may already be set.
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if _, err := os.Stat(envPath); err == nil {
		_ = godotenv.Load(envPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := parseConfig(data)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseConfig(data []byte) (*ProjectConfig, error) {
	var cfg ProjectConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func resolveConfigPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}

	for _, p := range []string{defaultConfigYML, defaultConfigYAML} {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("config not found (looked for %s or %s)", defaultConfigYML, defaultConfigYAML)
}

func applyDefaults(cfg *ProjectConfig) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
	if cfg.API.TimeoutMS == 0 {
		cfg.API.TimeoutMS = 30000
	}
	if cfg.Auth.Authority == "" {
		cfg.Auth.Authority = "https://login.microsoftonline.com/organizations/v2.0"
	}
	if len(cfg.Auth.Scopes) == 0 {
		cfg.Auth.Scopes = []string{"openid", "profile", "offline_access"}
	}
	if cfg.Auth.SessionFile == "" {
		cfg.Auth.SessionFile = defaultSessionFile()
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Audit.ExportPath == "" {
		cfg.Audit.ExportPath = "audit_logs.csv"
	}
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".llmops", "session.json")
	}
	return filepath.Join(dir, "llmops-console", "session.json")
}

func validateConfig(cfg *ProjectConfig) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d", cfg.Version)
	}
	if !strings.HasPrefix(cfg.API.BaseURL, "http://") && !strings.HasPrefix(cfg.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutMS < 0 {
		return fmt.Errorf("api.timeout_ms must not be negative")
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	return nil
}
