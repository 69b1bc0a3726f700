package config

type ProjectConfig struct {
	Version int         `yaml:"version"`
	API     APIConfig   `yaml:"api,omitempty"`
	Auth    AuthConfig  `yaml:"auth,omitempty"`
	Log     LogConfig   `yaml:"log,omitempty"`
	Audit   AuditConfig `yaml:"audit,omitempty"`
}

type APIConfig struct {
	BaseURL   string `yaml:"base_url,omitempty"`
	TimeoutMS int    `yaml:"timeout_ms,omitempty"`
}

type AuthConfig struct {
	ClientID    string   `yaml:"client_id,omitempty"`
	Authority   string   `yaml:"authority,omitempty"`
	Scopes      []string `yaml:"scopes,omitempty"`
	SessionFile string   `yaml:"session_file,omitempty"`
}

type LogConfig struct {
	Path  string `yaml:"path,omitempty"`
	Level string `yaml:"level,omitempty"`
}

type AuditConfig struct {
	ExportPath string `yaml:"export_path,omitempty"`
}
