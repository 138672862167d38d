package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration loaded from YAML with environment
// overrides. Zero values fall back to defaults.
type Config struct {
	DBPath       string        `yaml:"db_path"`        // SQLite database file
	Listen       string        `yaml:"listen"`         // HTTP listen address
	AgentType    string        `yaml:"agent_type"`     // claude-code-cli | mock
	AgentBin     string        `yaml:"agent_bin"`      // agent binary path
	AgentTimeout time.Duration `yaml:"agent_timeout"`  // per-stage generation timeout
	LogLevel     string        `yaml:"log_level"`      // debug | info | warn | error
	TemplateDir  string        `yaml:"template_dir"`   // prompt template overrides
	Storage      StorageConfig `yaml:"storage"`        // artifact archive backend
	Webhooks     []Webhook     `yaml:"webhooks"`       // notification webhooks
}

// StorageConfig selects the artifact archive backend
type StorageConfig struct {
	Type     string `yaml:"type"`      // mock | local | s3
	BaseDir  string `yaml:"base_dir"`  // local backend base directory
	S3Bucket string `yaml:"s3_bucket"` // s3 backend bucket
	S3Prefix string `yaml:"s3_prefix"` // optional key prefix
	S3Region string `yaml:"s3_region"` // optional region override
}

// Webhook is one notification target
type Webhook struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Default returns the built-in configuration
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".devpilot")
	return Config{
		DBPath:       filepath.Join(base, "devpilot.db"),
		Listen:       "127.0.0.1:8787",
		AgentType:    "claude-code-cli",
		AgentBin:     "claude",
		AgentTimeout: 10 * time.Minute,
		LogLevel:     "info",
		Storage: StorageConfig{
			Type:    "local",
			BaseDir: filepath.Join(base, "archive"),
		},
	}
}

// DefaultPath returns the default config file location
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".devpilot", "config.yaml")
}

// Load reads configuration from the given YAML file, applies defaults for
// unset fields and environment overrides on top. A missing file is not an
// error; defaults are used.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if cfg.AgentTimeout <= 0 {
		cfg.AgentTimeout = 10 * time.Minute
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DEVPILOT_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("DEVPILOT_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("DEVPILOT_AGENT_TYPE"); v != "" {
		cfg.AgentType = v
	}
	if v := os.Getenv("DEVPILOT_AGENT_BIN"); v != "" {
		cfg.AgentBin = v
	}
	if v := os.Getenv("DEVPILOT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DEVPILOT_STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("DEVPILOT_S3_BUCKET"); v != "" {
		cfg.Storage.S3Bucket = v
	}
}
