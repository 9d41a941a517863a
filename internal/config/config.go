package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	CurrentVersion = 1
	DefaultPath    = "~/.sqldrift/sqldrift.yaml"
)

// Config is the top-level configuration. Every field can also be set on the
// command line; the file only saves retyping connection details.
type Config struct {
	Version     int               `yaml:"version"`
	Mode        string            `yaml:"mode,omitempty"`
	Source      string            `yaml:"source,omitempty"`
	Target      string            `yaml:"target,omitempty"`
	Output      string            `yaml:"output,omitempty"`
	Concurrency ConcurrencyConfig `yaml:"concurrency,omitempty"`
	Logging     LogConfig         `yaml:"logging,omitempty"`
}

// ConcurrencyConfig bounds how many statements are fetched or parsed at once.
type ConcurrencyConfig struct {
	MaxConnections int `yaml:"max_connections,omitempty"` // default 8, max 32
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level         string `yaml:"level,omitempty"`          // debug, info, warn, error
	Directory     string `yaml:"directory,omitempty"`      // default ~/.sqldrift/logs/
	RetentionDays int    `yaml:"retention_days,omitempty"` // default 30
}

// Load reads and parses the config file from the given path. An empty path
// means the default location, and a missing file there is fine: flags alone
// are a complete configuration. An explicit path that cannot be read is an
// error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = ExpandHome(DefaultPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			cfg := &Config{Version: CurrentVersion}
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentVersion)
	}

	if err := cfg.resolveSecrets(); err != nil {
		return nil, fmt.Errorf("resolving secrets: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the config to the given path.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ExpandHome(DefaultPath)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = "file"
	}
	if c.Concurrency.MaxConnections == 0 {
		c.Concurrency.MaxConnections = 8
	}
	if c.Concurrency.MaxConnections > 32 {
		c.Concurrency.MaxConnections = 32
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Directory == "" {
		c.Logging.Directory = ExpandHome("~/.sqldrift/logs/")
	}
	if c.Logging.RetentionDays == 0 {
		c.Logging.RetentionDays = 30
	}
}

var secretPattern = regexp.MustCompile(`\$\{(ENV|VAULT|AWS_SM):([^}]+)\}`)

func (c *Config) resolveSecrets() error {
	var err error
	c.Source, err = ResolveValue(c.Source)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	c.Target, err = ResolveValue(c.Target)
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}
	return nil
}

// ResolveValue resolves secret references embedded in a string value.
// Connection strings usually carry the reference in the password position,
// so each reference is replaced in place rather than the whole value.
func ResolveValue(val string) (string, error) {
	matches := secretPattern.FindAllStringSubmatch(val, -1)
	for _, m := range matches {
		provider := m[1]
		ref := m[2]

		var resolved string
		var err error
		switch provider {
		case "ENV":
			resolved = os.Getenv(ref)
			if resolved == "" {
				return "", fmt.Errorf("environment variable %s not set", ref)
			}
		case "VAULT":
			resolved, err = resolveVault(ref)
			if err != nil {
				return "", err
			}
		case "AWS_SM":
			resolved, err = resolveAWSSecretsManager(ref)
			if err != nil {
				return "", err
			}
		}

		val = strings.Replace(val, m[0], resolved, 1)
	}
	return val, nil
}

// ExpandHome expands ~ to the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
