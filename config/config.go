/*
config.go - Server configuration

PURPOSE:
  Loads server settings from an optional YAML file. Missing file means
  defaults; command-line flags in cmd/server override whatever the file
  says.

EXAMPLE FILE:
  port: 8080
  database: payroll.db
  allowed_origins:
    - http://localhost:5173

SEE ALSO:
  - cmd/server/main.go: flag wiring and precedence
*/
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all server settings.
type Config struct {
	Port           int      `yaml:"port"`
	Database       string   `yaml:"database"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Port:           8080,
		Database:       "payroll.db",
		AllowedOrigins: []string{"*"},
	}
}

// Load reads a YAML config file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: port must be in 1..65535, got %d", c.Port)
	}
	if c.Database == "" {
		return fmt.Errorf("config: database must be set")
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	return nil
}
