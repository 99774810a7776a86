package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds user-tunable settings loaded from config.yaml.
type Config struct {
	// BackupRoot overrides the default backup root when non-empty.
	BackupRoot string `yaml:"backup_root"`

	// MaxRisk is the default risk ceiling applied when building plans
	// ("LOW", "MEDIUM", or "HIGH"). Empty means HIGH (no filtering).
	MaxRisk string `yaml:"max_risk"`
}

// Load reads the config file at path. A missing file is not an error and
// yields the zero Config; a malformed file is.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Apply overlays the config's settings onto the resolved paths.
func (c *Config) Apply(p *Paths) {
	if c.BackupRoot != "" {
		p.BackupRoot = c.BackupRoot
	}
}
