package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML content, expanding environment variables first.
func Parse(data []byte) (*AppConfig, error) {
	cfg := AppConfig{AutoConnect: true}

	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Wallet.Name == "" {
		cfg.Wallet.Name = "wallet"
	}
	if cfg.Wallet.Timeout == 0 {
		cfg.Wallet.Timeout = 30 * time.Second
	}
	if cfg.Registry.Artifact == "" {
		cfg.Registry.Artifact = "build/contracts/ArtAuction.json"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return &cfg, nil
}
