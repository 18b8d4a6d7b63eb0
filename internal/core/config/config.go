package config

import (
	"time"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Wallet      WalletConfig   `yaml:"wallet"`
	Registry    RegistryConfig `yaml:"registry"`
	Server      ServerConfig   `yaml:"server"`
	Logging     LoggingConfig  `yaml:"logging"`
	AutoConnect bool           `yaml:"auto_connect"`
}

// WalletConfig describes how to reach the wallet provider.
type WalletConfig struct {
	Name      string        `yaml:"name"`
	URL       string        `yaml:"url"`        // JSON-RPC endpoint; empty = no wallet
	NotifyURL string        `yaml:"notify_url"` // websocket event feed, optional
	Timeout   time.Duration `yaml:"timeout"`
}

// RegistryConfig points at the deployment artifact.
type RegistryConfig struct {
	Artifact string `yaml:"artifact"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"` // 0 disables the status server
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}
