// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/shettydev/mukti-tui/internal/constants"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Client   ClientConfig   `toml:"client"`
	Provider ProviderConfig `toml:"provider"`
}

// ServerConfig holds settings for the Mukti backend.
type ServerConfig struct {
	BaseURL string `toml:"base_url"`
}

// ClientConfig holds local client behavior settings.
type ClientConfig struct {
	PageSize         int `toml:"page_size"`
	MaxMessageLength int `toml:"max_message_length"`
}

// ProviderConfig holds the offline-mode LLM provider settings.
type ProviderConfig struct {
	Endpoint    string  `toml:"endpoint"`
	Model       string  `toml:"model"`
	APIKeyEnv   string  `toml:"api_key_env"`
	Temperature float64 `toml:"temperature"`
	RateLimit   float64 `toml:"rate_limit"`
	RateBurst   int     `toml:"rate_burst"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL: "http://localhost:8080",
		},
		Client: ClientConfig{
			PageSize:         constants.DefaultArchivePageSize,
			MaxMessageLength: constants.DefaultMaxMessageLength,
		},
		Provider: ProviderConfig{
			Endpoint:    "http://localhost:11434",
			Model:       "llama3",
			APIKeyEnv:   "MUKTI_PROVIDER_API_KEY",
			Temperature: 0.7,
			RateLimit:   2.0,
			RateBurst:   3,
		},
	}
}

// Load reads configuration from a TOML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Load from file if it exists
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, err
			}
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MUKTI_SERVER_URL"); v != "" {
		cfg.Server.BaseURL = v
	}

	if v := os.Getenv("MUKTI_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Client.PageSize = n
		}
	}

	if v := os.Getenv("MUKTI_MAX_MESSAGE_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Client.MaxMessageLength = n
		}
	}

	if v := os.Getenv("MUKTI_PROVIDER_ENDPOINT"); v != "" {
		cfg.Provider.Endpoint = v
	}

	if v := os.Getenv("MUKTI_PROVIDER_MODEL"); v != "" {
		cfg.Provider.Model = v
	}

	if v := os.Getenv("MUKTI_PROVIDER_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Provider.Temperature = f
		}
	}

	if v := os.Getenv("MUKTI_PROVIDER_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Provider.RateLimit = f
		}
	}

	if v := os.Getenv("MUKTI_PROVIDER_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Provider.RateBurst = n
		}
	}
}

// APIKey resolves the offline provider API key from the configured env var.
func (p ProviderConfig) APIKey() string {
	if p.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(p.APIKeyEnv)
}

// DataDir returns the path to the Mukti data directory (~/.mukti).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".mukti"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
