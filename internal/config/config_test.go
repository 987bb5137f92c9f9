package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shettydev/mukti-tui/internal/constants"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Client.MaxMessageLength != constants.DefaultMaxMessageLength {
		t.Errorf("expected max_message_length=%d, got %d", constants.DefaultMaxMessageLength, cfg.Client.MaxMessageLength)
	}
	if cfg.Client.PageSize != constants.DefaultArchivePageSize {
		t.Errorf("expected page_size=%d, got %d", constants.DefaultArchivePageSize, cfg.Client.PageSize)
	}
	if cfg.Server.BaseURL == "" {
		t.Error("expected default server base_url")
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	content := `
[server]
base_url = "https://mukti.example.com"

[client]
page_size = 25
max_message_length = 2000

[provider]
endpoint = "http://custom:11434/v1"
model = "mistral"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.BaseURL != "https://mukti.example.com" {
		t.Errorf("expected custom base_url, got %s", cfg.Server.BaseURL)
	}
	if cfg.Client.PageSize != 25 {
		t.Errorf("expected page_size=25, got %d", cfg.Client.PageSize)
	}
	if cfg.Client.MaxMessageLength != 2000 {
		t.Errorf("expected max_message_length=2000, got %d", cfg.Client.MaxMessageLength)
	}
	if cfg.Provider.Model != "mistral" {
		t.Errorf("expected provider model=mistral, got %s", cfg.Provider.Model)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	os.Setenv("MUKTI_SERVER_URL", "https://env.example.com")
	os.Setenv("MUKTI_PAGE_SIZE", "10")
	defer func() {
		os.Unsetenv("MUKTI_SERVER_URL")
		os.Unsetenv("MUKTI_PAGE_SIZE")
	}()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.BaseURL != "https://env.example.com" {
		t.Errorf("expected env override base_url, got %s", cfg.Server.BaseURL)
	}
	if cfg.Client.PageSize != 10 {
		t.Errorf("expected env override page_size=10, got %d", cfg.Client.PageSize)
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("Load() should not error for non-existent file: %v", err)
	}

	// Should return defaults
	if cfg.Client.PageSize != constants.DefaultArchivePageSize {
		t.Errorf("expected default page_size, got %d", cfg.Client.PageSize)
	}
}

func TestProviderAPIKey(t *testing.T) {
	p := ProviderConfig{APIKeyEnv: "MUKTI_TEST_KEY"}

	if key := p.APIKey(); key != "" {
		t.Errorf("expected empty key, got %s", key)
	}

	os.Setenv("MUKTI_TEST_KEY", "secret-123")
	defer os.Unsetenv("MUKTI_TEST_KEY")

	if key := p.APIKey(); key != "secret-123" {
		t.Errorf("expected secret-123, got %s", key)
	}
}
