package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the default configuration file location
const EnvConfigPath = "RELPUB_CONFIG"

// DefaultHost is the host git credentials are requested for
const DefaultHost = "github.com"

// Config represents the relpub configuration
type Config struct {
	GitHub  GitHubConfig  `yaml:"github"`
	Release ReleaseConfig `yaml:"release,omitempty"`
}

// GitHubConfig represents GitHub connection and credential settings
type GitHubConfig struct {
	Username  string `yaml:"username,omitempty"`
	Token     string `yaml:"token,omitempty"`
	Host      string `yaml:"host,omitempty"`
	APIURL    string `yaml:"api_url,omitempty"`
	UploadURL string `yaml:"upload_url,omitempty"`
}

// ReleaseConfig represents defaults applied to published releases
type ReleaseConfig struct {
	Target string `yaml:"target,omitempty"`
}

// CredentialHost returns the host to request git credentials for
func (c *Config) CredentialHost() string {
	if c.GitHub.Host != "" {
		return c.GitHub.Host
	}
	return DefaultHost
}

// LoadConfig loads configuration from the default location
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadConfigFromPath(configPath)
}

// LoadConfigFromPath loads configuration from a specific path
func LoadConfigFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil // Return empty config if file doesn't exist
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveConfig saves configuration to the default location
func (c *Config) SaveConfig() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	return c.SaveConfigToPath(configPath)
}

// SaveConfigToPath saves configuration to a specific path.
// The file may hold a token, so it is only readable by its owner.
func (c *Config) SaveConfigToPath(path string) error {
	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the configuration file path, honoring RELPUB_CONFIG
func GetConfigPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".relpub", "config.yaml"), nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.GitHub.Host != "" && c.GitHub.Host != DefaultHost && c.GitHub.APIURL == "" {
		return fmt.Errorf("github.api_url is required when github.host is not %s", DefaultHost)
	}

	if c.GitHub.UploadURL != "" && c.GitHub.APIURL == "" {
		return fmt.Errorf("github.api_url is required when github.upload_url is set")
	}

	// Without upload_url the upload endpoint is derived from an /api/v3/ API URL
	if c.GitHub.APIURL != "" && c.GitHub.UploadURL == "" {
		api := strings.TrimSuffix(c.GitHub.APIURL, "/")
		if !strings.HasSuffix(api, "/api/v3") && api != "https://api.github.com" {
			return fmt.Errorf("github.upload_url is required when github.api_url does not end in /api/v3/")
		}
	}

	return nil
}
