package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	AI       AIConfig       `yaml:"ai"`
	CMS      CMSConfig      `yaml:"cms"`
	Storage  StorageConfig  `yaml:"storage"`
	Auth     AuthConfig     `yaml:"auth"`
}

// ServerConfig holds the HTTP and metrics listener settings
type ServerConfig struct {
	Port        int `yaml:"port"`
	MetricsPort int `yaml:"metrics_port"`
}

// DatabaseConfig holds the persistence settings
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite3" or "postgres"
	DSN    string `yaml:"dsn"`
}

// AIConfig holds the settings for the image identification model
type AIConfig struct {
	Model          string `yaml:"model"`
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// CMSConfig holds the settings for the checklist content repository
type CMSConfig struct {
	BaseURL        string `yaml:"base_url"`
	AccessToken    string `yaml:"access_token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// StorageConfig holds the photo object storage settings
type StorageConfig struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Bucket          string `yaml:"bucket"`
	PublicBaseURL   string `yaml:"public_base_url"`
	UseSSL          bool   `yaml:"use_ssl"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
}

// AuthConfig holds the manager API authentication settings
type AuthConfig struct {
	Enabled   bool   `yaml:"enabled"`
	JWTSecret string `yaml:"jwt_secret"`
}

// Timeout returns the bounded wait for identification calls
func (c AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Timeout returns the bounded wait for checklist fetches
func (c CMSConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Timeout returns the bounded wait for photo uploads
func (c StorageConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load reads the configuration file and applies environment overrides.
// Secrets are expected from the environment in deployed setups; the file
// values act as development defaults.
func Load(path string) (*Config, error) {
	config := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(config)
	applyFallbacks(config)
	return config, nil
}

func defaults() *Config {
	config := &Config{}
	config.Server.Port = 8080
	config.Server.MetricsPort = 9090
	config.Database.Driver = "sqlite3"
	config.Database.DSN = "equipcert.db"
	config.AI.Model = "gpt-4o-mini"
	config.AI.TimeoutSeconds = 30
	config.CMS.TimeoutSeconds = 10
	config.Storage.Bucket = "inspection-photos"
	config.Storage.TimeoutSeconds = 20
	return config
}

func applyEnvOverrides(config *Config) {
	if v := os.Getenv("EQUIPCERT_AI_API_KEY"); v != "" {
		config.AI.APIKey = v
	}
	if v := os.Getenv("EQUIPCERT_CMS_TOKEN"); v != "" {
		config.CMS.AccessToken = v
	}
	if v := os.Getenv("EQUIPCERT_STORAGE_ACCESS_KEY"); v != "" {
		config.Storage.AccessKeyID = v
	}
	if v := os.Getenv("EQUIPCERT_STORAGE_SECRET_KEY"); v != "" {
		config.Storage.SecretAccessKey = v
	}
	if v := os.Getenv("EQUIPCERT_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
}

func applyFallbacks(config *Config) {
	if config.AI.TimeoutSeconds <= 0 {
		config.AI.TimeoutSeconds = 30
	}
	if config.CMS.TimeoutSeconds <= 0 {
		config.CMS.TimeoutSeconds = 10
	}
	if config.Storage.TimeoutSeconds <= 0 {
		config.Storage.TimeoutSeconds = 20
	}
}
