// Package config gathers the runtime settings of odh-assistant from the
// environment and an optional YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/vitebski/odh-assistant/internal/utils"
	"gopkg.in/yaml.v3"
)

const (
	SourceMySQL  = "mysql"
	SourceSample = "sample"
)

// DatabaseConfig holds the MySQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Port     string `yaml:"port"`
}

// Config holds all settings
type Config struct {
	Database        DatabaseConfig `yaml:"database"`
	Source          string         `yaml:"source"`
	ListenAddr      string         `yaml:"listen_addr"`
	PreviewPageSize int            `yaml:"preview_page_size"`
	PreviewTimeout  time.Duration  `yaml:"preview_timeout"`
	SampleRows      int            `yaml:"sample_rows"`
}

// Load reads the configuration from ODH_* environment variables
func Load() (*Config, error) {
	cfg := fromEnv()
	cfg.defaultSource()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads the environment configuration and overlays the YAML file at
// path. The source default and validation apply to the merged settings.
func LoadFile(path string) (*Config, error) {
	cfg := fromEnv()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.defaultSource()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromEnv() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     os.Getenv("ODH_DB_HOST"),
			User:     os.Getenv("ODH_DB_USER"),
			Password: os.Getenv("ODH_DB_PASSWORD"),
			Database: os.Getenv("ODH_DB_DATABASE"),
			Port:     getEnvOrDefault("ODH_DB_PORT", "3306"),
		},
		Source:          os.Getenv("ODH_SOURCE"),
		ListenAddr:      getEnvOrDefault("ODH_LISTEN_ADDR", ":8080"),
		PreviewPageSize: utils.GetEnvInt("ODH_PREVIEW_PAGE_SIZE", 25),
		PreviewTimeout:  time.Duration(utils.GetEnvInt("ODH_PREVIEW_TIMEOUT_SECONDS", 10)) * time.Second,
		SampleRows:      utils.GetEnvInt("ODH_SAMPLE_ROWS", 100),
	}
}

// defaultSource picks mysql when a database is configured, else the demo catalogue
func (c *Config) defaultSource() {
	if c.Source != "" {
		return
	}
	c.Source = SourceSample
	if c.Database.Database != "" {
		c.Source = SourceMySQL
	}
}

// Validate checks the configuration
func (c *Config) Validate() error {
	switch c.Source {
	case SourceMySQL:
		if c.Database.Database == "" {
			return fmt.Errorf("source %s needs a database name (ODH_DB_DATABASE)", SourceMySQL)
		}
	case SourceSample:
	default:
		return fmt.Errorf("unknown source %q, expected %s or %s", c.Source, SourceMySQL, SourceSample)
	}
	if c.PreviewPageSize <= 0 {
		return fmt.Errorf("preview page size must be positive, got %d", c.PreviewPageSize)
	}
	if c.SampleRows < 0 {
		return fmt.Errorf("sample rows must not be negative, got %d", c.SampleRows)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
