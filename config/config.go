package config

import (
	"fmt"
	"os"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort    = 3002
	defaultBaseURL = "http://localhost:3002"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
}

type AppConfig struct {
	Port int `yaml:"port"`
	// BaseURL is the public origin used when building share links.
	BaseURL     string   `yaml:"base_url"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
	// StatementTimeoutMillis caps each query; 0 keeps the server default.
	StatementTimeoutMillis int `yaml:"statement_timeout_millis"`
}

// Load reads the optional YAML file, expands ${ENV} placeholders inside it,
// then lets plain environment variables override the common settings.
func Load(path string) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Port:    defaultPort,
			BaseURL: defaultBaseURL,
		},
		Database: DatabaseConfig{
			StatementTimeoutMillis: 30000,
		},
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = port
		}
	}
	if v := os.Getenv("WRITIUM_URL"); v != "" {
		cfg.App.BaseURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.App),
		validation.Field(&c.Database),
	)
}

func (a AppConfig) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&a.BaseURL, validation.Required),
	)
}

func (d DatabaseConfig) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.DSN, validation.Required),
	)
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}
