package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port             string        `yaml:"port"`
	JWTSecret        string        `yaml:"jwt_secret"`
	TokenTTL         time.Duration `yaml:"token_ttl"`
	NotifyResetDelay time.Duration `yaml:"notify_reset_delay"`
	LogLevel         string        `yaml:"log_level"`
	LogFormat        string        `yaml:"log_format"`
	AllowedOrigins   []string      `yaml:"allowed_origins"`
	Menu             []MenuItem    `yaml:"menu"`
}

// MenuItem is the file representation of a product. Price is a decimal string.
type MenuItem struct {
	ID        string `yaml:"id"`
	Code      string `yaml:"code"`
	Name      string `yaml:"name"`
	Category  string `yaml:"category"`
	Price     string `yaml:"price"`
	Keywords  string `yaml:"keywords"`
	Available *bool  `yaml:"available"`
}

func defaults() *Config {
	return &Config{
		Port:             "8081",
		JWTSecret:        "dev-secret-change-in-production",
		TokenTTL:         12 * time.Hour,
		NotifyResetDelay: 3 * time.Second,
		LogLevel:         "info",
		LogFormat:        "json",
		AllowedOrigins:   []string{"http://localhost:5173"},
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by CONFIG_FILE, and finally environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = strings.Split(v, ",")
	}

	var err error
	if cfg.NotifyResetDelay, err = getDuration("NOTIFY_RESET_DELAY", cfg.NotifyResetDelay); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", cfg.TokenTTL); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
