package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Config is the service configuration. Values come from an optional YAML
// file, then environment variables, then defaults.
type Config struct {
	Env      string `yaml:"env"`
	HTTPAddr string `yaml:"http_addr"`
	LogLevel string `yaml:"log_level"`

	JWTSecret string `yaml:"jwt_secret"`

	StoreBackend  string `yaml:"store_backend"`
	EventsBackend string `yaml:"events_backend"`
	RedisURL      string `yaml:"redis_url"`

	WorldAppID  string `yaml:"world_app_id"`
	WorldAction string `yaml:"world_action"`
	WorldAPIURL string `yaml:"world_api_url"`

	RateLimit    int           `yaml:"rate_limit"`
	RateWindow   time.Duration `yaml:"rate_window"`
	RateFailOpen bool          `yaml:"rate_fail_open"`
}

// Load reads path (when not empty), applies the environment and validates
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether insecure fallbacks are forbidden
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func (c *Config) applyEnv() error {
	setString(&c.Env, "APP_ENV")
	setString(&c.HTTPAddr, "HTTP_ADDR")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.StoreBackend, "STORE_BACKEND")
	setString(&c.EventsBackend, "EVENTS_BACKEND")
	setString(&c.RedisURL, "REDIS_URL")
	setString(&c.WorldAppID, "WORLD_APP_ID")
	setString(&c.WorldAction, "WORLD_ACTION")
	setString(&c.WorldAPIURL, "WORLD_API_URL")

	if v := os.Getenv("RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse RATE_LIMIT: %w", err)
		}
		c.RateLimit = n
	}
	if v := os.Getenv("RATE_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse RATE_WINDOW: %w", err)
		}
		c.RateWindow = d
	}
	if v := os.Getenv("RATE_FAIL_OPEN"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse RATE_FAIL_OPEN: %w", err)
		}
		c.RateFailOpen = b
	}
	return nil
}

func (c *Config) applyDefaults() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	if c.Env == "" {
		c.Env = EnvDevelopment
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":9000"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.StoreBackend == "" {
		c.StoreBackend = BackendMemory
	}
	if c.EventsBackend == "" {
		c.EventsBackend = BackendNone
	}
	if c.RedisURL == "" {
		c.RedisURL = "redis://localhost:6379/0"
	}
	if c.RateLimit == 0 {
		c.RateLimit = 10
	}
	if c.RateWindow == 0 {
		c.RateWindow = time.Minute
	}
}

// Validate reports every problem at once
func (c *Config) Validate() error {
	var errs []string
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		errs = append(errs, "APP_ENV must be development or production")
	}
	if c.IsProduction() && c.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET is required in production")
	}
	if c.IsProduction() && c.WorldAppID == "" {
		errs = append(errs, "WORLD_APP_ID is required in production")
	}
	if c.StoreBackend != BackendMemory && c.StoreBackend != BackendRedis {
		errs = append(errs, "STORE_BACKEND must be memory or redis")
	}
	if c.EventsBackend != BackendNone && c.EventsBackend != BackendRedis {
		errs = append(errs, "EVENTS_BACKEND must be none or redis")
	}
	if c.RateLimit <= 0 {
		errs = append(errs, "RATE_LIMIT must be > 0")
	}
	if c.RateWindow <= 0 {
		errs = append(errs, "RATE_WINDOW must be > 0")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
