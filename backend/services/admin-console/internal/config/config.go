package config

import (
	"fmt"
	"strings"
	"time"

	libconfig "evhub/backend/libs/config"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config defines admin console configuration.
type Config struct {
	HTTP struct {
		Port                string `yaml:"port" env:"ADMIN_HTTP_PORT"`
		WriteTimeoutSeconds int    `yaml:"writeTimeoutSeconds" env:"ADMIN_HTTP_WRITE_TIMEOUT"`
	} `yaml:"http"`
	API struct {
		BaseURL        string `yaml:"baseUrl" env:"ADMIN_API_URL"`
		ClientVersion  string `yaml:"clientVersion" env:"ADMIN_APP_VERSION"`
		TimeoutSeconds int    `yaml:"timeoutSeconds" env:"ADMIN_API_TIMEOUT"`
		RetryAttempts  int    `yaml:"retryAttempts" env:"ADMIN_RETRY_ATTEMPTS"`
		RetryBaseMS    int    `yaml:"retryBaseMs" env:"ADMIN_RETRY_BASE_MS"`
	} `yaml:"api"`
	Proxy struct {
		Target  string `yaml:"target" env:"ADMIN_PROXY_TARGET"`
		Verbose bool   `yaml:"verbose" env:"ADMIN_PROXY_VERBOSE"`
	} `yaml:"proxy"`
	Session struct {
		Backend string `yaml:"backend" env:"ADMIN_SESSION_BACKEND"`
		Secret  string `yaml:"secret" env:"ADMIN_SESSION_SECRET"`
	} `yaml:"session"`
	Redis struct {
		Addr     string `yaml:"addr" env:"ADMIN_REDIS_ADDR"`
		Password string `yaml:"password" env:"ADMIN_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"ADMIN_REDIS_DB"`
	} `yaml:"redis"`
	Cache struct {
		Driver string `yaml:"driver" env:"ADMIN_CACHE_DRIVER"`
		DSN    string `yaml:"dsn" env:"ADMIN_CACHE_DSN"`
	} `yaml:"cache"`
	History struct {
		Backend string `yaml:"backend" env:"ADMIN_HISTORY_BACKEND"`
	} `yaml:"history"`
	Batch struct {
		Size    int `yaml:"size" env:"ADMIN_BATCH_SIZE"`
		DelayMS int `yaml:"delayMs" env:"ADMIN_BATCH_DELAY_MS"`
	} `yaml:"batch"`
	Log struct {
		Level string `yaml:"level" env:"LOG_LEVEL"`
	} `yaml:"log"`
}

// Load configuration via shared helper.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8090"
	cfg.HTTP.WriteTimeoutSeconds = 120
	cfg.API.BaseURL = "http://localhost:5227/api"
	cfg.API.ClientVersion = "1.0.0"
	cfg.API.TimeoutSeconds = 30
	cfg.API.RetryAttempts = 3
	cfg.API.RetryBaseMS = 1000
	cfg.Proxy.Target = "http://localhost:5227"
	cfg.Session.Backend = BackendMemory
	cfg.Redis.Addr = "localhost:6379"
	cfg.Cache.Driver = "sqlite"
	cfg.Cache.DSN = "evhub-cache.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	cfg.History.Backend = BackendMemory
	cfg.Batch.Size = 5
	cfg.Batch.DelayMS = 1000
	cfg.Log.Level = "info"

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerations and required values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("config: api base url required")
	}
	if err := oneOf("session backend", c.Session.Backend, BackendMemory, BackendRedis); err != nil {
		return err
	}
	if err := oneOf("history backend", c.History.Backend, BackendMemory, BackendRedis); err != nil {
		return err
	}
	if err := oneOf("cache driver", c.Cache.Driver, "sqlite", "postgres"); err != nil {
		return err
	}
	if strings.TrimSpace(c.Cache.DSN) == "" {
		return fmt.Errorf("config: cache dsn required")
	}
	return nil
}

func oneOf(name, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("config: %s must be one of %s, got %q", name, strings.Join(allowed, ", "), value)
}

// UsesRedis reports whether any component needs the redis client.
func (c *Config) UsesRedis() bool {
	return c.Session.Backend == BackendRedis || c.History.Backend == BackendRedis
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8090"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// WriteTimeout bounds one console response.
func (c *Config) WriteTimeout() time.Duration {
	if c.HTTP.WriteTimeoutSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(c.HTTP.WriteTimeoutSeconds) * time.Second
}

// APITimeout returns the client timeout constant.
func (c *Config) APITimeout() time.Duration {
	if c.API.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// RetryBase returns the first backoff delay.
func (c *Config) RetryBase() time.Duration {
	if c.API.RetryBaseMS <= 0 {
		return time.Second
	}
	return time.Duration(c.API.RetryBaseMS) * time.Millisecond
}

// BatchDelay returns the pause between batch groups.
func (c *Config) BatchDelay() time.Duration {
	if c.Batch.DelayMS < 0 {
		return 0
	}
	return time.Duration(c.Batch.DelayMS) * time.Millisecond
}
