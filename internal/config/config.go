// Package config loads the favwatch configuration: a YAML file, an optional
// .env file, and FAVWATCH_* environment overrides, in that order of
// precedence (environment wins).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/favwatch/internal/retry"
)

// Defaults for optional settings.
const (
	DefaultDataDir             = "./favwatch-data"
	DefaultListenAddr          = "127.0.0.1:8753"
	DefaultQueryTimeoutSeconds = 12
)

// PresenceConfig configures the presence source transport.
type PresenceConfig struct {
	// BaseURL overrides the TibiaData endpoint (mirrors, tests).
	BaseURL string `yaml:"base_url,omitempty"`
	// QueryTimeoutSeconds bounds a single presence query.
	QueryTimeoutSeconds int `yaml:"query_timeout_seconds,omitempty"`

	Retry RetryConfig `yaml:"retry,omitempty"`
}

// RetryConfig configures transient-failure retries for presence queries.
type RetryConfig struct {
	Mode       string `yaml:"mode,omitempty"` // fixed|linear|exponential
	InitialMS  int    `yaml:"initial_ms,omitempty"`
	MaxMS      int    `yaml:"max_ms,omitempty"`
	MaxRetries *int   `yaml:"max_retries,omitempty"`
}

// Policy converts the raw fields into a retry.Policy with defaults applied.
func (r RetryConfig) Policy() retry.Policy {
	maxRetries := -1
	if r.MaxRetries != nil {
		maxRetries = *r.MaxRetries
	}
	return retry.NewPolicy(
		retry.BackoffMode(r.Mode),
		time.Duration(r.InitialMS)*time.Millisecond,
		time.Duration(r.MaxMS)*time.Millisecond,
		maxRetries,
	)
}

// NotifyConfig configures notification delivery. An empty NATS URL leaves
// only the structured-log notifier active.
type NotifyConfig struct {
	NATSURL     string `yaml:"nats_url,omitempty"`
	NATSSubject string `yaml:"nats_subject,omitempty"`
}

// Config is the full favwatch configuration.
type Config struct {
	// DataDir holds the shared state file and the transition history DB.
	DataDir string `yaml:"data_dir,omitempty"`
	// ListenAddr serves /healthz, /status and /metrics; empty disables it.
	ListenAddr string `yaml:"listen_addr,omitempty"`
	LogLevel   string `yaml:"log_level,omitempty"`

	Presence PresenceConfig `yaml:"presence,omitempty"`
	Notify   NotifyConfig   `yaml:"notify,omitempty"`
}

// QueryTimeout returns the per-query timeout as a duration.
func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.Presence.QueryTimeoutSeconds) * time.Second
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		DataDir:    DefaultDataDir,
		ListenAddr: DefaultListenAddr,
		LogLevel:   "info",
		Presence: PresenceConfig{
			QueryTimeoutSeconds: DefaultQueryTimeoutSeconds,
		},
	}
}

// Load reads path (missing file yields defaults), merges defaults, then
// applies environment overrides. A .env in the working directory is loaded
// first without overriding the existing process environment.
func Load(path string) (*Config, error) {
	// Missing .env is the normal case.
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	cfg.normalize()
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FAVWATCH_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("FAVWATCH_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("FAVWATCH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("FAVWATCH_PRESENCE_BASE_URL"); v != "" {
		cfg.Presence.BaseURL = v
	}
	if v := os.Getenv("FAVWATCH_QUERY_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Presence.QueryTimeoutSeconds = n
		}
	}
	if v := os.Getenv("FAVWATCH_NATS_URL"); v != "" {
		cfg.Notify.NATSURL = v
	}
	if v := os.Getenv("FAVWATCH_NATS_SUBJECT"); v != "" {
		cfg.Notify.NATSSubject = v
	}
}

func (c *Config) normalize() {
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Presence.QueryTimeoutSeconds <= 0 {
		c.Presence.QueryTimeoutSeconds = DefaultQueryTimeoutSeconds
	}
}
