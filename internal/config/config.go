// Package config loads and validates linkrot configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override (LINKROT_STORE_TOKEN, ...).
const EnvPrefix = "LINKROT"

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Store    StoreConfig    `mapstructure:"store"`
	Checker  CheckerConfig  `mapstructure:"checker"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Progress ProgressConfig `mapstructure:"progress"`
}

// StoreConfig points the client at the bookmark store.
type StoreConfig struct {
	BaseURL            string  `mapstructure:"base_url"`
	Token              string  `mapstructure:"token"`
	UserAgent          string  `mapstructure:"user_agent"`
	TimeoutSeconds     int     `mapstructure:"timeout_seconds"`
	MinIntervalSeconds float64 `mapstructure:"min_interval_seconds"`
}

// CheckerConfig tunes the link checker. Pool size and per-check timeout are
// fixed in the checker itself.
type CheckerConfig struct {
	UserAgent    string   `mapstructure:"user_agent"`
	SkipDomains  []string `mapstructure:"skip_domains"`
	PerHostRPS   float64  `mapstructure:"per_host_rps"`
	MaxBodyBytes int      `mapstructure:"max_body_bytes"`
}

// ArchiveConfig configures the snapshot lookups.
type ArchiveConfig struct {
	Endpoint       string  `mapstructure:"endpoint"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	RPS            float64 `mapstructure:"rps"`
}

// LoggingConfig toggles zap development features and the minimum level.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// MetricsConfig enables the /metrics and /healthz listener for a run.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// ProgressConfig sizes the progress hub.
type ProgressConfig struct {
	BufferSize     int  `mapstructure:"buffer_size"`
	MaxBatchEvents int  `mapstructure:"max_batch_events"`
	MaxBatchWaitMs int  `mapstructure:"max_batch_wait_ms"`
	LogEvents      bool `mapstructure:"log_events"`
	Terminal       bool `mapstructure:"terminal"`
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"token": "store.token",
}

// Load builds a Config from defaults, an optional file, LINKROT_* env vars
// and any changed flags, in increasing precedence.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.base_url", "https://api.pinboard.in/v1")
	v.SetDefault("store.token", "")
	v.SetDefault("store.user_agent", "linkrot/0.1")
	v.SetDefault("store.timeout_seconds", 30)
	v.SetDefault("store.min_interval_seconds", 3)
	v.SetDefault("checker.user_agent", "")
	v.SetDefault("checker.skip_domains", []string{})
	v.SetDefault("checker.per_host_rps", 0)
	v.SetDefault("checker.max_body_bytes", 1<<20)
	v.SetDefault("archive.endpoint", "https://archive.org/wayback/available")
	v.SetDefault("archive.timeout_seconds", 30)
	v.SetDefault("archive.rps", 1)
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "warn")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", "127.0.0.1:9464")
	v.SetDefault("progress.buffer_size", 1024)
	v.SetDefault("progress.max_batch_events", 256)
	v.SetDefault("progress.max_batch_wait_ms", 250)
	v.SetDefault("progress.log_events", false)
	v.SetDefault("progress.terminal", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Store.Token == "" {
		return errors.New("store.token must be set (--token or LINKROT_STORE_TOKEN)")
	}
	if user, secret, ok := strings.Cut(c.Store.Token, ":"); !ok || user == "" || secret == "" {
		return errors.New("store.token must have the form user:secret")
	}
	if c.Store.BaseURL == "" {
		return errors.New("store.base_url must be set")
	}
	if c.Store.TimeoutSeconds <= 0 {
		return errors.New("store.timeout_seconds must be > 0")
	}
	if c.Store.MinIntervalSeconds < 0 {
		return errors.New("store.min_interval_seconds must be >= 0")
	}
	if c.Checker.PerHostRPS < 0 {
		return errors.New("checker.per_host_rps must be >= 0")
	}
	if c.Archive.Endpoint == "" {
		return errors.New("archive.endpoint must be set")
	}
	if c.Archive.TimeoutSeconds <= 0 {
		return errors.New("archive.timeout_seconds must be > 0")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return errors.New("metrics.addr must be set when metrics are enabled")
	}
	return nil
}

// StoreTimeout returns the store HTTP timeout.
func (c Config) StoreTimeout() time.Duration {
	return time.Duration(c.Store.TimeoutSeconds) * time.Second
}

// StoreInterval returns the minimum spacing between store calls.
func (c Config) StoreInterval() time.Duration {
	return time.Duration(c.Store.MinIntervalSeconds * float64(time.Second))
}

// ArchiveTimeout returns the archive HTTP timeout.
func (c Config) ArchiveTimeout() time.Duration {
	return time.Duration(c.Archive.TimeoutSeconds) * time.Second
}

// ProgressBatchWait returns the hub flush interval.
func (c Config) ProgressBatchWait() time.Duration {
	return time.Duration(c.Progress.MaxBatchWaitMs) * time.Millisecond
}
