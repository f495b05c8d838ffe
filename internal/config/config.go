// Package config loads tablesession settings from an optional YAML file and
// TABLESESSION_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/tablesession/internal/logging"
	"github.com/aretw0/tablesession/pkg/collector"
	"github.com/aretw0/tablesession/pkg/domain"
	"github.com/aretw0/tablesession/pkg/session"
	"github.com/caarlos0/env/v11"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Supported storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config holds every runtime setting.
type Config struct {
	Driver string `mapstructure:"driver" env:"DRIVER"`
	Table  string `mapstructure:"table" env:"TABLE"`

	SQLitePath string `mapstructure:"sqlite_path" env:"SQLITE_PATH"`

	RedisAddr     string `mapstructure:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"redis_db" env:"REDIS_DB"`
	RedisPrefix   string `mapstructure:"redis_prefix" env:"REDIS_PREFIX"`

	CleanupProbability float64       `mapstructure:"cleanup_probability" env:"CLEANUP_PROBABILITY"`
	MaxLifetime        time.Duration `mapstructure:"max_lifetime" env:"MAX_LIFETIME"`
	GCSchedule         string        `mapstructure:"gc_schedule" env:"GC_SCHEDULE"`
	GCTimeout          time.Duration `mapstructure:"gc_timeout" env:"GC_TIMEOUT"`

	HTTPAddr  string `mapstructure:"http_addr" env:"HTTP_ADDR"`
	Debug     bool   `mapstructure:"debug" env:"DEBUG"`
	LogFormat string `mapstructure:"log_format" env:"LOG_FORMAT"`
	LogLevel  string `mapstructure:"log_level" env:"LOG_LEVEL"`
}

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "TABLESESSION_"

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Driver:             DriverSQLite,
		Table:              domain.DefaultTable,
		SQLitePath:         "sessions.db",
		RedisAddr:          "localhost:6379",
		RedisPrefix:        "tablesession:",
		CleanupProbability: session.DefaultCleanupProbability,
		MaxLifetime:        collector.DefaultMaxAge,
		GCSchedule:         collector.DefaultSchedule,
		GCTimeout:          time.Minute,
		HTTPAddr:           ":8080",
		LogFormat:          "text",
		LogLevel:           "warn",
	}
}

// Load builds the configuration from defaults, the YAML file at path (skipped
// when path is empty) and the environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return fmt.Errorf("create config decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	invalid := func(field string, value any, reason string) {
		errs = append(errs, &domain.ConfigurationError{Field: field, Value: value, Reason: reason})
	}

	switch c.Driver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			invalid("sqlite_path", c.SQLitePath, "is required for the sqlite driver")
		}
	case DriverRedis:
		if c.RedisAddr == "" {
			invalid("redis_addr", c.RedisAddr, "is required for the redis driver")
		}
	case DriverMemory:
	default:
		invalid("driver", c.Driver, "must be sqlite, redis or memory")
	}

	if !domain.ValidIdentifier(c.Table) {
		invalid("table", c.Table, "must match [A-Za-z0-9_]+")
	}
	if c.CleanupProbability < 0 || c.CleanupProbability > 1 {
		invalid("cleanup_probability", c.CleanupProbability, "must be within [0, 1]")
	}
	if c.MaxLifetime < time.Second {
		invalid("max_lifetime", c.MaxLifetime, "must be at least one second")
	}
	if _, err := collector.ParseSchedule(c.GCSchedule); err != nil {
		invalid("gc_schedule", c.GCSchedule, err.Error())
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		invalid("log_format", c.LogFormat, "must be text or json")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		invalid("log_level", c.LogLevel, "must be debug, info, warn or error")
	}

	return errors.Join(errs...)
}
