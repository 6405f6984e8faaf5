/*
Package config loads the price engine service configuration.

SOURCES (highest wins):
  1. Environment, prefixed PRICE_ENGINE_ with dots as underscores
     (PRICE_ENGINE_HTTP_PORT, PRICE_ENGINE_SCHEDULER_STATUS_INTERVAL)
  2. pricing.yml from the -config path, /etc/price-engine or the working dir
  3. Defaults below

EXAMPLE pricing.yml:
  http:
    port: 8080
  db:
    path: pricing.db
  rules:
    seed_file: rules.json
  scheduler:
    enabled: true
    status_interval: 1h
    cleanup_interval: 24h
  log:
    level: info
    format: json
*/
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved service configuration.
type Config struct {
	HTTPPort   string
	DBPath     string
	SeedFile   string
	CORSOrigin string

	SchedulerEnabled bool
	StatusInterval   time.Duration
	CleanupInterval  time.Duration

	LogLevel  string
	LogFormat string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.port", "8080")
	v.SetDefault("http.cors_origin", "*")
	v.SetDefault("db.path", "pricing.db")
	v.SetDefault("rules.seed_file", "")
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.status_interval", time.Hour)
	v.SetDefault("scheduler.cleanup_interval", 24*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads configuration. file may be empty to search the default paths;
// a missing file is not an error, a broken one is.
func Load(file string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("pricing")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/price-engine")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PRICE_ENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := Config{
		HTTPPort:         v.GetString("http.port"),
		DBPath:           v.GetString("db.path"),
		SeedFile:         v.GetString("rules.seed_file"),
		CORSOrigin:       v.GetString("http.cors_origin"),
		SchedulerEnabled: v.GetBool("scheduler.enabled"),
		StatusInterval:   v.GetDuration("scheduler.status_interval"),
		CleanupInterval:  v.GetDuration("scheduler.cleanup_interval"),
		LogLevel:         v.GetString("log.level"),
		LogFormat:        v.GetString("log.format"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	if c.HTTPPort == "" {
		return errors.New("http.port cannot be empty")
	}
	if c.DBPath == "" {
		return errors.New("db.path cannot be empty")
	}
	if c.SchedulerEnabled {
		if c.StatusInterval <= 0 {
			return errors.New("scheduler.status_interval must be positive")
		}
		if c.CleanupInterval <= 0 {
			return errors.New("scheduler.cleanup_interval must be positive")
		}
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.LogFormat)
	}
	return nil
}
