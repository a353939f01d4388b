package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/spektr-org/bookinglens/engine"
	"github.com/spektr-org/bookinglens/schema"
)

// ============================================================================
// CONFIG — Engine settings from file + environment
// ============================================================================
// Sources, lowest precedence first:
//   1. Built-in defaults
//   2. Config file (JSON or YAML, by extension), when a path is given
//   3. .env next to the config file (or in the working directory)
//   4. BOOKINGLENS_* environment variables, e.g. BOOKINGLENS_GLOBAL_YEARS=2024
// ============================================================================

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BOOKINGLENS"

// Environments accepted by Validate.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// ErrInvalidConfig wraps every Validate failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the engine and CLI configuration.
type Config struct {
	Environment     string         `json:"environment" mapstructure:"environment" yaml:"environment"`
	LogLevel        string         `json:"log_level" mapstructure:"log_level" yaml:"log_level"`
	AllowedManagers []string       `json:"allowed_managers" mapstructure:"allowed_managers" yaml:"allowed_managers"`
	LostReasonCap   int            `json:"lost_reason_cap" mapstructure:"lost_reason_cap" yaml:"lost_reason_cap"`
	UnthemedCap     int            `json:"unthemed_cap" mapstructure:"unthemed_cap" yaml:"unthemed_cap"`
	Columns         schema.Aliases `json:"columns" mapstructure:"columns" yaml:"columns"`
	Global          engine.Filter  `json:"global" mapstructure:"global" yaml:"global"`
}

var defaults = map[string]any{
	"environment":      EnvProduction,
	"log_level":        "info",
	"allowed_managers": engine.DefaultAllowedManagers,
	"lost_reason_cap":  15,
	"unthemed_cap":     15,
}

// Keys with no default still need binding so Unmarshal sees their env vars.
var envOnly = []string{
	"columns.fnb",
	"columns.rental",
	"global.years",
	"global.status",
	"global.grades",
	"global.category",
	"global.segment",
}

// Load reads the configuration. An empty path uses defaults and the
// environment only.
func Load(path string) (*Config, error) {
	envDir := "."
	if path != "" {
		envDir = filepath.Dir(path)
	}
	if err := godotenv.Load(filepath.Join(envDir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envOnly {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("could not bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}
	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field ranges and the default global filter.
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("%w: unsupported environment %q", ErrInvalidConfig, c.Environment)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalidConfig, err)
	}
	if c.LostReasonCap <= 0 {
		return fmt.Errorf("%w: lost_reason_cap must be positive", ErrInvalidConfig)
	}
	if c.UnthemedCap <= 0 {
		return fmt.Errorf("%w: unthemed_cap must be positive", ErrInvalidConfig)
	}
	if len(c.AllowedManagers) == 0 {
		return fmt.Errorf("%w: allowed_managers is required", ErrInvalidConfig)
	}
	if err := c.Global.Validate(); err != nil {
		return fmt.Errorf("%w: global: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Level returns the parsed log level; info when unset.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// IsDevelopment reports whether human-readable console logging is wanted.
func (c *Config) IsDevelopment() bool { return c.Environment == EnvDevelopment }

// EngineOptions converts the configuration into engine options.
func (c *Config) EngineOptions() []engine.Option {
	return []engine.Option{
		engine.WithAllowedManagers(c.AllowedManagers),
		engine.WithColumnAliases(c.Columns),
		engine.WithLostReasonCap(c.LostReasonCap),
		engine.WithUnthemedCap(c.UnthemedCap),
	}
}
