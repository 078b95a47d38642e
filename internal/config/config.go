// Package config provides configuration management for the pricer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	apperrors "bop/internal/errors"
	"bop/internal/lattice"
	"bop/internal/logging"
)

// FileName is the configuration file name without extension.
const FileName = "bop"

// EnvPrefix prefixes every environment override, e.g. BOP_PRICING_POLICY.
const EnvPrefix = "BOP"

// Config holds all application configuration.
type Config struct {
	Pricing PricingConfig `mapstructure:"pricing" json:"pricing"`
	Logging LoggingConfig `mapstructure:"logging" json:"logging"`
	Journal JournalConfig `mapstructure:"journal" json:"journal"`
	Batch   BatchConfig   `mapstructure:"batch" json:"batch"`
}

// PricingConfig holds lattice pricing configuration.
type PricingConfig struct {
	MaxSteps  int    `mapstructure:"max_steps" json:"max_steps"`
	Policy    string `mapstructure:"policy" json:"policy"` // strict, permissive
	Engine    string `mapstructure:"engine" json:"engine"` // tree, recombining
	Precision int    `mapstructure:"precision" json:"precision"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level" json:"level"`
	File       bool   `mapstructure:"file" json:"file"`
	FilePath   string `mapstructure:"file_path" json:"file_path"`
	MaxSize    int    `mapstructure:"max_size" json:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" json:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" json:"max_age"`
}

// JournalConfig holds quote journal configuration.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Path    string `mapstructure:"path" json:"path"`
}

// BatchConfig holds batch pricing configuration.
type BatchConfig struct {
	Workers int `mapstructure:"workers" json:"workers"` // 0 means one per CPU
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/bop"
	}
	return filepath.Join(home, ".config", "bop")
}

// ConfigPath returns the configuration file path inside configDir.
func ConfigPath(configDir string) string {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	return filepath.Join(configDir, FileName+".toml")
}

func setDefaults(v *viper.Viper, configDir string) {
	logDefaults := logging.DefaultLogConfig()

	v.SetDefault("pricing.max_steps", lattice.DefaultMaxSteps)
	v.SetDefault("pricing.policy", lattice.PolicyStrict.String())
	v.SetDefault("pricing.engine", lattice.EngineTree.String())
	v.SetDefault("pricing.precision", 6)

	v.SetDefault("logging.level", logDefaults.Level)
	v.SetDefault("logging.file", logDefaults.File)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "bop.log"))
	v.SetDefault("logging.max_size", logDefaults.MaxSize)
	v.SetDefault("logging.max_backups", logDefaults.MaxBackups)
	v.SetDefault("logging.max_age", logDefaults.MaxAge)

	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.path", filepath.Join(configDir, "journal.db"))

	v.SetDefault("batch.workers", 0)
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() *Config {
	v := viper.New()
	setDefaults(v, DefaultConfigDir())

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return &Config{}
	}
	return cfg
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// configuration file is not an error.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName(FileName)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, apperrors.Wrapf(err, "loading %s", ConfigPath(configDir))
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, apperrors.Wrap(err, "decoding configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, format, args...)
	}

	if _, err := lattice.ParsePolicy(c.Pricing.Policy); err != nil {
		return invalid("pricing.policy: %v", err)
	}
	engine, err := lattice.ParseEngine(c.Pricing.Engine)
	if err != nil {
		return invalid("pricing.engine: %v", err)
	}

	limit := lattice.MaxTreeSteps
	if engine == lattice.EngineRecombining {
		limit = lattice.MaxRecombiningSteps
	}
	if c.Pricing.MaxSteps < 0 || c.Pricing.MaxSteps > limit {
		return invalid("pricing.max_steps must be between 0 and %d for the %s engine", limit, engine)
	}
	if c.Pricing.Precision < 0 || c.Pricing.Precision > 17 {
		return invalid("pricing.precision must be between 0 and 17")
	}

	if c.Batch.Workers < 0 {
		return invalid("batch.workers must be non-negative")
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		return invalid("journal.path is required when the journal is enabled")
	}
	if c.Logging.File && c.Logging.FilePath == "" {
		return invalid("logging.file_path is required when file logging is enabled")
	}

	return nil
}

// Pricer builds a lattice pricer from the pricing section.
func (c *Config) Pricer(logger *zerolog.Logger) *lattice.Pricer {
	policy, _ := lattice.ParsePolicy(c.Pricing.Policy)
	engine, _ := lattice.ParseEngine(c.Pricing.Engine)
	return &lattice.Pricer{
		MaxSteps: c.Pricing.MaxSteps,
		Policy:   policy,
		Engine:   engine,
		Logger:   logger,
	}
}

// LogConfig converts the logging section for the logging package.
func (c *Config) LogConfig() logging.LogConfig {
	return logging.LogConfig{
		Level:      c.Logging.Level,
		Console:    true,
		File:       c.Logging.File,
		FilePath:   c.Logging.FilePath,
		MaxSize:    c.Logging.MaxSize,
		MaxBackups: c.Logging.MaxBackups,
		MaxAge:     c.Logging.MaxAge,
	}
}
