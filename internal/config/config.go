// Package config loads incite settings from defaults, an optional config
// file and INCITE_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of the environment variables read by Load
const EnvPrefix = "INCITE"

// Config holds all incite settings
type Config struct {
	LogLevel       string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat      string `mapstructure:"log_format" validate:"required,oneof=text json"`
	Runner         string `mapstructure:"runner" validate:"required"`
	ManifestFormat string `mapstructure:"manifest_format" validate:"required,oneof=yaml json"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		LogLevel:       "warn",
		LogFormat:      "text",
		Runner:         "cobra",
		ManifestFormat: "yaml",
	}
}

// Load reads configuration. When configFile is empty an incite.{yaml,json,toml}
// in the working directory is used if present; a missing file is not an error.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_format", def.LogFormat)
	v.SetDefault("runner", def.Runner)
	v.SetDefault("manifest_format", def.ManifestFormat)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("incite")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.ManifestFormat = strings.ToLower(cfg.ManifestFormat)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field against its constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
