// Package config loads matchcore's runtime configuration: settings for the
// cmd/matchcore process (metrics listen address, log level, event-log path
// and compression) plus engine-level fields (default time-in-force, cascade
// depth limit). Only cmd/matchcore's serve mode reads it, and only the
// metrics listen address and log level; the event-log and engine fields are
// loaded and validated but nothing reads them (the cascade depth bound is
// the fixed cascade.MaxDepth).
//
// Uses viper's SetDefaults-before-Read shape behind a sync.Once guard, and
// validates the decoded struct with go-playground/validator instead of
// accepting it unchecked.
package config

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config is matchcore's process configuration.
type Config struct {
	Engine struct {
		DefaultTIF        string `mapstructure:"default_tif" validate:"oneof=GTC IOC FOK"`
		CascadeDepthLimit int    `mapstructure:"cascade_depth_limit" validate:"min=1,max=100"`
	} `mapstructure:"engine"`

	EventLog struct {
		Path     string `mapstructure:"path" validate:"required"`
		Compress bool   `mapstructure:"compress"`
	} `mapstructure:"event_log"`

	Metrics struct {
		ListenAddr string `mapstructure:"listen_addr" validate:"required"`
	} `mapstructure:"metrics"`

	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
}

var (
	cfg  *Config
	once sync.Once
)

// Load reads configuration from built-in defaults, configPath (a directory
// to search for config.yaml), and environment variables prefixed
// MATCHCORE_, in increasing order of priority. Subsequent calls return the
// first-loaded configuration.
func Load(configPath string) (*Config, error) {
	var err error

	once.Do(func() {
		cfg = &Config{}
		setDefaults(cfg)

		v := viper.New()
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if configPath != "" {
			v.AddConfigPath(configPath)
		} else {
			v.AddConfigPath(".")
			v.AddConfigPath("./config")
			v.AddConfigPath("/etc/matchcore")
		}

		v.AutomaticEnv()
		v.SetEnvPrefix("MATCHCORE")

		if readErr := v.ReadInConfig(); readErr != nil {
			if _, ok := readErr.(viper.ConfigFileNotFoundError); !ok {
				err = fmt.Errorf("config: read: %w", readErr)
				return
			}
		}

		if unmarshalErr := v.Unmarshal(cfg); unmarshalErr != nil {
			err = fmt.Errorf("config: unmarshal: %w", unmarshalErr)
			return
		}

		if validateErr := validator.New().Struct(cfg); validateErr != nil {
			err = fmt.Errorf("config: validate: %w", validateErr)
		}
	})

	return cfg, err
}

func setDefaults(c *Config) {
	c.Engine.DefaultTIF = "GTC"
	c.Engine.CascadeDepthLimit = 100
	c.EventLog.Path = "matchcore-events.log"
	c.EventLog.Compress = false
	c.Metrics.ListenAddr = ":9090"
	c.LogLevel = "info"
}

// InitLogger builds a zap.Logger matching cfg.LogLevel: development encoding
// (human-readable, debug-enabled) for "debug", production JSON encoding
// otherwise.
func InitLogger(cfg *Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	switch cfg.LogLevel {
	case "debug":
		logger, err = zap.NewDevelopment()
	default:
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("config: init logger: %w", err)
	}
	return logger, nil
}
