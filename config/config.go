// Package config carries the tuning knobs of the framework, parsed from
// environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"
)

// Config tunes queue capacities and logging. Zero values fall back to the
// envDefault tags.
type Config struct {
	// EventBuffer is the capacity of each container's event queue.
	EventBuffer int `env:"STATEFX_EVENT_BUFFER" envDefault:"16"`
	// DeliveryBuffer is the capacity of the effect delivery worker queue.
	DeliveryBuffer int `env:"STATEFX_DELIVERY_BUFFER" envDefault:"16"`
	// LogLevel is a zap level name: debug, info, warn, error.
	LogLevel string `env:"STATEFX_LOG_LEVEL" envDefault:"info"`
}

// FromEnv loads configuration from environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration with no environment overrides applied.
func Default() Config {
	return Config{EventBuffer: 16, DeliveryBuffer: 16, LogLevel: "info"}
}

// ZapLevel converts LogLevel to a zapcore level, defaulting to info on
// unknown names.
func (c Config) ZapLevel() zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
