// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package connection

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/patrickascher/sqlkit/config"
	"github.com/patrickascher/sqlkit/structer"
)

// Retry defaults.
const (
	DefaultAttempts = 3
	DefaultDelay    = 300 * time.Millisecond
)

// DefaultName of the connection if none was configured.
const DefaultName = "default"

// Config of all named connections.
type Config struct {
	// Default connection name.
	Default     string             `mapstructure:"default"`
	Connections map[string]Options `mapstructure:"connections" validate:"required,dive"`
}

// Options of one connection.
type Options struct {
	Driver   string `mapstructure:"driver" validate:"required"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Charset  string `mapstructure:"charset"`
	// Path of the database file (sqlite).
	Path string `mapstructure:"path"`
	// Options are added as DSN parameters.
	Options map[string]string `mapstructure:"options"`

	// Debug logs every statement.
	Debug bool `mapstructure:"debug"`
	// PreQuery statements are executed once after connecting.
	PreQuery []string `mapstructure:"prequery"`

	MaxConnLifetime time.Duration `mapstructure:"maxconnlifetime"`
	Retry           Retry         `mapstructure:"retry"`
}

// NoDelay disables the wait between the connect attempts.
const NoDelay time.Duration = -1

// Retry of the connect step.
// Zero values are replaced by DefaultAttempts and DefaultDelay. Use Attempts 1 to connect
// without retry and a negative Delay (NoDelay) to retry without waiting.
type Retry struct {
	Attempts    int           `mapstructure:"attempts" validate:"gte=0"`
	Delay       time.Duration `mapstructure:"delay"`
	Exponential bool          `mapstructure:"exponential"`
}

// defaultOptions are merged into every connection.
var defaultOptions = Options{Retry: Retry{Attempts: DefaultAttempts, Delay: DefaultDelay}}

// Defaults returns the default connection name.
func (c *Config) Defaults() interface{} {
	name := DefaultName
	if len(c.Connections) == 1 {
		for n := range c.Connections {
			name = n
		}
	}
	return Config{Default: name}
}

// normalize adds the defaults to the config and every connection and validates it.
func (c *Config) normalize() error {
	if err := config.Finalize(c); err != nil {
		return fmt.Errorf("connection: %w", err)
	}
	for name, opt := range c.Connections {
		if err := structer.Merge(&opt, defaultOptions); err != nil {
			return fmt.Errorf("connection: %w", err)
		}
		c.Connections[name] = opt
	}
	return nil
}

// Decode a generic map (for example a parsed config file section) into a Config.
// Durations can be defined as string ("300ms").
func Decode(input map[string]interface{}) (Config, error) {
	cfg := Config{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return cfg, fmt.Errorf("connection: %w", err)
	}
	if err = dec.Decode(input); err != nil {
		return cfg, fmt.Errorf("connection: %w", err)
	}
	return cfg, nil
}
