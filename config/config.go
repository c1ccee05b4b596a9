// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config provides a config manager for any type that implements the config.Interface.
// It will load the parsed values into a configuration struct.
//
// After parsing, the defaults of a config.Defaulter are merged into all zero fields and
// the struct is validated by its `validate` tags.
// Supports JSON, TOML, YAML, HCL, INI, envfile and Java properties config files (viper provider).
package config

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/patrickascher/sqlkit/registry"
	"github.com/patrickascher/sqlkit/structer"
)

// all pre-defined providers.
const (
	VIPER = "config_viper"
)

// Error messages
var (
	ErrInterface  = errors.New("config: the type does not implement config.Interface")
	ErrPointer    = errors.New("config: the config argument must be a ptr")
	ErrValidation = errors.New("config: validation failed")
)

// Interface for the config provider.
type Interface interface {
	Parse(config interface{}, options interface{}) error
}

// Defaulter can be implemented by a configuration struct.
// Defaults must return a value of the same type as the config.
type Defaulter interface {
	Defaults() interface{}
}

var validate = validator.New()

// Load a configuration by provider and options.
// The cfg must be a ptr to the configuration struct.
// Error will return if the cfg is no ptr, the provider is unknown, any parsing or validation error.
func Load(provider string, cfg interface{}, options interface{}) error {
	// check if the config is a pointer.
	if reflect.ValueOf(cfg).Kind() != reflect.Ptr {
		return ErrPointer
	}

	// get the registered provider.
	instance, err := registry.Get(provider)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// check if the instance has the correct type.
	p, ok := instance.(Interface)
	if !ok {
		return ErrInterface
	}

	if err = p.Parse(cfg, options); err != nil {
		return err
	}

	return Finalize(cfg)
}

// Finalize merges the defaults and validates the configuration.
// It can be used for configurations which were not parsed by a provider.
func Finalize(cfg interface{}) error {
	if reflect.ValueOf(cfg).Kind() != reflect.Ptr {
		return ErrPointer
	}

	if d, ok := cfg.(Defaulter); ok {
		if err := structer.Merge(cfg, d.Defaults()); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}

	if reflect.ValueOf(cfg).Elem().Kind() != reflect.Struct {
		return nil
	}
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	return nil
}
