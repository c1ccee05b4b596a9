// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config_test

import (
	"errors"
	"testing"

	"github.com/patrickascher/sqlkit/config"
	"github.com/patrickascher/sqlkit/config/mocks"
	"github.com/patrickascher/sqlkit/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type dbConfig struct {
	Driver   string `validate:"required"`
	Attempts int
}

func (c *dbConfig) Defaults() interface{} {
	return dbConfig{Attempts: 3}
}

func TestLoad(t *testing.T) {
	asserts := assert.New(t)

	cfg := dbConfig{}
	options := "something"
	mockProvider := new(mocks.Interface)

	asserts.NoError(registry.Set("config-mock", mockProvider))
	asserts.NoError(registry.Set("config-err-interface", ""))

	// error: no config pointer
	err := config.Load("config-mock", cfg, options)
	asserts.Equal(config.ErrPointer, err)

	// error: wrong type
	err = config.Load("config-err-interface", &cfg, options)
	asserts.Equal(config.ErrInterface, err)

	// error: provider does not exist
	err = config.Load("config-not-existing", &cfg, options)
	asserts.True(errors.Is(err, registry.ErrUnknownEntry))

	// error: provider error
	mockProvider.On("Parse", &cfg, options).Once().Return(errors.New("an error"))
	err = config.Load("config-mock", &cfg, options)
	asserts.Equal(errors.New("an error"), err)

	// error: validation, driver is required
	mockProvider.On("Parse", &cfg, options).Once().Return(nil)
	err = config.Load("config-mock", &cfg, options)
	asserts.True(errors.Is(err, config.ErrValidation))

	// ok: defaults are merged
	mockProvider.On("Parse", &cfg, options).Once().Return(nil).Run(func(args mock.Arguments) {
		args.Get(0).(*dbConfig).Driver = "sqlite"
	})
	cfg = dbConfig{}
	err = config.Load("config-mock", &cfg, options)
	asserts.NoError(err)
	asserts.Equal(dbConfig{Driver: "sqlite", Attempts: 3}, cfg)

	mockProvider.AssertExpectations(t)
}

func TestFinalize(t *testing.T) {
	asserts := assert.New(t)

	asserts.Equal(config.ErrPointer, config.Finalize(dbConfig{}))

	cfg := dbConfig{Driver: "mysql", Attempts: 1}
	asserts.NoError(config.Finalize(&cfg))
	// set values are kept
	asserts.Equal(1, cfg.Attempts)
}
