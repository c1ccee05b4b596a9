// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package logger_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/patrickascher/sqlkit/logger"
	"github.com/patrickascher/sqlkit/logger/mocks"
	"github.com/patrickascher/sqlkit/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestLevel_String(t *testing.T) {
	asserts := assert.New(t)
	asserts.Equal("TRACE", logger.TRACE.String())
	asserts.Equal("DEBUG", logger.DEBUG.String())
	asserts.Equal("INFO", logger.INFO.String())
	asserts.Equal("WARNING", logger.WARNING.String())
	asserts.Equal("ERROR", logger.ERROR.String())
	asserts.Equal("PANIC", logger.PANIC.String())
	asserts.Equal("unknown level", logger.Level(10).String())
}

func TestRegisterAndGet(t *testing.T) {
	asserts := assert.New(t)

	mProvider := new(mocks.Provider)
	err := logger.Register("mock", mProvider)
	asserts.NoError(err)

	// already registered
	err = logger.Register("mock", mProvider)
	asserts.True(errors.Is(err, registry.ErrAlreadyExists))

	// unknown
	log, err := logger.Get("unknown")
	asserts.Nil(log)
	asserts.True(errors.Is(err, registry.ErrUnknownEntry))

	// registered with a wrong type
	asserts.NoError(registry.Set("logger_wrong", "string"))
	log, err = logger.Get("wrong")
	asserts.Nil(log)
	asserts.Equal(logger.ErrProvider, err)

	log, err = logger.Get("mock")
	asserts.NoError(err)
	asserts.NotNil(log)
}

func TestManager_Levels(t *testing.T) {
	asserts := assert.New(t)

	mProvider := new(mocks.Provider)
	var entries []logger.Entry
	mProvider.On("Log", mock.AnythingOfType("logger.Entry")).Run(func(args mock.Arguments) {
		entries = append(entries, args.Get(0).(logger.Entry))
	})

	log := logger.New(mProvider, logger.INFO)
	log.Trace("trace")
	log.Debug("debug")
	log.Info("info")
	log.Warning("warning")
	log.Error("error")
	log.Panic("panic")

	asserts.Equal(4, len(entries))
	asserts.Equal(logger.INFO, entries[0].Level)
	asserts.Equal("info", entries[0].Message)
	asserts.Equal(logger.PANIC, entries[3].Level)

	entries = nil
	log.SetLogLevel(logger.TRACE)
	log.Trace("trace")
	asserts.Equal(1, len(entries))
	mProvider.AssertExpectations(t)
}

func TestManager_WithFields(t *testing.T) {
	asserts := assert.New(t)

	mProvider := new(mocks.Provider)
	var entries []logger.Entry
	mProvider.On("Log", mock.AnythingOfType("logger.Entry")).Run(func(args mock.Arguments) {
		entries = append(entries, args.Get(0).(logger.Entry))
	})

	log := logger.New(mProvider, logger.DEBUG)
	conn := log.WithFields(logger.Fields{"connection": "default"})
	conn.WithFields(logger.Fields{"sql": "SELECT 1"}).Debug("statement")
	conn.Debug("plain")

	asserts.Equal(2, len(entries))
	asserts.Equal(logger.Fields{"connection": "default", "sql": "SELECT 1"}, entries[0].Fields)
	// parent fields are untouched
	asserts.Equal(logger.Fields{"connection": "default"}, entries[1].Fields)
}

func TestManager_WithTimer(t *testing.T) {
	asserts := assert.New(t)

	mProvider := new(mocks.Provider)
	var entries []logger.Entry
	mProvider.On("Log", mock.AnythingOfType("logger.Entry")).Run(func(args mock.Arguments) {
		entries = append(entries, args.Get(0).(logger.Entry))
	})

	log := logger.New(mProvider, logger.DEBUG)
	log.WithTimer().WithFields(logger.Fields{"sql": "SELECT 1"}).Info("timed")

	asserts.Equal(1, len(entries))
	d, ok := entries[0].Fields["duration"].(time.Duration)
	asserts.True(ok)
	asserts.True(d >= 0)
	asserts.Equal("SELECT 1", entries[0].Fields["sql"])
}

func TestManager_SetCallerFields(t *testing.T) {
	asserts := assert.New(t)

	mProvider := new(mocks.Provider)
	var entries []logger.Entry
	mProvider.On("Log", mock.AnythingOfType("logger.Entry")).Run(func(args mock.Arguments) {
		entries = append(entries, args.Get(0).(logger.Entry))
	})

	log := logger.New(mProvider, logger.DEBUG)
	log.SetCallerFields(true)
	log.Info("caller")

	asserts.Equal(1, len(entries))
	asserts.True(strings.HasSuffix(entries[0].Fields["file"].(string), "logger_test.go"))
	asserts.NotZero(entries[0].Fields["line"])

	// New keeps the settings.
	entries = nil
	log.New().Info("caller")
	asserts.True(strings.HasSuffix(entries[0].Fields["file"].(string), "logger_test.go"))
}
