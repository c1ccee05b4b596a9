// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package logrus_test

import (
	"strings"
	"testing"

	"github.com/patrickascher/sqlkit/logger"
	"github.com/patrickascher/sqlkit/logger/logrus"
	"github.com/stretchr/testify/assert"
)

type mockWriter struct {
	messages []string
}

func (w *mockWriter) Write(p []byte) (n int, err error) {
	w.messages = append(w.messages, string(p))
	return len(p), nil
}

func TestProvider_Log(t *testing.T) {
	asserts := assert.New(t)
	w := &mockWriter{}

	prov := logrus.New(logrus.Options{JSON: true})
	prov.Instance.Out = w
	err := logger.Register("logrus", prov)
	asserts.NoError(err)

	provider, err := logger.Get("logrus")
	asserts.NoError(err)
	provider.SetLogLevel(logger.TRACE)

	provider.WithFields(logger.Fields{"connection": "default"}).Trace("Msg")
	provider.WithFields(logger.Fields{"connection": "default"}).Debug("Msg")
	provider.WithFields(logger.Fields{"connection": "default"}).Info("Msg")
	provider.WithFields(logger.Fields{"connection": "default"}).Warning("Msg")
	provider.WithFields(logger.Fields{"connection": "default"}).Error("Msg")
	asserts.Panics(func() { provider.WithFields(logger.Fields{"connection": "default"}).Panic("Msg") })
	asserts.Equal(6, len(w.messages))
	asserts.True(strings.Contains(w.messages[0], `"connection":"default"`))
}
