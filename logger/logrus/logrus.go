// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package logrus is the logrus provider for the logger package. Its a wrapper for https://github.com/sirupsen/logrus.
// The logrus instance can be configured by the exported Instance field.
package logrus

import (
	"github.com/patrickascher/sqlkit/logger"
	"github.com/sirupsen/logrus"
)

// Options for the provider.
type Options struct {
	// JSON switches to the logrus JSON formatter.
	JSON bool
	// Caller adds the logrus caller information.
	Caller bool
}

// New creates a new logrus provider.
func New(opts ...Options) *Provider {
	log := logrus.New()
	log.SetLevel(logrus.TraceLevel)
	if len(opts) > 0 {
		if opts[0].JSON {
			log.SetFormatter(&logrus.JSONFormatter{})
		}
		log.ReportCaller = opts[0].Caller
	}
	return &Provider{Instance: log}
}

// Provider wraps the logrus logger.
type Provider struct {
	Instance *logrus.Logger
}

// Log the entry with the logrus instance.
// The entry timestamp is passed, so that durations and timestamps match the recorded statement.
func (p *Provider) Log(entry logger.Entry) {
	e := p.Instance.WithFields(entry.Fields.Map()).WithTime(entry.Timestamp)
	switch entry.Level {
	case logger.TRACE:
		e.Trace(entry.Message)
	case logger.DEBUG:
		e.Debug(entry.Message)
	case logger.INFO:
		e.Info(entry.Message)
	case logger.WARNING:
		e.Warning(entry.Message)
	case logger.ERROR:
		e.Error(entry.Message)
	case logger.PANIC:
		e.Panic(entry.Message)
	}
}
