// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package connection provides the gateway to the configured databases.
//
// A Manager lazily opens one Connection per logical name and keeps it for its lifetime.
// Only the connect step is retried (attempts, delay, optional exponential doubling),
// statements are never retried. The drivers are registered by the dialect packages:
//	import _ "github.com/patrickascher/sqlkit/dialect/sqlite"
package connection

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/patrickascher/sqlkit/logger"
	"golang.org/x/sync/singleflight"
)

// Error messages.
var (
	ErrUnknownConnection = errors.New("connection: unknown connection")
	ErrNoReplica         = errors.New("connection: no replica defined")
)

// Manager of the named connections.
type Manager struct {
	cfg   Config
	log   logger.Manager
	sleep func(time.Duration)

	mu    sync.Mutex
	conns map[string]*Connection
	group singleflight.Group
}

// Option of the manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(l logger.Manager) Option {
	return func(m *Manager) {
		m.log = l
	}
}

// WithSleep replaces the sleep function which is used between connect attempts.
func WithSleep(fn func(time.Duration)) Option {
	return func(m *Manager) {
		m.sleep = fn
	}
}

// New creates a manager. The config gets its defaults and is validated.
// No connection is opened yet.
func New(cfg Config, opts ...Option) (*Manager, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	m := &Manager{cfg: cfg, sleep: time.Sleep, conns: make(map[string]*Connection)}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Names of all configured connections.
func (m *Manager) Names() []string {
	var rv []string
	for n := range m.cfg.Connections {
		rv = append(rv, n)
	}
	sort.Strings(rv)
	return rv
}

// Default returns the default connection.
func (m *Manager) Default() (*Connection, error) {
	return m.Connection(m.cfg.Default)
}

// Connection returns the connection by name. It is opened on the first request.
// Concurrent first requests share one connect sequence.
func (m *Manager) Connection(name string) (*Connection, error) {
	m.mu.Lock()
	c, ok := m.conns[name]
	m.mu.Unlock()
	if ok {
		return c, nil
	}

	v, err, _ := m.group.Do(name, func() (interface{}, error) {
		m.mu.Lock()
		c, ok := m.conns[name]
		m.mu.Unlock()
		if ok {
			return c, nil
		}

		c, err := m.connect(name)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.conns[name] = c
		m.mu.Unlock()
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Connection), nil
}

// PickReplica returns a random connection of the given names.
// If no names are given, all configured connections except the default are used.
func (m *Manager) PickReplica(names ...string) (*Connection, error) {
	if len(names) == 0 {
		for _, n := range m.Names() {
			if n != m.cfg.Default {
				names = append(names, n)
			}
		}
	}
	if len(names) == 0 {
		return nil, ErrNoReplica
	}
	return m.Connection(names[rand.Intn(len(names))])
}

// Close all opened connections. The first error is returned.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rv error
	for name, c := range m.conns {
		if err := c.Close(); err != nil && rv == nil {
			rv = fmt.Errorf("connection: close %s: %w", name, err)
		}
		delete(m.conns, name)
	}
	return rv
}

// connect opens the connection with retry. The error of the last attempt is returned unchanged.
func (m *Manager) connect(name string) (*Connection, error) {
	opt, ok := m.cfg.Connections[name]
	if !ok {
		return nil, fmt.Errorf("%w %#v", ErrUnknownConnection, name)
	}
	open, err := opener(opt.Driver)
	if err != nil {
		return nil, err
	}

	attempts := opt.Retry.Attempts
	if attempts < 1 {
		attempts = 1
	}
	delay := opt.Retry.Delay

	var conn Conn
	for attempt := 1; attempt <= attempts; attempt++ {
		conn, err = open(opt)
		if err == nil {
			break
		}
		if m.log != nil {
			m.log.WithFields(logger.Fields{"connection": name, "attempt": attempt, "error": err}).Warning(fmt.Sprintf("connect failed: %s", err))
		}
		if attempt < attempts && delay > 0 {
			m.sleep(delay)
			if opt.Retry.Exponential {
				delay *= 2
			}
		}
	}
	if err != nil {
		return nil, err
	}

	c := newConnection(name, conn, m.log, opt.Debug)
	for _, stmt := range opt.PreQuery {
		if _, err = c.ExecuteAffecting(stmt, nil); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}
	return c, nil
}
