// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package logger provides the logging interface used by the gateway, the migration repository and the orm.
// It wraps existing go loggers (logrus) or an in-memory recorder behind the same Manager interface.
// Log level, fields, a duration timer or caller information can be added to every entry.
package logger

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/patrickascher/sqlkit/registry"
)

// ErrProvider - Error message.
var ErrProvider = errors.New("logger: provider does not implement logger.Manager")

// registryPrefix for the registry package.
const registryPrefix = "logger_"

// Level - the higher the more critical
const (
	TRACE Level = iota - 1
	DEBUG
	INFO
	WARNING
	ERROR
	PANIC
)

// Level type.
type Level int32

// String converts the level code.
func (lvl Level) String() string {
	switch lvl {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARNING:
		return "WARNING"
	case ERROR:
		return "ERROR"
	case PANIC:
		return "PANIC"
	default:
		return "unknown level"
	}
}

// Provider interface.
type Provider interface {
	Log(Entry)
}

// Manager interface.
type Manager interface {
	Trace(string)
	Debug(string)
	Info(msg string)
	Warning(msg string)
	Error(msg string)
	Panic(msg string)

	New() Manager
	WithFields(Fields) Manager
	WithTimer() Manager

	SetCallerFields(bool)
	SetLogLevel(Level)
}

// Fields can be used to add more details to a log message.
type Fields map[string]interface{}

// Map converts the Fields to a map[string]interface{}.
func (f Fields) Map() map[string]interface{} {
	return f
}

// Entry struct holds all information for the log message.
type Entry struct {
	Level     Level
	Timestamp time.Time
	Message   string
	Fields    Fields
}

// manager holds the provider and fields information.
type manager struct {
	provider Provider
	fields   Fields

	callerInfo bool
	timer      time.Time
	lvl        Level
}

// Register a new logger provider by name.
func Register(name string, provider Provider) error {
	return registry.Set(registryPrefix+name, &manager{provider: provider})
}

// Get a logger by the registered name.
// Default log level is DEBUG.
func Get(name string) (Manager, error) {
	m, err := registry.Get(registryPrefix + name)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	// the value could have been registered directly with registry.Set.
	if m, ok := m.(Manager); ok {
		return m, nil
	}

	return nil, ErrProvider
}

// New creates an unregistered Manager for the provider.
// Useful for tests or for components which do not share a global logger.
func New(provider Provider, lvl Level) Manager {
	return &manager{provider: provider, lvl: lvl}
}

// SetCallerFields will add the fields "line" and "file" to the Entry.
func (m *manager) SetCallerFields(b bool) {
	m.callerInfo = b
}

// SetLogLevel defines the minimum level which gets logged.
func (m *manager) SetLogLevel(lvl Level) {
	m.lvl = lvl
}

// New creates a new instance with the same level, fields and caller setting.
func (m manager) New() Manager {
	return &manager{lvl: m.lvl, provider: m.provider, fields: m.fields, callerInfo: m.callerInfo}
}

// WithTimer will add the field "duration" to the Entry.
func (m manager) WithTimer() Manager {
	instance := m.New().(*manager)
	instance.timer = time.Now()
	return instance
}

// WithFields returns a new Manager where the given fields are merged into the existing ones.
func (m manager) WithFields(fields Fields) Manager {
	instance := m.New().(*manager)
	instance.fields = make(Fields, len(m.fields)+len(fields))
	for k, v := range m.fields {
		instance.fields[k] = v
	}
	for k, v := range fields {
		instance.fields[k] = v
	}
	if !m.timer.IsZero() {
		instance.timer = m.timer
	}
	return instance
}

// Trace log.
func (m manager) Trace(msg string) {
	m.log(msg, TRACE)
}

// Debug log.
func (m manager) Debug(msg string) {
	m.log(msg, DEBUG)
}

// Info log.
func (m manager) Info(msg string) {
	m.log(msg, INFO)
}

// Warning log.
func (m manager) Warning(msg string) {
	m.log(msg, WARNING)
}

// Error log.
func (m manager) Error(msg string) {
	m.log(msg, ERROR)
}

// Panic log.
func (m manager) Panic(msg string) {
	m.log(msg, PANIC)
}

func (m manager) log(msg string, lvl Level) {
	if lvl >= m.lvl {
		m.provider.Log(m.newEntry(msg, lvl))
	}
}

// newEntry is a helper to create a new Entry for the log provider.
func (m manager) newEntry(msg string, lvl Level) Entry {
	e := Entry{Message: msg, Level: lvl, Timestamp: time.Now()}

	e.Fields = make(Fields, len(m.fields)+2)
	for k, v := range m.fields {
		e.Fields[k] = v
	}

	if !m.timer.IsZero() {
		e.Fields["duration"] = time.Since(m.timer)
	}

	if m.callerInfo {
		// skip newEntry, log and the level method.
		_, file, line, _ := runtime.Caller(3)
		e.Fields["line"] = line
		e.Fields["file"] = file
	}

	return e
}
