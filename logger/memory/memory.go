// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package memory provides a logger provider which keeps all entries in memory.
// It is used as statement recorder (sql, bindings, duration and connection per entry) for debugging and tests.
package memory

import (
	"sync"

	"github.com/patrickascher/sqlkit/logger"
)

// Recorder stores the log entries.
type Recorder struct {
	mu      sync.Mutex
	entries []logger.Entry
}

// New creates a new recorder.
func New() *Recorder {
	return &Recorder{}
}

// Log appends the entry.
func (r *Recorder) Log(e logger.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

// Entries returns a copy of all recorded entries.
func (r *Recorder) Entries() []logger.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv := make([]logger.Entry, len(r.entries))
	copy(rv, r.entries)
	return rv
}

// Level returns all entries of the given level.
func (r *Recorder) Level(lvl logger.Level) []logger.Entry {
	var rv []logger.Entry
	for _, e := range r.Entries() {
		if e.Level == lvl {
			rv = append(rv, e)
		}
	}
	return rv
}

// Clear removes all entries.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}
