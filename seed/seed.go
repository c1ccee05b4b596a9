// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package seed fills the database with data.
//
// Seeders run in name order. Every seeder runs in its own transaction, or joins the transaction
// of the caller. A failing seeder stops the run, the data of the seeders before it stays.
package seed

import (
	"errors"
	"fmt"
	"sort"

	"github.com/patrickascher/sqlkit/logger"
	"github.com/patrickascher/sqlkit/query"
)

// Error messages.
var (
	ErrDuplicate = errors.New("seed: name is defined twice")
	ErrName      = errors.New("seed: name is empty")
	ErrUnknown   = errors.New("seed: seeder does not exist")
)

// Seeder fills the database.
type Seeder interface {
	Seed(db *query.DB) error
}

// Func is an adapter to use a function as Seeder.
type Func func(db *query.DB) error

// Seed calls f.
func (f Func) Seed(db *query.DB) error {
	return f(db)
}

// Source of seeders.
type Source interface {
	Seeders() (map[string]Seeder, error)
}

// Set is an in-code source, mapped by seeder name.
type Set map[string]Seeder

// Seeders returns a copy of the set.
func (s Set) Seeders() (map[string]Seeder, error) {
	rv := make(map[string]Seeder, len(s))
	for name, sd := range s {
		if name == "" {
			return nil, ErrName
		}
		rv[name] = sd
	}
	return rv, nil
}

// Sources combines multiple sources. A name which is defined twice is an error.
func Sources(src ...Source) Source {
	return sources(src)
}

type sources []Source

func (s sources) Seeders() (map[string]Seeder, error) {
	rv := map[string]Seeder{}
	for _, src := range s {
		m, err := src.Seeders()
		if err != nil {
			return nil, err
		}
		for name, sd := range m {
			if _, ok := rv[name]; ok {
				return nil, fmt.Errorf("%w: %s", ErrDuplicate, name)
			}
			rv[name] = sd
		}
	}
	return rv, nil
}

// Runner runs seeders.
type Runner struct {
	db  *query.DB
	log logger.Manager
}

// Option of the runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(l logger.Manager) Option {
	return func(r *Runner) {
		r.log = l
	}
}

// New creates a runner.
func New(db *query.DB, opts ...Option) *Runner {
	r := &Runner{db: db}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run the seeders of the source in name order and returns the number of finished seeders.
// If names are given, only those seeders run. An unknown name is an error and nothing runs.
func (r *Runner) Run(src Source, names ...string) (int, error) {
	seeders, err := src.Seeders()
	if err != nil {
		return 0, err
	}

	if len(names) == 0 {
		for name := range seeders {
			names = append(names, name)
		}
	} else {
		names = append([]string(nil), names...)
		for _, name := range names {
			if _, ok := seeders[name]; !ok {
				return 0, fmt.Errorf("%w: %s", ErrUnknown, name)
			}
		}
	}
	sort.Strings(names)

	n := 0
	for i, name := range names {
		if i > 0 && names[i-1] == name {
			continue
		}
		log := r.logFields(name)
		err = r.transaction(func() error {
			return seeders[name].Seed(r.db)
		})
		if err != nil {
			if log != nil {
				log.WithFields(logger.Fields{"error": err}).Error("seed failed")
			}
			return n, fmt.Errorf("seed: %s: %w", name, err)
		}
		if log != nil {
			log.Info("seeded")
		}
		n++
	}
	return n, nil
}

// transaction joins an open transaction or starts a new one.
func (r *Runner) transaction(fn func() error) error {
	if r.db.InTransaction() {
		return fn()
	}
	return r.db.Transaction(fn)
}

func (r *Runner) logFields(name string) logger.Manager {
	if r.log == nil {
		return nil
	}
	return r.log.WithFields(logger.Fields{"seeder": name}).WithTimer()
}
