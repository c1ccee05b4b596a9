// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package migration tracks and runs schema migrations.
//
// Migrations are collected from sources (in-code or YAML files), sorted by name and applied in batches.
// A batch is rolled back as a whole, in the reverse apply order.
//
// A failing migration stops the run. Migrations which were recorded before stay recorded,
// wrap Migrate in a DB.Transaction if the whole batch must be atomic.
package migration

import (
	"errors"
	"fmt"
	"sort"

	"github.com/patrickascher/sqlkit/schema"
)

// Error messages.
var (
	ErrDuplicate         = errors.New("migration: name is defined twice")
	ErrMissingDefinition = errors.New("migration: definition of a recorded migration is missing")
	ErrName              = errors.New("migration: name is empty")
)

// Migration definition.
type Migration interface {
	Up(s *schema.Builder) error
	Down(s *schema.Builder) error
}

// Func is an adapter to use functions as Migration.
// A nil function is a no-op.
type Func struct {
	UpFn   func(s *schema.Builder) error
	DownFn func(s *schema.Builder) error
}

// Up runs UpFn.
func (f Func) Up(s *schema.Builder) error {
	if f.UpFn == nil {
		return nil
	}
	return f.UpFn(s)
}

// Down runs DownFn.
func (f Func) Down(s *schema.Builder) error {
	if f.DownFn == nil {
		return nil
	}
	return f.DownFn(s)
}

// Source of migration definitions.
type Source interface {
	Migrations() (map[string]Migration, error)
}

// Set is an in-code source, mapped by migration name.
//	migration.Set{
//		"2021_01_01_000000_create_users": migration.Func{UpFn: ..., DownFn: ...},
//	}
type Set map[string]Migration

// Migrations returns a copy of the set.
func (s Set) Migrations() (map[string]Migration, error) {
	rv := make(map[string]Migration, len(s))
	for name, m := range s {
		if name == "" {
			return nil, ErrName
		}
		rv[name] = m
	}
	return rv, nil
}

// Sources combines multiple sources. A name which is defined twice is an error.
func Sources(src ...Source) Source {
	return sources(src)
}

type sources []Source

func (s sources) Migrations() (map[string]Migration, error) {
	rv := map[string]Migration{}
	for _, src := range s {
		m, err := src.Migrations()
		if err != nil {
			return nil, err
		}
		for name, def := range m {
			if _, ok := rv[name]; ok {
				return nil, fmt.Errorf("%w: %s", ErrDuplicate, name)
			}
			rv[name] = def
		}
	}
	return rv, nil
}

// names returns the sorted names of the definitions.
func names(defs map[string]Migration) []string {
	rv := make([]string, 0, len(defs))
	for name := range defs {
		rv = append(rv, name)
	}
	sort.Strings(rv)
	return rv
}
