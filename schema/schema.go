// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package schema executes blueprints.
//
// The blueprint is compiled by the grammar of the DB and the statements are executed in the returned order.
// The first failing statement stops the execution.
//	s := schema.New(db)
//	err := s.Create("users", func(b *blueprint.Blueprint) {
//		b.ID()
//		b.String("email").Unique()
//		b.Timestamps()
//	})
package schema

import (
	"errors"
	"fmt"

	"github.com/patrickascher/sqlkit/query"
	"github.com/patrickascher/sqlkit/schema/blueprint"
)

// Error messages.
var (
	ErrNoDB    = errors.New("schema: no db defined")
	ErrNoTable = errors.New("schema: no table defined")
)

// Builder executes the schema operations.
type Builder struct {
	db *query.DB
}

// New creates a schema builder for the DB.
func New(db *query.DB) *Builder {
	return &Builder{db: db}
}

// DB returns the query context.
func (s *Builder) DB() *query.DB {
	return s.db
}

// Create a table.
func (s *Builder) Create(table string, fn func(b *blueprint.Blueprint)) error {
	return s.build(table, blueprint.Create, fn)
}

// Table alters a table.
func (s *Builder) Table(table string, fn func(b *blueprint.Blueprint)) error {
	return s.build(table, blueprint.Alter, fn)
}

// Blueprint compiles and executes an already populated blueprint.
func (s *Builder) Blueprint(b *blueprint.Blueprint) error {
	if err := s.check(b.Table); err != nil {
		return err
	}

	var stmts []string
	var err error
	switch b.Mode {
	case blueprint.Create:
		stmts, err = s.db.Grammar().CompileCreate(b)
	case blueprint.Alter:
		stmts, err = s.db.Grammar().CompileAlter(b)
	default:
		err = fmt.Errorf("schema: mode %v is not supported", b.Mode)
	}
	if err != nil {
		return fmt.Errorf("schema: %s %#v: %w", b.Mode, b.Table, err)
	}
	return s.execute(stmts)
}

// Drop a table.
func (s *Builder) Drop(table string) error {
	if err := s.check(table); err != nil {
		return err
	}
	return s.execute(s.db.Grammar().CompileDrop(table))
}

// DropIfExists drops the table if it exists.
func (s *Builder) DropIfExists(table string) error {
	if err := s.check(table); err != nil {
		return err
	}
	return s.execute(s.db.Grammar().CompileDropIfExists(table))
}

// Rename a table.
func (s *Builder) Rename(from string, to string) error {
	if err := s.check(from); err != nil {
		return err
	}
	if err := s.check(to); err != nil {
		return err
	}
	return s.execute(s.db.Grammar().CompileRename(from, to))
}

// HasTable checks if the table exists.
func (s *Builder) HasTable(table string) (bool, error) {
	if err := s.check(table); err != nil {
		return false, err
	}
	stmt, args := s.db.Grammar().CompileHasTable(table)
	rows, err := s.db.Select(stmt, args...)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// Raw executes the statements in the given order.
func (s *Builder) Raw(stmts ...string) error {
	if s.db == nil {
		return ErrNoDB
	}
	return s.execute(stmts)
}

func (s *Builder) build(table string, mode blueprint.Mode, fn func(b *blueprint.Blueprint)) error {
	b := blueprint.New(table, mode)
	if fn != nil {
		fn(b)
	}
	return s.Blueprint(b)
}

func (s *Builder) check(table string) error {
	if s.db == nil {
		return ErrNoDB
	}
	if table == "" {
		return ErrNoTable
	}
	return nil
}

// execute the statements without placeholder replacement. The first error stops.
func (s *Builder) execute(stmts []string) error {
	for _, stmt := range stmts {
		if _, err := s.db.Executor().ExecuteAffecting(stmt, nil); err != nil {
			return err
		}
	}
	return nil
}
