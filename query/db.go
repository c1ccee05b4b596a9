// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package query provides a fluent sql builder.
//
// A DB is the explicit context of all queries: it holds the executor (a connection of the gateway)
// and the grammar, which is selected once by the reported driver name.
//	db, err := query.Open(conn)
//	rows, err := db.Table("users").Where("age", ">", 18).OrderByDesc("id").Get()
package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/patrickascher/sqlkit/connection"
	"github.com/patrickascher/sqlkit/grammar"
	"gopkg.in/guregu/null.v4"
)

// Error messages.
var (
	ErrNoTable    = errors.New("query: no table defined")
	ErrNoData     = errors.New("query: no data defined")
	ErrNoExecutor = errors.New("query: no executor defined")
)

// Executor is the connection capability which is needed by the builder.
// *connection.Connection implements it.
type Executor interface {
	DriverName() string
	Execute(stmt string, args []interface{}) ([]connection.Row, error)
	ExecuteAffecting(stmt string, args []interface{}) (int64, error)
	LastInsertID() null.Int
	Transaction(fn func() error) error
	InTransaction() bool
}

// DB is the query context.
type DB struct {
	exec    Executor
	grammar grammar.Grammar
}

// Open creates a DB for the executor. The grammar is selected by the driver name.
func Open(exec Executor) (*DB, error) {
	if exec == nil {
		return nil, ErrNoExecutor
	}
	g, err := grammar.New(exec.DriverName())
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return &DB{exec: exec, grammar: g}, nil
}

// New creates a DB with an explicit grammar.
func New(exec Executor, g grammar.Grammar) *DB {
	return &DB{exec: exec, grammar: g}
}

// Grammar of the connection.
func (db *DB) Grammar() grammar.Grammar {
	return db.grammar
}

// Executor of the DB.
func (db *DB) Executor() Executor {
	return db.exec
}

// Table starts a new builder for the table.
func (db *DB) Table(name string) *Builder {
	return &Builder{db: db, table: name, cond: newCondition()}
}

// Transaction runs fn in a transaction. See connection.Connection.Transaction.
func (db *DB) Transaction(fn func() error) error {
	return db.exec.Transaction(fn)
}

// InTransaction returns true if a transaction is open.
func (db *DB) InTransaction() bool {
	return db.exec.InTransaction()
}

// Select executes a raw statement with "?" placeholders.
func (db *DB) Select(stmt string, args ...interface{}) ([]connection.Row, error) {
	return db.exec.Execute(db.grammar.Placeholder().Replace(stmt), args)
}

// Exec executes a raw statement with "?" placeholders and returns the affected rows.
func (db *DB) Exec(stmt string, args ...interface{}) (int64, error) {
	return db.exec.ExecuteAffecting(db.grammar.Placeholder().Replace(stmt), args)
}

// DbExpr expressions will not get quoted.
func DbExpr(s string) string {
	return grammar.Raw(s)
}

// quoteIdentifiers quotes and joins the names by comma.
func quoteIdentifiers(g grammar.Grammar, names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = g.QuoteIdentifier(n)
	}
	return strings.Join(quoted, ", ")
}
