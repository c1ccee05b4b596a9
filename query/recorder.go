// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package query

import (
	"sync"

	"github.com/patrickascher/sqlkit/connection"
	"gopkg.in/guregu/null.v4"
)

// Statement is a recorded statement with its arguments.
type Statement struct {
	SQL  string
	Args []interface{}
}

// Recorder is an Executor which records all statements before passing them to the wrapped executor.
//	rec := query.NewRecorder(conn)
//	db, err := query.Open(rec)
//	...
//	rec.Count()
type Recorder struct {
	Executor

	mu         sync.Mutex
	statements []Statement
}

// NewRecorder wraps the executor.
func NewRecorder(exec Executor) *Recorder {
	return &Recorder{Executor: exec}
}

// Execute records and executes the statement.
func (r *Recorder) Execute(stmt string, args []interface{}) ([]connection.Row, error) {
	r.record(stmt, args)
	return r.Executor.Execute(stmt, args)
}

// ExecuteAffecting records and executes the statement.
func (r *Recorder) ExecuteAffecting(stmt string, args []interface{}) (int64, error) {
	r.record(stmt, args)
	return r.Executor.ExecuteAffecting(stmt, args)
}

// LastInsertID of the wrapped executor.
func (r *Recorder) LastInsertID() null.Int {
	return r.Executor.LastInsertID()
}

func (r *Recorder) record(stmt string, args []interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statements = append(r.statements, Statement{SQL: stmt, Args: args})
}

// Statements returns a copy of the recorded statements.
func (r *Recorder) Statements() []Statement {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv := make([]Statement, len(r.statements))
	copy(rv, r.statements)
	return rv
}

// Count of the recorded statements.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.statements)
}

// Reset the recorded statements.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statements = nil
}
