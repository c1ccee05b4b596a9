// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package connection

import (
	"errors"
	"fmt"
	"sync"

	"github.com/patrickascher/sqlkit/logger"
	"gopkg.in/guregu/null.v4"
)

// Error messages.
var (
	ErrTxExists = errors.New("connection: transaction already exists")
)

// Connection is the gateway of one named database handle.
// Statements are serialized, only one statement is in flight at a time.
type Connection struct {
	name  string
	conn  Conn
	log   logger.Manager
	debug bool

	mu     sync.Mutex
	lastID null.Int
}

// newConnection wraps the Conn.
func newConnection(name string, conn Conn, log logger.Manager, debug bool) *Connection {
	if log != nil {
		log = log.WithFields(logger.Fields{"connection": name})
	}
	return &Connection{name: name, conn: conn, log: log, debug: debug}
}

// Name of the connection.
func (c *Connection) Name() string {
	return c.name
}

// DriverName of the underlying driver.
func (c *Connection) DriverName() string {
	return c.conn.DriverName()
}

// Execute a statement which returns rows.
// Failed statements are never retried.
func (c *Connection) Execute(stmt string, args []interface{}) ([]Row, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l := c.timer()
	rows, err := c.conn.Query(stmt, args)
	c.logStatement(l, stmt, args, err)
	return rows, err
}

// ExecuteAffecting executes a statement and returns the number of affected rows.
// The last insert id is stored, see LastInsertID.
func (c *Connection) ExecuteAffecting(stmt string, args []interface{}) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l := c.timer()
	affected, id, err := c.conn.Exec(stmt, args)
	c.logStatement(l, stmt, args, err)
	if err != nil {
		return 0, err
	}
	c.lastID = id
	return affected, nil
}

// LastInsertID of the last ExecuteAffecting call. Null if the driver does not report it.
func (c *Connection) LastInsertID() null.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastID
}

// Begin a transaction. Nested transactions are not supported.
func (c *Connection) Begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn.InTransaction() {
		return ErrTxExists
	}
	return c.conn.Begin()
}

// Commit the transaction.
func (c *Connection) Commit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Commit()
}

// Rollback the transaction.
func (c *Connection) Rollback() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Rollback()
}

// InTransaction returns true if a transaction is open.
func (c *Connection) InTransaction() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.InTransaction()
}

// Transaction begins a transaction, runs fn and commits.
// If fn returns an error or panics, the transaction is rolled back exactly once
// and the original error is returned (or the panic is re-raised).
func (c *Connection) Transaction(fn func() error) error {
	if err := c.Begin(); err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			c.rollback()
			panic(r)
		}
	}()

	if err := fn(); err != nil {
		c.rollback()
		return err
	}
	return c.Commit()
}

// rollback and log a failing rollback, the original error has priority.
func (c *Connection) rollback() {
	if err := c.Rollback(); err != nil && c.log != nil {
		c.log.WithFields(logger.Fields{"error": err}).Error("rollback failed")
	}
}

// Close the underlying handle.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}

func (c *Connection) timer() logger.Manager {
	if c.log == nil {
		return nil
	}
	return c.log.WithTimer()
}

// logStatement logs the statement at DEBUG (if debug is enabled) or the error at ERROR.
func (c *Connection) logStatement(l logger.Manager, stmt string, args []interface{}, err error) {
	if l == nil {
		return
	}
	fields := logger.Fields{"sql": stmt, "bindings": args}
	if err != nil {
		fields["error"] = err
		l.WithFields(fields).Error(fmt.Sprintf("statement failed: %s", err))
		return
	}
	if c.debug {
		l.WithFields(fields).Debug(stmt)
	}
}
