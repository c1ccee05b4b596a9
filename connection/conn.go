// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package connection

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/patrickascher/sqlkit/registry"
	"gopkg.in/guregu/null.v4"
)

// registryPrefix for the registry package.
const registryPrefix = "connection_"

// Error messages.
var (
	ErrOpener = errors.New("connection: opener must be of type connection.Opener")
	ErrNoTx   = errors.New("connection: no transaction exists")
)

// init adds a registry validator for the openers.
func init() {
	err := registry.Validator(registry.Validate{Prefix: registryPrefix, Fn: func(name string, v interface{}) error {
		if _, ok := v.(Opener); !ok {
			return ErrOpener
		}
		return nil
	}})
	if err != nil {
		panic(err)
	}
}

// Row is a result row, mapped by column name.
type Row map[string]interface{}

// Conn is the driver capability of one database handle.
type Conn interface {
	DriverName() string
	Query(stmt string, args []interface{}) ([]Row, error)
	Exec(stmt string, args []interface{}) (int64, null.Int, error)
	Begin() error
	Commit() error
	Rollback() error
	InTransaction() bool
	Close() error
}

// Opener opens a Conn for the given options.
type Opener func(opt Options) (Conn, error)

// Register an opener by driver name.
func Register(driver string, o Opener) error {
	return registry.Set(registryPrefix+driver, o)
}

// opener returns the registered opener of the driver.
func opener(driver string) (Opener, error) {
	o, err := registry.Get(registryPrefix + driver)
	if err != nil {
		return nil, fmt.Errorf("connection: %w", err)
	}
	return o.(Opener), nil
}

// sqlConn is the database/sql adapter.
type sqlConn struct {
	driver string
	db     *sql.DB
	tx     *sql.Tx
}

// NewSQLConn creates a Conn of a *sql.DB.
// The pool is pinned to one physical connection, so that session state,
// transactions and in-memory databases behave like a single handle.
func NewSQLConn(driver string, db *sql.DB, lifetime ...time.Duration) Conn {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if len(lifetime) > 0 {
		db.SetConnMaxLifetime(lifetime[0])
	}
	return &sqlConn{driver: driver, db: db}
}

// DriverName returns the driver name.
func (c *sqlConn) DriverName() string {
	return c.driver
}

// Query executes the statement and returns all rows.
// []byte values are converted to strings.
func (c *sqlConn) Query(stmt string, args []interface{}) ([]Row, error) {
	var rows *sql.Rows
	var err error
	if c.tx != nil {
		rows, err = c.tx.Query(stmt, args...)
	} else {
		rows, err = c.db.Query(stmt, args...)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var rv []Row
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err = rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		rv = append(rv, row)
	}
	return rv, rows.Err()
}

// Exec executes the statement and returns the affected rows and last insert id.
// The id is null if the driver does not support it.
func (c *sqlConn) Exec(stmt string, args []interface{}) (int64, null.Int, error) {
	var res sql.Result
	var err error
	if c.tx != nil {
		res, err = c.tx.Exec(stmt, args...)
	} else {
		res, err = c.db.Exec(stmt, args...)
	}
	if err != nil {
		return 0, null.Int{}, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		affected = 0
	}
	id := null.Int{}
	if lastID, err := res.LastInsertId(); err == nil {
		id = null.IntFrom(lastID)
	}
	return affected, id, nil
}

// Begin a transaction.
func (c *sqlConn) Begin() error {
	if c.tx != nil {
		return ErrTxExists
	}
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	c.tx = tx
	return nil
}

// Commit the transaction.
func (c *sqlConn) Commit() error {
	if c.tx == nil {
		return ErrNoTx
	}
	err := c.tx.Commit()
	c.tx = nil
	return err
}

// Rollback the transaction.
func (c *sqlConn) Rollback() error {
	if c.tx == nil {
		return ErrNoTx
	}
	err := c.tx.Rollback()
	c.tx = nil
	return err
}

// InTransaction returns true if a transaction is open.
func (c *sqlConn) InTransaction() bool {
	return c.tx != nil
}

// Close the database handle.
func (c *sqlConn) Close() error {
	return c.db.Close()
}
