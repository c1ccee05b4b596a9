// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sqlite registers the sqlite grammar and connection opener.
// It uses the cgo free driver modernc.org/sqlite.
//
// Usage:
//	import _ "github.com/patrickascher/sqlkit/dialect/sqlite"
package sqlite

import (
	"database/sql"
	"log"
	"net/url"
	"sort"

	"github.com/patrickascher/sqlkit/connection"
	"github.com/patrickascher/sqlkit/grammar"
	_ "modernc.org/sqlite"
)

// Name of the dialect.
const Name = "sqlite"

// Memory is the path of an in-memory database.
const Memory = ":memory:"

// init registers the grammar and the opener.
func init() {
	for _, name := range []string{Name, "sqlite3"} {
		if err := connection.Register(name, Open); err != nil {
			log.Fatal(err)
		}
	}
	if err := grammar.Register(Name, NewGrammar); err != nil {
		log.Fatal(err)
	}
}

// DSN returns the data source name of the options.
// Path defaults to an in-memory database, foreign keys are enabled.
// Options are added as pragmas (busy_timeout => _pragma=busy_timeout(5000)).
func DSN(opt connection.Options) string {
	path := opt.Path
	if path == "" {
		path = opt.Database
	}
	if path == "" {
		path = Memory
	}

	pragmas := map[string]string{"foreign_keys": "1"}
	for k, v := range opt.Options {
		pragmas[k] = v
	}
	keys := make([]string, 0, len(pragmas))
	for k := range pragmas {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	q := url.Values{}
	for _, k := range keys {
		q.Add("_pragma", k+"("+pragmas[k]+")")
	}
	return path + "?" + q.Encode()
}

// Open a sqlite database and ping it.
func Open(opt connection.Options) (connection.Conn, error) {
	db, err := sql.Open(Name, DSN(opt))
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return connection.NewSQLConn(Name, db, opt.MaxConnLifetime), nil
}
