// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package postgres registers the postgres grammar and connection opener.
// It uses the driver https://github.com/lib/pq.
//
// Usage:
//	import _ "github.com/patrickascher/sqlkit/dialect/postgres"
package postgres

import (
	"database/sql"
	"log"
	"net"
	"net/url"
	"strconv"

	"github.com/lib/pq"
	"github.com/patrickascher/sqlkit/connection"
	"github.com/patrickascher/sqlkit/grammar"
)

// Name of the dialect.
const Name = "postgres"

// DefaultPort of the server.
const DefaultPort = 5432

// init registers the grammar and the opener.
func init() {
	for _, name := range []string{Name, "postgresql", "pgx"} {
		if err := connection.Register(name, Open); err != nil {
			log.Fatal(err)
		}
	}
	if err := grammar.Register(Name, NewGrammar); err != nil {
		log.Fatal(err)
	}
}

// DSN returns the connection url of the options. sslmode defaults to disable.
func DSN(opt connection.Options) string {
	host := opt.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := opt.Port
	if port == 0 {
		port = DefaultPort
	}

	u := url.URL{Scheme: "postgres", Host: net.JoinHostPort(host, strconv.Itoa(port)), Path: "/" + opt.Database}
	if opt.Username != "" {
		if opt.Password != "" {
			u.User = url.UserPassword(opt.Username, opt.Password)
		} else {
			u.User = url.User(opt.Username)
		}
	}

	q := url.Values{}
	q.Set("sslmode", "disable")
	if opt.Charset != "" {
		q.Set("client_encoding", opt.Charset)
	}
	for k, v := range opt.Options {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Open a postgres connection and ping it.
func Open(opt connection.Options) (connection.Conn, error) {
	connector, err := pq.NewConnector(DSN(opt))
	if err != nil {
		return nil, err
	}
	db := sql.OpenDB(connector)
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return connection.NewSQLConn(Name, db, opt.MaxConnLifetime), nil
}
