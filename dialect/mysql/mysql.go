// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mysql registers the mysql grammar and connection opener.
// It uses the driver https://github.com/go-sql-driver/mysql.
//
// Usage:
//	import _ "github.com/patrickascher/sqlkit/dialect/mysql"
package mysql

import (
	"database/sql"
	"log"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/patrickascher/sqlkit/connection"
	"github.com/patrickascher/sqlkit/grammar"
)

// Name of the dialect.
const Name = "mysql"

// DefaultPort of the server.
const DefaultPort = 3306

// init registers the grammar and the opener.
func init() {
	for _, name := range []string{Name, "mariadb"} {
		if err := connection.Register(name, Open); err != nil {
			log.Fatal(err)
		}
	}
	if err := grammar.Register(Name, NewGrammar); err != nil {
		log.Fatal(err)
	}
}

// DSN returns the data source name of the options.
func DSN(opt connection.Options) string {
	cfg := mysql.NewConfig()
	cfg.User = opt.Username
	cfg.Passwd = opt.Password
	cfg.Net = "tcp"
	port := opt.Port
	if port == 0 {
		port = DefaultPort
	}
	host := opt.Host
	if host == "" {
		host = "127.0.0.1"
	}
	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	cfg.DBName = opt.Database

	cfg.Params = map[string]string{}
	if opt.Charset != "" {
		cfg.Params["charset"] = opt.Charset
	}
	for k, v := range opt.Options {
		cfg.Params[k] = v
	}
	return cfg.FormatDSN()
}

// Open a mysql connection and ping it.
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
