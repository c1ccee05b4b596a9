// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/patrickascher/sqlkit/config"
	"github.com/patrickascher/sqlkit/config/viper"
	"github.com/patrickascher/sqlkit/connection"
	_ "github.com/patrickascher/sqlkit/dialect/mysql"
	_ "github.com/patrickascher/sqlkit/dialect/postgres"
	_ "github.com/patrickascher/sqlkit/dialect/sqlite"
	"github.com/patrickascher/sqlkit/logger"
	"github.com/patrickascher/sqlkit/logger/logrus"
	"github.com/patrickascher/sqlkit/migration"
	"github.com/patrickascher/sqlkit/query"
	"github.com/patrickascher/sqlkit/seed"
)

// EnvPrefix of the environment variables (SQLKIT_MIGRATIONS_DIR).
const EnvPrefix = "SQLKIT"

// Config of the command.
//
//	database:
//	  connections:
//	    default:
//	      driver: sqlite
//	      path: app.db
//	migrations:
//	  dir: migrations
//	seeds:
//	  dir: seeds
type Config struct {
	Database   connection.Config `mapstructure:"database"`
	Migrations Migrations        `mapstructure:"migrations"`
	Seeds      Seeds             `mapstructure:"seeds"`
}

// Migrations settings.
type Migrations struct {
	Dir   string `mapstructure:"dir"`
	Table string `mapstructure:"table"`
}

// Seeds settings.
type Seeds struct {
	Dir string `mapstructure:"dir"`
}

// Defaults of the config.
func (c *Config) Defaults() interface{} {
	return Config{Migrations: Migrations{Dir: "migrations", Table: migration.DefaultTable}, Seeds: Seeds{Dir: "seeds"}}
}

// options of the command line.
type options struct {
	config     string
	env        string
	connection string
	dir        string
	seeds      string
	table      string
	verbose    bool
}

// loadEnv loads the .env file. A missing file is ignored.
func loadEnv(file string) error {
	if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("sqlkit: env: %w", err)
	}
	return nil
}

// loadConfig parses the config file, env variables with the prefix SQLKIT override the file values.
func loadConfig(file string) (Config, error) {
	cfg := Config{}
	err := config.Load(config.VIPER, &cfg, viper.Options{
		FileName:     filepath.Base(file),
		FilePath:     filepath.Dir(file),
		EnvPrefix:    EnvPrefix,
		EnvAutomatic: true,
	})
	if err != nil {
		return cfg, fmt.Errorf("sqlkit: %w", err)
	}
	return cfg, nil
}

// session holds the opened repository and seed runner.
type session struct {
	repo    *migration.Repository
	seeder  *seed.Runner
	seeds   seed.Source
	manager *connection.Manager
}

func (s *session) Close() error {
	return s.manager.Close()
}

// settings loads the env and config file. The flags have priority over the config file.
func settings(opts *options) (Config, error) {
	if err := loadEnv(opts.env); err != nil {
		return Config{}, err
	}
	cfg, err := loadConfig(opts.config)
	if err != nil {
		return cfg, err
	}
	if opts.dir != "" {
		cfg.Migrations.Dir = opts.dir
	}
	if opts.table != "" {
		cfg.Migrations.Table = opts.table
	}
	if opts.seeds != "" {
		cfg.Seeds.Dir = opts.seeds
	}
	return cfg, nil
}

// open connects to the configured database and creates the migration repository and seed runner.
func open(opts *options, out io.Writer) (*session, error) {
	cfg, err := settings(opts)
	if err != nil {
		return nil, err
	}

	lvl := logger.INFO
	if opts.verbose {
		lvl = logger.DEBUG
		for name, c := range cfg.Database.Connections {
			c.Debug = true
			cfg.Database.Connections[name] = c
		}
	}
	provider := logrus.New()
	provider.Instance.SetOutput(out)
	log := logger.New(provider, lvl)

	m, err := connection.New(cfg.Database, connection.WithLogger(log))
	if err != nil {
		return nil, err
	}
	var conn *connection.Connection
	if opts.connection != "" {
		conn, err = m.Connection(opts.connection)
	} else {
		conn, err = m.Default()
	}
	if err != nil {
		m.Close()
		return nil, err
	}
	db, err := query.Open(conn)
	if err != nil {
		m.Close()
		return nil, err
	}

	src := migration.Dir(os.DirFS(cfg.Migrations.Dir), ".")
	return &session{
		repo:    migration.New(db, src, migration.WithTable(cfg.Migrations.Table), migration.WithLogger(log)),
		seeder:  seed.New(db, seed.WithLogger(log)),
		seeds:   seed.Dir(os.DirFS(cfg.Seeds.Dir), "."),
		manager: m,
	}, nil
}
