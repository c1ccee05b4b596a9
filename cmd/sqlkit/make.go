// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/patrickascher/sqlkit/stringer"
	"github.com/spf13/cobra"
)

// ErrName is returned if a file name is empty after sanitizing.
var ErrName = errors.New("sqlkit: invalid name")

// timestampFormat is the prefix of new migration files.
const timestampFormat = "2006_01_02_150405"

// clock of the migration timestamps.
var clock = time.Now

var unsafeChars = regexp.MustCompile(`[^a-z0-9_]+`)

const migrationStub = `up:
  - create: %[1]s
    columns:
      - {name: id, type: increments}
      - {name: name, type: string, options: "length:100;nullable"}
    timestamps: true
down:
  - drop: %[1]s
`

const seederStub = `# rows of %[1]s, one map per row.
- table: %[1]s
  rows:
    - {}
`

// fileName converts the name to lower snake case and replaces all other characters.
func fileName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if strings.ToLower(name) != name {
		name = stringer.CamelToSnake(name)
	}
	name = strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if name == "" {
		return "", ErrName
	}
	return name, nil
}

// migrationTable guesses the table of a migration name (create_users_table => users).
func migrationTable(name string) string {
	table := strings.TrimSuffix(strings.TrimPrefix(name, "create_"), "_table")
	if table == "" {
		return "example"
	}
	return table
}

// seederTable strips a leading order number of the seeder name (01_users => users).
func seederTable(name string) string {
	table := strings.TrimLeft(name, "0123456789_")
	if table == "" {
		return "example"
	}
	return table
}

// makeMigrationCmd writes a new migration file with a timestamp prefix.
func makeMigrationCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "make:migration name",
		Short: "Create a new yaml migration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := settings(opts)
			if err != nil {
				return err
			}
			name, err := fileName(args[0])
			if err != nil {
				return err
			}
			file := filepath.Join(cfg.Migrations.Dir, clock().Format(timestampFormat)+"_"+name+".yaml")
			if err = writeStub(file, fmt.Sprintf(migrationStub, migrationTable(name))); err != nil {
				return err
			}
			green.Fprintf(cmd.OutOrStdout(), "Created: %s\n", file)
			return nil
		},
	}
}

// makeSeederCmd writes a new seed file. An existing file is not changed.
func makeSeederCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "make:seeder name",
		Short: "Create a new yaml seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := settings(opts)
			if err != nil {
				return err
			}
			name, err := fileName(args[0])
			if err != nil {
				return err
			}
			file := filepath.Join(cfg.Seeds.Dir, name+".yaml")
			if _, err = os.Stat(file); err == nil {
				yellow.Fprintf(cmd.OutOrStdout(), "Seeder already exists: %s\n", file)
				return nil
			}
			if err = writeStub(file, fmt.Sprintf(seederStub, seederTable(name))); err != nil {
				return err
			}
			green.Fprintf(cmd.OutOrStdout(), "Created: %s\n", file)
			return nil
		},
	}
}

func writeStub(file string, content string) error {
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return fmt.Errorf("sqlkit: %w", err)
	}
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		return fmt.Errorf("sqlkit: %w", err)
	}
	return nil
}
