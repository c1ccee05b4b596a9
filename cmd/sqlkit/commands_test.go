// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/patrickascher/sqlkit/connection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// project writes a config file and two migrations into a temp dir and returns the config file.
func project(t *testing.T) string {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "migrations"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "seeds"), 0o755))

	files := map[string]string{
		"migrations/2021_01_01_create_teams.yaml": `
up:
  - create: teams
    columns:
      - {name: id, type: increments}
      - {name: name, type: string}
down:
  - drop: teams
`,
		"migrations/2021_01_02_create_players.yaml": `
up:
  - create: players
    columns:
      - {name: id, type: increments}
      - {name: team_id, type: foreignId, options: "nullable;index"}
down:
  - drop: players
`,
		"seeds/01_teams.yaml": `
- table: teams
  rows:
    - {name: red}
    - {name: blue}
`,
		"sqlkit.yaml": `
database:
  connections:
    default:
      driver: sqlite
      path: ` + filepath.Join(dir, "app.db") + `
migrations:
  dir: ` + filepath.Join(dir, "migrations") + `
  table: migrations
seeds:
  dir: ` + filepath.Join(dir, "seeds") + `
`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return filepath.Join(dir, "sqlkit.yaml")
}

func run(args ...string) (string, error) {
	color.NoColor = true
	out := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	asserts := assert.New(t)
	cfg := project(t)

	out, err := run("status", "--config", cfg)
	asserts.NoError(err)
	asserts.Contains(out, "Pending  2021_01_01_create_teams")
	asserts.Contains(out, "Pending  2021_01_02_create_players")

	out, err = run("migrate", "--config", cfg)
	asserts.NoError(err)
	asserts.Equal("Migrated 2 migration(s).\n", out)

	out, err = run("migrate", "--config", cfg)
	asserts.NoError(err)
	asserts.Equal("Nothing to migrate.\n", out)

	out, err = run("seed", "--config", cfg)
	asserts.NoError(err)
	asserts.Equal("Seeded 1 file(s).\n", out)

	_, err = run("seed", "02_unknown", "--config", cfg)
	asserts.Error(err)

	out, err = run("status", "-c", cfg)
	asserts.NoError(err)
	asserts.Contains(out, "Ran      2021_01_01_create_teams (batch 1, ")

	out, err = run("rollback", "--config", cfg)
	asserts.NoError(err)
	asserts.Equal("Rolled back 2 migration(s).\n", out)

	out, err = run("refresh", "--config", cfg)
	asserts.NoError(err)
	asserts.Equal("Rolled back 0 and migrated 2 migration(s).\n", out)

	out, err = run("reset", "--config", cfg, "--verbose")
	asserts.NoError(err)
	asserts.Equal("Rolled back 2 migration(s).\n", out)
}

func TestCommands_Flags(t *testing.T) {
	asserts := assert.New(t)
	cfg := project(t)

	// the dir flag overrides the config
	out, err := run("migrate", "--config", cfg, "--dir", t.TempDir())
	asserts.NoError(err)
	asserts.Equal("Nothing to migrate.\n", out)

	out, err = run("status", "--config", cfg, "--dir", t.TempDir())
	asserts.NoError(err)
	asserts.Equal("No migrations found.\n", out)

	_, err = run("migrate", "--config", cfg, "--connection", "replica")
	asserts.True(errors.Is(err, connection.ErrUnknownConnection))

	_, err = run("migrate", "--config", filepath.Join(t.TempDir(), "none.yaml"))
	asserts.Error(err)

	_, err = run("migrate", "unexpected", "--config", cfg)
	asserts.Error(err)
}

func TestCommands_Env(t *testing.T) {
	asserts := assert.New(t)
	cfg := project(t)

	env := filepath.Join(filepath.Dir(cfg), ".env")
	require.NoError(t, os.WriteFile(env, []byte("SQLKIT_MIGRATIONS_TABLE=schema_history\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("SQLKIT_MIGRATIONS_TABLE") })

	out, err := run("migrate", "--config", cfg, "--env", env)
	asserts.NoError(err)
	asserts.Equal("Migrated 2 migration(s).\n", out)

	loaded, err := loadConfig(cfg)
	asserts.NoError(err)
	asserts.Equal("schema_history", loaded.Migrations.Table)

	m, err := connection.New(loaded.Database)
	require.NoError(t, err)
	defer m.Close()
	c, err := m.Default()
	require.NoError(t, err)
	rows, err := c.Execute(`SELECT COUNT(*) AS n FROM "schema_history"`, nil)
	asserts.NoError(err)
	asserts.Equal(int64(2), rows[0]["n"])
}

func TestCommands_Make(t *testing.T) {
	asserts := assert.New(t)
	cfg := project(t)
	dir := filepath.Dir(cfg)

	clock = func() time.Time { return time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC) }
	t.Cleanup(func() { clock = time.Now })

	file := filepath.Join(dir, "migrations", "2030_01_02_030405_create_users_table.yaml")
	out, err := run("make:migration", "CreateUsersTable", "--config", cfg)
	asserts.NoError(err)
	asserts.Equal("Created: "+file+"\n", out)
	content, err := os.ReadFile(file)
	asserts.NoError(err)
	asserts.Contains(string(content), "create: users")
	asserts.Contains(string(content), "drop: users")

	// the generated migration runs
	out, err = run("migrate", "--config", cfg)
	asserts.NoError(err)
	asserts.Equal("Migrated 3 migration(s).\n", out)

	file = filepath.Join(dir, "seeds", "02_players.yaml")
	out, err = run("make:seeder", "02_players", "--config", cfg)
	asserts.NoError(err)
	asserts.Equal("Created: "+file+"\n", out)
	content, err = os.ReadFile(file)
	asserts.NoError(err)
	asserts.Contains(string(content), "- table: players")

	out, err = run("make:seeder", "02_players", "--config", cfg)
	asserts.NoError(err)
	asserts.Equal("Seeder already exists: "+file+"\n", out)

	// the seeds flag overrides the config
	seeds := filepath.Join(t.TempDir(), "fixtures")
	out, err = run("make:seeder", "teams", "--config", cfg, "--seeds", seeds)
	asserts.NoError(err)
	asserts.Equal("Created: "+filepath.Join(seeds, "teams.yaml")+"\n", out)

	_, err = run("make:seeder", "!!", "--config", cfg)
	asserts.True(errors.Is(err, ErrName))

	_, err = run("make:migration", "--config", cfg)
	asserts.Error(err)
}
