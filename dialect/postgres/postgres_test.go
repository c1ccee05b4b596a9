// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package postgres_test

import (
	"testing"

	"github.com/patrickascher/sqlkit/connection"
	"github.com/patrickascher/sqlkit/dialect/postgres"
	"github.com/patrickascher/sqlkit/grammar"
	"github.com/patrickascher/sqlkit/schema/blueprint"
	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	asserts := assert.New(t)
	asserts.Equal("postgres://app:secret@db:5432/shop?sslmode=disable",
		postgres.DSN(connection.Options{Host: "db", Username: "app", Password: "secret", Database: "shop"}))
	asserts.Equal("postgres://127.0.0.1:5433/shop?sslmode=require",
		postgres.DSN(connection.Options{Port: 5433, Database: "shop", Options: map[string]string{"sslmode": "require"}}))
}

func TestGrammar(t *testing.T) {
	asserts := assert.New(t)

	g, err := grammar.New("pgx")
	asserts.NoError(err)
	asserts.Equal("postgres", g.Name())

	asserts.Equal("SELECT * FROM t WHERE a = $1 AND b = '?' AND c IN ($2, $3)",
		g.Placeholder().Replace("SELECT * FROM t WHERE a = ? AND b = '?' AND c IN (?, ?)"))
	asserts.Equal("TRUE", g.FormatLiteral(true))
	asserts.Equal("ALL", g.NoLimit())

	b := blueprint.New("users", blueprint.Create)
	b.Increments("id")
	b.Boolean("active").Default(false).Comment("flag")
	b.JSONB("meta").Nullable()
	b.String("email").Unique()

	stmts, err := g.CompileCreate(b)
	asserts.NoError(err)
	asserts.Equal([]string{
		`CREATE TABLE "users" ("id" SERIAL NOT NULL PRIMARY KEY, "active" BOOLEAN NOT NULL DEFAULT FALSE, "meta" JSONB NULL, "email" VARCHAR(255) NOT NULL)`,
		`CREATE UNIQUE INDEX "uniq_users_email" ON "users" ("email")`,
		`COMMENT ON COLUMN "users"."active" IS 'flag'`,
	}, stmts)

	b = blueprint.New("users", blueprint.Alter)
	b.DropForeign("fk_users_team_id")
	stmts, err = g.CompileAlter(b)
	asserts.NoError(err)
	asserts.Equal([]string{`ALTER TABLE "users" DROP CONSTRAINT "fk_users_team_id"`}, stmts)

	stmt, ok := g.CompileReturning(`INSERT INTO "users" ("email") VALUES ($1)`, "id")
	asserts.True(ok)
	asserts.Equal(`INSERT INTO "users" ("email") VALUES ($1) RETURNING "id"`, stmt)
}
