// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mysql_test

import (
	"errors"
	"testing"

	"github.com/patrickascher/sqlkit/connection"
	"github.com/patrickascher/sqlkit/dialect/mysql"
	"github.com/patrickascher/sqlkit/grammar"
	"github.com/patrickascher/sqlkit/schema/blueprint"
	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	asserts := assert.New(t)

	dsn := mysql.DSN(connection.Options{Username: "root", Password: "secret", Host: "db", Database: "app", Charset: "utf8mb4"})
	asserts.Equal("root:secret@tcp(db:3306)/app?charset=utf8mb4", dsn)

	dsn = mysql.DSN(connection.Options{Username: "root", Port: 3307, Database: "app"})
	asserts.Equal("root@tcp(127.0.0.1:3307)/app", dsn)
}

func TestGrammar_Registered(t *testing.T) {
	asserts := assert.New(t)

	g, err := grammar.New("mysql")
	asserts.NoError(err)
	asserts.Equal("mysql", g.Name())

	g, err = grammar.New("MariaDB")
	asserts.NoError(err)
	asserts.Equal("mysql", g.Name())

	_, err = grammar.New("oracle")
	asserts.True(errors.Is(err, grammar.ErrUnknownDriver))
}

func TestGrammar_Quote(t *testing.T) {
	asserts := assert.New(t)
	g := mysql.NewGrammar()

	asserts.Equal("`users`", g.QuoteIdentifier("users"))
	asserts.Equal("`users`.`id`", g.QuoteIdentifier("users.id"))
	asserts.Equal("`users`.*", g.QuoteIdentifier("users.*"))
	asserts.Equal("*", g.QuoteIdentifier("*"))
	asserts.Equal("`name` `n`", g.QuoteIdentifier("name n"))
	asserts.Equal("`name` AS `n`", g.QuoteIdentifier("name as n"))
	asserts.Equal("`name`", g.QuoteIdentifier("`na`me`"))
	asserts.Equal("COUNT(*)", g.QuoteIdentifier(grammar.Raw("COUNT(*)")))

	asserts.Equal("NULL", g.FormatLiteral(nil))
	asserts.Equal("1", g.FormatLiteral(true))
	asserts.Equal("0", g.FormatLiteral(false))
	asserts.Equal("1.5", g.FormatLiteral(1.5))
	asserts.Equal("'it''s'", g.FormatLiteral("it's"))
	asserts.Equal("?", g.Placeholder().Replace("?"))
	asserts.Equal("18446744073709551615", g.NoLimit())
}

func TestGrammar_ColumnType(t *testing.T) {
	asserts := assert.New(t)
	g := mysql.NewGrammar()

	tests := []struct {
		col  blueprint.Column
		want string
	}{
		{blueprint.Column{Type: blueprint.UUID}, "CHAR(36)"},
		{blueprint.Column{Type: blueprint.String}, "VARCHAR(255)"},
		{blueprint.Column{Type: blueprint.String, Length: 50}, "VARCHAR(50)"},
		{blueprint.Column{Type: blueprint.Integer, Unsigned: true}, "INT UNSIGNED"},
		{blueprint.Column{Type: blueprint.BigInteger}, "BIGINT"},
		{blueprint.Column{Type: blueprint.Boolean}, "TINYINT(1)"},
		{blueprint.Column{Type: blueprint.Decimal}, "DECIMAL(10,0)"},
		{blueprint.Column{Type: blueprint.Decimal, Precision: 8, Scale: 2}, "DECIMAL(8,2)"},
		{blueprint.Column{Type: blueprint.Float}, "FLOAT(10,2)"},
		{blueprint.Column{Type: blueprint.Double}, "DOUBLE(15,8)"},
		{blueprint.Column{Type: blueprint.JSONB}, "JSON"},
		{blueprint.Column{Type: blueprint.Binary}, "BLOB"},
		{blueprint.Column{Type: blueprint.Enum, Allowed: []string{"a", "b"}}, "ENUM('a', 'b')"},
		{blueprint.Column{Type: "geometry"}, "GEOMETRY"},
	}
	for _, tt := range tests {
		asserts.Equal(tt.want, g.ColumnType(tt.col))
	}
}

func TestGrammar_CompileCreate(t *testing.T) {
	asserts := assert.New(t)
	g := mysql.NewGrammar()

	b := blueprint.New("users", blueprint.Create)
	b.ID()
	b.String("email").Unique()
	b.Boolean("active").Default(true).Comment("is active")
	b.ForeignID("team_id").Nullable()
	b.Foreign("team_id").References("id").On("teams").OnDelete("cascade")

	stmts, err := g.CompileCreate(b)
	asserts.NoError(err)
	asserts.Equal([]string{"CREATE TABLE `users` (" +
		"`id` BIGINT UNSIGNED AUTO_INCREMENT NOT NULL PRIMARY KEY, " +
		"`email` VARCHAR(255) NOT NULL, " +
		"`active` TINYINT(1) NOT NULL DEFAULT 1 COMMENT 'is active', " +
		"`team_id` BIGINT UNSIGNED NULL, " +
		"CONSTRAINT `fk_users_team_id` FOREIGN KEY (`team_id`) REFERENCES `teams` (`id`) ON DELETE CASCADE, " +
		"UNIQUE KEY `uniq_users_email` (`email`)" +
		") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci"}, stmts)

	// composite primary key
	b = blueprint.New("role_user", blueprint.Create)
	b.ForeignID("role_id").Primary()
	b.ForeignID("user_id").Primary()
	b.Engine = "MyISAM"
	stmts, err = g.CompileCreate(b)
	asserts.NoError(err)
	asserts.Equal([]string{"CREATE TABLE `role_user` (`role_id` BIGINT UNSIGNED NOT NULL, `user_id` BIGINT UNSIGNED NOT NULL, PRIMARY KEY (`role_id`, `user_id`)) ENGINE=MyISAM DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci"}, stmts)

	// foreign key without reference
	b = blueprint.New("posts", blueprint.Create)
	b.Foreign("user_id")
	_, err = g.CompileCreate(b)
	asserts.True(errors.Is(err, grammar.ErrUnsupported))
}

func TestGrammar_CompileAlter(t *testing.T) {
	asserts := assert.New(t)
	g := mysql.NewGrammar()

	b := blueprint.New("users", blueprint.Alter)
	b.String("nickname", 50).Nullable()
	b.Index("nickname")
	b.DropColumn("legacy")
	b.DropIndex("idx_users_old")
	b.DropForeign("fk_users_team_id")

	stmts, err := g.CompileAlter(b)
	asserts.NoError(err)
	asserts.Equal([]string{
		"ALTER TABLE `users` ADD `nickname` VARCHAR(50) NULL",
		"ALTER TABLE `users` ADD INDEX `idx_users_nickname` (`nickname`)",
		"ALTER TABLE `users` DROP COLUMN `legacy`",
		"ALTER TABLE `users` DROP INDEX `idx_users_old`",
		"ALTER TABLE `users` DROP FOREIGN KEY `fk_users_team_id`",
	}, stmts)

	asserts.Equal([]string{"DROP TABLE `users`"}, g.CompileDrop("users"))
	asserts.Equal([]string{"DROP TABLE IF EXISTS `users`"}, g.CompileDropIfExists("users"))
	asserts.Equal([]string{"RENAME TABLE `a` TO `b`"}, g.CompileRename("a", "b"))

	stmt, args := g.CompileHasTable("users")
	asserts.Contains(stmt, "information_schema.tables")
	asserts.Equal([]interface{}{"users"}, args)

	_, ok := g.CompileReturning("INSERT", "id")
	asserts.False(ok)
}
