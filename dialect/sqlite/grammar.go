// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sqlite

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/patrickascher/sqlkit/grammar"
	"github.com/patrickascher/sqlkit/schema/blueprint"
)

// Grammar of the sqlite dialect.
// Indexes are separate CREATE INDEX statements, foreign keys are inlined.
type Grammar struct {
	grammar.Base
}

// NewGrammar creates the sqlite grammar.
func NewGrammar() grammar.Grammar {
	return &Grammar{Base: grammar.Base{Quote: `"`, True: "1", False: "0"}}
}

// Name of the dialect.
func (g *Grammar) Name() string {
	return Name
}

// Placeholder returns "?".
func (g *Grammar) Placeholder() grammar.Placeholder {
	return grammar.Placeholder{Char: grammar.PLACEHOLDER}
}

// NoLimit is -1 in sqlite.
func (g *Grammar) NoLimit() string {
	return "-1"
}

// ColumnType maps the type to the sqlite affinities.
func (g *Grammar) ColumnType(c blueprint.Column) string {
	switch c.Type {
	case blueprint.String:
		return "VARCHAR(" + strconv.Itoa(grammar.Length(c.Length, blueprint.DefaultStringLength)) + ")"
	case blueprint.Char, blueprint.UUID, blueprint.Text, blueprint.MediumText, blueprint.LongText,
		blueprint.Date, blueprint.DateTime, blueprint.Time, blueprint.Timestamp,
		blueprint.JSON, blueprint.JSONB, blueprint.Enum:
		return "TEXT"
	case blueprint.TinyInteger, blueprint.SmallInteger, blueprint.Integer, blueprint.BigInteger, blueprint.Boolean:
		return "INTEGER"
	case blueprint.Decimal, blueprint.Float, blueprint.Double:
		return "REAL"
	case blueprint.Binary:
		return "BLOB"
	}
	return strings.ToUpper(c.Type)
}

// column definition.
// AUTOINCREMENT is only valid on an integer primary key.
func (g *Grammar) column(c blueprint.Column, inlinePrimary bool) string {
	sql := g.QuoteIdentifier(c.Name) + " " + g.ColumnType(c)
	if c.Primary && inlinePrimary {
		sql += " PRIMARY KEY"
		if c.AutoIncrement && g.ColumnType(c) == "INTEGER" {
			sql += " AUTOINCREMENT"
		}
	}
	if !c.Nullable {
		sql += " NOT NULL"
	}
	sql += g.CompileDefault(c)
	if c.Type == blueprint.Enum && len(c.Allowed) > 0 {
		sql += " CHECK (" + g.QuoteIdentifier(c.Name) + " IN (" + g.QuoteList(c.Allowed) + "))"
	}
	return sql
}

// CompileCreate returns the CREATE TABLE statement followed by one statement per index.
func (g *Grammar) CompileCreate(b *blueprint.Blueprint) ([]string, error) {
	primaries := b.PrimaryKeys()
	var defs []string
	for _, c := range b.Columns {
		defs = append(defs, g.column(*c, len(primaries) == 1))
	}
	if len(primaries) > 1 {
		defs = append(defs, "PRIMARY KEY ("+g.QuoteIdentifiers(primaries)+")")
	}

	for _, cmd := range b.Commands {
		switch cmd.Type {
		case blueprint.PrimaryCommand:
			defs = append(defs, "PRIMARY KEY ("+g.QuoteIdentifiers(cmd.Columns)+")")
		case blueprint.DropColumnCommand, blueprint.DropIndexCommand, blueprint.DropForeignCommand:
			return nil, fmt.Errorf("%w: drop commands on create table %s", grammar.ErrUnsupported, b.Table)
		}
	}
	for _, cmd := range b.CommandsOf(blueprint.ForeignCommand) {
		fk, err := g.CompileForeign(cmd)
		if err != nil {
			return nil, err
		}
		defs = append(defs, fk)
	}

	stmts := []string{"CREATE TABLE " + g.QuoteIdentifier(b.Table) + " (" + strings.Join(defs, ", ") + ")"}
	for _, idx := range b.AllIndexes() {
		stmts = append(stmts, g.CompileIndex(b.Table, idx))
	}
	return stmts, nil
}

// CompileAlter returns one ADD COLUMN statement per column and one statement per index and drop command.
// Primary and foreign keys can not be added to an existing table.
func (g *Grammar) CompileAlter(b *blueprint.Blueprint) ([]string, error) {
	table := g.QuoteIdentifier(b.Table)
	var stmts []string

	for _, c := range b.Columns {
		if c.Primary {
			return nil, fmt.Errorf("%w: add primary column %s to existing table %s", grammar.ErrUnsupported, c.Name, b.Table)
		}
		stmts = append(stmts, "ALTER TABLE "+table+" ADD COLUMN "+g.column(*c, false))
	}
	for _, idx := range b.AllIndexes() {
		stmts = append(stmts, g.CompileIndex(b.Table, idx))
	}

	for _, cmd := range b.Commands {
		switch cmd.Type {
		case blueprint.PrimaryCommand, blueprint.ForeignCommand, blueprint.DropForeignCommand:
			return nil, fmt.Errorf("%w: alter keys of existing table %s", grammar.ErrUnsupported, b.Table)
		case blueprint.DropColumnCommand:
			for _, col := range cmd.Columns {
				stmts = append(stmts, "ALTER TABLE "+table+" DROP COLUMN "+g.QuoteIdentifier(col))
			}
		case blueprint.DropIndexCommand:
			stmts = append(stmts, "DROP INDEX "+g.QuoteIdentifier(cmd.Name))
		}
	}
	return stmts, nil
}

// CompileRename returns the ALTER TABLE RENAME statement.
func (g *Grammar) CompileRename(from string, to string) []string {
	return []string{"ALTER TABLE " + g.QuoteIdentifier(from) + " RENAME TO " + g.QuoteIdentifier(to)}
}

// CompileHasTable checks sqlite_master.
func (g *Grammar) CompileHasTable(table string) (string, []interface{}) {
	return "SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?", []interface{}{table}
}

// CompileReturning adds a RETURNING clause (sqlite >= 3.35).
func (g *Grammar) CompileReturning(stmt string, key string) (string, bool) {
	return stmt + " RETURNING " + g.QuoteIdentifier(key), true
}
