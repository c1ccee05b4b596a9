// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/patrickascher/sqlkit/grammar"
	"github.com/patrickascher/sqlkit/schema/blueprint"
)

// Grammar of the postgres dialect.
// Numbered placeholders, indexes are separate statements.
type Grammar struct {
	grammar.Base
}

// NewGrammar creates the postgres grammar.
func NewGrammar() grammar.Grammar {
	return &Grammar{Base: grammar.Base{Quote: `"`, True: "TRUE", False: "FALSE"}}
}

// Name of the dialect.
func (g *Grammar) Name() string {
	return Name
}

// Placeholder returns $1, $2, ...
func (g *Grammar) Placeholder() grammar.Placeholder {
	return grammar.Placeholder{Numeric: true, Char: "$"}
}

// NoLimit is LIMIT ALL.
func (g *Grammar) NoLimit() string {
	return "ALL"
}

// ColumnType returns the postgres type. Auto increment integers are serials.
func (g *Grammar) ColumnType(c blueprint.Column) string {
	switch c.Type {
	case blueprint.UUID:
		return "UUID"
	case blueprint.String:
		return "VARCHAR(" + strconv.Itoa(grammar.Length(c.Length, blueprint.DefaultStringLength)) + ")"
	case blueprint.Char:
		return "CHAR(" + strconv.Itoa(grammar.Length(c.Length, 1)) + ")"
	case blueprint.Text, blueprint.MediumText, blueprint.LongText:
		return "TEXT"
	case blueprint.TinyInteger, blueprint.SmallInteger:
		if c.AutoIncrement {
			return "SMALLSERIAL"
		}
		return "SMALLINT"
	case blueprint.Integer:
		if c.AutoIncrement {
			return "SERIAL"
		}
		return "INTEGER"
	case blueprint.BigInteger:
		if c.AutoIncrement {
			return "BIGSERIAL"
		}
		return "BIGINT"
	case blueprint.Boolean:
		return "BOOLEAN"
	case blueprint.Decimal:
		return fmt.Sprintf("NUMERIC(%d,%d)", grammar.Length(c.Precision, 10), c.Scale)
	case blueprint.Float:
		return "REAL"
	case blueprint.Double:
		return "DOUBLE PRECISION"
	case blueprint.Date:
		return "DATE"
	case blueprint.DateTime, blueprint.Timestamp:
		return "TIMESTAMP(0) WITHOUT TIME ZONE"
	case blueprint.Time:
		return "TIME(0) WITHOUT TIME ZONE"
	case blueprint.JSON:
		return "JSON"
	case blueprint.JSONB:
		return "JSONB"
	case blueprint.Binary:
		return "BYTEA"
	case blueprint.Enum:
		return "VARCHAR(" + strconv.Itoa(grammar.Length(c.Length, blueprint.DefaultStringLength)) + ")"
	}
	return strings.ToUpper(c.Type)
}

func (g *Grammar) column(c blueprint.Column, inlinePrimary bool) string {
	sql := g.QuoteIdentifier(c.Name) + " " + g.ColumnType(c)
	if c.Nullable {
		sql += " NULL"
	} else {
		sql += " NOT NULL"
	}
	sql += g.CompileDefault(c)
	if c.Primary && inlinePrimary {
		sql += " PRIMARY KEY"
	}
	if c.Type == blueprint.Enum && len(c.Allowed) > 0 {
		sql += " CHECK (" + g.QuoteIdentifier(c.Name) + " IN (" + g.QuoteList(c.Allowed) + "))"
	}
	return sql
}

// comments are separate statements in postgres.
func (g *Grammar) comments(b *blueprint.Blueprint) []string {
	var rv []string
	for _, c := range b.Columns {
		if c.Comment != "" {
			rv = append(rv, "COMMENT ON COLUMN "+g.QuoteIdentifier(b.Table+"."+c.Name)+" IS "+g.FormatLiteral(c.Comment))
		}
	}
	return rv
}

// CompileCreate returns the CREATE TABLE statement followed by the index and comment statements.
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
	return append(stmts, g.comments(b)...), nil
}

// CompileAlter returns one statement per column, index and command.
func (g *Grammar) CompileAlter(b *blueprint.Blueprint) ([]string, error) {
	table := g.QuoteIdentifier(b.Table)
	var stmts []string

	for _, c := range b.Columns {
		stmts = append(stmts, "ALTER TABLE "+table+" ADD COLUMN "+g.column(*c, true))
	}
	for _, idx := range b.AllIndexes() {
		stmts = append(stmts, g.CompileIndex(b.Table, idx))
	}
	for _, cmd := range b.Commands {
		switch cmd.Type {
		case blueprint.PrimaryCommand:
			stmts = append(stmts, "ALTER TABLE "+table+" ADD PRIMARY KEY ("+g.QuoteIdentifiers(cmd.Columns)+")")
		case blueprint.DropColumnCommand:
			for _, col := range cmd.Columns {
				stmts = append(stmts, "ALTER TABLE "+table+" DROP COLUMN "+g.QuoteIdentifier(col))
			}
		case blueprint.DropIndexCommand:
			stmts = append(stmts, "DROP INDEX "+g.QuoteIdentifier(cmd.Name))
		case blueprint.DropForeignCommand:
			stmts = append(stmts, "ALTER TABLE "+table+" DROP CONSTRAINT "+g.QuoteIdentifier(cmd.Name))
		}
	}
	for _, cmd := range b.CommandsOf(blueprint.ForeignCommand) {
		fk, err := g.CompileForeign(cmd)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, "ALTER TABLE "+table+" ADD "+fk)
	}
	return append(stmts, g.comments(b)...), nil
}

// CompileRename returns the ALTER TABLE RENAME statement.
func (g *Grammar) CompileRename(from string, to string) []string {
	return []string{"ALTER TABLE " + g.QuoteIdentifier(from) + " RENAME TO " + g.QuoteIdentifier(to)}
}

// CompileHasTable checks the information schema of the current schema.
func (g *Grammar) CompileHasTable(table string) (string, []interface{}) {
	return "SELECT 1 FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ?", []interface{}{table}
}

// CompileReturning adds a RETURNING clause.
func (g *Grammar) CompileReturning(stmt string, key string) (string, bool) {
	return stmt + " RETURNING " + g.QuoteIdentifier(key), true
}
