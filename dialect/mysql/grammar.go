// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/patrickascher/sqlkit/grammar"
	"github.com/patrickascher/sqlkit/schema/blueprint"
)

// defaults of the table options.
const (
	DefaultEngine    = "InnoDB"
	DefaultCharset   = "utf8mb4"
	DefaultCollation = "utf8mb4_unicode_ci"
)

// Grammar of the mysql dialect.
// Indexes and foreign keys are inlined in the CREATE TABLE statement.
type Grammar struct {
	grammar.Base
}

// NewGrammar creates the mysql grammar.
func NewGrammar() grammar.Grammar {
	return &Grammar{Base: grammar.Base{Quote: "`", True: "1", False: "0"}}
}

// Name of the dialect.
func (g *Grammar) Name() string {
	return Name
}

// Placeholder returns "?".
func (g *Grammar) Placeholder() grammar.Placeholder {
	return grammar.Placeholder{Char: grammar.PLACEHOLDER}
}

// NoLimit is the maximum unsigned bigint.
func (g *Grammar) NoLimit() string {
	return "18446744073709551615"
}

// ColumnType returns the mysql type of the column.
// Unknown types are returned as uppercase type name.
func (g *Grammar) ColumnType(c blueprint.Column) string {
	unsigned := ""
	if c.Unsigned {
		unsigned = " UNSIGNED"
	}

	switch c.Type {
	case blueprint.UUID:
		return "CHAR(36)"
	case blueprint.String:
		return "VARCHAR(" + strconv.Itoa(grammar.Length(c.Length, blueprint.DefaultStringLength)) + ")"
	case blueprint.Char:
		return "CHAR(" + strconv.Itoa(grammar.Length(c.Length, 1)) + ")"
	case blueprint.Text:
		return "TEXT"
	case blueprint.MediumText:
		return "MEDIUMTEXT"
	case blueprint.LongText:
		return "LONGTEXT"
	case blueprint.TinyInteger:
		return "TINYINT" + unsigned
	case blueprint.SmallInteger:
		return "SMALLINT" + unsigned
	case blueprint.Integer:
		return "INT" + unsigned
	case blueprint.BigInteger:
		return "BIGINT" + unsigned
	case blueprint.Boolean:
		return "TINYINT(1)"
	case blueprint.Decimal:
		return fmt.Sprintf("DECIMAL(%d,%d)%s", grammar.Length(c.Precision, 10), c.Scale, unsigned)
	case blueprint.Float:
		return fmt.Sprintf("FLOAT(%d,%d)", grammar.Length(c.Precision, 10), grammar.Length(c.Scale, 2))
	case blueprint.Double:
		return fmt.Sprintf("DOUBLE(%d,%d)", grammar.Length(c.Precision, 15), grammar.Length(c.Scale, 8))
	case blueprint.Date:
		return "DATE"
	case blueprint.DateTime:
		return "DATETIME"
	case blueprint.Time:
		return "TIME"
	case blueprint.Timestamp:
		return "TIMESTAMP"
	case blueprint.JSON, blueprint.JSONB:
		return "JSON"
	case blueprint.Binary:
		return "BLOB"
	case blueprint.Enum:
		return "ENUM(" + g.QuoteList(c.Allowed) + ")"
	}
	return strings.ToUpper(c.Type)
}

// column definition.
// The inline PRIMARY KEY is only added if the table has one primary column.
func (g *Grammar) column(c blueprint.Column, inlinePrimary bool) string {
	sql := g.QuoteIdentifier(c.Name) + " " + g.ColumnType(c)
	if c.AutoIncrement {
		sql += " AUTO_INCREMENT"
	}
	if c.Nullable {
		sql += " NULL"
	} else {
		sql += " NOT NULL"
	}
	sql += g.CompileDefault(c)
	if c.Primary && inlinePrimary {
		sql += " PRIMARY KEY"
	}
	if c.Comment != "" {
		sql += " COMMENT " + g.FormatLiteral(c.Comment)
	}
	return sql
}

// CompileCreate returns one CREATE TABLE statement with all keys inlined.
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

	for _, idx := range b.AllIndexes() {
		key := "KEY "
		if idx.Type == blueprint.UniqueIndex {
			key = "UNIQUE KEY "
		}
		defs = append(defs, key+g.QuoteIdentifier(idx.Name)+" ("+g.QuoteIdentifiers(idx.Columns)+")")
	}

	engine, charset, collation := b.Engine, b.Charset, b.Collation
	if engine == "" {
		engine = DefaultEngine
	}
	if charset == "" {
		charset = DefaultCharset
	}
	if collation == "" {
		collation = DefaultCollation
	}

	return []string{fmt.Sprintf("CREATE TABLE %s (%s) ENGINE=%s DEFAULT CHARSET=%s COLLATE=%s",
		g.QuoteIdentifier(b.Table), strings.Join(defs, ", "), engine, charset, collation)}, nil
}

// CompileAlter returns one ALTER TABLE statement per column, index and command.
func (g *Grammar) CompileAlter(b *blueprint.Blueprint) ([]string, error) {
	table := g.QuoteIdentifier(b.Table)
	var stmts []string

	for _, c := range b.Columns {
		stmts = append(stmts, "ALTER TABLE "+table+" ADD "+g.column(*c, true))
	}
	for _, idx := range b.AllIndexes() {
		key := " ADD INDEX "
		if idx.Type == blueprint.UniqueIndex {
			key = " ADD UNIQUE "
		}
		stmts = append(stmts, "ALTER TABLE "+table+key+g.QuoteIdentifier(idx.Name)+" ("+g.QuoteIdentifiers(idx.Columns)+")")
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
			stmts = append(stmts, "ALTER TABLE "+table+" DROP INDEX "+g.QuoteIdentifier(cmd.Name))
		case blueprint.DropForeignCommand:
			stmts = append(stmts, "ALTER TABLE "+table+" DROP FOREIGN KEY "+g.QuoteIdentifier(cmd.Name))
		}
	}
	for _, cmd := range b.CommandsOf(blueprint.ForeignCommand) {
		fk, err := g.CompileForeign(cmd)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, "ALTER TABLE "+table+" ADD "+fk)
	}

	return stmts, nil
}

// CompileRename returns the RENAME TABLE statement.
func (g *Grammar) CompileRename(from string, to string) []string {
	return []string{"RENAME TABLE " + g.QuoteIdentifier(from) + " TO " + g.QuoteIdentifier(to)}
}

// CompileHasTable checks the information schema of the current database.
func (g *Grammar) CompileHasTable(table string) (string, []interface{}) {
	return "SELECT 1 FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?", []interface{}{table}
}
