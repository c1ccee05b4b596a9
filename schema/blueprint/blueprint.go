// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package blueprint provides a declarative description of a table.
// A Blueprint collects columns, indexes and table commands, a grammar compiles it into DDL statements.
//
// Column, index and foreign key definitions are handles to an element of the blueprint.
// They only modify their own element and never hold a reference to the blueprint.
package blueprint

import (
	"strings"
)

// Mode of the blueprint.
type Mode int

// Blueprint modes.
const (
	Create Mode = iota + 1
	Alter
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Create:
		return "create"
	case Alter:
		return "alter"
	}
	return "unknown"
}

// Column types.
const (
	BigInteger   = "bigInteger"
	Binary       = "binary"
	Boolean      = "boolean"
	Char         = "char"
	Date         = "date"
	DateTime     = "dateTime"
	Decimal      = "decimal"
	Double       = "double"
	Enum         = "enum"
	Float        = "float"
	Integer      = "integer"
	JSON         = "json"
	JSONB        = "jsonb"
	LongText     = "longText"
	MediumText   = "mediumText"
	SmallInteger = "smallInteger"
	String       = "string"
	Text         = "text"
	Time         = "time"
	Timestamp    = "timestamp"
	TinyInteger  = "tinyInteger"
	UUID         = "uuid"
)

// DefaultStringLength is used if no length was defined for a string column.
const DefaultStringLength = 255

// Blueprint of a table.
type Blueprint struct {
	Table string
	Mode  Mode

	Columns  []*Column
	Indexes  []*Index
	Commands []*Command

	// Engine, Charset and Collation are only used by dialects which support them.
	Engine    string
	Charset   string
	Collation string
}

// New creates a new blueprint for the table.
func New(table string, mode Mode) *Blueprint {
	return &Blueprint{Table: table, Mode: mode}
}

// Creating returns true if the blueprint is in Create mode.
func (b *Blueprint) Creating() bool {
	return b.Mode == Create
}

// AddColumn adds a column by type and name.
func (b *Blueprint) AddColumn(typ string, name string) *ColumnDefinition {
	col := &Column{Type: typ, Name: name}
	b.Columns = append(b.Columns, col)
	return &ColumnDefinition{col: col}
}

// Increments adds an auto-incrementing unsigned integer primary key.
func (b *Blueprint) Increments(name string) *ColumnDefinition {
	return b.AddColumn(Integer, name).Unsigned().AutoIncrement().Primary()
}

// BigIncrements adds an auto-incrementing unsigned big integer primary key.
func (b *Blueprint) BigIncrements(name string) *ColumnDefinition {
	return b.AddColumn(BigInteger, name).Unsigned().AutoIncrement().Primary()
}

// ID is an alias for BigIncrements("id").
func (b *Blueprint) ID() *ColumnDefinition {
	return b.BigIncrements("id")
}

// String adds a varchar column. If no length is given, DefaultStringLength is used.
func (b *Blueprint) String(name string, length ...int) *ColumnDefinition {
	c := b.AddColumn(String, name)
	if len(length) > 0 {
		return c.Length(length[0])
	}
	return c.Length(DefaultStringLength)
}

// Char adds a fixed length char column.
func (b *Blueprint) Char(name string, length int) *ColumnDefinition {
	return b.AddColumn(Char, name).Length(length)
}

// Text adds a text column.
func (b *Blueprint) Text(name string) *ColumnDefinition {
	return b.AddColumn(Text, name)
}

// MediumText adds a medium text column.
func (b *Blueprint) MediumText(name string) *ColumnDefinition {
	return b.AddColumn(MediumText, name)
}

// LongText adds a long text column.
func (b *Blueprint) LongText(name string) *ColumnDefinition {
	return b.AddColumn(LongText, name)
}

// Integer adds an integer column.
func (b *Blueprint) Integer(name string) *ColumnDefinition {
	return b.AddColumn(Integer, name)
}

// TinyInteger adds a tiny integer column.
func (b *Blueprint) TinyInteger(name string) *ColumnDefinition {
	return b.AddColumn(TinyInteger, name)
}

// SmallInteger adds a small integer column.
func (b *Blueprint) SmallInteger(name string) *ColumnDefinition {
	return b.AddColumn(SmallInteger, name)
}

// BigInteger adds a big integer column.
func (b *Blueprint) BigInteger(name string) *ColumnDefinition {
	return b.AddColumn(BigInteger, name)
}

// UnsignedInteger adds an unsigned integer column.
func (b *Blueprint) UnsignedInteger(name string) *ColumnDefinition {
	return b.AddColumn(Integer, name).Unsigned()
}

// ForeignID adds an unsigned big integer column, the usual type for referencing an ID() column.
func (b *Blueprint) ForeignID(name string) *ColumnDefinition {
	return b.AddColumn(BigInteger, name).Unsigned()
}

// Boolean adds a boolean column.
func (b *Blueprint) Boolean(name string) *ColumnDefinition {
	return b.AddColumn(Boolean, name)
}

// Decimal adds a decimal column with the given precision and scale.
func (b *Blueprint) Decimal(name string, precision int, scale int) *ColumnDefinition {
	c := b.AddColumn(Decimal, name)
	c.col.Precision = precision
	c.col.Scale = scale
	return c
}

// Float adds a float column.
func (b *Blueprint) Float(name string) *ColumnDefinition {
	return b.AddColumn(Float, name)
}

// Double adds a double column.
func (b *Blueprint) Double(name string) *ColumnDefinition {
	return b.AddColumn(Double, name)
}

// Date adds a date column.
func (b *Blueprint) Date(name string) *ColumnDefinition {
	return b.AddColumn(Date, name)
}

// DateTime adds a datetime column.
func (b *Blueprint) DateTime(name string) *ColumnDefinition {
	return b.AddColumn(DateTime, name)
}

// Time adds a time column.
func (b *Blueprint) Time(name string) *ColumnDefinition {
	return b.AddColumn(Time, name)
}

// Timestamp adds a timestamp column.
func (b *Blueprint) Timestamp(name string) *ColumnDefinition {
	return b.AddColumn(Timestamp, name)
}

// Timestamps adds the nullable created_at and updated_at columns.
func (b *Blueprint) Timestamps() {
	b.Timestamp("created_at").Nullable()
	b.Timestamp("updated_at").Nullable()
}

// SoftDeletes adds the nullable deleted_at column.
func (b *Blueprint) SoftDeletes() *ColumnDefinition {
	return b.Timestamp("deleted_at").Nullable()
}

// JSON adds a json column.
func (b *Blueprint) JSON(name string) *ColumnDefinition {
	return b.AddColumn(JSON, name)
}

// JSONB adds a binary json column. Dialects without jsonb fall back to json.
func (b *Blueprint) JSONB(name string) *ColumnDefinition {
	return b.AddColumn(JSONB, name)
}

// Binary adds a binary column.
func (b *Blueprint) Binary(name string) *ColumnDefinition {
	return b.AddColumn(Binary, name)
}

// UUID adds an uuid column.
func (b *Blueprint) UUID(name string) *ColumnDefinition {
	return b.AddColumn(UUID, name)
}

// Enum adds an enum column with the allowed values.
func (b *Blueprint) Enum(name string, allowed ...string) *ColumnDefinition {
	c := b.AddColumn(Enum, name)
	c.col.Allowed = allowed
	return c
}

// Primary adds a primary key command for the given columns.
func (b *Blueprint) Primary(columns ...string) {
	b.Commands = append(b.Commands, &Command{Type: PrimaryCommand, Columns: columns})
}

// Unique adds an unique index for the given columns.
func (b *Blueprint) Unique(columns ...string) *IndexDefinition {
	return b.addIndex(UniqueIndex, columns)
}

// Index adds a plain index for the given columns.
func (b *Blueprint) Index(columns ...string) *IndexDefinition {
	return b.addIndex(PlainIndex, columns)
}

func (b *Blueprint) addIndex(typ IndexType, columns []string) *IndexDefinition {
	idx := &Index{Type: typ, Columns: columns}
	b.Indexes = append(b.Indexes, idx)
	return &IndexDefinition{idx: idx}
}

// Foreign adds a foreign key for the given columns.
// The referenced table and columns are set on the returned definition.
func (b *Blueprint) Foreign(columns ...string) *ForeignDefinition {
	cmd := &Command{Type: ForeignCommand, Columns: columns}
	b.Commands = append(b.Commands, cmd)
	return &ForeignDefinition{cmd: cmd}
}

// DropColumn drops the given columns.
func (b *Blueprint) DropColumn(columns ...string) {
	b.Commands = append(b.Commands, &Command{Type: DropColumnCommand, Columns: columns})
}

// DropIndex drops an index (plain or unique) by name.
func (b *Blueprint) DropIndex(name string) {
	b.Commands = append(b.Commands, &Command{Type: DropIndexCommand, Name: name})
}

// DropForeign drops a foreign key by name.
func (b *Blueprint) DropForeign(name string) {
	b.Commands = append(b.Commands, &Command{Type: DropForeignCommand, Name: name})
}

// AllIndexes returns the indexes which were defined on column level, in column order,
// followed by the table level indexes. Missing names are filled with the default name.
func (b *Blueprint) AllIndexes() []Index {
	var rv []Index
	for _, c := range b.Columns {
		if c.Unique {
			rv = append(rv, Index{Type: UniqueIndex, Columns: []string{c.Name}, Name: c.UniqueName})
		}
		if c.Index {
			rv = append(rv, Index{Type: PlainIndex, Columns: []string{c.Name}, Name: c.IndexName})
		}
	}
	for _, i := range b.Indexes {
		rv = append(rv, *i)
	}

	for i := range rv {
		if rv[i].Name == "" {
			rv[i].Name = DefaultName(rv[i].Type.prefix(), b.Table, rv[i].Columns)
		}
	}
	return rv
}

// PrimaryKeys returns the column names which are marked as primary on column level.
func (b *Blueprint) PrimaryKeys() []string {
	var rv []string
	for _, c := range b.Columns {
		if c.Primary {
			rv = append(rv, c.Name)
		}
	}
	return rv
}

// CommandsOf returns all commands of the given type.
func (b *Blueprint) CommandsOf(typ CommandType) []Command {
	var rv []Command
	for _, c := range b.Commands {
		if c.Type == typ {
			cmd := *c
			if typ == ForeignCommand && cmd.Name == "" {
				cmd.Name = DefaultName("fk", b.Table, cmd.Columns)
			}
			rv = append(rv, cmd)
		}
	}
	return rv
}

// DefaultName creates an index or constraint name (prefix_table_col1_col2).
func DefaultName(prefix string, table string, columns []string) string {
	name := strings.ToLower(prefix + "_" + table + "_" + strings.Join(columns, "_"))
	return strings.NewReplacer(".", "_", "-", "_", " ", "_").Replace(name)
}
