// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package blueprint

// Column definition.
type Column struct {
	Type string
	Name string

	Nullable      bool
	Default       interface{}
	HasDefault    bool
	UseCurrent    bool
	Unsigned      bool
	AutoIncrement bool
	Primary       bool
	Length        int
	Precision     int
	Scale         int
	Allowed       []string
	Comment       string

	Unique     bool
	UniqueName string
	Index      bool
	IndexName  string
}

// ColumnDefinition is a fluent handle to a column of a blueprint.
type ColumnDefinition struct {
	col *Column
}

// Column returns a copy of the column.
func (c *ColumnDefinition) Column() Column {
	return *c.col
}

// Nullable allows NULL values.
func (c *ColumnDefinition) Nullable() *ColumnDefinition {
	c.col.Nullable = true
	return c
}

// Default value of the column.
func (c *ColumnDefinition) Default(v interface{}) *ColumnDefinition {
	c.col.Default = v
	c.col.HasDefault = true
	return c
}

// UseCurrent sets CURRENT_TIMESTAMP as default value.
func (c *ColumnDefinition) UseCurrent() *ColumnDefinition {
	c.col.UseCurrent = true
	return c
}

// Unsigned marks an integer column as unsigned.
func (c *ColumnDefinition) Unsigned() *ColumnDefinition {
	c.col.Unsigned = true
	return c
}

// AutoIncrement marks the column as auto incrementing.
func (c *ColumnDefinition) AutoIncrement() *ColumnDefinition {
	c.col.AutoIncrement = true
	return c
}

// Primary marks the column as primary key.
func (c *ColumnDefinition) Primary() *ColumnDefinition {
	c.col.Primary = true
	return c
}

// Length of a string or char column.
func (c *ColumnDefinition) Length(l int) *ColumnDefinition {
	c.col.Length = l
	return c
}

// Comment of the column.
func (c *ColumnDefinition) Comment(comment string) *ColumnDefinition {
	c.col.Comment = comment
	return c
}

// Unique adds an unique index on this column. An optional index name can be given.
func (c *ColumnDefinition) Unique(name ...string) *ColumnDefinition {
	c.col.Unique = true
	if len(name) > 0 {
		c.col.UniqueName = name[0]
	}
	return c
}

// Index adds a plain index on this column. An optional index name can be given.
func (c *ColumnDefinition) Index(name ...string) *ColumnDefinition {
	c.col.Index = true
	if len(name) > 0 {
		c.col.IndexName = name[0]
	}
	return c
}
