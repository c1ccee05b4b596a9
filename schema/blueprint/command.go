// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package blueprint

// IndexType of an index.
type IndexType int

// Index types.
const (
	PlainIndex IndexType = iota + 1
	UniqueIndex
)

func (t IndexType) prefix() string {
	if t == UniqueIndex {
		return "uniq"
	}
	return "idx"
}

// Index definition.
type Index struct {
	Type    IndexType
	Columns []string
	Name    string
}

// IndexDefinition is a fluent handle to an index of a blueprint.
type IndexDefinition struct {
	idx *Index
}

// Name sets the index name.
func (i *IndexDefinition) Name(name string) *IndexDefinition {
	i.idx.Name = name
	return i
}

// CommandType of a table command.
type CommandType int

// Command types.
const (
	PrimaryCommand CommandType = iota + 1
	ForeignCommand
	DropColumnCommand
	DropIndexCommand
	DropForeignCommand
)

// Command is a table level command.
type Command struct {
	Type    CommandType
	Columns []string
	Name    string

	// foreign key
	On         string
	References []string
	OnDelete   string
	OnUpdate   string
}

// ForeignDefinition is a fluent handle to a foreign key command.
type ForeignDefinition struct {
	cmd *Command
}

// References sets the referenced columns.
func (f *ForeignDefinition) References(columns ...string) *ForeignDefinition {
	f.cmd.References = columns
	return f
}

// On sets the referenced table.
func (f *ForeignDefinition) On(table string) *ForeignDefinition {
	f.cmd.On = table
	return f
}

// OnDelete action (CASCADE, SET NULL, RESTRICT, NO ACTION).
func (f *ForeignDefinition) OnDelete(action string) *ForeignDefinition {
	f.cmd.OnDelete = action
	return f
}

// OnUpdate action (CASCADE, SET NULL, RESTRICT, NO ACTION).
func (f *ForeignDefinition) OnUpdate(action string) *ForeignDefinition {
	f.cmd.OnUpdate = action
	return f
}

// Name sets the constraint name.
func (f *ForeignDefinition) Name(name string) *ForeignDefinition {
	f.cmd.Name = name
	return f
}
