// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package blueprint_test

import (
	"testing"

	"github.com/patrickascher/sqlkit/schema/blueprint"
	"github.com/stretchr/testify/assert"
)

func TestBlueprint_Columns(t *testing.T) {
	asserts := assert.New(t)

	b := blueprint.New("users", blueprint.Create)
	asserts.True(b.Creating())
	asserts.Equal("create", b.Mode.String())

	b.ID()
	b.String("name")
	b.String("email", 100).Unique()
	b.Decimal("amount", 8, 2).Default(0)
	b.Enum("state", "active", "inactive").Nullable()
	b.Timestamps()

	asserts.Equal(7, len(b.Columns))
	asserts.Equal(blueprint.Column{Type: blueprint.BigInteger, Name: "id", Unsigned: true, AutoIncrement: true, Primary: true}, *b.Columns[0])
	asserts.Equal(blueprint.DefaultStringLength, b.Columns[1].Length)
	asserts.Equal(100, b.Columns[2].Length)
	asserts.True(b.Columns[2].Unique)
	asserts.Equal(8, b.Columns[3].Precision)
	asserts.Equal(2, b.Columns[3].Scale)
	asserts.True(b.Columns[3].HasDefault)
	asserts.Equal([]string{"active", "inactive"}, b.Columns[4].Allowed)
	asserts.Equal("created_at", b.Columns[5].Name)
	asserts.True(b.Columns[6].Nullable)
	asserts.Equal([]string{"id"}, b.PrimaryKeys())
}

func TestBlueprint_AllIndexes(t *testing.T) {
	asserts := assert.New(t)

	b := blueprint.New("users", blueprint.Create)
	b.String("email").Unique()
	b.String("name").Index("name_idx")
	b.Index("name", "email")
	b.Unique("name", "email").Name("uniq_pair")

	idx := b.AllIndexes()
	asserts.Equal([]blueprint.Index{
		{Type: blueprint.UniqueIndex, Columns: []string{"email"}, Name: "uniq_users_email"},
		{Type: blueprint.PlainIndex, Columns: []string{"name"}, Name: "name_idx"},
		{Type: blueprint.PlainIndex, Columns: []string{"name", "email"}, Name: "idx_users_name_email"},
		{Type: blueprint.UniqueIndex, Columns: []string{"name", "email"}, Name: "uniq_pair"},
	}, idx)

	// default names are not written back.
	asserts.Equal("", b.Indexes[0].Name)
}

func TestBlueprint_Commands(t *testing.T) {
	asserts := assert.New(t)

	b := blueprint.New("posts", blueprint.Alter)
	b.ForeignID("user_id")
	b.Foreign("user_id").References("id").On("users").OnDelete("CASCADE")
	b.Foreign("tag_id").References("id").On("tags").Name("custom_fk")
	b.DropColumn("title", "body")
	b.DropIndex("idx_posts_title")

	fks := b.CommandsOf(blueprint.ForeignCommand)
	asserts.Equal(2, len(fks))
	asserts.Equal("fk_posts_user_id", fks[0].Name)
	asserts.Equal("users", fks[0].On)
	asserts.Equal("CASCADE", fks[0].OnDelete)
	asserts.Equal("custom_fk", fks[1].Name)

	drops := b.CommandsOf(blueprint.DropColumnCommand)
	asserts.Equal([]string{"title", "body"}, drops[0].Columns)
	asserts.Equal(1, len(b.CommandsOf(blueprint.DropIndexCommand)))
	asserts.Equal(0, len(b.CommandsOf(blueprint.PrimaryCommand)))
	asserts.Equal("alter", b.Mode.String())
}

func TestDefaultName(t *testing.T) {
	assert.Equal(t, "uniq_users_email", blueprint.DefaultName("uniq", "Users", []string{"email"}))
	assert.Equal(t, "idx_app_users_a_b", blueprint.DefaultName("idx", "app.users", []string{"a", "b"}))
}
