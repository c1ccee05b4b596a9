// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package orm_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/patrickascher/sqlkit/connection"
	_ "github.com/patrickascher/sqlkit/dialect/sqlite"
	"github.com/patrickascher/sqlkit/orm"
	"github.com/patrickascher/sqlkit/query"
	"github.com/patrickascher/sqlkit/schema"
	"github.com/patrickascher/sqlkit/schema/blueprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clock = func() time.Time { return time.Date(2021, 5, 6, 7, 8, 9, 0, time.UTC) }

const now = "2021-05-06 07:08:09"

// models returns fresh model definitions, registration mutates them.
func models() []*orm.Model {
	return []*orm.Model{
		{
			Name:        "User",
			Fillable:    []string{"name", "team_id", "active", "meta"},
			Timestamps:  true,
			SoftDeletes: true,
			Casts:       map[string]string{"active": orm.CastBool, "meta": orm.CastJSON},
			Relations: map[string]orm.Relation{
				"posts": orm.HasMany{Model: "Post"},
				"roles": orm.ManyToMany{Model: "Role", PivotColumns: []string{"granted_at"}},
				"team":  orm.BelongsTo{Model: "Team"},
			},
		},
		{
			Name: "Post",
			Relations: map[string]orm.Relation{
				"user":     orm.BelongsTo{Model: "User"},
				"comments": orm.HasMany{Model: "Comment"},
			},
		},
		{Name: "Comment"},
		{Name: "Role", Guarded: []string{orm.GuardAll}},
		{Name: "Team"},
	}
}

// setup creates the tables in an in-memory database and registers the models.
func setup(t *testing.T) (*orm.ORM, *query.Recorder) {
	m, err := connection.New(connection.Config{Connections: map[string]connection.Options{"default": {Driver: "sqlite"}}})
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	c, err := m.Default()
	require.NoError(t, err)

	rec := query.NewRecorder(c)
	db, err := query.Open(rec)
	require.NoError(t, err)

	s := schema.New(db)
	require.NoError(t, s.Create("teams", func(b *blueprint.Blueprint) {
		b.Increments("id")
		b.String("name")
	}))
	require.NoError(t, s.Create("users", func(b *blueprint.Blueprint) {
		b.Increments("id")
		b.String("name")
		b.ForeignID("team_id").Nullable()
		b.Integer("active").Default(1)
		b.Text("meta").Nullable()
		b.Timestamps()
		b.SoftDeletes()
	}))
	require.NoError(t, s.Create("posts", func(b *blueprint.Blueprint) {
		b.Increments("id")
		b.ForeignID("user_id").Nullable()
		b.String("title")
	}))
	require.NoError(t, s.Create("comments", func(b *blueprint.Blueprint) {
		b.Increments("id")
		b.ForeignID("post_id")
		b.String("body")
	}))
	require.NoError(t, s.Create("roles", func(b *blueprint.Blueprint) {
		b.Increments("id")
		b.String("name")
	}))
	require.NoError(t, s.Create("role_user", func(b *blueprint.Blueprint) {
		b.ForeignID("user_id")
		b.ForeignID("role_id")
		b.String("granted_at").Nullable()
		b.Unique("user_id", "role_id")
	}))

	o := orm.New(db, orm.WithClock(clock))
	require.NoError(t, o.Register(models()...))
	rec.Reset()
	return o, rec
}

// seed inserts n users with 2 posts each, one comment per post and the roles 1 and 2 per user.
func seed(t *testing.T, o *orm.ORM, n int) {
	db := o.DB()
	_, err := db.Table("roles").InsertMany([]map[string]interface{}{{"name": "admin"}, {"name": "editor"}, {"name": "guest"}, {"name": "owner"}})
	require.NoError(t, err)
	if n == 0 {
		return
	}

	var users, posts, comments, pivots []map[string]interface{}
	for i := 1; i <= n; i++ {
		users = append(users, map[string]interface{}{"name": fmt.Sprint("user", i), "created_at": now, "updated_at": now})
		for j := 1; j <= 2; j++ {
			postID := (i-1)*2 + j
			posts = append(posts, map[string]interface{}{"user_id": i, "title": fmt.Sprintf("post%d-%d", i, j)})
			comments = append(comments, map[string]interface{}{"post_id": postID, "body": fmt.Sprint("comment", postID)})
			pivots = append(pivots, map[string]interface{}{"user_id": i, "role_id": j, "granted_at": fmt.Sprintf("2021-0%d-01", j)})
		}
	}
	for table, rows := range map[string][]map[string]interface{}{"users": users, "posts": posts, "comments": comments, "role_user": pivots} {
		_, err = db.Table(table).InsertMany(rows)
		require.NoError(t, err)
	}
}

func TestORM_Register(t *testing.T) {
	asserts := assert.New(t)
	o, _ := setup(t)

	user, err := o.Model("User")
	asserts.NoError(err)
	asserts.Equal("users", user.Table)
	asserts.Equal("id", user.PrimaryKey)

	posts := user.Relations["posts"].(orm.HasMany)
	asserts.Equal(orm.HasManyKind, posts.Kind())
	asserts.Equal("user_id", posts.ForeignKey)
	asserts.Equal("id", posts.LocalKey)
	asserts.Equal("Post", posts.RelatedModel().Name)

	roles := user.Relations["roles"].(orm.ManyToMany)
	asserts.Equal("manyToMany", roles.Kind().String())
	asserts.Equal("role_user", roles.PivotTable)
	asserts.Equal("user_id", roles.ForeignPivotKey)
	asserts.Equal("role_id", roles.RelatedPivotKey)
	asserts.Equal("roles", roles.RelatedModel().Table)

	post, err := o.Model("Post")
	asserts.NoError(err)
	owner := post.Relations["user"].(orm.BelongsTo)
	asserts.Equal("user_id", owner.ForeignKey)
	asserts.Equal("id", owner.OwnerKey)
	asserts.Same(user, owner.RelatedModel())

	_, err = o.Model("Nope")
	asserts.True(errors.Is(err, orm.ErrUnknownModel))
}

func TestORM_RegisterErrors(t *testing.T) {
	asserts := assert.New(t)

	tests := []struct {
		name   string
		models []*orm.Model
		err    error
		msg    string
	}{
		{name: "no name", models: []*orm.Model{{}}, msg: "orm: model"},
		{name: "unknown cast", models: []*orm.Model{{Name: "Tag", Casts: map[string]string{"a": "date"}}}, msg: "orm: model Tag"},
		{name: "unknown related model", models: []*orm.Model{{Name: "Tag", Relations: map[string]orm.Relation{"posts": orm.HasMany{Model: "Post"}}}}, err: orm.ErrUnknownModel},
		{name: "self many to many", models: []*orm.Model{{Name: "Node", Relations: map[string]orm.Relation{"nodes": orm.ManyToMany{Model: "Node"}}}}, err: orm.ErrRelationKind},
		{name: "duplicate", models: []*orm.Model{{Name: "Tag"}, {Name: "Tag"}}, msg: "already registered"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			o := orm.New(nil)
			err := o.Register(test.models...)
			asserts.Error(err)
			if test.err != nil {
				asserts.True(errors.Is(err, test.err), err.Error())
			}
			if test.msg != "" {
				asserts.Contains(err.Error(), test.msg)
			}
			// nothing is registered on error
			_, err = o.Model("Tag")
			asserts.True(errors.Is(err, orm.ErrUnknownModel))
		})
	}
}

func TestORM_Hydrate(t *testing.T) {
	asserts := assert.New(t)
	o, _ := setup(t)

	_, err := o.DB().Table("users").Insert(map[string]interface{}{"name": "john", "meta": `{"lang":"de","level":2}`})
	asserts.NoError(err)

	u, err := o.Query("User").First()
	asserts.NoError(err)
	asserts.True(u.Exists())
	asserts.False(u.Trashed())
	asserts.Equal(int64(1), u.Key())
	asserts.Equal(true, u.Get("active"))
	asserts.Equal(map[string]interface{}{"lang": "de", "level": float64(2)}, u.Get("meta"))
	asserts.Empty(u.Dirty())

	u.Set("name", "jane")
	asserts.Equal(map[string]interface{}{"name": "jane"}, u.Dirty())

	// a failed cast keeps the value
	m, err := o.Model("User")
	asserts.NoError(err)
	e := o.Hydrate(m, map[string]interface{}{"id": int64(2), "meta": "no json"})
	asserts.Equal("no json", e.Get("meta"))

	// integer columns of the drivers
	e = o.Hydrate(m, map[string]interface{}{"id": int64(3), "active": int64(0)})
	asserts.Equal(false, e.Get("active"))
	e = o.Hydrate(m, map[string]interface{}{"id": int64(4), "active": []byte("1")})
	asserts.Equal(true, e.Get("active"))
	e = o.Hydrate(m, map[string]interface{}{"id": int64(5), "active": "true"})
	asserts.Equal(true, e.Get("active"))
}

func TestORM_MassAssignment(t *testing.T) {
	asserts := assert.New(t)
	o := orm.New(nil)
	asserts.NoError(o.Register(&orm.Model{Name: "Tag", Guarded: []string{"secret"}}, &orm.Model{Name: "Lock", Guarded: []string{orm.GuardAll}}, &orm.Model{Name: "Note", Fillable: []string{"body"}, Guarded: []string{"body"}}))

	attributes := map[string]interface{}{"body": "b", "secret": "s"}

	e, err := o.NewEntity("Tag", attributes)
	asserts.NoError(err)
	asserts.Equal(map[string]interface{}{"body": "b"}, e.Attributes())

	e, err = o.NewEntity("Lock", attributes)
	asserts.NoError(err)
	asserts.Empty(e.Attributes())
	asserts.False(e.Exists())

	// fillable has priority
	e, err = o.NewEntity("Note", attributes)
	asserts.NoError(err)
	asserts.Equal(map[string]interface{}{"body": "b"}, e.Attributes())

	// Set is not restricted
	e.Set("secret", "s")
	asserts.Equal([]string{"body", "secret"}, e.Columns())

	_, err = o.NewEntity("Nope", attributes)
	asserts.True(errors.Is(err, orm.ErrUnknownModel))
}
