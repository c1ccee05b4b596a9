// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package query_test

import (
	"testing"

	"github.com/patrickascher/sqlkit/connection"
	_ "github.com/patrickascher/sqlkit/dialect/sqlite"
	"github.com/patrickascher/sqlkit/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v4"
)

func sqliteDB(t *testing.T) *query.DB {
	m, err := connection.New(connection.Config{Connections: map[string]connection.Options{"default": {Driver: "sqlite"}}})
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	c, err := m.Default()
	require.NoError(t, err)
	db, err := query.Open(c)
	require.NoError(t, err)

	_, err = db.Exec(`CREATE TABLE "products" ("id" INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL, "name" VARCHAR(255) NOT NULL, "price" INTEGER NOT NULL, "category" VARCHAR(255))`)
	require.NoError(t, err)
	return db
}

func TestSqlite_Roundtrip(t *testing.T) {
	asserts := assert.New(t)
	db := sqliteDB(t)

	id, err := db.Table("products").Insert(map[string]interface{}{"name": "apple", "price": 2, "category": "fruit"})
	asserts.NoError(err)
	asserts.Equal(null.IntFrom(1), id)

	id, err = db.Table("products").InsertGetID(map[string]interface{}{"name": "pear", "price": 3, "category": "fruit"}, "id")
	asserts.NoError(err)
	asserts.Equal(null.IntFrom(2), id)

	n, err := db.Table("products").InsertMany([]map[string]interface{}{
		{"name": "bread", "price": 4, "category": nil},
		{"name": "milk", "price": 1, "category": "dairy"},
	})
	asserts.NoError(err)
	asserts.Equal(int64(2), n)

	c, err := db.Table("products").Where("category", "=", "fruit").Count()
	asserts.NoError(err)
	asserts.Equal(int64(2), c)

	// distinct projection
	categories := db.Table("products").Select("category").Distinct().OrderBy("category")
	rows, err := categories.Get()
	asserts.NoError(err)
	asserts.Len(rows, 3)
	c, err = categories.Count()
	asserts.NoError(err)
	asserts.Equal(int64(3), c)
	page, err := categories.Paginate(10, 1)
	asserts.NoError(err)
	asserts.Equal(int64(3), page.Total)
	asserts.Len(page.Rows, 3)

	sum, err := db.Table("products").Sum("price")
	asserts.NoError(err)
	asserts.Equal(null.FloatFrom(10), sum)

	avg, err := db.Table("products").WhereIn("id", []int{}).Avg("price")
	asserts.NoError(err)
	asserts.False(avg.Valid)

	rows, err = db.Table("products").Select("name").WhereNotIn("id", []int{}).WhereNotNull("category").OrderByDesc("price").Get()
	asserts.NoError(err)
	asserts.Equal([]connection.Row{{"name": "pear"}, {"name": "apple"}, {"name": "milk"}}, rows)

	rows, err = db.Table("products").WhereIn("id", []int{}).Get()
	asserts.NoError(err)
	asserts.Len(rows, 0)

	p, err := db.Table("products").OrderBy("id").Paginate(3, 2)
	asserts.NoError(err)
	asserts.Equal(int64(4), p.Total)
	asserts.Equal(2, p.LastPage)
	asserts.Equal([]connection.Row{{"id": int64(4), "name": "milk", "price": int64(1), "category": "dairy"}}, p.Rows)

	n, err = db.Table("products").WhereNull("category").Update(map[string]interface{}{"category": "bakery"})
	asserts.NoError(err)
	asserts.Equal(int64(1), n)

	names, err := db.Table("products").Where("category", "=", "bakery").Pluck("name")
	asserts.NoError(err)
	asserts.Equal([]interface{}{"bread"}, names)

	n, err = db.Table("products").Where("price", "<", 3).Delete()
	asserts.NoError(err)
	asserts.Equal(int64(2), n)

	exists, err := db.Table("products").Where("name", "=", "apple").Exists()
	asserts.NoError(err)
	asserts.False(exists)

	// offset without limit
	rows, err = db.Table("products").OrderBy("id").Offset(1).Get()
	asserts.NoError(err)
	asserts.Len(rows, 1)
}
