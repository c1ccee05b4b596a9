// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slicer_test

import (
	"testing"

	"github.com/patrickascher/sqlkit/slicer"
	"github.com/stretchr/testify/assert"
)

func TestInterfaceExists(t *testing.T) {

	pool := []interface{}{1, 2}

	k, exists := slicer.InterfaceExists(pool, 1)
	assert.True(t, exists)
	assert.Equal(t, 0, k)

	k, exists = slicer.InterfaceExists(pool, 2)
	assert.True(t, exists)
	assert.Equal(t, 1, k)

	k, exists = slicer.InterfaceExists(pool, 3)
	assert.False(t, exists)
	assert.Equal(t, 0, k)
}

func TestStringPrefixExists(t *testing.T) {

	pool := []string{"dialect_mysql", "dialect_sqlite"}

	prefixes := slicer.StringPrefixExists(pool, "dialect_")
	assert.Equal(t, 2, len(prefixes))

	prefixes = slicer.StringPrefixExists(pool, "logger_")
	assert.Equal(t, 0, len(prefixes))
}

func TestStringExists(t *testing.T) {

	pool := []string{"dialect_mysql", "dialect_sqlite"}

	pos, exists := slicer.StringExists(pool, "dialect_")
	assert.False(t, exists)
	assert.Equal(t, 0, pos)

	pos, exists = slicer.StringExists(pool, "dialect_sqlite")
	assert.True(t, exists)
	assert.Equal(t, 1, pos)
}

func TestStringUnique(t *testing.T) {

	pool := []string{"dialect_mysql", "dialect_sqlite", "dialect_mysql"}

	result := slicer.StringUnique(pool)
	assert.Equal(t, 2, len(result))
	assert.Equal(t, "dialect_mysql", result[0])
	assert.Equal(t, "dialect_sqlite", result[1])
}

func TestKey(t *testing.T) {
	assert.Equal(t, "1", slicer.Key(int64(1)))
	assert.Equal(t, "1", slicer.Key(1))
	assert.Equal(t, "1", slicer.Key([]byte("1")))
	assert.Equal(t, "a", slicer.Key("a"))
}

func TestKeyUnique(t *testing.T) {
	assert.Equal(t, []interface{}{1, "2"}, slicer.KeyUnique([]interface{}{1, nil, int64(1), "2", []byte("2")}))
	assert.Equal(t, []interface{}{}, slicer.KeyUnique(nil))
}

func TestKeyDiffAndIntersect(t *testing.T) {
	current := []interface{}{int64(1), int64(2), int64(3)}
	wanted := []interface{}{2, 3, 4}

	assert.Equal(t, []interface{}{4}, slicer.KeyDiff(wanted, current))
	assert.Equal(t, []interface{}{int64(1)}, slicer.KeyDiff(current, wanted))
	assert.Equal(t, []interface{}{2, 3}, slicer.KeyIntersect(wanted, current))
	assert.Nil(t, slicer.KeyDiff(wanted, wanted))
}
