// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package stringer provides naming helpers for tables, keys and pivot tables.
package stringer

import (
	"sort"
	"strings"

	"github.com/jinzhu/inflection"
	"github.com/serenize/snaker"
)

// CamelToSnake of the given string.
func CamelToSnake(s string) string {
	return snaker.CamelToSnake(s)
}

// SnakeToCamel of the given string.
func SnakeToCamel(s string) string {
	return snaker.SnakeToCamel(s)
}

// Plural of the given string.
func Plural(s string) string {
	return inflection.Plural(s)
}

// Singular of the given string.
func Singular(s string) string {
	return inflection.Singular(s)
}

// TableName of a model name (BlogPost => blog_posts).
func TableName(model string) string {
	return Plural(CamelToSnake(model))
}

// ForeignKey of a model name (BlogPost => blog_post_id).
func ForeignKey(model string) string {
	return Singular(CamelToSnake(model)) + "_id"
}

// PivotTable of two model names, in alphabetical order (User, Role => role_user).
func PivotTable(a string, b string) string {
	names := []string{Singular(CamelToSnake(a)), Singular(CamelToSnake(b))}
	sort.Strings(names)
	return strings.Join(names, "_")
}
