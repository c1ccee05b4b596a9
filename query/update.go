// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package query

import (
	"strings"
)

// Update the matching rows and return the number of affected rows.
// Only the where clause of the builder is used.
func (b *Builder) Update(data map[string]interface{}) (int64, error) {
	stmt, args, err := b.updateSQL(data)
	if err != nil {
		return 0, err
	}
	return b.db.exec.ExecuteAffecting(stmt, args)
}

func (b *Builder) updateSQL(data map[string]interface{}) (string, []interface{}, error) {
	if b.table == "" {
		return "", nil, ErrNoTable
	}
	if len(data) == 0 {
		return "", nil, ErrNoData
	}

	g := b.db.grammar
	var set []string
	var args []interface{}
	for _, c := range b.columnOrder(data) {
		v, ok := data[c]
		if !ok {
			continue
		}
		set = append(set, g.QuoteIdentifier(c)+" = ?")
		args = append(args, v)
	}
	if len(set) == 0 {
		return "", nil, ErrNoData
	}

	where, whereArgs, err := b.cond.RenderWhere(g)
	if err != nil {
		return "", nil, err
	}

	stmt := "UPDATE " + g.QuoteIdentifier(b.table) + " SET " + strings.Join(set, ", ")
	if where != "" {
		stmt += " " + where
	}
	return g.Placeholder().Replace(stmt), append(args, whereArgs...), nil
}
