// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package query

// Delete the matching rows and return the number of affected rows.
func (b *Builder) Delete() (int64, error) {
	stmt, args, err := b.deleteSQL()
	if err != nil {
		return 0, err
	}
	return b.db.exec.ExecuteAffecting(stmt, args)
}

func (b *Builder) deleteSQL() (string, []interface{}, error) {
	if b.table == "" {
		return "", nil, ErrNoTable
	}

	g := b.db.grammar
	where, args, err := b.cond.RenderWhere(g)
	if err != nil {
		return "", nil, err
	}

	stmt := "DELETE FROM " + g.QuoteIdentifier(b.table)
	if where != "" {
		stmt += " " + where
	}
	return g.Placeholder().Replace(stmt), args, nil
}
