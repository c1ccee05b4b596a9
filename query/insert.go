// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/guregu/null.v4"
)

// Insert a single row. The last insert id is returned, if the driver reports one.
func (b *Builder) Insert(data map[string]interface{}) (null.Int, error) {
	stmt, args, err := b.insertSQL([]map[string]interface{}{data})
	if err != nil {
		return null.Int{}, err
	}
	if _, err = b.db.exec.ExecuteAffecting(stmt, args); err != nil {
		return null.Int{}, err
	}
	return b.db.exec.LastInsertID(), nil
}

// InsertGetID inserts a row and returns the value of the key column.
// A RETURNING clause is used if the dialect supports it, otherwise the last insert id of the driver.
func (b *Builder) InsertGetID(data map[string]interface{}, key string) (null.Int, error) {
	stmt, args, err := b.insertSQL([]map[string]interface{}{data})
	if err != nil {
		return null.Int{}, err
	}

	returning, ok := b.db.grammar.CompileReturning(stmt, key)
	if !ok {
		if _, err = b.db.exec.ExecuteAffecting(stmt, args); err != nil {
			return null.Int{}, err
		}
		return b.db.exec.LastInsertID(), nil
	}

	rows, err := b.db.exec.Execute(returning, args)
	if err != nil {
		return null.Int{}, err
	}
	if len(rows) == 0 || rows[0][key] == nil {
		return null.Int{}, nil
	}
	id, err := cast.ToInt64E(rows[0][key])
	if err != nil {
		return null.Int{}, fmt.Errorf("query: returning %s: %w", key, err)
	}
	return null.IntFrom(id), nil
}

// InsertMany inserts the rows in batches (default 50). All rows must have the same columns.
// The batches are not atomic, use DB.Transaction if needed.
func (b *Builder) InsertMany(data []map[string]interface{}) (int64, error) {
	if b.table == "" {
		return 0, ErrNoTable
	}
	if len(data) == 0 {
		return 0, ErrNoData
	}

	size := b.batchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	var affected int64
	for i := 0; i < len(data); i += size {
		end := i + size
		if end > len(data) {
			end = len(data)
		}
		stmt, args, err := b.insertSQL(data[i:end])
		if err != nil {
			return affected, err
		}
		n, err := b.db.exec.ExecuteAffecting(stmt, args)
		if err != nil {
			return affected, err
		}
		affected += n
	}
	return affected, nil
}

// insertSQL renders a multi row insert. The column order is the Columns whitelist or the sorted keys of the first row.
func (b *Builder) insertSQL(data []map[string]interface{}) (string, []interface{}, error) {
	if b.table == "" {
		return "", nil, ErrNoTable
	}
	if len(data) == 0 || len(data[0]) == 0 {
		return "", nil, ErrNoData
	}

	columns := b.columnOrder(data[0])
	g := b.db.grammar
	row := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var sb strings.Builder
	sb.WriteString("INSERT INTO " + g.QuoteIdentifier(b.table) + " (" + quoteIdentifiers(g, columns) + ") VALUES ")
	args := make([]interface{}, 0, len(columns)*len(data))
	for i, d := range data {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(row)
		for _, c := range columns {
			v, ok := d[c]
			if !ok && len(b.writeColumns) == 0 {
				return "", nil, fmt.Errorf("query: insert row %d has no value for column %#v", i, c)
			}
			args = append(args, v)
		}
	}

	return g.Placeholder().Replace(sb.String()), args, nil
}

// columnOrder returns the whitelist or the sorted map keys.
func (b *Builder) columnOrder(data map[string]interface{}) []string {
	if len(b.writeColumns) > 0 {
		return b.writeColumns
	}
	columns := make([]string, 0, len(data))
	for c := range data {
		columns = append(columns, c)
	}
	sort.Strings(columns)
	return columns
}
