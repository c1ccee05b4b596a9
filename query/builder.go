// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package query

import (
	"github.com/patrickascher/sqlkit/query/condition"
)

// DefaultBatchSize of InsertMany.
const DefaultBatchSize = 50

// Builder holds the clause state of one logical query.
// Aggregates and First work on a clone, the builder can be reused afterwards.
type Builder struct {
	db    *DB
	table string

	columns    []string
	selectArgs []interface{}
	distinct   bool

	writeColumns []string
	batchSize    int

	cond condition.Condition
	err  error
}

func newCondition() condition.Condition {
	return condition.New()
}

// Clone the builder.
func (b *Builder) Clone() *Builder {
	c := *b
	c.columns = append([]string(nil), b.columns...)
	c.selectArgs = append([]interface{}(nil), b.selectArgs...)
	c.writeColumns = append([]string(nil), b.writeColumns...)
	c.cond = b.cond.Copy()
	return &c
}

// Table returns the table name.
func (b *Builder) Table() string {
	return b.table
}

// Condition returns the underlying clause AST.
func (b *Builder) Condition() condition.Condition {
	return b.cond
}

// Select sets the projection. Raw expressions can be added with query.DbExpr.
// If no columns are selected, * is used.
func (b *Builder) Select(columns ...string) *Builder {
	b.columns = append(b.columns, columns...)
	return b
}

// SelectRaw adds a raw projection. Its bindings are placed before the where bindings.
// Slice arguments are expanded like in WhereRaw.
func (b *Builder) SelectRaw(expression string, args ...interface{}) *Builder {
	expression, args, err := condition.ClauseManipulation(expression, args)
	if err != nil {
		b.err = err
		return b
	}
	b.columns = append(b.columns, DbExpr(expression))
	b.selectArgs = append(b.selectArgs, args...)
	return b
}

// Distinct adds DISTINCT to the select.
func (b *Builder) Distinct() *Builder {
	b.distinct = true
	return b
}

// Columns define a fixed column order for insert and update.
// Only values will be written which are defined here. This means, you can use Columns as a whitelist.
func (b *Builder) Columns(columns ...string) *Builder {
	b.writeColumns = columns
	return b
}

// Batch sets the batch size of InsertMany. Default is 50.
func (b *Builder) Batch(size int) *Builder {
	b.batchSize = size
	return b
}

// Where adds a basic predicate, connected by AND.
//	b.Where("age", ">=", 18)
func (b *Builder) Where(column string, operator string, value interface{}) *Builder {
	b.cond.SetWhere(condition.AND, column, operator, value)
	return b
}

// OrWhere adds a basic predicate, connected by OR.
func (b *Builder) OrWhere(column string, operator string, value interface{}) *Builder {
	b.cond.SetWhere(condition.OR, column, operator, value)
	return b
}

// WhereIn adds an IN predicate. An empty slice matches no row.
func (b *Builder) WhereIn(column string, values interface{}) *Builder {
	b.cond.SetWhereIn(condition.AND, column, values, false)
	return b
}

// OrWhereIn adds an IN predicate, connected by OR.
func (b *Builder) OrWhereIn(column string, values interface{}) *Builder {
	b.cond.SetWhereIn(condition.OR, column, values, false)
	return b
}

// WhereNotIn adds a NOT IN predicate. An empty slice matches all rows.
func (b *Builder) WhereNotIn(column string, values interface{}) *Builder {
	b.cond.SetWhereIn(condition.AND, column, values, true)
	return b
}

// OrWhereNotIn adds a NOT IN predicate, connected by OR.
func (b *Builder) OrWhereNotIn(column string, values interface{}) *Builder {
	b.cond.SetWhereIn(condition.OR, column, values, true)
	return b
}

// WhereNull adds an IS NULL predicate.
func (b *Builder) WhereNull(column string) *Builder {
	b.cond.SetWhereNull(condition.AND, column, false)
	return b
}

// OrWhereNull adds an IS NULL predicate, connected by OR.
func (b *Builder) OrWhereNull(column string) *Builder {
	b.cond.SetWhereNull(condition.OR, column, false)
	return b
}

// WhereNotNull adds an IS NOT NULL predicate.
func (b *Builder) WhereNotNull(column string) *Builder {
	b.cond.SetWhereNull(condition.AND, column, true)
	return b
}

// OrWhereNotNull adds an IS NOT NULL predicate, connected by OR.
func (b *Builder) OrWhereNotNull(column string) *Builder {
	b.cond.SetWhereNull(condition.OR, column, true)
	return b
}

// WhereRaw adds a raw predicate. Slice arguments are expanded.
//	b.WhereRaw("id IN (?) OR parent_id = ?", []int{1, 2}, 3)
func (b *Builder) WhereRaw(expression string, args ...interface{}) *Builder {
	b.cond.SetWhereRaw(condition.AND, expression, args...)
	return b
}

// OrWhereRaw adds a raw predicate, connected by OR.
func (b *Builder) OrWhereRaw(expression string, args ...interface{}) *Builder {
	b.cond.SetWhereRaw(condition.OR, expression, args...)
	return b
}

// OrderBy adds ascending sort keys. A "-" prefix sorts descending.
func (b *Builder) OrderBy(columns ...string) *Builder {
	for _, c := range columns {
		if len(c) > 1 && c[0] == '-' {
			b.cond.AddOrder(c[1:], true)
			continue
		}
		b.cond.AddOrder(c, false)
	}
	return b
}

// OrderByDesc adds descending sort keys.
func (b *Builder) OrderByDesc(columns ...string) *Builder {
	for _, c := range columns {
		b.cond.AddOrder(c, true)
	}
	return b
}

// OrderByRaw adds a raw sort expression.
func (b *Builder) OrderByRaw(expression string) *Builder {
	b.cond.AddOrderRaw(expression)
	return b
}

// Limit the rows.
func (b *Builder) Limit(n int) *Builder {
	b.cond.SetLimit(n)
	return b
}

// Offset of the rows.
func (b *Builder) Offset(n int) *Builder {
	b.cond.SetOffset(n)
	return b
}
