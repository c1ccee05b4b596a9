// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package query

import (
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/patrickascher/sqlkit/connection"
	"github.com/patrickascher/sqlkit/query/condition"
	"github.com/spf13/cast"
	"gopkg.in/guregu/null.v4"
)

// AggregateAlias is the column alias of an aggregate projection.
const AggregateAlias = "aggregate"

// Page is the result of Paginate.
type Page struct {
	Total       int64
	PerPage     int
	CurrentPage int
	LastPage    int
	Rows        []connection.Row
}

// ToSQL renders the select statement with the dialect placeholders and its arguments.
func (b *Builder) ToSQL() (string, []interface{}, error) {
	if b.table == "" {
		return "", nil, ErrNoTable
	}
	if b.err != nil {
		return "", nil, b.err
	}

	g := b.db.grammar
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if b.distinct {
		sb.WriteString("DISTINCT ")
	}
	if len(b.columns) == 0 {
		sb.WriteString("*")
	} else {
		for i, c := range b.columns {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(g.QuoteIdentifier(c))
		}
	}
	sb.WriteString(" FROM " + g.QuoteIdentifier(b.table))

	clauses, args, err := b.cond.Render(g, g.NoLimit())
	if err != nil {
		return "", nil, err
	}
	if clauses != "" {
		sb.WriteString(" " + clauses)
	}

	return g.Placeholder().Replace(sb.String()), append(append([]interface{}{}, b.selectArgs...), args...), nil
}

// Get executes the select and returns all rows.
func (b *Builder) Get() ([]connection.Row, error) {
	stmt, args, err := b.ToSQL()
	if err != nil {
		return nil, err
	}
	return b.db.exec.Execute(stmt, args)
}

// First returns the first row. The limit of the builder is not changed.
// sql.ErrNoRows is returned if no row exists.
func (b *Builder) First() (connection.Row, error) {
	c := b.Clone()
	c.cond.SetLimit(1)
	rows, err := c.Get()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, sql.ErrNoRows
	}
	return rows[0], nil
}

// Pluck returns the values of a single column.
func (b *Builder) Pluck(column string) ([]interface{}, error) {
	c := b.Clone()
	c.columns = []string{column}
	c.selectArgs = nil
	rows, err := c.Get()
	if err != nil {
		return nil, err
	}

	key := column
	if i := strings.LastIndex(key, "."); i != -1 {
		key = key[i+1:]
	}
	values := make([]interface{}, 0, len(rows))
	for _, row := range rows {
		values = append(values, row[key])
	}
	return values, nil
}

// Exists returns true if at least one row matches.
func (b *Builder) Exists() (bool, error) {
	_, err := b.First()
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// Count the rows. If columns are given, COUNT(col) is used. Distinct builders count distinct values,
// without columns the distinct projection is counted.
func (b *Builder) Count(columns ...string) (int64, error) {
	expr := "*"
	if len(columns) > 0 {
		expr = quoteIdentifiers(b.db.grammar, columns)
		if b.distinct {
			expr = "DISTINCT " + expr
		}
	}

	var v interface{}
	var err error
	if len(columns) == 0 && b.distinct && len(b.columns) > 0 {
		v, err = b.countDistinct()
	} else {
		v, err = b.aggregate("COUNT", expr)
	}
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, nil
	}
	return cast.ToInt64E(v)
}

// Min value of the column.
func (b *Builder) Min(column string) (interface{}, error) {
	return b.aggregate("MIN", b.db.grammar.QuoteIdentifier(column))
}

// Max value of the column.
func (b *Builder) Max(column string) (interface{}, error) {
	return b.aggregate("MAX", b.db.grammar.QuoteIdentifier(column))
}

// Sum of the column. If no row matches, the result is invalid.
func (b *Builder) Sum(column string) (null.Float, error) {
	return b.aggregateFloat("SUM", column)
}

// Avg of the column. If no row matches, the result is invalid.
func (b *Builder) Avg(column string) (null.Float, error) {
	return b.aggregateFloat("AVG", column)
}

func (b *Builder) aggregateFloat(fn string, column string) (null.Float, error) {
	v, err := b.aggregate(fn, b.db.grammar.QuoteIdentifier(column))
	if err != nil || v == nil {
		return null.Float{}, err
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return null.Float{}, fmt.Errorf("query: %s: %w", fn, err)
	}
	return null.FloatFrom(f), nil
}

// aggregate runs FUNC(expr) AS aggregate on a clone without order, limit and offset.
func (b *Builder) aggregate(fn string, expr string) (interface{}, error) {
	c := b.Clone()
	c.cond.Reset(condition.ORDER, condition.LIMIT, condition.OFFSET)
	c.columns = []string{DbExpr(fn + "(" + expr + ") AS " + b.db.grammar.QuoteIdentifier(AggregateAlias))}
	c.selectArgs = nil
	c.distinct = false

	rows, err := c.Get()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0][AggregateAlias], nil
}

// countDistinct counts the rows of the distinct projection in a derived table.
func (b *Builder) countDistinct() (interface{}, error) {
	c := b.Clone()
	c.cond.Reset(condition.ORDER, condition.LIMIT, condition.OFFSET)
	stmt, args, err := c.ToSQL()
	if err != nil {
		return nil, err
	}

	g := b.db.grammar
	stmt = "SELECT COUNT(*) AS " + g.QuoteIdentifier(AggregateAlias) + " FROM (" + stmt + ") AS " + g.QuoteIdentifier("distinct_rows")
	rows, err := b.db.exec.Execute(stmt, args)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0][AggregateAlias], nil
}

// Paginate returns the rows of the page (starting at 1) and the total of matching rows.
func (b *Builder) Paginate(perPage int, page int) (Page, error) {
	if perPage < 1 {
		perPage = 1
	}
	if page < 1 {
		page = 1
	}

	total, err := b.Count()
	if err != nil {
		return Page{}, err
	}
	p := Page{Total: total, PerPage: perPage, CurrentPage: page, LastPage: int(math.Max(1, math.Ceil(float64(total)/float64(perPage))))}
	if total == 0 {
		return p, nil
	}

	c := b.Clone()
	c.cond.SetLimit(perPage)
	c.cond.SetOffset((page - 1) * perPage)
	p.Rows, err = c.Get()
	return p, err
}
