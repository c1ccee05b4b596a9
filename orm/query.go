// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package orm

import (
	"database/sql"
	"strings"

	"github.com/patrickascher/sqlkit/query"
	"github.com/patrickascher/sqlkit/query/condition"
)

// trashed modes.
const (
	withoutTrashed = iota
	withTrashed
	onlyTrashed
)

// Query is a model aware query.
type Query struct {
	orm     *ORM
	model   *Model
	b       *query.Builder
	with    []string
	trashed int
	err     error
}

// Query starts a query on the model.
func (o *ORM) Query(model string) *Query {
	m, err := o.Model(model)
	q := &Query{orm: o, model: m, err: err}
	if err == nil {
		q.b = o.db.Table(m.Table)
	}
	return q
}

// Builder returns the underlying query builder.
func (q *Query) Builder() *query.Builder {
	return q.b
}

// Where adds a basic predicate.
func (q *Query) Where(column string, operator string, value interface{}) *Query {
	if q.err == nil {
		q.b.Where(column, operator, value)
	}
	return q
}

// OrWhere adds a basic predicate, connected by OR.
func (q *Query) OrWhere(column string, operator string, value interface{}) *Query {
	if q.err == nil {
		q.b.OrWhere(column, operator, value)
	}
	return q
}

// WhereIn adds an IN predicate.
func (q *Query) WhereIn(column string, values interface{}) *Query {
	if q.err == nil {
		q.b.WhereIn(column, values)
	}
	return q
}

// WhereNotIn adds a NOT IN predicate.
func (q *Query) WhereNotIn(column string, values interface{}) *Query {
	if q.err == nil {
		q.b.WhereNotIn(column, values)
	}
	return q
}

// WhereNull adds an IS NULL predicate.
func (q *Query) WhereNull(column string) *Query {
	if q.err == nil {
		q.b.WhereNull(column)
	}
	return q
}

// WhereNotNull adds an IS NOT NULL predicate.
func (q *Query) WhereNotNull(column string) *Query {
	if q.err == nil {
		q.b.WhereNotNull(column)
	}
	return q
}

// WhereRaw adds a raw predicate.
func (q *Query) WhereRaw(expression string, args ...interface{}) *Query {
	if q.err == nil {
		q.b.WhereRaw(expression, args...)
	}
	return q
}

// OrderBy adds sort keys, a "-" prefix sorts descending.
func (q *Query) OrderBy(columns ...string) *Query {
	if q.err == nil {
		q.b.OrderBy(columns...)
	}
	return q
}

// OrderByDesc adds descending sort keys.
func (q *Query) OrderByDesc(columns ...string) *Query {
	if q.err == nil {
		q.b.OrderByDesc(columns...)
	}
	return q
}

// Limit the rows.
func (q *Query) Limit(n int) *Query {
	if q.err == nil {
		q.b.Limit(n)
	}
	return q
}

// Offset of the rows.
func (q *Query) Offset(n int) *Query {
	if q.err == nil {
		q.b.Offset(n)
	}
	return q
}

// With adds relations which are eager-loaded. Nested relations are separated by a dot.
func (q *Query) With(relations ...string) *Query {
	q.with = append(q.with, relations...)
	return q
}

// WithTrashed includes soft deleted rows.
func (q *Query) WithTrashed() *Query {
	q.trashed = withTrashed
	return q
}

// OnlyTrashed returns only soft deleted rows.
func (q *Query) OnlyTrashed() *Query {
	q.trashed = onlyTrashed
	return q
}

// Get all entities with their eager-loaded relations.
func (q *Query) Get() ([]*Entity, error) {
	b, err := q.builder(false)
	if err != nil {
		return nil, err
	}
	rows, err := b.Get()
	if err != nil {
		return nil, err
	}
	entities := q.orm.hydrate(q.model, rows)
	if err = q.orm.load(q.model, entities, relationTree(q.with)); err != nil {
		return nil, err
	}
	return entities, nil
}

// First entity. sql.ErrNoRows is returned if nothing matches.
func (q *Query) First() (*Entity, error) {
	b, err := q.builder(false)
	if err != nil {
		return nil, err
	}
	return q.first(b)
}

// Find an entity by primary key. sql.ErrNoRows is returned if it does not exist.
// The query itself is not changed.
func (q *Query) Find(id interface{}) (*Entity, error) {
	if q.err != nil {
		return nil, q.err
	}
	if id == nil {
		return nil, sql.ErrNoRows
	}
	b, err := q.builder(true)
	if err != nil {
		return nil, err
	}
	return q.first(b.Where(q.model.PrimaryKey, "=", id))
}

func (q *Query) first(b *query.Builder) (*Entity, error) {
	row, err := b.First()
	if err != nil {
		return nil, err
	}
	e := q.orm.Hydrate(q.model, row)
	if err = q.orm.load(q.model, []*Entity{e}, relationTree(q.with)); err != nil {
		return nil, err
	}
	return e, nil
}

// Count the matching rows.
func (q *Query) Count() (int64, error) {
	b, err := q.builder(false)
	if err != nil {
		return 0, err
	}
	return b.Count()
}

// builder returns a clone with the soft delete predicate.
// If the predicates contain an OR, they are grouped, so that the soft delete predicate applies to all of them.
// extend groups them also if the caller adds further predicates.
func (q *Query) builder(extend bool) (*query.Builder, error) {
	if q.err != nil {
		return nil, q.err
	}
	b := q.b.Clone()
	scoped := q.model.SoftDeletes && q.trashed != withTrashed
	if !scoped && !extend {
		return b, nil
	}

	cond := b.Condition()
	for _, p := range cond.Predicates() {
		if p.Connector != condition.OR {
			continue
		}
		where, args, err := cond.RenderWhere(q.orm.db.Grammar())
		if err != nil {
			return nil, err
		}
		cond.Reset(condition.WHERE)
		cond.SetWhereRaw(condition.AND, strings.TrimPrefix(where, "WHERE "), args...)
		break
	}

	if !scoped {
		return b, nil
	}
	if q.trashed == onlyTrashed {
		return b.WhereNotNull(DeletedAt), nil
	}
	return b.WhereNull(DeletedAt), nil
}
