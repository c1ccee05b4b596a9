// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package orm

import (
	"sort"
	"strings"

	"github.com/patrickascher/sqlkit/connection"
	"github.com/patrickascher/sqlkit/query"
	"github.com/patrickascher/sqlkit/slicer"
)

// Load eager-loads the relations of already fetched entities.
// Nested relations are separated by a dot (posts.comments).
func (o *ORM) Load(entities []*Entity, relations ...string) error {
	if len(entities) == 0 || len(relations) == 0 {
		return nil
	}
	m := entities[0].model
	for _, e := range entities {
		if e.model != m {
			return ErrModel
		}
	}
	return o.load(m, entities, relationTree(relations))
}

// relationTree splits the dotted relation names into first level names and their nested names.
func relationTree(relations []string) map[string][]string {
	tree := map[string][]string{}
	for _, r := range relations {
		parts := strings.SplitN(strings.TrimSpace(r), ".", 2)
		if parts[0] == "" {
			continue
		}
		if _, ok := tree[parts[0]]; !ok {
			tree[parts[0]] = nil
		}
		if len(parts) == 2 && parts[1] != "" {
			tree[parts[0]] = append(tree[parts[0]], parts[1])
		}
	}
	return tree
}

// load the relation tree. The relations are loaded in name order.
func (o *ORM) load(m *Model, parents []*Entity, tree map[string][]string) error {
	names := make([]string, 0, len(tree))
	for name := range tree {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rel, err := m.relation(name)
		if err != nil {
			return err
		}
		children, err := rel.eagerLoad(o, parents, name)
		if err != nil {
			return err
		}
		if nested := tree[name]; len(nested) > 0 && len(children) > 0 {
			if err = o.load(rel.RelatedModel(), children, relationTree(nested)); err != nil {
				return err
			}
		}
	}
	return nil
}

// relatedQuery returns a builder for the related model, soft deleted rows are excluded.
func (o *ORM) relatedQuery(m *Model) *query.Builder {
	b := o.db.Table(m.Table)
	if m.SoftDeletes {
		b.WhereNull(DeletedAt)
	}
	return b
}

// hydrate all rows.
func (o *ORM) hydrate(m *Model, rows []connection.Row) []*Entity {
	rv := make([]*Entity, len(rows))
	for i, row := range rows {
		rv[i] = o.Hydrate(m, row)
	}
	return rv
}

// keys collects the unique non nil values of the column.
func keys(entities []*Entity, column string) []interface{} {
	values := make([]interface{}, len(entities))
	for i, e := range entities {
		values[i] = e.Get(column)
	}
	return slicer.KeyUnique(values)
}

// eagerLoad runs one query for all parents and buckets the children by the foreign key.
func (r HasMany) eagerLoad(o *ORM, parents []*Entity, name string) ([]*Entity, error) {
	ids := keys(parents, r.LocalKey)
	if len(ids) == 0 {
		for _, p := range parents {
			p.setRelation(name, []*Entity{})
		}
		return nil, nil
	}

	rows, err := o.relatedQuery(r.model).WhereIn(r.ForeignKey, ids).OrderBy(r.model.PrimaryKey).Get()
	if err != nil {
		return nil, err
	}
	children := o.hydrate(r.model, rows)

	buckets := map[string][]*Entity{}
	for _, c := range children {
		k := slicer.Key(c.Get(r.ForeignKey))
		buckets[k] = append(buckets[k], c)
	}
	for _, p := range parents {
		bucket := []*Entity{}
		if v := p.Get(r.LocalKey); v != nil {
			bucket = append(bucket, buckets[slicer.Key(v)]...)
		}
		p.setRelation(name, bucket)
	}
	return children, nil
}

// eagerLoad runs one query for all owners. Parents which share an owner get a copy.
func (r BelongsTo) eagerLoad(o *ORM, parents []*Entity, name string) ([]*Entity, error) {
	ids := keys(parents, r.ForeignKey)
	if len(ids) == 0 {
		for _, p := range parents {
			p.setRelation(name, (*Entity)(nil))
		}
		return nil, nil
	}

	rows, err := o.relatedQuery(r.model).WhereIn(r.OwnerKey, ids).Get()
	if err != nil {
		return nil, err
	}
	owners := map[string]*Entity{}
	for _, e := range o.hydrate(r.model, rows) {
		owners[slicer.Key(e.Get(r.OwnerKey))] = e
	}

	var attached []*Entity
	used := map[string]bool{}
	for _, p := range parents {
		v := p.Get(r.ForeignKey)
		owner, ok := owners[slicer.Key(v)]
		if v == nil || !ok {
			p.setRelation(name, (*Entity)(nil))
			continue
		}
		k := slicer.Key(v)
		if used[k] {
			owner = owner.Copy()
		}
		used[k] = true
		p.setRelation(name, owner)
		attached = append(attached, owner)
	}
	return attached, nil
}

// eagerLoad runs one query on the pivot table and one on the related table.
// Every attached entity is a copy with its own pivot data.
func (r ManyToMany) eagerLoad(o *ORM, parents []*Entity, name string) ([]*Entity, error) {
	ids := keys(parents, r.ParentKey)
	if len(ids) == 0 {
		for _, p := range parents {
			p.setRelation(name, []*Entity{})
		}
		return nil, nil
	}

	columns := append([]string{r.ForeignPivotKey, r.RelatedPivotKey}, r.PivotColumns...)
	pivots, err := o.db.Table(r.PivotTable).Select(columns...).WhereIn(r.ForeignPivotKey, ids).OrderBy(r.RelatedPivotKey).Get()
	if err != nil {
		return nil, err
	}

	pivotMap := map[string][]map[string]interface{}{}
	relatedIDs := make([]interface{}, 0, len(pivots))
	for _, row := range pivots {
		fk, rk := row[r.ForeignPivotKey], row[r.RelatedPivotKey]
		if fk == nil || rk == nil {
			continue
		}
		k := slicer.Key(fk)
		pivotMap[k] = append(pivotMap[k], map[string]interface{}(row))
		relatedIDs = append(relatedIDs, rk)
	}
	relatedIDs = slicer.KeyUnique(relatedIDs)
	if len(relatedIDs) == 0 {
		for _, p := range parents {
			p.setRelation(name, []*Entity{})
		}
		return nil, nil
	}

	rows, err := o.relatedQuery(r.model).WhereIn(r.RelatedKey, relatedIDs).Get()
	if err != nil {
		return nil, err
	}
	related := map[string]*Entity{}
	for _, e := range o.hydrate(r.model, rows) {
		related[slicer.Key(e.Get(r.RelatedKey))] = e
	}

	var attached []*Entity
	for _, p := range parents {
		bucket := []*Entity{}
		if v := p.Get(r.ParentKey); v != nil {
			for _, pivot := range pivotMap[slicer.Key(v)] {
				e, ok := related[slicer.Key(pivot[r.RelatedPivotKey])]
				if !ok {
					continue
				}
				c := e.Copy()
				c.pivot = copyMap(pivot)
				bucket = append(bucket, c)
			}
		}
		p.setRelation(name, bucket)
		attached = append(attached, bucket...)
	}
	return attached, nil
}
