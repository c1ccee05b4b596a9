// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package orm

import (
	"fmt"

	"github.com/patrickascher/sqlkit/slicer"
)

// PivotData maps related ids to their extra pivot columns.
type PivotData map[interface{}]map[string]interface{}

// get the pivot data of the id, keys are compared normalized.
func (p PivotData) get(id interface{}) (map[string]interface{}, bool) {
	k := slicer.Key(id)
	for key, data := range p {
		if slicer.Key(key) == k {
			return data, true
		}
	}
	return nil, false
}

// SyncResult holds the affected related ids of a Sync.
type SyncResult struct {
	Attached []interface{}
	Detached []interface{}
	Updated  []interface{}
}

// pivotRelation returns the ManyToMany relation and the parent key.
func (o *ORM) pivotRelation(parent *Entity, relation string) (ManyToMany, interface{}, error) {
	rel, err := parent.model.relation(relation)
	if err != nil {
		return ManyToMany{}, nil, err
	}
	m2m, ok := rel.(ManyToMany)
	if !ok {
		return ManyToMany{}, nil, fmt.Errorf("%w: %s is a %s relation", ErrRelationKind, relation, rel.Kind())
	}
	key := parent.Get(m2m.ParentKey)
	if key == nil {
		return ManyToMany{}, nil, ErrKey
	}
	return m2m, key, nil
}

// Attach related ids to the parent. The pivot data is added to every pivot row.
func (o *ORM) Attach(parent *Entity, relation string, ids []interface{}, pivot map[string]interface{}) (int64, error) {
	rel, key, err := o.pivotRelation(parent, relation)
	if err != nil {
		return 0, err
	}
	ids = slicer.KeyUnique(ids)
	if len(ids) == 0 {
		return 0, nil
	}

	rows := make([]map[string]interface{}, len(ids))
	for i, id := range ids {
		rows[i] = rel.pivotRow(key, id, pivot)
	}
	return o.db.Table(rel.PivotTable).InsertMany(rows)
}

// Detach related ids from the parent. If ids is nil, all related ids are detached.
func (o *ORM) Detach(parent *Entity, relation string, ids []interface{}) (int64, error) {
	rel, key, err := o.pivotRelation(parent, relation)
	if err != nil {
		return 0, err
	}
	b := o.db.Table(rel.PivotTable).Where(rel.ForeignPivotKey, "=", key)
	if ids != nil {
		ids = slicer.KeyUnique(ids)
		if len(ids) == 0 {
			return 0, nil
		}
		b.WhereIn(rel.RelatedPivotKey, ids)
	}
	return b.Delete()
}

// Sync the pivot rows of the parent to exactly the given ids.
// Missing ids are attached, surplus ids are detached and existing ids with pivot data are updated.
// The operations run in a transaction if none is open.
func (o *ORM) Sync(parent *Entity, relation string, ids []interface{}, data PivotData) (SyncResult, error) {
	rel, key, err := o.pivotRelation(parent, relation)
	if err != nil {
		return SyncResult{}, err
	}
	ids = slicer.KeyUnique(ids)

	var res SyncResult
	err = o.transaction(func() error {
		current, err := o.db.Table(rel.PivotTable).Where(rel.ForeignPivotKey, "=", key).OrderBy(rel.RelatedPivotKey).Pluck(rel.RelatedPivotKey)
		if err != nil {
			return err
		}

		attach := slicer.KeyDiff(ids, current)
		detach := slicer.KeyDiff(current, ids)
		res = SyncResult{Attached: []interface{}{}, Detached: []interface{}{}, Updated: []interface{}{}}

		if len(detach) > 0 {
			if _, err = o.db.Table(rel.PivotTable).Where(rel.ForeignPivotKey, "=", key).WhereIn(rel.RelatedPivotKey, detach).Delete(); err != nil {
				return err
			}
			res.Detached = detach
		}

		for _, id := range attach {
			pivot, _ := data.get(id)
			row := rel.pivotRow(key, id, pivot)
			if _, err = o.db.Table(rel.PivotTable).Insert(row); err != nil {
				return err
			}
			res.Attached = append(res.Attached, id)
		}

		for _, id := range slicer.KeyIntersect(ids, current) {
			pivot, ok := data.get(id)
			if !ok || len(pivot) == 0 {
				continue
			}
			if _, err = o.db.Table(rel.PivotTable).Where(rel.ForeignPivotKey, "=", key).Where(rel.RelatedPivotKey, "=", id).Update(pivot); err != nil {
				return err
			}
			res.Updated = append(res.Updated, id)
		}
		return nil
	})
	if err != nil {
		return SyncResult{}, err
	}
	return res, nil
}

// pivotRow returns the pivot row. The key columns have priority over the pivot data.
func (r ManyToMany) pivotRow(key interface{}, id interface{}, pivot map[string]interface{}) map[string]interface{} {
	row := make(map[string]interface{}, len(pivot)+2)
	for k, v := range pivot {
		row[k] = v
	}
	row[r.ForeignPivotKey] = key
	row[r.RelatedPivotKey] = id
	return row
}
