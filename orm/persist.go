// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package orm

import (
	"github.com/patrickascher/sqlkit/query"
)

// Create a new entity with the mass assignable attributes and insert it.
func (o *ORM) Create(model string, attributes map[string]interface{}) (*Entity, error) {
	e, err := o.NewEntity(model, attributes)
	if err != nil {
		return nil, err
	}
	if err = o.Save(e); err != nil {
		return nil, err
	}
	return e, nil
}

// Save inserts a new entity or updates the dirty attributes of an existing one.
// Timestamps are set if the model uses them.
func (o *ORM) Save(e *Entity) error {
	if !e.exists {
		return o.insert(e)
	}

	dirty := e.Dirty()
	if len(dirty) == 0 {
		return nil
	}
	if e.Key() == nil {
		return ErrKey
	}
	if e.model.Timestamps {
		now := o.timestamp()
		e.Set(UpdatedAt, now)
		dirty[UpdatedAt] = now
	}
	delete(dirty, e.model.PrimaryKey)
	if len(dirty) == 0 {
		return nil
	}

	values, err := e.model.storeValues(dirty)
	if err != nil {
		return err
	}
	if _, err = o.db.Table(e.model.Table).Where(e.model.PrimaryKey, "=", e.Key()).Update(values); err != nil {
		return err
	}
	e.syncOriginal()
	return nil
}

func (o *ORM) insert(e *Entity) error {
	m := e.model
	if m.Timestamps {
		now := o.timestamp()
		if e.Get(CreatedAt) == nil {
			e.Set(CreatedAt, now)
		}
		e.Set(UpdatedAt, now)
	}

	values, err := m.storeValues(e.attributes)
	if err != nil {
		return err
	}
	b := o.db.Table(m.Table)
	if e.Key() != nil {
		if _, err = b.Insert(values); err != nil {
			return err
		}
	} else {
		id, err := b.InsertGetID(values, m.PrimaryKey)
		if err != nil {
			return err
		}
		if id.Valid {
			e.Set(m.PrimaryKey, id.Int64)
		}
	}
	e.exists = true
	e.syncOriginal()
	return nil
}

// Delete the entity. Models with soft deletes set deleted_at.
func (o *ORM) Delete(e *Entity) error {
	if !e.model.SoftDeletes {
		return o.ForceDelete(e)
	}
	if err := o.check(e); err != nil {
		return err
	}
	now := o.timestamp()
	if _, err := o.keyQuery(e).Update(map[string]interface{}{DeletedAt: now}); err != nil {
		return err
	}
	e.Set(DeletedAt, now)
	e.original[DeletedAt] = now
	return nil
}

// ForceDelete removes the row, also if the model uses soft deletes.
func (o *ORM) ForceDelete(e *Entity) error {
	if err := o.check(e); err != nil {
		return err
	}
	if _, err := o.keyQuery(e).Delete(); err != nil {
		return err
	}
	e.exists = false
	return nil
}

// Restore a soft deleted entity.
func (o *ORM) Restore(e *Entity) error {
	if err := o.check(e); err != nil {
		return err
	}
	if !e.model.SoftDeletes {
		return nil
	}
	if _, err := o.keyQuery(e).Update(map[string]interface{}{DeletedAt: nil}); err != nil {
		return err
	}
	e.Set(DeletedAt, nil)
	e.original[DeletedAt] = nil
	return nil
}

// Refresh reloads the attributes from the database, also if the entity is soft deleted.
// Loaded relations are kept. sql.ErrNoRows is returned if the row was removed.
func (o *ORM) Refresh(e *Entity) error {
	if err := o.check(e); err != nil {
		return err
	}
	row, err := o.keyQuery(e).First()
	if err != nil {
		return err
	}
	e.hydrate(row)
	return nil
}

func (o *ORM) check(e *Entity) error {
	if !e.exists {
		return ErrNotExists
	}
	if e.Key() == nil {
		return ErrKey
	}
	return nil
}

func (o *ORM) keyQuery(e *Entity) *query.Builder {
	return o.db.Table(e.model.Table).Where(e.model.PrimaryKey, "=", e.Key())
}
