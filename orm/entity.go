// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package orm

import (
	"encoding/json"
	"sort"

	"github.com/patrickascher/sqlkit/slicer"
)

// Entity is a hydrated row with its loaded relations.
// A relation is either a single *Entity (BelongsTo, nil if no owner exists) or a []*Entity.
type Entity struct {
	model      *Model
	attributes map[string]interface{}
	original   map[string]interface{}
	relations  map[string]interface{}
	pivot      map[string]interface{}
	exists     bool
}

func newEntity(m *Model) *Entity {
	return &Entity{model: m, attributes: map[string]interface{}{}, relations: map[string]interface{}{}}
}

// Model of the entity.
func (e *Entity) Model() *Model {
	return e.model
}

// Get an attribute value.
func (e *Entity) Get(column string) interface{} {
	return e.attributes[column]
}

// Set an attribute value. The mass assignment rules are not checked.
func (e *Entity) Set(column string, value interface{}) *Entity {
	e.attributes[column] = value
	return e
}

// Fill sets the mass assignable attributes.
func (e *Entity) Fill(attributes map[string]interface{}) *Entity {
	for k, v := range e.model.fillable(attributes) {
		e.attributes[k] = v
	}
	return e
}

// Key returns the primary key value.
func (e *Entity) Key() interface{} {
	return e.attributes[e.model.PrimaryKey]
}

// Attributes returns a copy of all attributes.
func (e *Entity) Attributes() map[string]interface{} {
	return copyMap(e.attributes)
}

// Relation returns the loaded relation result and if it was loaded.
func (e *Entity) Relation(name string) (interface{}, bool) {
	r, ok := e.relations[name]
	return r, ok
}

// One returns the loaded BelongsTo relation or nil.
func (e *Entity) One(name string) *Entity {
	r, _ := e.relations[name].(*Entity)
	return r
}

// Many returns the loaded HasMany or ManyToMany relation.
func (e *Entity) Many(name string) []*Entity {
	r, _ := e.relations[name].([]*Entity)
	return r
}

// Loaded returns true if the relation was loaded.
func (e *Entity) Loaded(name string) bool {
	_, ok := e.relations[name]
	return ok
}

// Pivot returns the pivot data of an entity which was loaded by a ManyToMany relation.
func (e *Entity) Pivot() map[string]interface{} {
	return copyMap(e.pivot)
}

// Exists returns true if the entity is stored in the database.
func (e *Entity) Exists() bool {
	return e.exists
}

// Trashed returns true if the entity is soft deleted.
func (e *Entity) Trashed() bool {
	return e.model.SoftDeletes && e.attributes[DeletedAt] != nil
}

// Dirty returns the changed attributes since the entity was loaded or saved.
func (e *Entity) Dirty() map[string]interface{} {
	rv := map[string]interface{}{}
	for k, v := range e.attributes {
		o, ok := e.original[k]
		if !ok || !equal(o, v) {
			rv[k] = v
		}
	}
	return rv
}

// Copy the entity. Attributes, pivot data and the relation containers are copied,
// related entities are copied recursively.
func (e *Entity) Copy() *Entity {
	c := &Entity{
		model:      e.model,
		attributes: copyMap(e.attributes),
		original:   copyMap(e.original),
		pivot:      copyMap(e.pivot),
		relations:  make(map[string]interface{}, len(e.relations)),
		exists:     e.exists,
	}
	for name, r := range e.relations {
		switch v := r.(type) {
		case *Entity:
			if v != nil {
				c.relations[name] = v.Copy()
				continue
			}
			c.relations[name] = v
		case []*Entity:
			s := make([]*Entity, len(v))
			for i := range v {
				s[i] = v[i].Copy()
			}
			c.relations[name] = s
		}
	}
	return c
}

// Columns returns the sorted attribute names.
func (e *Entity) Columns() []string {
	rv := make([]string, 0, len(e.attributes))
	for k := range e.attributes {
		rv = append(rv, k)
	}
	sort.Strings(rv)
	return rv
}

// Map returns the attributes with the loaded relations as nested maps.
// Pivot data of a ManyToMany relation is added under the key pivot.
func (e *Entity) Map() map[string]interface{} {
	rv := copyMap(e.attributes)
	for name, r := range e.relations {
		switch v := r.(type) {
		case *Entity:
			if v == nil {
				rv[name] = nil
				continue
			}
			rv[name] = v.Map()
		case []*Entity:
			list := make([]map[string]interface{}, 0, len(v))
			for _, c := range v {
				list = append(list, c.Map())
			}
			rv[name] = list
		}
	}
	if e.pivot != nil {
		rv["pivot"] = copyMap(e.pivot)
	}
	return rv
}

// MarshalJSON encodes the entity as its Map.
func (e *Entity) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Map())
}

func (e *Entity) setRelation(name string, v interface{}) {
	e.relations[name] = v
}

// hydrate replaces the attributes by the casted row.
func (e *Entity) hydrate(row map[string]interface{}) {
	e.attributes = make(map[string]interface{}, len(row))
	for k, v := range row {
		e.attributes[k] = e.model.castValue(k, v)
	}
	e.exists = true
	e.syncOriginal()
}

func (e *Entity) syncOriginal() {
	e.original = copyMap(e.attributes)
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	rv := make(map[string]interface{}, len(m))
	for k, v := range m {
		rv[k] = v
	}
	return rv
}

// equal compares two values by their normalized key, so that int64(1) and 1 are equal.
func equal(a interface{}, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return slicer.Key(a) == slicer.Key(b)
}
