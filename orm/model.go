// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package orm

import (
	"encoding/json"
	"fmt"

	"github.com/patrickascher/sqlkit/slicer"
	"github.com/patrickascher/sqlkit/stringer"
	"github.com/spf13/cast"
)

// Default column names.
const (
	DefaultPrimaryKey = "id"
	CreatedAt         = "created_at"
	UpdatedAt         = "updated_at"
	DeletedAt         = "deleted_at"
)

// Guard all attributes.
const GuardAll = "*"

// Cast types.
const (
	CastInt    = "int"
	CastFloat  = "float"
	CastBool   = "bool"
	CastString = "string"
	CastJSON   = "json"
)

// Model definition.
type Model struct {
	// Name of the model in camel case, e.g. BlogPost.
	Name string `validate:"required"`
	// Table name, default plural snake case of the name (blog_posts).
	Table string
	// PrimaryKey column, default id.
	PrimaryKey string

	// Fillable columns for mass assignment. If empty, all columns except the guarded are fillable.
	Fillable []string
	// Guarded columns. GuardAll blocks all columns which are not fillable.
	Guarded []string

	// Timestamps sets created_at and updated_at.
	Timestamps bool
	// SoftDeletes sets deleted_at instead of deleting the row.
	SoftDeletes bool

	// Casts of column values while hydrating.
	Casts map[string]string `validate:"omitempty,dive,oneof=int float bool string json"`

	Relations map[string]Relation
}

func (m *Model) defaults() {
	if m.Table == "" {
		m.Table = stringer.TableName(m.Name)
	}
	if m.PrimaryKey == "" {
		m.PrimaryKey = DefaultPrimaryKey
	}
}

// fillable returns the mass assignable attributes.
func (m *Model) fillable(attributes map[string]interface{}) map[string]interface{} {
	rv := make(map[string]interface{}, len(attributes))
	for k, v := range attributes {
		if len(m.Fillable) > 0 {
			if _, ok := slicer.StringExists(m.Fillable, k); ok {
				rv[k] = v
			}
			continue
		}
		if _, ok := slicer.StringExists(m.Guarded, GuardAll); ok {
			continue
		}
		if _, ok := slicer.StringExists(m.Guarded, k); !ok {
			rv[k] = v
		}
	}
	return rv
}

// castValue converts a database value by the cast definition. nil stays nil.
func (m *Model) castValue(column string, v interface{}) interface{} {
	c, ok := m.Casts[column]
	if !ok || v == nil {
		return v
	}

	var rv interface{}
	var err error
	switch c {
	case CastInt:
		rv, err = cast.ToInt64E(v)
	case CastFloat:
		rv, err = cast.ToFloat64E(v)
	case CastBool:
		rv, err = toBool(v)
	case CastString:
		rv, err = cast.ToStringE(v)
	case CastJSON:
		var s string
		if s, err = cast.ToStringE(v); err == nil {
			err = json.Unmarshal([]byte(s), &rv)
		}
	}
	if err != nil {
		return v
	}
	return rv
}

// toBool converts numeric driver values (int64, []byte "1") before the bool cast.
func toBool(v interface{}) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string, []byte:
		s := cast.ToString(t)
		if i, err := cast.ToInt64E(s); err == nil {
			return i != 0, nil
		}
		return cast.ToBoolE(s)
	}
	i, err := cast.ToInt64E(v)
	if err != nil {
		return false, err
	}
	return i != 0, nil
}

// storeValues returns the attributes in their database representation.
// Values of json casts are encoded, strings and byte slices are kept as they are.
func (m *Model) storeValues(attributes map[string]interface{}) (map[string]interface{}, error) {
	rv := make(map[string]interface{}, len(attributes))
	for k, v := range attributes {
		rv[k] = v
		if m.Casts[k] != CastJSON || v == nil {
			continue
		}
		switch v.(type) {
		case string, []byte:
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("orm: %s.%s: %w", m.Name, k, err)
		}
		rv[k] = string(b)
	}
	return rv, nil
}

// relation returns the resolved relation by name.
func (m *Model) relation(name string) (Relation, error) {
	r, ok := m.Relations[name]
	if !ok {
		return nil, errorRelation(m, name)
	}
	return r, nil
}
