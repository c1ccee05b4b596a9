// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package orm

import (
	"fmt"

	"github.com/patrickascher/sqlkit/stringer"
)

// Kind of a relation.
type Kind int

// Relation kinds.
const (
	HasManyKind Kind = iota + 1
	BelongsToKind
	ManyToManyKind
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case HasManyKind:
		return "hasMany"
	case BelongsToKind:
		return "belongsTo"
	case ManyToManyKind:
		return "manyToMany"
	}
	return "unknown"
}

// Relation descriptor. The implementations are HasMany, BelongsTo and ManyToMany.
// Descriptors are stateless and are resolved once at model registration.
type Relation interface {
	Kind() Kind
	// RelatedModel returns the related model after registration.
	RelatedModel() *Model

	related() string
	resolve(parent *Model, related *Model) Relation
	eagerLoad(o *ORM, parents []*Entity, name string) ([]*Entity, error)
}

// HasMany relation (User has many Posts).
//	ForeignKey: column on the related table, default user_id.
//	LocalKey: column on the parent table, default primary key of the parent.
type HasMany struct {
	Model      string
	ForeignKey string
	LocalKey   string

	model *Model
}

// Kind returns HasManyKind.
func (r HasMany) Kind() Kind { return HasManyKind }

// RelatedModel returns the related model.
func (r HasMany) RelatedModel() *Model { return r.model }

func (r HasMany) related() string { return r.Model }

func (r HasMany) resolve(parent *Model, related *Model) Relation {
	if r.ForeignKey == "" {
		r.ForeignKey = stringer.ForeignKey(parent.Name)
	}
	if r.LocalKey == "" {
		r.LocalKey = parent.PrimaryKey
	}
	r.model = related
	return r
}

// BelongsTo relation (Post belongs to User).
//	ForeignKey: column on the parent table, default user_id.
//	OwnerKey: column on the related table, default primary key of the related model.
type BelongsTo struct {
	Model      string
	ForeignKey string
	OwnerKey   string

	model *Model
}

// Kind returns BelongsToKind.
func (r BelongsTo) Kind() Kind { return BelongsToKind }

// RelatedModel returns the related model.
func (r BelongsTo) RelatedModel() *Model { return r.model }

func (r BelongsTo) related() string { return r.Model }

func (r BelongsTo) resolve(parent *Model, related *Model) Relation {
	if r.ForeignKey == "" {
		r.ForeignKey = stringer.ForeignKey(related.Name)
	}
	if r.OwnerKey == "" {
		r.OwnerKey = related.PrimaryKey
	}
	r.model = related
	return r
}

// ManyToMany relation over a pivot table (User belongs to many Roles).
//	PivotTable: default role_user.
//	ForeignPivotKey: pivot column of the parent, default user_id.
//	RelatedPivotKey: pivot column of the related model, default role_id.
//	ParentKey, RelatedKey: default primary keys.
//	PivotColumns: extra pivot columns which are added to the pivot data of the related entities.
type ManyToMany struct {
	Model           string
	PivotTable      string
	ForeignPivotKey string
	RelatedPivotKey string
	ParentKey       string
	RelatedKey      string
	PivotColumns    []string

	model *Model
}

// Kind returns ManyToManyKind.
func (r ManyToMany) Kind() Kind { return ManyToManyKind }

// RelatedModel returns the related model.
func (r ManyToMany) RelatedModel() *Model { return r.model }

func (r ManyToMany) related() string { return r.Model }

func (r ManyToMany) resolve(parent *Model, related *Model) Relation {
	if r.PivotTable == "" {
		r.PivotTable = stringer.PivotTable(parent.Name, related.Name)
	}
	if r.ForeignPivotKey == "" {
		r.ForeignPivotKey = stringer.ForeignKey(parent.Name)
	}
	if r.RelatedPivotKey == "" {
		r.RelatedPivotKey = stringer.ForeignKey(related.Name)
	}
	if r.ParentKey == "" {
		r.ParentKey = parent.PrimaryKey
	}
	if r.RelatedKey == "" {
		r.RelatedKey = related.PrimaryKey
	}
	r.PivotColumns = append([]string(nil), r.PivotColumns...)
	r.model = related
	return r
}

func errorRelation(m *Model, name string) error {
	return fmt.Errorf("%w: %s.%s", ErrUnknownRelation, m.Name, name)
}
