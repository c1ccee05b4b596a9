// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package orm maps rows to entities and resolves their relations.
//
// Models are registered once. Their defaults (table, keys, pivot tables) are resolved at registration,
// relations are an explicit mapping from name to a HasMany, BelongsTo or ManyToMany descriptor.
//
// Eager loading is batched over the whole result set: one query per HasMany/BelongsTo relation and
// two queries per ManyToMany relation, independent of the number of parents.
//	o := orm.New(db)
//	err := o.Register(&orm.Model{Name: "User", Relations: map[string]orm.Relation{
//		"posts": orm.HasMany{Model: "Post"},
//		"roles": orm.ManyToMany{Model: "Role", PivotColumns: []string{"granted_at"}},
//	}}, &orm.Model{Name: "Post"}, &orm.Model{Name: "Role"})
//	users, err := o.Query("User").With("posts", "roles").Get()
package orm

import (
	"errors"
	"fmt"
	"sync"
	"time"

	valid "github.com/go-playground/validator/v10"
	"github.com/patrickascher/sqlkit/connection"
	"github.com/patrickascher/sqlkit/query"
)

// Error messages.
var (
	ErrUnknownModel    = errors.New("orm: model is not registered")
	ErrUnknownRelation = errors.New("orm: relation is not defined")
	ErrRelationKind    = errors.New("orm: relation kind is not allowed")
	ErrModel           = errors.New("orm: entities must be of the same model")
	ErrKey             = errors.New("orm: entity has no primary key value")
	ErrNotExists       = errors.New("orm: entity does not exist in the database")
	ErrValidation      = "orm: model %s: %s"
)

// time format of the timestamp columns.
const timeFormat = "2006-01-02 15:04:05"

// validate is used for the model definitions.
var validate = valid.New()

// ORM holds the registered models of one DB.
type ORM struct {
	db  *query.DB
	now func() time.Time

	mu     sync.RWMutex
	models map[string]*Model
}

// Option of the ORM.
type Option func(*ORM)

// WithClock sets the clock for timestamps and soft deletes.
func WithClock(now func() time.Time) Option {
	return func(o *ORM) {
		o.now = now
	}
}

// New creates an ORM for the DB.
func New(db *query.DB, opts ...Option) *ORM {
	o := &ORM{db: db, now: time.Now, models: map[string]*Model{}}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// DB returns the query context.
func (o *ORM) DB() *query.DB {
	return o.db
}

// Register the models. Models which reference each other must be registered in the same call
// or the referenced model must be registered before.
// The defaults of the model and its relations are set once.
func (o *ORM) Register(models ...*Model) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	known := make(map[string]*Model, len(o.models)+len(models))
	for name, m := range o.models {
		known[name] = m
	}
	for _, m := range models {
		if err := validate.Struct(m); err != nil {
			return fmt.Errorf(ErrValidation, m.Name, err)
		}
		if _, ok := known[m.Name]; ok {
			return fmt.Errorf("orm: model %s is already registered", m.Name)
		}
		m.defaults()
		known[m.Name] = m
	}

	for _, m := range models {
		resolved := make(map[string]Relation, len(m.Relations))
		for name, rel := range m.Relations {
			related, ok := known[rel.related()]
			if !ok {
				return fmt.Errorf("%w: %s (relation %s.%s)", ErrUnknownModel, rel.related(), m.Name, name)
			}
			r := rel.resolve(m, related)
			if mm, ok := r.(ManyToMany); ok && mm.ForeignPivotKey == mm.RelatedPivotKey {
				return fmt.Errorf("%w: pivot keys of %s.%s must differ", ErrRelationKind, m.Name, name)
			}
			resolved[name] = r
		}
		m.Relations = resolved
	}

	for _, m := range models {
		o.models[m.Name] = m
	}
	return nil
}

// Model returns the registered model by name.
func (o *ORM) Model(name string) (*Model, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	m, ok := o.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	return m, nil
}

// Hydrate creates an existing entity of the row. The casts of the model are applied.
func (o *ORM) Hydrate(m *Model, row connection.Row) *Entity {
	e := newEntity(m)
	e.hydrate(row)
	return e
}

// NewEntity creates a new entity of the model. The attributes are filtered by the mass assignment rules.
func (o *ORM) NewEntity(model string, attributes map[string]interface{}) (*Entity, error) {
	m, err := o.Model(model)
	if err != nil {
		return nil, err
	}
	return newEntity(m).Fill(attributes), nil
}

func (o *ORM) timestamp() string {
	return o.now().Format(timeFormat)
}

// transaction joins an open transaction or starts a new one.
func (o *ORM) transaction(fn func() error) error {
	if o.db.InTransaction() {
		return fn()
	}
	return o.db.Transaction(fn)
}
