// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package migration

import (
	"fmt"
	"sort"
	"time"

	"github.com/patrickascher/sqlkit/logger"
	"github.com/patrickascher/sqlkit/query"
	"github.com/patrickascher/sqlkit/schema"
	"github.com/patrickascher/sqlkit/schema/blueprint"
	"github.com/spf13/cast"
	"gopkg.in/guregu/null.v4"
)

// DefaultTable of the migration records.
const DefaultTable = "migrations"

// time format of the ran_at column.
const timeFormat = "2006-01-02 15:04:05"

// Status of a migration.
type Status struct {
	Name  string
	Ran   bool
	Batch null.Int
	RanAt null.String
	// Missing is true if the migration is recorded but has no definition.
	Missing bool
}

// Repository runs the migrations of a source and records them in the tracking table.
type Repository struct {
	db     *query.DB
	schema *schema.Builder
	source Source

	table string
	log   logger.Manager
	now   func() time.Time
}

// Option of the repository.
type Option func(*Repository)

// WithTable sets the name of the tracking table.
func WithTable(table string) Option {
	return func(r *Repository) {
		r.table = table
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Manager) Option {
	return func(r *Repository) {
		r.log = l
	}
}

// WithClock sets the clock which is used for ran_at.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// New creates a repository.
func New(db *query.DB, src Source, opts ...Option) *Repository {
	r := &Repository{db: db, schema: schema.New(db), source: src, table: DefaultTable, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EnsureTable creates the tracking table if it does not exist.
func (r *Repository) EnsureTable() error {
	exists, err := r.schema.HasTable(r.table)
	if err != nil {
		return fmt.Errorf("migration: %w", err)
	}
	if exists {
		return nil
	}
	return r.schema.Create(r.table, func(b *blueprint.Blueprint) {
		b.Increments("id")
		b.String("migration")
		b.Integer("batch")
		b.DateTime("ran_at").Nullable()
	})
}

// Migrate applies all pending migrations in name order with the next batch number.
// The number of applied migrations is returned. The first error stops the run.
func (r *Repository) Migrate() (int, error) {
	if err := r.EnsureTable(); err != nil {
		return 0, err
	}
	defs, err := r.source.Migrations()
	if err != nil {
		return 0, err
	}
	ran, err := r.Ran()
	if err != nil {
		return 0, err
	}
	done := make(map[string]bool, len(ran))
	for _, name := range ran {
		done[name] = true
	}

	batch, err := r.lastBatch()
	if err != nil {
		return 0, err
	}
	batch++

	count := 0
	for _, name := range names(defs) {
		if done[name] {
			continue
		}
		m := defs[name]
		l := r.logFields(name, batch)
		err = r.transaction(func() error {
			if err := m.Up(r.schema); err != nil {
				return err
			}
			_, err := r.db.Table(r.table).Insert(map[string]interface{}{
				"migration": name,
				"batch":     batch,
				"ran_at":    r.now().Format(timeFormat),
			})
			return err
		})
		if err != nil {
			if l != nil {
				l.WithFields(logger.Fields{"error": err}).Error("migration failed")
			}
			return count, fmt.Errorf("migration: up %s: %w", name, err)
		}
		if l != nil {
			l.Info("migrated")
		}
		count++
	}
	return count, nil
}

// RollbackLastBatch rolls back the migrations of the highest batch in reverse apply order.
// The number of rolled back migrations is returned, 0 if nothing was recorded.
func (r *Repository) RollbackLastBatch() (int, error) {
	if err := r.EnsureTable(); err != nil {
		return 0, err
	}
	batch, err := r.lastBatch()
	if err != nil || batch == 0 {
		return 0, err
	}

	recorded, err := r.db.Table(r.table).Where("batch", "=", batch).OrderByDesc("id").Pluck("migration")
	if err != nil {
		return 0, err
	}
	defs, err := r.source.Migrations()
	if err != nil {
		return 0, err
	}
	migrations := make([]string, len(recorded))
	for i, v := range recorded {
		migrations[i] = cast.ToString(v)
		if _, ok := defs[migrations[i]]; !ok {
			return 0, fmt.Errorf("%w: %s", ErrMissingDefinition, migrations[i])
		}
	}

	count := 0
	for _, name := range migrations {
		m := defs[name]
		l := r.logFields(name, batch)
		err = r.transaction(func() error {
			if err := m.Down(r.schema); err != nil {
				return err
			}
			_, err := r.db.Table(r.table).Where("migration", "=", name).Delete()
			return err
		})
		if err != nil {
			if l != nil {
				l.WithFields(logger.Fields{"error": err}).Error("rollback failed")
			}
			return count, fmt.Errorf("migration: down %s: %w", name, err)
		}
		if l != nil {
			l.Info("rolled back")
		}
		count++
	}
	return count, nil
}

// RollbackAll rolls back batch by batch until nothing is recorded.
func (r *Repository) RollbackAll() (int, error) {
	total := 0
	for {
		n, err := r.RollbackLastBatch()
		total += n
		if err != nil || n == 0 {
			return total, err
		}
	}
}

// Refresh rolls back all migrations and migrates again.
func (r *Repository) Refresh() (rolledBack int, migrated int, err error) {
	if rolledBack, err = r.RollbackAll(); err != nil {
		return
	}
	migrated, err = r.Migrate()
	return
}

// Ran returns the names of the recorded migrations in apply order.
func (r *Repository) Ran() ([]string, error) {
	values, err := r.db.Table(r.table).OrderBy("id").Pluck("migration")
	if err != nil {
		return nil, err
	}
	rv := make([]string, len(values))
	for i, v := range values {
		rv[i] = cast.ToString(v)
	}
	return rv, nil
}

// Status returns all defined and recorded migrations sorted by name.
func (r *Repository) Status() ([]Status, error) {
	if err := r.EnsureTable(); err != nil {
		return nil, err
	}
	defs, err := r.source.Migrations()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Table(r.table).Select("migration", "batch", "ran_at").OrderBy("id").Get()
	if err != nil {
		return nil, err
	}

	status := map[string]*Status{}
	for name := range defs {
		status[name] = &Status{Name: name}
	}
	for _, row := range rows {
		name := cast.ToString(row["migration"])
		s, ok := status[name]
		if !ok {
			s = &Status{Name: name, Missing: true}
			status[name] = s
		}
		s.Ran = true
		if b, err := cast.ToInt64E(row["batch"]); err == nil {
			s.Batch = null.IntFrom(b)
		}
		s.RanAt = timeString(row["ran_at"])
	}

	rv := make([]Status, 0, len(status))
	for _, s := range status {
		rv = append(rv, *s)
	}
	sort.Slice(rv, func(i, j int) bool { return rv[i].Name < rv[j].Name })
	return rv, nil
}

// lastBatch returns the highest recorded batch or 0.
func (r *Repository) lastBatch() (int64, error) {
	v, err := r.db.Table(r.table).Max("batch")
	if err != nil || v == nil {
		return 0, err
	}
	return cast.ToInt64E(v)
}

// transaction joins an open transaction or starts a new one.
func (r *Repository) transaction(fn func() error) error {
	if r.db.InTransaction() {
		return fn()
	}
	return r.db.Transaction(fn)
}

func (r *Repository) logFields(name string, batch int64) logger.Manager {
	if r.log == nil {
		return nil
	}
	return r.log.WithFields(logger.Fields{"migration": name, "batch": batch}).WithTimer()
}

func timeString(v interface{}) null.String {
	switch t := v.(type) {
	case nil:
		return null.String{}
	case time.Time:
		return null.StringFrom(t.Format(timeFormat))
	}
	return null.StringFrom(cast.ToString(v))
}
