// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package migration

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/patrickascher/sqlkit/schema"
	"github.com/patrickascher/sqlkit/schema/blueprint"
	"github.com/patrickascher/sqlkit/structer"
	"gopkg.in/yaml.v3"
)

// ErrYAML is returned if a migration file is invalid.
var ErrYAML = errors.New("migration: invalid yaml definition")

// yaml file extensions.
var extensions = []string{".yaml", ".yml"}

// Dir returns a source of YAML migration files. The file base name without extension is the migration name.
//
//	up:
//	  - create: users
//	    columns:
//	      - {name: id, type: increments}
//	      - {name: email, type: string, options: "length:100;unique"}
//	    timestamps: true
//	down:
//	  - drop: users
func Dir(fsys fs.FS, dir string) Source {
	return &yamlDir{fsys: fsys, dir: dir}
}

type yamlDir struct {
	fsys fs.FS
	dir  string
}

type yamlFile struct {
	UpOps   []yamlOp `yaml:"up"`
	DownOps []yamlOp `yaml:"down"`
}

type yamlOp struct {
	Create       string `yaml:"create"`
	Table        string `yaml:"table"`
	Drop         string `yaml:"drop"`
	DropIfExists string `yaml:"drop_if_exists"`
	Rename       string `yaml:"rename"`
	To           string `yaml:"to"`
	SQL          string `yaml:"sql"`

	Columns     []yamlColumn  `yaml:"columns"`
	Primary     []string      `yaml:"primary"`
	Indexes     []yamlIndex   `yaml:"indexes"`
	Foreign     []yamlForeign `yaml:"foreign"`
	Timestamps  bool          `yaml:"timestamps"`
	SoftDeletes bool          `yaml:"soft_deletes"`
	DropColumns []string      `yaml:"drop_columns"`
	DropIndexes []string      `yaml:"drop_indexes"`
	DropForeign []string      `yaml:"drop_foreign"`
}

type yamlColumn struct {
	Name    string   `yaml:"name"`
	Type    string   `yaml:"type"`
	Options string   `yaml:"options"`
	Allowed []string `yaml:"allowed"`
}

type yamlIndex struct {
	Columns []string `yaml:"columns"`
	Unique  bool     `yaml:"unique"`
	Name    string   `yaml:"name"`
}

type yamlForeign struct {
	Columns    []string `yaml:"columns"`
	References []string `yaml:"references"`
	On         string   `yaml:"on"`
	OnDelete   string   `yaml:"on_delete"`
	OnUpdate   string   `yaml:"on_update"`
	Name       string   `yaml:"name"`
}

// Migrations reads and validates all yaml files of the directory.
func (d *yamlDir) Migrations() (map[string]Migration, error) {
	entries, err := fs.ReadDir(d.fsys, d.dir)
	if err != nil {
		return nil, fmt.Errorf("migration: %w", err)
	}

	rv := map[string]Migration{}
	for _, e := range entries {
		ext := path.Ext(e.Name())
		if e.IsDir() || !hasExtension(ext) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ext)
		if _, ok := rv[name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicate, name)
		}

		data, err := fs.ReadFile(d.fsys, path.Join(d.dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("migration: %w", err)
		}
		var f yamlFile
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("%w %s: %s", ErrYAML, e.Name(), err)
		}
		for _, ops := range [][]yamlOp{f.UpOps, f.DownOps} {
			for i, op := range ops {
				if err = op.validate(); err != nil {
					return nil, fmt.Errorf("%w %s: operation %d: %s", ErrYAML, e.Name(), i, err)
				}
			}
		}
		rv[name] = &f
	}
	return rv, nil
}

func hasExtension(ext string) bool {
	for _, e := range extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// Up runs the up operations.
func (f *yamlFile) Up(s *schema.Builder) error {
	return runOps(s, f.UpOps)
}

// Down runs the down operations.
func (f *yamlFile) Down(s *schema.Builder) error {
	return runOps(s, f.DownOps)
}

func runOps(s *schema.Builder, ops []yamlOp) error {
	for _, op := range ops {
		if err := op.run(s); err != nil {
			return err
		}
	}
	return nil
}

// validate that exactly one operation is defined and the blueprint can be built.
func (op yamlOp) validate() error {
	n := 0
	for _, v := range []string{op.Create, op.Table, op.Drop, op.DropIfExists, op.Rename, op.SQL} {
		if v != "" {
			n++
		}
	}
	if n != 1 {
		return errors.New("exactly one of create, table, drop, drop_if_exists, rename or sql must be set")
	}
	if op.Rename != "" && op.To == "" {
		return errors.New("rename needs a to")
	}
	if op.Create != "" || op.Table != "" {
		_, err := op.blueprint()
		return err
	}
	return nil
}

func (op yamlOp) run(s *schema.Builder) error {
	switch {
	case op.Create != "", op.Table != "":
		b, err := op.blueprint()
		if err != nil {
			return err
		}
		return s.Blueprint(b)
	case op.Drop != "":
		return s.Drop(op.Drop)
	case op.DropIfExists != "":
		return s.DropIfExists(op.DropIfExists)
	case op.Rename != "":
		return s.Rename(op.Rename, op.To)
	}
	return s.Raw(op.SQL)
}

// blueprint builds the blueprint of a create or table operation.
func (op yamlOp) blueprint() (*blueprint.Blueprint, error) {
	b := blueprint.New(op.Create, blueprint.Create)
	if op.Table != "" {
		b = blueprint.New(op.Table, blueprint.Alter)
	}

	for _, c := range op.Columns {
		if err := addColumn(b, c); err != nil {
			return nil, err
		}
	}
	if op.Timestamps {
		b.Timestamps()
	}
	if op.SoftDeletes {
		b.SoftDeletes()
	}
	if len(op.Primary) > 0 {
		b.Primary(op.Primary...)
	}
	for _, idx := range op.Indexes {
		var def *blueprint.IndexDefinition
		if idx.Unique {
			def = b.Unique(idx.Columns...)
		} else {
			def = b.Index(idx.Columns...)
		}
		if idx.Name != "" {
			def.Name(idx.Name)
		}
	}
	for _, fk := range op.Foreign {
		def := b.Foreign(fk.Columns...).References(fk.References...).On(fk.On)
		if fk.OnDelete != "" {
			def.OnDelete(fk.OnDelete)
		}
		if fk.OnUpdate != "" {
			def.OnUpdate(fk.OnUpdate)
		}
		if fk.Name != "" {
			def.Name(fk.Name)
		}
	}
	for _, idx := range op.DropIndexes {
		b.DropIndex(idx)
	}
	for _, fk := range op.DropForeign {
		b.DropForeign(fk)
	}
	if len(op.DropColumns) > 0 {
		b.DropColumn(op.DropColumns...)
	}
	return b, nil
}

// addColumn adds the column by its type name and applies the options.
func addColumn(b *blueprint.Blueprint, c yamlColumn) error {
	if c.Name == "" {
		return errors.New("column name is empty")
	}
	opts := structer.ParseTag(c.Options)
	intOpt := func(key string) (int, error) {
		v, ok := opts[key]
		if !ok {
			return 0, nil
		}
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("column %s: option %s: %w", c.Name, key, err)
		}
		return i, nil
	}

	var col *blueprint.ColumnDefinition
	switch c.Type {
	case "increments":
		col = b.Increments(c.Name)
	case "bigIncrements", "id":
		col = b.BigIncrements(c.Name)
	case "foreignId":
		col = b.ForeignID(c.Name)
	case blueprint.Enum:
		if len(c.Allowed) == 0 {
			return fmt.Errorf("column %s: enum needs allowed values", c.Name)
		}
		col = b.Enum(c.Name, c.Allowed...)
	case blueprint.Decimal:
		p, err := intOpt("precision")
		if err != nil {
			return err
		}
		s, err := intOpt("scale")
		if err != nil {
			return err
		}
		col = b.Decimal(c.Name, p, s)
	case blueprint.BigInteger, blueprint.Binary, blueprint.Boolean, blueprint.Char, blueprint.Date, blueprint.DateTime,
		blueprint.Double, blueprint.Float, blueprint.Integer, blueprint.JSON, blueprint.JSONB, blueprint.LongText,
		blueprint.MediumText, blueprint.SmallInteger, blueprint.String, blueprint.Text, blueprint.Time,
		blueprint.Timestamp, blueprint.TinyInteger, blueprint.UUID:
		col = b.AddColumn(c.Type, c.Name)
		if c.Type == blueprint.String {
			col.Length(blueprint.DefaultStringLength)
		}
	default:
		return fmt.Errorf("column %s: unknown type %#v", c.Name, c.Type)
	}

	for key, value := range opts {
		switch key {
		case "length":
			l, err := intOpt(key)
			if err != nil {
				return err
			}
			col.Length(l)
		case "precision", "scale":
			// decimal only
		case "nullable":
			col.Nullable()
		case "unsigned":
			col.Unsigned()
		case "auto_increment":
			col.AutoIncrement()
		case "primary":
			col.Primary()
		case "unique":
			col.Unique(nonEmpty(value)...)
		case "index":
			col.Index(nonEmpty(value)...)
		case "default":
			col.Default(value)
		case "use_current":
			col.UseCurrent()
		case "comment":
			col.Comment(value)
		default:
			return fmt.Errorf("column %s: unknown option %#v", c.Name, key)
		}
	}
	return nil
}

func nonEmpty(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}
