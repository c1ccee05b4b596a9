// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/patrickascher/sqlkit/query"
	"gopkg.in/yaml.v3"
)

// ErrYAML is returned if a seed file is invalid.
var ErrYAML = errors.New("seed: invalid yaml definition")

// Dir returns a source of YAML seed files. The file base name without extension is the seeder name.
// The tables of a file are filled in the defined order.
//
//	- table: teams
//	  truncate: true
//	  rows:
//	    - {id: 1, name: red}
//	- table: players
//	  columns: [name, team_id]
//	  rows:
//	    - {name: john, team_id: 1}
func Dir(fsys fs.FS, dir string) Source {
	return &yamlDir{fsys: fsys, dir: dir}
}

type yamlDir struct {
	fsys fs.FS
	dir  string
}

type yamlFile []yamlTable

type yamlTable struct {
	Table    string                   `yaml:"table"`
	Truncate bool                     `yaml:"truncate"`
	Columns  []string                 `yaml:"columns"`
	Rows     []map[string]interface{} `yaml:"rows"`
}

// Seeders reads and validates all yaml files of the directory.
func (d *yamlDir) Seeders() (map[string]Seeder, error) {
	entries, err := fs.ReadDir(d.fsys, d.dir)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}

	rv := map[string]Seeder{}
	for _, e := range entries {
		ext := strings.ToLower(path.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		if _, ok := rv[name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicate, name)
		}

		data, err := fs.ReadFile(d.fsys, path.Join(d.dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
		var f yamlFile
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("%w %s: %s", ErrYAML, e.Name(), err)
		}
		for i, t := range f {
			if t.Table == "" {
				return nil, fmt.Errorf("%w %s: entry %d: table is missing", ErrYAML, e.Name(), i)
			}
			if len(t.Rows) == 0 && !t.Truncate {
				return nil, fmt.Errorf("%w %s: entry %d: no rows", ErrYAML, e.Name(), i)
			}
		}
		rv[name] = f
	}
	return rv, nil
}

// Seed fills the tables.
func (f yamlFile) Seed(db *query.DB) error {
	for _, t := range f {
		if t.Truncate {
			if _, err := db.Table(t.Table).Delete(); err != nil {
				return err
			}
		}
		if len(t.Rows) == 0 {
			continue
		}
		b := db.Table(t.Table)
		if len(t.Columns) > 0 {
			b.Columns(t.Columns...)
		}
		if _, err := b.InsertMany(t.Rows); err != nil {
			return err
		}
	}
	return nil
}
