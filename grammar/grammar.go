// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package grammar defines the dialect rules for identifier quoting, literal formatting,
// placeholders and the DDL synthesis of a blueprint.
//
// Dialects register a factory by driver name, normally in the init function of their package:
//	func init() {
//		err := grammar.Register("mysql", New)
//		...
//	}
// The grammar is selected once per connection by grammar.New(driverName).
package grammar

import (
	"errors"
	"fmt"
	"strings"

	"github.com/patrickascher/sqlkit/registry"
	"github.com/patrickascher/sqlkit/schema/blueprint"
)

// registryPrefix for the registry package.
const registryPrefix = "grammar_"

// Error messages.
var (
	ErrUnknownDriver = errors.New("grammar: unknown driver")
	ErrUnsupported   = errors.New("grammar: unsupported")
	ErrFactory       = errors.New("grammar: factory must be of type func() grammar.Grammar")
)

// aliases of driver names.
var aliases = map[string]string{
	"sqlite3":    "sqlite",
	"pgx":        "postgres",
	"postgresql": "postgres",
	"mariadb":    "mysql",
}

// init adds a registry validator for the grammar factories.
func init() {
	err := registry.Validator(registry.Validate{Prefix: registryPrefix, Fn: func(name string, v interface{}) error {
		if _, ok := v.(func() Grammar); !ok {
			return ErrFactory
		}
		return nil
	}})
	if err != nil {
		panic(err)
	}
}

// Grammar interface.
type Grammar interface {
	// Name of the dialect.
	Name() string

	// QuoteIdentifier quotes a table or column name. Names prefixed with "!" are returned raw.
	QuoteIdentifier(name string) string
	// QuoteIdentifierChar returns the quote character.
	QuoteIdentifierChar() string
	// FormatLiteral renders a value as SQL literal.
	FormatLiteral(v interface{}) string
	// Placeholder of the dialect.
	Placeholder() Placeholder
	// NoLimit is the LIMIT value which is used if only an offset is set.
	NoLimit() string

	// ColumnType returns the DDL type of the column.
	ColumnType(col blueprint.Column) string
	// CompileCreate returns the statements to create the table, in execution order.
	CompileCreate(b *blueprint.Blueprint) ([]string, error)
	// CompileAlter returns the statements to alter the table, in execution order.
	CompileAlter(b *blueprint.Blueprint) ([]string, error)
	CompileDrop(table string) []string
	CompileDropIfExists(table string) []string
	CompileRename(from string, to string) []string
	// CompileHasTable returns a query with its arguments, which returns a row if the table exists.
	CompileHasTable(table string) (string, []interface{})
	// CompileReturning adds a returning clause to an insert statement, if the dialect supports it.
	CompileReturning(stmt string, key string) (string, bool)
}

// Register a grammar factory by driver name.
func Register(name string, fn func() Grammar) error {
	return registry.Set(registryPrefix+name, fn)
}

// New returns the grammar of the given driver name.
// Known aliases (sqlite3, pgx, postgresql, mariadb) are resolved.
// Error will return if no grammar is registered for the driver.
func New(driver string) (Grammar, error) {
	name := strings.ToLower(driver)
	if alias, ok := aliases[name]; ok {
		name = alias
	}

	fn, err := registry.Get(registryPrefix + name)
	if err != nil {
		return nil, fmt.Errorf("%w %#v (registered: %s)", ErrUnknownDriver, driver, strings.Join(Drivers(), ", "))
	}
	return fn.(func() Grammar)(), nil
}

// Drivers returns the names of all registered grammars.
func Drivers() []string {
	return registry.Names(registryPrefix)
}
