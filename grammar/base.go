// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package grammar

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/patrickascher/sqlkit/schema/blueprint"
)

// RAW prefix, identifiers starting with it are not quoted.
const RAW = "!"

// Raw marks an expression, so that it will not get quoted.
func Raw(s string) string {
	return RAW + s
}

// Base holds the shared logic of all dialects.
// It should be embedded in the dialect grammar.
type Base struct {
	Quote string
	True  string
	False string
	// TimeFormat of time literals.
	TimeFormat string
}

// QuoteIdentifierChar returns the quote character.
func (b Base) QuoteIdentifierChar() string {
	return b.Quote
}

// QuoteIdentifier quotes the name. Quote characters inside the name are removed.
// table.column, * and aliases ("col alias", "col AS alias") are supported.
func (b Base) QuoteIdentifier(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	// don't escape raw expressions.
	if strings.HasPrefix(name, RAW) {
		return name[1:]
	}

	name = strings.Replace(name, b.Quote, "", -1)

	// check if an alias was used
	alias := strings.Fields(name)
	var rv string
	for _, part := range strings.Split(alias[0], ".") {
		if rv != "" {
			rv += "."
		}
		if part == "*" {
			rv += part
			continue
		}
		rv += b.Quote + part + b.Quote
	}
	if len(alias) >= 2 {
		as := " "
		if len(alias) >= 3 && strings.EqualFold(alias[len(alias)-2], "as") {
			as = " AS "
		}
		rv += as + b.Quote + alias[len(alias)-1] + b.Quote
	}

	return rv
}

// QuoteIdentifiers quotes all names and joins them by comma.
func (b Base) QuoteIdentifiers(names []string) string {
	rv := make([]string, len(names))
	for i, n := range names {
		rv[i] = b.QuoteIdentifier(n)
	}
	return strings.Join(rv, ", ")
}

// FormatLiteral renders a value as SQL literal.
// nil is NULL, strings are single quoted with escaped quotes.
func (b Base) FormatLiteral(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if val {
			return b.True
		}
		return b.False
	case int:
		return strconv.Itoa(val)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(val)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		f := b.TimeFormat
		if f == "" {
			f = "2006-01-02 15:04:05"
		}
		return "'" + val.Format(f) + "'"
	case []byte:
		return b.quoteString(string(val))
	case driver.Valuer:
		dv, err := val.Value()
		if err != nil {
			return "NULL"
		}
		return b.FormatLiteral(dv)
	case fmt.Stringer:
		return b.quoteString(val.String())
	case string:
		return b.quoteString(val)
	}
	return b.quoteString(fmt.Sprint(v))
}

func (b Base) quoteString(s string) string {
	return "'" + strings.Replace(s, "'", "''", -1) + "'"
}

// QuoteList renders a comma separated list of string literals, used for enum values.
func (b Base) QuoteList(values []string) string {
	rv := make([]string, len(values))
	for i, v := range values {
		rv[i] = b.quoteString(v)
	}
	return strings.Join(rv, ", ")
}

// CompileDrop returns the drop statement.
func (b Base) CompileDrop(table string) []string {
	return []string{"DROP TABLE " + b.QuoteIdentifier(table)}
}

// CompileDropIfExists returns the drop statement with an existence check.
func (b Base) CompileDropIfExists(table string) []string {
	return []string{"DROP TABLE IF EXISTS " + b.QuoteIdentifier(table)}
}

// CompileReturning is not supported by default.
func (b Base) CompileReturning(stmt string, key string) (string, bool) {
	return stmt, false
}

// CompileDefault returns the DEFAULT clause of the column or an empty string.
func (b Base) CompileDefault(col blueprint.Column) string {
	if col.UseCurrent {
		return " DEFAULT CURRENT_TIMESTAMP"
	}
	if !col.HasDefault {
		return ""
	}
	if s, ok := col.Default.(string); ok && strings.HasPrefix(s, RAW) {
		return " DEFAULT " + s[1:]
	}
	return " DEFAULT " + b.FormatLiteral(col.Default)
}

// CompileForeign returns the constraint definition of a foreign key command.
func (b Base) CompileForeign(cmd blueprint.Command) (string, error) {
	if cmd.On == "" || len(cmd.References) == 0 {
		return "", fmt.Errorf("%w: foreign key %s without referenced table or columns", ErrUnsupported, cmd.Name)
	}
	sql := fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		b.QuoteIdentifier(cmd.Name), b.QuoteIdentifiers(cmd.Columns), b.QuoteIdentifier(cmd.On), b.QuoteIdentifiers(cmd.References))
	if cmd.OnDelete != "" {
		sql += " ON DELETE " + strings.ToUpper(cmd.OnDelete)
	}
	if cmd.OnUpdate != "" {
		sql += " ON UPDATE " + strings.ToUpper(cmd.OnUpdate)
	}
	return sql, nil
}

// CompileIndex returns a separate CREATE [UNIQUE] INDEX statement.
func (b Base) CompileIndex(table string, idx blueprint.Index) string {
	unique := ""
	if idx.Type == blueprint.UniqueIndex {
		unique = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)", unique, b.QuoteIdentifier(idx.Name), b.QuoteIdentifier(table), b.QuoteIdentifiers(idx.Columns))
}

// Length returns the given length or the default.
func Length(l int, def int) int {
	if l <= 0 {
		return def
	}
	return l
}
