// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package grammar_test

import (
	"errors"
	"testing"
	"time"

	"github.com/patrickascher/sqlkit/dialect/mysql"
	"github.com/patrickascher/sqlkit/dialect/sqlite"
	"github.com/patrickascher/sqlkit/grammar"
	"github.com/patrickascher/sqlkit/registry"
	"github.com/patrickascher/sqlkit/schema/blueprint"
	"github.com/stretchr/testify/assert"
	"gopkg.in/guregu/null.v4"
)

func TestNew(t *testing.T) {
	asserts := assert.New(t)

	g, err := grammar.New("sqlite3")
	asserts.NoError(err)
	asserts.Equal("sqlite", g.Name())

	g, err = grammar.New("unknown")
	asserts.Nil(g)
	asserts.True(errors.Is(err, grammar.ErrUnknownDriver))

	asserts.Contains(grammar.Drivers(), "mysql")
	asserts.Contains(grammar.Drivers(), "sqlite")

	// factory type is validated
	err = registry.Set("grammar_wrong", "factory")
	asserts.True(errors.Is(err, grammar.ErrFactory))
}

func TestPlaceholder(t *testing.T) {
	asserts := assert.New(t)

	p := grammar.Placeholder{Char: "?"}
	asserts.Equal("a = ? AND b = ?", p.Replace("a = ? AND b = ?"))

	p = grammar.Placeholder{Numeric: true, Char: "$"}
	asserts.Equal("a = $1 AND b = $2", p.Replace("a = ? AND b = ?"))
	// counter starts again for every statement
	asserts.Equal("a = $1", p.Replace("a = ?"))
	asserts.Equal("a = 'what?' AND b = $1", p.Replace("a = 'what?' AND b = ?"))

	asserts.Equal(2, grammar.Count("a = ? AND b = '?' AND c = ?"))
	asserts.Equal(0, grammar.Count("a = 1"))
}

func TestBase_FormatLiteral(t *testing.T) {
	asserts := assert.New(t)
	b := grammar.Base{Quote: `"`, True: "1", False: "0"}

	asserts.Equal("NULL", b.FormatLiteral(nil))
	asserts.Equal("1", b.FormatLiteral(true))
	asserts.Equal("10", b.FormatLiteral(10))
	asserts.Equal("10", b.FormatLiteral(int64(10)))
	asserts.Equal("0.25", b.FormatLiteral(0.25))
	asserts.Equal("'O''Reilly'", b.FormatLiteral("O'Reilly"))
	asserts.Equal("'bytes'", b.FormatLiteral([]byte("bytes")))
	asserts.Equal("'2021-02-03 04:05:06'", b.FormatLiteral(time.Date(2021, 2, 3, 4, 5, 6, 0, time.UTC)))
	asserts.Equal("NULL", b.FormatLiteral(null.String{}))
	asserts.Equal("'x'", b.FormatLiteral(null.StringFrom("x")))
	asserts.Equal("'a', 'b''c'", b.QuoteList([]string{"a", "b'c"}))
}

func TestBase_CompileDefault(t *testing.T) {
	asserts := assert.New(t)
	b := grammar.Base{Quote: "`", True: "1", False: "0"}

	asserts.Equal("", b.CompileDefault(blueprint.Column{}))
	asserts.Equal(" DEFAULT NULL", b.CompileDefault(blueprint.Column{HasDefault: true}))
	asserts.Equal(" DEFAULT 'x'", b.CompileDefault(blueprint.Column{HasDefault: true, Default: "x"}))
	asserts.Equal(" DEFAULT now()", b.CompileDefault(blueprint.Column{HasDefault: true, Default: grammar.Raw("now()")}))
	asserts.Equal(" DEFAULT CURRENT_TIMESTAMP", b.CompileDefault(blueprint.Column{UseCurrent: true}))
}

// TestUniqueIndexScenario compiles the same blueprint for the inline and the separate-index dialect.
func TestUniqueIndexScenario(t *testing.T) {
	asserts := assert.New(t)

	b := blueprint.New("accounts", blueprint.Create)
	b.ID()
	b.String("email").Unique()

	inline, err := mysql.NewGrammar().CompileCreate(b)
	asserts.NoError(err)
	asserts.Equal(1, len(inline))
	asserts.Contains(inline[0], "UNIQUE KEY `uniq_accounts_email` (`email`)")

	separate, err := sqlite.NewGrammar().CompileCreate(b)
	asserts.NoError(err)
	asserts.Equal(2, len(separate))
	asserts.NotContains(separate[0], "UNIQUE")
	asserts.Equal(`CREATE UNIQUE INDEX "uniq_accounts_email" ON "accounts" ("email")`, separate[1])
}
