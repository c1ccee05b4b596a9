// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package grammar

import (
	"strconv"
	"strings"
)

// PLACEHOLDER character which is used while building a statement.
const PLACEHOLDER = "?"

// Placeholder is used to ensure an unique placeholder for different database adapters.
type Placeholder struct {
	Numeric bool   // must be true if the database uses something like $1,$2,...
	Char    string // database placeholder character
}

// Replace all "?" of the statement by the dialect placeholder.
// Numeric placeholders are counted from 1. Quoted string literals are skipped.
func (p Placeholder) Replace(stmt string) string {
	if !p.Numeric && p.Char == PLACEHOLDER {
		return stmt
	}

	var sb strings.Builder
	counter := 0
	quoted := false
	for _, r := range stmt {
		switch {
		case r == '\'':
			quoted = !quoted
			sb.WriteRune(r)
		case r == '?' && !quoted:
			sb.WriteString(p.Char)
			if p.Numeric {
				counter++
				sb.WriteString(strconv.Itoa(counter))
			}
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Count returns the number of "?" placeholders outside of quoted string literals.
func Count(stmt string) int {
	n := 0
	quoted := false
	for _, r := range stmt {
		switch {
		case r == '\'':
			quoted = !quoted
		case r == '?' && !quoted:
			n++
		}
	}
	return n
}
