// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package condition provides the clause AST of a query: predicates, sort keys, limit and offset.
// The AST is rendered with "?" placeholders, the caller replaces them by the dialect placeholder.
package condition

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Error messages.
var (
	ErrValue               = "query: %s was called with no value(s)"
	ErrOperator            = errors.New("query: operator is not allowed")
	ErrPlaceholderMismatch = errors.New("query: placeholder and arguments does not fit")
)

// PLACEHOLDER character.
const PLACEHOLDER = "?"

// Parts of the condition, used for Reset.
const (
	WHERE = iota + 1
	ORDER
	LIMIT
	OFFSET
)

// Kind of a predicate.
type Kind int

// Predicate kinds.
const (
	Basic Kind = iota + 1
	In
	NotIn
	Null
	NotNull
	Raw
)

// Connector of a predicate.
type Connector string

// Connectors.
const (
	AND Connector = "AND"
	OR  Connector = "OR"
)

// operators which are allowed in a basic predicate.
var operators = map[string]bool{
	"=": true, "!=": true, "<>": true, "<": true, "<=": true, ">": true, ">=": true, "LIKE": true, "NOT LIKE": true,
}

// Quoter quotes identifiers.
type Quoter interface {
	QuoteIdentifier(string) string
}

// Predicate of the where clause.
type Predicate struct {
	Kind       Kind
	Connector  Connector
	Column     string
	Operator   string
	Values     []interface{}
	Expression string
}

// Order is a sort key.
type Order struct {
	Column string
	Desc   bool
	Raw    bool
}

// Condition interface.
type Condition interface {
	SetWhere(connector Connector, column string, operator string, value interface{}) Condition
	SetWhereIn(connector Connector, column string, values interface{}, not bool) Condition
	SetWhereNull(connector Connector, column string, not bool) Condition
	SetWhereRaw(connector Connector, expression string, args ...interface{}) Condition
	Predicates() []Predicate

	SetOrder(order ...string) Condition
	AddOrder(column string, desc bool) Condition
	AddOrderRaw(expression string) Condition
	Order() []Order

	SetLimit(limit int) Condition
	Limit() (int, bool)
	SetOffset(offset int) Condition
	Offset() (int, bool)

	Copy() Condition
	Reset(...int)
	Error() error
	RenderWhere(q Quoter) (string, []interface{}, error)
	Render(q Quoter, noLimit string) (string, []interface{}, error)
}

type condition struct {
	predicates []Predicate
	order      []Order
	limit      *int
	offset     *int
	error      error
}

// New creates a new Condition instance.
func New() Condition {
	return &condition{}
}

// Copy a Condition into a new instance.
func (c *condition) Copy() Condition {
	newC := &condition{error: c.error}
	newC.predicates = make([]Predicate, len(c.predicates))
	copy(newC.predicates, c.predicates)
	newC.order = make([]Order, len(c.order))
	copy(newC.order, c.order)
	if c.limit != nil {
		l := *c.limit
		newC.limit = &l
	}
	if c.offset != nil {
		o := *c.offset
		newC.offset = &o
	}
	return newC
}

// Error of the condition.
func (c *condition) Error() error {
	return c.error
}

// SetWhere adds a basic predicate.
// A nil value with "=" or "!="/"<>" is converted to IS NULL / IS NOT NULL.
func (c *condition) SetWhere(connector Connector, column string, operator string, value interface{}) Condition {
	op := strings.ToUpper(strings.Join(strings.Fields(operator), " "))
	if !operators[op] {
		c.error = fmt.Errorf("%w: %#v", ErrOperator, operator)
		return c
	}

	if value == nil {
		switch op {
		case "=":
			return c.SetWhereNull(connector, column, false)
		case "!=", "<>":
			return c.SetWhereNull(connector, column, true)
		}
	}

	c.predicates = append(c.predicates, Predicate{Kind: Basic, Connector: connector, Column: column, Operator: op, Values: []interface{}{value}})
	return c
}

// SetWhereIn adds an IN or NOT IN predicate. Values must be a slice or array.
func (c *condition) SetWhereIn(connector Connector, column string, values interface{}, not bool) Condition {
	kind := In
	if not {
		kind = NotIn
	}
	c.predicates = append(c.predicates, Predicate{Kind: kind, Connector: connector, Column: column, Values: expand(values)})
	return c
}

// SetWhereNull adds an IS NULL or IS NOT NULL predicate.
func (c *condition) SetWhereNull(connector Connector, column string, not bool) Condition {
	kind := Null
	if not {
		kind = NotNull
	}
	c.predicates = append(c.predicates, Predicate{Kind: kind, Connector: connector, Column: column})
	return c
}

// SetWhereRaw adds a raw expression. Slice arguments are expanded.
//		c.SetWhereRaw(condition.AND, "id IN (?)", []int{10,11,12})
func (c *condition) SetWhereRaw(connector Connector, expression string, args ...interface{}) Condition {
	expression, args, err := ClauseManipulation(expression, args)
	if err != nil {
		c.error = err
		return c
	}
	c.predicates = append(c.predicates, Predicate{Kind: Raw, Connector: connector, Expression: expression, Values: args})
	return c
}

// Predicates returns the where predicates in the added order.
func (c *condition) Predicates() []Predicate {
	return c.predicates
}

// SetOrder replaces the order.
// If a column has a `-` prefix or a " desc" suffix, DESC order will get set.
func (c *condition) SetOrder(order ...string) Condition {
	c.Reset(ORDER)

	if len(order) == 0 || (len(order) == 1 && order[0] == "") {
		c.error = fmt.Errorf(ErrValue, "SetOrder")
		return c
	}

	for _, o := range order {
		o = strings.TrimSpace(o)
		switch {
		case strings.HasPrefix(o, "-"):
			c.AddOrder(o[1:], true)
		case strings.HasSuffix(strings.ToUpper(o), " DESC"):
			c.AddOrder(strings.TrimSpace(o[:len(o)-5]), true)
		case strings.HasSuffix(strings.ToUpper(o), " ASC"):
			c.AddOrder(strings.TrimSpace(o[:len(o)-4]), false)
		default:
			c.AddOrder(o, false)
		}
	}
	return c
}

// AddOrder appends a sort key.
func (c *condition) AddOrder(column string, desc bool) Condition {
	c.order = append(c.order, Order{Column: column, Desc: desc})
	return c
}

// AddOrderRaw appends a raw sort expression.
func (c *condition) AddOrderRaw(expression string) Condition {
	c.order = append(c.order, Order{Column: expression, Raw: true})
	return c
}

// Order returns the sort keys.
func (c *condition) Order() []Order {
	return c.order
}

// SetLimit for the condition.
func (c *condition) SetLimit(limit int) Condition {
	c.limit = &limit
	return c
}

// Limit of the condition and if it was set.
func (c *condition) Limit() (int, bool) {
	if c.limit == nil {
		return 0, false
	}
	return *c.limit, true
}

// SetOffset for the condition.
func (c *condition) SetOffset(offset int) Condition {
	c.offset = &offset
	return c
}

// Offset of the condition and if it was set.
func (c *condition) Offset() (int, bool) {
	if c.offset == nil {
		return 0, false
	}
	return *c.offset, true
}

// Reset the complete condition or only single parts.
func (c *condition) Reset(r ...int) {
	if len(r) == 0 {
		r = []int{WHERE, ORDER, LIMIT, OFFSET}
	}
	for _, reset := range r {
		switch reset {
		case WHERE:
			c.predicates = nil
		case ORDER:
			c.order = nil
		case LIMIT:
			c.limit = nil
		case OFFSET:
			c.offset = nil
		}
	}
}

// RenderWhere renders the WHERE clause and its arguments.
// Every predicate is wrapped in parentheses, the connector is added before all but the first one.
// An empty IN renders as constant false, an empty NOT IN as constant true.
func (c *condition) RenderWhere(q Quoter) (string, []interface{}, error) {
	if c.error != nil {
		return "", nil, c.error
	}
	if len(c.predicates) == 0 {
		return "", nil, nil
	}

	var sb strings.Builder
	var args []interface{}
	sb.WriteString("WHERE ")
	for i, p := range c.predicates {
		if i > 0 {
			sb.WriteString(" " + string(p.Connector) + " ")
		}
		switch p.Kind {
		case Basic:
			sb.WriteString("(" + q.QuoteIdentifier(p.Column) + " " + p.Operator + " " + PLACEHOLDER + ")")
			args = append(args, p.Values...)
		case In, NotIn:
			if len(p.Values) == 0 {
				if p.Kind == In {
					sb.WriteString("(1 = 0)")
				} else {
					sb.WriteString("(1 = 1)")
				}
				continue
			}
			op := " IN ("
			if p.Kind == NotIn {
				op = " NOT IN ("
			}
			sb.WriteString("(" + q.QuoteIdentifier(p.Column) + op + placeholders(len(p.Values)) + "))")
			args = append(args, p.Values...)
		case Null:
			sb.WriteString("(" + q.QuoteIdentifier(p.Column) + " IS NULL)")
		case NotNull:
			sb.WriteString("(" + q.QuoteIdentifier(p.Column) + " IS NOT NULL)")
		case Raw:
			sb.WriteString("(" + p.Expression + ")")
			args = append(args, p.Values...)
		}
	}
	return sb.String(), args, nil
}

// Render the WHERE, ORDER BY, LIMIT and OFFSET clauses.
// If only an offset is set, noLimit is used as limit.
func (c *condition) Render(q Quoter, noLimit string) (string, []interface{}, error) {
	where, args, err := c.RenderWhere(q)
	if err != nil {
		return "", nil, err
	}

	var sql []string
	if where != "" {
		sql = append(sql, where)
	}

	if len(c.order) > 0 {
		order := make([]string, len(c.order))
		for i, o := range c.order {
			switch {
			case o.Raw:
				order[i] = o.Column
			case o.Desc:
				order[i] = q.QuoteIdentifier(o.Column) + " DESC"
			default:
				order[i] = q.QuoteIdentifier(o.Column) + " ASC"
			}
		}
		sql = append(sql, "ORDER BY "+strings.Join(order, ", "))
	}

	limit, hasLimit := c.Limit()
	offset, hasOffset := c.Offset()
	if hasLimit {
		sql = append(sql, "LIMIT "+strconv.Itoa(limit))
	} else if hasOffset && noLimit != "" {
		sql = append(sql, "LIMIT "+noLimit)
	}
	if hasOffset {
		sql = append(sql, "OFFSET "+strconv.Itoa(offset))
	}

	return strings.Join(sql, " "), args, nil
}

// placeholders returns n comma separated placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat(PLACEHOLDER+", ", n), ", ")
}

// expand a slice or array into single values. []byte and scalars are one value.
func expand(v interface{}) []interface{} {
	if v == nil {
		return nil
	}
	if _, ok := v.([]byte); ok {
		return []interface{}{v}
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []interface{}{v}
	}
	values := make([]interface{}, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		values[i] = rv.Index(i).Interface()
	}
	return values
}

// ClauseManipulation checks that the placeholders fit the arguments and expands slice arguments.
// Placeholders inside quoted string literals are ignored.
//		"id IN (?)", []int{1,2} => "id IN (?, ?)", 1, 2
func ClauseManipulation(clause string, args []interface{}) (string, []interface{}, error) {
	clause = strings.TrimSpace(clause)

	parts := splitPlaceholders(clause)
	if count := len(parts) - 1; count != len(args) {
		return "", nil, fmt.Errorf("%w: %v placeholder(%d) arguments(%d)", ErrPlaceholderMismatch, clause, count, len(args))
	}
	if len(args) == 0 {
		return clause, nil, nil
	}

	var sb strings.Builder
	var newArgs []interface{}
	for i, arg := range args {
		sb.WriteString(parts[i])
		values := expand(arg)
		if arg != nil && len(values) == 0 {
			// empty slice, nothing can match.
			sb.WriteString("NULL")
			continue
		}
		if arg == nil {
			values = []interface{}{nil}
		}
		sb.WriteString(placeholders(len(values)))
		newArgs = append(newArgs, values...)
	}
	sb.WriteString(parts[len(parts)-1])

	return sb.String(), newArgs, nil
}

// splitPlaceholders splits the clause at every placeholder outside of a quoted literal.
func splitPlaceholders(clause string) []string {
	var parts []string
	quoted := false
	last := 0
	for i, r := range clause {
		switch {
		case r == '\'':
			quoted = !quoted
		case r == '?' && !quoted:
			parts = append(parts, clause[last:i])
			last = i + 1
		}
	}
	return append(parts, clause[last:])
}
