package querybuilder

import (
	"errors"
	"strconv"
	"strings"
)

// writer accumulates SQL text and its positional arguments. Placeholders
// are numbered from the argument count, so nested conditions stay in order.
type writer struct {
	buf  strings.Builder
	args []any
}

func (w *writer) sql(s string) {
	w.buf.WriteString(s)
}

func (w *writer) arg(value any) {
	w.args = append(w.args, value)
	w.buf.WriteString("$" + strconv.Itoa(len(w.args)))
}

// expr writes s, replacing each ? with the next value from values. Extra
// question marks are kept literally.
func (w *writer) expr(s string, values []any) {
	if len(values) == 0 {
		w.sql(s)
		return
	}

	next := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '?' && next < len(values) {
			w.arg(values[next])
			next++
			continue
		}
		w.buf.WriteByte(s[i])
	}
}

func (w *writer) list(prefix string, parts []string) {
	if len(parts) == 0 {
		return
	}
	w.sql(prefix)
	w.sql(strings.Join(parts, ", "))
}

func (w *writer) where(conditions []Condition) {
	if len(conditions) == 0 {
		return
	}
	w.sql(" WHERE ")
	for i, c := range conditions {
		if i > 0 {
			w.sql(" AND ")
		}
		c.write(w)
	}
}

func (w *writer) suffix(s string) {
	if s == "" {
		return
	}
	w.sql(" ")
	w.sql(s)
}

func (w *writer) result() (string, []any, error) {
	return w.buf.String(), w.args, nil
}

type Condition interface {
	write(w *writer)
}

type conditionFunc func(w *writer)

func (f conditionFunc) write(w *writer) { f(w) }

func Eq(column string, value any) Condition {
	return conditionFunc(func(w *writer) {
		w.sql(column + " = ")
		w.arg(value)
	})
}

// EqFold compares case-insensitively.
func EqFold(column string, value string) Condition {
	return conditionFunc(func(w *writer) {
		w.sql("lower(" + column + ") = lower(")
		w.arg(value)
		w.sql(")")
	})
}

// Expr embeds raw SQL with ? placeholders.
func Expr(expr string, args ...any) Condition {
	return conditionFunc(func(w *writer) {
		w.expr(expr, args)
	})
}

// Or joins conditions with OR inside parentheses. An empty Or matches nothing.
func Or(conditions ...Condition) Condition {
	return conditionFunc(func(w *writer) {
		if len(conditions) == 0 {
			w.sql("1=0")
			return
		}
		w.sql("(")
		for i, c := range conditions {
			if i > 0 {
				w.sql(" OR ")
			}
			c.write(w)
		}
		w.sql(")")
	})
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

// Limit of zero or less means no limit.
func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, errors.New("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, errors.New("select table is required")
	}

	var w writer
	w.list("SELECT ", b.columns)
	w.sql(" FROM " + b.table)
	w.where(b.where)
	w.list(" ORDER BY ", b.orderBy)
	if b.limit > 0 {
		w.sql(" LIMIT " + strconv.Itoa(b.limit))
	}

	return w.result()
}

type InsertBuilder struct {
	table   string
	columns []string
	values  []any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.values = append([]any(nil), values...)
	return b
}

// Suffix is appended verbatim, typically ON CONFLICT or RETURNING.
func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(b.table) == "":
		return "", nil, errors.New("insert table is required")
	case len(b.columns) == 0:
		return "", nil, errors.New("insert columns are required")
	case len(b.values) != len(b.columns):
		return "", nil, errors.New("insert needs one value per column")
	}

	var w writer
	w.sql("INSERT INTO " + b.table + " (")
	w.sql(strings.Join(b.columns, ", "))
	w.sql(") VALUES (")
	for i, value := range b.values {
		if i > 0 {
			w.sql(", ")
		}
		w.arg(value)
	}
	w.sql(")")
	w.suffix(b.suffix)

	return w.result()
}

type setClause struct {
	column string
	value  any
	expr   string
	args   []any
}

type UpdateBuilder struct {
	table  string
	sets   []setClause
	where  []Condition
	suffix string
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, setClause{column: column, value: value})
	return b
}

// SetExpr assigns a raw SQL expression such as NOW().
func (b *UpdateBuilder) SetExpr(column, expr string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, setClause{column: column, expr: expr, args: args})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) Suffix(sql string) *UpdateBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, errors.New("update table is required")
	}
	if len(b.sets) == 0 {
		return "", nil, errors.New("update sets are required")
	}

	var w writer
	w.sql("UPDATE " + b.table + " SET ")
	for i, s := range b.sets {
		if i > 0 {
			w.sql(", ")
		}
		w.sql(s.column + " = ")
		if s.expr != "" {
			w.expr(s.expr, s.args)
			continue
		}
		w.arg(s.value)
	}
	w.where(b.where)
	w.suffix(b.suffix)

	return w.result()
}
