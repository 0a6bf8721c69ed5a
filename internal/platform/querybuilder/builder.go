package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// Condition renders one predicate of a WHERE clause. Conditions are joined
// with AND.
type Condition func(*statement)

func Eq(column string, value any) Condition {
	return func(s *statement) {
		s.write(column, " = ")
		s.bind(value)
	}
}

func IsNull(column string) Condition {
	return func(s *statement) {
		s.write(column, " IS NULL")
	}
}

// Expr binds args to the '?' markers of a raw predicate, e.g.
// Expr("card_id = ANY(?)", pq.StringArray(ids)).
func Expr(expr string, args ...any) Condition {
	return func(s *statement) {
		s.expand(expr, args)
	}
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = strings.TrimSpace(table)
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

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	switch {
	case len(b.columns) == 0:
		return "", nil, fmt.Errorf("select: no columns")
	case b.table == "":
		return "", nil, fmt.Errorf("select: no table")
	}

	s := newStatement(len(b.where))
	s.write("SELECT ", strings.Join(b.columns, ", "), " FROM ", b.table)
	s.where(b.where)
	s.list("ORDER BY", b.orderBy)
	return s.build()
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: strings.TrimSpace(table)}
}

// InsertModel builds a single-row insert from the exported db-tagged fields
// of model. suffix is appended as-is, typically an ON CONFLICT clause.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	columns, values, err := taggedColumns(model)
	if err != nil {
		return "", nil, fmt.Errorf("insert %s: %w", table, err)
	}
	return InsertInto(table).Columns(columns...).Values(values...).Suffix(suffix).ToSQL()
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	switch {
	case b.table == "":
		return "", nil, fmt.Errorf("insert: no table")
	case len(b.columns) == 0:
		return "", nil, fmt.Errorf("insert %s: no columns", b.table)
	case len(b.rows) == 0:
		return "", nil, fmt.Errorf("insert %s: no values", b.table)
	}

	s := newStatement(len(b.rows) * len(b.columns))
	s.write("INSERT INTO ", b.table, " (", strings.Join(b.columns, ", "), ") VALUES ")
	for r, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert %s: row %d has %d values for %d columns", b.table, r, len(row), len(b.columns))
		}
		if r > 0 {
			s.write(", ")
		}
		s.write("(")
		for c, value := range row {
			if c > 0 {
				s.write(", ")
			}
			s.bind(value)
		}
		s.write(")")
	}
	s.suffix(b.suffix)
	return s.build()
}

type assignment struct {
	column string
	value  any
	expr   string
	raw    bool
}

type UpdateBuilder struct {
	table  string
	sets   []assignment
	where  []Condition
	suffix string
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: strings.TrimSpace(table)}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, value: value})
	return b
}

// SetExpr assigns a raw SQL expression such as "version + 1". '?' markers
// in expr are bound to args.
func (b *UpdateBuilder) SetExpr(column, expr string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, expr: expr, value: args, raw: true})
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
	switch {
	case b.table == "":
		return "", nil, fmt.Errorf("update: no table")
	case len(b.sets) == 0:
		return "", nil, fmt.Errorf("update %s: nothing to set", b.table)
	}

	s := newStatement(len(b.sets) + len(b.where))
	s.write("UPDATE ", b.table, " SET ")
	for i, set := range b.sets {
		if i > 0 {
			s.write(", ")
		}
		s.write(set.column, " = ")
		if set.raw {
			args, _ := set.value.([]any)
			s.expand(set.expr, args)
			continue
		}
		s.bind(set.value)
	}
	s.where(b.where)
	s.suffix(b.suffix)
	return s.build()
}

type DeleteBuilder struct {
	table string
	where []Condition
}

func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: strings.TrimSpace(table)}
}

func (b *DeleteBuilder) Where(conditions ...Condition) *DeleteBuilder {
	b.where = append(b.where, conditions...)
	return b
}

// ToSQL refuses to build an unconditional delete.
func (b *DeleteBuilder) ToSQL() (string, []any, error) {
	switch {
	case b.table == "":
		return "", nil, fmt.Errorf("delete: no table")
	case len(b.where) == 0:
		return "", nil, fmt.Errorf("delete %s: no conditions", b.table)
	}

	s := newStatement(len(b.where))
	s.write("DELETE FROM ", b.table)
	s.where(b.where)
	return s.build()
}

func taggedColumns(model any) ([]string, []any, error) {
	v := reflect.ValueOf(model)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil, fmt.Errorf("nil model")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model is %s, not a struct", v.Kind())
	}

	var (
		columns []string
		values  []any
	)
	for _, field := range reflect.VisibleFields(v.Type()) {
		if !field.IsExported() || field.Anonymous {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" {
			continue
		}
		columns = append(columns, name)
		values = append(values, v.FieldByIndex(field.Index).Interface())
	}
	if len(columns) == 0 {
		return nil, nil, fmt.Errorf("model has no db columns")
	}
	return columns, values, nil
}
