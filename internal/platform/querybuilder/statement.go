package querybuilder

import (
	"strconv"
	"strings"
)

// statement accumulates SQL text and its positional arguments. Placeholders
// are numbered from the argument count so every clause stays in order.
type statement struct {
	sql  strings.Builder
	args []any
}

func newStatement(capacity int) *statement {
	return &statement{args: make([]any, 0, capacity)}
}

func (s *statement) write(parts ...string) {
	for _, part := range parts {
		s.sql.WriteString(part)
	}
}

func (s *statement) bind(value any) {
	s.args = append(s.args, value)
	s.sql.WriteByte('$')
	s.sql.WriteString(strconv.Itoa(len(s.args)))
}

// expand copies expr, replacing each '?' with the next value. Extra markers
// are written verbatim once the values run out.
func (s *statement) expand(expr string, values []any) {
	if len(values) == 0 {
		s.sql.WriteString(expr)
		return
	}
	for {
		idx := strings.IndexByte(expr, '?')
		if idx < 0 || len(values) == 0 {
			s.sql.WriteString(expr)
			return
		}
		s.sql.WriteString(expr[:idx])
		s.bind(values[0])
		values = values[1:]
		expr = expr[idx+1:]
	}
}

func (s *statement) where(conditions []Condition) {
	for i, cond := range conditions {
		if i == 0 {
			s.write(" WHERE ")
		} else {
			s.write(" AND ")
		}
		cond(s)
	}
}

func (s *statement) list(keyword string, items []string) {
	if len(items) == 0 {
		return
	}
	s.write(" ", keyword, " ", strings.Join(items, ", "))
}

func (s *statement) suffix(raw string) {
	if raw == "" {
		return
	}
	s.write(" ", raw)
}

func (s *statement) build() (string, []any, error) {
	return s.sql.String(), s.args, nil
}
