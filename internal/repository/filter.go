package repository

import (
	"fmt"
	"strings"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

// Page bounds a list query.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) bounds() (int, int) {
	limit := p.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// clauseBuilder accumulates positional WHERE clauses.
type clauseBuilder struct {
	clauses []string
	args    []any
}

func newClauseBuilder() *clauseBuilder {
	return &clauseBuilder{clauses: []string{"1=1"}}
}

func (b *clauseBuilder) eq(column string, value any) {
	b.args = append(b.args, value)
	b.clauses = append(b.clauses, fmt.Sprintf("%s=$%d", column, len(b.args)))
}

func (b *clauseBuilder) in(column string, values []string) {
	if len(values) == 0 {
		return
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		b.args = append(b.args, v)
		placeholders[i] = fmt.Sprintf("$%d", len(b.args))
	}
	b.clauses = append(b.clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ",")))
}

// search matches term case-insensitively against any of columns.
func (b *clauseBuilder) search(term string, columns ...string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}
	b.args = append(b.args, "%"+strings.ToLower(term)+"%")
	placeholder := fmt.Sprintf("$%d", len(b.args))
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = fmt.Sprintf("LOWER(%s) LIKE %s", col, placeholder)
	}
	b.clauses = append(b.clauses, "("+strings.Join(parts, " OR ")+")")
}

func (b *clauseBuilder) where() string {
	return strings.Join(b.clauses, " AND ")
}
