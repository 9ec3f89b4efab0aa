// Package option provides typed list-query options: enumerated filter
// operators, or-groups, ordering and offset pagination, applied to a gorm
// statement. It replaces free-form column/operator/value triples.
package option

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Op enumerates the supported filter operators.
type Op string

const (
	OpEq    Op = "eq"
	OpNeq   Op = "neq"
	OpILike Op = "ilike"
	OpGt    Op = "gt"
	OpLt    Op = "lt"
	OpGte   Op = "gte"
	OpLte   Op = "lte"
	OpIn    Op = "in"
)

// Filter is a single column predicate.
type Filter struct {
	Column string
	Op     Op
	Value  any
}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Order is a [column, direction] pair.
type Order struct {
	Column    string
	Direction Direction
}

// Option mutates a gorm statement.
type Option interface {
	Apply(stmt *gorm.DB) *gorm.DB
}

type optionFunc func(stmt *gorm.DB) *gorm.DB

func (f optionFunc) Apply(stmt *gorm.DB) *gorm.DB { return f(stmt) }

// Apply runs all options against the statement in order.
func Apply(stmt *gorm.DB, opts ...Option) *gorm.DB {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		stmt = opt.Apply(stmt)
	}
	return stmt
}

// WithFilter adds a conjunctive predicate.
func WithFilter(f Filter) Option {
	return optionFunc(func(stmt *gorm.DB) *gorm.DB {
		clause, args := render(f, stmt)
		if clause == "" {
			return stmt
		}
		return stmt.Where(clause, args...)
	})
}

// WithFilters adds all predicates conjunctively.
func WithFilters(filters []Filter) Option {
	return optionFunc(func(stmt *gorm.DB) *gorm.DB {
		for _, f := range filters {
			stmt = WithFilter(f).Apply(stmt)
		}
		return stmt
	})
}

// WithOrGroup combines the given predicates disjunctively into one clause.
func WithOrGroup(filters []Filter) Option {
	return optionFunc(func(stmt *gorm.DB) *gorm.DB {
		if len(filters) == 0 {
			return stmt
		}
		clauses := make([]string, 0, len(filters))
		args := make([]any, 0, len(filters))
		for _, f := range filters {
			clause, clauseArgs := render(f, stmt)
			if clause == "" {
				continue
			}
			clauses = append(clauses, clause)
			args = append(args, clauseArgs...)
		}
		if len(clauses) == 0 {
			return stmt
		}
		return stmt.Where(strings.Join(clauses, " OR "), args...)
	})
}

// WithOrder sorts by the pair, falling back to created_at descending.
// The column must appear in allowed; unknown columns fall back too.
func WithOrder(order *Order, allowed map[string]bool) Option {
	return optionFunc(func(stmt *gorm.DB) *gorm.DB {
		column := "created_at"
		direction := Desc
		if order != nil && order.Column != "" && allowed[order.Column] {
			column = order.Column
			if order.Direction == Asc {
				direction = Asc
			}
		}
		return stmt.Order(fmt.Sprintf("%s %s", column, strings.ToUpper(string(direction))))
	})
}

// PageSize is the fixed page size shared by every list endpoint.
const PageSize = 30

// WithPage selects the zero-based page: inclusive row range
// [offset*PageSize, offset*PageSize+PageSize-1].
func WithPage(offset int) Option {
	return optionFunc(func(stmt *gorm.DB) *gorm.DB {
		if offset < 0 {
			offset = 0
		}
		return stmt.Offset(offset * PageSize).Limit(PageSize)
	})
}

// PageRange returns the inclusive row range covered by a zero-based page.
func PageRange(offset int) (from, to int) {
	if offset < 0 {
		offset = 0
	}
	from = offset * PageSize
	to = from + PageSize - 1
	return from, to
}

func render(f Filter, stmt *gorm.DB) (string, []any) {
	column := strings.TrimSpace(f.Column)
	if column == "" {
		return "", nil
	}
	switch f.Op {
	case OpEq:
		return column + " = ?", []any{f.Value}
	case OpNeq:
		return column + " <> ?", []any{f.Value}
	case OpILike:
		return ilikeClause(column, stmt), []any{fmt.Sprintf("%%%v%%", f.Value)}
	case OpGt:
		return column + " > ?", []any{f.Value}
	case OpLt:
		return column + " < ?", []any{f.Value}
	case OpGte:
		return column + " >= ?", []any{f.Value}
	case OpLte:
		return column + " <= ?", []any{f.Value}
	case OpIn:
		return column + " IN ?", []any{f.Value}
	default:
		return "", nil
	}
}

// Postgres has native ILIKE; sqlite and mysql LIKE is already
// case-insensitive for ASCII under default collations.
func ilikeClause(column string, stmt *gorm.DB) string {
	if stmt != nil && stmt.Dialector != nil && stmt.Dialector.Name() == "postgres" {
		return column + " ILIKE ?"
	}
	return column + " LIKE ?"
}
