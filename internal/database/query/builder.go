// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

// Package query builds parameterized SQL WHERE clauses for the database
// package. Values always travel as arguments, never as SQL text.
package query

import (
	"fmt"
	"strings"
)

// WhereBuilder collects conditions joined with AND.
//
//	wb := query.NewWhereBuilder()
//	wb.AddIf(visibleOnly, "is_visible")
//	wb.AddEqualFold("city", f.City)
//	wb.AddContainsAny([]string{"name", "description"}, f.Search)
//	where, args := wb.BuildWithPrefix()
//	// " WHERE is_visible AND lower(city) = lower(?) AND (name ILIKE ? OR description ILIKE ?)"
type WhereBuilder struct {
	clauses []string
	args    []any
}

// NewWhereBuilder creates an empty builder.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{}
}

// AddClause adds a raw condition with its arguments.
func (wb *WhereBuilder) AddClause(clause string, args ...any) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddIf adds the condition only when ok is true.
func (wb *WhereBuilder) AddIf(ok bool, clause string, args ...any) *WhereBuilder {
	if ok {
		wb.AddClause(clause, args...)
	}
	return wb
}

// AddEqual adds "column = ?" unless value is empty.
func (wb *WhereBuilder) AddEqual(column, value string) *WhereBuilder {
	return wb.AddIf(value != "", column+" = ?", value)
}

// AddEqualFold adds a case-insensitive equality unless value is empty.
func (wb *WhereBuilder) AddEqualFold(column, value string) *WhereBuilder {
	return wb.AddIf(value != "", fmt.Sprintf("lower(%s) = lower(?)", column), value)
}

// AddContainsAny matches term as a case-insensitive substring of any of
// the columns. An empty term adds nothing.
func (wb *WhereBuilder) AddContainsAny(columns []string, term string) *WhereBuilder {
	if term == "" || len(columns) == 0 {
		return wb
	}
	pattern := "%" + escapeLike(term) + "%"
	parts := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		parts[i] = c + ` ILIKE ? ESCAPE '\'`
		args[i] = pattern
	}
	return wb.AddClause("("+strings.Join(parts, " OR ")+")", args...)
}

// AddJSONArrayContains matches rows whose JSON string array column holds
// value. An empty value adds nothing.
func (wb *WhereBuilder) AddJSONArrayContains(column, value string) *WhereBuilder {
	if value == "" {
		return wb
	}
	return wb.AddClause(column+` LIKE ? ESCAPE '\'`, `%"`+escapeLike(value)+`"%`)
}

// AddIn adds "column IN (?, ...)". An empty list adds nothing.
func (wb *WhereBuilder) AddIn(column string, values []string) *WhereBuilder {
	if len(values) == 0 {
		return wb
	}
	placeholders := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		args[i] = v
	}
	return wb.AddClause(fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")), args...)
}

// Build joins the conditions with AND. With no conditions it returns "1=1".
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.clauses) == 0 {
		return "1=1", nil
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix returns " WHERE <conditions>", or "" when there are none,
// ready to append to a FROM clause.
func (wb *WhereBuilder) BuildWithPrefix() (string, []any) {
	if len(wb.clauses) == 0 {
		return "", nil
	}
	where, args := wb.Build()
	return " WHERE " + where, args
}

// Count returns the number of conditions.
func (wb *WhereBuilder) Count() int {
	return len(wb.clauses)
}

// IsEmpty reports whether no condition was added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
