// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

// Package query builds parameterized WHERE clauses for the database package.
package query

import (
	"fmt"
	"strings"
	"time"
)

// WhereBuilder collects AND-joined conditions and their arguments.
//
//	wb := query.NewWhereBuilder().
//	    AddEquals("type", "watch").
//	    AddIn("status", []string{"completed", "failed"})
//	where, args := wb.BuildWithPrefix()
//	// WHERE type = ? AND status IN (?, ?)
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

// AddEquals adds "column = ?" unless value is empty.
func (wb *WhereBuilder) AddEquals(column, value string) *WhereBuilder {
	if value == "" {
		return wb
	}
	return wb.AddClause(column+" = ?", value)
}

// AddIn adds "column IN (?, ...)" unless values is empty.
func (wb *WhereBuilder) AddIn(column string, values []string) *WhereBuilder {
	if len(values) == 0 {
		return wb
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		wb.args = append(wb.args, v)
	}
	wb.clauses = append(wb.clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
	return wb
}

// AddSince adds "column >= ?" when since is set.
func (wb *WhereBuilder) AddSince(column string, since *time.Time) *WhereBuilder {
	if since == nil {
		return wb
	}
	return wb.AddClause(column+" >= ?", *since)
}

// Build returns the AND-joined clause without the WHERE keyword, or "1=1"
// when empty.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.clauses) == 0 {
		return "1=1", []any{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix returns the clause with a "WHERE " prefix.
func (wb *WhereBuilder) BuildWithPrefix() (string, []any) {
	clause, args := wb.Build()
	return "WHERE " + clause, args
}

// IsEmpty returns true if no clauses have been added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}
