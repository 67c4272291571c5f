// Package query builds parameterized SQL for list and lookup operations.
// Column names come from a ProjectionMap declared in code; caller-supplied
// values are always bound as arguments, never interpolated.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps view names (the names exposed to API callers) to
// qualified SQL expressions for a single table.
type ProjectionMap struct {
	schema  string
	table   string
	alias   string
	columns []string
	lookup  map[string]string
}

// NewProjectionMap creates a projection for schema.table with the given alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema:  schema,
		table:   table,
		alias:   alias,
		columns: make([]string, 0),
		lookup:  make(map[string]string),
	}
}

// Project adds a selected column and registers it under viewName.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	col := fmt.Sprintf("%s.%s", p.alias, column)
	p.columns = append(p.columns, col)
	p.lookup[viewName] = col
	return p
}

// ProjectJSON registers a text lookup into a JSONB column under viewName.
// The key is not added to the select list; it is available for filtering
// and ordering only.
func (p *ProjectionMap) ProjectJSON(column, key, viewName string) *ProjectionMap {
	escaped := strings.ReplaceAll(key, "'", "''")
	p.lookup[viewName] = fmt.Sprintf("%s.%s->>'%s'", p.alias, column, escaped)
	return p
}

// Alias returns the table alias.
func (p *ProjectionMap) Alias() string {
	return p.alias
}

// Table returns the qualified table reference with alias.
func (p *ProjectionMap) Table() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// Column resolves a view name. Unknown names are returned unchanged.
func (p *ProjectionMap) Column(viewName string) string {
	if col, ok := p.lookup[viewName]; ok {
		return col
	}
	return viewName
}

// Has reports whether viewName is registered.
func (p *ProjectionMap) Has(viewName string) bool {
	_, ok := p.lookup[viewName]
	return ok
}

// Columns returns the comma-separated select list.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.columns, ", ")
}

// ColumnList returns the select list as a slice.
func (p *ProjectionMap) ColumnList() []string {
	out := make([]string, len(p.columns))
	copy(out, p.columns)
	return out
}
