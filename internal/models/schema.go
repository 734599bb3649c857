// ABOUTME: Schema models produced by database introspection
// ABOUTME: Defines TableSchema, SchemaDescriptor and the descriptor text format
package models

import (
	"fmt"
	"strings"
)

// TableSchema is one table and its columns in declaration order
type TableSchema struct {
	Name    string   `json:"name" yaml:"name"`
	Columns []string `json:"columns" yaml:"columns"`
}

// Describe renders the table as the text blob that gets embedded
func (t TableSchema) Describe() string {
	return fmt.Sprintf("table: %s, columns : %s", t.Name, strings.Join(t.Columns, ","))
}

// SchemaDescriptor maps table names to ordered column lists, ordered by table name
type SchemaDescriptor []TableSchema

// Table returns the named table, or false if the schema has no such table
func (s SchemaDescriptor) Table(name string) (TableSchema, bool) {
	for _, t := range s {
		if t.Name == name {
			return t, true
		}
	}
	return TableSchema{}, false
}

// Names returns the table names in order
func (s SchemaDescriptor) Names() []string {
	names := make([]string, len(s))
	for i, t := range s {
		names[i] = t.Name
	}
	return names
}
