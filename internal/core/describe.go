// ABOUTME: Turns an introspected schema into vector store documents
// ABOUTME: One descriptor per table, keyed by table name
package core

import "github.com/harper/sqlrag/internal/models"

// Describe returns parallel id and text slices, one per table, in schema order
func Describe(schema models.SchemaDescriptor) (ids, texts []string) {
	ids = make([]string, 0, len(schema))
	texts = make([]string, 0, len(schema))
	for _, table := range schema {
		ids = append(ids, table.Name)
		texts = append(texts, table.Describe())
	}
	return ids, texts
}
