// ABOUTME: Query and history models for the ask pipeline
// ABOUTME: Defines QueryResult, Answer and HistoryEntry structures
package models

import "time"

// QueryResult holds the rows produced by executing a SQL statement
type QueryResult struct {
	SQL     string   `json:"sql"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// RowCount returns the number of result rows
func (r *QueryResult) RowCount() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// Answer is the outcome of one natural-language question
type Answer struct {
	Question string       `json:"question"`
	Context  string       `json:"context"`
	SQL      string       `json:"sql"`
	Result   *QueryResult `json:"result,omitempty"`
}

// HistoryEntry records one ask, successful or not
type HistoryEntry struct {
	ID        string    `json:"id" yaml:"id"`
	Question  string    `json:"question" yaml:"question"`
	Context   string    `json:"context" yaml:"context"`
	SQL       string    `json:"sql" yaml:"sql"`
	RowCount  int       `json:"row_count" yaml:"row_count"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Succeeded reports whether the ask executed without error
func (h HistoryEntry) Succeeded() bool {
	return h.Error == ""
}
