// ABOUTME: Vector store models
// ABOUTME: Defines VectorEntry and VectorMatch structures
package models

// VectorEntry is one (identifier, embedding, source text) triple
type VectorEntry struct {
	ID        string    `json:"id" yaml:"id"`
	Document  string    `json:"document" yaml:"document"`
	Embedding []float32 `json:"embedding,omitempty" yaml:"-"`
}

// VectorMatch is a stored entry ranked against a query embedding
type VectorMatch struct {
	ID         string  `json:"id"`
	Document   string  `json:"document"`
	Similarity float64 `json:"similarity"`
}
