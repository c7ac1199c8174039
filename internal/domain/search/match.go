// Package search defines semantic search results.
package search

// Match is a ranked semantic search hit, hydrated with current content.
type Match struct {
	ID         int64
	Content    string
	Source     string
	Similarity float64
}
