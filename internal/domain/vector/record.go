// Package vector describes entries of the similarity index.
package vector

import "time"

// Record is the index entry for one feedback item. Its metadata is a snapshot
// taken at indexing time and may lag the item.
type Record struct {
	ID        int64
	Vector    []float32
	Content   string
	Source    string
	IndexedAt time.Time
}

// Match is one KNN hit. Score is cosine similarity, higher is closer.
type Match struct {
	ID      int64
	Score   float64
	Content string
	Source  string
}

// Document is an item to embed and index.
type Document struct {
	ID      int64
	Content string
	Source  string
}
