package db

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Filter       string // pre-filter expression, "*" when empty
	Vector       []float32
	K            int
	ReturnFields []string
}

// SortOrder is the direction of a SORTBY clause.
type SortOrder string

const (
	// SortAsc sorts ascending.
	SortAsc SortOrder = "ASC"
	// SortDesc sorts descending.
	SortDesc SortOrder = "DESC"
)

// ListQuery is the input for a filtered, paginated scan over an FT index.
type ListQuery struct {
	IndexName    string
	Query        string // "*" matches everything
	SortBy       string // must be a SORTABLE field; empty means index order
	Order        SortOrder
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
