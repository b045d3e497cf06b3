package db

// TextQuery is the input for a free-text match over several fields.
type TextQuery struct {
	IndexName string
	Fields    []string
	Query     string
	Offset    int
	Limit     int
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single hit, in relevance order.
type SearchEntry struct {
	ID    string
	Score float64
}
