package docindex

import "time"

// Document is a stored document.
type Document struct {
	ID        int64
	Text      string
	Rubrics   string
	CreatedAt time.Time
}

// NewDocument is one item of a batch create.
type NewDocument struct {
	Text    string
	Rubrics string
}

// BatchResult is the outcome of one item in a batch operation.
// Index is the item's position in the request.
type BatchResult struct {
	Index int
	ID    int64 // 0 when a create failed
	OK    bool
	Err   error
}

// SearchPage is one page of search results.
type SearchPage struct {
	Documents []Document
	Total     int
	Page      int
	PageSize  int
	// Unavailable is set when the search index could not answer.
	Unavailable bool
}
