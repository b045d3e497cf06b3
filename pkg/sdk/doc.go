// Package docindex embeds the docindex document store in a Go program.
//
// Documents live in SQLite. Every committed create, update or delete is
// mirrored into a full-text search index: Redis with the search module, or
// an embedded bleve index (the default, kept in memory unless a data
// directory is given).
//
//	client, _ := docindex.New(ctx,
//	    docindex.WithSQLite("data/docs.db"),
//	    docindex.WithBleve("data/index"),
//	)
//	defer client.Close()
//
//	doc, _ := client.Documents().Create(ctx, "alpha beta", "news")
//	page, _ := client.Search().Query(ctx, "alpha", 1, 20)
//
// Search results are ordered by relevance; documents with equal relevance
// come newest first. When the index cannot answer, SearchPage.Unavailable
// is set instead of returning an error.
package docindex
