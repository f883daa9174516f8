package search

import "github.com/pders01/crate/internal/storage"

// Searcher narrows albums to those matching a free-text query, keeping
// their order.
type Searcher interface {
	Filter(albums []*storage.Album, query string) ([]*storage.Album, error)
}

// Indexer is implemented by searchers backed by their own index. The
// library calls Reindex whenever albums are added or reordered.
type Indexer interface {
	Reindex(albums []*storage.Album)
}

// Counter reports how many albums an index holds.
type Counter interface {
	DocCount() (int, error)
}
