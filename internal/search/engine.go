package search

import (
	"strings"

	"github.com/pders01/crate/internal/catalog"
	"github.com/pders01/crate/internal/storage"
)

// Engine matches albums by case-insensitive substring over artist, title
// and genre. It keeps no index.
type Engine struct{}

// NewEngine creates a new search engine
func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) Filter(albums []*storage.Album, query string) ([]*storage.Album, error) {
	if strings.TrimSpace(query) == "" {
		return albums, nil
	}
	out := make([]*storage.Album, 0, len(albums))
	for _, a := range albums {
		if catalog.MatchesSearch(a.Summary(), query) {
			out = append(out, a)
		}
	}
	return out, nil
}
