package state

import "github.com/pders01/crate/internal/catalog"

// Effect is a remote call Reduce wants made. The caller runs it and feeds
// the result back as the matching completion action.
type Effect interface {
	effect()
}

// FetchPage completes with PageLoaded carrying the same Token.
type FetchPage struct {
	Token   uint64
	Request catalog.PageRequest
}

// FetchStats completes with StatsLoaded carrying the same Token.
type FetchStats struct {
	Token uint64
}

// RequestToggle completes with SharedToggled.
type RequestToggle struct {
	ID catalog.AlbumID
}

// RequestCoverUpdate completes with CoverUpdated.
type RequestCoverUpdate struct {
	ID     catalog.AlbumID
	Upload catalog.UploadRequest
}

// RequestRescan completes with RescanCompleted.
type RequestRescan struct{}

func (FetchPage) effect()          {}
func (FetchStats) effect()         {}
func (RequestToggle) effect()      {}
func (RequestCoverUpdate) effect() {}
func (RequestRescan) effect()      {}
