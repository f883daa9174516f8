package catalog

import "context"

// Service is the remote catalog the client synchronizes with.
type Service interface {
	FetchStats(ctx context.Context) (Stats, error)
	FetchPage(ctx context.Context, req PageRequest) (Page, error)
	ToggleShared(ctx context.Context, id AlbumID) error
	UpdateCover(ctx context.Context, id AlbumID, upload UploadRequest) error
	Rescan(ctx context.Context) (RescanSummary, error)
}

// CoverResolver turns a stored cover reference into something a viewer can
// open. Implemented by services that know where covers are served from.
type CoverResolver interface {
	CoverURL(ref string) string
}
