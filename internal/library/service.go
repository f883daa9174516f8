// Package library serves the album catalog from local storage: it pages and
// searches albums, keeps covers on disk and rescans the music root.
package library

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pders01/crate/internal/artwork"
	"github.com/pders01/crate/internal/catalog"
	"github.com/pders01/crate/internal/debuglog"
	"github.com/pders01/crate/internal/search"
	"github.com/pders01/crate/internal/storage"
	"github.com/pders01/crate/internal/validation"
)

// ErrMissingRoot is returned when the music root does not exist.
var ErrMissingRoot = errors.New("music root not found")

// MaxPerPage caps the page size a caller may ask for.
const MaxPerPage = 500

type Options struct {
	MusicRoot      string
	CoversDir      string
	MaxUploadBytes int64
}

type Service struct {
	store        *storage.Store
	searcher     search.Searcher
	artwork      *artwork.Registry
	urlValidator *validation.CoverURLValidator
	opts         Options

	scanMu sync.Mutex
	rngMu  sync.Mutex
	rng    *rand.Rand
}

func NewService(store *storage.Store, searcher search.Searcher, registry *artwork.Registry, opts Options) *Service {
	if searcher == nil {
		searcher = search.NewEngine()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 16 * 1024 * 1024
	}
	seed := uint64(time.Now().UnixNano())
	return &Service{
		store:        store,
		searcher:     searcher,
		artwork:      registry,
		urlValidator: validation.NewCoverURLValidator(),
		opts:         opts,
		rng:          rand.New(rand.NewPCG(seed, seed>>1)),
	}
}

// SetPermissiveValidation allows cover URLs on localhost and private networks.
func (s *Service) SetPermissiveValidation(permissive bool) {
	if permissive {
		s.urlValidator = validation.NewPermissiveCoverURLValidator()
	} else {
		s.urlValidator = validation.NewCoverURLValidator()
	}
}

// SetSeed makes shuffling deterministic.
func (s *Service) SetSeed(seed uint64) {
	s.rngMu.Lock()
	s.rng = rand.New(rand.NewPCG(seed, seed))
	s.rngMu.Unlock()
}

func (s *Service) MusicRoot() string { return s.opts.MusicRoot }

func (s *Service) CoversDir() string { return s.opts.CoversDir }

func (s *Service) FetchStats(ctx context.Context) (catalog.Stats, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Stats{}, err
	}
	albums, err := s.store.GetAllAlbums()
	if err != nil {
		return catalog.Stats{}, fmt.Errorf("loading albums: %w", err)
	}
	return computeStats(albums), nil
}

func computeStats(albums []*storage.Album) catalog.Stats {
	var st catalog.Stats
	artists := make(map[string]struct{})
	for _, a := range albums {
		st.Total++
		artists[a.Artist] = struct{}{}
		if a.Shared {
			st.Shared++
		}
		if a.CoverPath != "" {
			st.WithCovers++
		}
	}
	st.DistinctAuthors = len(artists)
	st.NotShared = st.Total - st.Shared
	st.WithoutCovers = st.Total - st.WithCovers
	return st
}

// FetchPage returns one page of albums in display order, narrowed by the
// search text and the shared filter.
func (s *Service) FetchPage(ctx context.Context, req catalog.PageRequest) (catalog.Page, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Page{}, err
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 {
		req.PerPage = catalog.PageSize
	}
	if req.PerPage > MaxPerPage {
		req.PerPage = MaxPerPage
	}

	albums, err := s.store.GetAllAlbums()
	if err != nil {
		return catalog.Page{}, fmt.Errorf("loading albums: %w", err)
	}
	if strings.TrimSpace(req.Search) != "" {
		albums, err = s.searcher.Filter(albums, req.Search)
		if err != nil {
			return catalog.Page{}, fmt.Errorf("searching albums: %w", err)
		}
	}

	matched := make([]catalog.Album, 0, len(albums))
	for _, a := range albums {
		summary := a.Summary()
		if req.Filter.Matches(summary) {
			matched = append(matched, summary)
		}
	}

	total := len(matched)
	page := catalog.Page{
		Albums:     []catalog.Album{},
		Total:      total,
		Number:     req.Page,
		PerPage:    req.PerPage,
		TotalPages: (total + req.PerPage - 1) / req.PerPage,
	}
	start := (req.Page - 1) * req.PerPage
	if start < total {
		end := min(start+req.PerPage, total)
		page.Albums = matched[start:end]
	}
	return page, nil
}

func (s *Service) ToggleShared(ctx context.Context, id catalog.AlbumID) error {
	_, err := s.SetShared(ctx, id)
	return err
}

// SetShared flips the shared flag and returns the new value.
func (s *Service) SetShared(ctx context.Context, id catalog.AlbumID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	shared, err := s.store.ToggleShared(id)
	if errors.Is(err, catalog.ErrNotFound) {
		return false, &catalog.ServiceError{Status: http.StatusNotFound, Message: "Album not found"}
	}
	if err != nil {
		return false, fmt.Errorf("toggling shared: %w", err)
	}
	debuglog.Debugf("album %d shared=%t", id, shared)
	return shared, nil
}

func (s *Service) UpdateCover(ctx context.Context, id catalog.AlbumID, upload catalog.UploadRequest) error {
	_, err := s.SetCover(ctx, id, upload)
	return err
}

// Rescan scans the music root for new album folders and reshuffles the
// display order when any were added. Concurrent calls run one at a time.
func (s *Service) Rescan(ctx context.Context) (catalog.RescanSummary, error) {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	result, err := NewScanner(s.opts.MusicRoot, s.store).Scan(ctx)
	if err != nil {
		return catalog.RescanSummary{}, fmt.Errorf("%w: %w", catalog.ErrRescanFailed, err)
	}
	if result.Added > 0 {
		if err := s.Shuffle(); err != nil {
			return catalog.RescanSummary{}, fmt.Errorf("%w: %w", catalog.ErrRescanFailed, err)
		}
	}
	return catalog.RescanSummary{Added: result.Added, Skipped: result.Skipped}, nil
}

// Shuffle rewrites the display order so that albums by the same artist are
// spread apart, then refreshes the search index.
func (s *Service) Shuffle() error {
	albums, err := s.store.GetAllAlbums()
	if err != nil {
		return fmt.Errorf("loading albums: %w", err)
	}

	s.rngMu.Lock()
	ordered := arrange(albums, s.rng)
	s.rngMu.Unlock()

	order := make(map[catalog.AlbumID]int, len(ordered))
	for i, a := range ordered {
		order[a.ID] = i
		a.DisplayOrder = i
	}
	if err := s.store.SetDisplayOrder(order); err != nil {
		return fmt.Errorf("saving display order: %w", err)
	}
	s.notifySearch(ordered)
	return nil
}

func (s *Service) notifySearch(albums []*storage.Album) {
	if l, ok := s.searcher.(search.Indexer); ok {
		l.Reindex(albums)
	}
}

// CoverURL resolves a stored cover reference to a local file path. The
// placeholder resolves to a copy of the embedded image in the covers
// directory.
func (s *Service) CoverURL(ref string) string {
	if ref == catalog.PlaceholderCover {
		path, err := s.placeholderFile()
		if err != nil {
			debuglog.Warnf("writing placeholder cover: %v", err)
			return ref
		}
		return path
	}
	if ref == "" || filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(s.opts.CoversDir, ref)
}
