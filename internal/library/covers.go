package library

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pders01/crate/internal/artwork"
	"github.com/pders01/crate/internal/catalog"
	"github.com/pders01/crate/internal/debuglog"
	"github.com/pders01/crate/internal/storage"
	"github.com/pders01/crate/internal/validation"
)

// PlaceholderSVG is the image shown for albums without a usable cover.
//
//go:embed placeholder.svg
var PlaceholderSVG []byte

const placeholderName = "placeholder.svg"

var downloadExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

func badRequest(msg string) error {
	return &catalog.ServiceError{Status: http.StatusBadRequest, Message: msg}
}

func notFound(msg string) error {
	return &catalog.ServiceError{Status: http.StatusNotFound, Message: msg}
}

// secureFilename reduces name to a safe ASCII file name.
func secureFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.TrimLeft(name, "._")
}

// urlExtension picks the image extension from a URL path, defaulting to .jpg.
func urlExtension(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ".jpg"
	}
	ext := strings.ToLower(filepath.Ext(u.Path))
	if downloadExtensions[ext] {
		return ext
	}
	return ".jpg"
}

// SetCover stores a new cover for the album from the upload's source and
// returns the saved cover path.
func (s *Service) SetCover(ctx context.Context, id catalog.AlbumID, upload catalog.UploadRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	album, err := s.store.GetAlbum(id)
	if errors.Is(err, catalog.ErrNotFound) {
		return "", notFound("Album not found")
	}
	if err != nil {
		return "", fmt.Errorf("loading album: %w", err)
	}

	var (
		name string
		data []byte
	)
	switch upload.Strategy {
	case catalog.StrategyFile:
		if upload.File == nil || upload.File.Name == "" {
			return "", badRequest("No file selected")
		}
		base := secureFilename(upload.File.Name)
		if base == "" {
			return "", badRequest("No file selected")
		}
		if len(upload.File.Data) == 0 {
			return "", badRequest("Selected file is empty")
		}
		if int64(len(upload.File.Data)) > s.opts.MaxUploadBytes {
			return "", &catalog.ServiceError{Status: http.StatusRequestEntityTooLarge, Message: "File too large"}
		}
		name = fmt.Sprintf("album_%d_%s", id, base)
		data = upload.File.Data

	case catalog.StrategyURL:
		raw := strings.TrimSpace(upload.URL)
		if raw == "" {
			return "", badRequest("No URL provided")
		}
		normalized, err := s.urlValidator.ValidateAndNormalize(raw)
		if err != nil {
			return "", &catalog.ValidationError{Field: "url", Message: fmt.Sprintf("Invalid URL: %v", err)}
		}
		data, err = s.download(ctx, normalized)
		if err != nil {
			return "", err
		}
		name = fmt.Sprintf("album_%d_downloaded%s", id, urlExtension(normalized))

	case catalog.StrategyAPI:
		data, err = s.lookupArtwork(ctx, album)
		if err != nil {
			return "", err
		}
		name = fmt.Sprintf("album_%d_itunes.jpg", id)

	default:
		return "", badRequest("Invalid source")
	}

	path, err := s.saveCover(name, data)
	if err != nil {
		return "", err
	}
	if err := s.store.SetCoverPath(id, path); err != nil {
		return "", fmt.Errorf("saving cover path: %w", err)
	}
	debuglog.WithFields(map[string]any{
		"album":  id,
		"source": upload.Strategy.String(),
		"path":   path,
	}).Infof("cover updated")
	return path, nil
}

func (s *Service) download(ctx context.Context, rawURL string) ([]byte, error) {
	if s.artwork == nil {
		return nil, errors.New("no downloader configured")
	}
	data, err := s.artwork.Download(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Service) lookupArtwork(ctx context.Context, album *storage.Album) ([]byte, error) {
	if s.artwork == nil {
		return nil, notFound("No artwork provider available")
	}
	art, err := s.artwork.Lookup(ctx, artwork.Query{Artist: album.Artist, Album: album.Title})
	if artwork.IsNotFound(err) {
		return nil, notFound(err.Error())
	}
	if err != nil {
		return nil, err
	}
	return s.download(ctx, art.URL)
}

func (s *Service) saveCover(name string, data []byte) (string, error) {
	if s.opts.CoversDir == "" {
		return "", errors.New("covers directory not configured")
	}
	if err := os.MkdirAll(s.opts.CoversDir, 0o755); err != nil {
		return "", fmt.Errorf("creating covers directory: %w", err)
	}
	dir, err := filepath.Abs(s.opts.CoversDir)
	if err != nil {
		return "", fmt.Errorf("resolving covers directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing cover: %w", err)
	}
	return path, nil
}

// placeholderFile writes the embedded placeholder into the covers directory
// so local viewers can open it, rewriting it only when it differs.
func (s *Service) placeholderFile() (string, error) {
	path := filepath.Join(s.opts.CoversDir, placeholderName)
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, PlaceholderSVG) {
		return filepath.Abs(path)
	}
	return s.saveCover(placeholderName, PlaceholderSVG)
}

// ResolveCover maps a cover reference from a request path to a file on disk.
// Only files inside the music root or the covers directory are served.
func (s *Service) ResolveCover(ref string) (string, bool) {
	if ref == "" || !validation.IsPathSafe(ref) {
		return "", false
	}
	var roots []string
	for _, dir := range []string{s.opts.MusicRoot, s.opts.CoversDir} {
		if dir == "" {
			continue
		}
		if abs, err := filepath.Abs(dir); err == nil {
			roots = append(roots, abs)
		}
	}

	candidates := []string{filepath.Clean(ref)}
	rel := strings.TrimLeft(ref, "/")
	for _, root := range roots {
		candidates = append(candidates, filepath.Join(root, rel))
	}
	for _, c := range candidates {
		if !filepath.IsAbs(c) {
			continue
		}
		inside := false
		for _, root := range roots {
			if within(root, c) {
				inside = true
				break
			}
		}
		if !inside {
			continue
		}
		if info, err := os.Stat(c); err == nil && info.Mode().IsRegular() {
			return c, true
		}
	}
	return "", false
}

// CoverProgress reports one album handled by FetchMissingCovers.
type CoverProgress struct {
	Album *storage.Album
	Path  string
	Err   error
}

// FetchMissingCovers looks up artwork for albums without a cover, pausing
// delay between lookups. limit <= 0 means no limit.
func (s *Service) FetchMissingCovers(ctx context.Context, limit int, delay time.Duration, progress func(CoverProgress)) (found, failed int, err error) {
	albums, err := s.store.GetAllAlbums()
	if err != nil {
		return 0, 0, fmt.Errorf("loading albums: %w", err)
	}

	var missing []*storage.Album
	for _, a := range albums {
		if a.CoverPath == "" {
			missing = append(missing, a)
		}
	}
	if limit > 0 && len(missing) > limit {
		missing = missing[:limit]
	}

	for i, a := range missing {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return found, failed, ctx.Err()
			case <-time.After(delay):
			}
		}
		path, err := s.SetCover(ctx, a.ID, catalog.APIUpload())
		if ctxErr := ctx.Err(); ctxErr != nil {
			return found, failed, ctxErr
		}
		if err != nil {
			failed++
		} else {
			found++
		}
		if progress != nil {
			progress(CoverProgress{Album: a, Path: path, Err: err})
		}
	}
	return found, failed, nil
}
