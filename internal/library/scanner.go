package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pders01/crate/internal/debuglog"
	"github.com/pders01/crate/internal/storage"
	"github.com/pders01/crate/internal/validation"
)

// AudioExtensions mark a directory as an album folder.
var AudioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".m4a":  true,
	".ogg":  true,
	".wav":  true,
	".wma":  true,
	".aac":  true,
}

var coverNames = []string{"cover", "folder", "album", "front", "albumart", "albumartsmall"}

const unknownArtist = "Unknown Artist"

// ScanResult summarizes one pass over the music root.
type ScanResult struct {
	Added   int
	Skipped int
	Errors  int
	New     []*storage.Album
}

// Scanner walks a music root and records every album folder it finds.
type Scanner struct {
	root  string
	store *storage.Store
}

func NewScanner(root string, store *storage.Store) *Scanner {
	return &Scanner{root: root, store: store}
}

// IsAudioFile reports whether name has an audio extension.
func IsAudioFile(name string) bool {
	return AudioExtensions[strings.ToLower(filepath.Ext(name))]
}

// HasAudioFiles reports whether dir directly contains audio files.
func HasAudioFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	return containsAudio(entries)
}

func containsAudio(entries []fs.DirEntry) bool {
	for _, e := range entries {
		if e.Type().IsRegular() && IsAudioFile(e.Name()) {
			return true
		}
	}
	return false
}

// findCover prefers conventional cover file names and falls back to any image.
func findCover(dir string, entries []fs.DirEntry) string {
	files := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			files[strings.ToLower(e.Name())] = e.Name()
		}
	}
	for _, name := range coverNames {
		for _, ext := range validation.ImageExtensions {
			if actual, ok := files[name+ext]; ok {
				return filepath.Join(dir, actual)
			}
		}
	}
	for _, e := range entries {
		if e.Type().IsRegular() && validation.IsImageFile(e.Name()) {
			return filepath.Join(dir, e.Name())
		}
	}
	return ""
}

// Scan adds albums for folders not seen before. Existing folders are left
// alone, so covers set by hand survive a rescan.
func (s *Scanner) Scan(ctx context.Context) (ScanResult, error) {
	var result ScanResult

	root, err := filepath.Abs(s.root)
	if err != nil {
		return result, fmt.Errorf("resolving music root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return result, fmt.Errorf("music root %s is not a directory: %w", root, errors.Join(err, ErrMissingRoot))
	}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			debuglog.Warnf("scan: skipping %s: %v", path, err)
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}

		entries, err := os.ReadDir(path)
		if err != nil || !containsAudio(entries) {
			return nil
		}

		exists, err := s.store.HasFolder(path)
		if err != nil {
			result.Errors++
			debuglog.Errorf("scan: checking %s: %v", path, err)
			return nil
		}
		if exists {
			result.Skipped++
			return nil
		}

		album := describe(root, path, entries)
		if err := s.store.AddAlbum(album); err != nil {
			if errors.Is(err, storage.ErrDuplicateFolder) {
				result.Skipped++
				return nil
			}
			result.Errors++
			debuglog.Errorf("scan: adding %s: %v", path, err)
			return nil
		}
		result.Added++
		result.New = append(result.New, album)
		if result.Added%200 == 0 {
			debuglog.Infof("scan: %d albums added so far", result.Added)
		}
		return nil
	})
	if walkErr != nil {
		return result, fmt.Errorf("scanning %s: %w", root, walkErr)
	}

	debuglog.WithFields(map[string]any{
		"root":    root,
		"added":   result.Added,
		"skipped": result.Skipped,
		"errors":  result.Errors,
	}).Infof("scan complete")
	return result, nil
}

// describe infers artist and genre from the folder layout
// <root>/<genre>/<artist>/<album>.
func describe(root, dir string, entries []fs.DirEntry) *storage.Album {
	album := &storage.Album{
		Title:      filepath.Base(dir),
		Artist:     unknownArtist,
		FolderPath: dir,
		CoverPath:  findCover(dir, entries),
	}
	if dir == root {
		return album
	}
	parent := filepath.Dir(dir)
	album.Artist = filepath.Base(parent)
	if parent != root {
		if grandparent := filepath.Dir(parent); within(root, grandparent) && grandparent != root {
			album.Genre = filepath.Base(grandparent)
		}
	}
	return album
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
