package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/crate/internal/catalog"
)

type countingScanner struct {
	calls atomic.Int32
}

func (s *countingScanner) Rescan(context.Context) (catalog.RescanSummary, error) {
	s.calls.Add(1)
	return catalog.RescanSummary{Added: 1}, nil
}

func startWatcher(t *testing.T, root string, scanner Rescanner) chan catalog.RescanSummary {
	t.Helper()
	scans := make(chan catalog.RescanSummary, 10)
	w, err := New(root, 50*time.Millisecond, scanner,
		WithTick(10*time.Millisecond),
		WithScanHook(func(s catalog.RescanSummary, _ error) { scans <- s }),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return scans
}

func TestWatcher_ScansNewAlbum(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Artist"), 0o755))
	scanner := &countingScanner{}
	scans := startWatcher(t, root, scanner)

	album := filepath.Join(root, "Artist", "Album")
	require.NoError(t, os.MkdirAll(album, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(album, "01.flac"), []byte("x"), 0o644))

	select {
	case s := <-scans:
		assert.Equal(t, 1, s.Added)
	case <-time.After(3 * time.Second):
		t.Fatal("no rescan after adding an album")
	}
}

func TestWatcher_IgnoresNonAudio(t *testing.T) {
	root := t.TempDir()
	scanner := &countingScanner{}
	scans := startWatcher(t, root, scanner)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".cache", "x"), 0o755))

	select {
	case <-scans:
		t.Fatal("unexpected rescan")
	case <-time.After(300 * time.Millisecond):
	}
	assert.Equal(t, int32(0), scanner.calls.Load())
}

func TestNew_MissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), time.Second, &countingScanner{})
	assert.Error(t, err)
}

func TestIsAlbumFolder(t *testing.T) {
	root := t.TempDir()
	direct := filepath.Join(root, "direct")
	nested := filepath.Join(root, "nested", "cd1")
	empty := filepath.Join(root, "empty")
	for _, d := range []string{direct, nested, empty} {
		require.NoError(t, os.MkdirAll(d, 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(direct, "a.mp3"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "a.ogg"), nil, 0o644))

	assert.True(t, isAlbumFolder(direct))
	assert.True(t, isAlbumFolder(filepath.Join(root, "nested")))
	assert.False(t, isAlbumFolder(empty))
}
