package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/crate/internal/catalog"
	"github.com/pders01/crate/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := New(config.ServerConfig{
		BaseURL:     server.URL + "/",
		HTTPTimeout: 5 * time.Second,
		UserAgent:   "crate-test/1.0",
	})
	require.NoError(t, err)
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"http", "http://localhost:5001", false},
		{"https with slash", "https://music.example/", false},
		{"no scheme", "localhost:5001", true},
		{"ftp", "ftp://music.example", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(config.ServerConfig{BaseURL: tt.url})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.False(t, strings.HasSuffix(c.BaseURL(), "/"))
		})
	}
}

func TestClient_FetchPage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/albums", r.URL.Path)
		assert.Equal(t, "crate-test/1.0", r.Header.Get("User-Agent"))
		q := r.URL.Query()
		assert.Equal(t, "3", q.Get("page"))
		assert.Equal(t, "100", q.Get("per_page"))
		assert.Equal(t, "blue", q.Get("search"))
		assert.Equal(t, "shared", q.Get("filter_shared"))
		_, _ = w.Write([]byte(`{"albums":[{"id":7,"artist":"Miles Davis","album":"Kind of Blue","shared":true,"cover_path":"/m/c.jpg"}],"total":201,"page":3,"per_page":100,"total_pages":3}`))
	})

	page, err := c.FetchPage(context.Background(), catalog.Query{Search: "blue", Filter: catalog.FilterShared}.Request(3))
	require.NoError(t, err)
	assert.Equal(t, 201, page.Total)
	assert.Equal(t, 3, page.Number)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Albums, 1)
	assert.Equal(t, catalog.Album{ID: 7, Artist: "Miles Davis", Title: "Kind of Blue", Shared: true, CoverPath: "/m/c.jpg"}, page.Albums[0])
}

func TestClient_FetchPageDefaultFilter(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.False(t, q.Has("search"))
		assert.False(t, q.Has("filter_shared"))
		_, _ = w.Write([]byte(`{"albums":null,"total":0,"page":1,"per_page":100,"total_pages":0}`))
	})

	page, err := c.FetchPage(context.Background(), catalog.DefaultQuery().Request(1))
	require.NoError(t, err)
	assert.NotNil(t, page.Albums)
	assert.Empty(t, page.Albums)
}

func TestClient_FetchStats(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/stats", r.URL.Path)
		_, _ = w.Write([]byte(`{"total_albums":10,"shared_albums":3,"not_shared_albums":7,"albums_with_covers":6,"albums_without_covers":4,"unique_artists":5}`))
	})

	stats, err := c.FetchStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, catalog.Stats{Total: 10, Shared: 3, NotShared: 7, WithCovers: 6, WithoutCovers: 4, DistinctAuthors: 5}, stats)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{"json error", http.StatusNotFound, `{"success":false,"error":"Album not found"}`, 404, "Album not found"},
		{"plain body", http.StatusInternalServerError, `boom`, 500, "service error (HTTP 500)"},
		{"success false on 200", http.StatusOK, `{"success":false,"error":"Invalid source"}`, 200, "Invalid source"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			err := c.ToggleShared(context.Background(), 1)
			var se *catalog.ServiceError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.wantStatus, se.Status)
			assert.Equal(t, tt.wantMsg, catalog.Message(err))
		})
	}
}

func TestClient_ToggleShared(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/albums/42/toggle_shared", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]bool{"success": true})
	})
	require.NoError(t, c.ToggleShared(context.Background(), 42))
	assert.True(t, called)
}

func TestClient_UpdateCover(t *testing.T) {
	tests := []struct {
		name   string
		upload catalog.UploadRequest
		check  func(t *testing.T, r *http.Request)
	}{
		{
			name:   "file",
			upload: catalog.FileUpload("front.png", []byte("png-bytes")),
			check: func(t *testing.T, r *http.Request) {
				assert.Equal(t, "file", r.FormValue("source"))
				f, hdr, err := r.FormFile("file")
				require.NoError(t, err)
				defer f.Close()
				assert.Equal(t, "front.png", hdr.Filename)
				data, err := io.ReadAll(f)
				require.NoError(t, err)
				assert.Equal(t, "png-bytes", string(data))
			},
		},
		{
			name:   "url",
			upload: catalog.URLUpload("https://img.example/a.jpg"),
			check: func(t *testing.T, r *http.Request) {
				assert.Equal(t, "url", r.FormValue("source"))
				assert.Equal(t, "https://img.example/a.jpg", r.FormValue("url"))
			},
		},
		{
			name:   "api",
			upload: catalog.APIUpload(),
			check: func(t *testing.T, r *http.Request) {
				assert.Equal(t, "api", r.FormValue("source"))
				assert.Empty(t, r.FormValue("url"))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/albums/5/update_cover", r.URL.Path)
				require.NoError(t, r.ParseMultipartForm(1<<20))
				tt.check(t, r)
				writeJSON(t, w, http.StatusOK, map[string]any{"success": true, "cover_path": "/covers/x.jpg"})
			})
			require.NoError(t, c.UpdateCover(context.Background(), 5, tt.upload))
		})
	}
}

func TestClient_Rescan(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/rescan", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true, "added": 3, "skipped": 9})
	})
	summary, err := c.Rescan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, catalog.RescanSummary{Added: 3, Skipped: 9}, summary)
}

func TestClient_Timeouts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success": true, "added": 1, "skipped": 0}`)
	}))
	t.Cleanup(server.Close)

	c, err := New(config.ServerConfig{BaseURL: server.URL, HTTPTimeout: 100 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.FetchStats(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded, "ordinary calls are bounded by the timeout")

	summary, err := c.Rescan(context.Background())
	require.NoError(t, err, "a slow rescan outlives the request timeout")
	assert.Equal(t, 1, summary.Added)
}

func TestClient_ContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.FetchStats(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_CoverURL(t *testing.T) {
	c, err := New(config.ServerConfig{BaseURL: "http://music.local:5001"})
	require.NoError(t, err)

	tests := []struct {
		ref  string
		want string
	}{
		{"", ""},
		{"https://img.example/a.jpg", "https://img.example/a.jpg"},
		{catalog.PlaceholderCover, "http://music.local:5001/static/placeholder.svg"},
		{"/srv/music/A B/cover.jpg", "http://music.local:5001/cover/srv/music/A%20B/cover.jpg"},
		{"album_1_x.jpg", "http://music.local:5001/cover/album_1_x.jpg"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.CoverURL(tt.ref), tt.ref)
	}
}
