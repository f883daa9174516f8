package artwork

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	name     string
	priority int
	lookup   func(context.Context, Query) (*Artwork, error)
	calls    int
}

func (p *mockProvider) Name() string          { return p.name }
func (p *mockProvider) Priority() int         { return p.priority }
func (p *mockProvider) CanHandle(_ Query) bool { return true }

func (p *mockProvider) Lookup(ctx context.Context, q Query, _ *http.Client) (*Artwork, error) {
	p.calls++
	if p.lookup != nil {
		return p.lookup(ctx, q)
	}
	return &Artwork{URL: "https://img/" + p.name, Provider: p.name}, nil
}

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry(5 * time.Second)

	assert.NotNil(t, registry)
	assert.Empty(t, registry.ListProviders())
	assert.Nil(t, registry.FindProvider(Query{Artist: "x"}))
}

func TestRegistry_FindProviderByPriority(t *testing.T) {
	registry := NewRegistry(time.Second)
	low := &mockProvider{name: "low", priority: 10}
	high := &mockProvider{name: "high", priority: 90}
	registry.Register(low)
	registry.Register(high)

	assert.Equal(t, high, registry.FindProvider(Query{Artist: "a"}))
	assert.Len(t, registry.ListProviders(), 2)
}

func TestRegistry_LookupFallsThroughNotFound(t *testing.T) {
	registry := NewRegistry(time.Second)
	first := &mockProvider{name: "first", priority: 90, lookup: func(context.Context, Query) (*Artwork, error) {
		return nil, &NotFoundError{Provider: "first", Reason: "nothing"}
	}}
	second := &mockProvider{name: "second", priority: 10}
	registry.Register(first)
	registry.Register(second)

	art, err := registry.Lookup(context.Background(), Query{Artist: "a", Album: "b"})
	require.NoError(t, err)
	assert.Equal(t, "second", art.Provider)
	assert.Equal(t, 1, first.calls)
}

func TestRegistry_LookupStopsOnHardError(t *testing.T) {
	registry := NewRegistry(time.Second)
	broken := &mockProvider{name: "broken", priority: 90, lookup: func(context.Context, Query) (*Artwork, error) {
		return nil, errors.New("connection reset")
	}}
	other := &mockProvider{name: "other", priority: 10}
	registry.Register(broken)
	registry.Register(other)

	_, err := registry.Lookup(context.Background(), Query{Artist: "a"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, 0, other.calls)
}

func TestRegistry_LookupWithoutProviders(t *testing.T) {
	_, err := NewRegistry(time.Second).Lookup(context.Background(), Query{Artist: "a"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_Download(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.jpg":
			assert.Equal(t, "crate-test", r.Header.Get("User-Agent"))
			_, _ = w.Write([]byte("jpegdata"))
		case "/big.jpg":
			_, _ = w.Write(make([]byte, 64))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	registry := NewRegistry(time.Second)
	registry.SetUserAgent("crate-test")
	registry.SetMaxBytes(32)

	data, err := registry.Download(context.Background(), server.URL+"/ok.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpegdata"), data)

	_, err = registry.Download(context.Background(), server.URL+"/big.jpg")
	assert.Error(t, err)

	_, err = registry.Download(context.Background(), server.URL+"/missing.jpg")
	assert.Error(t, err)
}
