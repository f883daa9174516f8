// Package artwork looks up album cover images from online sources.
package artwork

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

// ErrNotFound matches any lookup that completed but found no artwork.
var ErrNotFound = errors.New("artwork not found")

// NotFoundError is returned by providers when a lookup finds nothing usable.
type NotFoundError struct {
	Provider string
	Reason   string
}

func (e *NotFoundError) Error() string { return e.Reason }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Query identifies the album to look up.
type Query struct {
	Artist string
	Album  string
}

// Term is the free-text search term for q.
func (q Query) Term() string {
	return q.Artist + " " + q.Album
}

// Artwork is a resolved remote image.
type Artwork struct {
	URL      string
	Provider string
}

// Provider defines the interface cover sources must implement
type Provider interface {
	// Name returns the provider name for identification
	Name() string

	// CanHandle reports whether the provider can look up q at all
	CanHandle(q Query) bool

	// Lookup resolves q to an image URL
	Lookup(ctx context.Context, q Query, client *http.Client) (*Artwork, error)

	// Priority returns the priority of this provider (higher = tried first)
	Priority() int
}

// Registry manages all registered providers
type Registry struct {
	providers []Provider
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// NewRegistry creates a new provider registry
func NewRegistry(timeout time.Duration) *Registry {
	return &Registry{
		providers: make([]Provider, 0),
		client: &http.Client{
			Timeout: timeout,
		},
		maxBytes: 16 << 20,
	}
}

// SetUserAgent sets the User-Agent sent with lookups and downloads.
func (r *Registry) SetUserAgent(ua string) { r.userAgent = ua }

// SetMaxBytes caps downloaded image size.
func (r *Registry) SetMaxBytes(n int64) { r.maxBytes = n }

// Register adds a provider to the registry
func (r *Registry) Register(p Provider) {
	r.providers = append(r.providers, p)
}

// candidates returns providers able to handle q, highest priority first.
func (r *Registry) candidates(q Query) []Provider {
	var out []Provider
	for _, p := range r.providers {
		if p.CanHandle(q) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority() > out[j].Priority() })
	return out
}

// FindProvider returns the highest priority provider that can handle q.
func (r *Registry) FindProvider(q Query) Provider {
	if c := r.candidates(q); len(c) > 0 {
		return c[0]
	}
	return nil
}

// Lookup asks providers in priority order until one finds artwork. A
// not-found answer moves on to the next provider; any other error stops.
func (r *Registry) Lookup(ctx context.Context, q Query) (*Artwork, error) {
	candidates := r.candidates(q)
	if len(candidates) == 0 {
		return nil, &NotFoundError{Reason: "No artwork provider available"}
	}

	var lastErr error
	for _, p := range candidates {
		art, err := p.Lookup(ctx, q, r.client)
		if err == nil {
			return art, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%s lookup: %w", p.Name(), err)
		}
		lastErr = err
	}
	return nil, lastErr
}

// Download fetches an image URL.
func (r *Registry) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("downloading image: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if int64(len(data)) > r.maxBytes {
		return nil, fmt.Errorf("image larger than %d bytes", r.maxBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("downloaded image is empty")
	}
	return data, nil
}

// ListProviders returns all registered providers
func (r *Registry) ListProviders() []Provider {
	return append([]Provider(nil), r.providers...)
}

// IsNotFound reports whether err means no artwork exists.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
