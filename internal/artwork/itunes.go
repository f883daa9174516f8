package artwork

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// DefaultITunesEndpoint is the public iTunes Search API.
const DefaultITunesEndpoint = "https://itunes.apple.com/search"

// ITunesProvider resolves covers through the iTunes Search API.
type ITunesProvider struct {
	Endpoint  string
	UserAgent string
}

func NewITunesProvider(endpoint string) *ITunesProvider {
	if endpoint == "" {
		endpoint = DefaultITunesEndpoint
	}
	return &ITunesProvider{Endpoint: endpoint}
}

func (p *ITunesProvider) Name() string { return "itunes" }

func (p *ITunesProvider) Priority() int { return 50 }

func (p *ITunesProvider) CanHandle(q Query) bool {
	return strings.TrimSpace(q.Artist) != "" || strings.TrimSpace(q.Album) != ""
}

type itunesResponse struct {
	ResultCount int `json:"resultCount"`
	Results     []struct {
		ArtworkURL100 string `json:"artworkUrl100"`
	} `json:"results"`
}

func (p *ITunesProvider) Lookup(ctx context.Context, q Query, client *http.Client) (*Artwork, error) {
	params := url.Values{}
	params.Set("term", q.Term())
	params.Set("media", "music")
	params.Set("entity", "album")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searching iTunes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("searching iTunes: HTTP %d", resp.StatusCode)
	}

	var body itunesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding iTunes response: %w", err)
	}
	if body.ResultCount == 0 || len(body.Results) == 0 {
		return nil, &NotFoundError{Provider: p.Name(), Reason: "No cover found on iTunes"}
	}

	artworkURL := body.Results[0].ArtworkURL100
	if artworkURL == "" {
		return nil, &NotFoundError{Provider: p.Name(), Reason: "No artwork URL found on iTunes"}
	}

	return &Artwork{
		URL:      strings.Replace(artworkURL, "100x100", "600x600", 1),
		Provider: p.Name(),
	}, nil
}
