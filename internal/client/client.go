// Package client talks to a crate server over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pders01/crate/internal/catalog"
	"github.com/pders01/crate/internal/config"
)

const (
	defaultUserAgent = "crate/1.0 (album catalog; github.com/pders01/crate)"
	defaultTimeout   = 30 * time.Second
	maxErrorBody     = 64 * 1024
)

// Client bounds each call by its timeout unless the caller's context
// already carries a deadline. Rescan is never bounded: a library walk can
// outlast any request timeout.
type Client struct {
	baseURL   string
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// New builds a client for the server at cfg.BaseURL.
func New(cfg config.ServerConfig) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server URL must use http or https: %q", cfg.BaseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("server URL has no host: %q", cfg.BaseURL)
	}

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return &Client{
		baseURL:   base,
		client:    &http.Client{},
		timeout:   timeout,
		userAgent: ua,
	}, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

type errorBody struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.send(ctx, method, path, body, contentType, out)
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &catalog.ServiceError{Status: resp.StatusCode}
		var eb errorBody
		if len(data) <= maxErrorBody && json.Unmarshal(data, &eb) == nil {
			se.Message = eb.Error
		}
		return se
	}

	var eb errorBody
	if json.Unmarshal(data, &eb) == nil && eb.Success != nil && !*eb.Success {
		return &catalog.ServiceError{Status: resp.StatusCode, Message: eb.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) FetchStats(ctx context.Context) (catalog.Stats, error) {
	var stats catalog.Stats
	err := c.do(ctx, http.MethodGet, "/api/stats", nil, "", &stats)
	return stats, err
}

func (c *Client) FetchPage(ctx context.Context, req catalog.PageRequest) (catalog.Page, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(req.Page))
	perPage := req.PerPage
	if perPage <= 0 {
		perPage = catalog.PageSize
	}
	params.Set("per_page", strconv.Itoa(perPage))
	if req.Search != "" {
		params.Set("search", req.Search)
	}
	if f := req.Filter.Param(); f != "" {
		params.Set("filter_shared", f)
	}

	var page catalog.Page
	if err := c.do(ctx, http.MethodGet, "/api/albums?"+params.Encode(), nil, "", &page); err != nil {
		return catalog.Page{}, err
	}
	if page.Albums == nil {
		page.Albums = []catalog.Album{}
	}
	return page, nil
}

func (c *Client) ToggleShared(ctx context.Context, id catalog.AlbumID) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/albums/%d/toggle_shared", id), nil, "", nil)
}

// UpdateCover posts the cover as multipart form data with a "source" field
// naming the strategy.
func (c *Client) UpdateCover(ctx context.Context, id catalog.AlbumID, upload catalog.UploadRequest) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("source", upload.Strategy.String()); err != nil {
		return fmt.Errorf("encoding form: %w", err)
	}
	switch upload.Strategy {
	case catalog.StrategyFile:
		if upload.File != nil {
			fw, err := mw.CreateFormFile("file", upload.File.Name)
			if err != nil {
				return fmt.Errorf("encoding form: %w", err)
			}
			if _, err := fw.Write(upload.File.Data); err != nil {
				return fmt.Errorf("encoding form: %w", err)
			}
		}
	case catalog.StrategyURL:
		if err := mw.WriteField("url", upload.URL); err != nil {
			return fmt.Errorf("encoding form: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("encoding form: %w", err)
	}

	path := fmt.Sprintf("/api/albums/%d/update_cover", id)
	return c.do(ctx, http.MethodPost, path, &buf, mw.FormDataContentType(), nil)
}

type rescanResponse struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

func (c *Client) Rescan(ctx context.Context) (catalog.RescanSummary, error) {
	var resp rescanResponse
	if err := c.send(ctx, http.MethodPost, "/api/rescan", nil, "", &resp); err != nil {
		return catalog.RescanSummary{}, err
	}
	return catalog.RescanSummary{Added: resp.Added, Skipped: resp.Skipped}, nil
}

// CoverURL maps a stored cover reference to the URL the server serves it at.
func (c *Client) CoverURL(ref string) string {
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ref
	case ref == catalog.PlaceholderCover:
		return c.baseURL + ref
	}
	segments := strings.Split(strings.TrimLeft(ref, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return c.baseURL + "/cover/" + strings.Join(segments, "/")
}
