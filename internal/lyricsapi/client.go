// Package lyricsapi is an HTTP client for the lyrics provider.
package lyricsapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/verte-zerg/lyrictype/internal/model"
)

// ErrStatus is wrapped by errors for unexpected HTTP status codes.
var ErrStatus = errors.New("unexpected status")

const (
	defaultTimeout   = 10 * time.Second
	artistCacheSize  = 64
	maxErrorBodySize = 512
)

// Client talks to the lyrics provider over HTTP+JSON.
type Client struct {
	baseURL string
	http    *http.Client
	artists *lru.Cache[string, model.ArtistInfo]
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// New returns a client for the provider rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid api base url %q: %w", baseURL, err)
	}
	cache, err := lru.New[string, model.ArtistInfo](artistCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create artist cache: %w", err)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		artists: cache,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type searchResponse struct {
	Artists []model.ArtistRef `json:"artists"`
}

// FetchArtistSong returns a song of the artist whose catalog index is not in
// exclude. It returns nil, nil when the provider has nothing left.
func (c *Client) FetchArtistSong(ctx context.Context, artistID string, exclude map[int]struct{}) (*model.SongRecord, error) {
	q := url.Values{}
	q.Set("artistId", artistID)
	if len(exclude) > 0 {
		q.Set("exclude", joinIndices(exclude))
	}
	var song model.SongRecord
	found, err := c.get(ctx, "/artistSong", q, &song)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch song for artist %s: %w", artistID, err)
	}
	if !found {
		return nil, nil
	}
	if song.ArtistID == "" {
		song.ArtistID = artistID
	}
	return &song, nil
}

// SearchArtists returns up to limit artists matching query.
func (c *Client) SearchArtists(ctx context.Context, query string, limit int) ([]model.ArtistRef, error) {
	q := url.Values{}
	q.Set("q", query)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var resp searchResponse
	if _, err := c.get(ctx, "/searchArtists", q, &resp); err != nil {
		return nil, fmt.Errorf("failed to search artists: %w", err)
	}
	if limit > 0 && len(resp.Artists) > limit {
		resp.Artists = resp.Artists[:limit]
	}
	return resp.Artists, nil
}

// GetArtistInfo returns artist metadata. Cached entries are served unless
// bypassCache is set; only entries with an image are cached so a later
// lookup can pick up a freshly extracted picture.
func (c *Client) GetArtistInfo(ctx context.Context, artistID string, bypassCache bool) (model.ArtistInfo, error) {
	if !bypassCache {
		if info, ok := c.artists.Get(artistID); ok {
			return info, nil
		}
	}
	q := url.Values{}
	q.Set("artistId", artistID)
	if bypassCache {
		q.Set("bypassCache", "true")
	}
	var info model.ArtistInfo
	found, err := c.get(ctx, "/artistInfo", q, &info)
	if err != nil {
		return model.ArtistInfo{}, fmt.Errorf("failed to fetch artist %s: %w", artistID, err)
	}
	if !found {
		return model.ArtistInfo{}, nil
	}
	if info.ImageURL != "" {
		c.artists.Add(artistID, info)
	}
	return info, nil
}

// get decodes a JSON body into out. found is false on 404.
func (c *Client) get(ctx context.Context, path string, q url.Values, out any) (bool, error) {
	endpoint := c.baseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return false, fmt.Errorf("%w %d: %s", ErrStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}
	return true, nil
}

func joinIndices(set map[int]struct{}) string {
	idx := make([]int, 0, len(set))
	for i := range set {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	parts := make([]string, len(idx))
	for i, v := range idx {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
