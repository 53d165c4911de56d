// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wikipedia resolves topics and sections against the MediaWiki
// Action API and normalizes the answers for the agent runtime.
//
// The client holds no result state: every lookup is one or two fresh
// requests upstream, so consecutive calls never drift from each other
// through a local cache.
package wikipedia

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/pdiddy/wiki-research/internal/httputil"
	"github.com/pdiddy/wiki-research/pkg/types"
)

const defaultBaseURL = "https://%s.wikipedia.org/w/api.php"

// maxBodyBytes bounds a single API response. Long articles with every
// link listed stay well under this.
const maxBodyBytes = 8 << 20

// Client queries one Wikipedia edition.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cfg        types.WikipediaConfig
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client (whose timeout comes
// from the config).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL points the client at a different api.php endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// NewClient builds a client for cfg. Zero fields in cfg are filled with
// the same defaults ResearchConfig.ApplyDefaults uses.
func NewClient(cfg types.WikipediaConfig, opts ...Option) *Client {
	rc := types.ResearchConfig{Wikipedia: cfg}
	rc.ApplyDefaults()
	cfg = rc.Wikipedia

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    fmt.Sprintf(defaultBaseURL, cfg.Language),
		cfg:        cfg,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// page is one entry of query.pages in a formatversion=2 response.
type page struct {
	PageID    int            `json:"pageid"`
	Title     string         `json:"title"`
	Missing   bool           `json:"missing"`
	Invalid   bool           `json:"invalid"`
	Extract   string         `json:"extract"`
	FullURL   string         `json:"fullurl"`
	Links     []link         `json:"links"`
	PageProps map[string]any `json:"pageprops"`
}

type link struct {
	NS    int    `json:"ns"`
	Title string `json:"title"`
}

func (p *page) exists() bool {
	return !p.Missing && !p.Invalid && p.PageID != 0
}

func (p *page) isDisambiguation() bool {
	_, ok := p.PageProps["disambiguation"]
	return ok
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("API error: %s (code: %s)", e.Info, e.Code)
}

type pageResponse struct {
	Query struct {
		Pages []page `json:"pages"`
	} `json:"query"`
	Error *apiError `json:"error"`
}

type searchResponse struct {
	Query struct {
		SearchInfo struct {
			Suggestion string `json:"suggestion"`
		} `json:"searchinfo"`
		Search []struct {
			Title  string `json:"title"`
			PageID int    `json:"pageid"`
		} `json:"search"`
	} `json:"query"`
	Error *apiError `json:"error"`
}

// fetchPage loads one page with its plain-text extract (headings kept in
// wiki format), canonical URL, main-namespace links and disambiguation
// flag. Redirects are followed server side. A missing page is returned
// with Missing set, not as an error.
func (c *Client) fetchPage(ctx context.Context, title string) (*page, error) {
	params := url.Values{
		"action":          {"query"},
		"prop":            {"extracts|info|links|pageprops"},
		"titles":          {title},
		"redirects":       {"1"},
		"explaintext":     {"1"},
		"exsectionformat": {"wiki"},
		"inprop":          {"url"},
		"pllimit":         {"max"},
		"plnamespace":     {"0"},
		"ppprop":          {"disambiguation"},
		"format":          {"json"},
		"formatversion":   {"2"},
	}

	var resp pageResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrUnavailable, resp.Error)
	}
	if len(resp.Query.Pages) == 0 {
		return &page{Title: title, Missing: true}, nil
	}
	return &resp.Query.Pages[0], nil
}

// search returns up to limit closest-match titles for query. The
// server's spelling suggestion, when offered, comes first.
func (c *Client) search(ctx context.Context, query string, limit int) ([]string, error) {
	params := url.Values{
		"action":        {"query"},
		"list":          {"search"},
		"srsearch":      {query},
		"srlimit":       {fmt.Sprintf("%d", limit)},
		"srinfo":        {"suggestion"},
		"srprop":        {""},
		"format":        {"json"},
		"formatversion": {"2"},
	}

	var resp searchResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrUnavailable, resp.Error)
	}

	seen := make(map[string]bool)
	var titles []string
	add := func(t string) {
		if t == "" || seen[t] || len(titles) >= limit {
			return
		}
		seen[t] = true
		titles = append(titles, t)
	}
	add(resp.Query.SearchInfo.Suggestion)
	for _, hit := range resp.Query.Search {
		add(hit.Title)
	}
	return titles, nil
}

// get performs one API call and decodes the JSON body into out. Every
// failure wraps ErrUnavailable.
func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: creating request: %w", types.ErrUnavailable, err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, c.cfg.MaxRetries)
	if err != nil {
		return fmt.Errorf("%w: wikipedia request: %w", types.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: wikipedia returned HTTP %d", types.ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: reading response: %w", types.ErrUnavailable, err)
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: parsing response: %w", types.ErrUnavailable, err)
	}
	return nil
}

// articleURL builds a canonical URL when the API did not return one.
func (c *Client) articleURL(title string) string {
	return fmt.Sprintf("https://%s.wikipedia.org/wiki/%s",
		c.cfg.Language, url.PathEscape(strings.ReplaceAll(title, " ", "_")))
}
