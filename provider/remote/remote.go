// Package remote is the HTTP layer shared by the source adapters: per-site rate limiting,
// a short-lived in-memory response cache and decoding into JSON or HTML documents.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/josueBarretogit/manga-tui/constant"
	"github.com/josueBarretogit/manga-tui/fault"
	"github.com/josueBarretogit/manga-tui/network"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// How long a response stays cached for each kind of request.
const (
	SearchTTL   = 5 * time.Second
	ChaptersTTL = 40 * time.Second
	PagesTTL    = 30 * time.Second
	MangaTTL    = 40 * time.Second
)

// Options configures a Client.
type Options struct {
	// Provider names the site in errors.
	Provider string
	Client   *http.Client
	// RequestsPerSecond caps outgoing requests; 0 disables the limiter.
	RequestsPerSecond int
	// Headers are sent with every request.
	Headers map[string]string
}

// Client issues metadata requests for one site. It never retries.
type Client struct {
	provider string
	http     *http.Client
	limiter  *rate.Limiter
	cache    *cache.Cache
	headers  map[string]string
}

// New creates a Client.
func New(options Options) *Client {
	client := options.Client
	if client == nil {
		client = network.Client
	}

	limit := rate.Inf
	burst := 1
	if options.RequestsPerSecond > 0 {
		limit = rate.Limit(options.RequestsPerSecond)
		burst = options.RequestsPerSecond
	}

	return &Client{
		provider: options.Provider,
		http:     client,
		limiter:  rate.NewLimiter(limit, burst),
		cache:    cache.New(time.Minute, 5*time.Minute),
		headers:  options.Headers,
	}
}

// Provider is the name of the site this client talks to.
func (c *Client) Provider() string {
	return c.provider
}

// Get returns the body of url. A positive ttl serves and stores the body in the response cache.
func (c *Client) Get(ctx context.Context, url string, ttl time.Duration, headers map[string]string) ([]byte, error) {
	if ttl > 0 {
		if cached, ok := c.cache.Get(url); ok {
			return cached.([]byte), nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", constant.UserAgent)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fault.FromTransport(ctx, url, err)
	}
	defer resp.Body.Close()

	if err := fault.FromResponse(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fault.FromTransport(ctx, url, err)
	}

	if ttl > 0 {
		c.cache.Set(url, body, ttl)
	}

	return body, nil
}

// JSON decodes the body of url into v. A body that does not decode is a ParseError.
func (c *Client) JSON(ctx context.Context, url string, ttl time.Duration, headers map[string]string, v any) error {
	body, err := c.Get(ctx, url, ttl, headers)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		c.cache.Delete(url)
		return &fault.ParseError{Provider: c.provider, URL: url, Selector: "json body", Expected: 1, Err: err}
	}

	return nil
}

// Document parses the body of url as HTML.
func (c *Client) Document(ctx context.Context, url string, ttl time.Duration, headers map[string]string) (*goquery.Document, error) {
	body, err := c.Get(ctx, url, ttl, headers)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		c.cache.Delete(url)
		return nil, &fault.ParseError{Provider: c.provider, URL: url, Selector: "html document", Expected: 1, Err: err}
	}

	return doc, nil
}

// Require fails with a ParseError when selection has fewer than n elements.
func (c *Client) Require(selection *goquery.Selection, url, selector string, n int) error {
	if found := selection.Length(); found < n {
		return fault.Missing(c.provider, url, selector, n, found)
	}
	return nil
}

// Forget drops every cached response.
func (c *Client) Forget() {
	c.cache.Flush()
}
