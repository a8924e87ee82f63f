// Package network provides the HTTP clients shared by the source adapters and the page fetcher.
package network

import (
	"net/http"
	"time"
)

// Client is the default HTTP client. Adapters and the fetcher receive their own via New.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: newTransport(),
}

// Options configures a client built by New.
type Options struct {
	Timeout time.Duration
	// BrowserTLS sends a browser TLS fingerprint. Some scraped sites reject the Go handshake.
	BrowserTLS bool
}

// New builds a client for the given options.
func New(options Options) *http.Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}

	var transport http.RoundTripper = newTransport()
	if options.BrowserTLS {
		transport = NewBrowserTransport(timeout)
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// newTransport initializes a tuned http.Transport for many concurrent page downloads.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 100
	t.MaxConnsPerHost = 200
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = 30 * time.Second
	return t
}
