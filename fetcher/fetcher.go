// Package fetcher retrieves raw page bytes with bounded retries and backoff.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/josueBarretogit/manga-tui/constant"
	"github.com/josueBarretogit/manga-tui/fault"
	"github.com/josueBarretogit/manga-tui/log"
	"github.com/josueBarretogit/manga-tui/network"
	"github.com/josueBarretogit/manga-tui/source"
)

// ErrTruncated is reported when a page body is shorter than the size announced by its source.
var ErrTruncated = errors.New("truncated page body")

// Options configures a Fetcher.
type Options struct {
	Client      *http.Client
	MaxAttempts int
	Backoff     Policy
	Sleep       func(ctx context.Context, d time.Duration) error
}

// Fetcher downloads page images.
type Fetcher struct {
	client *http.Client
	retry  Retry
}

// New creates a Fetcher. A nil client falls back to network.Client.
func New(options Options) *Fetcher {
	client := options.Client
	if client == nil {
		client = network.Client
	}

	return &Fetcher{
		client: client,
		retry: Retry{
			MaxAttempts: options.MaxAttempts,
			Backoff:     options.Backoff,
			Sleep:       options.Sleep,
		},
	}
}

// Fetch returns the bytes of page, retrying transient network failures.
func (f *Fetcher) Fetch(ctx context.Context, page *source.Page) ([]byte, error) {
	return Do(ctx, f.retry, func(ctx context.Context, attempt int) ([]byte, error) {
		data, err := f.fetch(ctx, page)
		if err != nil && fault.Retryable(err) {
			log.WithFields(log.Fields{
				"chapter": page.ChapterID,
				"page":    page.Index,
				"attempt": attempt,
				"kind":    fault.KindOf(err),
			}).Debug(err)
		}
		return data, err
	})
}

func (f *Fetcher) fetch(ctx context.Context, page *source.Page) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, page.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page.Index, err)
	}

	req.Header.Set("User-Agent", constant.UserAgent)
	req.Header.Set("Accept", "image/avif,image/webp,image/png,image/jpeg,*/*")
	for k, v := range page.Headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fault.FromTransport(ctx, page.URL, err)
	}
	defer resp.Body.Close()

	if err := fault.FromResponse(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fault.FromTransport(ctx, page.URL, err)
	}

	if page.Size > 0 && int64(len(data)) < page.Size {
		return nil, &fault.NetworkError{URL: page.URL, Err: ErrTruncated}
	}

	return data, nil
}
